package schemaorg

import (
	"github.com/simplecybertech/web/content"
	"github.com/simplecybertech/web/jsonld"
	"github.com/simplecybertech/web/site"
)

// Global is the site-wide @graph: the business node and the WebSite node
// that names it as publisher by @id.
func (b *Builder) Global() string { return jsonld.Encode(b.globalDoc()) }

func (b *Builder) globalDoc() jsonld.Object {
	org := obj(
		f("@type", b.businessTypes()),
		f("@id", str(b.OrganizationID())),
		f("name", str(b.business.LegalName)),
		f("url", str(b.site.BaseURL)),
		f("telephone", str(b.business.Telephone)),
		f("email", str(b.business.Email)),
		f("address", b.address()),
		f("openingHoursSpecification", b.openingHours()),
		f("knowsAbout", jsonld.Strings(b.business.KnowsAbout)),
		f("areaServed", b.areas()),
	)
	website := obj(
		f("@type", str("WebSite")),
		f("@id", str(b.WebSiteID())),
		f("url", str(b.site.BaseURL)),
		f("name", str(b.site.Name)),
		f("description", str(b.site.Description)),
		f("publisher", obj(f("@id", str(b.OrganizationID())))),
	)
	return obj(
		schemaContext(),
		f("@graph", jsonld.Array{org, website}),
	)
}

// Breadcrumb is a two-level trail: Home, then the page at path.
func (b *Builder) Breadcrumb(pageName, pagePath string) string {
	return jsonld.Encode(b.breadcrumbDoc(pageName, pagePath))
}

func (b *Builder) breadcrumbDoc(pageName, pagePath string) jsonld.Object {
	item := func(pos int, name, url string) jsonld.Node {
		return obj(
			f("@type", str("ListItem")),
			f("position", jsonld.Int(pos)),
			f("name", str(name)),
			f("item", str(url)),
		)
	}
	return obj(
		schemaContext(),
		f("@type", str("BreadcrumbList")),
		f("itemListElement", jsonld.Array{
			item(1, "Home", b.site.BaseURL),
			item(2, pageName, b.site.BaseURL+pagePath),
		}),
	)
}

// Organization is the standalone business node with logo and coerced area
// types.
func (b *Builder) Organization() string { return jsonld.Encode(b.organizationDoc()) }

func (b *Builder) organizationDoc() jsonld.Object {
	return obj(
		schemaContext(),
		f("@type", b.businessTypes()),
		f("name", str(b.business.LegalName)),
		f("url", str(b.site.BaseURL)),
		f("logo", str(b.LogoURL())),
		f("description", str(b.site.Description)),
		f("telephone", str(b.business.Telephone)),
		f("email", str(b.business.Email)),
		f("address", b.address()),
		f("areaServed", b.coercedAreas()),
	)
}

// Service describes one offered service with the provider inlined.
func (b *Builder) Service(svc site.ServiceInfo) string { return jsonld.Encode(b.serviceDoc(svc)) }

func (b *Builder) serviceDoc(svc site.ServiceInfo) jsonld.Object {
	return obj(
		schemaContext(),
		f("@type", str("Service")),
		f("name", str(svc.Name)),
		f("description", str(svc.Description)),
		f("provider", obj(
			f("@type", str("LocalBusiness")),
			f("name", str(b.business.LegalName)),
			f("url", str(b.site.BaseURL)),
		)),
		f("areaServed", b.areaNames()),
		f("serviceType", str(svc.Category)),
	)
}

// ContactPage describes the contact page.
func (b *Builder) ContactPage() string { return jsonld.Encode(b.contactPageDoc()) }

func (b *Builder) contactPageDoc() jsonld.Object {
	return obj(
		schemaContext(),
		f("@type", str("ContactPage")),
		f("name", str("Contact "+b.business.LegalName)),
		f("description", str("Get in touch with our team to discuss your cybersecurity needs")),
		f("publisher", obj(
			f("@type", str("Organization")),
			f("name", str(b.business.LegalName)),
			f("url", str(b.site.BaseURL)),
			f("telephone", str(b.business.Telephone)),
			f("email", str(b.business.Email)),
		)),
	)
}

// FAQ is an FAQPage holding a single question.
func (b *Builder) FAQ(qa content.QA) string {
	return jsonld.Encode(obj(
		schemaContext(),
		f("@type", str("FAQPage")),
		f("mainEntity", question(qa)),
	))
}

// FAQPage is an FAQPage holding every question in order.
func (b *Builder) FAQPage(faqs []content.QA) string { return jsonld.Encode(b.faqPageDoc(faqs)) }

func (b *Builder) faqPageDoc(faqs []content.QA) jsonld.Object {
	return obj(
		schemaContext(),
		f("@type", str("FAQPage")),
		f("mainEntity", jsonld.Map(faqs, func(qa content.QA) jsonld.Node { return question(qa) })),
	)
}

// Location is the LocalBusiness node of one city page.
func (b *Builder) Location(cityName, citySlug string) string {
	return jsonld.Encode(b.locationDoc(cityName, citySlug))
}

func (b *Builder) locationDoc(cityName, citySlug string) jsonld.Object {
	return obj(
		schemaContext(),
		f("@type", str("LocalBusiness")),
		f("name", str(b.business.LegalName+" - "+cityName)),
		f("description", str("Cybersecurity services and help desk support for "+cityName+
			" businesses. Local, expert protection from "+b.business.LegalName+".")),
		f("url", str(b.site.BaseURL+"/services/"+citySlug)),
		f("telephone", str(b.business.Telephone)),
		f("email", str(b.business.Email)),
		f("address", b.address()),
		f("areaServed", obj(
			f("@type", str(site.AreaTypeCity)),
			f("name", str(cityName)),
		)),
		f("serviceScopeDescription", str("We provide cybersecurity and IT support services to businesses throughout "+
			cityName+" and Southern California.")),
		f("serviceArea", b.areas()),
	)
}

// WebPage is a generic page with the business as publisher.
func (b *Builder) WebPage(pageName, description string) string {
	return jsonld.Encode(obj(
		schemaContext(),
		f("@type", str("WebPage")),
		f("name", str(pageName)),
		f("description", str(description)),
		f("publisher", b.organizationStub()),
	))
}

// AboutPage describes the about page.
func (b *Builder) AboutPage() string { return jsonld.Encode(b.aboutPageDoc()) }

func (b *Builder) aboutPageDoc() jsonld.Object {
	return obj(
		schemaContext(),
		f("@type", str("AboutPage")),
		f("name", str("About "+b.business.LegalName)),
		f("description", str("Learn about "+b.business.LegalName+", your trusted cybersecurity and IT support partner for "+
			"Southern California businesses. Founded to make enterprise-grade security accessible and affordable.")),
		f("mainEntity", obj(
			f("@type", str("Organization")),
			f("name", str(b.business.LegalName)),
			f("url", str(b.site.BaseURL)),
			f("foundingDate", str("2024")),
			f("description", str("A cybersecurity and IT services company dedicated to protecting small and "+
				"medium-sized businesses in Southern California.")),
		)),
	)
}

// overviewService is one of the three fixed services on the overview page.
type overviewService struct {
	slug, name, description, serviceType string
}

var overviewServices = [3]overviewService{
	{
		slug:        "HelpDesk",
		name:        "Help Desk Support",
		description: "Friendly, fast IT support when you need it. Real people, real solutions for your technology issues.",
		serviceType: "Technical Support",
	},
	{
		slug: "Cybersecurity",
		name: "Managed Cybersecurity",
		description: "Enterprise-grade cybersecurity protection with advanced threat detection, proactive system " +
			"management, data protection, and email & web security.",
		serviceType: "Security Services",
	},
	{
		slug: "PenetrationTesting",
		name: "Penetration Testing",
		description: "Ethical hacking and security assessments to find vulnerabilities before attackers do. " +
			"Actionable insights to strengthen your defenses.",
		serviceType: "Security Assessment",
	},
}

// ServicesCollection describes the services overview page. Its three
// services refer to the business by @id.
func (b *Builder) ServicesCollection() string { return jsonld.Encode(b.servicesCollectionDoc()) }

func (b *Builder) servicesCollectionDoc() jsonld.Object {
	parts := make(jsonld.Array, len(overviewServices))
	for i, s := range overviewServices {
		parts[i] = obj(
			f("@type", str("Service")),
			f("@id", str(b.site.BaseURL+"/services-overview#"+s.slug)),
			f("name", str(s.name)),
			f("description", str(s.description)),
			f("provider", obj(
				f("@type", str("Organization")),
				f("@id", str(b.OrganizationID())),
				f("name", str(b.business.LegalName)),
			)),
			f("areaServed", b.areaNames()),
			f("serviceType", str(s.serviceType)),
		)
	}
	return obj(
		schemaContext(),
		f("@type", str("CollectionPage")),
		f("name", str("Cybersecurity & IT Services Overview")),
		f("description", str("Explore our comprehensive suite of cybersecurity, managed IT, help desk support, and "+
			"penetration testing services designed for Southern California small and medium-sized businesses.")),
		f("hasPart", parts),
	)
}

// LocalBusiness is the contact-page variant of the business node.
func (b *Builder) LocalBusiness() string { return jsonld.Encode(b.localBusinessDoc()) }

func (b *Builder) localBusinessDoc() jsonld.Object {
	return obj(
		schemaContext(),
		f("@type", str("LocalBusiness")),
		f("@id", str(b.OrganizationID())),
		f("name", str(b.business.LegalName)),
		f("image", str(b.LogoURL())),
		f("description", str("Contact "+b.business.LegalName+" for cybersecurity services, help desk support, "+
			"and IT solutions in Southern California.")),
		f("url", str(b.site.BaseURL+"/contact-us")),
		f("telephone", str(b.business.Telephone)),
		f("email", str(b.business.Email)),
		f("address", b.address()),
		f("openingHoursSpecification", b.openingHours()),
	)
}

// Glossary is the DefinedTermSet of the glossary page.
func (b *Builder) Glossary(terms []content.Term) string { return jsonld.Encode(b.glossaryDoc(terms)) }

func (b *Builder) glossaryDoc(terms []content.Term) jsonld.Object {
	return obj(
		schemaContext(),
		f("@type", str("DefinedTermSet")),
		f("name", str("Cybersecurity & IT Security Glossary")),
		f("description", str("A comprehensive glossary of cybersecurity, network security, and IT terms explained "+
			"in plain language for small and medium-sized business owners.")),
		f("inDefinedTermSet", str(b.site.BaseURL+"/glossary")),
		f("publisher", b.organizationStub()),
		f("hasDefinedTerm", jsonld.Map(terms, func(t content.Term) jsonld.Node {
			return obj(
				f("@type", str("DefinedTerm")),
				f("name", str(t.Term)),
				f("description", str(t.Definition)),
				f("identifier", str(b.site.BaseURL+"/glossary#term-"+t.Slug())),
			)
		})),
	)
}

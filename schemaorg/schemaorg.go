// Package schemaorg renders the schema.org JSON-LD documents embedded in the
// site's pages. Every method is a pure function of the site configuration
// and its arguments and returns one JSON document.
package schemaorg

import (
	"github.com/simplecybertech/web/content"
	"github.com/simplecybertech/web/jsonld"
	"github.com/simplecybertech/web/site"
)

// LogoPath is where the horizontal dark logo is served.
const LogoPath = "/img/logo-company-name-horizontal-dark.png"

// Builder renders JSON-LD documents for one site configuration.
type Builder struct {
	site     site.Settings
	business site.BusinessInfo
	nav      site.Navigation
	services []site.ServiceInfo
}

// New creates a Builder. cfg must already be validated.
func New(cfg *site.Config) *Builder {
	return &Builder{
		site:     cfg.Site,
		business: cfg.Business,
		nav:      cfg.Navigation,
		services: cfg.Services,
	}
}

// OrganizationID is the @id shared by every node that refers to the business.
func (b *Builder) OrganizationID() string { return b.site.BaseURL + "/#organization" }

// WebSiteID is the @id of the WebSite node.
func (b *Builder) WebSiteID() string { return b.site.BaseURL + "/#website" }

// LogoURL is the absolute logo URL.
func (b *Builder) LogoURL() string { return b.site.BaseURL + LogoPath }

// Services returns the configured services in order.
func (b *Builder) Services() []site.ServiceInfo { return b.services }

var (
	f   = jsonld.F
	obj = jsonld.Obj
)

type str = jsonld.String

func schemaContext() jsonld.Member { return f("@context", str(jsonld.SchemaOrg)) }

func (b *Builder) businessTypes() jsonld.Array { return jsonld.Strings(b.business.BusinessTypes) }

func (b *Builder) address() jsonld.Object {
	a := b.business.Address
	return obj(
		f("@type", str("PostalAddress")),
		f("streetAddress", str(a.StreetAddress)),
		f("addressLocality", str(a.AddressLocality)),
		f("addressRegion", str(a.AddressRegion)),
		f("postalCode", str(a.PostalCode)),
		f("addressCountry", str(a.AddressCountry)),
	)
}

func (b *Builder) openingHours() jsonld.Array {
	return jsonld.Map(b.business.OpeningHours, func(h site.OpeningHour) jsonld.Node {
		return obj(
			f("@type", str("OpeningHoursSpecification")),
			f("dayOfWeek", jsonld.Strings(h.DaysOfWeek)),
			f("opens", str(h.Opens)),
			f("closes", str(h.Closes)),
		)
	})
}

// areas keeps the configured type of every area.
func (b *Builder) areas() jsonld.Array {
	return jsonld.Map(b.business.AreasServed, func(a site.AreaServed) jsonld.Node {
		return obj(f("@type", str(a.Type)), f("name", str(a.Name)))
	})
}

// coercedAreas types every non-city area as AdministrativeArea.
func (b *Builder) coercedAreas() jsonld.Array {
	return jsonld.Map(b.business.AreasServed, func(a site.AreaServed) jsonld.Node {
		t := "AdministrativeArea"
		if a.IsCity() {
			t = site.AreaTypeCity
		}
		return obj(f("@type", str(t)), f("name", str(a.Name)))
	})
}

func (b *Builder) areaNames() jsonld.Array {
	return jsonld.Map(b.business.AreasServed, func(a site.AreaServed) jsonld.Node {
		return str(a.Name)
	})
}

func (b *Builder) organizationStub() jsonld.Object {
	return obj(
		f("@type", str("Organization")),
		f("name", str(b.business.LegalName)),
		f("url", str(b.site.BaseURL)),
	)
}

func question(qa content.QA) jsonld.Object {
	return obj(
		f("@type", str("Question")),
		f("name", str(qa.Question)),
		f("acceptedAnswer", obj(
			f("@type", str("Answer")),
			f("text", str(qa.Answer)),
		)),
	)
}

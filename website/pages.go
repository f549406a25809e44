package website

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/simplecybertech/web/areas"
	"github.com/simplecybertech/web/content"
	"github.com/simplecybertech/web/shield"
	"github.com/simplecybertech/web/site"
)

type homeBody struct {
	Cities []areas.Link
}

func (w *Website) handleHome(rw http.ResponseWriter, r *http.Request) {
	w.render(rw, r, http.StatusOK, tmplHome, page{
		Title:       w.cfg.Site.Name + " | " + w.cfg.Site.Tagline,
		Description: w.cfg.Site.Description,
		Path:        "/",
		Schemas:     []string{w.schema.Global()},
		Body:        homeBody{Cities: w.areas.Cities()},
	})
}

func (w *Website) handleAbout(rw http.ResponseWriter, r *http.Request) {
	w.render(rw, r, http.StatusOK, tmplAbout, page{
		Title:       "About Us | " + w.cfg.Site.Name,
		Description: "Learn about " + w.cfg.Business.LegalName + ", your trusted cybersecurity and IT support partner for Southern California businesses.",
		Path:        "/about-us",
		Schemas: []string{
			w.schema.AboutPage(),
			w.schema.Breadcrumb("About Us", "/about-us"),
		},
	})
}

type servicesBody struct {
	Services []site.ServiceInfo
	FAQ      content.FAQ
}

func (w *Website) handleServicesOverview(rw http.ResponseWriter, r *http.Request) {
	schemas := []string{
		w.schema.ServicesCollection(),
		w.schema.FAQPage(w.lib.ServicesFAQ.SchemaData()),
	}
	for _, svc := range w.schema.Services() {
		schemas = append(schemas, w.schema.Service(svc))
	}
	w.render(rw, r, http.StatusOK, tmplServices, page{
		Title:       "Cybersecurity & IT Services | " + w.cfg.Site.Name,
		Description: "Managed cybersecurity, help desk support and penetration testing for Southern California small and medium-sized businesses.",
		Path:        "/services-overview",
		Schemas:     schemas,
		Body:        servicesBody{Services: w.cfg.Services, FAQ: w.lib.ServicesFAQ},
	})
}

func (w *Website) handleCity(rw http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "city")
	p, err := w.areas.Page(slug)
	if errors.Is(err, areas.ErrNotFound) {
		shield.GetLogger(r.Context()).Info("website: unknown city", "slug", slug)
		w.handleNotFound(rw, r)
		return
	}
	if err != nil {
		shield.GetLogger(r.Context()).Error("website: resolve city", "slug", slug, "error", err)
		http.Error(rw, "internal error", http.StatusInternalServerError)
		return
	}
	path := "/services/" + areas.Slug(p.City.Name)
	w.render(rw, r, http.StatusOK, tmplCity, page{
		Title:       "Cybersecurity & IT Support in " + p.City.Name + " | " + w.cfg.Site.Name,
		Description: "Cybersecurity services and help desk support for " + p.City.Name + " businesses. Local, expert protection from " + w.cfg.Business.LegalName + ".",
		Path:        path,
		Schemas: []string{
			w.schema.Location(p.City.Name, p.City.Slug),
			w.schema.Breadcrumb(p.City.Name, path),
		},
		Body: p,
	})
}

func (w *Website) handleFAQ(rw http.ResponseWriter, r *http.Request) {
	w.render(rw, r, http.StatusOK, tmplFAQ, page{
		Title:       "Frequently Asked Questions | " + w.cfg.Site.Name,
		Description: "Answers to common questions about managed cybersecurity, help desk support and penetration testing.",
		Path:        "/faq",
		Schemas: []string{
			w.schema.FAQPage(w.lib.FAQ.SchemaData()),
			w.schema.Breadcrumb("FAQ", "/faq"),
		},
		Body: w.lib.FAQ,
	})
}

func (w *Website) handleFAQMarkdown(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	rw.Write(w.faqMD)
}

type glossaryBody struct {
	Letters []string
	Groups  []content.LetterGroup
}

func (w *Website) handleGlossary(rw http.ResponseWriter, r *http.Request) {
	w.render(rw, r, http.StatusOK, tmplGlossary, page{
		Title:       "Cybersecurity Glossary | " + w.cfg.Site.Name,
		Description: "Cybersecurity, network security and IT terms explained in plain language for business owners.",
		Path:        "/glossary",
		Schemas: []string{
			w.schema.Glossary(w.lib.Glossary),
			w.schema.Breadcrumb("Glossary", "/glossary"),
		},
		Body: glossaryBody{Letters: w.lib.Glossary.Letters(), Groups: w.lib.Glossary.Grouped()},
	})
}

type contactBody struct {
	Cities    []areas.Link
	FormReady bool
}

func (w *Website) handleContact(rw http.ResponseWriter, r *http.Request) {
	w.render(rw, r, http.StatusOK, tmplContact, page{
		Title:       "Contact Us | " + w.cfg.Site.Name,
		Description: "Get in touch with our team to discuss your cybersecurity needs.",
		Path:        "/contact-us",
		Schemas: []string{
			w.schema.ContactPage(),
			w.schema.LocalBusiness(),
		},
		Body: contactBody{Cities: w.areas.Cities(), FormReady: w.submit != nil},
	})
}

type legalBody struct {
	Heading string
	Kind    string
}

func (w *Website) handlePrivacy(rw http.ResponseWriter, r *http.Request) {
	const name = "Privacy Policy"
	desc := "How " + w.cfg.Business.LegalName + " collects, uses and protects your information."
	w.render(rw, r, http.StatusOK, tmplLegal, page{
		Title:       name + " | " + w.cfg.Site.Name,
		Description: desc,
		Path:        "/privacy-policy",
		Schemas:     []string{w.schema.WebPage(name, desc)},
		Body:        legalBody{Heading: name, Kind: "privacy"},
	})
}

func (w *Website) handleTerms(rw http.ResponseWriter, r *http.Request) {
	const name = "Terms of Service"
	desc := "The terms that govern use of the " + w.cfg.Site.Name + " website and services."
	w.render(rw, r, http.StatusOK, tmplLegal, page{
		Title:       name + " | " + w.cfg.Site.Name,
		Description: desc,
		Path:        "/terms-of-service",
		Schemas:     []string{w.schema.WebPage(name, desc)},
		Body:        legalBody{Heading: name, Kind: "terms"},
	})
}

func (w *Website) handleNotFound(rw http.ResponseWriter, r *http.Request) {
	w.render(rw, r, http.StatusNotFound, tmplNotFound, page{
		Title:       "Page Not Found | " + w.cfg.Site.Name,
		Description: "The page you requested could not be found.",
		Path:        r.URL.Path,
		Body:        homeBody{Cities: w.areas.Cities()},
	})
}

// Package website serves the public pages of the site: it resolves city
// slugs, loads FAQ and glossary content, renders the schema.org JSON-LD
// blocks of each page and executes the HTML templates.
package website

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/simplecybertech/web/areas"
	"github.com/simplecybertech/web/content"
	"github.com/simplecybertech/web/observability"
	"github.com/simplecybertech/web/schemaorg"
	"github.com/simplecybertech/web/shield"
	"github.com/simplecybertech/web/site"
)

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page templates, one per file under templates/ besides the layout.
const (
	tmplHome     = "home.html"
	tmplAbout    = "about.html"
	tmplServices = "services_overview.html"
	tmplCity     = "city.html"
	tmplFAQ      = "faq.html"
	tmplGlossary = "glossary.html"
	tmplContact  = "contact.html"
	tmplLegal    = "legal.html"
	tmplNotFound = "notfound.html"
)

// Config holds what a Website is built from.
type Config struct {
	Site    *site.Config
	Content *content.Library
	Logger  *slog.Logger // nil = slog.Default()

	// Submit handles POST /contact-us. Nil leaves the form without a
	// backend: the page still renders, posts answer 405.
	Submit http.HandlerFunc

	// Audit, when set, records every MCP tool call.
	Audit *observability.AuditLogger
}

// Website renders the public pages.
type Website struct {
	cfg     *site.Config
	lib     *content.Library
	schema  *schemaorg.Builder
	areas   *areas.Resolver
	submit  http.HandlerFunc
	logger  *slog.Logger
	audit   *observability.AuditLogger
	pages   map[string]*template.Template
	social  []socialLink
	faqMD   []byte
	sitemap []byte
}

type socialLink struct {
	Name string
	URL  string
}

// New builds a Website. Templates are parsed and the FAQ Markdown and the
// sitemap are rendered once here, so a defect in either fails at startup.
func New(cfg Config) (*Website, error) {
	if cfg.Site == nil {
		return nil, fmt.Errorf("website: Site config is required")
	}
	if cfg.Content == nil {
		return nil, fmt.Errorf("website: Content is required")
	}
	w := &Website{
		cfg:    cfg.Site,
		lib:    cfg.Content,
		schema: schemaorg.New(cfg.Site),
		areas:  areas.NewResolver(cfg.Site.Business.AreasServed),
		submit: cfg.Submit,
		logger: cfg.Logger,
		audit:  cfg.Audit,
		pages:  make(map[string]*template.Template),
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}

	for _, name := range []string{tmplHome, tmplAbout, tmplServices, tmplCity, tmplFAQ, tmplGlossary, tmplContact, tmplLegal, tmplNotFound} {
		t, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("website: parse %s: %w", name, err)
		}
		w.pages[name] = t
	}

	for name, url := range cfg.Site.SocialMedia {
		w.social = append(w.social, socialLink{Name: name, URL: url})
	}
	sort.Slice(w.social, func(i, j int) bool { return w.social[i].Name < w.social[j].Name })

	md, err := cfg.Content.FAQ.Markdown("Frequently Asked Questions")
	if err != nil {
		return nil, fmt.Errorf("website: faq markdown: %w", err)
	}
	w.faqMD = []byte(md)

	if w.sitemap, err = w.renderSitemap(); err != nil {
		return nil, fmt.Errorf("website: sitemap: %w", err)
	}
	return w, nil
}

// Routes registers every page on r.
func (w *Website) Routes(r chi.Router) {
	assets, _ := fs.Sub(staticFS, "static")
	r.Handle("/static/*", http.FileServerFS(staticFS))
	r.Handle("/img/*", http.FileServerFS(assets))

	r.Get("/", w.handleHome)
	r.Get("/about-us", w.handleAbout)
	r.Get("/services-overview", w.handleServicesOverview)
	r.Get("/services/{city}", w.handleCity)
	r.Get("/services/", w.handleCity)
	r.Get("/faq", w.handleFAQ)
	r.Get("/faq.md", w.handleFAQMarkdown)
	r.Get("/glossary", w.handleGlossary)
	r.Get("/contact-us", w.handleContact)
	if w.submit != nil {
		r.Post("/contact-us", w.submit)
	}
	r.Get("/privacy-policy", w.handlePrivacy)
	r.Get("/terms-of-service", w.handleTerms)
	r.Get("/sitemap.xml", w.handleSitemap)
	r.NotFound(w.handleNotFound)
}

// Handler returns a router serving every page.
func (w *Website) Handler() http.Handler {
	r := chi.NewRouter()
	w.Routes(r)
	return r
}

// Areas exposes the city resolver.
func (w *Website) Areas() *areas.Resolver { return w.areas }

// Schema exposes the JSON-LD builder.
func (w *Website) Schema() *schemaorg.Builder { return w.schema }

// page is what a handler hands to render.
type page struct {
	Title       string
	Description string
	Path        string
	Schemas     []string
	Body        any
}

// view is the template data: the page plus everything the layout needs.
type view struct {
	Title       string
	Description string
	Canonical   string
	Schemas     []template.JS
	Body        any
	Site        site.Settings
	Business    site.BusinessInfo
	Nav         site.Navigation
	Services    []site.ServiceInfo
	Social      []socialLink
	Flash       *shield.FlashMessage
	Year        string
}

func (w *Website) render(rw http.ResponseWriter, r *http.Request, status int, name string, p page) {
	schemas := make([]template.JS, len(p.Schemas))
	for i, s := range p.Schemas {
		// Schema strings are JSON with <, > and & escaped.
		schemas[i] = template.JS(s)
	}
	year := w.cfg.Site.CopyrightYear
	if year == "" {
		year = time.Now().Format("2006")
	}
	v := view{
		Title:       p.Title,
		Description: p.Description,
		Canonical:   w.cfg.Site.BaseURL + p.Path,
		Schemas:     schemas,
		Body:        p.Body,
		Site:        w.cfg.Site,
		Business:    w.cfg.Business,
		Nav:         w.cfg.Navigation,
		Services:    w.cfg.Services,
		Social:      w.social,
		Flash:       shield.GetFlash(r.Context()),
		Year:        year,
	}

	var buf bytes.Buffer
	if err := w.pages[name].ExecuteTemplate(&buf, "layout.html", v); err != nil {
		shield.GetLogger(r.Context()).Error("website: render", "template", name, "error", err)
		http.Error(rw, "internal error", http.StatusInternalServerError)
		return
	}
	rw.Header().Set("Content-Type", "text/html; charset=utf-8")
	rw.WriteHeader(status)
	buf.WriteTo(rw)
}

var templateFuncs = template.FuncMap{
	"tel": func(s string) template.URL {
		return template.URL("tel:" + strings.Map(func(r rune) rune {
			if r == '+' || (r >= '0' && r <= '9') {
				return r
			}
			return -1
		}, s))
	},
	"join": strings.Join,
}

package website

import (
	"encoding/xml"
	"net/http"
	"strings"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlset struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// SitemapPaths lists the site-relative paths the sitemap enumerates: the
// navigation pages, the content pages, then one page per city in name order.
// Duplicates keep their first position.
func (w *Website) SitemapPaths() []string {
	seen := make(map[string]bool)
	var paths []string
	add := func(p string) {
		if p == "" || seen[p] {
			return
		}
		seen[p] = true
		paths = append(paths, p)
	}
	for _, p := range w.cfg.Navigation.Pages() {
		add(p)
	}
	add("/services-overview")
	add("/faq")
	add("/glossary")
	for _, c := range w.areas.Cities() {
		add("/services/" + c.Slug)
	}
	return paths
}

func (w *Website) renderSitemap() ([]byte, error) {
	set := urlset{XMLNS: sitemapNS}
	for _, p := range w.SitemapPaths() {
		u := sitemapURL{Loc: w.cfg.Site.BaseURL + p, ChangeFreq: "monthly", Priority: "0.8"}
		switch {
		case p == w.cfg.Navigation.HomePage:
			u.ChangeFreq, u.Priority = "weekly", "1.0"
		case strings.HasPrefix(p, "/services/"):
			u.Priority = "0.7"
		}
		set.URLs = append(set.URLs, u)
	}
	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

func (w *Website) handleSitemap(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "application/xml")
	rw.Write(w.sitemap)
}

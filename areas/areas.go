// Package areas resolves city service pages from URL slugs against the
// configured service areas.
package areas

import (
	"errors"
	"sort"
	"strings"

	"github.com/simplecybertech/web/site"
)

// MaxNearby caps the nearby-services table on a city page.
const MaxNearby = 12

// ErrNotFound is returned when a slug matches no configured city.
var ErrNotFound = errors.New("areas: city not found")

// City is a resolved service-area city.
type City struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Link is one (slug, display name) pair for cross-linking city pages.
type Link struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Page is everything a city page needs: the city and its neighbours.
type Page struct {
	City   City   `json:"city"`
	Nearby []Link `json:"nearby"`
}

// Resolver looks up cities in a fixed list of service areas.
type Resolver struct {
	areas []site.AreaServed
}

// NewResolver creates a Resolver over areas. The slice is not copied and
// must not be modified afterwards.
func NewResolver(areas []site.AreaServed) *Resolver {
	return &Resolver{areas: areas}
}

// Slug turns a city name into its URL form: lowercase, spaces to hyphens.
func Slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}

// Resolve maps a slug to a configured city. The returned City keeps the
// configured spelling of the name and the slug exactly as given.
func (r *Resolver) Resolve(slug string) (City, error) {
	if strings.TrimSpace(slug) == "" {
		return City{}, ErrNotFound
	}
	candidate := strings.ReplaceAll(slug, "-", " ")
	for _, a := range r.areas {
		if a.IsCity() && strings.EqualFold(a.Name, candidate) {
			return City{Name: a.Name, Slug: slug}, nil
		}
	}
	return City{}, ErrNotFound
}

// Nearby lists the other configured cities sorted by name, at most
// MaxNearby of them. exclude is compared against names exactly.
func (r *Resolver) Nearby(exclude string) []Link {
	var others []site.AreaServed
	for _, a := range r.areas {
		if a.IsCity() && a.Name != exclude {
			others = append(others, a)
		}
	}
	sort.SliceStable(others, func(i, j int) bool { return others[i].Name < others[j].Name })
	if len(others) > MaxNearby {
		others = others[:MaxNearby]
	}
	links := make([]Link, len(others))
	for i, a := range others {
		links[i] = Link{Slug: Slug(a.Name), Name: a.Name}
	}
	return links
}

// Page resolves slug and builds the nearby table for the resolved city.
func (r *Resolver) Page(slug string) (Page, error) {
	city, err := r.Resolve(slug)
	if err != nil {
		return Page{}, err
	}
	return Page{City: city, Nearby: r.Nearby(city.Name)}, nil
}

// Cities lists every configured city with a name, sorted by name, for the
// sitemap.
func (r *Resolver) Cities() []Link {
	var links []Link
	for _, a := range r.areas {
		if a.IsCity() && a.Name != "" {
			links = append(links, Link{Slug: Slug(a.Name), Name: a.Name})
		}
	}
	sort.SliceStable(links, func(i, j int) bool { return links[i].Name < links[j].Name })
	if links == nil {
		links = []Link{}
	}
	return links
}

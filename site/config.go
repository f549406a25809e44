// Package site holds the business data the website is built from: site
// settings, business details, navigation paths, offered services and social
// links. A Config is loaded once at startup and never mutated afterwards.
package site

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// AreaTypeCity is the AreaServed type that gets its own service page.
const AreaTypeCity = "City"

// Config is the full business configuration.
type Config struct {
	Site        Settings          `yaml:"site"`
	Business    BusinessInfo      `yaml:"business"`
	Navigation  Navigation        `yaml:"navigation"`
	Services    []ServiceInfo     `yaml:"services"`
	SocialMedia map[string]string `yaml:"social_media"`
}

// Settings describes the website itself.
type Settings struct {
	BaseURL       string `yaml:"base_url"`
	Name          string `yaml:"name"`
	Tagline       string `yaml:"tagline"`
	Description   string `yaml:"description"`
	Language      string `yaml:"language"`
	CopyrightYear string `yaml:"copyright_year"`
}

// BusinessInfo describes the company behind the site.
type BusinessInfo struct {
	LegalName        string        `yaml:"legal_name"`
	BusinessTypes    []string      `yaml:"business_types"`
	Telephone        string        `yaml:"telephone"`
	TelephoneDisplay string        `yaml:"telephone_display"`
	Email            string        `yaml:"email"`
	Address          Address       `yaml:"address"`
	OpeningHours     []OpeningHour `yaml:"opening_hours"`
	AreasServed      []AreaServed  `yaml:"areas_served"`
	KnowsAbout       []string      `yaml:"knows_about"`
}

// Address is a postal address.
type Address struct {
	StreetAddress   string `yaml:"street_address"`
	AddressLocality string `yaml:"address_locality"`
	AddressRegion   string `yaml:"address_region"`
	PostalCode      string `yaml:"postal_code"`
	AddressCountry  string `yaml:"address_country"`
}

// OpeningHour is one opening-hours rule, e.g. Monday-Friday 09:00-17:00.
type OpeningHour struct {
	DaysOfWeek []string `yaml:"days_of_week"`
	Opens      string   `yaml:"opens"`
	Closes     string   `yaml:"closes"`
}

// AreaServed is a city or region the business serves.
type AreaServed struct {
	Type string `yaml:"type"`
	Name string `yaml:"name"`
}

// IsCity reports whether the area is a city.
func (a AreaServed) IsCity() bool { return a.Type == AreaTypeCity }

// ServiceInfo describes one offered service.
type ServiceInfo struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	URL         string `yaml:"url"`
	Category    string `yaml:"category"`
}

// Navigation holds the paths of the fixed site pages.
type Navigation struct {
	HomePage           string `yaml:"home_page"`
	AboutPage          string `yaml:"about_page"`
	ServicesPage       string `yaml:"services_page"`
	ContactPage        string `yaml:"contact_page"`
	SchedulePage       string `yaml:"schedule_page"`
	PrivacyPolicyPage  string `yaml:"privacy_policy_page"`
	TermsOfServicePage string `yaml:"terms_of_service_page"`
}

// Pages returns the navigation paths in menu order.
func (n Navigation) Pages() []string {
	return []string{
		n.HomePage,
		n.AboutPage,
		n.ServicesPage,
		n.ContactPage,
		n.SchedulePage,
		n.PrivacyPolicyPage,
		n.TermsOfServicePage,
	}
}

func (c *Config) defaults() {
	c.Site.BaseURL = strings.TrimRight(c.Site.BaseURL, "/")
	if c.Site.Language == "" {
		c.Site.Language = "en-US"
	}
	if c.Navigation.HomePage == "" {
		c.Navigation.HomePage = "/"
	}
	if c.Services == nil {
		c.Services = []ServiceInfo{}
	}
	if c.SocialMedia == nil {
		c.SocialMedia = map[string]string{}
	}
	if c.Business.BusinessTypes == nil {
		c.Business.BusinessTypes = []string{}
	}
	if c.Business.OpeningHours == nil {
		c.Business.OpeningHours = []OpeningHour{}
	}
	if c.Business.AreasServed == nil {
		c.Business.AreasServed = []AreaServed{}
	}
	if c.Business.KnowsAbout == nil {
		c.Business.KnowsAbout = []string{}
	}
}

// Validate reports every configuration defect it finds: missing required
// fields and cities configured more than once.
func (c *Config) Validate() error {
	var errs []error
	required := []struct {
		name, value string
	}{
		{"site.base_url", c.Site.BaseURL},
		{"site.name", c.Site.Name},
		{"site.description", c.Site.Description},
		{"business.legal_name", c.Business.LegalName},
		{"business.telephone", c.Business.Telephone},
		{"business.email", c.Business.Email},
		{"business.address.street_address", c.Business.Address.StreetAddress},
		{"business.address.address_locality", c.Business.Address.AddressLocality},
		{"business.address.address_region", c.Business.Address.AddressRegion},
		{"business.address.postal_code", c.Business.Address.PostalCode},
		{"business.address.address_country", c.Business.Address.AddressCountry},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, fmt.Errorf("%s is required", r.name))
		}
	}
	if len(c.Business.BusinessTypes) == 0 {
		errs = append(errs, errors.New("business.business_types must not be empty"))
	}

	seen := make(map[string]string)
	for i, a := range c.Business.AreasServed {
		if strings.TrimSpace(a.Name) == "" {
			errs = append(errs, fmt.Errorf("business.areas_served[%d]: name is required", i))
			continue
		}
		if !a.IsCity() {
			continue
		}
		if strings.Contains(a.Name, "-") {
			errs = append(errs, fmt.Errorf("business.areas_served[%d]: city %q contains a hyphen and cannot be reached by its slug", i, a.Name))
			continue
		}
		key := foldKey(a.Name)
		if prev, ok := seen[key]; ok {
			errs = append(errs, fmt.Errorf("business.areas_served[%d]: city %q duplicates %q", i, a.Name, prev))
			continue
		}
		seen[key] = a.Name
	}

	if len(errs) > 0 {
		return fmt.Errorf("site config: %w", errors.Join(errs...))
	}
	return nil
}

// Parse decodes YAML config data, applies defaults and validates it.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("site config: %w", err)
	}
	cfg.defaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads and validates a YAML config file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// foldKey maps every rune to the smallest member of its case-folding orbit,
// so two names get the same key exactly when strings.EqualFold matches them.
func foldKey(s string) string {
	var b strings.Builder
	for _, r := range s {
		low := r
		for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
			low = min(low, f)
		}
		b.WriteRune(low)
	}
	return b.String()
}

package site

import (
	"path/filepath"
	"strings"
	"testing"
)

const minimalYAML = `
site:
  base_url: https://example.com/
  name: Example
  description: Example site
business:
  legal_name: Example Co
  business_types: [LocalBusiness]
  telephone: "+1-555-0100"
  email: hi@example.com
  address:
    street_address: 1 Main St
    address_locality: Irvine
    address_region: CA
    postal_code: "92618"
    address_country: US
  areas_served:
    - { type: City, name: Irvine }
    - { type: City, name: Santa Ana }
    - { type: Region, name: Orange County }
`

func TestParse_Minimal(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Site.BaseURL != "https://example.com" {
		t.Errorf("base url: got %q, trailing slash should be trimmed", cfg.Site.BaseURL)
	}
	if cfg.Site.Language != "en-US" {
		t.Errorf("language default: got %q", cfg.Site.Language)
	}
	if cfg.Navigation.HomePage != "/" {
		t.Errorf("home page default: got %q", cfg.Navigation.HomePage)
	}
	if len(cfg.Business.AreasServed) != 3 {
		t.Fatalf("areas: got %d", len(cfg.Business.AreasServed))
	}
	if !cfg.Business.AreasServed[0].IsCity() || cfg.Business.AreasServed[2].IsCity() {
		t.Error("IsCity mismatch")
	}
	if cfg.Services == nil || cfg.Business.KnowsAbout == nil || cfg.Business.OpeningHours == nil {
		t.Error("absent collections should default to empty, not nil")
	}
}

func TestParse_MissingFields(t *testing.T) {
	_, err := Parse([]byte("site:\n  name: x\n"))
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, field := range []string{"site.base_url", "business.legal_name", "business.business_types"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error should mention %s: %v", field, err)
		}
	}
}

func TestValidate_DuplicateCity(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatal(err)
	}
	cfg.Business.AreasServed = append(cfg.Business.AreasServed, AreaServed{Type: AreaTypeCity, Name: "IRVINE"})
	err = cfg.Validate()
	if err == nil {
		t.Fatal("expected duplicate city error")
	}
	if !strings.Contains(err.Error(), `"IRVINE" duplicates "Irvine"`) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_CityNames(t *testing.T) {
	tests := []struct {
		name    string
		extra   []AreaServed
		wantErr string
	}{
		{"fold-equivalent sigma", []AreaServed{
			{Type: AreaTypeCity, Name: "Σίσος"},
			{Type: AreaTypeCity, Name: "σίσοσ"},
		}, `"σίσοσ" duplicates "Σίσος"`},
		{"kelvin sign", []AreaServed{
			{Type: AreaTypeCity, Name: "Kent"},
			{Type: AreaTypeCity, Name: "\u212Aent"},
		}, "duplicates \"Kent\""},
		{"hyphenated", []AreaServed{
			{Type: AreaTypeCity, Name: "Yorba-Linda"},
		}, `"Yorba-Linda" contains a hyphen`},
		{"hyphenated region is fine", []AreaServed{
			{Type: "Region", Name: "Inland-Empire"},
		}, ""},
		{"distinct cities", []AreaServed{
			{Type: AreaTypeCity, Name: "Yorba Linda"},
			{Type: AreaTypeCity, Name: "Brea"},
		}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(minimalYAML))
			if err != nil {
				t.Fatal(err)
			}
			cfg.Business.AreasServed = append(cfg.Business.AreasServed, tt.extra...)
			err = cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("got %v, want error containing %s", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_SameNameDifferentType(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatal(err)
	}
	// A region sharing a city's name is not a duplicate city.
	cfg.Business.AreasServed = append(cfg.Business.AreasServed, AreaServed{Type: "Region", Name: "Irvine"})
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParse_BadYAML(t *testing.T) {
	if _, err := Parse([]byte("site: [")); err == nil {
		t.Fatal("expected yaml error")
	}
}

func TestLoadFile_Shipped(t *testing.T) {
	cfg, err := LoadFile(filepath.Join("..", "config", "site.yaml"))
	if err != nil {
		t.Fatalf("shipped config must load: %v", err)
	}
	if cfg.Business.LegalName == "" {
		t.Error("legal name empty")
	}
	if len(cfg.Navigation.Pages()) != 7 {
		t.Errorf("navigation pages: got %d", len(cfg.Navigation.Pages()))
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

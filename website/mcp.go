package website

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/simplecybertech/web/content"
	"github.com/simplecybertech/web/kit"
)

// RegisterMCP registers the read-only site tools on an MCP server.
func (w *Website) RegisterMCP(srv *mcp.Server) {
	w.registerResolveCityTool(srv)
	w.registerFAQTool(srv)
	w.registerGlossaryTool(srv)
	w.registerSchemaTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func (w *Website) endpoint(name string, ep kit.Endpoint) kit.Endpoint {
	if w.audit != nil {
		return kit.Chain(kit.Logging(w.logger, name), w.audit.Endpoint("mcp", name))(ep)
	}
	return kit.Chain(kit.Logging(w.logger, name))(ep)
}

// --- resolve city ---

type resolveCityReq struct {
	Slug string `json:"slug"`
}

func (w *Website) registerResolveCityTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "site_resolve_city",
		Description: "Resolve a city page slug (e.g. santa-ana) to the configured city and its nearby service areas.",
		InputSchema: inputSchema(map[string]any{
			"slug": map[string]any{"type": "string", "description": "City slug as used in /services/{slug}"},
		}, []string{"slug"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*resolveCityReq)
		return w.areas.Page(r.Slug)
	}

	kit.RegisterMCPTool(srv, tool, w.endpoint(tool.Name, endpoint), kit.DecodeArgs[resolveCityReq])
}

// --- faq ---

type faqReq struct {
	Set string `json:"set"`
}

type faqResp struct {
	Set   string       `json:"set"`
	Items []content.QA `json:"items"`
}

func (w *Website) registerFAQTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "site_faq",
		Description: "List FAQ questions with plain-text answers.",
		InputSchema: inputSchema(map[string]any{
			"set": map[string]any{"type": "string", "enum": []any{"general", "services"}, "description": "Which FAQ (default general)"},
		}, nil),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*faqReq)
		switch r.Set {
		case "", "general":
			return faqResp{Set: "general", Items: w.lib.FAQ.SchemaData()}, nil
		case "services":
			return faqResp{Set: "services", Items: w.lib.ServicesFAQ.SchemaData()}, nil
		default:
			return nil, fmt.Errorf("unknown FAQ set %q", r.Set)
		}
	}

	kit.RegisterMCPTool(srv, tool, w.endpoint(tool.Name, endpoint), kit.DecodeArgs[faqReq])
}

// --- glossary ---

type glossaryReq struct {
	Letter string `json:"letter"`
}

func (w *Website) registerGlossaryTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "site_glossary",
		Description: "List glossary terms grouped by letter, optionally for one letter only.",
		InputSchema: inputSchema(map[string]any{
			"letter": map[string]any{"type": "string", "description": "Single letter filter (case-insensitive)"},
		}, nil),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*glossaryReq)
		if r.Letter == "" {
			return w.lib.Glossary.Grouped(), nil
		}
		terms := w.lib.Glossary.Letter(r.Letter)
		if len(terms) == 0 {
			return []content.LetterGroup{}, nil
		}
		return []content.LetterGroup{{Letter: terms[0].GroupLetter(), Terms: terms}}, nil
	}

	kit.RegisterMCPTool(srv, tool, w.endpoint(tool.Name, endpoint), kit.DecodeArgs[glossaryReq])
}

// --- schema ---

type schemaReq struct {
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

type schemaResp struct {
	Name     string          `json:"name"`
	Document json.RawMessage `json:"document"`
}

// SchemaNames lists the documents site_schema can produce.
var SchemaNames = []string{
	"global", "organization", "contact", "local_business", "about",
	"services", "faq", "services_faq", "glossary", "location",
}

// SchemaDocument renders the named JSON-LD document. "location" needs the
// slug of a configured city.
func (w *Website) SchemaDocument(name, slug string) (string, error) {
	switch strings.ToLower(name) {
	case "global":
		return w.schema.Global(), nil
	case "organization":
		return w.schema.Organization(), nil
	case "contact":
		return w.schema.ContactPage(), nil
	case "local_business":
		return w.schema.LocalBusiness(), nil
	case "about":
		return w.schema.AboutPage(), nil
	case "services":
		return w.schema.ServicesCollection(), nil
	case "faq":
		return w.schema.FAQPage(w.lib.FAQ.SchemaData()), nil
	case "services_faq":
		return w.schema.FAQPage(w.lib.ServicesFAQ.SchemaData()), nil
	case "glossary":
		return w.schema.Glossary(w.lib.Glossary), nil
	case "location":
		city, err := w.areas.Resolve(slug)
		if err != nil {
			return "", fmt.Errorf("location %q: %w", slug, err)
		}
		return w.schema.Location(city.Name, city.Slug), nil
	default:
		return "", fmt.Errorf("unknown schema %q (want one of %s)", name, strings.Join(SchemaNames, ", "))
	}
}

func (w *Website) registerSchemaTool(srv *mcp.Server) {
	names := make([]any, len(SchemaNames))
	for i, n := range SchemaNames {
		names[i] = n
	}
	tool := &mcp.Tool{
		Name:        "site_schema",
		Description: "Render one of the site's schema.org JSON-LD documents.",
		InputSchema: inputSchema(map[string]any{
			"name": map[string]any{"type": "string", "enum": names, "description": "Document name"},
			"slug": map[string]any{"type": "string", "description": "City slug, required for location"},
		}, []string{"name"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*schemaReq)
		doc, err := w.SchemaDocument(r.Name, r.Slug)
		if err != nil {
			return nil, err
		}
		return schemaResp{Name: strings.ToLower(r.Name), Document: json.RawMessage(doc)}, nil
	}

	kit.RegisterMCPTool(srv, tool, w.endpoint(tool.Name, endpoint), kit.DecodeArgs[schemaReq])
}

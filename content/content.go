// Package content holds the hardcoded page content of the site: the general
// FAQ, the services-overview FAQ and the glossary. The data ships inside the
// binary as YAML and is decoded once at startup.
package content

import (
	_ "embed"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"
	"gopkg.in/yaml.v3"
)

//go:embed faq.yaml
var faqYAML []byte

//go:embed services_faq.yaml
var servicesFAQYAML []byte

//go:embed glossary.yaml
var glossaryYAML []byte

// Library is the full set of page content.
type Library struct {
	FAQ         FAQ
	ServicesFAQ FAQ
	Glossary    Glossary
}

// Load decodes the embedded content.
func Load() (*Library, error) {
	lib := &Library{}
	if err := yaml.Unmarshal(faqYAML, &lib.FAQ); err != nil {
		return nil, fmt.Errorf("content: faq: %w", err)
	}
	if err := yaml.Unmarshal(servicesFAQYAML, &lib.ServicesFAQ); err != nil {
		return nil, fmt.Errorf("content: services faq: %w", err)
	}
	if err := yaml.Unmarshal(glossaryYAML, &lib.Glossary); err != nil {
		return nil, fmt.Errorf("content: glossary: %w", err)
	}
	for i := range lib.Glossary {
		lib.Glossary[i].Letter = lib.Glossary[i].GroupLetter()
	}
	return lib, nil
}

// MustLoad is Load for package-level initialisation; the embedded data is
// fixed at build time, so a failure is a build defect.
func MustLoad() *Library {
	lib, err := Load()
	if err != nil {
		panic(err)
	}
	return lib
}

// --- FAQ ---

// FAQItem is one question with a rich-text (HTML) answer.
type FAQItem struct {
	ID       int    `yaml:"id" json:"id"`
	Question string `yaml:"question" json:"question"`
	Answer   string `yaml:"answer" json:"answer"`
}

// QA is a question paired with a plain-text answer, as embedded in JSON-LD.
type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// FAQ is an ordered list of FAQ items.
type FAQ []FAQItem

// SchemaData returns the items with answers stripped to plain text. The
// questions are kept as authored.
func (f FAQ) SchemaData() []QA {
	out := make([]QA, len(f))
	for i, it := range f {
		out[i] = QA{Question: it.Question, Answer: StripHTML(it.Answer)}
	}
	return out
}

// AnswerHTML returns the answer sanitized for direct inclusion in a page.
func (it FAQItem) AnswerHTML() template.HTML {
	return template.HTML(answerPolicy.Sanitize(it.Answer))
}

// Markdown renders the whole FAQ as a Markdown document, one section per
// question.
func (f FAQ) Markdown(title string) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", title)
	for _, it := range f {
		md, err := mdConverter.ConvertString(it.Answer)
		if err != nil {
			return "", fmt.Errorf("content: faq %d: %w", it.ID, err)
		}
		fmt.Fprintf(&b, "\n## %s\n\n%s\n", it.Question, strings.TrimSpace(md))
	}
	return b.String(), nil
}

var (
	tagPattern        = regexp.MustCompile(`<.*?>`)
	whitespacePattern = regexp.MustCompile(`[\s\v\x{85}\p{Z}]+`)
)

// StripHTML flattens an HTML fragment to one line of text: every tag becomes
// a space, whitespace runs collapse to one space and the ends are trimmed.
// Entities are left as they are.
func StripHTML(html string) string {
	if html == "" {
		return ""
	}
	text := tagPattern.ReplaceAllString(html, " ")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

var answerPolicy = newAnswerPolicy()

func newAnswerPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Globally()
	p.AllowURLSchemes("tel")
	return p
}

var mdConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(),
	),
)

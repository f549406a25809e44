package content

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Term is one glossary entry.
type Term struct {
	Letter     string `yaml:"letter" json:"letter"`
	Term       string `yaml:"term" json:"term"`
	Definition string `yaml:"definition" json:"definition"`
}

// GroupLetter is the letter the term is filed under: the explicit letter if
// set, otherwise the upper-cased first rune of the term.
func (t Term) GroupLetter() string {
	if t.Letter != "" {
		return t.Letter
	}
	r, _ := utf8.DecodeRuneInString(t.Term)
	if r == utf8.RuneError {
		return ""
	}
	return string(unicode.ToUpper(r))
}

// Slug is the fragment id of the term on the glossary page.
func (t Term) Slug() string {
	return strings.ToLower(strings.ReplaceAll(t.Term, " ", "-"))
}

// LetterGroup is the terms filed under one letter.
type LetterGroup struct {
	Letter string `json:"letter"`
	Terms  []Term `json:"terms"`
}

// Glossary is the ordered list of terms.
type Glossary []Term

// Grouped buckets terms by letter. Groups come in ascending letter order,
// terms within a group in authoring order.
func (g Glossary) Grouped() []LetterGroup {
	index := make(map[string]int)
	var groups []LetterGroup
	for _, t := range g {
		l := t.GroupLetter()
		i, ok := index[l]
		if !ok {
			i = len(groups)
			index[l] = i
			groups = append(groups, LetterGroup{Letter: l})
		}
		groups[i].Terms = append(groups[i].Terms, t)
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Letter < groups[j].Letter })
	return groups
}

// Letters lists the letters that have at least one term, ascending.
func (g Glossary) Letters() []string {
	groups := g.Grouped()
	letters := make([]string, len(groups))
	for i, gr := range groups {
		letters[i] = gr.Letter
	}
	return letters
}

// Letter returns the terms filed under letter (case-insensitive).
func (g Glossary) Letter(letter string) []Term {
	var out []Term
	for _, t := range g {
		if strings.EqualFold(t.GroupLetter(), letter) {
			out = append(out, t)
		}
	}
	return out
}

// SlugCollisions reports groups of terms whose slugs are identical. Such
// terms share one fragment id on the page.
func (g Glossary) SlugCollisions() [][]string {
	bySlug := make(map[string][]string)
	var order []string
	for _, t := range g {
		s := t.Slug()
		if _, ok := bySlug[s]; !ok {
			order = append(order, s)
		}
		bySlug[s] = append(bySlug[s], t.Term)
	}
	var out [][]string
	for _, s := range order {
		if len(bySlug[s]) > 1 {
			out = append(out, bySlug[s])
		}
	}
	return out
}

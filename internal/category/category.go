// Package category assigns a topical label to an article.
package category

import (
	"slices"
	"strings"

	"github.com/deusflow/newsdigest/internal/domain"
)

// Keywords pairs a category with the keywords that select it.
type Keywords struct {
	Category string
	Words    []string
}

// Categorizer is a pure function over immutable tables.
type Categorizer struct {
	specific []string
	table    []Keywords
}

// New builds a Categorizer. specific lists the categories a feed may assert
// authoritatively; table is scanned in order and the first hit wins.
func New(specific []string, table []Keywords) *Categorizer {
	return &Categorizer{
		specific: slices.Clone(specific),
		table:    slices.Clone(table),
	}
}

// Default returns a Categorizer over the built-in tables.
func Default() *Categorizer {
	return New(SpecificCategories, DefaultKeywords)
}

// Categorize returns the feed's category when it is already specific,
// otherwise the first keyword category that matches title+description,
// otherwise the declared category or "general".
func (c *Categorizer) Categorize(title, description, declared string) string {
	if slices.Contains(c.specific, declared) {
		return declared
	}

	text := strings.ToLower(title + " " + description)
	for _, kw := range c.table {
		if containsAny(text, kw.Words) {
			return kw.Category
		}
	}

	if declared != "" {
		return declared
	}
	return domain.CategoryGeneral
}

// containsAny is a plain substring test; text must already be lowercased.
func containsAny(text string, words []string) bool {
	for _, w := range words {
		if w != "" && strings.Contains(text, w) {
			return true
		}
	}
	return false
}

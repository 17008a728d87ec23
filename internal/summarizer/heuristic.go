package summarizer

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/deusflow/newsdigest/internal/normalize"
)

const (
	shortDescriptionLen = 50
	maxHeuristicLen     = 400
	minSentenceLen      = 20
)

var (
	sentenceSplitRe = regexp.MustCompile(`[.!?]+`)
	callToActionRe  = regexp.MustCompile(`(?i)^(click|read|more|see|watch|follow)`)
	spacesRe        = regexp.MustCompile(`\s+`)
)

// HeuristicSummary builds an extractive summary from the leading sentences of
// title and description. It is deterministic and never panics.
func HeuristicSummary(title, description string) (summary string) {
	defer func() {
		if r := recover(); r != nil {
			summary = lastResort(title, description)
		}
	}()

	if utf8.RuneCountInString(description) < shortDescriptionLen {
		return title + ". More details available in the full article."
	}

	full := collapse(title + ". " + description)
	sentences := splitSentences(full, minSentenceLen, callToActionRe)
	if len(sentences) == 0 {
		return normalize.Truncate(description, 200) + "..."
	}

	n := 3
	if strings.Contains(sentences[0], normalize.Truncate(title, 20)) {
		n = 4
	}
	selected := sentences[:min(n, len(sentences))]

	out := strings.TrimSpace(strings.Join(selected, ". "))
	if !strings.HasSuffix(out, ".") {
		out += "."
	}
	return capWithEllipsis(out, maxHeuristicLen)
}

func lastResort(title, description string) string {
	return title + ". " + normalize.Truncate(description, 150) + "..."
}

// splitSentences splits on runs of . ! ? and keeps trimmed sentences longer
// than minLen runes. Sentences matching skip are dropped.
func splitSentences(text string, minLen int, skip *regexp.Regexp) []string {
	var out []string
	for _, s := range sentenceSplitRe.Split(text, -1) {
		s = strings.TrimSpace(s)
		if utf8.RuneCountInString(s) <= minLen {
			continue
		}
		if skip != nil && skip.MatchString(s) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func collapse(s string) string {
	return strings.TrimSpace(spacesRe.ReplaceAllString(s, " "))
}

// capWithEllipsis keeps s within limit runes, ending in "..." when cut.
func capWithEllipsis(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return normalize.Truncate(s, limit-3) + "..."
}

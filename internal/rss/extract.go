package rss

import (
	"regexp"
	"strings"
	"sync"
)

// FieldExtractor pulls the text of one named field out of an item fragment.
// Callers depend only on this, so the tolerant pattern matcher can be swapped
// for a lenient parser later.
type FieldExtractor interface {
	Extract(fragment, tag string) (string, bool)
}

// PatternExtractor matches tags with regular expressions. RE2 keeps every
// pattern linear in the fragment length.
type PatternExtractor struct {
	cache sync.Map // tag -> *tagPatterns
}

type tagPatterns struct {
	cdata       *regexp.Regexp
	generic     *regexp.Regexp
	bare        *regexp.Regexp
	selfClosing *regexp.Regexp
}

var hrefRe = regexp.MustCompile(`(?i)\bhref\s*=\s*["']([^"']+)["']`)

// ExtractField is a convenience over a shared PatternExtractor.
func ExtractField(fragment, tag string) (string, bool) {
	return defaultExtractor.Extract(fragment, tag)
}

var defaultExtractor = &PatternExtractor{}

// Extract tries CDATA content, generic tag content, bare tag content and
// finally a self-closing tag's href. The first non-blank match wins.
func (e *PatternExtractor) Extract(fragment, tag string) (string, bool) {
	if fragment == "" || tag == "" {
		return "", false
	}
	p := e.patterns(tag)

	if m := p.cdata.FindStringSubmatch(fragment); m != nil {
		if v := strings.TrimSpace(m[1]); v != "" {
			return v, true
		}
	}

	if m := p.generic.FindStringSubmatch(fragment); m != nil {
		if v := strings.TrimSpace(stripCDATA(m[1])); v != "" {
			return v, true
		}
	}

	if m := p.bare.FindStringSubmatch(fragment); m != nil {
		if v := strings.TrimSpace(stripCDATA(m[1])); v != "" {
			return v, true
		}
	}

	if m := p.selfClosing.FindString(fragment); m != "" {
		if h := hrefRe.FindStringSubmatch(m); h != nil {
			if v := strings.TrimSpace(h[1]); v != "" {
				return v, true
			}
		}
	}

	return "", false
}

func (e *PatternExtractor) patterns(tag string) *tagPatterns {
	if p, ok := e.cache.Load(tag); ok {
		return p.(*tagPatterns)
	}

	t := regexp.QuoteMeta(tag)
	p := &tagPatterns{
		cdata: regexp.MustCompile(`(?is)<` + t + `(?:\s[^>]*)?>\s*<!\[CDATA\[(.*?)\]\]>\s*</` + t + `\s*>`),
		// The opening tag must not be self-closing, otherwise "<link href=.../>"
		// would swallow everything up to a later "</link>".
		generic:     regexp.MustCompile(`(?is)<` + t + `(?:\s[^>]*[^/>]|\s)?>(.*?)</` + t + `\s*>`),
		bare:        regexp.MustCompile(`(?is)<` + t + `>(.*?)</` + t + `>`),
		selfClosing: regexp.MustCompile(`(?is)<` + t + `\s[^>]*/>`),
	}

	actual, _ := e.cache.LoadOrStore(tag, p)
	return actual.(*tagPatterns)
}

func stripCDATA(s string) string {
	if !strings.Contains(s, "<![CDATA[") {
		return s
	}
	s = strings.ReplaceAll(s, "<![CDATA[", "")
	return strings.ReplaceAll(s, "]]>", "")
}

var (
	itemRe  = regexp.MustCompile(`(?is)<item(?:\s[^>]*)?>.*?</item\s*>`)
	entryRe = regexp.MustCompile(`(?is)<entry(?:\s[^>]*)?>.*?</entry\s*>`)
)

// SplitItems returns one fragment per <item>, or per <entry> when the
// document has no items.
func SplitItems(doc string) []string {
	if items := itemRe.FindAllString(doc, -1); len(items) > 0 {
		return items
	}
	return entryRe.FindAllString(doc, -1)
}

var (
	linkTagRe = regexp.MustCompile(`(?is)<link\b[^>]*>`)
	relRe     = regexp.MustCompile(`(?i)\brel\s*=\s*["']([^"']*)["']`)
)

// atomLink returns the href of an Atom <link>, preferring rel="alternate"
// and otherwise the first link without a rel.
func atomLink(fragment string) (string, bool) {
	var fallback string
	for _, tag := range linkTagRe.FindAllString(fragment, -1) {
		href, ok := tagHref(tag)
		if !ok {
			continue
		}
		rel := relRe.FindStringSubmatch(tag)
		switch {
		case rel != nil && strings.EqualFold(rel[1], "alternate"):
			return href, true
		case rel == nil && fallback == "":
			fallback = href
		}
	}
	return fallback, fallback != ""
}

// isLinkHref reports whether v is the href attribute of some <link> tag
// rather than the text of a <link> element.
func isLinkHref(fragment, v string) bool {
	for _, tag := range linkTagRe.FindAllString(fragment, -1) {
		if href, ok := tagHref(tag); ok && href == v {
			return true
		}
	}
	return false
}

func tagHref(tag string) (string, bool) {
	h := hrefRe.FindStringSubmatch(tag)
	if h == nil {
		return "", false
	}
	href := strings.TrimSpace(h[1])
	return href, href != ""
}

var (
	bareAmpRe = regexp.MustCompile(`&([a-zA-Z][a-zA-Z0-9]*;|#[0-9]+;|#[xX][0-9a-fA-F]+;)?`)
	controlRe = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
)

// prepareDocument escapes bare ampersands, drops control characters and
// normalizes line endings before items are matched.
func prepareDocument(doc string) string {
	doc = bareAmpRe.ReplaceAllStringFunc(doc, func(m string) string {
		if m != "&" {
			return m
		}
		return "&amp;"
	})
	doc = controlRe.ReplaceAllString(doc, "")
	doc = strings.ReplaceAll(doc, "\r\n", "\n")
	doc = strings.ReplaceAll(doc, "\r", "\n")
	return strings.TrimSpace(doc)
}

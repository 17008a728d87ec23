// Package normalize turns the free-form strings found in feeds into canonical values.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	tagRe        = regexp.MustCompile(`<[^>]*>`)
	entityRe     = regexp.MustCompile(`&(#[0-9]+|#[xX][0-9a-fA-F]+|quot|amp|lt|gt|nbsp|apos);`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

var namedEntities = map[string]string{
	"quot": `"`,
	"amp":  "&",
	"lt":   "<",
	"gt":   ">",
	"nbsp": " ",
	"apos": "'",
}

// rawFallbackLen bounds the text returned when cleaning fails.
const rawFallbackLen = 200

// CleanText strips markup, decodes entities and collapses whitespace.
// An empty result means there was no usable text.
func CleanText(text string) (cleaned string) {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	defer func() {
		if r := recover(); r != nil {
			cleaned = Truncate(text, rawFallbackLen) + "..."
		}
	}()

	out := tagRe.ReplaceAllString(text, " ")
	out = DecodeEntities(out)
	out = whitespaceRe.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

// DecodeEntities resolves the standard named entities plus decimal and hex
// character references. "&amp;" is unwrapped first so text escaped twice,
// such as "&amp;#039;", still decodes fully.
// References that do not name a valid code point are left as they are.
func DecodeEntities(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	s = strings.ReplaceAll(s, "&amp;", "&")
	return entityRe.ReplaceAllStringFunc(s, func(m string) string {
		name := m[1 : len(m)-1]
		if v, ok := namedEntities[name]; ok {
			return v
		}

		var (
			n   uint64
			err error
		)
		if name[1] == 'x' || name[1] == 'X' {
			n, err = strconv.ParseUint(name[2:], 16, 32)
		} else {
			n, err = strconv.ParseUint(name[1:], 10, 32)
		}
		if err != nil || n == 0 || !utf8.ValidRune(rune(n)) {
			return m
		}
		return string(rune(n))
	})
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

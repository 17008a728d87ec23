package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// minYear rejects epoch-like or garbage parses.
const minYear = 1900

var (
	trailingZoneRe   = regexp.MustCompile(`(?i)\s+(IST|EST|PST|GMT|UTC|CST|MST|PDT|EDT|CDT|MDT)\s*$`)
	gmtOffsetRe      = regexp.MustCompile(`\s+GMT[+-]\d{4}`)
	gmtNumericRe     = regexp.MustCompile(`\s+GMT([+-]\d{4})\b`)
	trailingParenRe  = regexp.MustCompile(`\s*\([^)]+\)$`)
	commaSpaceRe     = regexp.MustCompile(`,\s+`)
	isoZuluRe        = regexp.MustCompile(`Z$`)
	dateTimeRe       = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})\s+(\d{2}):(\d{2}):(\d{2})`)
	usDateTimeRe     = regexp.MustCompile(`(\d{2})/(\d{2})/(\d{4})\s+(\d{2}):(\d{2}):(\d{2})`)
	dateOnlyRe       = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)
	collapseSpacesRe = regexp.MustCompile(`\s+`)
)

// zoneOffsets gives the abbreviations feeds use a fixed offset. The general
// parser accepts them but treats unknown ones as UTC.
var zoneOffsets = map[string]string{
	"GMT": "+0000",
	"UTC": "+0000",
	"IST": "+0530",
	"EST": "-0500",
	"EDT": "-0400",
	"CST": "-0600",
	"CDT": "-0500",
	"MST": "-0700",
	"MDT": "-0600",
	"PST": "-0800",
	"PDT": "-0700",
}

// ParseDate converts the date encodings seen in RSS and Atom feeds into an
// instant. The second return value is false when no strategy succeeded.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if z := numericZone(s); z != s {
		if t, ok := parseGeneral(z); ok {
			return t, true
		}
	}

	if t, ok := parseGeneral(s); ok {
		return t, true
	}

	for _, candidate := range rewrites(s) {
		if t, ok := parseGeneral(strings.TrimSpace(candidate)); ok {
			return t, true
		}
	}

	if t, ok := parseNumeric(s); ok {
		return t, true
	}
	return time.Time{}, false
}

// PublishedAt parses s and falls back to now, so a bad date never blocks ingestion.
func PublishedAt(s string, now time.Time) time.Time {
	if t, ok := ParseDate(s); ok {
		return t
	}
	return now
}

func parseGeneral(s string) (t time.Time, ok bool) {
	if s == "" {
		return time.Time{}, false
	}
	defer func() {
		if r := recover(); r != nil {
			t, ok = time.Time{}, false
		}
	}()

	parsed, err := dateparse.ParseIn(s, time.UTC)
	if err != nil || parsed.Year() <= minYear {
		return time.Time{}, false
	}
	return parsed, true
}

// numericZone swaps a trailing zone abbreviation or a "GMT+HHMM" suffix for
// a numeric offset. s is returned unchanged when neither is present.
func numericZone(s string) string {
	if m := trailingZoneRe.FindStringSubmatchIndex(s); m != nil {
		if off, ok := zoneOffsets[strings.ToUpper(s[m[2]:m[3]])]; ok {
			return s[:m[2]] + off
		}
	}
	return gmtNumericRe.ReplaceAllString(s, " $1")
}

// rewrites returns the normalized variants tried after a direct parse fails.
// Each one is derived from the original string, not chained.
func rewrites(s string) []string {
	rfc := replaceFirst(commaSpaceRe, s, " ")
	rfc = collapseSpacesRe.ReplaceAllString(rfc, " ")

	iso := strings.Replace(s, "T", " ", 1)
	iso = isoZuluRe.ReplaceAllString(iso, "")

	return []string{
		trailingZoneRe.ReplaceAllString(s, ""),
		gmtOffsetRe.ReplaceAllString(s, ""),
		trailingParenRe.ReplaceAllString(s, ""),
		rfc,
		iso,
	}
}

func parseNumeric(s string) (time.Time, bool) {
	if m := dateTimeRe.FindStringSubmatch(s); m != nil {
		return build(m[1], m[2], m[3], m[4], m[5], m[6])
	}
	if m := usDateTimeRe.FindStringSubmatch(s); m != nil {
		return build(m[3], m[1], m[2], m[4], m[5], m[6])
	}
	if m := dateOnlyRe.FindStringSubmatch(s); m != nil {
		return build(m[1], m[2], m[3], "", "", "")
	}
	return time.Time{}, false
}

func build(year, month, day, hour, minute, second string) (time.Time, bool) {
	y, mo, d := atoi(year), atoi(month), atoi(day)
	h, mi, sec := atoi(hour), atoi(minute), atoi(second)

	if y <= minYear || mo < 1 || mo > 12 || h > 23 || mi > 59 || sec > 59 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(mo), d, h, mi, sec, 0, time.UTC)
	// time.Date normalizes overflow (Feb 30 -> Mar 2); reject that.
	if t.Day() != d || int(t.Month()) != mo {
		return time.Time{}, false
	}
	return t, true
}

func atoi(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}

func replaceFirst(re *regexp.Regexp, s, repl string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + repl + s[loc[1]:]
}

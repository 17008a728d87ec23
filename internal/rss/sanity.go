package rss

import "strings"

var htmlMarkers = []string{"<!doctype html", "<html", "<head>", "<body>"}

// LooksLikeFeed is the pre-parse gate: it rejects blank bodies, HTML pages,
// documents without feed markers and documents without any item or entry.
// It never panics.
func LooksLikeFeed(body string) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()

	if strings.TrimSpace(body) == "" {
		return false
	}

	lower := strings.ToLower(body)
	for _, m := range htmlMarkers {
		if strings.Contains(lower, m) {
			return false
		}
	}

	if !strings.Contains(lower, "<") || !strings.Contains(lower, ">") {
		return false
	}

	hasDeclaration := containsAny(lower, "<?xml", "<rss", "<feed")
	hasRoot := containsAny(lower, "<rss", "<channel", "<feed")
	if !hasDeclaration && !hasRoot {
		return false
	}

	return containsAny(lower, "<item", "<entry")
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

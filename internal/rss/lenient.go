package rss

import (
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/deusflow/newsdigest/internal/domain"
)

// parseLenient reads a well-formed document with gofeed. It covers feeds the
// pattern matcher cannot split, such as RSS 1.0 with prefixed item elements.
// ok is false when gofeed rejects the document.
func (a *Assembler) parseLenient(doc string, src domain.FeedSource) (articles []domain.Article, skipped int, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			articles, skipped, ok = nil, 0, false
		}
	}()

	feed, err := gofeed.NewParser().ParseString(doc)
	if err != nil || feed == nil {
		return nil, 0, false
	}

	articles = make([]domain.Article, 0, len(feed.Items))
	for i, item := range feed.Items {
		if item == nil {
			skipped++
			continue
		}
		art, err := a.build(feedItem(item, src), i, src)
		if err != nil {
			skipped++
			continue
		}
		articles = append(articles, art)
	}
	return articles, skipped, true
}

// feedItem maps a gofeed item onto the same raw fields the pattern
// extractor produces, with the same precedence.
func feedItem(item *gofeed.Item, src domain.FeedSource) rawItem {
	raw := rawItem{
		title:       item.Title,
		description: item.Description,
		link:        feedItemLink(item, src),
		date:        item.Published,
		image:       feedItemImage(item),
	}
	if raw.description == "" {
		raw.description = item.Content
	}
	if raw.date == "" {
		raw.date = item.Updated
	}
	if item.Author != nil {
		raw.author = item.Author.Name
	}
	if raw.author == "" && len(item.Authors) > 0 && item.Authors[0] != nil {
		raw.author = item.Authors[0].Name
	}
	return raw
}

func feedItemLink(item *gofeed.Item, src domain.FeedSource) string {
	if l := strings.TrimSpace(item.Link); l != "" {
		return l
	}
	if g := strings.TrimSpace(item.GUID); strings.HasPrefix(strings.ToLower(g), "http") {
		return g
	}
	for _, l := range item.Links {
		if l = strings.TrimSpace(l); l != "" {
			return l
		}
	}
	return fallbackLink(src)
}

// feedItemImage returns "" when nothing validates; the caller substitutes the placeholder.
func feedItemImage(item *gofeed.Item) string {
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(strings.ToLower(enc.Type), "image") && IsValidImageURL(enc.URL) {
			return strings.TrimSpace(enc.URL)
		}
	}
	if item.Image != nil && IsValidImageURL(item.Image.URL) {
		return strings.TrimSpace(item.Image.URL)
	}
	for _, body := range []string{item.Content, item.Description} {
		for _, c := range htmlImages(body) {
			if IsValidImageURL(c) {
				return strings.TrimSpace(c)
			}
		}
	}
	return ""
}

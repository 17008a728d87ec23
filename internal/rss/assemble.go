package rss

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/deusflow/newsdigest/internal/domain"
	"github.com/deusflow/newsdigest/internal/normalize"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 500
	minLinkLen        = 10
)

var (
	ErrEmptyTitle = errors.New("item has no title")
	ErrShortLink  = errors.New("item link too short")
)

// Assembler turns item fragments into Articles.
type Assembler struct {
	extractor FieldExtractor
	now       func() time.Time
}

// NewAssembler builds an Assembler. A nil extractor selects the pattern
// extractor and a nil clock selects time.Now.
func NewAssembler(ex FieldExtractor, now func() time.Time) *Assembler {
	if ex == nil {
		ex = defaultExtractor
	}
	if now == nil {
		now = time.Now
	}
	return &Assembler{extractor: ex, now: now}
}

// ParseDocument pre-normalizes a feed body and assembles every item in it.
// Items that fail validation are skipped; the count of skipped items is returned.
// When the pattern matcher finds nothing usable, the document is handed to
// the lenient parser and its items go through the same validation.
func (a *Assembler) ParseDocument(doc string, src domain.FeedSource) ([]domain.Article, int) {
	prepared := prepareDocument(doc)
	fragments := SplitItems(prepared)

	articles := make([]domain.Article, 0, len(fragments))
	skipped := 0
	for i, frag := range fragments {
		art, err := a.Assemble(frag, i, src)
		if err != nil {
			skipped++
			continue
		}
		articles = append(articles, art)
	}
	if len(articles) > 0 {
		return articles, skipped
	}

	if parsed, n, ok := a.parseLenient(prepared, src); ok && len(parsed) > 0 {
		return parsed, n
	}
	return articles, skipped
}

// rawItem holds the uncleaned values of one item, whichever parser read them.
type rawItem struct {
	title       string
	description string
	link        string
	date        string
	author      string
	image       string
}

// Assemble builds one Article from an item fragment. index is the item's
// position in the feed and only feeds the synthesized title.
func (a *Assembler) Assemble(fragment string, index int, src domain.FeedSource) (art domain.Article, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("assemble item %d: %v", index, r)
		}
	}()

	return a.build(rawItem{
		title:       a.first(fragment, "title"),
		description: a.first(fragment, "description", "summary", "content", "content:encoded"),
		link:        a.link(fragment, src),
		date:        a.first(fragment, "pubDate", "published", "updated", "dc:date"),
		author:      a.first(fragment, "author", "dc:creator", "creator"),
		image:       ExtractImage(fragment, src.Category, a.extractor),
	}, index, src)
}

// build applies cleaning, fallbacks and validation to one item.
func (a *Assembler) build(raw rawItem, index int, src domain.FeedSource) (domain.Article, error) {
	category := src.Category
	publisher := publisherName(src)

	rawTitle := raw.title
	if rawTitle == "" {
		rawTitle = fmt.Sprintf("Article %d", index+1)
	}
	title := normalize.CleanText(rawTitle)
	if title == "" {
		title = fmt.Sprintf("%s News Article", category)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.Article{}, ErrEmptyTitle
	}

	description := normalize.CleanText(raw.description)
	if description == "" {
		description = "Read more on " + publisher
	}

	link := strings.TrimSpace(normalize.DecodeEntities(raw.link))
	if len(link) <= minLinkLen {
		return domain.Article{}, ErrShortLink
	}

	now := a.now()
	published := now
	if raw.date != "" {
		published = normalize.PublishedAt(normalize.CleanText(raw.date), now)
	}

	author := normalize.CleanText(raw.author)
	if author == "" {
		author = publisher
	}

	image := raw.image
	if image == "" {
		image = PlaceholderImage(category)
	}

	description = normalize.Truncate(description, maxDescriptionLen)

	return domain.Article{
		ID:          domain.GenerateID(link),
		Title:       normalize.Truncate(title, maxTitleLen),
		Description: description,
		URL:         link,
		ImageURL:    image,
		PublishedAt: published.UTC(),
		Source:      domain.Source{ID: src.ID, Name: publisher},
		Author:      author,
		Content:     description,
		FullContent: description,
		Category:    category,
	}, nil
}

// first returns the first field in the chain that yields text.
func (a *Assembler) first(fragment string, tags ...string) string {
	for _, tag := range tags {
		if v, ok := a.extractor.Extract(fragment, tag); ok {
			return v
		}
	}
	return ""
}

// link follows the <link> text, guid, Atom href, then a per-source fallback
// URL. A guid is only used when it is an absolute URL. An href read from a
// self-closing <link> is held back so rel="alternate" can win over rel="self".
func (a *Assembler) link(fragment string, src domain.FeedSource) string {
	v, hasLink := a.extractor.Extract(fragment, "link")
	if hasLink && !isLinkHref(fragment, v) {
		return v
	}
	if g, ok := a.extractor.Extract(fragment, "guid"); ok && strings.HasPrefix(strings.ToLower(g), "http") {
		return g
	}
	if h, ok := atomLink(fragment); ok {
		return h
	}
	if hasLink {
		return v
	}
	return fallbackLink(src)
}

func fallbackLink(src domain.FeedSource) string {
	u, err := url.Parse(src.URL)
	if err != nil || u.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s://%s/%s", u.Scheme, u.Host, src.ID)
}

func publisherName(src domain.FeedSource) string {
	if src.Publisher != "" {
		return src.Publisher
	}
	return DefaultPublisher
}

// Package rss fetches RSS/Atom feeds and turns their items into Articles
// using tolerant pattern matching, with gofeed as a fallback for well-formed
// documents the patterns cannot split.
package rss

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/deusflow/newsdigest/internal/domain"
)

// DefaultPublisher names the source when a feed entry does not.
const DefaultPublisher = "News18"

// CategoryMapping folds feed ids into canonical topics. Ids not listed map to themselves.
var CategoryMapping = map[string]string{
	"cricket": "sports",
	"movies":  "entertainment",
}

// MapCategory returns the canonical topic for a feed id.
func MapCategory(id string) string {
	if c, ok := CategoryMapping[id]; ok {
		return c
	}
	return id
}

// FeedsConfig is the YAML config structure
//
//	publisher: News18
//	feeds:
//	  - id: technology
//	    url: https://...
type FeedsConfig struct {
	Publisher string              `yaml:"publisher"`
	Feeds     []domain.FeedSource `yaml:"feeds"`
}

const news18Base = "https://www.news18.com/commonfeeds/v1/eng/rss/"

var defaultFeeds = []struct{ id, path string }{
	{"india", "india.xml"},
	{"world", "world.xml"},
	{"politics", "politics.xml"},
	{"business", "business.xml"},
	{"technology", "tech.xml"},
	{"sports", "sports.xml"},
	{"cricket", "cricket.xml"},
	{"entertainment", "entertainment.xml"},
	{"movies", "movies.xml"},
	{"lifestyle", "lifestyle-2.xml"},
	{"health", "health.xml"},
	{"education", "education-career.xml"},
	{"auto", "auto.xml"},
	{"viral", "viral.xml"},
	{"explainers", "explainers.xml"},
}

// DefaultSources returns the built-in feed table.
func DefaultSources() []domain.FeedSource {
	out := make([]domain.FeedSource, 0, len(defaultFeeds))
	for _, f := range defaultFeeds {
		out = append(out, domain.FeedSource{
			ID:        f.id,
			URL:       news18Base + f.path,
			Category:  MapCategory(f.id),
			Publisher: DefaultPublisher,
		})
	}
	return out
}

// LoadSources reads the feed table from a YAML file. A missing file yields
// the built-in table.
func LoadSources(path string) ([]domain.FeedSource, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultSources(), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg FeedsConfig
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return normalizeSources(cfg)
}

func normalizeSources(cfg FeedsConfig) ([]domain.FeedSource, error) {
	publisher := strings.TrimSpace(cfg.Publisher)
	if publisher == "" {
		publisher = DefaultPublisher
	}

	out := make([]domain.FeedSource, 0, len(cfg.Feeds))
	for i, s := range cfg.Feeds {
		s.ID = strings.TrimSpace(s.ID)
		s.URL = strings.TrimSpace(s.URL)
		if s.ID == "" || s.URL == "" {
			return nil, fmt.Errorf("feed %d: id and url are required", i)
		}
		if s.Category == "" {
			s.Category = MapCategory(s.ID)
		}
		if s.Publisher == "" {
			s.Publisher = publisher
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil, errors.New("no feeds configured")
	}
	return out, nil
}

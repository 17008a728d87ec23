// Package domain holds the records shared by the ingestion pipeline and the HTTP API.
package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// CategoryGeneral is assigned when neither the feed nor the keyword table yields a topic.
const CategoryGeneral = "general"

// Provenance tags reported in the news response "source" field.
const (
	SourceAILive           = "ai-backed-live"
	SourceHeuristicLive    = "heuristic-live"
	SourceDemo             = "demo-data"
	SourceDemoAfterFailure = "demo-data-after-error"
)

// FeedSource is one configured RSS/Atom endpoint. It is defined at startup and never mutated.
type FeedSource struct {
	ID        string `yaml:"id"`
	URL       string `yaml:"url"`
	Category  string `yaml:"category"`
	Publisher string `yaml:"publisher"`
}

// Source identifies where an article came from.
type Source struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Article is the normalized record produced by the ingestion pipeline.
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	ImageURL    string    `json:"urlToImage"`
	PublishedAt time.Time `json:"publishedAt"`
	Source      Source    `json:"source"`
	Author      string    `json:"author,omitempty"`
	Content     string    `json:"content,omitempty"`
	FullContent string    `json:"fullContent,omitempty"`
	Category    string    `json:"aiCategory"`
	Summary     string    `json:"aiSummary,omitempty"`
}

// NewsResponse is the payload served by the news endpoint.
type NewsResponse struct {
	Articles        []Article `json:"articles"`
	TotalResults    int       `json:"totalResults"`
	Source          string    `json:"source"`
	FeedsSuccessful int       `json:"feedsSuccessful,omitempty"`
	FeedsTotal      int       `json:"feedsTotal,omitempty"`
	Error           string    `json:"error,omitempty"`
}

// GenerateID derives a short stable identifier from an article URL.
func GenerateID(url string) string {
	hash := sha256.Sum256([]byte(url))
	return hex.EncodeToString(hash[:])[:16]
}

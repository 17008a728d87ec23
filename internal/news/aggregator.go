// Package news runs the aggregation pipeline: fetch every feed, merge, sort,
// truncate, recategorize and enrich with summaries.
package news

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/deusflow/newsdigest/internal/category"
	"github.com/deusflow/newsdigest/internal/domain"
	"github.com/deusflow/newsdigest/internal/metrics"
	"github.com/deusflow/newsdigest/internal/ratelimit"
	"github.com/deusflow/newsdigest/internal/rss"
	"github.com/deusflow/newsdigest/internal/summarizer"
)

const (
	DefaultMaxArticles = 150
	DefaultBatchSize   = 8
	DefaultBatchPause  = 1200 * time.Millisecond
)

// FeedFetcher fetches one source; *rss.Fetcher satisfies it.
type FeedFetcher interface {
	Fetch(ctx context.Context, src domain.FeedSource) rss.FetchResult
}

type Config struct {
	MaxArticles int
	BatchSize   int
	BatchPause  time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxArticles <= 0 {
		c.MaxArticles = DefaultMaxArticles
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.BatchPause < 0 {
		c.BatchPause = 0
	}
	return c
}

type Aggregator struct {
	fetcher     FeedFetcher
	sources     []domain.FeedSource
	categorizer *category.Categorizer
	summarizer  *summarizer.Summarizer
	clock       ratelimit.Clock
	metrics     *metrics.Metrics
	cfg         Config
	log         *slog.Logger
}

type Option func(*Aggregator)

func WithClock(c ratelimit.Clock) Option { return func(a *Aggregator) { a.clock = c } }

func WithMetrics(m *metrics.Metrics) Option { return func(a *Aggregator) { a.metrics = m } }

func WithLogger(l *slog.Logger) Option { return func(a *Aggregator) { a.log = l } }

func WithCategorizer(c *category.Categorizer) Option {
	return func(a *Aggregator) { a.categorizer = c }
}

// NewAggregator wires the pipeline. sources are copied and never mutated.
func NewAggregator(fetcher FeedFetcher, sources []domain.FeedSource, sum *summarizer.Summarizer, cfg Config, opts ...Option) *Aggregator {
	a := &Aggregator{
		fetcher:     fetcher,
		sources:     slices.Clone(sources),
		categorizer: category.Default(),
		summarizer:  sum,
		clock:       ratelimit.RealClock{},
		metrics:     metrics.Global,
		cfg:         cfg.withDefaults(),
		log:         slog.Default(),
	}
	for _, o := range opts {
		o(a)
	}
	if a.summarizer == nil {
		a.summarizer = summarizer.New(nil, nil, a.log)
	}
	a.log = a.log.With("component", "aggregator")
	return a
}

// Aggregate always returns presentable content: live articles when any feed
// delivers, the demonstration set otherwise.
func (a *Aggregator) Aggregate(ctx context.Context) (resp domain.NewsResponse) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("aggregation panic, serving demo data", "panic", r)
			a.metrics.SetError(fmt.Sprint(r))
			resp = demoResponse(a.clock.Now(), domain.SourceDemoAfterFailure)
			resp.Error = fmt.Sprint(r)
		}
		a.metrics.RecordProcessingTime(time.Since(start))
		a.metrics.RecordAggregation(resp.Source, len(resp.Articles), resp.Source == domain.SourceDemo || resp.Source == domain.SourceDemoAfterFailure)
	}()

	aiLive := a.summarizer.HasGenerator() && a.summarizer.Probe(ctx)
	a.log.Info("aggregation started", "feeds", len(a.sources), "ai_live", aiLive)

	articles, succeeded := a.fetchAll(ctx)
	a.log.Info("feeds fetched", "successful", succeeded, "total", len(a.sources), "articles", len(articles))

	if len(articles) == 0 {
		a.log.Warn("no articles from any feed, serving demo data")
		a.metrics.SetLastRun()
		return demoResponse(a.clock.Now(), domain.SourceDemo)
	}

	slices.SortStableFunc(articles, func(x, y domain.Article) int {
		return y.PublishedAt.Compare(x.PublishedAt)
	})
	if len(articles) > a.cfg.MaxArticles {
		articles = articles[:a.cfg.MaxArticles]
	}

	for i := range articles {
		articles[i].Category = a.categorizer.Categorize(articles[i].Title, articles[i].Description, articles[i].Category)
	}

	aiCount := a.summarize(ctx, articles, aiLive)

	source := domain.SourceHeuristicLive
	if aiLive && aiCount > 0 {
		source = domain.SourceAILive
	}
	a.metrics.SetLastRun()
	a.log.Info("aggregation finished", "articles", len(articles), "ai_summaries", aiCount, "source", source)

	return domain.NewsResponse{
		Articles:        articles,
		TotalResults:    len(articles),
		Source:          source,
		FeedsSuccessful: succeeded,
		FeedsTotal:      len(a.sources),
	}
}

// fetchAll fans out over every source. Each goroutine writes only its own slot.
func (a *Aggregator) fetchAll(ctx context.Context) ([]domain.Article, int) {
	results := make([]rss.FetchResult, len(a.sources))

	var g errgroup.Group
	for i, src := range a.sources {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					results[i] = rss.FetchResult{Source: src, Outcome: rss.OutcomeTransport, Err: fmt.Errorf("fetch panic: %v", r)}
				}
			}()
			results[i] = a.fetcher.Fetch(ctx, src)
			return nil
		})
	}
	_ = g.Wait()

	var (
		articles  []domain.Article
		succeeded int
	)
	for _, res := range results {
		ok := res.Outcome == rss.OutcomeOK
		a.metrics.RecordFeed(string(res.Outcome), ok)
		if !ok {
			a.log.Warn("feed failed",
				"feed", res.Source.ID,
				"outcome", res.Outcome,
				"status", res.StatusCode,
				"duration", res.Duration,
				"error", res.Err)
			continue
		}
		a.log.Debug("feed fetched",
			"feed", res.Source.ID,
			"dialect", res.Dialect,
			"articles", len(res.Articles),
			"skipped", res.Skipped,
			"duration", res.Duration)
		succeeded++
		articles = append(articles, res.Articles...)
	}
	return articles, succeeded
}

// summarize fills Summary in place, batch by batch. Items in a batch run
// concurrently; the pause between batches applies only when AI is live.
func (a *Aggregator) summarize(ctx context.Context, articles []domain.Article, aiLive bool) int {
	aiCount := 0
	for start := 0; start < len(articles); start += a.cfg.BatchSize {
		end := min(start+a.cfg.BatchSize, len(articles))
		batch := articles[start:end]
		results := make([]summarizer.Result, len(batch))

		var g errgroup.Group
		for i := range batch {
			g.Go(func() error {
				results[i] = a.summarizer.Summarize(ctx, batch[i].Title, batch[i].Description, aiLive)
				return nil
			})
		}
		_ = g.Wait()

		for i, res := range results {
			batch[i].Summary = res.Summary
			a.metrics.RecordSummary(res.AI, res.Quota)
			if res.AI {
				aiCount++
			}
		}

		if aiLive && end < len(articles) && a.cfg.BatchPause > 0 {
			if err := a.clock.Sleep(ctx, a.cfg.BatchPause); err != nil {
				a.log.Warn("batch pause interrupted", "error", err)
			}
		}
	}
	return aiCount
}

// Package app wires the pipeline together and runs the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/deusflow/newsdigest/internal/api"
	"github.com/deusflow/newsdigest/internal/cache"
	"github.com/deusflow/newsdigest/internal/category"
	"github.com/deusflow/newsdigest/internal/config"
	"github.com/deusflow/newsdigest/internal/gemini"
	"github.com/deusflow/newsdigest/internal/metrics"
	"github.com/deusflow/newsdigest/internal/news"
	"github.com/deusflow/newsdigest/internal/ratelimit"
	"github.com/deusflow/newsdigest/internal/rss"
	"github.com/deusflow/newsdigest/internal/summarizer"
)

type App struct {
	cfg     *config.Config
	gemini  *gemini.Client
	limiter *ratelimit.Limiter
	memo    *cache.Cache
	metrics *metrics.Metrics
	handler http.Handler
	log     *slog.Logger
}

// New builds every component from cfg. A missing or rejected Gemini key is
// not fatal; the pipeline then runs on heuristics only.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}

	sources, err := rss.LoadSources(cfg.FeedsConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load feed sources: %w", err)
	}

	a := &App{cfg: cfg, metrics: metrics.Global, log: log}

	a.limiter = ratelimit.New(ratelimit.Config{
		RequestsPerSecond: cfg.AIRequestsPerSecond,
		Burst:             cfg.AIBurst,
		MaxRequests:       cfg.MaxGeminiRequests,
	}, ratelimit.RealClock{}, log.With("component", "ratelimit"))

	var gen summarizer.Generator
	client, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:   cfg.GeminiAPIKey,
		Model:    cfg.GeminiModel,
		Endpoint: cfg.GeminiEndpoint,
	}, log)
	switch {
	case err == nil:
		a.gemini = client
		gen = client
		log.Info("Gemini API configured", "model", cfg.GeminiModel)
	case errors.Is(err, gemini.ErrNotConfigured):
		log.Info("no valid Gemini key, using heuristic summaries")
	default:
		log.Warn("Gemini client unavailable, using heuristic summaries", "error", err)
	}

	sum := summarizer.New(gen, a.limiter, log)
	if gen != nil && cfg.SummaryCacheTTL > 0 {
		a.memo = cache.New(cfg.SummaryCacheTTL, time.Hour)
		sum.SetCache(a.memo)
	}

	fetcher := rss.NewFetcher(
		rss.WithTimeout(cfg.FeedTimeout),
		rss.WithRetry(cfg.FeedRetryAttempts, 500*time.Millisecond),
		rss.WithLogger(log.With("component", "fetcher")),
	)

	agg := news.NewAggregator(fetcher, sources, sum, news.Config{
		MaxArticles: cfg.MaxArticles,
		BatchSize:   cfg.SummaryBatchSize,
		BatchPause:  cfg.AIBatchPause,
	},
		news.WithCategorizer(category.Default()),
		news.WithMetrics(a.metrics),
		news.WithLogger(log),
	)

	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	a.handler = api.NewRouter(api.NewHandler(agg, sum, a.metrics, a.limiter, log))

	log.Info("pipeline ready", "feeds", len(sources), "ai", a.gemini != nil, "max_articles", cfg.MaxArticles)
	return a, nil
}

// Handler returns the HTTP routes.
func (a *App) Handler() http.Handler { return a.handler }

// Close releases the Gemini client and stops the cache sweep.
func (a *App) Close() {
	a.gemini.Close()
	if a.memo != nil {
		a.memo.Close()
	}
}

// Serve listens on ln until ctx is cancelled, then shuts down gracefully.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info("shutting down HTTP server", "timeout", a.cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Run builds the app, listens on cfg.Port and blocks until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	a, err := New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	ln, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return fmt.Errorf("listen on port %s: %w", cfg.Port, err)
	}
	return a.Serve(ctx, ln)
}

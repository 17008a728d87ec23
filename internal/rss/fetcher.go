package rss

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/deusflow/newsdigest/internal/domain"
	"github.com/deusflow/newsdigest/internal/retry"
)

// Outcome tags why a fetch produced what it did.
type Outcome string

const (
	OutcomeOK         Outcome = "ok"
	OutcomeTimeout    Outcome = "timeout"
	OutcomeTransport  Outcome = "transport"
	OutcomeBadStatus  Outcome = "bad_status"
	OutcomeEmptyBody  Outcome = "empty_body"
	OutcomeInvalidXML Outcome = "invalid_xml"
	OutcomeNoItems    Outcome = "no_items"
)

const (
	DefaultTimeout = 15 * time.Second
	maxBodyBytes   = 10 << 20
	userAgent      = "Mozilla/5.0 (compatible; NewsDigest/1.0; +https://github.com/deusflow/newsdigest)"
	acceptFeeds    = "application/rss+xml, application/xml, text/xml, application/atom+xml, */*"
)

// FetchResult is what one source yielded. Articles is empty unless Outcome is OK.
type FetchResult struct {
	Source     domain.FeedSource
	Articles   []domain.Article
	Outcome    Outcome
	StatusCode int
	Dialect    string
	Skipped    int
	Duration   time.Duration
	Err        error
}

// Fetcher downloads one feed and assembles its items.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	retry     retry.RetryConfig
	assembler *Assembler
	log       *slog.Logger
}

// FetcherOption customizes a Fetcher.
type FetcherOption func(*Fetcher)

func WithHTTPClient(c *http.Client) FetcherOption { return func(f *Fetcher) { f.client = c } }

func WithTimeout(d time.Duration) FetcherOption { return func(f *Fetcher) { f.timeout = d } }

func WithAssembler(a *Assembler) FetcherOption { return func(f *Fetcher) { f.assembler = a } }

func WithLogger(l *slog.Logger) FetcherOption { return func(f *Fetcher) { f.log = l } }

// WithRetry sets how many times a transport failure is retried inside the timeout.
func WithRetry(attempts int, delay time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.retry.MaxAttempts = attempts
		f.retry.Delay = delay
	}
}

func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:  &http.Client{},
		timeout: DefaultTimeout,
		retry: retry.RetryConfig{
			MaxAttempts: 1,
			Delay:       500 * time.Millisecond,
			Retryable:   isTransient,
		},
		assembler: NewAssembler(nil, nil),
		log:       slog.Default(),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Fetch never returns an error; every failure is folded into the result's Outcome.
func (f *Fetcher) Fetch(ctx context.Context, src domain.FeedSource) (res FetchResult) {
	start := time.Now()
	res = FetchResult{Source: src}
	defer func() {
		if r := recover(); r != nil {
			res.Articles = nil
			res.Outcome = OutcomeInvalidXML
			res.Err = fmt.Errorf("panic while parsing feed: %v", r)
		}
		res.Duration = time.Since(start)
	}()

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	var body string
	err := retry.WithRetry(ctx, f.retry, func() error {
		status, b, err := f.get(ctx, src.URL)
		res.StatusCode = status
		body = b
		return err
	})
	if err != nil {
		res.Err = err
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			res.Outcome = OutcomeTimeout
		} else {
			res.Outcome = OutcomeTransport
		}
		return res
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		res.Outcome = OutcomeBadStatus
		res.Err = fmt.Errorf("HTTP %d", res.StatusCode)
		return res
	}
	if strings.TrimSpace(body) == "" {
		res.Outcome = OutcomeEmptyBody
		return res
	}
	if !LooksLikeFeed(body) {
		res.Outcome = OutcomeInvalidXML
		return res
	}

	res.Dialect = detectDialect(body)
	res.Articles, res.Skipped = f.assembler.ParseDocument(body, src)
	if len(res.Articles) == 0 {
		res.Articles = nil
		res.Outcome = OutcomeNoItems
		return res
	}

	res.Outcome = OutcomeOK
	f.log.Debug("feed parsed",
		"feed", src.ID,
		"dialect", res.Dialect,
		"articles", len(res.Articles),
		"skipped", res.Skipped)
	return res
}

func (f *Fetcher) get(ctx context.Context, url string) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return 0, "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptFeeds)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, "", fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, string(raw), nil
}

// isTransient keeps deadline errors from being retried; the budget is already spent.
func isTransient(err error) bool {
	return !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled)
}

func detectDialect(body string) string {
	switch gofeed.DetectFeedType(strings.NewReader(body)) {
	case gofeed.FeedTypeRSS:
		return "rss"
	case gofeed.FeedTypeAtom:
		return "atom"
	default:
		return "unknown"
	}
}

// Package summarizer produces article synopses and answers questions about
// pasted text. The generative AI service is preferred; a deterministic
// heuristic takes over whenever it is unavailable.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/deusflow/newsdigest/internal/cache"
	"github.com/deusflow/newsdigest/internal/gemini"
	"github.com/deusflow/newsdigest/internal/ratelimit"
)

const (
	NoteQuota    = "AI analysis unavailable due to quota limits - using basic text processing"
	NoteFallback = "AI analysis unavailable - using basic text processing"
)

const summaryPrompt = `Please provide a clear, concise summary of this news article in 2-3 sentences that explain the key points in simple terms:

Title: %s
Content: %s

Summary:`

// Generator is the text generation capability; *gemini.Client satisfies it.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts gemini.GenerateOptions) (string, error)
}

// Pinger is implemented by generators with a dedicated connectivity probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DefaultProbeTimeout bounds the connectivity check run before each aggregation.
const DefaultProbeTimeout = 10 * time.Second

type Summarizer struct {
	gen          Generator
	limiter      *ratelimit.Limiter
	memo         *cache.Cache
	probeTimeout time.Duration
	log          *slog.Logger
}

// New builds a Summarizer. gen and limiter may be nil; without a generator
// every call takes the heuristic path.
func New(gen Generator, limiter *ratelimit.Limiter, log *slog.Logger) *Summarizer {
	if log == nil {
		log = slog.Default()
	}
	return &Summarizer{
		gen:          gen,
		limiter:      limiter,
		probeTimeout: DefaultProbeTimeout,
		log:          log.With("component", "summarizer"),
	}
}

// SetCache makes article summaries from the generator reusable across
// requests until they expire. nil disables it.
func (s *Summarizer) SetCache(c *cache.Cache) { s.memo = c }

// HasGenerator reports whether an AI generator is configured at all.
func (s *Summarizer) HasGenerator() bool { return s.gen != nil }

// Probe checks once whether the AI path is worth attempting.
func (s *Summarizer) Probe(ctx context.Context) bool {
	if s.gen == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, s.probeTimeout)
	defer cancel()

	var err error
	if p, ok := s.gen.(Pinger); ok {
		err = p.Ping(ctx)
	} else {
		_, err = s.gen.Generate(ctx, "Test connection", gemini.GenerateOptions{MaxTokens: 10, Temperature: 0.1})
	}
	if err != nil {
		s.log.Warn("AI probe failed", "error", err, "quota", gemini.IsQuotaError(err))
		return false
	}
	return true
}

// Result is one article summary and how it was produced.
type Result struct {
	Summary string
	Note    string
	AI      bool
	Quota   bool
}

// Summarize never fails: AI errors fall back to the heuristic and panics to
// the last-resort template.
func (s *Summarizer) Summarize(ctx context.Context, title, description string, useAI bool) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("summarizer panic", "panic", r)
			res = Result{Summary: lastResort(title, description), Note: NoteFallback}
		}
	}()

	if !useAI || s.gen == nil {
		return Result{Summary: HeuristicSummary(title, description)}
	}

	key := cache.Key(title, description)
	if s.memo != nil {
		if text, ok := s.memo.Get(key); ok {
			return Result{Summary: text, AI: true}
		}
	}

	text, err := s.generate(ctx, fmt.Sprintf(summaryPrompt, title, description),
		gemini.GenerateOptions{MaxTokens: 200, Temperature: 0.3})
	if err == nil && text == "" {
		err = gemini.ErrEmptyResponse
	}
	if err != nil {
		quota := isQuota(err)
		s.log.Warn("AI summary failed, using heuristic", "error", err, "quota", quota)
		return Result{Summary: HeuristicSummary(title, description), Note: noteFor(err), Quota: quota}
	}
	if s.memo != nil {
		s.memo.Set(key, text)
	}
	return Result{Summary: text, AI: true}
}

// generate applies the request budget and pacing before calling the generator.
func (s *Summarizer) generate(ctx context.Context, prompt string, opts gemini.GenerateOptions) (string, error) {
	if s.gen == nil {
		return "", gemini.ErrNotConfigured
	}
	if s.limiter != nil {
		if err := s.limiter.Acquire(); err != nil {
			return "", err
		}
		if err := s.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}
	text, err := s.gen.Generate(ctx, prompt, opts)
	return strings.TrimSpace(text), err
}

func isQuota(err error) bool {
	return errors.Is(err, ratelimit.ErrBudgetExhausted) || gemini.IsQuotaError(err)
}

func noteFor(err error) string {
	if isQuota(err) {
		return NoteQuota
	}
	return NoteFallback
}

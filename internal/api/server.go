// Package api exposes the pipeline over HTTP JSON endpoints.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/deusflow/newsdigest/internal/domain"
	"github.com/deusflow/newsdigest/internal/metrics"
	"github.com/deusflow/newsdigest/internal/ratelimit"
	"github.com/deusflow/newsdigest/internal/summarizer"
)

// NewsAggregator produces the news payload; *news.Aggregator satisfies it.
type NewsAggregator interface {
	Aggregate(ctx context.Context) domain.NewsResponse
}

// TextAnalyzer backs the pasted-text endpoints; *summarizer.Summarizer satisfies it.
type TextAnalyzer interface {
	AnalyzeText(ctx context.Context, article string) summarizer.Analysis
	AskQuestion(ctx context.Context, article, question string) summarizer.Answer
}

type Handler struct {
	news     NewsAggregator
	analyzer TextAnalyzer
	metrics  *metrics.Metrics
	limiter  *ratelimit.Limiter
	log      *slog.Logger
}

// NewHandler wires the endpoints. limiter may be nil.
func NewHandler(news NewsAggregator, analyzer TextAnalyzer, m *metrics.Metrics, limiter *ratelimit.Limiter, log *slog.Logger) *Handler {
	if m == nil {
		m = metrics.Global
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handler{news: news, analyzer: analyzer, metrics: m, limiter: limiter, log: log.With("component", "api")}
}

// NewRouter constructs a gin engine with every route registered.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog(h.log))

	api := r.Group("/api")
	api.GET("/news", h.getNews)
	api.POST("/summarize-text", h.summarizeText)
	api.POST("/ask-question", h.askQuestion)

	r.GET("/health", h.health)
	r.GET("/metrics", h.stats)
	return r
}

type summarizeRequest struct {
	Article string `json:"article"`
}

type askRequest struct {
	Article  string `json:"article"`
	Question string `json:"question"`
}

func (h *Handler) getNews(c *gin.Context) {
	c.JSON(http.StatusOK, h.news.Aggregate(c.Request.Context()))
}

func (h *Handler) summarizeText(c *gin.Context) {
	var req summarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Article) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Article text is required"})
		return
	}

	h.metrics.IncrementTextAnalyses()
	c.JSON(http.StatusOK, h.analyzer.AnalyzeText(c.Request.Context(), req.Article))
}

func (h *Handler) askQuestion(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Article) == "" || strings.TrimSpace(req.Question) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Article and question are required"})
		return
	}

	h.metrics.IncrementQuestionsAnswered()
	c.JSON(http.StatusOK, h.analyzer.AskQuestion(c.Request.Context(), req.Article, req.Question))
}

func (h *Handler) health(c *gin.Context) {
	stats := h.metrics.GetStats()

	status := "ok"
	code := http.StatusOK
	if !h.metrics.Healthy() {
		status = "error"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	})
}

func (h *Handler) stats(c *gin.Context) {
	stats := h.metrics.GetStats()
	if h.limiter != nil {
		ls := h.limiter.GetStats()
		stats["ai_requests_used"] = ls.Used
		stats["ai_requests_limit"] = ls.Limit
		stats["ai_throttled"] = ls.Throttled
		stats["ai_waited_ms"] = ls.Waited.Milliseconds()
	}
	c.JSON(http.StatusOK, stats)
}

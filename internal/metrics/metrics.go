package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	Aggregations       int64
	ArticlesServed     int64
	FeedsSucceeded     int64
	FeedsFailed        int64
	FeedOutcomes       map[string]int64
	AISummaries        int64
	HeuristicSummaries int64
	QuotaFallbacks     int64
	DemoResponses      int64
	TextAnalyses       int64
	QuestionsAnswered  int64

	// Timings
	LastProcessingTime    time.Duration
	AverageProcessingTime time.Duration
	TotalProcessingTime   time.Duration
	ProcessingCount       int64

	// Status
	LastRunTime   time.Time
	LastSource    string
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = New()

func New() *Metrics {
	return &Metrics{IsHealthy: true, FeedOutcomes: map[string]int64{}}
}

// RecordFeed counts one fetch outcome.
func (m *Metrics) RecordFeed(outcome string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ok {
		m.FeedsSucceeded++
	} else {
		m.FeedsFailed++
	}
	m.FeedOutcomes[outcome]++
}

// RecordSummary counts one article summary by how it was produced.
func (m *Metrics) RecordSummary(ai, quota bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ai {
		m.AISummaries++
		return
	}
	m.HeuristicSummaries++
	if quota {
		m.QuotaFallbacks++
	}
}

// RecordAggregation counts a finished news request and its provenance.
func (m *Metrics) RecordAggregation(source string, articles int, demo bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Aggregations++
	m.ArticlesServed += int64(articles)
	m.LastSource = source
	if demo {
		m.DemoResponses++
	}
}

func (m *Metrics) IncrementTextAnalyses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TextAnalyses++
}

func (m *Metrics) IncrementQuestionsAnswered() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QuestionsAnswered++
}

func (m *Metrics) RecordProcessingTime(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastProcessingTime = duration
	m.TotalProcessingTime += duration
	m.ProcessingCount++

	if m.ProcessingCount > 0 {
		m.AverageProcessingTime = m.TotalProcessingTime / time.Duration(m.ProcessingCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

// Healthy reports the status set by the last run.
func (m *Metrics) Healthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.IsHealthy
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	outcomes := make(map[string]int64, len(m.FeedOutcomes))
	for k, v := range m.FeedOutcomes {
		outcomes[k] = v
	}

	return map[string]interface{}{
		"aggregations":               m.Aggregations,
		"articles_served":            m.ArticlesServed,
		"feeds_succeeded":            m.FeedsSucceeded,
		"feeds_failed":               m.FeedsFailed,
		"feed_outcomes":              outcomes,
		"ai_summaries":               m.AISummaries,
		"heuristic_summaries":        m.HeuristicSummaries,
		"quota_fallbacks":            m.QuotaFallbacks,
		"demo_responses":             m.DemoResponses,
		"text_analyses":              m.TextAnalyses,
		"questions_answered":         m.QuestionsAnswered,
		"last_processing_time_ms":    m.LastProcessingTime.Milliseconds(),
		"average_processing_time_ms": m.AverageProcessingTime.Milliseconds(),
		"last_run_time":              m.LastRunTime.Format(time.RFC3339),
		"last_source":                m.LastSource,
		"last_error_time":            m.LastErrorTime.Format(time.RFC3339),
		"last_error":                 m.LastError,
		"is_healthy":                 m.IsHealthy,
	}
}

package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.RecordFeed("ok", true)
	m.RecordFeed("bad_status", false)
	m.RecordFeed("bad_status", false)
	m.RecordSummary(true, false)
	m.RecordSummary(false, true)
	m.RecordSummary(false, false)
	m.RecordAggregation("heuristic-live", 12, false)
	m.RecordAggregation("demo-data", 3, true)

	stats := m.GetStats()
	assert.Equal(t, int64(1), stats["feeds_succeeded"])
	assert.Equal(t, int64(2), stats["feeds_failed"])
	assert.Equal(t, map[string]int64{"ok": 1, "bad_status": 2}, stats["feed_outcomes"])
	assert.Equal(t, int64(1), stats["ai_summaries"])
	assert.Equal(t, int64(2), stats["heuristic_summaries"])
	assert.Equal(t, int64(1), stats["quota_fallbacks"])
	assert.Equal(t, int64(15), stats["articles_served"])
	assert.Equal(t, int64(1), stats["demo_responses"])
	assert.Equal(t, "demo-data", stats["last_source"])
}

func TestMetrics_ProcessingTimeAverage(t *testing.T) {
	m := New()
	m.RecordProcessingTime(100 * time.Millisecond)
	m.RecordProcessingTime(300 * time.Millisecond)

	stats := m.GetStats()
	assert.Equal(t, int64(300), stats["last_processing_time_ms"])
	assert.Equal(t, int64(200), stats["average_processing_time_ms"])
}

func TestMetrics_Health(t *testing.T) {
	m := New()
	assert.True(t, m.Healthy())

	m.SetError("boom")
	assert.False(t, m.Healthy())
	assert.Equal(t, "boom", m.GetStats()["last_error"])

	m.SetLastRun()
	assert.True(t, m.Healthy())
}

func TestMetrics_ConcurrentUse(t *testing.T) {
	m := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordFeed("ok", true)
			m.RecordSummary(false, false)
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(50), m.GetStats()["feeds_succeeded"])
}

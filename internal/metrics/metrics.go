package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	RunsStarted          int64
	RunsSkipped          int64
	ItemsLoaded          int64
	ClustersBuilt        int64
	CrossPlatformStories int64
	GeneratedSummaries   int64
	FallbackSummaries    int64
	DigestsWritten       int64
	NotificationsSent    int64

	// Timings
	LastProcessingTime    time.Duration
	AverageProcessingTime time.Duration
	TotalProcessingTime   time.Duration
	ProcessingCount       int64

	// Status
	LastRunTime    time.Time
	LastDigestType string
	LastErrorTime  time.Time
	LastError      string
	IsHealthy      bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) IncrementRunsStarted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RunsStarted++
}

func (m *Metrics) IncrementRunsSkipped(reason string) {
	m.mu.Lock()
	m.RunsSkipped++
	m.mu.Unlock()
	RunsTotal.WithLabelValues("skipped_" + reason).Inc()
}

func (m *Metrics) AddItemsLoaded(platform string, n int) {
	m.mu.Lock()
	m.ItemsLoaded += int64(n)
	m.mu.Unlock()
	ItemsLoaded.WithLabelValues(platform).Set(float64(n))
}

func (m *Metrics) AddClusters(total, cross int) {
	m.mu.Lock()
	m.ClustersBuilt += int64(total)
	m.CrossPlatformStories += int64(cross)
	m.mu.Unlock()
	ClustersTotal.WithLabelValues("cross_platform").Add(float64(cross))
	ClustersTotal.WithLabelValues("single_platform").Add(float64(total - cross))
}

func (m *Metrics) IncrementGeneratedSummaries() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GeneratedSummaries++
}

func (m *Metrics) IncrementFallbackSummaries() {
	m.mu.Lock()
	m.FallbackSummaries++
	m.mu.Unlock()
	SummariesTotal.WithLabelValues("fallback", "ok").Inc()
}

func (m *Metrics) IncrementDigestsWritten() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DigestsWritten++
}

func (m *Metrics) IncrementNotificationsSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NotificationsSent++
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
	RunDuration.Observe(duration.Seconds())
}

func (m *Metrics) SetLastRun(digestType string) {
	m.mu.Lock()
	m.LastRunTime = time.Now()
	m.LastDigestType = digestType
	m.IsHealthy = true
	m.mu.Unlock()
	RunsTotal.WithLabelValues("success").Inc()
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
	m.mu.Unlock()
	RunsTotal.WithLabelValues("error").Inc()
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"runs_started":               m.RunsStarted,
		"runs_skipped":               m.RunsSkipped,
		"items_loaded":               m.ItemsLoaded,
		"clusters_built":             m.ClustersBuilt,
		"cross_platform_stories":     m.CrossPlatformStories,
		"generated_summaries":        m.GeneratedSummaries,
		"fallback_summaries":         m.FallbackSummaries,
		"digests_written":            m.DigestsWritten,
		"notifications_sent":         m.NotificationsSent,
		"last_processing_time_ms":    m.LastProcessingTime.Milliseconds(),
		"average_processing_time_ms": m.AverageProcessingTime.Milliseconds(),
		"last_run_time":              m.LastRunTime.Format(time.RFC3339),
		"last_digest_type":           m.LastDigestType,
		"last_error_time":            m.LastErrorTime.Format(time.RFC3339),
		"last_error":                 m.LastError,
		"is_healthy":                 m.IsHealthy,
	}
}

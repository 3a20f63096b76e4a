package monitoring

import (
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds application metrics
type Metrics struct {
	RequestCount        int64
	ErrorCount          int64
	AverageResponseTime int64 // in nanoseconds
	StartTime           time.Time

	ResponseTimes      []time.Duration
	ResponseTimesMutex sync.RWMutex

	RequestCountByStatus map[int]int64
	StatusMutex          sync.RWMutex

	// Screening flow
	SessionsStarted       int64
	ScreeningsCompleted   int64
	IncompleteSubmissions int64
	InvalidTransitions    int64
	Restarts              int64
	SeverityCounts        map[string]int64
	SeverityMutex         sync.RWMutex

	// Reports
	ReportsGenerated int64
	ReportFailures   int64

	SessionStoreErrors int64

	// Rate limit metrics
	RateLimitIPBlocks       int64
	RateLimitRedisErrors    int64
	RateLimitFallbackCount  int64
	RateLimitEndpointBlocks map[string]int64
	RateLimitMutex          sync.RWMutex
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime:               time.Now(),
		ResponseTimes:           make([]time.Duration, 0, 1000),
		RequestCountByStatus:    make(map[int]int64),
		SeverityCounts:          make(map[string]int64),
		RateLimitEndpointBlocks: make(map[string]int64),
	}
}

// IncrementRequest increments the request count
func (m *Metrics) IncrementRequest() {
	atomic.AddInt64(&m.RequestCount, 1)
}

// IncrementError increments the error count
func (m *Metrics) IncrementError() {
	atomic.AddInt64(&m.ErrorCount, 1)
}

// RecordResponseTime records response time for averaging and percentiles
func (m *Metrics) RecordResponseTime(duration time.Duration) {
	current := atomic.LoadInt64(&m.AverageResponseTime)
	newAverage := (current + duration.Nanoseconds()) / 2
	atomic.StoreInt64(&m.AverageResponseTime, newAverage)

	// keep the last 1000 samples
	m.ResponseTimesMutex.Lock()
	m.ResponseTimes = append(m.ResponseTimes, duration)
	if len(m.ResponseTimes) > 1000 {
		m.ResponseTimes = m.ResponseTimes[1:]
	}
	m.ResponseTimesMutex.Unlock()
}

// RecordRequestByStatus records request count by HTTP status code
func (m *Metrics) RecordRequestByStatus(statusCode int) {
	m.StatusMutex.Lock()
	defer m.StatusMutex.Unlock()
	m.RequestCountByStatus[statusCode]++
}

func (m *Metrics) IncrementSessionStarted() {
	atomic.AddInt64(&m.SessionsStarted, 1)
}

// RecordScreening counts a completed screening under its severity band
func (m *Metrics) RecordScreening(severity string) {
	atomic.AddInt64(&m.ScreeningsCompleted, 1)

	m.SeverityMutex.Lock()
	defer m.SeverityMutex.Unlock()
	m.SeverityCounts[severity]++
}

func (m *Metrics) IncrementIncompleteSubmission() {
	atomic.AddInt64(&m.IncompleteSubmissions, 1)
}

func (m *Metrics) IncrementInvalidTransition() {
	atomic.AddInt64(&m.InvalidTransitions, 1)
}

func (m *Metrics) IncrementRestart() {
	atomic.AddInt64(&m.Restarts, 1)
}

// RecordReport counts a report download attempt
func (m *Metrics) RecordReport(success bool) {
	if success {
		atomic.AddInt64(&m.ReportsGenerated, 1)
		return
	}
	atomic.AddInt64(&m.ReportFailures, 1)
}

func (m *Metrics) IncrementSessionStoreError() {
	atomic.AddInt64(&m.SessionStoreErrors, 1)
}

// GetPercentileResponseTime calculates percentile response time
func (m *Metrics) GetPercentileResponseTime(percentile float64) time.Duration {
	m.ResponseTimesMutex.RLock()
	defer m.ResponseTimesMutex.RUnlock()

	if len(m.ResponseTimes) == 0 {
		return 0
	}

	times := make([]time.Duration, len(m.ResponseTimes))
	copy(times, m.ResponseTimes)

	sort.Slice(times, func(i, j int) bool {
		return times[i] < times[j]
	})

	index := int(float64(len(times)-1) * percentile / 100.0)
	if index >= len(times) {
		index = len(times) - 1
	}

	return times[index]
}

// GetStatusCodeDistribution returns request count by status code
func (m *Metrics) GetStatusCodeDistribution() map[int]int64 {
	m.StatusMutex.RLock()
	defer m.StatusMutex.RUnlock()

	distribution := make(map[int]int64, len(m.RequestCountByStatus))
	for code, count := range m.RequestCountByStatus {
		distribution[code] = count
	}
	return distribution
}

// GetSeverityDistribution returns completed screenings per severity band
func (m *Metrics) GetSeverityDistribution() map[string]int64 {
	m.SeverityMutex.RLock()
	defer m.SeverityMutex.RUnlock()

	distribution := make(map[string]int64, len(m.SeverityCounts))
	for severity, count := range m.SeverityCounts {
		distribution[severity] = count
	}
	return distribution
}

// GetStats returns current metrics statistics
func (m *Metrics) GetStats() map[string]interface{} {
	requests := atomic.LoadInt64(&m.RequestCount)
	errors := atomic.LoadInt64(&m.ErrorCount)
	avgResponseTime := atomic.LoadInt64(&m.AverageResponseTime)

	errorRate := float64(0)
	if requests > 0 {
		errorRate = float64(errors) / float64(requests) * 100
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return map[string]interface{}{
		"uptime_seconds":       time.Since(m.StartTime).Seconds(),
		"total_requests":       requests,
		"error_count":          errors,
		"error_rate_percent":   errorRate,
		"avg_response_time_ms": float64(avgResponseTime) / 1000000,
		"start_time":           m.StartTime.Format(time.RFC3339),

		"p50_response_time_ms":     float64(m.GetPercentileResponseTime(50)) / 1000000,
		"p95_response_time_ms":     float64(m.GetPercentileResponseTime(95)) / 1000000,
		"p99_response_time_ms":     float64(m.GetPercentileResponseTime(99)) / 1000000,
		"status_code_distribution": m.GetStatusCodeDistribution(),

		"sessions_started":       atomic.LoadInt64(&m.SessionsStarted),
		"screenings_completed":   atomic.LoadInt64(&m.ScreeningsCompleted),
		"incomplete_submissions": atomic.LoadInt64(&m.IncompleteSubmissions),
		"invalid_transitions":    atomic.LoadInt64(&m.InvalidTransitions),
		"restarts":               atomic.LoadInt64(&m.Restarts),
		"severity_distribution":  m.GetSeverityDistribution(),
		"reports_generated":      atomic.LoadInt64(&m.ReportsGenerated),
		"report_failures":        atomic.LoadInt64(&m.ReportFailures),
		"session_store_errors":   atomic.LoadInt64(&m.SessionStoreErrors),
		"rate_limit":             m.GetRateLimitStats(),

		"go_gc_count":         mem.NumGC,
		"go_heap_alloc_bytes": mem.HeapAlloc,
		"go_heap_sys_bytes":   mem.HeapSys,
		"go_goroutines":       runtime.NumGoroutine(),
	}
}

// Reset resets all metrics (useful for testing)
func (m *Metrics) Reset() {
	for _, counter := range []*int64{
		&m.RequestCount, &m.ErrorCount, &m.AverageResponseTime,
		&m.SessionsStarted, &m.ScreeningsCompleted, &m.IncompleteSubmissions,
		&m.InvalidTransitions, &m.Restarts, &m.ReportsGenerated, &m.ReportFailures,
		&m.SessionStoreErrors, &m.RateLimitIPBlocks, &m.RateLimitRedisErrors,
		&m.RateLimitFallbackCount,
	} {
		atomic.StoreInt64(counter, 0)
	}

	m.ResponseTimesMutex.Lock()
	m.ResponseTimes = m.ResponseTimes[:0]
	m.ResponseTimesMutex.Unlock()

	m.StatusMutex.Lock()
	m.RequestCountByStatus = make(map[int]int64)
	m.StatusMutex.Unlock()

	m.SeverityMutex.Lock()
	m.SeverityCounts = make(map[string]int64)
	m.SeverityMutex.Unlock()

	m.RateLimitMutex.Lock()
	m.RateLimitEndpointBlocks = make(map[string]int64)
	m.RateLimitMutex.Unlock()

	m.StartTime = time.Now()
}

// IncrementRateLimitIPBlock increments IP-based rate limit blocks
func (m *Metrics) IncrementRateLimitIPBlock() {
	atomic.AddInt64(&m.RateLimitIPBlocks, 1)
}

// IncrementRateLimitRedisError increments Redis error count for rate limiting
func (m *Metrics) IncrementRateLimitRedisError() {
	atomic.AddInt64(&m.RateLimitRedisErrors, 1)
}

// IncrementRateLimitFallback increments fallback rate limiter usage count
func (m *Metrics) IncrementRateLimitFallback() {
	atomic.AddInt64(&m.RateLimitFallbackCount, 1)
}

// IncrementRateLimitEndpoint increments rate limit blocks for a specific endpoint
func (m *Metrics) IncrementRateLimitEndpoint(endpoint string) {
	m.RateLimitMutex.Lock()
	defer m.RateLimitMutex.Unlock()
	m.RateLimitEndpointBlocks[endpoint]++
}

// GetRateLimitStats returns rate limiting statistics
func (m *Metrics) GetRateLimitStats() map[string]interface{} {
	m.RateLimitMutex.RLock()
	endpointBlocksCopy := make(map[string]int64, len(m.RateLimitEndpointBlocks))
	for k, v := range m.RateLimitEndpointBlocks {
		endpointBlocksCopy[k] = v
	}
	m.RateLimitMutex.RUnlock()

	return map[string]interface{}{
		"ip_blocks":       atomic.LoadInt64(&m.RateLimitIPBlocks),
		"redis_errors":    atomic.LoadInt64(&m.RateLimitRedisErrors),
		"fallback_count":  atomic.LoadInt64(&m.RateLimitFallbackCount),
		"endpoint_blocks": endpointBlocksCopy,
	}
}

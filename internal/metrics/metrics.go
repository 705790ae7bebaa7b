package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Counter metric names
const (
	CounterHTTPRequests      = "http_requests_total"
	CounterHTTPRequestsError = "http_requests_error_total"
	CounterAttendeesAdded    = "attendees_added_total"
	CounterAttendeesChecked  = "attendees_checked_in_total"
	CounterRowsSkipped       = "bulk_rows_skipped_total"
)

// timer aggregates duration samples for one operation
type timer struct {
	count       int64
	totalTimeMs int64
	minTimeMs   int64
	maxTimeMs   int64
}

// TimerSnapshot is the exported view of a timer
type TimerSnapshot struct {
	Count         int64   `json:"count"`
	TotalTimeMs   int64   `json:"total_time_ms"`
	AverageTimeMs float64 `json:"average_time_ms"`
	MinTimeMs     int64   `json:"min_time_ms"`
	MaxTimeMs     int64   `json:"max_time_ms"`
}

// Metrics is the main metrics collector
type Metrics struct {
	mu        sync.RWMutex
	counters  map[string]*int64
	gauges    map[string]*int64
	timers    map[string]*timer
	startTime time.Time
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	return &Metrics{
		counters:  make(map[string]*int64),
		gauges:    make(map[string]*int64),
		timers:    make(map[string]*timer),
		startTime: time.Now(),
	}
}

// IncrementCounter increments a counter by 1
func (m *Metrics) IncrementCounter(name string) {
	m.IncrementCounterBy(name, 1)
}

// IncrementCounterBy increments a counter by the specified value
func (m *Metrics) IncrementCounterBy(name string, value int64) {
	atomic.AddInt64(m.counter(name), value)
}

// SetGauge sets a gauge to a point-in-time value
func (m *Metrics) SetGauge(name string, value int64) {
	m.mu.Lock()
	gauge, exists := m.gauges[name]
	if !exists {
		gauge = new(int64)
		m.gauges[name] = gauge
	}
	m.mu.Unlock()

	atomic.StoreInt64(gauge, value)
}

// RecordTimer records a duration sample for a named operation
func (m *Metrics) RecordTimer(name string, duration time.Duration) {
	ms := duration.Milliseconds()

	m.mu.Lock()
	defer m.mu.Unlock()

	t, exists := m.timers[name]
	if !exists {
		t = &timer{minTimeMs: ms, maxTimeMs: ms}
		m.timers[name] = t
	}

	t.count++
	t.totalTimeMs += ms
	if ms < t.minTimeMs {
		t.minTimeMs = ms
	}
	if ms > t.maxTimeMs {
		t.maxTimeMs = ms
	}
}

// Snapshot returns all collected metrics plus process uptime
func (m *Metrics) Snapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counters := make(map[string]int64, len(m.counters))
	for name, counter := range m.counters {
		counters[name] = atomic.LoadInt64(counter)
	}

	gauges := make(map[string]int64, len(m.gauges))
	for name, gauge := range m.gauges {
		gauges[name] = atomic.LoadInt64(gauge)
	}

	timers := make(map[string]TimerSnapshot, len(m.timers))
	for name, t := range m.timers {
		snapshot := TimerSnapshot{
			Count:       t.count,
			TotalTimeMs: t.totalTimeMs,
			MinTimeMs:   t.minTimeMs,
			MaxTimeMs:   t.maxTimeMs,
		}
		if t.count > 0 {
			snapshot.AverageTimeMs = float64(t.totalTimeMs) / float64(t.count)
		}
		timers[name] = snapshot
	}

	return map[string]interface{}{
		"counters":       counters,
		"gauges":         gauges,
		"timers":         timers,
		"uptime_seconds": int64(time.Since(m.startTime).Seconds()),
	}
}

func (m *Metrics) counter(name string) *int64 {
	m.mu.RLock()
	counter, exists := m.counters[name]
	m.mu.RUnlock()

	if exists {
		return counter
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Check again to avoid race conditions
	if counter, exists = m.counters[name]; exists {
		return counter
	}
	counter = new(int64)
	m.counters[name] = counter
	return counter
}

package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := NewMetrics()

	m.IncrementCounter(CounterAttendeesAdded)
	m.IncrementCounterBy(CounterAttendeesAdded, 4)
	m.IncrementCounter(CounterRowsSkipped)

	snapshot := m.Snapshot()
	counters := snapshot["counters"].(map[string]int64)
	require.Equal(t, int64(5), counters[CounterAttendeesAdded])
	require.Equal(t, int64(1), counters[CounterRowsSkipped])
}

func TestCountersConcurrent(t *testing.T) {
	m := NewMetrics()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.IncrementCounter(CounterHTTPRequests)
			}
		}()
	}
	wg.Wait()

	counters := m.Snapshot()["counters"].(map[string]int64)
	require.Equal(t, int64(1000), counters[CounterHTTPRequests])
}

func TestGauges(t *testing.T) {
	m := NewMetrics()

	m.SetGauge("goroutines", 12)
	m.SetGauge("goroutines", 7)

	gauges := m.Snapshot()["gauges"].(map[string]int64)
	require.Equal(t, int64(7), gauges["goroutines"])
}

func TestTimers(t *testing.T) {
	m := NewMetrics()

	m.RecordTimer("http_request", 10*time.Millisecond)
	m.RecordTimer("http_request", 30*time.Millisecond)

	timers := m.Snapshot()["timers"].(map[string]TimerSnapshot)
	snapshot := timers["http_request"]
	require.Equal(t, int64(2), snapshot.Count)
	require.Equal(t, int64(40), snapshot.TotalTimeMs)
	require.Equal(t, int64(10), snapshot.MinTimeMs)
	require.Equal(t, int64(30), snapshot.MaxTimeMs)
	require.Equal(t, 20.0, snapshot.AverageTimeMs)
}

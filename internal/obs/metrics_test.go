package obs

import (
	"sync"
	"testing"
	"time"
)

func TestNilMetricsIsNoOp(t *testing.T) {
	var m *Metrics
	m.Inc(CounterDecodeDrop)
	m.ObserveInbound(time.Millisecond)
	if got := m.Get(CounterDecodeDrop); got != 0 {
		t.Fatalf("nil metrics counted: %d", got)
	}
	if snap := m.Snapshot(); snap.Counts != nil {
		t.Fatalf("nil metrics snapshot not empty: %+v", snap)
	}
}

func TestCountersConcurrent(t *testing.T) {
	m := NewMetrics()

	const workers = 8
	const each = 1000
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < each; j++ {
				m.Inc(CounterMarketRequest)
			}
		}()
	}
	wg.Wait()

	if got := m.Get(CounterMarketRequest); got != workers*each {
		t.Fatalf("count mismatch! should be %d but got %d", workers*each, got)
	}

	snap := m.Snapshot()
	if snap.Counts["market_requests"] != workers*each {
		t.Fatalf("snapshot mismatch! got %+v", snap.Counts)
	}
	// zero counters stay out of the snapshot
	if _, ok := snap.Counts["decode_drops"]; ok {
		t.Fatalf("zero counter leaked into the snapshot")
	}
}

func TestLatencyStats(t *testing.T) {
	var l LatencyStats
	l.Observe(4 * time.Millisecond)
	l.Observe(2 * time.Millisecond)
	l.Observe(6 * time.Millisecond)
	l.Observe(-time.Millisecond)

	snap := l.Snapshot()
	if snap.Count != 3 {
		t.Fatalf("count mismatch! should be 3 but got %d", snap.Count)
	}
	if snap.Min != 2*time.Millisecond {
		t.Fatalf("min mismatch! should be 2ms but got %v", snap.Min)
	}
	if snap.Max != 6*time.Millisecond {
		t.Fatalf("max mismatch! should be 6ms but got %v", snap.Max)
	}
	if snap.Avg != 4*time.Millisecond {
		t.Fatalf("avg mismatch! should be 4ms but got %v", snap.Avg)
	}
}

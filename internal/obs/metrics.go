// Package obs collects lightweight counters and latency stats for the
// execution engine hot path. Dropped messages are silent on the wire by
// design, so the counters are the only place the loss is visible.
package obs

import (
	"sync/atomic"
	"time"
)

// Counter identifies one engine counter.
type Counter uint8

const (
	CounterDecodeDrop Counter = iota
	CounterRoutingDrop
	CounterUntagDrop
	CounterJournalDrop
	CounterMarketRequest
	CounterLimitRequest
	CounterCancelRequest
	CounterLocateResponse
	CounterStatusOut
	CounterExecutionOut
	CounterRejectionOut
	CounterLocateOut
	CounterPositionOut
	CounterLogon
	CounterLogout
	CounterHeartbeatExpired
	counterEnd
)

func (c Counter) String() string {
	switch c {
	case CounterDecodeDrop:
		return "decode_drops"
	case CounterRoutingDrop:
		return "routing_drops"
	case CounterUntagDrop:
		return "untag_drops"
	case CounterJournalDrop:
		return "journal_drops"
	case CounterMarketRequest:
		return "market_requests"
	case CounterLimitRequest:
		return "limit_requests"
	case CounterCancelRequest:
		return "cancel_requests"
	case CounterLocateResponse:
		return "locate_responses"
	case CounterStatusOut:
		return "status_out"
	case CounterExecutionOut:
		return "executions_out"
	case CounterRejectionOut:
		return "rejections_out"
	case CounterLocateOut:
		return "locates_out"
	case CounterPositionOut:
		return "positions_out"
	case CounterLogon:
		return "logons"
	case CounterLogout:
		return "logouts"
	case CounterHeartbeatExpired:
		return "heartbeats_expired"
	default:
		return "unknown"
	}
}

// Metrics is safe for concurrent use. A nil receiver is a no-op on every
// method so callers never need to guard.
type Metrics struct {
	counts [counterEnd]uint64

	inboundLatency  LatencyStats
	outboundLatency LatencyStats
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

// Inc increments one counter.
func (m *Metrics) Inc(c Counter) {
	if m == nil || c >= counterEnd {
		return
	}
	atomic.AddUint64(&m.counts[c], 1)
}

// Get reads one counter.
func (m *Metrics) Get(c Counter) uint64 {
	if m == nil || c >= counterEnd {
		return 0
	}
	return atomic.LoadUint64(&m.counts[c])
}

// ObserveInbound records the ring hand-off latency of one request.
func (m *Metrics) ObserveInbound(d time.Duration) {
	if m == nil {
		return
	}
	m.inboundLatency.Observe(d)
}

// ObserveOutbound records the ring hand-off latency of one response.
func (m *Metrics) ObserveOutbound(d time.Duration) {
	if m == nil {
		return
	}
	m.outboundLatency.Observe(d)
}

// Snapshot captures the current values, omitting zero counters.
type Snapshot struct {
	Counts          map[string]uint64 `json:"counts"`
	InboundLatency  LatencySnapshot   `json:"inboundLatency"`
	OutboundLatency LatencySnapshot   `json:"outboundLatency"`
}

func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	counts := make(map[string]uint64)
	for i := Counter(0); i < counterEnd; i++ {
		if v := atomic.LoadUint64(&m.counts[i]); v > 0 {
			counts[i.String()] = v
		}
	}
	return Snapshot{
		Counts:          counts,
		InboundLatency:  m.inboundLatency.Snapshot(),
		OutboundLatency: m.outboundLatency.Snapshot(),
	}
}

// LatencyStats aggregates duration samples in nanoseconds.
type LatencyStats struct {
	count uint64
	sum   uint64
	min   uint64
	max   uint64
}

// LatencySnapshot is a point-in-time view of latency stats.
type LatencySnapshot struct {
	Count uint64        `json:"count"`
	Min   time.Duration `json:"min"`
	Max   time.Duration `json:"max"`
	Avg   time.Duration `json:"avg"`
}

// Observe records a duration sample.
func (l *LatencyStats) Observe(d time.Duration) {
	if d < 0 {
		return
	}
	nanos := uint64(d)
	atomic.AddUint64(&l.count, 1)
	atomic.AddUint64(&l.sum, nanos)

	for {
		min := atomic.LoadUint64(&l.min)
		if min != 0 && nanos >= min {
			break
		}
		if atomic.CompareAndSwapUint64(&l.min, min, nanos) {
			break
		}
	}

	for {
		max := atomic.LoadUint64(&l.max)
		if nanos <= max {
			break
		}
		if atomic.CompareAndSwapUint64(&l.max, max, nanos) {
			break
		}
	}
}

// Snapshot returns the aggregated latency stats.
func (l *LatencyStats) Snapshot() LatencySnapshot {
	count := atomic.LoadUint64(&l.count)
	if count == 0 {
		return LatencySnapshot{}
	}
	sum := atomic.LoadUint64(&l.sum)
	min := atomic.LoadUint64(&l.min)
	max := atomic.LoadUint64(&l.max)
	return LatencySnapshot{
		Count: count,
		Min:   time.Duration(min),
		Max:   time.Duration(max),
		Avg:   time.Duration(sum / count),
	}
}

package obs

import (
	"sync/atomic"
	"time"
)

// FrameTrace hands out monotonically increasing trace ids for inbound
// frames, so a dropped message can be tied back to its log lines.
type FrameTrace struct {
	next uint64
}

// NewFrameTrace seeds the generator; a zero seed uses the current clock.
func NewFrameTrace(seed uint64) *FrameTrace {
	if seed == 0 {
		seed = uint64(time.Now().UTC().UnixNano())
	}
	return &FrameTrace{next: seed}
}

// Next returns the next trace id.
func (t *FrameTrace) Next() uint64 {
	if t == nil {
		return 0
	}
	return atomic.AddUint64(&t.next, 1)
}

// Package heartbeat tracks application liveness. A missing heartbeat within
// the threshold is the platform's only timeout mechanism; expiry raises the
// disconnect callback registered at construction.
package heartbeat

import (
	"context"
	"sync"
	"time"

	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"
)

const (
	DefaultThreshold = 15 * time.Second
	DefaultInterval  = 5 * time.Second
)

// Handler watches last-beat times per application. The expiry callback is a
// single slot fixed at construction.
type Handler struct {
	threshold time.Duration
	interval  time.Duration
	onExpired func(appID string)

	mu   sync.Mutex
	last map[string]time.Time
	now  func() time.Time
}

func New(threshold, interval time.Duration, onExpired func(appID string)) *Handler {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Handler{
		threshold: threshold,
		interval:  interval,
		onExpired: onExpired,
		last:      make(map[string]time.Time),
		now:       time.Now,
	}
}

// Beat records a heartbeat. The first beat from an application registers it
// for liveness tracking.
func (h *Handler) Beat(appID string) {
	if appID == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last[appID] = h.now()
}

// Forget drops an application from tracking without firing the callback.
func (h *Handler) Forget(appID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.last, appID)
}

// Tracked snapshots the applications currently under watch.
func (h *Handler) Tracked() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.last))
	for app := range h.last {
		out = append(out, app)
	}
	return out
}

// Run scans for expired applications until the context is done. Each expiry
// fires the callback exactly once and removes the application.
func (h *Handler) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-sys.Shutdown():
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.sweep()
		}
	}
}

func (h *Handler) sweep() {
	deadline := h.now().Add(-h.threshold)

	h.mu.Lock()
	var expired []string
	for app, beat := range h.last {
		if beat.Before(deadline) {
			expired = append(expired, app)
			delete(h.last, app)
		}
	}
	h.mu.Unlock()

	for _, app := range expired {
		logs.Warnf("heartbeat: application %q expired", app)
		if h.onExpired != nil {
			h.onExpired(app)
		}
	}
}

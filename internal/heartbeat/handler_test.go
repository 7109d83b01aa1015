package heartbeat

import (
	"sort"
	"testing"
	"time"
)

func TestSweepExpiresOnlyStaleApps(t *testing.T) {
	clock := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)

	var expired []string
	h := New(15*time.Second, 5*time.Second, func(appID string) {
		expired = append(expired, appID)
	})
	h.now = func() time.Time { return clock }

	h.Beat("A1")
	h.Beat("A2")

	clock = clock.Add(10 * time.Second)
	h.Beat("A2")
	h.sweep()
	if len(expired) != 0 {
		t.Fatalf("expired too early: %v", expired)
	}

	clock = clock.Add(8 * time.Second)
	h.sweep()
	if len(expired) != 1 || expired[0] != "A1" {
		t.Fatalf("expiry mismatch! should be [A1] but got %v", expired)
	}

	tracked := h.Tracked()
	if len(tracked) != 1 || tracked[0] != "A2" {
		t.Fatalf("tracked mismatch! should be [A2] but got %v", tracked)
	}

	// an expired application fires at most once
	clock = clock.Add(time.Minute)
	h.sweep()
	sort.Strings(expired)
	if len(expired) != 2 || expired[0] != "A1" || expired[1] != "A2" {
		t.Fatalf("expiry set mismatch! should be [A1 A2] but got %v", expired)
	}
}

func TestForgetSkipsCallback(t *testing.T) {
	clock := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)

	var expired []string
	h := New(15*time.Second, 5*time.Second, func(appID string) {
		expired = append(expired, appID)
	})
	h.now = func() time.Time { return clock }

	h.Beat("A1")
	h.Forget("A1")

	clock = clock.Add(time.Minute)
	h.sweep()
	if len(expired) != 0 {
		t.Fatalf("forgotten app still expired: %v", expired)
	}
}

func TestEmptyAppIDIgnored(t *testing.T) {
	h := New(0, 0, nil)
	h.Beat("")
	if got := h.Tracked(); len(got) != 0 {
		t.Fatalf("tracked mismatch! should be empty but got %v", got)
	}
	if h.threshold != DefaultThreshold || h.interval != DefaultInterval {
		t.Fatalf("defaults not applied: %v %v", h.threshold, h.interval)
	}
}

package schema

import "testing"

func TestOrderStatusTerminal(t *testing.T) {
	testCases := []struct {
		desc     string
		status   OrderStatus
		terminal bool
	}{
		{"open", OrderStatusOpen, false},
		{"submitted", OrderStatusSubmitted, false},
		{"partially executed", OrderStatusPartiallyExecuted, false},
		{"executed", OrderStatusExecuted, true},
		{"cancelled", OrderStatusCancelled, true},
		{"rejected", OrderStatusRejected, true},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			if got := tc.status.IsTerminal(); got != tc.terminal {
				t.Fatalf("terminal mismatch! should be %v but got %v", tc.terminal, got)
			}
		})
	}
}

func TestEnumParseStringRoundTrip(t *testing.T) {
	for s := _order_status_beg + 1; s < _order_status_end; s++ {
		if got := ParseOrderStatus(s.String()); got != s {
			t.Fatalf("status round trip mismatch! should be %v but got %v", s, got)
		}
	}
	for s := _order_side_beg + 1; s < _order_side_end; s++ {
		if got := ParseOrderSide(s.String()); got != s {
			t.Fatalf("side round trip mismatch! should be %v but got %v", s, got)
		}
	}
	for tif := _time_in_force_beg + 1; tif < _time_in_force_end; tif++ {
		if got := ParseTimeInForce(tif.String()); got != tif {
			t.Fatalf("tif round trip mismatch! should be %v but got %v", tif, got)
		}
	}
	if ParseOrderStatus("NOPE").IsAvailable() {
		t.Fatalf("unknown status parsed as available")
	}
}

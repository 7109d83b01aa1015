package routing

import "testing"

func TestTagUntagRoundTrip(t *testing.T) {
	testCases := []struct {
		desc    string
		appID   string
		orderID string
	}{
		{"simple", "A1", "X1"},
		{"numeric ids", "42", "100045"},
		{"uuid style order id", "APP", "b1c2d3e4-0001"},
		{"empty order id", "A1", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			tagged := Tag(tc.appID, tc.orderID)
			appID, orderID, err := Untag(tagged)
			if err != nil {
				t.Fatalf("untag failed: %v", err)
			}
			if appID != tc.appID {
				t.Fatalf("app id mismatch! should be %s but got %s", tc.appID, appID)
			}
			if orderID != tc.orderID {
				t.Fatalf("order id mismatch! should be %s but got %s", tc.orderID, orderID)
			}
		})
	}
}

func TestUntagMalformed(t *testing.T) {
	testCases := []struct {
		desc   string
		tagged string
	}{
		{"no separator", "A1X1"},
		{"two separators", "A1|X1|extra"},
		{"empty", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			if _, _, err := Untag(tc.tagged); err == nil {
				t.Fatalf("expected error for %q but got none", tc.tagged)
			}
		})
	}
}

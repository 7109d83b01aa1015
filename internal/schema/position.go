package schema

import "time"

// Position is a provider-scoped net position snapshot. It is broadcast to
// every application, not routed per order id.
type Position struct {
	Provider string
	Symbol   string
	Size     int64
	DateTime time.Time
}

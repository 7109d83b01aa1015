package schema

import "time"

// LocateRequest is a broker-originated request asking permission to short a
// security. It fans out to every application logged into the provider.
type LocateRequest struct {
	OrderID  string
	Symbol   string
	Size     int64
	Provider string
	DateTime time.Time
}

// LocateResponse is an application's accept/reject decision on a locate
// request, correlated by order id, provider name and strategy id.
type LocateResponse struct {
	OrderID    string
	Provider   string
	StrategyID string
	Accepted   bool
}

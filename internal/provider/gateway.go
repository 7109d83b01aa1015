// Package provider defines the capability contract every execution provider
// gateway satisfies. A gateway declares its supported operations as a
// capability set at registration time; routing consults the declared set
// instead of probing with type assertions.
package provider

import "main/internal/schema"

// CapabilitySet is a bit set of supported gateway operations.
type CapabilitySet uint8

const (
	CapMarket CapabilitySet = 1 << iota
	CapLimit
	CapLocate
	CapPosition
)

func (s CapabilitySet) Has(c CapabilitySet) bool {
	return s&c == c
}

func (s CapabilitySet) String() string {
	if s == 0 {
		return "none"
	}
	out := ""
	add := func(word string) {
		if out != "" {
			out += "+"
		}
		out += word
	}
	if s.Has(CapMarket) {
		add("market")
	}
	if s.Has(CapLimit) {
		add("limit")
	}
	if s.Has(CapLocate) {
		add("locate")
	}
	if s.Has(CapPosition) {
		add("position")
	}
	return out
}

// Callbacks is the single-slot event registration a gateway accepts through
// Bind. Exactly one bind per gateway instance; unset slots are skipped by
// the gateway. Every value handed to a callback is owned by the receiver.
type Callbacks struct {
	LogonArrived  func()
	LogoutArrived func()

	NewArrived          func(order schema.Order)
	ExecutionArrived    func(exec schema.Execution)
	CancellationArrived func(order schema.Order)
	RejectionArrived    func(rej schema.Rejection)

	LocateArrived   func(req schema.LocateRequest)
	PositionArrived func(pos schema.Position)
}

// Gateway is the lifecycle surface common to all provider gateways.
type Gateway interface {
	Name() string
	Capabilities() CapabilitySet

	// Bind registers the callback slots. A second call returns
	// exception.ErrRegistryAlreadyBound.
	Bind(cb Callbacks) error

	Start() error
	// Stop is fire-and-forget from the registry's perspective; the gateway
	// may take arbitrarily long to actually disconnect.
	Stop() error
	IsConnected() bool
}

// MarketOrderGateway is the market order capability.
type MarketOrderGateway interface {
	SendMarketOrder(order schema.Order) error
}

// LimitOrderGateway is the limit order capability. Cancellation is a
// limit-provider capability.
type LimitOrderGateway interface {
	SendLimitOrder(order schema.Order) error
	CancelLimitOrder(order schema.Order) error
}

// LocateGateway receives the application's decision on a locate request.
type LocateGateway interface {
	LocateMessageResponse(resp schema.LocateResponse) error
}

// Factory constructs a gateway for a provider name.
type Factory func(name string) (Gateway, error)

package schema

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is an application-scoped order request. The routing core never
// mutates an order in place; it copies the value and rewrites OrderID to
// carry the application id segment while the order is in flight.
type Order struct {
	OrderID      string
	Side         OrderSide
	Size         int64
	LimitPrice   decimal.Decimal
	TIF          TimeInForce
	Status       OrderStatus
	Symbol       string
	DateTime     time.Time
	Provider     string
	TriggerPrice decimal.Decimal
	Slippage     decimal.Decimal
	Remarks      string
	Exchange     string
}

// WithID returns a copy of the order carrying the given order id.
func (o Order) WithID(id string) Order {
	o.OrderID = id
	return o
}

// WithStatus returns a copy of the order carrying the given status.
func (o Order) WithStatus(status OrderStatus) Order {
	o.Status = status
	return o
}

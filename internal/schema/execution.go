package schema

import (
	"time"

	"github.com/shopspring/decimal"
)

// Fill is an immutable snapshot of one partial or full execution.
type Fill struct {
	ExecutionID string
	Side        OrderSide
	Size        int64
	Price       decimal.Decimal
	AvgPrice    decimal.Decimal
	LeavesQty   int64
	CumQty      int64
	DateTime    time.Time
	Venue       string
	Account     string
	Currency    string
	Kind        ExecutionKind
}

// Execution pairs exactly one fill with exactly one order. It is a transport
// envelope between provider gateway and application, immutable after
// construction.
type Execution struct {
	Order    Order
	Fill     Fill
	Provider string
}

// NewExecution derives the provider name from the order.
func NewExecution(order Order, fill Fill) Execution {
	return Execution{
		Order:    order,
		Fill:     fill,
		Provider: order.Provider,
	}
}

// Rejection carries one rejected order attempt.
type Rejection struct {
	OrderID  string
	Symbol   string
	Provider string
	DateTime time.Time
	Reason   string
}

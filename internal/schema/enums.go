package schema

// OrderSide buy, sell
type OrderSide uint8

const (
	_order_side_beg OrderSide = iota
	OrderSideBuy
	OrderSideSell
	_order_side_end
)

func (s OrderSide) IsAvailable() bool {
	return s > _order_side_beg && s < _order_side_end
}

func (s OrderSide) String() string {
	switch s {
	case OrderSideBuy:
		return "BUY"
	case OrderSideSell:
		return "SELL"
	default:
		return "NONE"
	}
}

func ParseOrderSide(s string) OrderSide {
	switch s {
	case "BUY":
		return OrderSideBuy
	case "SELL":
		return OrderSideSell
	default:
		return _order_side_beg
	}
}

// TimeInForce gtc, ioc, fok, day
type TimeInForce uint8

const (
	_time_in_force_beg TimeInForce = iota
	TimeInForceGTC
	TimeInForceIOC
	TimeInForceFOK
	TimeInForceDAY
	_time_in_force_end
)

func (t TimeInForce) IsAvailable() bool {
	return t > _time_in_force_beg && t < _time_in_force_end
}

func (t TimeInForce) String() string {
	switch t {
	case TimeInForceGTC:
		return "GTC"
	case TimeInForceIOC:
		return "IOC"
	case TimeInForceFOK:
		return "FOK"
	case TimeInForceDAY:
		return "DAY"
	default:
		return "NONE"
	}
}

func ParseTimeInForce(s string) TimeInForce {
	switch s {
	case "GTC":
		return TimeInForceGTC
	case "IOC":
		return TimeInForceIOC
	case "FOK":
		return TimeInForceFOK
	case "DAY":
		return TimeInForceDAY
	default:
		return _time_in_force_beg
	}
}

// OrderStatus open, submitted, partially executed, executed, cancelled, rejected.
// Terminal states are executed, cancelled and rejected.
type OrderStatus uint8

const (
	_order_status_beg OrderStatus = iota
	OrderStatusOpen
	OrderStatusSubmitted
	OrderStatusPartiallyExecuted
	OrderStatusExecuted
	OrderStatusCancelled
	OrderStatusRejected
	_order_status_end
)

func (s OrderStatus) IsAvailable() bool {
	return s > _order_status_beg && s < _order_status_end
}

func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusExecuted, OrderStatusCancelled, OrderStatusRejected:
		return true
	default:
		return false
	}
}

func (s OrderStatus) String() string {
	switch s {
	case OrderStatusOpen:
		return "OPEN"
	case OrderStatusSubmitted:
		return "SUBMITTED"
	case OrderStatusPartiallyExecuted:
		return "PARTIALLY_EXECUTED"
	case OrderStatusExecuted:
		return "EXECUTED"
	case OrderStatusCancelled:
		return "CANCELLED"
	case OrderStatusRejected:
		return "REJECTED"
	default:
		return "NONE"
	}
}

func ParseOrderStatus(s string) OrderStatus {
	switch s {
	case "OPEN":
		return OrderStatusOpen
	case "SUBMITTED":
		return OrderStatusSubmitted
	case "PARTIALLY_EXECUTED":
		return OrderStatusPartiallyExecuted
	case "EXECUTED":
		return OrderStatusExecuted
	case "CANCELLED":
		return OrderStatusCancelled
	case "REJECTED":
		return OrderStatusRejected
	default:
		return _order_status_beg
	}
}

// ExecutionKind full, partial
type ExecutionKind uint8

const (
	_execution_kind_beg ExecutionKind = iota
	ExecutionKindFull
	ExecutionKindPartial
	_execution_kind_end
)

func (k ExecutionKind) IsAvailable() bool {
	return k > _execution_kind_beg && k < _execution_kind_end
}

func (k ExecutionKind) String() string {
	switch k {
	case ExecutionKindFull:
		return "FULL"
	case ExecutionKindPartial:
		return "PARTIAL"
	default:
		return "NONE"
	}
}

func ParseExecutionKind(s string) ExecutionKind {
	switch s {
	case "FULL":
		return ExecutionKindFull
	case "PARTIAL":
		return ExecutionKindPartial
	default:
		return _execution_kind_beg
	}
}

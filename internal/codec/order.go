package codec

import (
	"main/internal/schema"
	"main/pkg/exception"

	"github.com/yanun0323/errors"
)

// Request discriminator words on the wire.
const (
	wordMarket = "Market"
	wordLimit  = "Limit"
	wordCancel = "Cancel"
)

// RequestKind market, limit, cancel
type RequestKind uint8

const (
	_request_kind_beg RequestKind = iota
	RequestKindMarket
	RequestKindLimit
	RequestKindCancel
	_request_kind_end
)

func (k RequestKind) IsAvailable() bool {
	return k > _request_kind_beg && k < _request_kind_end
}

func (k RequestKind) String() string {
	switch k {
	case RequestKindMarket:
		return wordMarket
	case RequestKindLimit:
		return wordLimit
	case RequestKindCancel:
		return wordCancel
	default:
		return "NONE"
	}
}

// Request is one decoded order request frame.
type Request struct {
	Kind  RequestKind
	Order schema.Order
}

// Market order request layout:
//
//	0:type 1:prefix 2:OrderID 3:Side 4:Size 5:TIF 6:Symbol 7:DateTime
//	8:Provider 9:TriggerPrice 10:Slippage 11:Remarks 12:Exchange
const marketFieldCount = 13

// EncodeMarketOrderRequest serializes a market order request frame.
// The application id rides in the prefix field at index 1.
func EncodeMarketOrderRequest(appID string, o schema.Order) []byte {
	return join(
		wordMarket,
		appID,
		o.OrderID,
		o.Side.String(),
		formatInt(o.Size),
		o.TIF.String(),
		o.Symbol,
		formatDate(o.DateTime),
		o.Provider,
		o.TriggerPrice.String(),
		o.Slippage.String(),
		o.Remarks,
		o.Exchange,
	)
}

// Limit order request layout:
//
//	0:type 1:prefix 2:OrderID 3:Side 4:Size 5:LimitPrice 6:TIF 7:Symbol
//	8:DateTime 9:Provider 10:TriggerPrice 11:Slippage 12:Remarks 13:Exchange
const limitFieldCount = 14

// EncodeLimitOrderRequest serializes a limit order request frame.
func EncodeLimitOrderRequest(appID string, o schema.Order) []byte {
	return join(
		wordLimit,
		appID,
		o.OrderID,
		o.Side.String(),
		formatInt(o.Size),
		o.LimitPrice.String(),
		o.TIF.String(),
		o.Symbol,
		formatDate(o.DateTime),
		o.Provider,
		o.TriggerPrice.String(),
		o.Slippage.String(),
		o.Remarks,
		o.Exchange,
	)
}

// Cancel request layout:
//
//	0:type 1:prefix 2:OrderID 3:Side 4:Size 5:TIF 6:Status 7:Symbol
//	8:DateTime 9:Provider 10:TriggerPrice 11:Slippage 12:Remarks 13:Exchange
const cancelFieldCount = 14

// EncodeCancelOrderRequest serializes a cancel request frame.
func EncodeCancelOrderRequest(appID string, o schema.Order) []byte {
	return join(
		wordCancel,
		appID,
		o.OrderID,
		o.Side.String(),
		formatInt(o.Size),
		o.TIF.String(),
		o.Status.String(),
		o.Symbol,
		formatDate(o.DateTime),
		o.Provider,
		o.TriggerPrice.String(),
		o.Slippage.String(),
		o.Remarks,
		o.Exchange,
	)
}

// DecodeOrderRequest parses one order request frame, switching on the
// discriminator at index 0. The prefix field at index 1 is ignored.
func DecodeOrderRequest(frame []byte) (Request, error) {
	parts, err := fields(frame, 1)
	if err != nil {
		return Request{}, err
	}
	switch parts[0] {
	case wordMarket:
		return decodeMarketOrder(frame)
	case wordLimit:
		return decodeLimitOrder(frame)
	case wordCancel:
		return decodeCancelOrder(frame)
	default:
		return Request{}, errors.Wrap(exception.ErrCodecUnknownType, parts[0])
	}
}

func decodeMarketOrder(frame []byte) (Request, error) {
	parts, err := fields(frame, marketFieldCount)
	if err != nil {
		return Request{}, err
	}
	o := schema.Order{
		OrderID:  parts[2],
		Symbol:   parts[6],
		Provider: parts[8],
		Remarks:  parts[11],
		Exchange: parts[12],
		Status:   schema.OrderStatusOpen,
	}
	if o.Side, err = parseSide(parts[3]); err != nil {
		return Request{}, err
	}
	if o.Size, err = parseInt(parts[4]); err != nil {
		return Request{}, err
	}
	if o.TIF, err = parseTIF(parts[5]); err != nil {
		return Request{}, err
	}
	if o.DateTime, err = parseDate(parts[7]); err != nil {
		return Request{}, err
	}
	if o.TriggerPrice, err = parseDecimal(parts[9]); err != nil {
		return Request{}, err
	}
	if o.Slippage, err = parseDecimal(parts[10]); err != nil {
		return Request{}, err
	}
	return Request{Kind: RequestKindMarket, Order: o}, nil
}

func decodeLimitOrder(frame []byte) (Request, error) {
	parts, err := fields(frame, limitFieldCount)
	if err != nil {
		return Request{}, err
	}
	o := schema.Order{
		OrderID:  parts[2],
		Symbol:   parts[7],
		Provider: parts[9],
		Remarks:  parts[12],
		Exchange: parts[13],
		Status:   schema.OrderStatusOpen,
	}
	if o.Side, err = parseSide(parts[3]); err != nil {
		return Request{}, err
	}
	if o.Size, err = parseInt(parts[4]); err != nil {
		return Request{}, err
	}
	if o.LimitPrice, err = parseDecimal(parts[5]); err != nil {
		return Request{}, err
	}
	if o.TIF, err = parseTIF(parts[6]); err != nil {
		return Request{}, err
	}
	if o.DateTime, err = parseDate(parts[8]); err != nil {
		return Request{}, err
	}
	if o.TriggerPrice, err = parseDecimal(parts[10]); err != nil {
		return Request{}, err
	}
	if o.Slippage, err = parseDecimal(parts[11]); err != nil {
		return Request{}, err
	}
	return Request{Kind: RequestKindLimit, Order: o}, nil
}

func decodeCancelOrder(frame []byte) (Request, error) {
	parts, err := fields(frame, cancelFieldCount)
	if err != nil {
		return Request{}, err
	}
	o := schema.Order{
		OrderID:  parts[2],
		Symbol:   parts[7],
		Provider: parts[9],
		Remarks:  parts[12],
		Exchange: parts[13],
	}
	if o.Side, err = parseSide(parts[3]); err != nil {
		return Request{}, err
	}
	if o.Size, err = parseInt(parts[4]); err != nil {
		return Request{}, err
	}
	if o.TIF, err = parseTIF(parts[5]); err != nil {
		return Request{}, err
	}
	if o.Status, err = parseStatus(parts[6]); err != nil {
		return Request{}, err
	}
	if o.DateTime, err = parseDate(parts[8]); err != nil {
		return Request{}, err
	}
	if o.TriggerPrice, err = parseDecimal(parts[10]); err != nil {
		return Request{}, err
	}
	if o.Slippage, err = parseDecimal(parts[11]); err != nil {
		return Request{}, err
	}
	return Request{Kind: RequestKindCancel, Order: o}, nil
}

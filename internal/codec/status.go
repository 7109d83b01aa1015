package codec

import (
	"main/internal/schema"
)

// Order status response layout. The discriminator is the status word itself.
//
//	0:Status 1:OrderID 2:Side 3:Size 4:TIF 5:Status 6:Symbol 7:DateTime
//	8:Provider 9:TriggerPrice 10:Slippage 11:Exchange
const statusFieldCount = 12

// EncodeOrderStatus serializes an order status response frame.
func EncodeOrderStatus(o schema.Order) []byte {
	return join(
		o.Status.String(),
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
		o.Exchange,
	)
}

// DecodeOrderStatus parses an order status response frame.
func DecodeOrderStatus(frame []byte) (schema.Order, error) {
	parts, err := fields(frame, statusFieldCount)
	if err != nil {
		return schema.Order{}, err
	}
	o := schema.Order{
		OrderID:  parts[1],
		Symbol:   parts[6],
		Provider: parts[8],
		Exchange: parts[11],
	}
	if o.Status, err = parseStatus(parts[0]); err != nil {
		return schema.Order{}, err
	}
	if o.Side, err = parseSide(parts[2]); err != nil {
		return schema.Order{}, err
	}
	if o.Size, err = parseInt(parts[3]); err != nil {
		return schema.Order{}, err
	}
	if o.TIF, err = parseTIF(parts[4]); err != nil {
		return schema.Order{}, err
	}
	if o.DateTime, err = parseDate(parts[7]); err != nil {
		return schema.Order{}, err
	}
	if o.TriggerPrice, err = parseDecimal(parts[9]); err != nil {
		return schema.Order{}, err
	}
	if o.Slippage, err = parseDecimal(parts[10]); err != nil {
		return schema.Order{}, err
	}
	return o, nil
}

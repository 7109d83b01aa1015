package codec

import (
	"main/internal/schema"
)

// Execution response layout. Unlike requests, the frame carries no
// discriminator; the order id leads the line (observed wire behavior).
//
//	0:OrderID 1:Side 2:Size 3:Symbol 4:ExecutionPrice 5:ExecutionSize
//	6:AvgPrice 7:LeavesQty 8:CumQty 9:Provider 10:ExecutionDateTime
//	11:TriggerPrice 12:ExecutionID 13:ExecutionSide
const executionFieldCount = 14

// EncodeExecution serializes an execution envelope.
func EncodeExecution(e schema.Execution) []byte {
	return join(
		e.Order.OrderID,
		e.Order.Side.String(),
		formatInt(e.Order.Size),
		e.Order.Symbol,
		e.Fill.Price.String(),
		formatInt(e.Fill.Size),
		e.Fill.AvgPrice.String(),
		formatInt(e.Fill.LeavesQty),
		formatInt(e.Fill.CumQty),
		e.Provider,
		formatDate(e.Fill.DateTime),
		e.Order.TriggerPrice.String(),
		e.Fill.ExecutionID,
		e.Fill.Side.String(),
	)
}

// DecodeExecution parses an execution envelope.
func DecodeExecution(frame []byte) (schema.Execution, error) {
	parts, err := fields(frame, executionFieldCount)
	if err != nil {
		return schema.Execution{}, err
	}
	o := schema.Order{
		OrderID:  parts[0],
		Symbol:   parts[3],
		Provider: parts[9],
	}
	f := schema.Fill{
		ExecutionID: parts[12],
	}
	if o.Side, err = parseSide(parts[1]); err != nil {
		return schema.Execution{}, err
	}
	if o.Size, err = parseInt(parts[2]); err != nil {
		return schema.Execution{}, err
	}
	if f.Price, err = parseDecimal(parts[4]); err != nil {
		return schema.Execution{}, err
	}
	if f.Size, err = parseInt(parts[5]); err != nil {
		return schema.Execution{}, err
	}
	if f.AvgPrice, err = parseDecimal(parts[6]); err != nil {
		return schema.Execution{}, err
	}
	if f.LeavesQty, err = parseInt(parts[7]); err != nil {
		return schema.Execution{}, err
	}
	if f.CumQty, err = parseInt(parts[8]); err != nil {
		return schema.Execution{}, err
	}
	if f.DateTime, err = parseDate(parts[10]); err != nil {
		return schema.Execution{}, err
	}
	if o.TriggerPrice, err = parseDecimal(parts[11]); err != nil {
		return schema.Execution{}, err
	}
	if f.Side, err = parseSide(parts[13]); err != nil {
		return schema.Execution{}, err
	}
	if f.LeavesQty == 0 {
		f.Kind = schema.ExecutionKindFull
	} else {
		f.Kind = schema.ExecutionKindPartial
	}
	return schema.Execution{Order: o, Fill: f, Provider: parts[9]}, nil
}

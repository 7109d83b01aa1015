package exception

import "errors"

// Wire codec errors
var (
	ErrCodecShortFrame     = errors.New("codec: frame has too few fields")
	ErrCodecUnknownType    = errors.New("codec: unknown message type")
	ErrCodecBadNumber      = errors.New("codec: unparsable number field")
	ErrCodecBadDate        = errors.New("codec: unparsable date field")
	ErrCodecBadSide        = errors.New("codec: unknown order side")
	ErrCodecBadTimeInForce = errors.New("codec: unknown time in force")
	ErrCodecBadStatus      = errors.New("codec: unknown order status")
	ErrCodecBadDecision    = errors.New("codec: unknown locate decision")
	ErrCodecEmptyFrame     = errors.New("codec: empty frame")
)

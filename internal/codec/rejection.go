package codec

import (
	"main/internal/schema"
	"main/pkg/exception"

	"github.com/yanun0323/errors"
)

const wordRejection = "Rejection"

// Rejection response layout:
//
//	0:type 1:OrderID 2:Symbol 3:Provider 4:DateTime 5:Reason
const rejectionFieldCount = 6

// EncodeRejection serializes one rejected order attempt.
func EncodeRejection(r schema.Rejection) []byte {
	return join(
		wordRejection,
		r.OrderID,
		r.Symbol,
		r.Provider,
		formatDate(r.DateTime),
		r.Reason,
	)
}

// DecodeRejection parses one rejected order attempt.
func DecodeRejection(frame []byte) (schema.Rejection, error) {
	parts, err := fields(frame, rejectionFieldCount)
	if err != nil {
		return schema.Rejection{}, err
	}
	if parts[0] != wordRejection {
		return schema.Rejection{}, errors.Wrap(exception.ErrCodecUnknownType, parts[0])
	}
	r := schema.Rejection{
		OrderID:  parts[1],
		Symbol:   parts[2],
		Provider: parts[3],
		Reason:   parts[5],
	}
	if r.DateTime, err = parseDate(parts[4]); err != nil {
		return schema.Rejection{}, err
	}
	return r, nil
}

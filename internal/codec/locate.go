package codec

import (
	"main/internal/schema"
	"main/pkg/exception"

	"github.com/yanun0323/errors"
)

const (
	wordLocate   = "Locate"
	wordAccepted = "ACCEPTED"
	wordRejected = "REJECTED"
)

// Locate request layout (server to applications):
//
//	0:type 1:OrderID 2:Symbol 3:Size 4:Provider 5:DateTime
const locateFieldCount = 6

// EncodeLocateRequest serializes a broker-issued locate request.
func EncodeLocateRequest(r schema.LocateRequest) []byte {
	return join(
		wordLocate,
		r.OrderID,
		r.Symbol,
		formatInt(r.Size),
		r.Provider,
		formatDate(r.DateTime),
	)
}

// DecodeLocateRequest parses a broker-issued locate request.
func DecodeLocateRequest(frame []byte) (schema.LocateRequest, error) {
	parts, err := fields(frame, locateFieldCount)
	if err != nil {
		return schema.LocateRequest{}, err
	}
	if parts[0] != wordLocate {
		return schema.LocateRequest{}, errors.Wrap(exception.ErrCodecUnknownType, parts[0])
	}
	r := schema.LocateRequest{
		OrderID:  parts[1],
		Symbol:   parts[2],
		Provider: parts[4],
	}
	if r.Size, err = parseInt(parts[3]); err != nil {
		return schema.LocateRequest{}, err
	}
	if r.DateTime, err = parseDate(parts[5]); err != nil {
		return schema.LocateRequest{}, err
	}
	return r, nil
}

// Locate response layout (applications to server):
//
//	0:OrderID 1:Provider 2:StrategyID 3:Decision
const locateResponseFieldCount = 4

// EncodeLocateResponse serializes an application's locate decision.
func EncodeLocateResponse(r schema.LocateResponse) []byte {
	decision := wordRejected
	if r.Accepted {
		decision = wordAccepted
	}
	return join(r.OrderID, r.Provider, r.StrategyID, decision)
}

// DecodeLocateResponse parses an application's locate decision.
func DecodeLocateResponse(frame []byte) (schema.LocateResponse, error) {
	parts, err := fields(frame, locateResponseFieldCount)
	if err != nil {
		return schema.LocateResponse{}, err
	}
	r := schema.LocateResponse{
		OrderID:    parts[0],
		Provider:   parts[1],
		StrategyID: parts[2],
	}
	switch parts[3] {
	case wordAccepted:
		r.Accepted = true
	case wordRejected:
		r.Accepted = false
	default:
		return schema.LocateResponse{}, errors.Wrap(exception.ErrCodecBadDecision, parts[3])
	}
	return r, nil
}

package codec

import (
	"main/internal/schema"
	"main/pkg/exception"

	"github.com/yanun0323/errors"
)

const wordPosition = "Position"

// Position broadcast layout:
//
//	0:type 1:Provider 2:Symbol 3:Size 4:DateTime
const positionFieldCount = 5

// EncodePosition serializes a provider position snapshot.
func EncodePosition(p schema.Position) []byte {
	return join(
		wordPosition,
		p.Provider,
		p.Symbol,
		formatInt(p.Size),
		formatDate(p.DateTime),
	)
}

// DecodePosition parses a provider position snapshot.
func DecodePosition(frame []byte) (schema.Position, error) {
	parts, err := fields(frame, positionFieldCount)
	if err != nil {
		return schema.Position{}, err
	}
	if parts[0] != wordPosition {
		return schema.Position{}, errors.Wrap(exception.ErrCodecUnknownType, parts[0])
	}
	p := schema.Position{
		Provider: parts[1],
		Symbol:   parts[2],
	}
	if p.Size, err = parseInt(parts[3]); err != nil {
		return schema.Position{}, err
	}
	if p.DateTime, err = parseDate(parts[4]); err != nil {
		return schema.Position{}, err
	}
	return p, nil
}

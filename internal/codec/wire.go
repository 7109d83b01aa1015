// Package codec encodes and decodes the flat comma-delimited text wire
// format used for order and execution messages. Every message is a single
// line of positional fields led by a type discriminator; decoding uses exact
// index offsets and fails on any missing or unparsable field.
package codec

import (
	"strconv"
	"strings"
	"time"

	"main/internal/schema"
	"main/pkg/exception"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"
)

const fieldSeparator = ","

// DateTimeLayout is the fixed wire date format (M/d/yyyy h:mm:ss.fff tt).
const DateTimeLayout = "1/2/2006 3:04:05.000 PM"

// fields splits one wire frame and checks the minimum field count.
func fields(frame []byte, want int) ([]string, error) {
	if len(frame) == 0 {
		return nil, exception.ErrCodecEmptyFrame
	}
	parts := strings.Split(string(frame), fieldSeparator)
	if len(parts) < want {
		return nil, errors.Wrap(exception.ErrCodecShortFrame, "got "+strconv.Itoa(len(parts))+" want "+strconv.Itoa(want))
	}
	return parts, nil
}

func parseInt(s string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, errors.Wrap(exception.ErrCodecBadNumber, s)
	}
	return v, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, errors.Wrap(exception.ErrCodecBadNumber, s)
	}
	return d, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateTimeLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, errors.Wrap(exception.ErrCodecBadDate, s)
	}
	return t, nil
}

func parseSide(s string) (schema.OrderSide, error) {
	side := schema.ParseOrderSide(strings.TrimSpace(s))
	if !side.IsAvailable() {
		return side, errors.Wrap(exception.ErrCodecBadSide, s)
	}
	return side, nil
}

func parseTIF(s string) (schema.TimeInForce, error) {
	tif := schema.ParseTimeInForce(strings.TrimSpace(s))
	if !tif.IsAvailable() {
		return tif, errors.Wrap(exception.ErrCodecBadTimeInForce, s)
	}
	return tif, nil
}

func parseStatus(s string) (schema.OrderStatus, error) {
	status := schema.ParseOrderStatus(strings.TrimSpace(s))
	if !status.IsAvailable() {
		return status, errors.Wrap(exception.ErrCodecBadStatus, s)
	}
	return status, nil
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

func formatDate(t time.Time) string {
	return t.Format(DateTimeLayout)
}

func join(parts ...string) []byte {
	return []byte(strings.Join(parts, fieldSeparator))
}

package exception

import "errors"

var (
	ErrOrderGatewayNotConnected = errors.New("order: gateway not connected")
)

package exception

import "errors"

// Ring dispatcher errors
var (
	ErrRingInvalidCapacity = errors.New("ring: capacity must be a power of two")
	ErrRingNilHandler      = errors.New("ring: nil consumer handler")
	ErrRingClosed          = errors.New("ring: dispatcher closed")
)

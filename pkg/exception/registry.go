package exception

import "errors"

// Provider registry errors
var (
	ErrRegistryUnknownProvider = errors.New("registry: no factory for provider name")
	ErrRegistryNotLoggedIn     = errors.New("registry: application not logged in")
	ErrRegistryAlreadyBound    = errors.New("registry: gateway callbacks already bound")
	ErrRegistryStartGateway    = errors.New("registry: gateway start failed")
)

// Routing errors
var (
	ErrRoutingBadTag = errors.New("routing: tagged order id must hold exactly two segments")
)

package exception

import "errors"

// Message queue errors
var (
	ErrMQClosed         = errors.New("mq: broker closed")
	ErrMQNilHandler     = errors.New("mq: nil consume handler")
	ErrMQMissingBrokers = errors.New("mq: no brokers configured")
)

package server

import "context"

// Frame is one message crossing the queue fabric. AppID and ReplyTo ride in
// transport properties, not in the body.
type Frame struct {
	Body          []byte
	AppID         string
	CorrelationID string
	ReplyTo       string
}

// Broker is the contract the concrete queue client must satisfy. The engine
// delegates reconnection policy entirely to the implementation; transport
// failures surface only through logs and the heartbeat-driven disconnect
// path.
type Broker interface {
	// Consume binds a handler to a queue. The implementation owns the
	// receive loop and must stop it when ctx is done.
	Consume(ctx context.Context, queue string, handler func(Frame)) error

	// Publish sends one frame to a queue.
	Publish(ctx context.Context, queue string, frame Frame) error

	Close() error
}

// Queues names the consumed queue topology. Emitted traffic goes to
// per-application reply queues addressed by a captured ReplyTo routing key,
// falling back to ReplyPrefix plus the application id.
type Queues struct {
	Login          string
	Logout         string
	Inquiry        string
	AppInfo        string
	Heartbeat      string
	OrderRequest   string
	LocateResponse string
	ReplyPrefix    string
}

// DefaultQueues returns the standard queue names.
func DefaultQueues() Queues {
	return Queues{
		Login:          "oes.login",
		Logout:         "oes.logout",
		Inquiry:        "oes.inquiry",
		AppInfo:        "oes.appinfo",
		Heartbeat:      "oes.heartbeat",
		OrderRequest:   "oes.orders",
		LocateResponse: "oes.locates",
		ReplyPrefix:    "oes.reply.",
	}
}

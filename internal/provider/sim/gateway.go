// Package sim implements an in-memory provider gateway used by tests, the
// simapp tool and local deployments. It acks, fills, rejects and cancels
// according to its config, and can emit locate and position messages on
// demand.
package sim

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"main/internal/provider"
	"main/internal/schema"
	"main/pkg/exception"

	"github.com/shopspring/decimal"
)

// Config controls the simulated gateway behavior.
type Config struct {
	// ConnectOnStart makes IsConnected report true right after Start.
	ConnectOnStart bool
	// AutoAck emits NewArrived for every accepted order.
	AutoAck bool
	// AutoFill emits a full execution after the ack.
	AutoFill bool
	// RejectSymbols lists symbols that produce a rejection instead.
	RejectSymbols []string
	// FillPrice is the execution price used by AutoFill.
	FillPrice decimal.Decimal
}

type Gateway struct {
	name string
	cfg  Config

	mu        sync.Mutex
	cb        provider.Callbacks
	bound     bool
	connected bool

	positions map[string]int64
	sent      []schema.Order
	cancels   []schema.Order
	locates   []schema.LocateResponse

	execSeq uint64
}

var _ provider.Gateway = (*Gateway)(nil)
var _ provider.MarketOrderGateway = (*Gateway)(nil)
var _ provider.LimitOrderGateway = (*Gateway)(nil)
var _ provider.LocateGateway = (*Gateway)(nil)

func New(name string, cfg Config) *Gateway {
	return &Gateway{
		name:      name,
		cfg:       cfg,
		positions: make(map[string]int64),
	}
}

// Factory adapts a shared config into a provider factory.
func Factory(cfg Config) provider.Factory {
	return func(name string) (provider.Gateway, error) {
		return New(name, cfg), nil
	}
}

func (g *Gateway) Name() string {
	return g.name
}

func (g *Gateway) Capabilities() provider.CapabilitySet {
	return provider.CapMarket | provider.CapLimit | provider.CapLocate | provider.CapPosition
}

func (g *Gateway) Bind(cb provider.Callbacks) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.bound {
		return exception.ErrRegistryAlreadyBound
	}
	g.cb = cb
	g.bound = true
	return nil
}

func (g *Gateway) Start() error {
	g.mu.Lock()
	g.connected = g.cfg.ConnectOnStart
	g.mu.Unlock()
	return nil
}

func (g *Gateway) Stop() error {
	g.mu.Lock()
	g.connected = false
	cb := g.cb
	g.mu.Unlock()
	if cb.LogoutArrived != nil {
		cb.LogoutArrived()
	}
	return nil
}

func (g *Gateway) IsConnected() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.connected
}

// Connect simulates a deferred venue handshake completing.
func (g *Gateway) Connect() {
	g.mu.Lock()
	g.connected = true
	cb := g.cb
	g.mu.Unlock()
	if cb.LogonArrived != nil {
		cb.LogonArrived()
	}
}

func (g *Gateway) SendMarketOrder(order schema.Order) error {
	return g.accept(order)
}

func (g *Gateway) SendLimitOrder(order schema.Order) error {
	return g.accept(order)
}

func (g *Gateway) CancelLimitOrder(order schema.Order) error {
	g.mu.Lock()
	if !g.connected {
		g.mu.Unlock()
		return exception.ErrOrderGatewayNotConnected
	}
	g.cancels = append(g.cancels, order)
	cb := g.cb
	g.mu.Unlock()
	if cb.CancellationArrived != nil {
		cb.CancellationArrived(order)
	}
	return nil
}

func (g *Gateway) LocateMessageResponse(resp schema.LocateResponse) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.locates = append(g.locates, resp)
	return nil
}

// EmitLocate raises a broker-issued locate request.
func (g *Gateway) EmitLocate(req schema.LocateRequest) {
	g.mu.Lock()
	cb := g.cb
	g.mu.Unlock()
	if cb.LocateArrived != nil {
		cb.LocateArrived(req)
	}
}

// EmitPosition raises a provider position snapshot.
func (g *Gateway) EmitPosition(pos schema.Position) {
	g.mu.Lock()
	cb := g.cb
	g.mu.Unlock()
	if cb.PositionArrived != nil {
		cb.PositionArrived(pos)
	}
}

// SentOrders snapshots the orders the gateway received.
func (g *Gateway) SentOrders() []schema.Order {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]schema.Order, len(g.sent))
	copy(out, g.sent)
	return out
}

// Cancellations snapshots the cancel requests the gateway received.
func (g *Gateway) Cancellations() []schema.Order {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]schema.Order, len(g.cancels))
	copy(out, g.cancels)
	return out
}

// LocateResponses snapshots received locate decisions.
func (g *Gateway) LocateResponses() []schema.LocateResponse {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]schema.LocateResponse, len(g.locates))
	copy(out, g.locates)
	return out
}

func (g *Gateway) accept(order schema.Order) error {
	g.mu.Lock()
	if !g.connected {
		g.mu.Unlock()
		return exception.ErrOrderGatewayNotConnected
	}
	g.sent = append(g.sent, order)
	cb := g.cb
	rejected := false
	for _, symbol := range g.cfg.RejectSymbols {
		if symbol == order.Symbol {
			rejected = true
			break
		}
	}
	g.mu.Unlock()

	if rejected {
		if cb.RejectionArrived != nil {
			cb.RejectionArrived(schema.Rejection{
				OrderID:  order.OrderID,
				Symbol:   order.Symbol,
				Provider: g.name,
				DateTime: time.Now().UTC(),
				Reason:   "symbol rejected by venue",
			})
		}
		return nil
	}

	if g.cfg.AutoAck && cb.NewArrived != nil {
		cb.NewArrived(order)
	}
	if g.cfg.AutoFill {
		g.fill(order, cb)
	}
	return nil
}

func (g *Gateway) fill(order schema.Order, cb provider.Callbacks) {
	delta := order.Size
	if order.Side == schema.OrderSideSell {
		delta = -order.Size
	}
	g.mu.Lock()
	g.positions[order.Symbol] += delta
	net := g.positions[order.Symbol]
	g.mu.Unlock()

	price := g.cfg.FillPrice
	if price.IsZero() {
		price = order.LimitPrice
	}
	fill := schema.Fill{
		ExecutionID: g.name + "-" + strconv.FormatUint(atomic.AddUint64(&g.execSeq, 1), 10),
		Side:        order.Side,
		Size:        order.Size,
		Price:       price,
		AvgPrice:    price,
		LeavesQty:   0,
		CumQty:      order.Size,
		DateTime:    time.Now().UTC(),
		Venue:       g.name,
		Kind:        schema.ExecutionKindFull,
	}
	if cb.ExecutionArrived != nil {
		exec := schema.NewExecution(order.WithStatus(schema.OrderStatusExecuted), fill)
		exec.Provider = g.name
		cb.ExecutionArrived(exec)
	}
	if cb.PositionArrived != nil {
		cb.PositionArrived(schema.Position{
			Provider: g.name,
			Symbol:   order.Symbol,
			Size:     net,
			DateTime: time.Now().UTC(),
		})
	}
}

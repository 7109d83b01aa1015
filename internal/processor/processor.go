// Package processor is the order routing core. It demultiplexes requests
// from many applications onto shared provider gateways and multiplexes the
// asynchronous gateway callbacks back to the originating application via the
// tagged order id. No per-order state is kept; routing is conditioned
// entirely on registry lookups.
package processor

import (
	"main/internal/obs"
	"main/internal/provider"
	"main/internal/registry"
	"main/internal/routing"
	"main/internal/schema"

	"github.com/yanun0323/logs"
)

// Sink receives everything the processor emits toward applications. It is
// registered exactly once at construction; there is no event multicast.
type Sink interface {
	LogonArrived(appID, providerName string)
	LogoutArrived(appID, providerName string)
	OrderStatusChanged(appID string, order schema.Order)
	ExecutionArrived(appID string, exec schema.Execution)
	RejectionArrived(appID string, rej schema.Rejection)
	LocateArrived(appID string, req schema.LocateRequest)
	PositionArrived(pos schema.Position)
}

type Processor struct {
	reg     *registry.Registry
	sink    Sink
	metrics *obs.Metrics
}

func New(sink Sink, metrics *obs.Metrics) *Processor {
	p := &Processor{
		sink:    sink,
		metrics: metrics,
	}
	p.reg = registry.New(registry.Option{
		Bind: p.bind,
		OnLogon: func(name, appID string) {
			metrics.Inc(obs.CounterLogon)
			sink.LogonArrived(appID, name)
		},
		OnLogout: func(name, appID string) {
			metrics.Inc(obs.CounterLogout)
			sink.LogoutArrived(appID, name)
		},
	})
	return p
}

// RegisterFactory declares a provider gateway constructor.
func (p *Processor) RegisterFactory(name string, f provider.Factory) {
	p.reg.RegisterFactory(name, f)
}

// Registry exposes the provider registry for snapshots.
func (p *Processor) Registry() *registry.Registry {
	return p.reg
}

// Login asks the registry to log appID into a provider.
func (p *Processor) Login(providerName, appID string) {
	defer p.guard("login")()
	_ = p.reg.RequestLogin(providerName, appID)
}

// Logout asks the registry to log appID out of a provider.
func (p *Processor) Logout(providerName, appID string) {
	defer p.guard("logout")()
	_ = p.reg.RequestLogout(providerName, appID)
}

// Disconnect removes appID from every provider it is logged into.
func (p *Processor) Disconnect(appID string) {
	defer p.guard("disconnect")()
	p.reg.DisconnectApp(appID)
}

// MarketOrderRequest tags and forwards a market order. An unknown provider
// or a missing market capability drops the request with a log entry and a
// counter bump; the application receives no explicit rejection.
func (p *Processor) MarketOrderRequest(appID string, order schema.Order) {
	defer p.guard("market order")()
	p.metrics.Inc(obs.CounterMarketRequest)

	inst, ok := p.reg.Lookup(order.Provider)
	if !ok {
		p.dropRouting("market order", appID, order.OrderID, order.Provider, "provider unavailable")
		return
	}
	if inst.Market == nil {
		p.dropRouting("market order", appID, order.OrderID, order.Provider, "no market capability")
		return
	}
	tagged := order.WithID(routing.Tag(appID, order.OrderID))
	if err := inst.Market.SendMarketOrder(tagged); err != nil {
		logs.Errorf("processor: send market order %q to %q: %+v", tagged.OrderID, order.Provider, err)
	}
}

// LimitOrderRequest tags and forwards a limit order.
func (p *Processor) LimitOrderRequest(appID string, order schema.Order) {
	defer p.guard("limit order")()
	p.metrics.Inc(obs.CounterLimitRequest)

	inst, ok := p.reg.Lookup(order.Provider)
	if !ok {
		p.dropRouting("limit order", appID, order.OrderID, order.Provider, "provider unavailable")
		return
	}
	if inst.Limit == nil {
		p.dropRouting("limit order", appID, order.OrderID, order.Provider, "no limit capability")
		return
	}
	tagged := order.WithID(routing.Tag(appID, order.OrderID))
	if err := inst.Limit.SendLimitOrder(tagged); err != nil {
		logs.Errorf("processor: send limit order %q to %q: %+v", tagged.OrderID, order.Provider, err)
	}
}

// CancelOrderRequest tags and forwards a cancel. Cancellation resolves
// against the limit capability.
func (p *Processor) CancelOrderRequest(appID string, order schema.Order) {
	defer p.guard("cancel order")()
	p.metrics.Inc(obs.CounterCancelRequest)

	inst, ok := p.reg.Lookup(order.Provider)
	if !ok {
		p.dropRouting("cancel order", appID, order.OrderID, order.Provider, "provider unavailable")
		return
	}
	if inst.Limit == nil {
		p.dropRouting("cancel order", appID, order.OrderID, order.Provider, "no limit capability")
		return
	}
	tagged := order.WithID(routing.Tag(appID, order.OrderID))
	if err := inst.Limit.CancelLimitOrder(tagged); err != nil {
		logs.Errorf("processor: cancel order %q on %q: %+v", tagged.OrderID, order.Provider, err)
	}
}

// LocateResponse forwards an application's locate decision to the provider.
// Locate responses are not order-id scoped, so no tagging happens here.
func (p *Processor) LocateResponse(appID string, resp schema.LocateResponse) {
	defer p.guard("locate response")()
	p.metrics.Inc(obs.CounterLocateResponse)

	inst, ok := p.reg.Lookup(resp.Provider)
	if !ok {
		p.dropRouting("locate response", appID, resp.OrderID, resp.Provider, "provider unavailable")
		return
	}
	if inst.Locate == nil {
		p.dropRouting("locate response", appID, resp.OrderID, resp.Provider, "no locate capability")
		return
	}
	if err := inst.Locate.LocateMessageResponse(resp); err != nil {
		logs.Errorf("processor: locate response %q to %q: %+v", resp.OrderID, resp.Provider, err)
	}
}

// bind builds the callback slots the registry hands to a new gateway
// instance. Each callback runs on a provider-owned thread; values crossing
// back are copies, never the provider's own objects.
func (p *Processor) bind(providerName string) provider.Callbacks {
	return provider.Callbacks{
		NewArrived: func(order schema.Order) {
			defer p.guard("new arrived")()
			appID, plainID, ok := p.untag(providerName, order.OrderID)
			if !ok {
				return
			}
			p.metrics.Inc(obs.CounterStatusOut)
			p.sink.OrderStatusChanged(appID, order.WithID(plainID).WithStatus(schema.OrderStatusSubmitted))
		},
		CancellationArrived: func(order schema.Order) {
			defer p.guard("cancellation arrived")()
			appID, plainID, ok := p.untag(providerName, order.OrderID)
			if !ok {
				return
			}
			p.metrics.Inc(obs.CounterStatusOut)
			p.sink.OrderStatusChanged(appID, order.WithID(plainID).WithStatus(schema.OrderStatusCancelled))
		},
		ExecutionArrived: func(exec schema.Execution) {
			defer p.guard("execution arrived")()
			appID, plainID, ok := p.untag(providerName, exec.Order.OrderID)
			if !ok {
				return
			}
			exec.Order = exec.Order.WithID(plainID)
			p.metrics.Inc(obs.CounterExecutionOut)
			p.sink.ExecutionArrived(appID, exec)
		},
		RejectionArrived: func(rej schema.Rejection) {
			defer p.guard("rejection arrived")()
			appID, plainID, ok := p.untag(providerName, rej.OrderID)
			if !ok {
				return
			}
			rej.OrderID = plainID
			p.metrics.Inc(obs.CounterRejectionOut)
			p.sink.RejectionArrived(appID, rej)
		},
		LocateArrived: func(req schema.LocateRequest) {
			defer p.guard("locate arrived")()
			for _, appID := range p.reg.Applications(providerName) {
				p.metrics.Inc(obs.CounterLocateOut)
				p.sink.LocateArrived(appID, req)
			}
		},
		PositionArrived: func(pos schema.Position) {
			defer p.guard("position arrived")()
			p.metrics.Inc(obs.CounterPositionOut)
			p.sink.PositionArrived(pos)
		},
	}
}

func (p *Processor) untag(providerName, taggedID string) (appID, plainID string, ok bool) {
	appID, plainID, err := routing.Untag(taggedID)
	if err != nil {
		p.metrics.Inc(obs.CounterUntagDrop)
		logs.Warnf("processor: message from %q dropped: %+v", providerName, err)
		return "", "", false
	}
	return appID, plainID, true
}

func (p *Processor) dropRouting(op, appID, orderID, providerName, reason string) {
	p.metrics.Inc(obs.CounterRoutingDrop)
	logs.Warnf("processor: %s %q from app %q dropped: %s (%q)", op, orderID, appID, reason, providerName)
}

// guard keeps a bad message from crashing the hosting process; every public
// entry point returns instead of throwing.
func (p *Processor) guard(op string) func() {
	return func() {
		if r := recover(); r != nil {
			logs.Errorf("processor: %s panic: %+v", op, r)
		}
	}
}

// Package registry owns the provider gateway lifecycle. At most one live
// gateway instance exists per provider name; the instance starts on the
// first application login and stops on the last logout. All mutation is
// funneled through registry methods, external callers only see snapshots.
package registry

import (
	"sync"

	"main/internal/provider"
	"main/pkg/exception"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

// BindFunc supplies the order, execution, locate and position callback slots
// for a provider name. The registry fills the logon/logout slots itself.
type BindFunc func(providerName string) provider.Callbacks

// Option wires the registry's outbound events. OnLogon and OnLogout are
// single-slot by construction; there is no multicast.
type Option struct {
	Bind     BindFunc
	OnLogon  func(providerName, appID string)
	OnLogout func(providerName, appID string)
}

// Instance is a read-only view of one live gateway with its capability
// surfaces resolved once at construction. A nil surface means the declared
// capability set excludes it.
type Instance struct {
	Gateway provider.Gateway
	Market  provider.MarketOrderGateway
	Limit   provider.LimitOrderGateway
	Locate  provider.LocateGateway
}

type entry struct {
	mu           sync.Mutex
	name         string
	inst         Instance
	dead         bool
	apps         map[string]struct{}
	pendingLogin map[string]struct{}
}

type Registry struct {
	opt Option

	mu        sync.RWMutex
	factories map[string]provider.Factory
	entries   map[string]*entry
}

func New(opt Option) *Registry {
	return &Registry{
		opt:       opt,
		factories: make(map[string]provider.Factory),
		entries:   make(map[string]*entry),
	}
}

// RegisterFactory declares the constructor for a provider name.
func (r *Registry) RegisterFactory(name string, f provider.Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// RequestLogin records appID against the provider, constructing and starting
// the gateway on the 0 to 1 transition. The logon confirmation is emitted
// immediately when the gateway already reports connected, otherwise when the
// gateway's own logon event fires (which fans out to every ref-set member).
func (r *Registry) RequestLogin(name, appID string) error {
	for {
		e, err := r.getOrCreate(name)
		if err != nil {
			logs.Warnf("registry: login %q for app %q dropped: %+v", name, appID, err)
			return err
		}

		e.mu.Lock()
		if e.dead {
			e.mu.Unlock()
			continue
		}

		if e.inst.Gateway == nil {
			gw, err := r.construct(e, name)
			if err != nil {
				e.dead = true
				e.mu.Unlock()
				r.remove(name, e)
				logs.Errorf("registry: construct %q failed: %+v", name, err)
				return err
			}
			e.inst = resolve(gw)
		}

		e.apps[appID] = struct{}{}
		connected := e.inst.Gateway.IsConnected()
		if !connected {
			e.pendingLogin[appID] = struct{}{}
		}
		e.mu.Unlock()

		if connected && r.opt.OnLogon != nil {
			r.opt.OnLogon(name, appID)
		}
		return nil
	}
}

// RequestLogout removes appID from the provider's ref set, stopping and
// discarding the gateway on the 1 to 0 transition. Stop is fire-and-forget.
// The requester always receives a synthetic logout echo.
func (r *Registry) RequestLogout(name, appID string) error {
	r.mu.RLock()
	e := r.entries[name]
	r.mu.RUnlock()
	if e == nil {
		logs.Warnf("registry: logout %q for app %q dropped: not logged in", name, appID)
		return exception.ErrRegistryNotLoggedIn
	}

	e.mu.Lock()
	if _, ok := e.apps[appID]; !ok {
		e.mu.Unlock()
		logs.Warnf("registry: logout %q for app %q dropped: not logged in", name, appID)
		return exception.ErrRegistryNotLoggedIn
	}
	delete(e.apps, appID)
	delete(e.pendingLogin, appID)
	last := len(e.apps) == 0
	var gw provider.Gateway
	if last {
		e.dead = true
		gw = e.inst.Gateway
	}
	e.mu.Unlock()

	if last {
		r.remove(name, e)
		if gw != nil {
			if err := gw.Stop(); err != nil {
				logs.Warnf("registry: stop %q: %+v", name, err)
			}
		}
	}
	if r.opt.OnLogout != nil {
		r.opt.OnLogout(name, appID)
	}
	return nil
}

// DisconnectApp removes the application from every provider ref set it
// participates in, stopping gateways whose ref set drains. No logout echo is
// sent; the application is gone.
func (r *Registry) DisconnectApp(appID string) {
	r.mu.RLock()
	snapshot := make(map[string]*entry, len(r.entries))
	for name, e := range r.entries {
		snapshot[name] = e
	}
	r.mu.RUnlock()

	for name, e := range snapshot {
		e.mu.Lock()
		if _, ok := e.apps[appID]; !ok {
			e.mu.Unlock()
			continue
		}
		delete(e.apps, appID)
		delete(e.pendingLogin, appID)
		last := len(e.apps) == 0
		var gw provider.Gateway
		if last {
			e.dead = true
			gw = e.inst.Gateway
		}
		e.mu.Unlock()

		if last {
			r.remove(name, e)
			if gw != nil {
				if err := gw.Stop(); err != nil {
					logs.Warnf("registry: stop %q: %+v", name, err)
				}
			}
			logs.Infof("registry: provider %q stopped, last app %q disconnected", name, appID)
		}
	}
}

// Lookup returns the live instance view for a provider name.
func (r *Registry) Lookup(name string) (Instance, bool) {
	r.mu.RLock()
	e := r.entries[name]
	r.mu.RUnlock()
	if e == nil {
		return Instance{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dead || e.inst.Gateway == nil {
		return Instance{}, false
	}
	return e.inst, true
}

// Applications snapshots the ref set for a provider name.
func (r *Registry) Applications(name string) []string {
	r.mu.RLock()
	e := r.entries[name]
	r.mu.RUnlock()
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.apps))
	for app := range e.apps {
		out = append(out, app)
	}
	return out
}

// Snapshot copies the provider to ref-set mapping.
func (r *Registry) Snapshot() map[string][]string {
	r.mu.RLock()
	entries := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	out := make(map[string][]string, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		apps := make([]string, 0, len(e.apps))
		for app := range e.apps {
			apps = append(apps, app)
		}
		name := e.name
		e.mu.Unlock()
		out[name] = apps
	}
	return out
}

func (r *Registry) getOrCreate(name string) (*entry, error) {
	r.mu.RLock()
	e := r.entries[name]
	r.mu.RUnlock()
	if e != nil {
		return e, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if e = r.entries[name]; e != nil {
		return e, nil
	}
	if _, ok := r.factories[name]; !ok {
		return nil, exception.ErrRegistryUnknownProvider
	}
	e = &entry{
		name:         name,
		apps:         make(map[string]struct{}),
		pendingLogin: make(map[string]struct{}),
	}
	r.entries[name] = e
	return e, nil
}

// construct is called with e.mu held; the map-level entry guarantees only
// one goroutine ever reaches the factory for a given name. Gateways must not
// invoke callbacks synchronously from Start.
func (r *Registry) construct(e *entry, name string) (provider.Gateway, error) {
	r.mu.RLock()
	factory := r.factories[name]
	r.mu.RUnlock()
	if factory == nil {
		return nil, exception.ErrRegistryUnknownProvider
	}

	gw, err := factory(name)
	if err != nil {
		return nil, errors.Wrap(err, "factory")
	}

	cb := provider.Callbacks{}
	if r.opt.Bind != nil {
		cb = r.opt.Bind(name)
	}
	cb.LogonArrived = func() { r.fanOutLogon(e) }
	cb.LogoutArrived = func() {
		logs.Infof("registry: provider %q reported logout", e.name)
	}
	if err := gw.Bind(cb); err != nil {
		return nil, errors.Wrap(err, "bind callbacks")
	}

	if err := gw.Start(); err != nil {
		return nil, errors.Wrap(exception.ErrRegistryStartGateway, err.Error())
	}
	logs.Infof("registry: provider %q started", name)
	return gw, nil
}

// fanOutLogon confirms the logon to every ref-set member once the gateway's
// own logon event fires, then clears the pending-login tracking.
func (r *Registry) fanOutLogon(e *entry) {
	e.mu.Lock()
	targets := make([]string, 0, len(e.apps))
	for app := range e.apps {
		targets = append(targets, app)
	}
	for app := range e.pendingLogin {
		delete(e.pendingLogin, app)
	}
	name := e.name
	e.mu.Unlock()

	if r.opt.OnLogon == nil {
		return
	}
	for _, app := range targets {
		r.opt.OnLogon(name, app)
	}
}

func (r *Registry) remove(name string, e *entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entries[name] == e {
		delete(r.entries, name)
	}
}

func resolve(gw provider.Gateway) Instance {
	inst := Instance{Gateway: gw}
	caps := gw.Capabilities()
	if caps.Has(provider.CapMarket) {
		if m, ok := gw.(provider.MarketOrderGateway); ok {
			inst.Market = m
		} else {
			logs.Warnf("registry: %q declares market capability without the interface", gw.Name())
		}
	}
	if caps.Has(provider.CapLimit) {
		if l, ok := gw.(provider.LimitOrderGateway); ok {
			inst.Limit = l
		} else {
			logs.Warnf("registry: %q declares limit capability without the interface", gw.Name())
		}
	}
	if caps.Has(provider.CapLocate) {
		if l, ok := gw.(provider.LocateGateway); ok {
			inst.Locate = l
		} else {
			logs.Warnf("registry: %q declares locate capability without the interface", gw.Name())
		}
	}
	return inst
}

// Package server is the message-queue boundary of the order execution
// engine. It terminates the queue consumers, runs one ring dispatcher for
// request intake and one for response egress, speaks the wire codec and
// delegates every business decision to the processor.
package server

import (
	"context"
	"strings"
	"sync"
	"time"

	"main/internal/bus"
	"main/internal/codec"
	"main/internal/heartbeat"
	"main/internal/journal"
	"main/internal/obs"
	"main/internal/processor"
	"main/internal/provider"
	"main/internal/schema"
	"main/internal/state"
	"main/pkg/exception"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

// Config sizes the server. Zero values fall back to defaults.
type Config struct {
	Queues             Queues
	RingSize           int
	HeartbeatThreshold time.Duration
	HeartbeatInterval  time.Duration
}

// Option carries optional collaborators.
type Option struct {
	Metrics *obs.Metrics
	Journal journal.Recorder
}

// AppInfo is the metadata an application registers about itself.
type AppInfo struct {
	Name       string    `json:"name"`
	StrategyID string    `json:"strategyId"`
	Since      time.Time `json:"since"`
}

type inbound struct {
	kind     codec.RequestKind
	appID    string
	order    schema.Order
	trace    uint64
	enqueued time.Time
}

type outbound struct {
	queue    string
	frame    Frame
	enqueued time.Time
}

// Server wires broker, dispatchers, heartbeat and processor together. It is
// the processor's single sink.
type Server struct {
	broker  Broker
	cfg     Config
	metrics *obs.Metrics
	journal journal.Recorder
	trace   *obs.FrameTrace

	proc *processor.Processor
	hb   *heartbeat.Handler
	book *state.PositionBook

	in  *bus.Dispatcher[inbound]
	out *bus.Dispatcher[outbound]

	mu       sync.RWMutex
	routes   map[string]string
	appInfos map[string]AppInfo

	runCtx context.Context
}

var _ processor.Sink = (*Server)(nil)

func New(broker Broker, cfg Config, opt Option) (*Server, error) {
	if broker == nil {
		return nil, errors.Wrap(exception.ErrNilInstance, "broker")
	}
	if cfg.Queues == (Queues{}) {
		cfg.Queues = DefaultQueues()
	}
	if cfg.RingSize <= 0 {
		cfg.RingSize = bus.DefaultCapacity
	}

	s := &Server{
		broker:   broker,
		cfg:      cfg,
		metrics:  opt.Metrics,
		journal:  opt.Journal,
		trace:    obs.NewFrameTrace(0),
		book:     state.NewPositionBook(),
		routes:   make(map[string]string),
		appInfos: make(map[string]AppInfo),
	}
	s.proc = processor.New(s, opt.Metrics)
	s.hb = heartbeat.New(cfg.HeartbeatThreshold, cfg.HeartbeatInterval, s.onHeartbeatExpired)

	var err error
	if s.in, err = bus.NewDispatcher(cfg.RingSize, s.consumeInbound); err != nil {
		return nil, errors.Wrap(err, "inbound dispatcher")
	}
	if s.out, err = bus.NewDispatcher(cfg.RingSize, s.consumeOutbound); err != nil {
		return nil, errors.Wrap(err, "outbound dispatcher")
	}
	return s, nil
}

// RegisterProvider declares a provider gateway factory.
func (s *Server) RegisterProvider(name string, f provider.Factory) {
	s.proc.RegisterFactory(name, f)
}

// Processor exposes the routing core, mainly for tests.
func (s *Server) Processor() *processor.Processor {
	return s.proc
}

// Positions exposes the position book.
func (s *Server) Positions() *state.PositionBook {
	return s.book
}

// Run binds the queue consumers and drives both dispatchers and the
// heartbeat watchdog until the context is done.
func (s *Server) Run(ctx context.Context) error {
	s.runCtx = ctx

	go s.in.Run(ctx)
	go s.out.Run(ctx)
	go s.hb.Run(ctx)

	q := s.cfg.Queues
	consumers := []struct {
		queue   string
		handler func(Frame)
	}{
		{q.Login, s.onLogin},
		{q.Logout, s.onLogout},
		{q.Inquiry, s.onInquiry},
		{q.AppInfo, s.onAppInfo},
		{q.Heartbeat, s.onHeartbeat},
		{q.OrderRequest, s.onOrderRequest},
		{q.LocateResponse, s.onLocateResponse},
	}
	for _, c := range consumers {
		if err := s.broker.Consume(ctx, c.queue, c.handler); err != nil {
			return errors.Wrap(err, "consume "+c.queue)
		}
	}
	logs.Infof("server: consuming %d queues, ring size %d", len(consumers), s.cfg.RingSize)

	<-ctx.Done()
	s.in.Close()
	s.out.Close()
	return nil
}

// ---- inbound queue handlers, each runs on the broker's receive thread ----

func (s *Server) onLogin(f Frame) {
	if f.AppID == "" {
		logs.Warnf("server: login frame without app id dropped")
		return
	}
	s.captureRoute(f)
	s.hb.Beat(f.AppID)
	providerName := strings.TrimSpace(string(f.Body))
	s.proc.Login(providerName, f.AppID)
}

func (s *Server) onLogout(f Frame) {
	if f.AppID == "" {
		logs.Warnf("server: logout frame without app id dropped")
		return
	}
	s.captureRoute(f)
	providerName := strings.TrimSpace(string(f.Body))
	s.proc.Logout(providerName, f.AppID)
}

func (s *Server) onHeartbeat(f Frame) {
	s.captureRoute(f)
	s.hb.Beat(f.AppID)
}

// onAppInfo records "name,strategyId" metadata for the inquiry surface.
func (s *Server) onAppInfo(f Frame) {
	if f.AppID == "" {
		return
	}
	s.captureRoute(f)
	parts := strings.SplitN(string(f.Body), ",", 2)
	info := AppInfo{Name: parts[0], Since: time.Now().UTC()}
	if len(parts) == 2 {
		info.StrategyID = parts[1]
	}
	s.mu.Lock()
	s.appInfos[f.AppID] = info
	s.mu.Unlock()
}

func (s *Server) onInquiry(f Frame) {
	if f.AppID == "" {
		return
	}
	s.captureRoute(f)
	report := s.statusReport()
	body, err := sonic.Marshal(report)
	if err != nil {
		logs.Errorf("server: marshal inquiry report: %+v", err)
		return
	}
	s.send(f.AppID, body)
}

func (s *Server) onOrderRequest(f Frame) {
	trace := s.trace.Next()
	s.captureRoute(f)
	if f.AppID == "" {
		s.metrics.Inc(obs.CounterDecodeDrop)
		logs.Warnf("server: order frame without app id dropped, trace=%d", trace)
		return
	}
	req, err := codec.DecodeOrderRequest(f.Body)
	if err != nil {
		s.metrics.Inc(obs.CounterDecodeDrop)
		logs.Warnf("server: order frame from %q dropped, trace=%d: %+v", f.AppID, trace, err)
		return
	}

	seq, ok := s.in.Next()
	if !ok {
		logs.Warnf("server: inbound ring closed, order from %q dropped, trace=%d", f.AppID, trace)
		return
	}
	*s.in.Slot(seq) = inbound{
		kind:     req.Kind,
		appID:    f.AppID,
		order:    req.Order,
		trace:    trace,
		enqueued: time.Now(),
	}
	s.in.Publish(seq)
}

func (s *Server) onLocateResponse(f Frame) {
	s.captureRoute(f)
	if f.AppID == "" {
		s.metrics.Inc(obs.CounterDecodeDrop)
		logs.Warnf("server: locate response without app id dropped")
		return
	}
	resp, err := codec.DecodeLocateResponse(f.Body)
	if err != nil {
		s.metrics.Inc(obs.CounterDecodeDrop)
		logs.Warnf("server: locate response from %q dropped: %+v", f.AppID, err)
		return
	}
	s.proc.LocateResponse(f.AppID, resp)
}

// consumeInbound is the single consumer of the request ring; it dispatches
// by discriminator into the processor.
func (s *Server) consumeInbound(in inbound, seq uint64, endOfBatch bool) {
	s.metrics.ObserveInbound(time.Since(in.enqueued))
	switch in.kind {
	case codec.RequestKindMarket:
		s.proc.MarketOrderRequest(in.appID, in.order)
	case codec.RequestKindLimit:
		s.proc.LimitOrderRequest(in.appID, in.order)
	case codec.RequestKindCancel:
		s.proc.CancelOrderRequest(in.appID, in.order)
	default:
		s.metrics.Inc(obs.CounterDecodeDrop)
		logs.Warnf("server: unknown request kind %d, trace=%d", in.kind, in.trace)
	}
}

// consumeOutbound is the single consumer of the response ring; it publishes
// to the transport with the correlation id stamped at enqueue time.
func (s *Server) consumeOutbound(out outbound, seq uint64, endOfBatch bool) {
	ctx := s.runCtx
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.broker.Publish(ctx, out.queue, out.frame); err != nil {
		logs.Errorf("server: publish to %q failed: %+v", out.queue, err)
		return
	}
	s.metrics.ObserveOutbound(time.Since(out.enqueued))
}

// ---- processor.Sink ----

func (s *Server) LogonArrived(appID, providerName string) {
	s.send(appID, []byte("Logon,"+providerName))
}

func (s *Server) LogoutArrived(appID, providerName string) {
	s.send(appID, []byte("Logout,"+providerName))
}

func (s *Server) OrderStatusChanged(appID string, order schema.Order) {
	s.send(appID, codec.EncodeOrderStatus(order))
}

func (s *Server) ExecutionArrived(appID string, exec schema.Execution) {
	if s.journal != nil {
		s.journal.RecordExecution(appID, exec)
	}
	s.send(appID, codec.EncodeExecution(exec))
}

func (s *Server) RejectionArrived(appID string, rej schema.Rejection) {
	if s.journal != nil {
		s.journal.RecordRejection(appID, rej)
	}
	s.send(appID, codec.EncodeRejection(rej))
}

func (s *Server) LocateArrived(appID string, req schema.LocateRequest) {
	s.send(appID, codec.EncodeLocateRequest(req))
}

// PositionArrived broadcasts with no application scoping at all: every
// application with a known route receives the snapshot.
func (s *Server) PositionArrived(pos schema.Position) {
	s.book.Apply(pos)
	body := codec.EncodePosition(pos)
	s.mu.RLock()
	apps := make([]string, 0, len(s.routes))
	for appID := range s.routes {
		apps = append(apps, appID)
	}
	s.mu.RUnlock()
	for _, appID := range apps {
		s.send(appID, body)
	}
}

// ---- internals ----

func (s *Server) onHeartbeatExpired(appID string) {
	s.metrics.Inc(obs.CounterHeartbeatExpired)
	logs.Warnf("server: disconnecting application %q after heartbeat timeout", appID)
	s.proc.Disconnect(appID)

	s.mu.Lock()
	delete(s.routes, appID)
	delete(s.appInfos, appID)
	s.mu.Unlock()
}

// captureRoute remembers the ReplyTo routing key carried in the frame
// properties so responses reach the per-application reply queue.
func (s *Server) captureRoute(f Frame) {
	if f.AppID == "" || f.ReplyTo == "" {
		return
	}
	s.mu.Lock()
	s.routes[f.AppID] = f.ReplyTo
	s.mu.Unlock()
}

func (s *Server) route(appID string) string {
	s.mu.RLock()
	route, ok := s.routes[appID]
	s.mu.RUnlock()
	if ok {
		return route
	}
	return s.cfg.Queues.ReplyPrefix + appID
}

func (s *Server) send(appID string, body []byte) {
	seq, ok := s.out.Next()
	if !ok {
		logs.Warnf("server: outbound ring closed, message for %q dropped", appID)
		return
	}
	*s.out.Slot(seq) = outbound{
		queue: s.route(appID),
		frame: Frame{
			Body:          body,
			AppID:         appID,
			CorrelationID: uuid.NewString(),
		},
		enqueued: time.Now(),
	}
	s.out.Publish(seq)
}

type statusReport struct {
	Providers    map[string][]string `json:"providers"`
	Applications map[string]AppInfo  `json:"applications"`
	Positions    []schema.Position   `json:"positions"`
	Metrics      obs.Snapshot        `json:"metrics"`
}

func (s *Server) statusReport() statusReport {
	s.mu.RLock()
	apps := make(map[string]AppInfo, len(s.appInfos))
	for appID, info := range s.appInfos {
		apps[appID] = info
	}
	s.mu.RUnlock()

	return statusReport{
		Providers:    s.proc.Registry().Snapshot(),
		Applications: apps,
		Positions:    s.book.Snapshot(),
		Metrics:      s.metrics.Snapshot(),
	}
}

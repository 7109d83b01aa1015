// Package inproc is a channel-backed broker for tests and the
// single-process simulator. Each queue is one buffered channel with one
// delivery goroutine, so per-queue ordering matches the real transport.
package inproc

import (
	"context"
	"sync"

	"main/internal/server"
	"main/pkg/exception"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

const defaultDepth = 1024

type queue struct {
	ch      chan server.Frame
	handler func(server.Frame)
}

// Broker implements server.Broker in memory.
type Broker struct {
	mu     sync.Mutex
	queues map[string]*queue
	closed bool
	wg     sync.WaitGroup
}

var _ server.Broker = (*Broker)(nil)

func New() *Broker {
	return &Broker{queues: make(map[string]*queue)}
}

func (b *Broker) get(name string) *queue {
	if q, ok := b.queues[name]; ok {
		return q
	}
	q := &queue{ch: make(chan server.Frame, defaultDepth)}
	b.queues[name] = q
	return q
}

// Consume binds the handler to a queue. One handler per queue; the second
// binding wins and a warning is logged.
func (b *Broker) Consume(ctx context.Context, name string, handler func(server.Frame)) error {
	if handler == nil {
		return errors.Wrap(exception.ErrMQNilHandler, name)
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return exception.ErrMQClosed
	}
	q := b.get(name)
	if q.handler != nil {
		logs.Warnf("inproc: queue %q handler rebound", name)
	}
	bound := q.handler == nil
	q.handler = handler
	b.mu.Unlock()

	if !bound {
		return nil
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case f, ok := <-q.ch:
				if !ok {
					return
				}
				b.mu.Lock()
				h := q.handler
				b.mu.Unlock()
				if h != nil {
					h(f)
				}
			}
		}
	}()
	return nil
}

func (b *Broker) Publish(ctx context.Context, name string, f server.Frame) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return exception.ErrMQClosed
	}
	q := b.get(name)
	b.mu.Unlock()

	select {
	case q.ch <- f:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "inproc: publish "+name)
	}
}

// Drain returns frames published to a queue nobody consumes. Test helper.
func (b *Broker) Drain(name string) []server.Frame {
	b.mu.Lock()
	q := b.get(name)
	b.mu.Unlock()

	var out []server.Frame
	for {
		select {
		case f := <-q.ch:
			out = append(out, f)
		default:
			return out
		}
	}
}

func (b *Broker) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	for _, q := range b.queues {
		close(q.ch)
	}
	b.mu.Unlock()

	b.wg.Wait()
	return nil
}

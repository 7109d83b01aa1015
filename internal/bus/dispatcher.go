// Package bus provides the ring dispatcher that decouples a network receive
// loop from variable-latency business processing. One dispatcher owns one
// pre-allocated ring of slots and exactly one consumer handler; publish order
// equals consumption order. A full ring blocks the producer, which is the
// intended backpressure, not an error.
package bus

import (
	"context"
	"sync"

	"main/pkg/exception"

	"github.com/yanun0323/logs"
)

// DefaultCapacity matches the reference ring size.
const DefaultCapacity = 1 << 16

// Handler consumes one published slot. Processing errors must never reach
// the producer; panics are caught and logged by the dispatcher.
type Handler[T any] func(payload T, seq uint64, endOfBatch bool)

// Dispatcher is a bounded multi-producer/single-consumer ring buffer with
// blocking reserve and strict in-order publication. Concurrent producers each
// reserve a distinct slot; Publish lines them back up in reservation order.
type Dispatcher[T any] struct {
	mu       sync.Mutex
	notFull  *sync.Cond
	notEmpty *sync.Cond
	inOrder  *sync.Cond

	slots    []T
	mask     uint64
	capacity uint64

	reserved  uint64
	published uint64
	consumed  uint64

	handler Handler[T]
	closed  bool
}

// NewDispatcher allocates a dispatcher. Capacity must be a power of two.
func NewDispatcher[T any](capacity int, handler Handler[T]) (*Dispatcher[T], error) {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		return nil, exception.ErrRingInvalidCapacity
	}
	if handler == nil {
		return nil, exception.ErrRingNilHandler
	}
	d := &Dispatcher[T]{
		slots:    make([]T, capacity),
		mask:     uint64(capacity - 1),
		capacity: uint64(capacity),
		handler:  handler,
	}
	d.notFull = sync.NewCond(&d.mu)
	d.notEmpty = sync.NewCond(&d.mu)
	d.inOrder = sync.NewCond(&d.mu)
	return d, nil
}

// Next reserves the next write slot, blocking while the ring is full.
// It returns false when the dispatcher has been closed.
func (d *Dispatcher[T]) Next() (uint64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for d.reserved-d.consumed == d.capacity && !d.closed {
		d.notFull.Wait()
	}
	if d.closed {
		return 0, false
	}
	seq := d.reserved
	d.reserved++
	return seq, true
}

// Slot returns the write slot for a reserved sequence. The producer owns the
// slot between Next and Publish; no locking is needed in that window.
func (d *Dispatcher[T]) Slot(seq uint64) *T {
	return &d.slots[seq&d.mask]
}

// Publish makes a reserved slot visible to the consumer. Publication happens
// in reservation order: a producer holding a later sequence blocks until every
// earlier sequence has been published, so slot writes from concurrent
// producers stay visible to the consumer in reserve order.
func (d *Dispatcher[T]) Publish(seq uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for seq != d.published && !d.closed {
		d.inOrder.Wait()
	}
	if d.closed {
		return
	}
	d.published = seq + 1
	d.notEmpty.Signal()
	d.inOrder.Broadcast()
}

// Push reserves, sets and publishes one slot. It returns ErrRingClosed after
// Close.
func (d *Dispatcher[T]) Push(v T) error {
	seq, ok := d.Next()
	if !ok {
		return exception.ErrRingClosed
	}
	*d.Slot(seq) = v
	d.Publish(seq)
	return nil
}

// Depth reports the number of published but unconsumed slots.
func (d *Dispatcher[T]) Depth() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.published - d.consumed
}

// Close stops the dispatcher. Blocked producers wake and observe closure;
// the consumer drains what was already published, then returns.
func (d *Dispatcher[T]) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.notFull.Broadcast()
	d.notEmpty.Broadcast()
	d.inOrder.Broadcast()
}

// Run consumes published slots in sequence order until the context is done
// or the dispatcher is closed and drained. It must be called from exactly
// one goroutine.
func (d *Dispatcher[T]) Run(ctx context.Context) {
	stop := context.AfterFunc(ctx, func() {
		d.mu.Lock()
		d.notEmpty.Broadcast()
		d.notFull.Broadcast()
		d.mu.Unlock()
	})
	defer stop()

	for {
		d.mu.Lock()
		for d.consumed == d.published && !d.closed && ctx.Err() == nil {
			d.notEmpty.Wait()
		}
		if ctx.Err() != nil {
			d.mu.Unlock()
			return
		}
		if d.closed && d.consumed == d.published {
			d.mu.Unlock()
			return
		}
		seq := d.consumed
		batchEnd := d.published
		d.mu.Unlock()

		for ; seq < batchEnd; seq++ {
			payload := d.slots[seq&d.mask]
			d.invoke(payload, seq, seq+1 == batchEnd)

			d.mu.Lock()
			d.consumed = seq + 1
			d.notFull.Signal()
			d.mu.Unlock()
		}
	}
}

func (d *Dispatcher[T]) invoke(payload T, seq uint64, endOfBatch bool) {
	defer func() {
		if r := recover(); r != nil {
			logs.Errorf("ring: handler panic at seq %d: %+v", seq, r)
		}
	}()
	d.handler(payload, seq, endOfBatch)
}

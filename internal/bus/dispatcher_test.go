package bus

import (
	"context"
	"sync"
	"testing"
	"time"

	"main/pkg/exception"

	"github.com/yanun0323/errors"
)

func TestNewDispatcherCapacity(t *testing.T) {
	testCases := []struct {
		desc     string
		capacity int
		ok       bool
	}{
		{"power of two", 8, true},
		{"one", 1, true},
		{"zero", 0, false},
		{"negative", -4, false},
		{"not power of two", 12, false},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			_, err := NewDispatcher(tc.capacity, func(int, uint64, bool) {})
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && !errors.Is(err, exception.ErrRingInvalidCapacity) {
				t.Fatalf("error mismatch! should be invalid capacity but got %v", err)
			}
		})
	}
}

func TestNewDispatcherNilHandler(t *testing.T) {
	if _, err := NewDispatcher[int](8, nil); !errors.Is(err, exception.ErrRingNilHandler) {
		t.Fatalf("error mismatch! should be nil handler but got %v", err)
	}
}

func TestDispatchOrderWithinCapacity(t *testing.T) {
	const n = 16

	var mu sync.Mutex
	var got []int
	done := make(chan struct{})

	d, err := NewDispatcher(n, func(v int, seq uint64, endOfBatch bool) {
		mu.Lock()
		got = append(got, v)
		full := len(got) == n
		mu.Unlock()
		if full {
			close(done)
		}
	})
	if err != nil {
		t.Fatalf("new dispatcher failed: %v", err)
	}

	for i := 0; i < n; i++ {
		if err := d.Push(i); err != nil {
			t.Fatalf("push %d failed: %v", i, err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for %d messages", n)
	}

	mu.Lock()
	defer mu.Unlock()
	for i, v := range got {
		if v != i {
			t.Fatalf("order mismatch at %d! should be %d but got %d", i, i, v)
		}
	}
}

func TestProducerBlocksOnFullRing(t *testing.T) {
	const capacity = 4
	const total = capacity * 8

	release := make(chan struct{})
	var mu sync.Mutex
	var got []int
	done := make(chan struct{})

	d, err := NewDispatcher(capacity, func(v int, seq uint64, endOfBatch bool) {
		<-release
		mu.Lock()
		got = append(got, v)
		full := len(got) == total
		mu.Unlock()
		if full {
			close(done)
		}
	})
	if err != nil {
		t.Fatalf("new dispatcher failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	produced := make(chan struct{})
	go func() {
		for i := 0; i < total; i++ {
			if err := d.Push(i); err != nil {
				t.Errorf("push %d failed: %v", i, err)
				return
			}
		}
		close(produced)
	}()

	// with the consumer gated, the producer must stall after filling the ring
	select {
	case <-produced:
		t.Fatalf("producer ran past a full ring")
	case <-time.After(100 * time.Millisecond):
	}
	if depth := d.Depth(); depth > capacity {
		t.Fatalf("depth mismatch! should be <= %d but got %d", capacity, depth)
	}

	close(release)

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out draining the ring")
	}

	mu.Lock()
	defer mu.Unlock()
	for i, v := range got {
		if v != i {
			t.Fatalf("order mismatch at %d! should be %d but got %d", i, i, v)
		}
	}
}

func TestInterleavedPublishLosesNothing(t *testing.T) {
	var mu sync.Mutex
	var got []int
	done := make(chan struct{})

	d, err := NewDispatcher(8, func(v int, seq uint64, endOfBatch bool) {
		mu.Lock()
		got = append(got, v)
		full := len(got) == 3
		mu.Unlock()
		if full {
			close(done)
		}
	})
	if err != nil {
		t.Fatalf("new dispatcher failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	// reserve the first slot, then let a second producer reserve and attempt
	// to publish the next one before the first is published
	seq, ok := d.Next()
	if !ok {
		t.Fatalf("reserve failed on an open ring")
	}
	*d.Slot(seq) = 100

	pushed := make(chan error, 1)
	go func() {
		pushed <- d.Push(200)
	}()

	// the later sequence must wait its turn
	select {
	case err := <-pushed:
		t.Fatalf("later sequence published before the earlier one: %v", err)
	case <-time.After(100 * time.Millisecond):
	}

	d.Publish(seq)
	if err := <-pushed; err != nil {
		t.Fatalf("push 200 failed: %v", err)
	}
	if err := d.Push(300); err != nil {
		t.Fatalf("push 300 failed: %v", err)
	}

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for 3 messages")
	}

	mu.Lock()
	defer mu.Unlock()
	if got[0] != 100 || got[1] != 200 || got[2] != 300 {
		t.Fatalf("payload mismatch! should be [100 200 300] but got %v", got)
	}
}

func TestConcurrentProducersLoseNothing(t *testing.T) {
	const producers = 8
	const perProducer = 200
	const total = producers * perProducer

	var mu sync.Mutex
	seen := make(map[int]int, total)
	count := 0
	done := make(chan struct{})

	d, err := NewDispatcher(16, func(v int, seq uint64, endOfBatch bool) {
		mu.Lock()
		seen[v]++
		count++
		full := count == total
		mu.Unlock()
		if full {
			close(done)
		}
	})
	if err != nil {
		t.Fatalf("new dispatcher failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				if err := d.Push(base + i); err != nil {
					t.Errorf("push %d failed: %v", base+i, err)
					return
				}
			}
		}(p * perProducer)
	}
	wg.Wait()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		mu.Lock()
		defer mu.Unlock()
		t.Fatalf("timed out! delivered %d of %d messages", count, total)
	}

	mu.Lock()
	defer mu.Unlock()
	for v := 0; v < total; v++ {
		if seen[v] != 1 {
			t.Fatalf("delivery mismatch for %d! should be exactly once but got %d", v, seen[v])
		}
	}
}

func TestHandlerPanicDoesNotStopConsumer(t *testing.T) {
	var mu sync.Mutex
	var got []int
	done := make(chan struct{})

	d, err := NewDispatcher(8, func(v int, seq uint64, endOfBatch bool) {
		if v == 1 {
			panic("boom")
		}
		mu.Lock()
		got = append(got, v)
		full := len(got) == 2
		mu.Unlock()
		if full {
			close(done)
		}
	})
	if err != nil {
		t.Fatalf("new dispatcher failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	for _, v := range []int{0, 1, 2} {
		if err := d.Push(v); err != nil {
			t.Fatalf("push %d failed: %v", v, err)
		}
	}

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatalf("consumer did not survive the panic")
	}

	mu.Lock()
	defer mu.Unlock()
	if got[0] != 0 || got[1] != 2 {
		t.Fatalf("payload mismatch! should be [0 2] but got %v", got)
	}
}

func TestPushAfterClose(t *testing.T) {
	d, err := NewDispatcher(8, func(int, uint64, bool) {})
	if err != nil {
		t.Fatalf("new dispatcher failed: %v", err)
	}
	d.Close()
	if err := d.Push(1); !errors.Is(err, exception.ErrRingClosed) {
		t.Fatalf("error mismatch! should be ring closed but got %v", err)
	}
}

func TestEndOfBatchFlag(t *testing.T) {
	type seen struct {
		v   int
		eob bool
	}

	release := make(chan struct{})
	var mu sync.Mutex
	var got []seen
	done := make(chan struct{})

	d, err := NewDispatcher(8, func(v int, seq uint64, endOfBatch bool) {
		if v == 0 {
			<-release
		}
		mu.Lock()
		got = append(got, seen{v, endOfBatch})
		full := len(got) == 4
		mu.Unlock()
		if full {
			close(done)
		}
	})
	if err != nil {
		t.Fatalf("new dispatcher failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	// first push wakes the consumer, which parks on release; the remaining
	// pushes then land in one batch
	for _, v := range []int{0, 1, 2, 3} {
		if err := d.Push(v); err != nil {
			t.Fatalf("push %d failed: %v", v, err)
		}
	}
	close(release)

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for the batch")
	}

	mu.Lock()
	defer mu.Unlock()
	last := got[len(got)-1]
	if !last.eob {
		t.Fatalf("last message of the batch not flagged end-of-batch: %v", got)
	}
}

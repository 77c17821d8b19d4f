package batch

import (
	"context"
	"sync"
	"time"
)

// Operation is a unit of deferred work.
type Operation interface {
	Execute(ctx context.Context) error
}

// Processor receives accumulated operations when the batcher flushes.
type Processor interface {
	ProcessBatch(ctx context.Context, operations []Operation) error
}

// Batcher accumulates operations and hands them to a Processor either when
// the batch fills up, on a timer, or on an explicit Flush. Add never blocks
// on the processor.
type Batcher struct {
	size      int
	interval  time.Duration
	processor Processor

	mu      sync.Mutex
	pending []Operation

	kick     chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func NewBatcher(size int, interval time.Duration, processor Processor) *Batcher {
	b := &Batcher{
		size:      size,
		interval:  interval,
		processor: processor,
		pending:   make([]Operation, 0, size),
		kick:      make(chan struct{}, 1),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go b.loop()
	return b
}

// Add queues an operation. A full batch triggers an asynchronous flush.
func (b *Batcher) Add(op Operation) error {
	b.mu.Lock()
	b.pending = append(b.pending, op)
	full := len(b.pending) >= b.size
	b.mu.Unlock()

	if full {
		select {
		case b.kick <- struct{}{}:
		default:
		}
	}
	return nil
}

// Flush synchronously processes everything queued so far.
func (b *Batcher) Flush(ctx context.Context) error {
	ops := b.take()
	if len(ops) == 0 {
		return nil
	}
	return b.processor.ProcessBatch(ctx, ops)
}

// PendingCount reports the number of queued operations.
func (b *Batcher) PendingCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Stop flushes whatever is queued and shuts the background loop down. Safe to
// call more than once; it returns after the final flush completed.
func (b *Batcher) Stop() {
	b.stopOnce.Do(func() { close(b.stop) })
	<-b.done
}

func (b *Batcher) take() []Operation {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.pending) == 0 {
		return nil
	}
	ops := b.pending
	b.pending = make([]Operation, 0, b.size)
	return ops
}

func (b *Batcher) loop() {
	defer close(b.done)

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = b.Flush(context.Background())
		case <-b.kick:
			_ = b.Flush(context.Background())
		case <-b.stop:
			_ = b.Flush(context.Background())
			return
		}
	}
}

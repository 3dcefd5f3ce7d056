package host

import (
	"sync"
	"sync/atomic"
)

// Bus carries inbound signals from the host adapter to the submit workers.
// Publishing never blocks the host's event thread: when the buffer is full
// the signal is dropped, since a stalled consumer must not stall the game
// client.
type Bus struct {
	ch      chan Signal
	dropped int64

	mu     sync.RWMutex
	closed bool
}

func NewBus() *Bus {
	return &Bus{
		ch: make(chan Signal, 64),
	}
}

// Publish enqueues a signal, reporting whether it was accepted.
func (b *Bus) Publish(sig Signal) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return false
	}

	select {
	case b.ch <- sig:
		return true
	default:
		atomic.AddInt64(&b.dropped, 1)
		return false
	}
}

// Signals is the consumer side of the bus.
func (b *Bus) Signals() <-chan Signal {
	return b.ch
}

// Dropped reports how many signals were discarded due to backpressure.
func (b *Bus) Dropped() int64 {
	return atomic.LoadInt64(&b.dropped)
}

// Close stops the bus. Signals already buffered remain readable.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.ch)
}

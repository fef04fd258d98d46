package views

import "sync"

// Buffer coalesces view-count increments between flushes. It is the only
// shared mutable state in the service: the façade writes into it on every
// increment and the flush coordinator is its sole consumer for draining.
//
// All methods are safe for concurrent use and never perform I/O, so the
// increment fast path stays sub-millisecond under load. The buffer is
// deliberately volatile: a process restart loses whatever has not been
// flushed yet.
type Buffer struct {
	mu      sync.Mutex
	pending map[string]int64
}

// NewBuffer creates an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{pending: make(map[string]int64)}
}

// Add increments the pending count for key by n, creating the entry if
// absent.
func (b *Buffer) Add(key string, n int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pending[key] += n
}

// Drain atomically replaces the pending map with an empty one and returns the
// old map, which the caller then owns. Any Add concurrent with Drain lands
// entirely in the returned snapshot or entirely in the fresh map; nothing is
// lost or counted twice. Draining an empty buffer returns an empty map.
func (b *Buffer) Drain() map[string]int64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	drained := b.pending
	b.pending = make(map[string]int64)

	return drained
}

// Pending returns the buffered delta for key, zero when none.
func (b *Buffer) Pending(key string) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.pending[key]
}

// Snapshot returns a copy of the pending map without clearing it. Used by the
// read path to fold buffered deltas into stored totals.
func (b *Buffer) Snapshot() map[string]int64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	snapshot := make(map[string]int64, len(b.pending))
	for k, v := range b.pending {
		snapshot[k] = v
	}

	return snapshot
}

// Len returns the number of keys with pending deltas.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.pending)
}

// Reset discards all pending deltas. Test lifecycle helper.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pending = make(map[string]int64)
}

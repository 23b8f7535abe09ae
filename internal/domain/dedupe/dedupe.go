// Package dedupe tracks recently seen gateway event ids.
//
// Webhook gateways redeliver events when an ack is slow; this guard keeps a
// bounded window of delivery ids so a redelivered event does not score twice.
// It is best-effort suppression, not exactly-once processing.
package dedupe

import (
	"context"
	"sync"
)

// Deduper records seen event ids.
type Deduper interface {
	// SeenAndRecord atomically checks whether id was seen and records it
	// if not. Returns true when id was already seen.
	SeenAndRecord(ctx context.Context, id string) bool

	// Size returns the number of ids currently tracked.
	Size() int
}

// inMemoryDeduper implements Deduper with a map plus a fixed ring of ids.
// When the ring is full the oldest id falls out (FIFO). maxSize <= 0 means
// unbounded.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	ring    []string
	next    int
	maxSize int
}

// New creates an in-memory deduper with configuration options.
func New(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: defaultMaxSize,
	}

	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]struct{})
	if d.maxSize > 0 {
		d.ring = make([]string, d.maxSize)
	}

	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}

	if d.maxSize > 0 {
		if old := d.ring[d.next]; old != "" {
			delete(d.seen, old)
		}
		d.ring[d.next] = id
		d.next = (d.next + 1) % d.maxSize
	}
	d.seen[id] = struct{}{}
	return false
}

func (d *inMemoryDeduper) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}

// Package dedupe tracks the last seen content of each player-season so
// unchanged re-ingests can be skipped.
package dedupe

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
)

// Deduper remembers the latest fingerprint per record key.
type Deduper interface {
	// SeenAndRecord atomically checks whether key was last recorded with
	// fingerprint and records it if not. Returns true when the record is
	// unchanged and should be skipped.
	SeenAndRecord(ctx context.Context, key, fingerprint string) bool

	// Unrecord forgets key, so the next SeenAndRecord treats it as new.
	// Used when a recorded record could not be processed (e.g. queue
	// backpressure).
	Unrecord(ctx context.Context, key string)

	Size() int64
}

type entry struct {
	key         string
	fingerprint string
}

// inMemoryDeduper implements Deduper with a map plus a recency list.
// Bounded mode (maxSize > 0) evicts the least recently recorded key;
// unbounded mode (maxSize <= 0) never evicts.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List // front = most recently recorded
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: 50000, // default max size
	}

	// Apply all options
	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]*list.Element)
	d.order = list.New()
	return d
}

// SeenAndRecord reports whether key is already recorded with fingerprint.
func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key, fingerprint string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[key]; ok {
		e := el.Value.(*entry)
		d.order.MoveToFront(el)
		if e.fingerprint == fingerprint {
			return true
		}
		e.fingerprint = fingerprint
		return false
	}

	if d.maxSize > 0 && d.order.Len() >= d.maxSize {
		d.evictOldest()
	}
	d.seen[key] = d.order.PushFront(&entry{key: key, fingerprint: fingerprint})
	d.size.Add(1)
	return false
}

// Unrecord removes key from the tracker.
func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[key]; ok {
		d.order.Remove(el)
		delete(d.seen, key)
		d.size.Add(-1)
	}
}

// evictOldest drops the least recently recorded key. Caller holds d.mu.
func (d *inMemoryDeduper) evictOldest() {
	el := d.order.Back()
	if el == nil {
		return
	}
	d.order.Remove(el)
	delete(d.seen, el.Value.(*entry).key)
	d.size.Add(-1)
}

// Size returns the current number of tracked keys.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}

package events

import (
	"sync"
	"sync/atomic"
)

type entry[T any] struct {
	fn      func(T)
	removed atomic.Bool
}

// Fanout is a listener registry that delivers values to subscribers in
// subscription order. Delivery happens on the publisher's goroutine and
// never under the registry lock, so a listener may subscribe or
// unsubscribe (itself or others) while a broadcast is running.
type Fanout[T any] struct {
	mu      sync.RWMutex
	entries []*entry[T]
}

// Subscribe registers fn and returns a function that removes it.
// The returned function is idempotent.
func (f *Fanout[T]) Subscribe(fn func(T)) func() {
	e := &entry[T]{fn: fn}

	f.mu.Lock()
	f.entries = append(f.entries, e)
	f.mu.Unlock()

	return func() {
		if e.removed.Swap(true) {
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		for i, cur := range f.entries {
			if cur == e {
				// Copy rather than shift in place; a running broadcast may
				// hold the old slice.
				next := make([]*entry[T], 0, len(f.entries)-1)
				next = append(next, f.entries[:i]...)
				f.entries = append(next, f.entries[i+1:]...)
				return
			}
		}
	}
}

// Publish calls every current subscriber with v. Subscribers removed during
// the broadcast are skipped if they have not been reached yet.
func (f *Fanout[T]) Publish(v T) {
	f.mu.RLock()
	subs := f.entries
	f.mu.RUnlock()

	for _, e := range subs {
		if e.removed.Load() {
			continue
		}
		e.fn(v)
	}
}

package state

import (
	"fmt"
	"reflect"
	"sync"
	"time"
)

// Snapshot represents the latest data available to a view.
type Snapshot[T any] struct {
	Items               []T
	Version             uint64
	Loaded              bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive fetch failures
}

// IsOffline returns true when the API has been unreachable for multiple fetches.
func (s Snapshot[T]) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Collection coordinates concurrent updates to an ordered set of records.
// The zero value is ready to use and compares items with reflect.DeepEqual.
type Collection[T any] struct {
	mu       sync.RWMutex
	equal    func(a, b T) bool
	snapshot Snapshot[T]
	issued   uint64
	landed   uint64
}

// Ticket orders fetches of one Collection. A fetch takes a ticket before it
// starts and hands it back with its result.
type Ticket uint64

// NewCollection returns a Collection that uses equal to detect unchanged
// snapshots. A nil equal falls back to reflect.DeepEqual.
func NewCollection[T any](equal func(a, b T) bool) *Collection[T] {
	return &Collection[T]{equal: equal}
}

// Issue reserves a ticket for a fetch that is about to start.
func (c *Collection[T]) Issue() Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issued++
	return Ticket(c.issued)
}

// Issued returns the most recent ticket handed out, or zero.
func (c *Collection[T]) Issued() Ticket {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Ticket(c.issued)
}

// Replace swaps in a freshly fetched snapshot wholesale. It reports whether
// the content changed; an identical snapshot leaves Version untouched.
func (c *Collection[T]) Replace(items []T) bool {
	changed, _ := c.ReplaceFrom(c.Issue(), items)
	return changed
}

// ReplaceFrom is Replace for a fetch holding ticket t. A result from a fetch
// that started before the last one applied is dropped; applied reports
// whether items were taken.
func (c *Collection[T]) ReplaceFrom(t Ticket, items []T) (changed, applied bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if uint64(t) <= c.landed {
		return false, false
	}
	c.landed = uint64(t)
	return c.replaceLocked(items), true
}

func (c *Collection[T]) replaceLocked(items []T) bool {
	c.snapshot.LastError = nil
	c.snapshot.LastUpdated = time.Now()
	c.snapshot.ConsecutiveFailures = 0

	if c.snapshot.Loaded && c.sameItems(c.snapshot.Items, items) {
		return false
	}
	c.snapshot.Items = cloneItems(items)
	c.snapshot.Loaded = true
	c.snapshot.Version++
	return true
}

// Fail records a fetch error. The previous items are kept.
func (c *Collection[T]) Fail(err error) {
	if err == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failLocked(err)
}

// FailFrom records err for the fetch holding ticket t unless a newer fetch
// already landed.
func (c *Collection[T]) FailFrom(t Ticket, err error) {
	if err == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if uint64(t) <= c.landed {
		return
	}
	c.failLocked(err)
}

func (c *Collection[T]) failLocked(err error) {
	c.snapshot.LastError = err
	c.snapshot.LastUpdated = time.Now()
	c.snapshot.ConsecutiveFailures++
}

// Mutate applies fn to the current items and stores the result. Used for
// optimistic deltas; the version always advances.
func (c *Collection[T]) Mutate(fn func(items []T) []T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snapshot.Items = fn(cloneItems(c.snapshot.Items))
	c.snapshot.Version++
}

// Find returns a copy of the first item matching pred.
func (c *Collection[T]) Find(pred func(T) bool) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, item := range c.snapshot.Items {
		if pred(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Snapshot returns a copy of the current snapshot.
func (c *Collection[T]) Snapshot() Snapshot[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := c.snapshot
	snap.Items = cloneItems(c.snapshot.Items)
	if c.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", c.snapshot.LastError)
	}
	return snap
}

// Version returns the current content version.
func (c *Collection[T]) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot.Version
}

func (c *Collection[T]) sameItems(a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	equal := c.equal
	if equal == nil {
		equal = func(x, y T) bool { return reflect.DeepEqual(x, y) }
	}
	for i := range a {
		if !equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func cloneItems[T any](items []T) []T {
	if len(items) == 0 {
		return nil
	}
	dup := make([]T, len(items))
	copy(dup, items)
	return dup
}

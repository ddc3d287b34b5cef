// Package optimistic applies local state changes ahead of the remote call
// that makes them durable, and reconciles by refetching when that call fails.
//
// Each mutable entity/field pair moves through a small phase machine:
//
//	Clean ──Begin──▶ Pending ──ok──▶ Clean
//	                    │
//	                    └─fail─▶ Reconciling ──refetch ok──▶ Clean
//	                                  │
//	                                  └─refetch fail─▶ Dirty ──next Begin reconciles first
//
// A second Begin on a key that is Pending or Reconciling is rejected with
// ErrBusy; nothing is queued.
package optimistic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrBusy is returned when a mutation on the same key is still unresolved.
	ErrBusy = errors.New("mutation already in flight")
	// ErrTimeout is reported when the remote call outlives the controller timeout.
	ErrTimeout = errors.New("remote call timed out")
	// ErrCommitted is returned when an Inflight is committed twice.
	ErrCommitted = errors.New("mutation already committed")
)

const defaultTimeout = 15 * time.Second

// Key identifies one mutable field of one entity.
type Key struct {
	Entity string
	Field  string
}

func (k Key) String() string {
	return k.Entity + "." + k.Field
}

// Phase is the reconciliation state of a key.
type Phase int

const (
	Clean Phase = iota
	Pending
	Reconciling
	Dirty
)

func (p Phase) String() string {
	switch p {
	case Pending:
		return "pending"
	case Reconciling:
		return "reconciling"
	case Dirty:
		return "dirty"
	default:
		return "clean"
	}
}

// Outcome reports how a committed mutation resolved.
type Outcome int

const (
	// Confirmed means the remote call succeeded and the optimistic state stands.
	Confirmed Outcome = iota + 1
	// Reconciled means the remote call failed and local state was refetched.
	Reconciled
	// Unreconciled means both the remote call and the refetch failed; the key
	// is Dirty until a later Begin reconciles it.
	Unreconciled
)

func (o Outcome) String() string {
	switch o {
	case Confirmed:
		return "confirmed"
	case Reconciled:
		return "reconciled"
	case Unreconciled:
		return "unreconciled"
	default:
		return "unknown"
	}
}

// Mutation bundles the three halves of an optimistic change.
type Mutation struct {
	// Apply edits local state. It runs synchronously inside Begin and must not
	// block or call back into the Controller.
	Apply func()
	// Remote performs the API call that makes the change durable.
	Remote func(ctx context.Context) error
	// Reconcile replaces local state with a fresh authoritative fetch.
	Reconcile func(ctx context.Context) error
}

func (m Mutation) validate() error {
	if m.Apply == nil || m.Remote == nil || m.Reconcile == nil {
		return fmt.Errorf("mutation requires apply, remote and reconcile functions")
	}
	return nil
}

type slot struct {
	phase     Phase
	reconcile func(ctx context.Context) error
}

// Controller serializes optimistic mutations per key. The zero value is not
// usable; construct with New.
type Controller struct {
	mu      sync.Mutex
	slots   map[Key]*slot
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithTimeout bounds each remote call and each reconciliation. A call that
// exceeds it counts as failed.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger used for failure reports.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Controller.
func New(opts ...Option) *Controller {
	c := &Controller{
		slots:   make(map[Key]*slot),
		timeout: defaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Phase returns the current phase of key.
func (c *Controller) Phase(key Key) Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.slots[key]; ok {
		return s.phase
	}
	return Clean
}

// Inflight is an applied but not yet committed mutation. Callers must Commit it.
type Inflight struct {
	ctrl      *Controller
	key       Key
	mutation  Mutation
	committed atomic.Bool
}

// Key returns the key the mutation holds.
func (p *Inflight) Key() Key { return p.key }

// Begin applies m locally and reserves key. It returns ErrBusy when key has an
// unresolved mutation. A Dirty key is reconciled first; if that refetch fails
// the mutation is not applied.
func (c *Controller) Begin(ctx context.Context, key Key, m Mutation) (*Inflight, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	s, ok := c.slots[key]
	if !ok {
		s = &slot{}
		c.slots[key] = s
	}
	switch s.phase {
	case Pending, Reconciling:
		c.mu.Unlock()
		return nil, ErrBusy
	case Dirty:
		s.phase = Reconciling
		reconcile := s.reconcile
		c.mu.Unlock()

		if err := c.runBounded(ctx, reconcile); err != nil {
			c.mu.Lock()
			s.phase = Dirty
			c.mu.Unlock()
			c.logger.Warn("reconcile before mutation failed", "key", key.String(), "error", err)
			return nil, fmt.Errorf("reconcile %s: %w", key, err)
		}
		c.mu.Lock()
	}
	s.phase = Pending
	s.reconcile = m.Reconcile
	m.Apply()
	c.mu.Unlock()

	return &Inflight{ctrl: c, key: key, mutation: m}, nil
}

// Commit runs the remote call. On failure it reconciles and returns the
// remote error alongside the outcome.
func (p *Inflight) Commit(ctx context.Context) (Outcome, error) {
	if !p.committed.CompareAndSwap(false, true) {
		return 0, ErrCommitted
	}
	c := p.ctrl

	remoteErr := c.runBounded(ctx, p.mutation.Remote)
	if remoteErr == nil {
		c.settle(p.key)
		return Confirmed, nil
	}

	c.setPhase(p.key, Reconciling)
	c.logger.Warn("optimistic mutation failed, reconciling", "key", p.key.String(), "error", remoteErr)

	if err := c.runBounded(ctx, p.mutation.Reconcile); err != nil {
		c.setPhase(p.key, Dirty)
		c.logger.Error("reconcile failed", "key", p.key.String(), "error", err)
		return Unreconciled, errors.Join(remoteErr, fmt.Errorf("reconcile: %w", err))
	}
	c.settle(p.key)
	return Reconciled, remoteErr
}

// Reconcile settles a Dirty key by running its stored refetch. It is a no-op
// for a Clean key and returns ErrBusy while a mutation is in flight. Callers
// that must not block on the refetch inside Begin run this first.
func (c *Controller) Reconcile(ctx context.Context, key Key) error {
	c.mu.Lock()
	s, ok := c.slots[key]
	if !ok {
		c.mu.Unlock()
		return nil
	}
	switch s.phase {
	case Pending, Reconciling:
		c.mu.Unlock()
		return ErrBusy
	case Clean:
		c.mu.Unlock()
		return nil
	}
	s.phase = Reconciling
	reconcile := s.reconcile
	c.mu.Unlock()

	if err := c.runBounded(ctx, reconcile); err != nil {
		c.setPhase(key, Dirty)
		c.logger.Warn("reconcile failed", "key", key.String(), "error", err)
		return fmt.Errorf("reconcile %s: %w", key, err)
	}
	c.settle(key)
	return nil
}

// Apply is Begin followed by Commit.
func (c *Controller) Apply(ctx context.Context, key Key, m Mutation) (Outcome, error) {
	inflight, err := c.Begin(ctx, key, m)
	if err != nil {
		return 0, err
	}
	return inflight.Commit(ctx)
}

func (c *Controller) settle(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.slots, key)
}

func (c *Controller) setPhase(key Key, phase Phase) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.slots[key]; ok {
		s.phase = phase
	}
}

// runBounded runs fn under the controller timeout. A call that ignores its
// context is abandoned once the deadline passes; its late result is dropped.
func (c *Controller) runBounded(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- fn(ctx) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w after %s", ErrTimeout, c.timeout)
		}
		return ctx.Err()
	}
}

// Package poll keeps a local snapshot in step with a remote collection by
// refetching it on a fixed interval.
package poll

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	// DefaultInterval applies when Start is given a non-positive interval.
	DefaultInterval = 30 * time.Second
	maxBackoff      = 30 * time.Second
)

// Fetcher returns the current authoritative snapshot.
type Fetcher[T any] func(ctx context.Context) (T, error)

// Handle controls a running poller.
type Handle struct {
	mu      sync.Mutex
	stopped bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// Option configures a poller.
type Option func(*options)

type options struct {
	name    string
	logger  *slog.Logger
	onError func(error)
}

// WithName labels log lines from this poller.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithLogger sets the logger for fetch failures.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithErrorHandler is called with every failed fetch, from the poller goroutine.
func WithErrorHandler(fn func(error)) Option {
	return func(o *options) { o.onError = fn }
}

// Start launches a poller that calls fetch every interval and hands each
// successful result to apply. The first fetch happens one interval after
// Start; initial population is the caller's job. Fetches never overlap: the
// wait for the next one starts after the previous one returns. Failed fetches
// are logged and do not stop the loop; consecutive failures stretch the wait.
func Start[T any](ctx context.Context, fetch Fetcher[T], interval time.Duration, apply func(T), opts ...Option) *Handle {
	if interval <= 0 {
		interval = DefaultInterval
	}
	o := options{name: "poll", logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(h.done)
		defer cancel()

		failures := 0
		timer := time.NewTimer(interval)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				h.markStopped()
				return
			case <-timer.C:
			}

			result, err := fetch(ctx)
			if err != nil {
				if ctx.Err() != nil {
					h.markStopped()
					return
				}
				failures++
				o.logger.Warn("poll failed", "poller", o.name, "failures", failures, "error", err)
				if o.onError != nil && !h.deliver(func() { o.onError(err) }) {
					return
				}
			} else {
				failures = 0
				if !h.deliver(func() { apply(result) }) {
					return
				}
			}
			timer.Reset(calculateBackoff(failures, interval))
		}
	}()

	return h
}

// Stop cancels the poller. Once Stop returns, apply will not be called again;
// a fetch still in flight is discarded when it completes. Stop is idempotent
// and does not wait for the in-flight fetch.
func (h *Handle) Stop() {
	if h == nil {
		return
	}
	h.mu.Lock()
	h.stopped = true
	h.mu.Unlock()
	h.cancel()
}

// Done is closed once the poller goroutine has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Stopped reports whether Stop was called or the parent context ended.
func (h *Handle) Stopped() bool {
	return h.isStopped()
}

// deliver runs fn unless the handle is stopped. The handle lock is held
// during fn so Stop cannot return while an apply is running.
func (h *Handle) deliver(fn func()) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return false
	}
	fn()
	return true
}

func (h *Handle) markStopped() {
	h.mu.Lock()
	h.stopped = true
	h.mu.Unlock()
}

func (h *Handle) isStopped() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stopped
}

// calculateBackoff doubles the wait per consecutive failure, capped at
// maxBackoff (or the base interval when that is already longer).
func calculateBackoff(failures int, interval time.Duration) time.Duration {
	if failures <= 0 {
		return interval
	}
	ceiling := maxBackoff
	if interval > ceiling {
		ceiling = interval
	}
	wait := interval
	for i := 0; i < failures; i++ {
		wait *= 2
		if wait >= ceiling {
			return ceiling
		}
	}
	return wait
}

package poll

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 2 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 2 * time.Second},
		{"negative failures", -1, 2 * time.Second},
		{"one failure", 1, 4 * time.Second},
		{"two failures", 2, 8 * time.Second},
		{"three failures", 3, 16 * time.Second},
		{"four failures capped", 4, 30 * time.Second}, // Would be 32s, capped to 30s
		{"many failures capped", 10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_LongIntervalIsCeiling(t *testing.T) {
	if got := calculateBackoff(3, time.Minute); got != time.Minute {
		t.Fatalf("calculateBackoff(3, 1m) = %v, want 1m", got)
	}
}

func TestStart_AppliesEachSuccessfulFetch(t *testing.T) {
	var calls atomic.Int32
	results := make(chan int, 8)

	h := Start(context.Background(), func(ctx context.Context) (int, error) {
		return int(calls.Add(1)), nil
	}, 5*time.Millisecond, func(v int) { results <- v })
	t.Cleanup(h.Stop)

	for want := 1; want <= 3; want++ {
		select {
		case got := <-results:
			assert.Equal(t, want, got)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for fetch %d", want)
		}
	}
}

func TestStart_DoesNotFetchImmediately(t *testing.T) {
	var calls atomic.Int32
	h := Start(context.Background(), func(ctx context.Context) (int, error) {
		calls.Add(1)
		return 0, nil
	}, time.Hour, func(int) {})
	defer h.Stop()

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, calls.Load(), "initial population is the caller's job")
}

func TestStart_SlowFetchNeverOverlaps(t *testing.T) {
	var inFlight, maxInFlight, calls atomic.Int32
	release := make(chan struct{})
	var once sync.Once

	h := Start(context.Background(), func(ctx context.Context) ([]string, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			cur := maxInFlight.Load()
			if n <= cur || maxInFlight.CompareAndSwap(cur, n) {
				break
			}
		}
		if calls.Add(1) == 1 {
			<-release // slow network on the first fetch
		}
		return []string{"C1", "C2"}, nil
	}, 2*time.Millisecond, func([]string) {})
	t.Cleanup(h.Stop)

	// Many intervals elapse while the first fetch is outstanding.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "no second fetch while the first is in flight")

	once.Do(func() { close(release) })
	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)
	assert.Equal(t, int32(1), maxInFlight.Load())
}

func TestStop_DiscardsLateFetch(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var applied atomic.Int32

	h := Start(context.Background(), func(ctx context.Context) (string, error) {
		close(started)
		<-release // ignores ctx: completes after Stop
		return "late", nil
	}, time.Millisecond, func(string) { applied.Add(1) })

	<-started
	h.Stop()
	close(release)

	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("poller goroutine did not exit")
	}
	assert.Zero(t, applied.Load(), "no apply after Stop")
	assert.True(t, h.Stopped())
}

func TestStop_CancelsFetchContext(t *testing.T) {
	started := make(chan struct{})
	h := Start(context.Background(), func(ctx context.Context) (int, error) {
		close(started)
		<-ctx.Done()
		return 0, ctx.Err()
	}, time.Millisecond, func(int) { t.Error("apply after cancellation") })

	<-started
	h.Stop()
	h.Stop() // idempotent

	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("poller goroutine did not exit")
	}
}

func TestStart_ParentContextStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := Start(ctx, func(ctx context.Context) (int, error) { return 1, nil }, time.Hour, func(int) {})

	cancel()
	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("poller did not stop with its parent context")
	}
	assert.True(t, h.Stopped())
}

func TestStart_FailuresKeepPolling(t *testing.T) {
	var calls atomic.Int32
	var errs atomic.Int32
	applied := make(chan string, 4)

	h := Start(context.Background(), func(ctx context.Context) (string, error) {
		if calls.Add(1) == 1 {
			return "", errors.New("boom")
		}
		return "ok", nil
	}, time.Millisecond, func(v string) { applied <- v }, WithName("test"), WithErrorHandler(func(error) { errs.Add(1) }))
	t.Cleanup(h.Stop)

	select {
	case v := <-applied:
		assert.Equal(t, "ok", v)
	case <-time.After(time.Second):
		t.Fatal("poller stopped after a failed fetch")
	}
	assert.Equal(t, int32(1), errs.Load())
}

func TestHandle_NilStop(t *testing.T) {
	var h *Handle
	h.Stop()
}

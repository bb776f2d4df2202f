package workpool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunSequentialOrder(t *testing.T) {
	var order []int
	err := Run(context.Background(), 5, 1, func(ctx context.Context, i int) error {
		order = append(order, i)
		return nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("order = %v, want ascending", order)
		}
	}
}

func TestRunBoundsConcurrency(t *testing.T) {
	const limit = 3
	var (
		inFlight, peak int32
		results        = make([]int, 20)
	)

	err := Run(context.Background(), len(results), limit, func(ctx context.Context, i int) error {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		results[i] = i * i
		atomic.AddInt32(&inFlight, -1)
		return nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if peak > limit {
		t.Errorf("peak concurrency = %d, want <= %d", peak, limit)
	}
	for i, v := range results {
		if v != i*i {
			t.Errorf("results[%d] = %d, want %d", i, v, i*i)
		}
	}
}

func TestRunStopsOnFatalError(t *testing.T) {
	boom := errors.New("disk full")

	for _, limit := range []int{1, 4} {
		var (
			mu      sync.Mutex
			started []int
		)
		err := Run(context.Background(), 50, limit, func(ctx context.Context, i int) error {
			mu.Lock()
			started = append(started, i)
			mu.Unlock()
			if i == 2 {
				return boom
			}
			select {
			case <-ctx.Done():
			case <-time.After(time.Millisecond):
			}
			return nil
		})
		if !errors.Is(err, boom) {
			t.Fatalf("limit %d: Run() error = %v, want %v", limit, err, boom)
		}
		if len(started) == 50 {
			t.Errorf("limit %d: every unit started after a fatal error", limit)
		}
	}
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Run(ctx, 3, 1, func(ctx context.Context, i int) error {
		calls++
		return nil
	})
	if !errors.Is(err, context.Canceled) || calls != 0 {
		t.Errorf("Run() = %v after %d calls, want context.Canceled and no calls", err, calls)
	}
}

func TestRunCancelWhileWaitingForToken(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var started int32
	err := Run(ctx, 10, 2, func(ctx context.Context, i int) error {
		if atomic.AddInt32(&started, 1) == 2 {
			cancel()
		}
		<-ctx.Done()
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if got := atomic.LoadInt32(&started); got != 2 {
		t.Errorf("%d units started, want only the 2 holding tokens", got)
	}
}

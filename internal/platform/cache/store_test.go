package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "value", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "leaderboard:global", loader)
			if err != nil {
				errCh <- err
				return
			}
			if got, _ := v.(string); got != "value" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_UsesCachedValueAfterFirstLoad(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return "cached", nil
	}

	if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
		t.Fatalf("first GetOrLoad error: %v", err)
	}
	if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
		t.Fatalf("second GetOrLoad error: %v", err)
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_ReloadsAfterInvalidate(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return calls.Load(), nil
	}

	ctx := context.Background()
	if _, err := store.GetOrLoad(ctx, "leaderboard:tournament:5", loader); err != nil {
		t.Fatalf("first load: %v", err)
	}

	store.Invalidate(ctx, "leaderboard:tournament:5")

	v, err := store.GetOrLoad(ctx, "leaderboard:tournament:5", loader)
	if err != nil {
		t.Fatalf("reload after invalidate: %v", err)
	}
	if got, _ := v.(int32); got != 2 {
		t.Fatalf("expected fresh load after invalidate, got value=%v", v)
	}
}

func TestStore_TTLExpiry(t *testing.T) {
	t.Parallel()

	store := NewStore(15 * time.Millisecond)
	ctx := context.Background()

	store.Set(ctx, "k", "v")
	if _, ok := store.Get(ctx, "k"); !ok {
		t.Fatalf("fresh entry must be readable")
	}

	time.Sleep(30 * time.Millisecond)
	if _, ok := store.Get(ctx, "k"); ok {
		t.Fatalf("expired entry must be dropped")
	}
}

func TestStore_DeletePrefix(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()

	store.Set(ctx, "prediction:user:7:match:1", 1)
	store.Set(ctx, "prediction:user:7:match:2", 2)
	store.Set(ctx, "leaderboard:global", 3)

	store.DeletePrefix(ctx, "prediction:user:7:")

	if _, ok := store.Get(ctx, "prediction:user:7:match:1"); ok {
		t.Fatalf("prefixed entry must be dropped")
	}
	if _, ok := store.Get(ctx, "leaderboard:global"); !ok {
		t.Fatalf("unrelated entry must survive")
	}
}

func TestStore_GetOrLoad_LoaderErrorNotCached(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("backend down")
		}
		return "ok", nil
	}

	ctx := context.Background()
	if _, err := store.GetOrLoad(ctx, "k", loader); err == nil {
		t.Fatalf("expected first load to fail")
	}
	v, err := store.GetOrLoad(ctx, "k", loader)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if got, _ := v.(string); got != "ok" {
		t.Fatalf("unexpected value: got=%v", v)
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")

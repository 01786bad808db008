package shutdown

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestHandler_TriggerRunsHooksInReverseOrder(t *testing.T) {
	h := NewHandler(5 * time.Second)

	var mu sync.Mutex
	var order []int
	for i := 1; i <= 3; i++ {
		i := i
		h.OnShutdown(func(ctx context.Context) error {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return nil
		})
	}

	errCh := make(chan error, 1)
	go func() { errCh <- h.Wait() }()

	// Let Wait install its signal handler before triggering.
	time.Sleep(20 * time.Millisecond)
	h.Trigger()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Wait: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after Trigger")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 3 || order[0] != 3 || order[1] != 2 || order[2] != 1 {
		t.Fatalf("hook order = %v, want [3 2 1]", order)
	}
}

func TestHandler_WaitReturnsLastHookError(t *testing.T) {
	h := NewHandler(time.Second)
	wantErr := errors.New("close failed")

	h.OnShutdown(func(ctx context.Context) error { return wantErr })
	h.OnShutdown(func(ctx context.Context) error { return nil })

	errCh := make(chan error, 1)
	go func() { errCh <- h.Wait() }()
	time.Sleep(20 * time.Millisecond)
	h.Trigger()

	if err := <-errCh; !errors.Is(err, wantErr) {
		t.Fatalf("Wait = %v, want %v", err, wantErr)
	}
}

func TestHandler_TriggerIsIdempotent(t *testing.T) {
	h := NewHandler(time.Second)
	errCh := make(chan error, 1)
	go func() { errCh <- h.Wait() }()
	time.Sleep(20 * time.Millisecond)

	h.Trigger()
	h.Trigger()

	select {
	case <-errCh:
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return")
	}
}

func TestHandler_DoneClosesAfterHooks(t *testing.T) {
	h := NewHandler(time.Second)

	select {
	case <-h.Done():
		t.Fatal("Done should not be closed before shutdown")
	default:
	}

	go h.Wait()
	time.Sleep(20 * time.Millisecond)
	h.Trigger()

	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Done never closed")
	}
}

package application

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer(t *testing.T) {
	t.Parallel()

	t.Run("collapses a burst into a single call", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		fired := make(chan struct{}, 1)
		d := NewDebouncer(30*time.Millisecond, func() {
			calls.Add(1)
			select {
			case fired <- struct{}{}:
			default:
			}
		})

		for i := 0; i < 5; i++ {
			d.Trigger()
			time.Sleep(5 * time.Millisecond)
		}

		select {
		case <-fired:
		case <-time.After(time.Second):
			t.Fatal("debounced call never fired")
		}
		// A settling window catches any stray duplicate invocations.
		time.Sleep(60 * time.Millisecond)
		if got := calls.Load(); got != 1 {
			t.Fatalf("expected one call, got %d", got)
		}
	})

	t.Run("stop cancels the pending call", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		d := NewDebouncer(30*time.Millisecond, func() { calls.Add(1) })

		d.Trigger()
		d.Stop()

		time.Sleep(80 * time.Millisecond)
		if got := calls.Load(); got != 0 {
			t.Fatalf("expected no call after stop, got %d", got)
		}
	})

	t.Run("each quiet period fires once", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		d := NewDebouncer(20*time.Millisecond, func() { calls.Add(1) })

		d.Trigger()
		time.Sleep(60 * time.Millisecond)
		d.Trigger()
		time.Sleep(60 * time.Millisecond)

		if got := calls.Load(); got != 2 {
			t.Fatalf("expected two calls, got %d", got)
		}
	})

	t.Run("nil function is a no-op", func(t *testing.T) {
		t.Parallel()

		d := NewDebouncer(time.Millisecond, nil)
		d.Trigger()
		d.Stop()
	})
}

package testfixtures

import (
	"testing"
	"time"
)

func TestClock(t *testing.T) {
	t.Parallel()

	t.Run("defaults to the reference time", func(t *testing.T) {
		t.Parallel()

		clock := NewClock(time.Time{})
		if !clock.Now().Equal(ReferenceTime()) {
			t.Fatalf("expected reference time, got %s", clock.Now())
		}
	})

	t.Run("advance moves and returns the new instant", func(t *testing.T) {
		t.Parallel()

		start := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
		clock := NewClock(start)

		updated := clock.Advance(90 * time.Minute)
		if want := start.Add(90 * time.Minute); !updated.Equal(want) {
			t.Fatalf("expected %s, got %s", want, updated)
		}
		if !clock.Now().Equal(updated) {
			t.Fatalf("expected Now to track the advance, got %s", clock.Now())
		}
	})

	t.Run("set replaces the instant", func(t *testing.T) {
		t.Parallel()

		clock := NewClock(time.Time{})
		target := time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)
		clock.Set(target)
		if !clock.Now().Equal(target) {
			t.Fatalf("expected %s, got %s", target, clock.Now())
		}
	})

	t.Run("nil clock falls back to the wall clock", func(t *testing.T) {
		t.Parallel()

		var clock *Clock
		nowFn := clock.NowFunc()
		if nowFn == nil {
			t.Fatal("expected a usable function")
		}
		if nowFn().IsZero() {
			t.Fatal("expected a real instant")
		}
	})
}

func TestIDGenerator(t *testing.T) {
	t.Parallel()

	gen := NewIDGenerator("update")
	if got := gen.Next(); got != "update-1" {
		t.Fatalf("expected update-1, got %s", got)
	}
	if got := gen.Next(); got != "update-2" {
		t.Fatalf("expected update-2, got %s", got)
	}

	next := gen.NextFunc()
	if got := next(); got != "update-3" {
		t.Fatalf("expected update-3, got %s", got)
	}

	defaulted := NewIDGenerator("")
	if got := defaulted.Next(); got != "id-1" {
		t.Fatalf("expected id-1, got %s", got)
	}
}

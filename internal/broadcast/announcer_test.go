package broadcast

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/example/pricing-console/internal/application"
	"github.com/example/pricing-console/internal/persistence"
)

type mirrorStoreStub struct {
	mu      sync.Mutex
	mirrors map[application.RoomType]application.RoomMirror

	deleteErr error
	saveErr   error
	events    []string
	saved     chan struct{}
}

func newMirrorStoreStub() *mirrorStoreStub {
	return &mirrorStoreStub{
		mirrors: make(map[application.RoomType]application.RoomMirror),
		saved:   make(chan struct{}, 8),
	}
}

func (s *mirrorStoreStub) SaveRoomMirror(_ context.Context, mirror application.RoomMirror) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.mirrors[mirror.RoomType] = mirror
	s.events = append(s.events, "save")
	select {
	case s.saved <- struct{}{}:
	default:
	}
	return nil
}

func (s *mirrorStoreStub) DeleteRoomMirror(_ context.Context, room application.RoomType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.mirrors, room)
	s.events = append(s.events, "delete")
	return nil
}

func (s *mirrorStoreStub) LoadRoomMirror(_ context.Context, room application.RoomType) (application.RoomMirror, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mirror, ok := s.mirrors[room]
	if !ok {
		return application.RoomMirror{}, persistence.ErrNotFound
	}
	return mirror, nil
}

func (s *mirrorStoreStub) eventLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...)
}

func TestStorageAnnouncer(t *testing.T) {
	t.Parallel()

	t.Run("deletes the mirror and rewrites it after the delay", func(t *testing.T) {
		t.Parallel()

		store := newMirrorStoreStub()
		store.mirrors[application.RoomTraining] = application.RoomMirror{RoomType: application.RoomTraining, Timestamp: 1}

		announcer := NewStorageAnnouncer(store, 10*time.Millisecond, nil)
		updatedAt := time.Date(2025, time.March, 10, 9, 30, 0, 0, time.UTC)
		announcer.Publish(context.Background(), application.PriceUpdate{
			RoomType:  application.RoomTraining,
			Prices:    application.RoomPrices{Morning: application.TierPrices{Hourly: 100}},
			Timestamp: updatedAt,
			UpdatedBy: "admin",
		})

		// The delete happens synchronously; the key is gone until the rewrite.
		if _, err := store.LoadRoomMirror(context.Background(), application.RoomTraining); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected mirror gone right after publish, got %v", err)
		}

		select {
		case <-store.saved:
		case <-time.After(time.Second):
			t.Fatal("mirror never rewritten")
		}

		mirror, err := store.LoadRoomMirror(context.Background(), application.RoomTraining)
		if err != nil {
			t.Fatalf("LoadRoomMirror failed: %v", err)
		}
		if mirror.Timestamp != updatedAt.UnixMilli() {
			t.Fatalf("expected rewritten timestamp %d, got %d", updatedAt.UnixMilli(), mirror.Timestamp)
		}
		if mirror.UpdatedBy != "admin" {
			t.Fatalf("expected attribution preserved, got %s", mirror.UpdatedBy)
		}

		if events := store.eventLog(); len(events) != 2 || events[0] != "delete" || events[1] != "save" {
			t.Fatalf("expected delete-then-save, got %v", events)
		}
	})

	t.Run("skips the rewrite when the delete fails", func(t *testing.T) {
		t.Parallel()

		store := newMirrorStoreStub()
		store.deleteErr = errors.New("storage offline")

		announcer := NewStorageAnnouncer(store, 5*time.Millisecond, nil)
		announcer.Publish(context.Background(), application.PriceUpdate{RoomType: application.RoomTraining})

		select {
		case <-store.saved:
			t.Fatal("expected no rewrite after a failed delete")
		case <-time.After(50 * time.Millisecond):
		}
	})

	t.Run("nil mirror writer is a no-op", func(t *testing.T) {
		t.Parallel()

		announcer := NewStorageAnnouncer(nil, time.Millisecond, nil)
		announcer.Publish(context.Background(), application.PriceUpdate{RoomType: application.RoomTraining})
	})
}

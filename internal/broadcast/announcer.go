package broadcast

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/pricing-console/internal/application"
)

// MirrorWriter is the slice of the price store the announcer needs: it only
// ever touches the per-room mirror keys.
type MirrorWriter interface {
	SaveRoomMirror(ctx context.Context, mirror application.RoomMirror) error
	DeleteRoomMirror(ctx context.Context, room application.RoomType) error
}

// StorageAnnouncer nudges other open views by deleting and shortly afterwards
// rewriting the per-room mirror key, so observers polling the shared store
// cannot miss that something changed even when the new value equals the old
// serialized bytes. Fire-and-forget: failures are logged, never retried.
type StorageAnnouncer struct {
	mirrors      MirrorWriter
	rewriteDelay time.Duration
	logger       *slog.Logger
}

// NewStorageAnnouncer constructs an announcer with the given rewrite delay.
func NewStorageAnnouncer(mirrors MirrorWriter, rewriteDelay time.Duration, logger *slog.Logger) *StorageAnnouncer {
	if rewriteDelay <= 0 {
		rewriteDelay = 100 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StorageAnnouncer{
		mirrors:      mirrors,
		rewriteDelay: rewriteDelay,
		logger:       logger,
	}
}

// Publish implements application.Publisher.
func (a *StorageAnnouncer) Publish(ctx context.Context, update application.PriceUpdate) {
	if a == nil || a.mirrors == nil {
		return
	}

	if err := a.mirrors.DeleteRoomMirror(ctx, update.RoomType); err != nil {
		a.logger.ErrorContext(ctx, "failed to clear room mirror for announcement",
			"room", update.RoomType, "error", err)
		return
	}

	mirror := application.RoomMirror{
		RoomType:    update.RoomType,
		Prices:      update.Prices,
		LastUpdated: update.Timestamp,
		Timestamp:   update.Timestamp.UnixMilli(),
		UpdatedBy:   update.UpdatedBy,
	}

	// The rewrite runs off the caller's goroutine; by then the caller's
	// context may be gone, so the write uses a fresh background context.
	time.AfterFunc(a.rewriteDelay, func() {
		if err := a.mirrors.SaveRoomMirror(context.Background(), mirror); err != nil {
			a.logger.Error("failed to rewrite room mirror after announcement",
				"room", update.RoomType, "error", err)
		}
	})
}

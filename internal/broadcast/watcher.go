package broadcast

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/example/pricing-console/internal/application"
	"github.com/example/pricing-console/internal/persistence"
)

// MirrorReader is the slice of the price store the watcher needs.
type MirrorReader interface {
	LoadRoomMirror(ctx context.Context, room application.RoomType) (application.RoomMirror, error)
}

// Watcher is the read side of cross-view broadcasting: it polls the per-room
// mirror timestamps and republishes a local hint whenever one moves. Views
// receiving the hint re-read the canonical record themselves.
type Watcher struct {
	mirrors   MirrorReader
	publisher application.Publisher
	interval  time.Duration
	logger    *slog.Logger

	lastSeen map[application.RoomType]int64
}

// NewWatcher constructs a watcher polling at the given interval.
func NewWatcher(mirrors MirrorReader, publisher application.Publisher, interval time.Duration, logger *slog.Logger) *Watcher {
	if interval <= 0 {
		interval = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		mirrors:   mirrors,
		publisher: publisher,
		interval:  interval,
		logger:    logger,
		lastSeen:  make(map[application.RoomType]int64),
	}
}

// Run polls until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Prime the baseline so pre-existing mirrors are not replayed as news.
	w.Poll(ctx, false)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Poll(ctx, true)
		}
	}
}

// Poll checks every room mirror once, publishing hints for moved timestamps
// when publish is set. It is exposed separately so tests and single-shot
// callers can drive the watcher without a ticker.
func (w *Watcher) Poll(ctx context.Context, publish bool) {
	if w == nil || w.mirrors == nil {
		return
	}

	for _, room := range application.RoomTypes() {
		mirror, err := w.mirrors.LoadRoomMirror(ctx, room)
		if err != nil {
			// Absent mirrors are expected mid-announcement: the writer
			// deletes the key before rewriting it.
			if !errors.Is(err, persistence.ErrNotFound) {
				w.logger.DebugContext(ctx, "failed to poll room mirror", "room", room, "error", err)
			}
			continue
		}

		previous, seen := w.lastSeen[room]
		w.lastSeen[room] = mirror.Timestamp
		if !publish || !seen || mirror.Timestamp <= previous {
			continue
		}

		if w.publisher != nil {
			w.publisher.Publish(ctx, application.PriceUpdate{
				RoomType:  room,
				Prices:    mirror.Prices,
				Timestamp: mirror.LastUpdated,
				Source:    "storage",
				UpdatedBy: mirror.UpdatedBy,
			})
		}
	}
}

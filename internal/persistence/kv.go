package persistence

import (
	"context"
	"fmt"

	"github.com/example/pricing-console/internal/application"
)

// KV is the string-keyed value store backing all persisted records. It
// mirrors the flat key/value surface the console was designed around.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Fixed storage keys. The per-room mirror keys follow the external naming
// convention public pages read from.
const (
	KeyCanonicalPrices = "roomPrices"
	KeyPricesBackup    = "roomPricesBackup"
	KeySession         = "adminSession"
)

// RoomMirrorKey returns the abbreviated per-room record key, e.g.
// "trainingRoomPrices".
func RoomMirrorKey(room application.RoomType) string {
	return fmt.Sprintf("%sRoomPrices", room)
}

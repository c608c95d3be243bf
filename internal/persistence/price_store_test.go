package persistence_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/example/pricing-console/internal/application"
	"github.com/example/pricing-console/internal/persistence"
	"github.com/example/pricing-console/internal/testfixtures"
)

func TestPriceStore_Canonical(t *testing.T) {
	t.Parallel()

	t.Run("round-trips the canonical record", func(t *testing.T) {
		t.Parallel()

		kv := testfixtures.NewMemoryKV()
		store := persistence.NewPriceStore(kv)

		record := application.PriceRecord{
			Prices:      testfixtures.UniformPriceTable(500),
			Version:     "2.1",
			LastUpdated: testfixtures.ReferenceTime(),
			Timestamp:   testfixtures.ReferenceTime().UnixMilli(),
			UpdatedBy:   "admin",
		}
		if err := store.SaveCanonical(context.Background(), record); err != nil {
			t.Fatalf("SaveCanonical failed: %v", err)
		}

		loaded, err := store.LoadCanonical(context.Background())
		if err != nil {
			t.Fatalf("LoadCanonical failed: %v", err)
		}
		if loaded.Version != record.Version || loaded.UpdatedBy != record.UpdatedBy {
			t.Fatalf("metadata mismatch: %#v", loaded)
		}
		if !loaded.LastUpdated.Equal(record.LastUpdated) {
			t.Fatalf("expected last updated %s, got %s", record.LastUpdated, loaded.LastUpdated)
		}
		if loaded.Timestamp != record.Timestamp {
			t.Fatalf("expected timestamp %d, got %d", record.Timestamp, loaded.Timestamp)
		}
		for _, room := range application.RoomTypes() {
			if loaded.Prices[room] != record.Prices[room] {
				t.Fatalf("room %s mismatch: %#v", room, loaded.Prices[room])
			}
		}
	})

	t.Run("stores under the fixed key", func(t *testing.T) {
		t.Parallel()

		kv := testfixtures.NewMemoryKV()
		store := persistence.NewPriceStore(kv)

		record := application.PriceRecord{Prices: testfixtures.UniformPriceTable(1), Version: "2.1"}
		if err := store.SaveCanonical(context.Background(), record); err != nil {
			t.Fatalf("SaveCanonical failed: %v", err)
		}
		if _, ok := kv.Raw(persistence.KeyCanonicalPrices); !ok {
			t.Fatalf("expected record under %s", persistence.KeyCanonicalPrices)
		}
	})

	t.Run("absent record yields ErrNotFound", func(t *testing.T) {
		t.Parallel()

		store := persistence.NewPriceStore(testfixtures.NewMemoryKV())
		if _, err := store.LoadCanonical(context.Background()); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("corrupt record yields a decode error", func(t *testing.T) {
		t.Parallel()

		kv := testfixtures.NewMemoryKV()
		kv.Put(persistence.KeyCanonicalPrices, []byte("{corrupt"))
		store := persistence.NewPriceStore(kv)

		_, err := store.LoadCanonical(context.Background())
		if err == nil || !strings.Contains(err.Error(), "decode canonical price record") {
			t.Fatalf("expected decode error, got %v", err)
		}
	})

	t.Run("write failure maps to ErrWriteFailed", func(t *testing.T) {
		t.Parallel()

		kv := testfixtures.NewMemoryKV()
		kv.SetErr = errors.New("storage quota exceeded")
		store := persistence.NewPriceStore(kv)

		err := store.SaveCanonical(context.Background(), application.PriceRecord{Prices: testfixtures.UniformPriceTable(1)})
		if !errors.Is(err, persistence.ErrWriteFailed) {
			t.Fatalf("expected ErrWriteFailed, got %v", err)
		}
	})

	t.Run("size reflects the serialized record", func(t *testing.T) {
		t.Parallel()

		kv := testfixtures.NewMemoryKV()
		store := persistence.NewPriceStore(kv)

		size, err := store.CanonicalSize(context.Background())
		if err != nil {
			t.Fatalf("CanonicalSize failed: %v", err)
		}
		if size != 0 {
			t.Fatalf("expected zero size before first save, got %d", size)
		}

		if err := store.SaveCanonical(context.Background(), application.PriceRecord{Prices: testfixtures.UniformPriceTable(1), Version: "2.1"}); err != nil {
			t.Fatalf("SaveCanonical failed: %v", err)
		}
		size, err = store.CanonicalSize(context.Background())
		if err != nil {
			t.Fatalf("CanonicalSize failed: %v", err)
		}
		raw, _ := kv.Raw(persistence.KeyCanonicalPrices)
		if size != len(raw) {
			t.Fatalf("expected size %d, got %d", len(raw), size)
		}
	})
}

func TestPriceStore_RoomMirrors(t *testing.T) {
	t.Parallel()

	t.Run("round-trips a mirror under its room key", func(t *testing.T) {
		t.Parallel()

		kv := testfixtures.NewMemoryKV()
		store := persistence.NewPriceStore(kv)

		mirror := application.RoomMirror{
			RoomType: application.RoomTraining,
			Prices: application.RoomPrices{
				Morning: application.TierPrices{Hourly: 100, Daily: 800, Monthly: 18000},
				Evening: application.TierPrices{Hourly: 120, Daily: 900, Monthly: 20000},
			},
			LastUpdated: testfixtures.ReferenceTime(),
			Timestamp:   testfixtures.ReferenceTime().UnixMilli(),
			UpdatedBy:   "admin",
		}
		if err := store.SaveRoomMirror(context.Background(), mirror); err != nil {
			t.Fatalf("SaveRoomMirror failed: %v", err)
		}
		if _, ok := kv.Raw("trainingRoomPrices"); !ok {
			t.Fatal("expected mirror under trainingRoomPrices")
		}

		loaded, err := store.LoadRoomMirror(context.Background(), application.RoomTraining)
		if err != nil {
			t.Fatalf("LoadRoomMirror failed: %v", err)
		}
		if loaded.Prices != mirror.Prices {
			t.Fatalf("prices mismatch: %#v", loaded.Prices)
		}
		if loaded.Timestamp != mirror.Timestamp || loaded.UpdatedBy != mirror.UpdatedBy {
			t.Fatalf("metadata mismatch: %#v", loaded)
		}
	})

	t.Run("mirrors are independent per room", func(t *testing.T) {
		t.Parallel()

		store := persistence.NewPriceStore(testfixtures.NewMemoryKV())
		mirror := application.RoomMirror{RoomType: application.RoomPrivate}
		if err := store.SaveRoomMirror(context.Background(), mirror); err != nil {
			t.Fatalf("SaveRoomMirror failed: %v", err)
		}
		if _, err := store.LoadRoomMirror(context.Background(), application.RoomMeeting); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound for the other room, got %v", err)
		}
	})

	t.Run("delete tolerates an absent mirror", func(t *testing.T) {
		t.Parallel()

		store := persistence.NewPriceStore(testfixtures.NewMemoryKV())
		if err := store.DeleteRoomMirror(context.Background(), application.RoomTraining); err != nil {
			t.Fatalf("expected absent delete to succeed, got %v", err)
		}
	})

	t.Run("delete then load reports not found", func(t *testing.T) {
		t.Parallel()

		store := persistence.NewPriceStore(testfixtures.NewMemoryKV())
		mirror := application.RoomMirror{RoomType: application.RoomTraining}
		if err := store.SaveRoomMirror(context.Background(), mirror); err != nil {
			t.Fatalf("SaveRoomMirror failed: %v", err)
		}
		if err := store.DeleteRoomMirror(context.Background(), application.RoomTraining); err != nil {
			t.Fatalf("DeleteRoomMirror failed: %v", err)
		}
		if _, err := store.LoadRoomMirror(context.Background(), application.RoomTraining); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
	})
}

func TestPriceStore_Backup(t *testing.T) {
	t.Parallel()

	kv := testfixtures.NewMemoryKV()
	store := persistence.NewPriceStore(kv)

	exists, err := store.HasBackup(context.Background())
	if err != nil {
		t.Fatalf("HasBackup failed: %v", err)
	}
	if exists {
		t.Fatal("expected no backup in a fresh store")
	}

	backup := application.BackupRecord{
		Prices:            testfixtures.UniformPriceTable(250),
		Version:           "2.1",
		BackupDate:        testfixtures.ReferenceTime(),
		OriginalTimestamp: testfixtures.ReferenceTime().Add(-time.Hour).UnixMilli(),
	}
	if err := store.SaveBackup(context.Background(), backup); err != nil {
		t.Fatalf("SaveBackup failed: %v", err)
	}

	exists, err = store.HasBackup(context.Background())
	if err != nil {
		t.Fatalf("HasBackup failed: %v", err)
	}
	if !exists {
		t.Fatal("expected backup after save")
	}

	loaded, err := store.LoadBackup(context.Background())
	if err != nil {
		t.Fatalf("LoadBackup failed: %v", err)
	}
	if !loaded.BackupDate.Equal(backup.BackupDate) {
		t.Fatalf("expected backup date %s, got %s", backup.BackupDate, loaded.BackupDate)
	}
	if loaded.OriginalTimestamp != backup.OriginalTimestamp {
		t.Fatalf("expected original timestamp %d, got %d", backup.OriginalTimestamp, loaded.OriginalTimestamp)
	}
	for _, room := range application.RoomTypes() {
		if loaded.Prices[room] != backup.Prices[room] {
			t.Fatalf("room %s mismatch: %#v", room, loaded.Prices[room])
		}
	}
}

func TestRoomMirrorKey(t *testing.T) {
	t.Parallel()

	cases := map[application.RoomType]string{
		application.RoomTraining: "trainingRoomPrices",
		application.RoomPrivate:  "privateRoomPrices",
		application.RoomMeeting:  "meetingRoomPrices",
	}
	for room, want := range cases {
		if got := persistence.RoomMirrorKey(room); got != want {
			t.Fatalf("RoomMirrorKey(%s) = %s, want %s", room, got, want)
		}
	}
}

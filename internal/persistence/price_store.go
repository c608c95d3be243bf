package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/example/pricing-console/internal/application"
)

// PriceStore implements application.PriceRepository over a KV store, encoding
// each record as a JSON value under its fixed key.
type PriceStore struct {
	kv KV
}

// NewPriceStore creates a price store backed by the provided KV.
func NewPriceStore(kv KV) *PriceStore {
	return &PriceStore{kv: kv}
}

// LoadCanonical reads and decodes the canonical price record.
func (s *PriceStore) LoadCanonical(ctx context.Context) (application.PriceRecord, error) {
	raw, err := s.kv.Get(ctx, KeyCanonicalPrices)
	if err != nil {
		return application.PriceRecord{}, err
	}

	var wire priceRecordJSON
	if err := json.Unmarshal(raw, &wire); err != nil {
		return application.PriceRecord{}, fmt.Errorf("decode canonical price record: %w", err)
	}

	return application.PriceRecord{
		Prices:      wire.Prices,
		Version:     wire.Version,
		LastUpdated: parseTime(wire.LastUpdated),
		Timestamp:   wire.Timestamp,
		UpdatedBy:   wire.UpdatedBy,
	}, nil
}

// SaveCanonical overwrites the canonical price record.
func (s *PriceStore) SaveCanonical(ctx context.Context, record application.PriceRecord) error {
	wire := priceRecordJSON{
		Prices:      record.Prices,
		Version:     record.Version,
		LastUpdated: formatTime(record.LastUpdated),
		Timestamp:   record.Timestamp,
		UpdatedBy:   record.UpdatedBy,
	}
	raw, err := json.Marshal(wire)
	if err != nil {
		return fmt.Errorf("encode canonical price record: %w", err)
	}
	if err := s.kv.Set(ctx, KeyCanonicalPrices, raw); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}

// CanonicalSize returns the serialized size of the canonical record in bytes.
func (s *PriceStore) CanonicalSize(ctx context.Context) (int, error) {
	raw, err := s.kv.Get(ctx, KeyCanonicalPrices)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return len(raw), nil
}

// SaveRoomMirror overwrites the abbreviated per-room record.
func (s *PriceStore) SaveRoomMirror(ctx context.Context, mirror application.RoomMirror) error {
	wire := roomMirrorJSON{
		Morning:     mirror.Prices.Morning,
		Evening:     mirror.Prices.Evening,
		LastUpdated: formatTime(mirror.LastUpdated),
		Timestamp:   mirror.Timestamp,
		RoomType:    string(mirror.RoomType),
		UpdatedBy:   mirror.UpdatedBy,
	}
	raw, err := json.Marshal(wire)
	if err != nil {
		return fmt.Errorf("encode room mirror: %w", err)
	}
	if err := s.kv.Set(ctx, RoomMirrorKey(mirror.RoomType), raw); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}

// LoadRoomMirror reads the abbreviated per-room record.
func (s *PriceStore) LoadRoomMirror(ctx context.Context, room application.RoomType) (application.RoomMirror, error) {
	raw, err := s.kv.Get(ctx, RoomMirrorKey(room))
	if err != nil {
		return application.RoomMirror{}, err
	}

	var wire roomMirrorJSON
	if err := json.Unmarshal(raw, &wire); err != nil {
		return application.RoomMirror{}, fmt.Errorf("decode room mirror: %w", err)
	}

	return application.RoomMirror{
		RoomType:    room,
		Prices:      application.RoomPrices{Morning: wire.Morning, Evening: wire.Evening},
		LastUpdated: parseTime(wire.LastUpdated),
		Timestamp:   wire.Timestamp,
		UpdatedBy:   wire.UpdatedBy,
	}, nil
}

// DeleteRoomMirror removes the abbreviated per-room record. Deleting an
// absent key is not an error.
func (s *PriceStore) DeleteRoomMirror(ctx context.Context, room application.RoomType) error {
	if err := s.kv.Delete(ctx, RoomMirrorKey(room)); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

// SaveBackup overwrites the disaster-recovery snapshot.
func (s *PriceStore) SaveBackup(ctx context.Context, backup application.BackupRecord) error {
	wire := backupRecordJSON{
		Prices:            backup.Prices,
		Version:           backup.Version,
		BackupDate:        formatTime(backup.BackupDate),
		OriginalTimestamp: backup.OriginalTimestamp,
	}
	raw, err := json.Marshal(wire)
	if err != nil {
		return fmt.Errorf("encode backup record: %w", err)
	}
	if err := s.kv.Set(ctx, KeyPricesBackup, raw); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}

// LoadBackup reads the disaster-recovery snapshot.
func (s *PriceStore) LoadBackup(ctx context.Context) (application.BackupRecord, error) {
	raw, err := s.kv.Get(ctx, KeyPricesBackup)
	if err != nil {
		return application.BackupRecord{}, err
	}

	var wire backupRecordJSON
	if err := json.Unmarshal(raw, &wire); err != nil {
		return application.BackupRecord{}, fmt.Errorf("decode backup record: %w", err)
	}

	return application.BackupRecord{
		Prices:            wire.Prices,
		Version:           wire.Version,
		BackupDate:        parseTime(wire.BackupDate),
		OriginalTimestamp: wire.OriginalTimestamp,
	}, nil
}

// HasBackup reports whether a backup snapshot exists.
func (s *PriceStore) HasBackup(ctx context.Context) (bool, error) {
	if _, err := s.kv.Get(ctx, KeyPricesBackup); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

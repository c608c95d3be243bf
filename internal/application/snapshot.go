package application

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

type exportEnvelope struct {
	Prices     PriceTable `json:"prices"`
	Version    string     `json:"version"`
	ExportDate string     `json:"exportDate"`
	ExportedBy string     `json:"exportedBy"`
}

// Pointer leaves so missing fields are distinguishable from zero values
// during shape validation.
type importEnvelope struct {
	Prices map[RoomType]*importRoom `json:"prices"`
}

type importRoom struct {
	Morning *importTier `json:"morning"`
	Evening *importTier `json:"evening"`
}

type importTier struct {
	Hourly  *int64 `json:"hourly"`
	Daily   *int64 `json:"daily"`
	Monthly *int64 `json:"monthly"`
}

// ExportSnapshot serializes the current table with provenance metadata as
// indented JSON and suggests a date-stamped filename.
func (s *PriceService) ExportSnapshot(ctx context.Context, operator string) (data []byte, filename string, err error) {
	if s == nil {
		err = fmt.Errorf("PriceService is nil")
		return
	}

	logger := s.loggerWith(ctx, "ExportSnapshot", "operator", operator)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to export snapshot", "error", err)
			return
		}
		logger.InfoContext(ctx, "snapshot exported", "filename", filename)
	}()

	now := s.now()
	envelope := exportEnvelope{
		Prices:     s.Table(ctx),
		Version:    s.version,
		ExportDate: now.UTC().Format(time.RFC3339),
		ExportedBy: operatorName(operator),
	}

	data, err = json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return
	}
	filename = fmt.Sprintf("room-prices-%s.json", now.UTC().Format("2006-01-02"))
	return
}

// ImportSnapshot parses a previously exported snapshot, validates its shape,
// and replaces the whole table after operator confirmation. It never partially
// applies an import.
func (s *PriceService) ImportSnapshot(ctx context.Context, params ImportParams) (err error) {
	if s == nil {
		return fmt.Errorf("PriceService is nil")
	}

	logger := s.loggerWith(ctx, "ImportSnapshot", "operator", params.Operator)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to import snapshot", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "snapshot imported")
	}()

	table, err := parseSnapshot(params.Data)
	if err != nil {
		return err
	}

	if params.Confirm == nil || !params.Confirm("Importing will replace all current prices. Continue?") {
		return ErrConfirmationDeclined
	}

	s.mu.Lock()
	s.ensureLoadedLocked(ctx)
	previous := s.table
	s.table = table
	if err = s.persistLocked(ctx, params.Operator); err != nil {
		s.table = previous
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	for _, room := range RoomTypes() {
		s.announce(ctx, room, table[room], params.Operator)
	}
	return nil
}

// parseSnapshot decodes and shape-checks an import payload: every catalog
// room, slot, and tier must be present with a non-negative value.
func parseSnapshot(data []byte) (PriceTable, error) {
	var envelope importEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotParse, err)
	}
	if envelope.Prices == nil {
		return nil, fmt.Errorf("%w: missing prices", ErrSnapshotShape)
	}

	table := make(PriceTable, len(RoomTypes()))
	for _, room := range RoomTypes() {
		entry, ok := envelope.Prices[room]
		if !ok || entry == nil {
			return nil, fmt.Errorf("%w: missing room %s", ErrSnapshotShape, room)
		}
		morning, err := convertTier(room, SlotMorning, entry.Morning)
		if err != nil {
			return nil, err
		}
		evening, err := convertTier(room, SlotEvening, entry.Evening)
		if err != nil {
			return nil, err
		}
		table[room] = RoomPrices{Morning: morning, Evening: evening}
	}
	return table, nil
}

func convertTier(room RoomType, slot TimeSlot, tier *importTier) (TierPrices, error) {
	if tier == nil {
		return TierPrices{}, fmt.Errorf("%w: missing %s.%s", ErrSnapshotShape, room, slot)
	}
	leaves := map[RateTier]*int64{
		TierHourly:  tier.Hourly,
		TierDaily:   tier.Daily,
		TierMonthly: tier.Monthly,
	}
	for _, rate := range RateTiers() {
		leaf := leaves[rate]
		if leaf == nil {
			return TierPrices{}, fmt.Errorf("%w: missing %s.%s.%s", ErrSnapshotShape, room, slot, rate)
		}
		if *leaf < 0 {
			return TierPrices{}, fmt.Errorf("%w: negative %s.%s.%s", ErrSnapshotShape, room, slot, rate)
		}
	}
	return TierPrices{Hourly: *tier.Hourly, Daily: *tier.Daily, Monthly: *tier.Monthly}, nil
}

package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// PriceRepository captures the persistence operations needed by the service.
type PriceRepository interface {
	LoadCanonical(ctx context.Context) (PriceRecord, error)
	SaveCanonical(ctx context.Context, record PriceRecord) error
	CanonicalSize(ctx context.Context) (int, error)
	SaveRoomMirror(ctx context.Context, mirror RoomMirror) error
	SaveBackup(ctx context.Context, backup BackupRecord) error
	HasBackup(ctx context.Context) (bool, error)
}

// Publisher announces price changes to interested observers. Delivery is
// best-effort; receivers re-read the canonical record.
type Publisher interface {
	Publish(ctx context.Context, update PriceUpdate)
}

// PriceService owns the in-memory price table, persists it through the
// repository, validates edits, and announces changes. It is the only writer.
type PriceService struct {
	repo        PriceRepository
	form        FormSource
	publisher   Publisher
	version     string
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger

	mu     sync.Mutex
	table  PriceTable
	loaded bool
}

// NewPriceService constructs a price service with the provided dependencies.
func NewPriceService(repo PriceRepository, form FormSource, publisher Publisher, version string, idGenerator func() string, now func() time.Time) *PriceService {
	return NewPriceServiceWithLogger(repo, form, publisher, version, idGenerator, now, nil)
}

// NewPriceServiceWithLogger constructs a price service with a specified logger.
func NewPriceServiceWithLogger(repo PriceRepository, form FormSource, publisher Publisher, version string, idGenerator func() string, now func() time.Time, logger *slog.Logger) *PriceService {
	if version == "" {
		version = DataVersion
	}
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	if now == nil {
		now = time.Now
	}
	return &PriceService{
		repo:        repo,
		form:        form,
		publisher:   publisher,
		version:     version,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *PriceService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "PriceService", operation, attrs...)
}

// UpdateRoomParams wraps the data required to update one room from form inputs.
type UpdateRoomParams struct {
	Operator string
	RoomType RoomType
}

// SaveAllParams wraps the data required for a bulk save pass.
type SaveAllParams struct {
	Operator string
}

// ResetParams wraps the data required to reset the table to defaults.
type ResetParams struct {
	Operator string
	Confirm  Confirmer
}

// ImportParams wraps the data required to import a snapshot.
type ImportParams struct {
	Operator string
	Data     []byte
	Confirm  Confirmer
}

// Start loads the persisted table (or defaults) and writes the initial
// backup when none exists yet. It never fails; storage problems fall back to
// the default grid.
func (s *PriceService) Start(ctx context.Context) {
	if s == nil {
		return
	}

	s.mu.Lock()
	s.ensureLoadedLocked(ctx)
	table := s.table.Clone()
	s.mu.Unlock()

	if s.repo == nil {
		return
	}

	logger := s.loggerWith(ctx, "Start")
	exists, err := s.repo.HasBackup(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to probe backup", "error", err)
		return
	}
	if exists {
		return
	}

	backup := BackupRecord{
		Prices:            table,
		Version:           s.version,
		BackupDate:        s.now(),
		OriginalTimestamp: s.now().UnixMilli(),
	}
	if err := s.repo.SaveBackup(ctx, backup); err != nil {
		logger.ErrorContext(ctx, "failed to write initial backup", "error", err)
		return
	}
	logger.InfoContext(ctx, "initial backup created")
}

// Table returns a copy of the current in-memory price table, loading the
// persisted record on first use.
func (s *PriceService) Table(ctx context.Context) PriceTable {
	if s == nil {
		return DefaultPriceTable()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked(ctx)
	return s.table.Clone()
}

// UpdateRoom reads the pending form inputs for one room, validates them, and
// applies them atomically. On validation failure nothing is written and the
// other rooms are untouched.
func (s *PriceService) UpdateRoom(ctx context.Context, params UpdateRoomParams) (prices RoomPrices, err error) {
	if s == nil {
		err = fmt.Errorf("PriceService is nil")
		return
	}
	if s.form == nil {
		err = fmt.Errorf("form source not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateRoom",
		"operator", params.Operator,
		"room", params.RoomType,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update room prices", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "room prices updated")
	}()

	if !params.RoomType.Valid() {
		vErr := &ValidationError{}
		vErr.add("room", "unknown room type")
		err = vErr
		return
	}

	candidate := s.form.ReadRoom(params.RoomType)
	if vErr := validateRoomPrices(candidate); vErr.HasErrors() {
		err = vErr
		return
	}

	s.mu.Lock()
	s.ensureLoadedLocked(ctx)
	previous := s.table[params.RoomType]
	s.table[params.RoomType] = candidate
	if err = s.persistLocked(ctx, params.Operator); err != nil {
		s.table[params.RoomType] = previous
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.announce(ctx, params.RoomType, candidate, params.Operator)
	prices = candidate
	return
}

// SaveAll runs the per-room read, validate, and diff pass across the whole
// catalog. Only rooms whose six values differ from the in-memory table are
// applied and announced. A zero return means nothing was written.
func (s *PriceService) SaveAll(ctx context.Context, params SaveAllParams) (changed int, err error) {
	if s == nil {
		err = fmt.Errorf("PriceService is nil")
		return
	}

	logger := s.loggerWith(ctx, "SaveAll", "operator", params.Operator)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to save changes", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "bulk save finished", "changed_rooms", changed)
	}()

	changed, err = s.saveChangedRooms(ctx, params.Operator)
	return
}

// AutoSave performs the same diff-and-validate pass as SaveAll but swallows
// errors; auto-save is advisory, not a commitment.
func (s *PriceService) AutoSave(ctx context.Context, operator string) {
	if s == nil {
		return
	}
	changed, err := s.saveChangedRooms(ctx, operator)
	logger := s.loggerWith(ctx, "AutoSave", "operator", operator)
	if err != nil {
		logger.ErrorContext(ctx, "auto-save failed", "error", err, "error_kind", ErrorKind(err))
		return
	}
	if changed > 0 {
		logger.InfoContext(ctx, "auto-save persisted changes", "changed_rooms", changed)
	}
}

func (s *PriceService) saveChangedRooms(ctx context.Context, operator string) (int, error) {
	if s.form == nil {
		return 0, fmt.Errorf("form source not configured")
	}

	s.mu.Lock()
	s.ensureLoadedLocked(ctx)

	// Invalid rooms are skipped rather than failing the pass; only the
	// single-room update surfaces validation errors to the operator.
	updates := make(map[RoomType]RoomPrices)
	for _, room := range RoomTypes() {
		candidate := s.form.ReadRoom(room)
		if validateRoomPrices(candidate).HasErrors() {
			continue
		}
		if candidate != s.table[room] {
			updates[room] = candidate
		}
	}

	if len(updates) == 0 {
		s.mu.Unlock()
		return 0, nil
	}

	previous := s.table.Clone()
	for room, prices := range updates {
		s.table[room] = prices
	}
	if err := s.persistLocked(ctx, operator); err != nil {
		s.table = previous
		s.mu.Unlock()
		return 0, err
	}
	s.mu.Unlock()

	for _, room := range RoomTypes() {
		if prices, ok := updates[room]; ok {
			s.announce(ctx, room, prices, operator)
		}
	}
	return len(updates), nil
}

// ResetToDefaults replaces the whole table with the fixed default grid after
// operator confirmation. The only recovery path afterwards is the backup slot.
func (s *PriceService) ResetToDefaults(ctx context.Context, params ResetParams) (err error) {
	if s == nil {
		return fmt.Errorf("PriceService is nil")
	}

	logger := s.loggerWith(ctx, "ResetToDefaults", "operator", params.Operator)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to reset prices", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "prices reset to defaults")
	}()

	if params.Confirm == nil || !params.Confirm("Reset all prices to default values? This cannot be undone.") {
		err = ErrConfirmationDeclined
		return
	}

	defaults := DefaultPriceTable()

	s.mu.Lock()
	s.ensureLoadedLocked(ctx)
	previous := s.table
	s.table = defaults.Clone()
	if err = s.persistLocked(ctx, params.Operator); err != nil {
		s.table = previous
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	for _, room := range RoomTypes() {
		s.announce(ctx, room, defaults[room], params.Operator)
	}
	return
}

// Stats summarises the persisted record for the console dashboard.
func (s *PriceService) Stats(ctx context.Context) (Stats, error) {
	if s == nil || s.repo == nil {
		return Stats{}, fmt.Errorf("price repository not configured")
	}

	record, err := s.repo.LoadCanonical(ctx)
	if err != nil {
		return Stats{}, err
	}
	size, err := s.repo.CanonicalSize(ctx)
	if err != nil {
		return Stats{}, err
	}

	return Stats{
		Version:     record.Version,
		LastUpdated: record.LastUpdated,
		SizeBytes:   size,
		RoomCount:   len(record.Prices),
	}, nil
}

// ensureLoadedLocked populates the in-memory table from the canonical record,
// falling back to the default grid when the record is absent, malformed, or
// missing its version or prices.
func (s *PriceService) ensureLoadedLocked(ctx context.Context) {
	if s.loaded {
		return
	}
	s.loaded = true
	s.table = DefaultPriceTable()

	if s.repo == nil {
		return
	}

	record, err := s.repo.LoadCanonical(ctx)
	if err != nil {
		s.loggerWith(ctx, "Load").WarnContext(ctx, "falling back to default prices", "error", err)
		return
	}
	if record.Version == "" || !record.Prices.Complete() {
		s.loggerWith(ctx, "Load").WarnContext(ctx, "persisted record incomplete, using defaults")
		return
	}
	s.table = record.Prices.Clone()
}

// persistLocked writes the canonical record, the per-room mirrors, and the
// backup snapshot. The writes are independent overwrites; the canonical
// record is the source of truth on next load, so mirror or backup failures
// are logged without rolling back.
func (s *PriceService) persistLocked(ctx context.Context, operator string) error {
	if s.repo == nil {
		return nil
	}

	now := s.now()
	record := PriceRecord{
		Prices:      s.table.Clone(),
		Version:     s.version,
		LastUpdated: now,
		Timestamp:   now.UnixMilli(),
		UpdatedBy:   operatorName(operator),
	}

	if err := s.repo.SaveCanonical(ctx, record); err != nil {
		return err
	}

	logger := s.loggerWith(ctx, "persist")
	for _, room := range RoomTypes() {
		mirror := RoomMirror{
			RoomType:    room,
			Prices:      s.table[room],
			LastUpdated: now,
			Timestamp:   record.Timestamp,
			UpdatedBy:   record.UpdatedBy,
		}
		if err := s.repo.SaveRoomMirror(ctx, mirror); err != nil {
			logger.ErrorContext(ctx, "failed to write room mirror", "room", room, "error", err)
		}
	}

	backup := BackupRecord{
		Prices:            record.Prices,
		Version:           s.version,
		BackupDate:        now,
		OriginalTimestamp: record.Timestamp,
	}
	if err := s.repo.SaveBackup(ctx, backup); err != nil {
		logger.ErrorContext(ctx, "failed to refresh backup", "error", err)
	}

	return nil
}

func (s *PriceService) announce(ctx context.Context, room RoomType, prices RoomPrices, operator string) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(ctx, PriceUpdate{
		ID:        s.idGenerator(),
		RoomType:  room,
		Prices:    prices,
		Timestamp: s.now(),
		Source:    "admin",
		UpdatedBy: operatorName(operator),
	})
}

// validateRoomPrices rejects the whole room when any of the six leaves is
// negative; values arrive already coerced to integers by the form source.
func validateRoomPrices(prices RoomPrices) *ValidationError {
	vErr := &ValidationError{}
	for _, slot := range TimeSlots() {
		for _, tier := range RateTiers() {
			if prices.Tier(slot, tier) < 0 {
				vErr.add(fmt.Sprintf("%s.%s", slot, tier), "price must be a non-negative number")
			}
		}
	}
	return vErr
}

func operatorName(operator string) string {
	if operator == "" {
		return "Admin"
	}
	return operator
}

package application

import "time"

// RoomType identifies a bookable room in the fixed catalog.
type RoomType string

const (
	RoomTraining RoomType = "training"
	RoomPrivate  RoomType = "private"
	RoomMeeting  RoomType = "meeting"
)

// RoomTypes returns the catalog in its canonical order.
func RoomTypes() []RoomType {
	return []RoomType{RoomTraining, RoomPrivate, RoomMeeting}
}

// Valid reports whether the room type belongs to the fixed catalog.
func (r RoomType) Valid() bool {
	switch r {
	case RoomTraining, RoomPrivate, RoomMeeting:
		return true
	}
	return false
}

// DisplayName returns the operator facing name for the room.
func (r RoomType) DisplayName() string {
	switch r {
	case RoomTraining:
		return "AMOUN ROOM"
	case RoomPrivate:
		return "HORUS ROOM"
	case RoomMeeting:
		return "ISIS ROOM"
	}
	return string(r)
}

// TimeSlot identifies a time-of-day pricing band.
type TimeSlot string

const (
	SlotMorning TimeSlot = "morning"
	SlotEvening TimeSlot = "evening"
)

// TimeSlots returns the pricing bands in their canonical order.
func TimeSlots() []TimeSlot {
	return []TimeSlot{SlotMorning, SlotEvening}
}

// RateTier identifies a billing duration.
type RateTier string

const (
	TierHourly  RateTier = "hourly"
	TierDaily   RateTier = "daily"
	TierMonthly RateTier = "monthly"
)

// RateTiers returns the billing durations in their canonical order.
func RateTiers() []RateTier {
	return []RateTier{TierHourly, TierDaily, TierMonthly}
}

// TierPrices holds the three duration prices for one time slot.
type TierPrices struct {
	Hourly  int64 `json:"hourly"`
	Daily   int64 `json:"daily"`
	Monthly int64 `json:"monthly"`
}

// RoomPrices holds the full six-value price grid for one room.
type RoomPrices struct {
	Morning TierPrices `json:"morning"`
	Evening TierPrices `json:"evening"`
}

// Tier returns the price stored for the given slot and tier.
func (p RoomPrices) Tier(slot TimeSlot, tier RateTier) int64 {
	prices := p.Morning
	if slot == SlotEvening {
		prices = p.Evening
	}
	switch tier {
	case TierDaily:
		return prices.Daily
	case TierMonthly:
		return prices.Monthly
	}
	return prices.Hourly
}

// PriceTable maps every room in the catalog to its price grid. A well formed
// table carries an entry for all three rooms at all times.
type PriceTable map[RoomType]RoomPrices

// Clone returns an independent copy of the table.
func (t PriceTable) Clone() PriceTable {
	if t == nil {
		return nil
	}
	clone := make(PriceTable, len(t))
	for room, prices := range t {
		clone[room] = prices
	}
	return clone
}

// Complete reports whether every catalog room is present.
func (t PriceTable) Complete() bool {
	for _, room := range RoomTypes() {
		if _, ok := t[room]; !ok {
			return false
		}
	}
	return true
}

// PriceRecord is the canonical durable form of the price table plus
// provenance metadata.
type PriceRecord struct {
	Prices      PriceTable
	Version     string
	LastUpdated time.Time
	Timestamp   int64 // epoch milliseconds, kept alongside LastUpdated for external readers
	UpdatedBy   string
}

// RoomMirror is the abbreviated per-room record kept for fast external reads.
type RoomMirror struct {
	RoomType    RoomType
	Prices      RoomPrices
	LastUpdated time.Time
	Timestamp   int64
	UpdatedBy   string
}

// BackupRecord is the disaster-recovery snapshot written alongside the
// canonical record. Normal flows never read it.
type BackupRecord struct {
	Prices            PriceTable
	Version           string
	BackupDate        time.Time
	OriginalTimestamp int64
}

// PriceUpdate is the ephemeral notification payload announced after a change.
// Receivers treat it as a hint to re-read the canonical record.
type PriceUpdate struct {
	ID        string
	RoomType  RoomType
	Prices    RoomPrices
	Timestamp time.Time
	Source    string
	UpdatedBy string
}

// Stats summarises the persisted state for the console dashboard.
type Stats struct {
	Version     string
	LastUpdated time.Time
	SizeBytes   int
	RoomCount   int
}

// Session represents the time-limited token that gates the admin surface.
type Session struct {
	Token     string
	Username  string
	LoginTime time.Time
	ExpiresAt time.Time
}

// Valid reports whether the session carries a token and an expiry that has
// not elapsed at the reference instant.
func (s Session) Valid(now time.Time) bool {
	return s.Token != "" && !s.ExpiresAt.IsZero() && !now.After(s.ExpiresAt)
}

// Surface identifies a console page for the navigation guard.
type Surface string

const (
	SurfaceLogin Surface = "login"
	SurfaceAdmin Surface = "admin"
)

// Confirmer asks the operator to approve a destructive action.
type Confirmer func(prompt string) bool

// FormSource reads the operator's pending numeric inputs for one room.
// Implementations coerce unparsable fields to zero rather than failing.
type FormSource interface {
	ReadRoom(room RoomType) RoomPrices
}

// Package forms holds the operator's pending numeric inputs, addressed by
// the same deterministic naming convention the console pages use.
package forms

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/example/pricing-console/internal/application"
)

// FieldID returns the input field name for a room, slot, and tier, e.g.
// "training-morning-hourly".
func FieldID(room application.RoomType, slot application.TimeSlot, tier application.RateTier) string {
	return fmt.Sprintf("%s-%s-%s", room, slot, tier)
}

// FieldSet implements application.FormSource over an in-memory field map.
// Reads are permissive: a missing or unparsable field coerces to zero, never
// to an error.
type FieldSet struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewFieldSet returns an empty field set.
func NewFieldSet() *FieldSet {
	return &FieldSet{values: make(map[string]string)}
}

// Set records the raw text of one field.
func (f *FieldSet) Set(field, value string) {
	f.mu.Lock()
	f.values[field] = value
	f.mu.Unlock()
}

// SetPrice records one leaf value by its coordinates.
func (f *FieldSet) SetPrice(room application.RoomType, slot application.TimeSlot, tier application.RateTier, value string) {
	f.Set(FieldID(room, slot, tier), value)
}

// Populate fills every field from the given table, mirroring how the console
// loads current prices into its inputs.
func (f *FieldSet) Populate(table application.PriceTable) {
	for room, prices := range table {
		for _, slot := range application.TimeSlots() {
			for _, tier := range application.RateTiers() {
				f.Set(FieldID(room, slot, tier), strconv.FormatInt(prices.Tier(slot, tier), 10))
			}
		}
	}
}

// ReadRoom implements application.FormSource.
func (f *FieldSet) ReadRoom(room application.RoomType) application.RoomPrices {
	return application.RoomPrices{
		Morning: f.readTier(room, application.SlotMorning),
		Evening: f.readTier(room, application.SlotEvening),
	}
}

func (f *FieldSet) readTier(room application.RoomType, slot application.TimeSlot) application.TierPrices {
	return application.TierPrices{
		Hourly:  f.readLeaf(room, slot, application.TierHourly),
		Daily:   f.readLeaf(room, slot, application.TierDaily),
		Monthly: f.readLeaf(room, slot, application.TierMonthly),
	}
}

func (f *FieldSet) readLeaf(room application.RoomType, slot application.TimeSlot, tier application.RateTier) int64 {
	f.mu.RLock()
	raw, ok := f.values[FieldID(room, slot, tier)]
	f.mu.RUnlock()
	if !ok {
		return 0
	}
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0
	}
	return value
}

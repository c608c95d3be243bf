package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/pricing-console/internal/application"
)

var sessionCounter uint64

var referenceTime = time.Date(2025, time.March, 10, 9, 30, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// UniformPriceTable returns a complete table with every leaf set to value.
func UniformPriceTable(value int64) application.PriceTable {
	tier := application.TierPrices{Hourly: value, Daily: value, Monthly: value}
	prices := application.RoomPrices{Morning: tier, Evening: tier}
	table := make(application.PriceTable)
	for _, room := range application.RoomTypes() {
		table[room] = prices
	}
	return table
}

// SessionOption configures the generated session fixture.
type SessionOption func(*application.Session)

// WithExpiry overrides the session expiry.
func WithExpiry(expiresAt time.Time) SessionOption {
	return func(s *application.Session) { s.ExpiresAt = expiresAt }
}

// WithUsername overrides the session username.
func WithUsername(username string) SessionOption {
	return func(s *application.Session) { s.Username = username }
}

// NewSessionFixture returns a deterministic valid session with optional
// overrides, logged in at the reference time with a 24 hour expiry.
func NewSessionFixture(opts ...SessionOption) application.Session {
	idx := atomic.AddUint64(&sessionCounter, 1)
	session := application.Session{
		Token:     fmt.Sprintf("token-%03d", idx),
		Username:  "admin",
		LoginTime: referenceTime,
		ExpiresAt: referenceTime.Add(24 * time.Hour),
	}
	for _, opt := range opts {
		opt(&session)
	}
	return session
}

// StaticForm is a fixed application.FormSource for service tests.
type StaticForm struct {
	Rooms map[application.RoomType]application.RoomPrices
}

// NewStaticForm returns a form pre-filled from the provided table.
func NewStaticForm(table application.PriceTable) *StaticForm {
	rooms := make(map[application.RoomType]application.RoomPrices, len(table))
	for room, prices := range table {
		rooms[room] = prices
	}
	return &StaticForm{Rooms: rooms}
}

// SetRoom replaces the pending values for one room.
func (f *StaticForm) SetRoom(room application.RoomType, prices application.RoomPrices) {
	if f.Rooms == nil {
		f.Rooms = make(map[application.RoomType]application.RoomPrices)
	}
	f.Rooms[room] = prices
}

// ReadRoom implements application.FormSource.
func (f *StaticForm) ReadRoom(room application.RoomType) application.RoomPrices {
	if f == nil || f.Rooms == nil {
		return application.RoomPrices{}
	}
	return f.Rooms[room]
}

// ConfirmAlways approves every destructive action.
func ConfirmAlways(string) bool { return true }

// ConfirmNever declines every destructive action.
func ConfirmNever(string) bool { return false }

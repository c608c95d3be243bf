package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/example/pricing-console/internal/application"
)

// SessionStore implements application.SessionStore over a KV store. The
// console holds at most one session, kept under a single fixed key.
type SessionStore struct {
	kv KV
}

// NewSessionStore creates a session store backed by the provided KV.
func NewSessionStore(kv KV) *SessionStore {
	return &SessionStore{kv: kv}
}

// SaveSession overwrites the stored session.
func (s *SessionStore) SaveSession(ctx context.Context, session application.Session) error {
	wire := sessionJSON{
		Token:     session.Token,
		Username:  session.Username,
		LoginTime: session.LoginTime.UnixMilli(),
		ExpiresAt: session.ExpiresAt.UnixMilli(),
	}
	raw, err := json.Marshal(wire)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.kv.Set(ctx, KeySession, raw); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}

// GetSession reads the stored session. A corrupt record is treated the same
// as an absent one: the bad value is dropped and ErrNotFound is returned.
func (s *SessionStore) GetSession(ctx context.Context) (application.Session, error) {
	raw, err := s.kv.Get(ctx, KeySession)
	if err != nil {
		return application.Session{}, err
	}

	var wire sessionJSON
	if err := json.Unmarshal(raw, &wire); err != nil {
		_ = s.kv.Delete(ctx, KeySession)
		return application.Session{}, ErrNotFound
	}

	session := application.Session{
		Token:    wire.Token,
		Username: wire.Username,
	}
	if wire.LoginTime != 0 {
		session.LoginTime = time.UnixMilli(wire.LoginTime).UTC()
	}
	if wire.ExpiresAt != 0 {
		session.ExpiresAt = time.UnixMilli(wire.ExpiresAt).UTC()
	}
	return session, nil
}

// DeleteSession removes the stored session. Deleting an absent session is
// not an error.
func (s *SessionStore) DeleteSession(ctx context.Context) error {
	if err := s.kv.Delete(ctx, KeySession); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

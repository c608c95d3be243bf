package application

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

)

// SessionStore captures the persistence interactions for the single console session.
type SessionStore interface {
	SaveSession(ctx context.Context, session Session) error
	GetSession(ctx context.Context) (Session, error)
	DeleteSession(ctx context.Context) error
}

// CredentialSource looks up the stored password digest for a username.
type CredentialSource interface {
	PasswordHashFor(username string) (string, bool)
}

// AllowList is a fixed in-memory credential source with digests computed at
// construction. This is demo-grade gating: there is no server-side secret and
// no rate limiting, so real deployments must move verification to a trusted
// boundary.
type AllowList struct {
	hashes map[string]string
}

// NewAllowList hashes the provided username/password pairs into an allow-list.
func NewAllowList(accounts map[string]string) (*AllowList, error) {
	hashes := make(map[string]string, len(accounts))
	for username, password := range accounts {
		hash, err := CreatePasswordHash(password, DefaultArgon2idParams)
		if err != nil {
			return nil, fmt.Errorf("hash credentials for %s: %w", username, err)
		}
		hashes[username] = hash
	}
	return &AllowList{hashes: hashes}, nil
}

// NewDemoAllowList returns the console's two fixed demo accounts.
func NewDemoAllowList() (*AllowList, error) {
	return NewAllowList(map[string]string{
		"admin":        "12345",
		"methodsadmin": "SecurePass123!",
	})
}

// PasswordHashFor implements CredentialSource.
func (a *AllowList) PasswordHashFor(username string) (string, bool) {
	if a == nil {
		return "", false
	}
	hash, ok := a.hashes[username]
	return hash, ok
}

// SessionGate guards the admin surface with a locally stored, time-limited token.
type SessionGate struct {
	sessions       SessionStore
	credentials    CredentialSource
	verifyPassword PasswordVerifier
	tokenGenerator func() string
	now            func() time.Time
	sessionTTL     time.Duration
	logger         *slog.Logger
}

// NewSessionGate constructs a SessionGate with the provided dependencies.
func NewSessionGate(sessions SessionStore, credentials CredentialSource, verify PasswordVerifier, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration) *SessionGate {
	return NewSessionGateWithLogger(sessions, credentials, verify, tokenGenerator, now, sessionTTL, nil)
}

// NewSessionGateWithLogger constructs a SessionGate with a specified logger.
func NewSessionGateWithLogger(sessions SessionStore, credentials CredentialSource, verify PasswordVerifier, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration, logger *slog.Logger) *SessionGate {
	if verify == nil {
		verify = VerifyPassword
	}
	if tokenGenerator == nil {
		tokenGenerator = RandomToken
	}
	if now == nil {
		now = time.Now
	}
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &SessionGate{
		sessions:       sessions,
		credentials:    credentials,
		verifyPassword: verify,
		tokenGenerator: tokenGenerator,
		now:            now,
		sessionTTL:     sessionTTL,
		logger:         defaultLogger(logger),
	}
}

func (g *SessionGate) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, g.logger, "SessionGate", operation, attrs...)
}

// Authenticate checks the submitted credentials against the allow-list and,
// on success, mints and stores a fresh session.
//
// Failures never reveal whether the username or the password was wrong.
func (g *SessionGate) Authenticate(ctx context.Context, username, password string) (session Session, err error) {
	if g == nil {
		err = fmt.Errorf("SessionGate is nil")
		return
	}
	if g.credentials == nil {
		err = fmt.Errorf("credential source not configured")
		return
	}

	username = strings.TrimSpace(username)

	logger := g.loggerWith(ctx, "Authenticate", "username", username)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "authentication failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "authentication succeeded", "expires_at", session.ExpiresAt)
	}()

	// Fail fast on missing fields; no digest is computed.
	if username == "" || password == "" {
		err = ErrMissingInput
		return
	}

	hash, ok := g.credentials.PasswordHashFor(username)
	if !ok {
		err = ErrInvalidCredentials
		return
	}
	if err = g.verifyPassword(hash, password); err != nil {
		err = ErrInvalidCredentials
		return
	}

	now := g.now()
	session = Session{
		Token:     g.tokenGenerator(),
		Username:  username,
		LoginTime: now,
		ExpiresAt: now.Add(g.sessionTTL),
	}

	if g.sessions != nil {
		if err = g.sessions.SaveSession(ctx, session); err != nil {
			session = Session{}
			return
		}
	}

	return
}

// IsAuthenticated reports whether a stored session exists and has not
// elapsed. An expired session is deleted when detected.
func (g *SessionGate) IsAuthenticated(ctx context.Context) bool {
	if g == nil || g.sessions == nil {
		return false
	}

	session, err := g.sessions.GetSession(ctx)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			g.loggerWith(ctx, "IsAuthenticated").ErrorContext(ctx, "failed to read session", "error", err)
		}
		return false
	}

	if !session.Valid(g.now()) {
		if err := g.sessions.DeleteSession(ctx); err != nil && !errors.Is(err, ErrNotFound) {
			g.loggerWith(ctx, "IsAuthenticated").ErrorContext(ctx, "failed to evict expired session", "error", err)
		}
		return false
	}

	return true
}

// CurrentSession returns the stored session, or the zero value when none exists.
func (g *SessionGate) CurrentSession(ctx context.Context) Session {
	if g == nil || g.sessions == nil {
		return Session{}
	}
	session, err := g.sessions.GetSession(ctx)
	if err != nil {
		return Session{}
	}
	return session
}

// Logout deletes the stored session unconditionally. It is idempotent.
func (g *SessionGate) Logout(ctx context.Context) error {
	if g == nil || g.sessions == nil {
		return nil
	}

	logger := g.loggerWith(ctx, "Logout")
	if err := g.sessions.DeleteSession(ctx); err != nil && !errors.Is(err, ErrNotFound) {
		logger.ErrorContext(ctx, "failed to delete session", "error", err)
		return err
	}
	logger.InfoContext(ctx, "session deleted")
	return nil
}

// ResolveSurface applies the per-navigation guard policy: an authenticated
// operator on the login surface moves to admin, an unauthenticated one on the
// admin surface moves to login, and everyone else stays put.
func ResolveSurface(current Surface, authenticated bool) Surface {
	if current == SurfaceLogin && authenticated {
		return SurfaceAdmin
	}
	if current == SurfaceAdmin && !authenticated {
		return SurfaceLogin
	}
	return current
}

// RandomToken returns a cryptographically random 256-bit token encoded as hex.
func RandomToken() string {
	buf := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

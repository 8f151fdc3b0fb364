package auth

import (
	"context"
	"errors"
	"time"
)

// Auth errors. All privileged operations fail closed on ErrUnauthenticated.
var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailBanned        = errors.New("email is banned")
	ErrBlocked            = errors.New("account is blocked")
	ErrSessionNotFound    = errors.New("session not found")
)

// Session is a server-side login session. The cookie the client holds is a
// signed token referencing this row, so sessions can be revoked centrally.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at the given time.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// SessionStore defines the persistence interface for sessions.
type SessionStore interface {
	SaveSession(ctx context.Context, sess Session) error
	GetSession(ctx context.Context, id string) (*Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteSessionsForUser(ctx context.Context, userID string) error
}

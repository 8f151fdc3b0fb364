package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tribune/internal/accounts"
	"tribune/internal/identity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "tribune_session"

// DefaultSessionTTL is how long a login session stays valid.
const DefaultSessionTTL = 30 * 24 * time.Hour

// Config holds auth service configuration.
type Config struct {
	// JWTSecret signs session tokens. Required.
	JWTSecret string

	// SessionTTL overrides DefaultSessionTTL when non-zero.
	SessionTTL time.Duration

	// SecureCookies sets the Secure flag on session cookies.
	// Should be true in production (HTTPS).
	SecureCookies bool
}

// Service is the identity and session gate. It exchanges credentials for
// sessions and resolves request credentials back to fresh principal
// snapshots. It is the only component that touches raw credentials.
type Service struct {
	users    accounts.Store
	sessions SessionStore
	cfg      Config
	ttl      time.Duration
}

// NewService creates an auth Service.
func NewService(users accounts.Store, sessions SessionStore, cfg Config) (*Service, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("auth: JWT secret is required")
	}
	ttl := cfg.SessionTTL
	if ttl == 0 {
		ttl = DefaultSessionTTL
	}
	return &Service{users: users, sessions: sessions, cfg: cfg, ttl: ttl}, nil
}

// Signup registers a new principal with the member role. Banned emails are
// rejected before anything is written.
func (s *Service) Signup(ctx context.Context, email, displayName, password string) (*identity.Principal, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("valid email is required")
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}

	banned, err := s.users.IsEmailBanned(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check ban list: %w", err)
	}
	if banned {
		return nil, ErrEmailBanned
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	p := identity.Principal{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  strings.TrimSpace(displayName),
		Role:         identity.RoleMember,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.CreateUser(ctx, p); err != nil {
		return nil, err
	}

	log.Info().Str("user_id", p.ID).Msg("auth: user registered")
	return &p, nil
}

// Login exchanges credentials for a session token. The gate fails closed for
// banned emails and blocked accounts; a blocked principal's existing sessions
// are dropped so an earlier login cannot be ridden past the block.
func (s *Service) Login(ctx context.Context, email, password string) (string, *identity.Principal, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	banned, err := s.users.IsEmailBanned(ctx, email)
	if err != nil {
		return "", nil, fmt.Errorf("check ban list: %w", err)
	}
	if banned {
		return "", nil, ErrEmailBanned
	}

	p, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, accounts.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	if identity.IsBlocked(p, time.Now()) {
		if err := s.sessions.DeleteSessionsForUser(ctx, p.ID); err != nil {
			log.Error().Err(err).Str("user_id", p.ID).Msg("auth: failed to drop sessions for blocked user")
		}
		return "", nil, ErrBlocked
	}

	now := time.Now().UTC()
	sess := Session{
		ID:        uuid.NewString(),
		UserID:    p.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.SaveSession(ctx, sess); err != nil {
		return "", nil, fmt.Errorf("save session: %w", err)
	}

	token, err := s.signToken(sess)
	if err != nil {
		return "", nil, fmt.Errorf("sign session token: %w", err)
	}

	log.Info().Str("user_id", p.ID).Msg("auth: login succeeded")
	return token, p, nil
}

// Logout invalidates the session referenced by the token. Unknown or invalid
// tokens are ignored; logout never fails the caller.
func (s *Service) Logout(ctx context.Context, token string) {
	sess, err := s.parseToken(token)
	if err != nil {
		return
	}
	if err := s.sessions.DeleteSession(ctx, sess.ID); err != nil {
		log.Error().Err(err).Str("session_id", sess.ID).Msg("auth: failed to delete session")
	}
}

// InvalidateUserSessions drops every session for a principal.
func (s *Service) InvalidateUserSessions(ctx context.Context, userID string) error {
	return s.sessions.DeleteSessionsForUser(ctx, userID)
}

// Resolve validates a session token and returns a freshly loaded principal
// snapshot. The session row is the source of truth: revoked or expired
// sessions fail with ErrUnauthenticated even when the token signature is
// valid. A session whose principal row no longer exists is invalidated.
func (s *Service) Resolve(ctx context.Context, token string) (*identity.Principal, *Session, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return nil, nil, ErrUnauthenticated
	}

	sess, err := s.sessions.GetSession(ctx, claims.ID)
	if err != nil {
		return nil, nil, ErrUnauthenticated
	}
	if sess.Expired(time.Now()) {
		_ = s.sessions.DeleteSession(ctx, sess.ID)
		return nil, nil, ErrUnauthenticated
	}

	p, err := s.users.GetUser(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, accounts.ErrUserNotFound) {
			_ = s.sessions.DeleteSession(ctx, sess.ID)
		}
		return nil, nil, ErrUnauthenticated
	}

	return p, sess, nil
}

// Middleware resolves the session cookie to a principal snapshot and stores
// it in the request context. Requests without a valid session pass through
// unauthenticated; enforcement happens downstream.
func (s *Service) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		p, _, err := s.Resolve(r.Context(), cookie.Value)
		if err != nil {
			// Stale cookie: clear it so the client stops sending it.
			http.SetCookie(w, s.ClearedCookie())
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
	})
}

// SessionCookie builds the cookie carrying a session token.
func (s *Service) SessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearedCookie builds an expired cookie that removes the session cookie.
func (s *Service) ClearedCookie() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}

// sessionClaims are the JWT claims for a session token.
type sessionClaims struct {
	jwt.RegisteredClaims
}

func (s *Service) signToken(sess Session) (string, error) {
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID,
			Subject:   sess.UserID,
			IssuedAt:  jwt.NewNumericDate(sess.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *Service) parseToken(token string) (*sessionClaims, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrUnauthenticated
	}
	return &claims, nil
}

package accounts

import (
	"context"
	"errors"

	"tribune/internal/identity"
)

// Store errors.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

// Store defines the persistence interface for principals and ban records.
// Implementations must be safe for concurrent use.
type Store interface {
	CreateUser(ctx context.Context, p identity.Principal) error
	GetUser(ctx context.Context, id string) (*identity.Principal, error)
	GetUserByEmail(ctx context.Context, email string) (*identity.Principal, error)
	ListUsers(ctx context.Context) ([]identity.Principal, error)

	// UpdateUser applies mutate to the stored principal inside a single
	// write transaction. Returning an error from mutate aborts the update.
	UpdateUser(ctx context.Context, id string, mutate func(*identity.Principal) error) error

	// PurgeUser deletes the principal, appends a ban record for its email and
	// drops its sessions, all inside one write transaction. guard is invoked
	// on the freshly re-read row before anything is touched; its error aborts
	// the purge. Returns the principal as it was at deletion time.
	PurgeUser(ctx context.Context, id string, ban identity.BanRecord, guard func(*identity.Principal) error) (*identity.Principal, error)

	// Ban list
	IsEmailBanned(ctx context.Context, email string) (bool, error)
	ListBans(ctx context.Context) ([]identity.BanRecord, error)
}

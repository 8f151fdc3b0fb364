package identity

import "time"

// Role represents a principal's privilege level within the society.
type Role string

const (
	RoleMember       Role = "member"
	RoleMediaManager Role = "media_manager"
	RolePresident    Role = "president"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleMember, RoleMediaManager, RolePresident:
		return true
	}
	return false
}

// Principal represents an authenticated user entity.
//
// Suspended and TimeoutUntil are the persisted two-field representation of the
// account standing. Business logic must never inspect them directly; use
// DeriveStatus to obtain the effective status.
type Principal struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	DisplayName  string     `json:"display_name"`
	Role         Role       `json:"role"`
	Suspended    bool       `json:"suspended"`
	TimeoutUntil *time.Time `json:"timeout_until,omitempty"`
	PasswordHash string     `json:"password_hash"`
	CreatedAt    time.Time  `json:"created_at"`
}

// BanRecord blocks an email address from logging in or signing up again.
// It is created only as a side effect of permanent principal deletion and
// never expires.
type BanRecord struct {
	Email    string    `json:"email"`
	BannedAt time.Time `json:"banned_at"`
	BannedBy string    `json:"banned_by"`
	Reason   string    `json:"reason,omitempty"`
}

package identity

import "errors"

// Policy decision errors. Handlers translate these to HTTP statuses; the
// services return them as values, never as panics.
var (
	// ErrUnauthorized means the actor lacks the role required for the operation.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrProtectedTarget means the target is the protected founding-president
	// account, which no operation may mutate or delete. It takes precedence
	// over ErrUnauthorized.
	ErrProtectedTarget = errors.New("protected target")
)

// Policy is the single decision point for role and protection checks.
// It is a pure function over principal snapshots: callers must pass freshly
// loaded principals and must not cache decisions across requests.
type Policy struct {
	protectedEmail string
}

// NewPolicy creates a Policy. protectedEmail is the address of the founding
// president account that is exempt from all mutation.
func NewPolicy(protectedEmail string) *Policy {
	return &Policy{protectedEmail: protectedEmail}
}

// IsProtected reports whether the principal is the protected identity.
func (p *Policy) IsProtected(target *Principal) bool {
	return p.protectedEmail != "" && target != nil && target.Email == p.protectedEmail
}

// CanModerateContent reports whether the actor may hide or unhide content.
func (p *Policy) CanModerateContent(actor *Principal) bool {
	if actor == nil {
		return false
	}
	return actor.Role == RoleMediaManager || actor.Role == RolePresident
}

// CanManageUsers reports whether the actor may alter roles, suspend, time out,
// restore, or permanently delete principals.
func (p *Policy) CanManageUsers(actor *Principal) bool {
	return actor != nil && actor.Role == RolePresident
}

// AuthorizeUserMutation decides whether actor may perform an account-level
// mutation on target. The protection check runs before the role check so a
// protected target is always reported as such, regardless of actor role.
func (p *Policy) AuthorizeUserMutation(actor, target *Principal) error {
	if p.IsProtected(target) {
		return ErrProtectedTarget
	}
	if !p.CanManageUsers(actor) {
		return ErrUnauthorized
	}
	return nil
}

// AuthorizeContentMutation decides whether actor may perform an editorial
// visibility change on content.
func (p *Policy) AuthorizeContentMutation(actor *Principal) error {
	if !p.CanModerateContent(actor) {
		return ErrUnauthorized
	}
	return nil
}

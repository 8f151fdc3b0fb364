package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tribune/internal/identity"
	"tribune/internal/moderation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrInvalidTimeout is returned for timeout durations of zero or less.
var ErrInvalidTimeout = errors.New("timeout minutes must be positive")

// AuditLogger records administrative actions. Satisfied by moderation.Store.
type AuditLogger interface {
	LogAction(ctx context.Context, entry moderation.AuditEntry) error
}

// Hooks are post-commit callbacks for account transitions.
type Hooks struct {
	// OnDelete fires after a principal has been permanently deleted and its
	// ban record written. Used for best-effort media cleanup and notification.
	OnDelete func(p identity.Principal)
}

// Service implements the account status state machine. Every mutation loads a
// fresh target snapshot and routes the decision through the identity policy;
// nothing is cached between requests.
type Service struct {
	store  Store
	policy *identity.Policy
	audit  AuditLogger
	hooks  Hooks
}

// NewService creates an accounts Service.
func NewService(store Store, policy *identity.Policy) *Service {
	return &Service{store: store, policy: policy}
}

// SetAudit configures the audit log sink.
func (s *Service) SetAudit(a AuditLogger) {
	s.audit = a
}

// SetHooks configures post-commit hooks.
func (s *Service) SetHooks(h Hooks) {
	s.hooks = h
}

// Suspend permanently suspends the target account. Any active timeout is
// cleared; suspension without a timeout is the permanent marker.
func (s *Service) Suspend(ctx context.Context, actor *identity.Principal, targetID string) error {
	err := s.mutateGuarded(ctx, actor, targetID, func(p *identity.Principal) error {
		p.Suspended = true
		p.TimeoutUntil = nil
		return nil
	})
	if err != nil {
		return err
	}

	s.logAction(ctx, moderation.AuditActionSuspendUser, actor.ID, targetID, "")
	log.Info().Str("target_id", targetID).Str("by", actor.ID).Msg("accounts: user suspended")
	return nil
}

// Timeout blocks the target account until now+minutes. The suspended marker is
// set alongside the timestamp; the effective state is always derived from both
// fields together, so the marker alone never blocks a user whose timeout has
// passed.
func (s *Service) Timeout(ctx context.Context, actor *identity.Principal, targetID string, minutes int) error {
	if minutes <= 0 {
		return ErrInvalidTimeout
	}

	until := time.Now().Add(time.Duration(minutes) * time.Minute)
	err := s.mutateGuarded(ctx, actor, targetID, func(p *identity.Principal) error {
		p.Suspended = true
		p.TimeoutUntil = &until
		return nil
	})
	if err != nil {
		return err
	}

	s.logAction(ctx, moderation.AuditActionTimeoutUser, actor.ID, targetID, fmt.Sprintf("%d minutes", minutes))
	log.Info().
		Str("target_id", targetID).
		Str("by", actor.ID).
		Time("until", until).
		Msg("accounts: user timed out")
	return nil
}

// Restore returns the target account to normal standing. Rejected for
// protected targets even though they should never be in a non-normal state.
func (s *Service) Restore(ctx context.Context, actor *identity.Principal, targetID string) error {
	err := s.mutateGuarded(ctx, actor, targetID, func(p *identity.Principal) error {
		p.Suspended = false
		p.TimeoutUntil = nil
		return nil
	})
	if err != nil {
		return err
	}

	s.logAction(ctx, moderation.AuditActionRestoreUser, actor.ID, targetID, "")
	log.Info().Str("target_id", targetID).Str("by", actor.ID).Msg("accounts: user restored")
	return nil
}

// UpdateRole changes the target's role. President only; protected targets are
// rejected before the role check.
func (s *Service) UpdateRole(ctx context.Context, actor *identity.Principal, targetID string, role identity.Role) error {
	if !role.Valid() {
		return fmt.Errorf("unknown role %q", role)
	}

	err := s.mutateGuarded(ctx, actor, targetID, func(p *identity.Principal) error {
		p.Role = role
		return nil
	})
	if err != nil {
		return err
	}

	s.logAction(ctx, moderation.AuditActionUpdateRole, actor.ID, targetID, string(role))
	log.Info().
		Str("target_id", targetID).
		Str("by", actor.ID).
		Str("role", string(role)).
		Msg("accounts: role updated")
	return nil
}

// PermanentlyDelete removes the principal, writes a ban record for its email
// and drops its sessions in a single store transaction. The protection check
// is re-verified on the re-read row inside that transaction, so no race can
// slip a delete past a stale snapshot.
func (s *Service) PermanentlyDelete(ctx context.Context, actor *identity.Principal, targetID string) error {
	target, err := s.store.GetUser(ctx, targetID)
	if err != nil {
		return err
	}
	if err := s.policy.AuthorizeUserMutation(actor, target); err != nil {
		return err
	}

	ban := identity.BanRecord{
		BannedAt: time.Now().UTC(),
		BannedBy: actor.ID,
	}

	deleted, err := s.store.PurgeUser(ctx, targetID, ban, func(p *identity.Principal) error {
		return s.policy.AuthorizeUserMutation(actor, p)
	})
	if err != nil {
		return err
	}

	s.logAction(ctx, moderation.AuditActionDeleteUser, actor.ID, targetID, deleted.Email)
	log.Warn().
		Str("target_id", targetID).
		Str("email", deleted.Email).
		Str("by", actor.ID).
		Msg("accounts: user permanently deleted and email banned")

	if s.hooks.OnDelete != nil {
		s.hooks.OnDelete(*deleted)
	}

	return nil
}

// IsBlocked loads a fresh snapshot and reports whether the principal's
// effective status forbids access right now.
func (s *Service) IsBlocked(ctx context.Context, id string) (bool, error) {
	p, err := s.store.GetUser(ctx, id)
	if err != nil {
		return false, err
	}
	return identity.IsBlocked(p, time.Now()), nil
}

// mutateGuarded authorizes actor against a fresh target snapshot, then applies
// the mutation with the protection check repeated inside the write so the row
// observed by the transaction is the row the decision was made on.
func (s *Service) mutateGuarded(ctx context.Context, actor *identity.Principal, targetID string, mutate func(*identity.Principal) error) error {
	target, err := s.store.GetUser(ctx, targetID)
	if err != nil {
		return err
	}
	if err := s.policy.AuthorizeUserMutation(actor, target); err != nil {
		return err
	}

	return s.store.UpdateUser(ctx, targetID, func(p *identity.Principal) error {
		if err := s.policy.AuthorizeUserMutation(actor, p); err != nil {
			return err
		}
		return mutate(p)
	})
}

func (s *Service) logAction(ctx context.Context, action moderation.AuditAction, actorID, targetID, reason string) {
	if s.audit == nil {
		return
	}
	entry := moderation.AuditEntry{
		ID:        uuid.NewString(),
		Action:    action,
		ActorID:   actorID,
		TargetID:  targetID,
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	}
	if err := s.audit.LogAction(ctx, entry); err != nil {
		log.Error().Err(err).Str("action", string(action)).Msg("accounts: failed to log action")
	}
}

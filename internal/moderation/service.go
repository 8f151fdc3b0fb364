package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tribune/internal/identity"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Thresholds for report handling.
const (
	// ReportThreshold is the number of distinct reporters on a single voice
	// before it is automatically placed under review.
	ReportThreshold = 3

	// ReportRateLimitPerHour is the maximum reports a principal can submit per hour.
	ReportRateLimitPerHour = 10

	// MaxReportReasonLength is the maximum length of a report reason.
	MaxReportReasonLength = 500
)

// AutomodActor is the audit-log actor for threshold-triggered transitions.
const AutomodActor = "automod"

// Service errors in addition to the store and policy errors.
var (
	ErrSelfReport  = errors.New("cannot report own voice")
	ErrRateLimited = errors.New("report rate limit exceeded")
)

// MediaReleaser deletes stored media by path. Failures are logged, not fatal.
type MediaReleaser interface {
	Delete(ctx context.Context, path string) error
}

// Hooks are post-commit callbacks emitted by state transitions. They must not
// block and their outcome never affects the transition that fired them.
type Hooks struct {
	// OnAutoFlag fires after a voice enters review via the report threshold.
	OnAutoFlag func(v Voice, reportCount int)

	// OnRemove fires after a voice is permanently removed.
	OnRemove func(v Voice)
}

// Service implements the content moderation state machine and the report
// aggregator. All decisions go through the identity policy; the service holds
// no authorization state of its own.
type Service struct {
	store  Store
	policy *identity.Policy
	media  MediaReleaser
	hooks  Hooks
}

// NewService creates a moderation Service.
func NewService(store Store, policy *identity.Policy) *Service {
	return &Service{store: store, policy: policy}
}

// SetMedia configures the service to release stored media on removal.
func (s *Service) SetMedia(m MediaReleaser) {
	s.media = m
}

// SetHooks configures post-commit hooks.
func (s *Service) SetHooks(h Hooks) {
	s.hooks = h
}

// Publish creates a new voice for the author. Voices are public immediately;
// there is no pre-publication queue.
func (s *Service) Publish(ctx context.Context, author *identity.Principal, title, body, mediaPath string) (*Voice, error) {
	v := Voice{
		ID:        uuid.NewString(),
		AuthorID:  author.ID,
		Title:     strings.TrimSpace(title),
		Body:      body,
		State:     VoiceStateNormal,
		MediaPath: mediaPath,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.CreateVoice(ctx, v); err != nil {
		return nil, fmt.Errorf("create voice: %w", err)
	}

	log.Info().
		Str("voice_id", v.ID).
		Str("author_id", v.AuthorID).
		Msg("moderation: voice published")

	return &v, nil
}

// SubmitReport records an abuse report and triggers the auto-flag transition
// once the threshold is reached. Duplicate (reporter, voice) submissions
// return ErrAlreadyReported without storing a second report.
//
// The count-then-flag sequence is deliberately not atomic with the insert;
// under concurrent submissions the flag may fire one report late, which is
// acceptable for an abuse heuristic. AutoFlag itself is idempotent.
func (s *Service) SubmitReport(ctx context.Context, reporter *identity.Principal, voiceID, reason string) error {
	voice, err := s.store.GetVoice(ctx, voiceID)
	if err != nil {
		return err
	}

	if voice.AuthorID == reporter.ID {
		return ErrSelfReport
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "No reason provided"
	}
	if len(reason) > MaxReportReasonLength {
		reason = reason[:MaxReportReasonLength]
	}

	oneHourAgo := time.Now().Add(-1 * time.Hour)
	recent, err := s.store.CountReportsFromSince(ctx, reporter.ID, oneHourAgo)
	if err != nil {
		return fmt.Errorf("check rate limit: %w", err)
	}
	if recent >= ReportRateLimitPerHour {
		return ErrRateLimited
	}

	report := Report{
		ID:         uuid.NewString(),
		VoiceID:    voiceID,
		ReporterID: reporter.ID,
		Reason:     reason,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.store.CreateReport(ctx, report); err != nil {
		// Duplicate reports surface from the store's uniqueness constraint
		// and pass straight through to the caller.
		return err
	}

	log.Info().
		Str("report_id", report.ID).
		Str("voice_id", voiceID).
		Str("reporter_id", reporter.ID).
		Msg("moderation: report created")

	count, err := s.store.CountReportsForVoice(ctx, voiceID)
	if err != nil {
		log.Error().Err(err).Str("voice_id", voiceID).Msg("moderation: failed to count reports")
		return nil
	}

	if count >= ReportThreshold {
		s.autoFlag(ctx, *voice, count)
	}

	return nil
}

// autoFlag moves a voice into review and hides it. It is a no-op when the
// voice is already under review, which absorbs duplicate threshold crossings.
func (s *Service) autoFlag(ctx context.Context, voice Voice, reportCount int) {
	if voice.State == VoiceStateUnderReview {
		return
	}

	// Re-read so a concurrent flag is observed.
	current, err := s.store.GetVoice(ctx, voice.ID)
	if err != nil {
		log.Error().Err(err).Str("voice_id", voice.ID).Msg("moderation: automod re-read failed")
		return
	}
	if current.State == VoiceStateUnderReview {
		return
	}

	if err := s.store.SetVoiceState(ctx, voice.ID, VoiceStateUnderReview); err != nil {
		log.Error().Err(err).Str("voice_id", voice.ID).Msg("moderation: automod failed to flag voice")
		return
	}
	if err := s.store.SetVoiceHidden(ctx, voice.ID, true); err != nil {
		log.Error().Err(err).Str("voice_id", voice.ID).Msg("moderation: automod failed to hide voice")
	}

	s.logAction(ctx, AuditEntry{
		Action:   AuditActionAutoFlag,
		ActorID:  AutomodActor,
		TargetID: voice.ID,
		Reason:   fmt.Sprintf("%d reports on this voice", reportCount),
		AutoMod:  true,
	})

	log.Warn().
		Str("voice_id", voice.ID).
		Str("author_id", voice.AuthorID).
		Int("reports", reportCount).
		Msg("moderation: automod triggered - voice under review")

	if s.hooks.OnAutoFlag != nil {
		flagged := voice
		flagged.State = VoiceStateUnderReview
		flagged.Hidden = true
		s.hooks.OnAutoFlag(flagged, reportCount)
	}
}

// Restore moves a voice out of review and deletes all reports against it, so
// the threshold counts from zero again. President only. The editorial hidden
// flag is left exactly as it was.
func (s *Service) Restore(ctx context.Context, actor *identity.Principal, voiceID string) error {
	if !s.policy.CanManageUsers(actor) {
		return identity.ErrUnauthorized
	}

	if _, err := s.store.GetVoice(ctx, voiceID); err != nil {
		return err
	}

	if err := s.store.SetVoiceState(ctx, voiceID, VoiceStateNormal); err != nil {
		return fmt.Errorf("restore voice: %w", err)
	}
	if err := s.store.DeleteReportsForVoice(ctx, voiceID); err != nil {
		return fmt.Errorf("clear reports: %w", err)
	}

	s.logAction(ctx, AuditEntry{
		Action:   AuditActionRestoreVoice,
		ActorID:  actor.ID,
		TargetID: voiceID,
	})

	log.Info().
		Str("voice_id", voiceID).
		Str("by", actor.ID).
		Msg("moderation: voice restored, reports cleared")

	return nil
}

// Remove permanently deletes a voice. Permitted for the president and for the
// voice's own author regardless of role. Associated media is released best
// effort after the row is gone.
func (s *Service) Remove(ctx context.Context, actor *identity.Principal, voiceID string) error {
	voice, err := s.store.GetVoice(ctx, voiceID)
	if err != nil {
		return err
	}

	if !s.policy.CanManageUsers(actor) && actor.ID != voice.AuthorID {
		return identity.ErrUnauthorized
	}

	if err := s.store.DeleteVoice(ctx, voiceID); err != nil {
		return fmt.Errorf("delete voice: %w", err)
	}
	if err := s.store.DeleteReportsForVoice(ctx, voiceID); err != nil {
		log.Error().Err(err).Str("voice_id", voiceID).Msg("moderation: failed to clear reports for removed voice")
	}

	s.releaseMedia(ctx, *voice)

	s.logAction(ctx, AuditEntry{
		Action:   AuditActionRemoveVoice,
		ActorID:  actor.ID,
		TargetID: voiceID,
	})

	log.Info().
		Str("voice_id", voiceID).
		Str("by", actor.ID).
		Msg("moderation: voice removed")

	if s.hooks.OnRemove != nil {
		s.hooks.OnRemove(*voice)
	}

	return nil
}

// SetHidden flips the editorial visibility flag. Media managers and the
// president only. Independent of the review state machine.
func (s *Service) SetHidden(ctx context.Context, actor *identity.Principal, voiceID string, hidden bool) error {
	if err := s.policy.AuthorizeContentMutation(actor); err != nil {
		return err
	}

	if _, err := s.store.GetVoice(ctx, voiceID); err != nil {
		return err
	}

	if err := s.store.SetVoiceHidden(ctx, voiceID, hidden); err != nil {
		return fmt.Errorf("set hidden: %w", err)
	}

	action := AuditActionHideVoice
	if !hidden {
		action = AuditActionUnhideVoice
	}
	s.logAction(ctx, AuditEntry{
		Action:   action,
		ActorID:  actor.ID,
		TargetID: voiceID,
	})

	log.Info().
		Str("voice_id", voiceID).
		Str("by", actor.ID).
		Bool("hidden", hidden).
		Msg("moderation: voice visibility changed")

	return nil
}

// ReleaseMediaForAuthor best-effort deletes stored media for all of an
// author's voices. Used when an account is permanently deleted.
func (s *Service) ReleaseMediaForAuthor(ctx context.Context, authorID string) {
	voices, err := s.store.ListVoices(ctx)
	if err != nil {
		log.Error().Err(err).Str("author_id", authorID).Msg("moderation: failed to list voices for media release")
		return
	}
	for _, v := range voices {
		if v.AuthorID == authorID {
			s.releaseMedia(ctx, v)
		}
	}
}

func (s *Service) releaseMedia(ctx context.Context, v Voice) {
	if s.media == nil || v.MediaPath == "" {
		return
	}
	if err := s.media.Delete(ctx, v.MediaPath); err != nil {
		log.Error().Err(err).
			Str("voice_id", v.ID).
			Str("path", v.MediaPath).
			Msg("moderation: failed to release media")
	}
}

// logAction writes an audit entry, filling ID and timestamp. Audit failures
// never fail the action they describe.
func (s *Service) logAction(ctx context.Context, entry AuditEntry) {
	entry.ID = uuid.NewString()
	entry.Timestamp = time.Now().UTC()
	if err := s.store.LogAction(ctx, entry); err != nil {
		log.Error().Err(err).Str("action", string(entry.Action)).Msg("moderation: failed to log action")
	}
}

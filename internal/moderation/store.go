package moderation

import (
	"context"
	"errors"
	"time"
)

// Store errors returned by implementations. ErrAlreadyReported is detected by
// the uniqueness constraint on (voice, reporter), not by a pre-check, and is
// an expected outcome rather than a failure.
var (
	ErrAlreadyReported = errors.New("already reported")
	ErrVoiceNotFound   = errors.New("voice not found")
)

// Store defines the persistence interface for voices, reports and the audit
// log. Implementations must be safe for concurrent use.
type Store interface {
	// Voices
	CreateVoice(ctx context.Context, v Voice) error
	GetVoice(ctx context.Context, id string) (*Voice, error)
	ListVoices(ctx context.Context) ([]Voice, error)
	SetVoiceState(ctx context.Context, id string, state VoiceState) error
	SetVoiceHidden(ctx context.Context, id string, hidden bool) error
	DeleteVoice(ctx context.Context, id string) error

	// Reports
	CreateReport(ctx context.Context, r Report) error
	CountReportsForVoice(ctx context.Context, voiceID string) (int, error)
	ListReportsForVoice(ctx context.Context, voiceID string) ([]Report, error)
	DeleteReportsForVoice(ctx context.Context, voiceID string) error
	CountReportsFromSince(ctx context.Context, reporterID string, since time.Time) (int, error)

	// Audit log
	LogAction(ctx context.Context, entry AuditEntry) error
	ListAuditLog(ctx context.Context, limit int) ([]AuditEntry, error)
}

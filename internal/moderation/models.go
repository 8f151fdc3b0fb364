package moderation

import "time"

// VoiceState represents the automatic review status of a voice.
// It is distinct from the editorial hidden flag.
type VoiceState string

const (
	// VoiceStateNormal is the default state for published voices.
	VoiceStateNormal VoiceState = "normal"

	// VoiceStateUnderReview is entered automatically when the report
	// threshold is reached. It is never set directly by a human.
	VoiceStateUnderReview VoiceState = "under_review"
)

// Voice is a member-authored post subject to moderation.
//
// State and Hidden are independent axes: an editor can hide a voice without it
// being under review, and restoring a voice from review does not touch the
// hidden flag.
type Voice struct {
	ID        string     `json:"id"`
	AuthorID  string     `json:"author_id"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	State     VoiceState `json:"state"`
	Hidden    bool       `json:"hidden"`
	MediaPath string     `json:"media_path,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Report is an abuse report filed by a principal against a voice.
// At most one report per (reporter, voice) pair is stored.
type Report struct {
	ID         string    `json:"id"`
	VoiceID    string    `json:"voice_id"`
	ReporterID string    `json:"reporter_id"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
}

// AuditAction represents a type of moderation or administrative action.
type AuditAction string

const (
	AuditActionAutoFlag     AuditAction = "auto_flag"
	AuditActionRestoreVoice AuditAction = "restore_voice"
	AuditActionRemoveVoice  AuditAction = "remove_voice"
	AuditActionHideVoice    AuditAction = "hide_voice"
	AuditActionUnhideVoice  AuditAction = "unhide_voice"
	AuditActionSuspendUser  AuditAction = "suspend_user"
	AuditActionTimeoutUser  AuditAction = "timeout_user"
	AuditActionRestoreUser  AuditAction = "restore_user"
	AuditActionDeleteUser   AuditAction = "delete_user"
	AuditActionUpdateRole   AuditAction = "update_role"
)

// AuditEntry represents a logged moderation action.
// ActorID is "automod" for threshold-triggered transitions.
type AuditEntry struct {
	ID        string      `json:"id"`
	Action    AuditAction `json:"action"`
	ActorID   string      `json:"actor_id"`
	TargetID  string      `json:"target_id"`
	Reason    string      `json:"reason,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	AutoMod   bool        `json:"auto_mod"`
}

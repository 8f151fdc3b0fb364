package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"tribune/internal/moderation"
)

// ModerationStore implements moderation.Store using SQLite.
type ModerationStore struct {
	db *sql.DB
}

// NewModerationStore creates a ModerationStore backed by the given database.
// The database must already have the schema applied (see Open).
func NewModerationStore(db *sql.DB) *ModerationStore {
	return &ModerationStore{db: db}
}

// Ensure ModerationStore implements the interface at compile time.
var _ moderation.Store = (*ModerationStore)(nil)

// ========== Voices ==========

func (s *ModerationStore) CreateVoice(ctx context.Context, v moderation.Voice) error {
	hidden := 0
	if v.Hidden {
		hidden = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO voices (id, author_id, title, body, state, hidden, media_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, v.ID, v.AuthorID, v.Title, v.Body, string(v.State), hidden, v.MediaPath,
		v.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("create voice: %w", err)
	}
	return nil
}

func (s *ModerationStore) GetVoice(ctx context.Context, id string) (*moderation.Voice, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, author_id, title, body, state, hidden, media_path, created_at
		FROM voices WHERE id = ?
	`, id)
	v, err := scanVoice(row)
	if err == sql.ErrNoRows {
		return nil, moderation.ErrVoiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (s *ModerationStore) ListVoices(ctx context.Context) ([]moderation.Voice, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, author_id, title, body, state, hidden, media_path, created_at
		FROM voices ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var voices []moderation.Voice
	for rows.Next() {
		v, err := scanVoice(rows)
		if err != nil {
			continue
		}
		voices = append(voices, *v)
	}
	return voices, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVoice(row scanner) (*moderation.Voice, error) {
	var v moderation.Voice
	var createdAtStr string
	var hidden int
	if err := row.Scan(&v.ID, &v.AuthorID, &v.Title, &v.Body, &v.State, &hidden,
		&v.MediaPath, &createdAtStr); err != nil {
		return nil, err
	}
	v.Hidden = hidden == 1
	v.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAtStr)
	return &v, nil
}

func (s *ModerationStore) SetVoiceState(ctx context.Context, id string, state moderation.VoiceState) error {
	res, err := s.db.ExecContext(ctx, `UPDATE voices SET state = ? WHERE id = ?`, string(state), id)
	if err != nil {
		return fmt.Errorf("set voice state: %w", err)
	}
	return checkVoiceAffected(res)
}

func (s *ModerationStore) SetVoiceHidden(ctx context.Context, id string, hidden bool) error {
	h := 0
	if hidden {
		h = 1
	}
	res, err := s.db.ExecContext(ctx, `UPDATE voices SET hidden = ? WHERE id = ?`, h, id)
	if err != nil {
		return fmt.Errorf("set voice hidden: %w", err)
	}
	return checkVoiceAffected(res)
}

func (s *ModerationStore) DeleteVoice(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM voices WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete voice: %w", err)
	}
	return checkVoiceAffected(res)
}

func checkVoiceAffected(res sql.Result) error {
	n, _ := res.RowsAffected()
	if n == 0 {
		return moderation.ErrVoiceNotFound
	}
	return nil
}

// ========== Reports ==========

func (s *ModerationStore) CreateReport(ctx context.Context, r moderation.Report) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reports (id, voice_id, reporter_id, reason, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, r.ID, r.VoiceID, r.ReporterID, r.Reason, r.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return moderation.ErrAlreadyReported
		}
		return fmt.Errorf("create report: %w", err)
	}
	return nil
}

func (s *ModerationStore) CountReportsForVoice(ctx context.Context, voiceID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reports WHERE voice_id = ?`, voiceID).Scan(&count)
	return count, err
}

func (s *ModerationStore) ListReportsForVoice(ctx context.Context, voiceID string) ([]moderation.Report, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, voice_id, reporter_id, reason, created_at
		FROM reports WHERE voice_id = ? ORDER BY created_at DESC
	`, voiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []moderation.Report
	for rows.Next() {
		var r moderation.Report
		var createdAtStr string
		if err := rows.Scan(&r.ID, &r.VoiceID, &r.ReporterID, &r.Reason, &createdAtStr); err != nil {
			continue
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAtStr)
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

func (s *ModerationStore) DeleteReportsForVoice(ctx context.Context, voiceID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM reports WHERE voice_id = ?`, voiceID)
	return err
}

func (s *ModerationStore) CountReportsFromSince(ctx context.Context, reporterID string, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM reports WHERE reporter_id = ? AND created_at > ?
	`, reporterID, since.Format(time.RFC3339Nano)).Scan(&count)
	return count, err
}

// ========== Audit Log ==========

func (s *ModerationStore) LogAction(ctx context.Context, entry moderation.AuditEntry) error {
	autoMod := 0
	if entry.AutoMod {
		autoMod = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_log (id, action, actor_id, target_id, reason, timestamp, auto_mod)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, string(entry.Action), entry.ActorID, entry.TargetID, entry.Reason,
		entry.Timestamp.Format(time.RFC3339Nano), autoMod)
	if err != nil {
		return fmt.Errorf("log action: %w", err)
	}
	return nil
}

func (s *ModerationStore) ListAuditLog(ctx context.Context, limit int) ([]moderation.AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, action, actor_id, target_id, reason, timestamp, auto_mod
		FROM audit_log ORDER BY timestamp DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []moderation.AuditEntry
	for rows.Next() {
		var e moderation.AuditEntry
		var timestampStr string
		var autoMod int
		if err := rows.Scan(&e.ID, &e.Action, &e.ActorID, &e.TargetID, &e.Reason,
			&timestampStr, &autoMod); err != nil {
			continue
		}
		e.Timestamp, _ = time.Parse(time.RFC3339Nano, timestampStr)
		e.AutoMod = autoMod == 1
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

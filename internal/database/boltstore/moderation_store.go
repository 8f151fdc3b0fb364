package boltstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tribune/internal/moderation"

	bolt "go.etcd.io/bbolt"
)

// ModerationStore provides persistent storage for voices, reports and the
// audit log.
type ModerationStore struct {
	db *bolt.DB
}

// Ensure ModerationStore implements the interface at compile time.
var _ moderation.Store = (*ModerationStore)(nil)

// reportKey builds the "voiceID:reporterID" composite key. Keying reports this
// way makes the one-report-per-reporter rule a storage-level uniqueness
// constraint and gives prefix scans per voice for free.
func reportKey(voiceID, reporterID string) []byte {
	return []byte(voiceID + ":" + reporterID)
}

// CreateVoice stores a new voice.
func (s *ModerationStore) CreateVoice(ctx context.Context, v moderation.Voice) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal voice: %w", err)
		}
		return tx.Bucket(BucketVoices).Put([]byte(v.ID), data)
	})
}

// GetVoice retrieves a voice by id.
func (s *ModerationStore) GetVoice(ctx context.Context, id string) (*moderation.Voice, error) {
	var voice *moderation.Voice

	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(BucketVoices).Get([]byte(id))
		if data == nil {
			return moderation.ErrVoiceNotFound
		}

		voice = &moderation.Voice{}
		return json.Unmarshal(data, voice)
	})
	if err != nil {
		return nil, err
	}

	return voice, nil
}

// ListVoices returns all voices regardless of state.
func (s *ModerationStore) ListVoices(ctx context.Context) ([]moderation.Voice, error) {
	var voices []moderation.Voice

	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(BucketVoices).ForEach(func(k, v []byte) error {
			var voice moderation.Voice
			if err := json.Unmarshal(v, &voice); err != nil {
				return nil // Skip malformed entries
			}
			voices = append(voices, voice)
			return nil
		})
	})

	return voices, err
}

// SetVoiceState updates only the review state of a voice.
func (s *ModerationStore) SetVoiceState(ctx context.Context, id string, state moderation.VoiceState) error {
	return s.updateVoice(id, func(v *moderation.Voice) {
		v.State = state
	})
}

// SetVoiceHidden updates only the editorial hidden flag of a voice.
func (s *ModerationStore) SetVoiceHidden(ctx context.Context, id string, hidden bool) error {
	return s.updateVoice(id, func(v *moderation.Voice) {
		v.Hidden = hidden
	})
}

func (s *ModerationStore) updateVoice(id string, mutate func(*moderation.Voice)) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketVoices)

		data := bucket.Get([]byte(id))
		if data == nil {
			return moderation.ErrVoiceNotFound
		}

		var v moderation.Voice
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("failed to unmarshal voice: %w", err)
		}

		mutate(&v)

		newData, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal voice: %w", err)
		}
		return bucket.Put([]byte(id), newData)
	})
}

// DeleteVoice removes a voice row.
func (s *ModerationStore) DeleteVoice(ctx context.Context, id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(BucketVoices).Get([]byte(id)) == nil {
			return moderation.ErrVoiceNotFound
		}
		return tx.Bucket(BucketVoices).Delete([]byte(id))
	})
}

// CreateReport stores a new report. The composite key makes duplicates a
// uniqueness violation, surfaced as moderation.ErrAlreadyReported.
func (s *ModerationStore) CreateReport(ctx context.Context, r moderation.Report) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketReports)

		key := reportKey(r.VoiceID, r.ReporterID)
		if bucket.Get(key) != nil {
			return moderation.ErrAlreadyReported
		}

		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		return bucket.Put(key, data)
	})
}

// CountReportsForVoice returns the number of distinct reporters for a voice.
func (s *ModerationStore) CountReportsForVoice(ctx context.Context, voiceID string) (int, error) {
	var count int

	err := s.db.View(func(tx *bolt.Tx) error {
		cursor := tx.Bucket(BucketReports).Cursor()
		prefix := []byte(voiceID + ":")

		for k, _ := cursor.Seek(prefix); k != nil && hasPrefix(k, prefix); k, _ = cursor.Next() {
			count++
		}

		return nil
	})

	return count, err
}

// ListReportsForVoice returns all reports filed against a voice.
func (s *ModerationStore) ListReportsForVoice(ctx context.Context, voiceID string) ([]moderation.Report, error) {
	var reports []moderation.Report

	err := s.db.View(func(tx *bolt.Tx) error {
		cursor := tx.Bucket(BucketReports).Cursor()
		prefix := []byte(voiceID + ":")

		for k, v := cursor.Seek(prefix); k != nil && hasPrefix(k, prefix); k, v = cursor.Next() {
			var r moderation.Report
			if err := json.Unmarshal(v, &r); err != nil {
				continue
			}
			reports = append(reports, r)
		}

		return nil
	})

	return reports, err
}

// DeleteReportsForVoice bulk-deletes every report against a voice, resetting
// the threshold cycle.
func (s *ModerationStore) DeleteReportsForVoice(ctx context.Context, voiceID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketReports)
		prefix := []byte(voiceID + ":")

		// Collect keys to delete (can't delete while iterating)
		var keys [][]byte
		c := bucket.Cursor()
		for k, _ := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, _ = c.Next() {
			keys = append(keys, append([]byte{}, k...))
		}

		for _, k := range keys {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}

		return nil
	})
}

// CountReportsFromSince counts reports submitted by a reporter after a given
// time. Used for rate limiting report submissions.
func (s *ModerationStore) CountReportsFromSince(ctx context.Context, reporterID string, since time.Time) (int, error) {
	var count int

	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(BucketReports).ForEach(func(k, v []byte) error {
			var r moderation.Report
			if err := json.Unmarshal(v, &r); err != nil {
				return nil // Skip malformed entries
			}
			if r.ReporterID == reporterID && r.CreatedAt.After(since) {
				count++
			}
			return nil
		})
	})

	return count, err
}

// LogAction stores a moderation action in the audit log.
func (s *ModerationStore) LogAction(ctx context.Context, entry moderation.AuditEntry) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("failed to marshal audit entry: %w", err)
		}

		// Use timestamp-based key for chronological ordering
		// Format: timestamp:id for uniqueness
		key := fmt.Sprintf("%d:%s", entry.Timestamp.UnixNano(), entry.ID)

		return tx.Bucket(BucketAuditLog).Put([]byte(key), data)
	})
}

// ListAuditLog returns the most recent audit log entries.
// Entries are returned in reverse chronological order (newest first).
func (s *ModerationStore) ListAuditLog(ctx context.Context, limit int) ([]moderation.AuditEntry, error) {
	var entries []moderation.AuditEntry

	err := s.db.View(func(tx *bolt.Tx) error {
		cursor := tx.Bucket(BucketAuditLog).Cursor()

		for k, v := cursor.Last(); k != nil && len(entries) < limit; k, v = cursor.Prev() {
			var entry moderation.AuditEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				continue
			}
			entries = append(entries, entry)
		}

		return nil
	})

	return entries, err
}

package boltstore

import (
	"context"
	"encoding/json"
	"fmt"

	"tribune/internal/auth"

	bolt "go.etcd.io/bbolt"
)

// SessionStore persists login sessions so they survive server restarts and
// can be revoked server-side when an account is blocked or deleted.
type SessionStore struct {
	db *bolt.DB
}

// Ensure SessionStore implements the interface at compile time.
var _ auth.SessionStore = (*SessionStore)(nil)

// userSessionKey generates the index key "userID:sessionID".
func userSessionKey(userID, sessionID string) []byte {
	return []byte(userID + ":" + sessionID)
}

// SaveSession persists a session (upsert operation).
func (s *SessionStore) SaveSession(ctx context.Context, sess auth.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(BucketSessions).Put([]byte(sess.ID), data); err != nil {
			return err
		}
		return tx.Bucket(BucketSessionsByUser).Put(userSessionKey(sess.UserID, sess.ID), []byte(sess.ID))
	})
}

// GetSession retrieves a session by id. Returns auth.ErrSessionNotFound if it
// does not exist.
func (s *SessionStore) GetSession(ctx context.Context, id string) (*auth.Session, error) {
	var sess auth.Session

	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(BucketSessions).Get([]byte(id))
		if data == nil {
			return auth.ErrSessionNotFound
		}
		return json.Unmarshal(data, &sess)
	})
	if err != nil {
		return nil, err
	}

	return &sess, nil
}

// DeleteSession removes a session by id.
func (s *SessionStore) DeleteSession(ctx context.Context, id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data := tx.Bucket(BucketSessions).Get([]byte(id))
		if data == nil {
			return nil
		}

		var sess auth.Session
		if err := json.Unmarshal(data, &sess); err == nil {
			_ = tx.Bucket(BucketSessionsByUser).Delete(userSessionKey(sess.UserID, sess.ID))
		}

		return tx.Bucket(BucketSessions).Delete([]byte(id))
	})
}

// DeleteSessionsForUser removes all sessions for a principal. Used to force
// sign-out when an account is blocked or deleted.
func (s *SessionStore) DeleteSessionsForUser(ctx context.Context, userID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return deleteSessionsForUser(tx, userID)
	})
}

// deleteSessionsForUser drops every session belonging to userID inside an
// existing write transaction. Shared with UserStore.PurgeUser.
func deleteSessionsForUser(tx *bolt.Tx, userID string) error {
	index := tx.Bucket(BucketSessionsByUser)
	sessions := tx.Bucket(BucketSessions)

	prefix := []byte(userID + ":")

	// Collect keys to delete (can't delete while iterating)
	var indexKeys [][]byte
	var sessionIDs [][]byte
	c := index.Cursor()
	for k, v := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, v = c.Next() {
		indexKeys = append(indexKeys, append([]byte{}, k...))
		sessionIDs = append(sessionIDs, append([]byte{}, v...))
	}

	for i := range indexKeys {
		if err := index.Delete(indexKeys[i]); err != nil {
			return err
		}
		if err := sessions.Delete(sessionIDs[i]); err != nil {
			return err
		}
	}

	return nil
}

// Package boltstore provides persistent storage using BoltDB (bbolt).
// It implements the accounts, moderation, auth session and events store
// interfaces behind a single database file.
package boltstore

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket names for organizing data
var (
	// BucketUsers stores principals keyed by id
	BucketUsers = []byte("users")

	// BucketUsersByEmail indexes principal ids by email
	BucketUsersByEmail = []byte("users_by_email")

	// BucketBans stores ban records keyed by email
	BucketBans = []byte("bans")

	// BucketSessions stores sessions keyed by session id
	BucketSessions = []byte("sessions")

	// BucketSessionsByUser indexes session ids by "userID:sessionID"
	BucketSessionsByUser = []byte("sessions_by_user")

	// BucketVoices stores voices keyed by id
	BucketVoices = []byte("voices")

	// BucketReports stores reports keyed by "voiceID:reporterID",
	// which enforces the one-report-per-reporter constraint
	BucketReports = []byte("reports")

	// BucketAuditLog stores the moderation action audit trail
	BucketAuditLog = []byte("audit_log")

	// BucketEvents stores society events keyed by id
	BucketEvents = []byte("events")

	// BucketJoinRequests stores membership applications keyed by id
	BucketJoinRequests = []byte("join_requests")
)

// Store wraps a BoltDB database and provides access to specialized stores.
type Store struct {
	db *bolt.DB
}

// Options configures the BoltDB store.
type Options struct {
	// Path to the database file. Parent directories will be created if needed.
	Path string

	// Timeout for obtaining a file lock on the database.
	// If zero, a default of 5 seconds is used.
	Timeout time.Duration

	// FileMode for creating the database file.
	// If zero, 0600 is used.
	FileMode os.FileMode
}

// DefaultOptions returns sensible defaults for development.
func DefaultOptions() Options {
	return Options{
		Path:     "tribune.db",
		Timeout:  5 * time.Second,
		FileMode: 0600,
	}
}

// Open creates or opens a BoltDB database at the specified path.
// It creates all necessary buckets if they don't exist.
func Open(opts Options) (*Store, error) {
	if opts.Path == "" {
		opts.Path = "tribune.db"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.FileMode == 0 {
		opts.FileMode = 0600
	}

	// Ensure parent directory exists
	dir := filepath.Dir(opts.Path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := bolt.Open(opts.Path, opts.FileMode, &bolt.Options{
		Timeout: opts.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		buckets := [][]byte{
			BucketUsers,
			BucketUsersByEmail,
			BucketBans,
			BucketSessions,
			BucketSessionsByUser,
			BucketVoices,
			BucketReports,
			BucketAuditLog,
			BucketEvents,
			BucketJoinRequests,
		}

		for _, bucket := range buckets {
			_, err := tx.CreateBucketIfNotExists(bucket)
			if err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}

		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB returns the underlying BoltDB instance for advanced operations.
func (s *Store) DB() *bolt.DB {
	return s.db
}

// UserStore returns a principal and ban-list store backed by this database.
func (s *Store) UserStore() *UserStore {
	return &UserStore{db: s.db}
}

// SessionStore returns a session store backed by this database.
func (s *Store) SessionStore() *SessionStore {
	return &SessionStore{db: s.db}
}

// ModerationStore returns a voice/report/audit store backed by this database.
func (s *Store) ModerationStore() *ModerationStore {
	return &ModerationStore{db: s.db}
}

// EventStore returns a society event store backed by this database.
func (s *Store) EventStore() *EventStore {
	return &EventStore{db: s.db}
}

// JoinStore returns a membership application store backed by this database.
func (s *Store) JoinStore() *JoinStore {
	return &JoinStore{db: s.db}
}

// Stats returns database statistics.
func (s *Store) Stats() bolt.Stats {
	return s.db.Stats()
}

// hasPrefix checks if a byte slice has a given prefix.
func hasPrefix(s, prefix []byte) bool {
	if len(s) < len(prefix) {
		return false
	}
	for i, b := range prefix {
		if s[i] != b {
			return false
		}
	}
	return true
}

package boltstore

import (
	"context"
	"encoding/json"
	"fmt"

	"tribune/internal/accounts"
	"tribune/internal/identity"

	bolt "go.etcd.io/bbolt"
)

// UserStore provides persistent storage for principals and the ban list.
type UserStore struct {
	db *bolt.DB
}

// Ensure UserStore implements the interface at compile time.
var _ accounts.Store = (*UserStore)(nil)

// CreateUser stores a new principal and its email index entry.
// Returns accounts.ErrEmailTaken if the email is already registered.
func (s *UserStore) CreateUser(ctx context.Context, p identity.Principal) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		emailIndex := tx.Bucket(BucketUsersByEmail)
		if emailIndex.Get([]byte(p.Email)) != nil {
			return accounts.ErrEmailTaken
		}

		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("failed to marshal user: %w", err)
		}

		if err := tx.Bucket(BucketUsers).Put([]byte(p.ID), data); err != nil {
			return err
		}
		return emailIndex.Put([]byte(p.Email), []byte(p.ID))
	})
}

// GetUser retrieves a principal by id.
func (s *UserStore) GetUser(ctx context.Context, id string) (*identity.Principal, error) {
	var user *identity.Principal

	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(BucketUsers).Get([]byte(id))
		if data == nil {
			return accounts.ErrUserNotFound
		}

		user = &identity.Principal{}
		return json.Unmarshal(data, user)
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// GetUserByEmail retrieves a principal by its unique email.
func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*identity.Principal, error) {
	var user *identity.Principal

	err := s.db.View(func(tx *bolt.Tx) error {
		id := tx.Bucket(BucketUsersByEmail).Get([]byte(email))
		if id == nil {
			return accounts.ErrUserNotFound
		}

		data := tx.Bucket(BucketUsers).Get(id)
		if data == nil {
			return accounts.ErrUserNotFound
		}

		user = &identity.Principal{}
		return json.Unmarshal(data, user)
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// ListUsers returns all principals.
func (s *UserStore) ListUsers(ctx context.Context) ([]identity.Principal, error) {
	var users []identity.Principal

	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(BucketUsers).ForEach(func(k, v []byte) error {
			var p identity.Principal
			if err := json.Unmarshal(v, &p); err != nil {
				return nil // Skip malformed entries
			}
			users = append(users, p)
			return nil
		})
	})

	return users, err
}

// UpdateUser applies mutate to the stored principal inside one transaction.
func (s *UserStore) UpdateUser(ctx context.Context, id string, mutate func(*identity.Principal) error) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketUsers)

		data := bucket.Get([]byte(id))
		if data == nil {
			return accounts.ErrUserNotFound
		}

		var p identity.Principal
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("failed to unmarshal user: %w", err)
		}

		if err := mutate(&p); err != nil {
			return err
		}

		newData, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("failed to marshal user: %w", err)
		}

		return bucket.Put([]byte(id), newData)
	})
}

// PurgeUser deletes a principal, writes its ban record and drops its sessions
// in a single transaction. guard runs against the freshly re-read row before
// any write; returning an error from it aborts the whole purge.
func (s *UserStore) PurgeUser(ctx context.Context, id string, ban identity.BanRecord, guard func(*identity.Principal) error) (*identity.Principal, error) {
	var deleted *identity.Principal

	err := s.db.Update(func(tx *bolt.Tx) error {
		users := tx.Bucket(BucketUsers)

		data := users.Get([]byte(id))
		if data == nil {
			return accounts.ErrUserNotFound
		}

		var p identity.Principal
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("failed to unmarshal user: %w", err)
		}

		if guard != nil {
			if err := guard(&p); err != nil {
				return err
			}
		}

		if err := users.Delete([]byte(id)); err != nil {
			return err
		}
		if err := tx.Bucket(BucketUsersByEmail).Delete([]byte(p.Email)); err != nil {
			return err
		}

		ban.Email = p.Email
		banData, err := json.Marshal(ban)
		if err != nil {
			return fmt.Errorf("failed to marshal ban record: %w", err)
		}
		if err := tx.Bucket(BucketBans).Put([]byte(ban.Email), banData); err != nil {
			return err
		}

		if err := deleteSessionsForUser(tx, id); err != nil {
			return err
		}

		deleted = &p
		return nil
	})
	if err != nil {
		return nil, err
	}

	return deleted, nil
}

// IsEmailBanned checks the ban list for an email.
func (s *UserStore) IsEmailBanned(ctx context.Context, email string) (bool, error) {
	var banned bool

	err := s.db.View(func(tx *bolt.Tx) error {
		banned = tx.Bucket(BucketBans).Get([]byte(email)) != nil
		return nil
	})

	return banned, err
}

// ListBans returns all ban records.
func (s *UserStore) ListBans(ctx context.Context) ([]identity.BanRecord, error) {
	var bans []identity.BanRecord

	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(BucketBans).ForEach(func(k, v []byte) error {
			var b identity.BanRecord
			if err := json.Unmarshal(v, &b); err != nil {
				return nil // Skip malformed entries
			}
			bans = append(bans, b)
			return nil
		})
	})

	return bans, err
}

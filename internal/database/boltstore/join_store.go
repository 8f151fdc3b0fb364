package boltstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"tribune/internal/join"

	bolt "go.etcd.io/bbolt"
)

// JoinStore implements join.Store on BoltDB.
type JoinStore struct {
	db *bolt.DB
}

var _ join.Store = (*JoinStore)(nil)

// CreateJoinRequest stores a new membership application.
func (s *JoinStore) CreateJoinRequest(ctx context.Context, req join.Request) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(req)
		if err != nil {
			return fmt.Errorf("failed to marshal join request: %w", err)
		}
		return tx.Bucket(BucketJoinRequests).Put([]byte(req.ID), data)
	})
}

// ListJoinRequests returns all applications, newest first.
func (s *JoinStore) ListJoinRequests(ctx context.Context) ([]join.Request, error) {
	var list []join.Request
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(BucketJoinRequests).ForEach(func(k, v []byte) error {
			var req join.Request
			if err := json.Unmarshal(v, &req); err != nil {
				return fmt.Errorf("failed to unmarshal join request %s: %w", k, err)
			}
			list = append(list, req)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})

	return list, nil
}

// DeleteJoinRequest removes an application.
func (s *JoinStore) DeleteJoinRequest(ctx context.Context, id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(BucketJoinRequests).Delete([]byte(id))
	})
}

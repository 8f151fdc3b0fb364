package boltstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"tribune/internal/events"

	bolt "go.etcd.io/bbolt"
)

// EventStore implements events.Store on BoltDB.
type EventStore struct {
	db *bolt.DB
}

var _ events.Store = (*EventStore)(nil)

// CreateEvent stores a new event.
func (s *EventStore) CreateEvent(ctx context.Context, ev events.Event) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("failed to marshal event: %w", err)
		}
		return tx.Bucket(BucketEvents).Put([]byte(ev.ID), data)
	})
}

// GetEvent retrieves an event by ID.
func (s *EventStore) GetEvent(ctx context.Context, id string) (*events.Event, error) {
	var ev events.Event
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(BucketEvents).Get([]byte(id))
		if data == nil {
			return events.ErrEventNotFound
		}
		return json.Unmarshal(data, &ev)
	})
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// ListEvents returns all events ordered by start time, soonest first.
func (s *EventStore) ListEvents(ctx context.Context) ([]events.Event, error) {
	var list []events.Event
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(BucketEvents).ForEach(func(k, v []byte) error {
			var ev events.Event
			if err := json.Unmarshal(v, &ev); err != nil {
				return fmt.Errorf("failed to unmarshal event %s: %w", k, err)
			}
			list = append(list, ev)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].StartsAt.Before(list[j].StartsAt)
	})

	return list, nil
}

// DeleteEvent removes an event. Deleting a missing event is not an error.
func (s *EventStore) DeleteEvent(ctx context.Context, id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(BucketEvents).Delete([]byte(id))
	})
}

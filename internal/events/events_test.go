package events_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"tribune/internal/database/boltstore"
	"tribune/internal/events"
	"tribune/internal/identity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEvents(t *testing.T) *events.Service {
	store, err := boltstore.Open(boltstore.Options{
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	policy := identity.NewPolicy("")
	return events.NewService(store.EventStore(), policy)
}

func TestEventLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := setupEvents(t)

	member := &identity.Principal{ID: "member", Role: identity.RoleMember}
	manager := &identity.Principal{ID: "manager", Role: identity.RoleMediaManager}

	t.Run("member cannot create events", func(t *testing.T) {
		_, err := svc.Create(ctx, member, events.Event{
			Title:    "Pub night",
			StartsAt: time.Now().Add(24 * time.Hour),
		})
		assert.ErrorIs(t, err, identity.ErrUnauthorized)
	})

	t.Run("title and start time required", func(t *testing.T) {
		_, err := svc.Create(ctx, manager, events.Event{StartsAt: time.Now()})
		assert.ErrorIs(t, err, events.ErrInvalidEvent)

		_, err = svc.Create(ctx, manager, events.Event{Title: "No date"})
		assert.ErrorIs(t, err, events.ErrInvalidEvent)
	})

	t.Run("create fires the hook and list orders by start", func(t *testing.T) {
		var hooked []string
		svc.SetHooks(events.Hooks{
			OnCreate: func(ev events.Event) { hooked = append(hooked, ev.Title) },
		})

		later, err := svc.Create(ctx, manager, events.Event{
			Title:    "Later",
			StartsAt: time.Now().Add(48 * time.Hour),
		})
		require.NoError(t, err)
		sooner, err := svc.Create(ctx, manager, events.Event{
			Title:    "Sooner",
			StartsAt: time.Now().Add(24 * time.Hour),
		})
		require.NoError(t, err)

		assert.Equal(t, []string{"Later", "Sooner"}, hooked)
		assert.Equal(t, manager.ID, later.CreatedBy)

		list, err := svc.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, sooner.ID, list[0].ID)
		assert.Equal(t, later.ID, list[1].ID)
	})

	t.Run("delete requires the content role", func(t *testing.T) {
		list, err := svc.List(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, list)

		assert.ErrorIs(t, svc.Delete(ctx, member, list[0].ID), identity.ErrUnauthorized)
		require.NoError(t, svc.Delete(ctx, manager, list[0].ID))

		remaining, err := svc.List(ctx)
		require.NoError(t, err)
		assert.Len(t, remaining, 1)
	})
}

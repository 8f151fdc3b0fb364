package feed_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"tribune/internal/database/boltstore"
	"tribune/internal/feed"
	"tribune/internal/identity"
	"tribune/internal/moderation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupFeed(t *testing.T) (*feed.Service, *boltstore.Store) {
	store, err := boltstore.Open(boltstore.Options{
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return feed.NewService(store.ModerationStore(), store.UserStore()), store
}

func addVoice(t *testing.T, store *boltstore.Store, id, authorID string, state moderation.VoiceState, hidden bool, createdAt time.Time) {
	t.Helper()
	require.NoError(t, store.ModerationStore().CreateVoice(context.Background(), moderation.Voice{
		ID:        id,
		AuthorID:  authorID,
		Title:     id,
		State:     state,
		Hidden:    hidden,
		CreatedAt: createdAt,
	}))
}

func TestListVisible(t *testing.T) {
	ctx := context.Background()
	svc, store := setupFeed(t)

	now := time.Now()
	future := now.Add(time.Hour)

	require.NoError(t, store.UserStore().CreateUser(ctx, identity.Principal{
		ID: "alice", Email: "alice@example.com", Role: identity.RoleMember,
	}))
	require.NoError(t, store.UserStore().CreateUser(ctx, identity.Principal{
		ID: "suspended", Email: "suspended@example.com", Role: identity.RoleMember,
		Suspended: true,
	}))
	require.NoError(t, store.UserStore().CreateUser(ctx, identity.Principal{
		ID: "timed-out", Email: "timedout@example.com", Role: identity.RoleMember,
		Suspended: true, TimeoutUntil: &future,
	}))

	addVoice(t, store, "v-old", "alice", moderation.VoiceStateNormal, false, now.Add(-2*time.Hour))
	addVoice(t, store, "v-new", "alice", moderation.VoiceStateNormal, false, now)
	addVoice(t, store, "v-hidden", "alice", moderation.VoiceStateNormal, true, now)
	addVoice(t, store, "v-review", "alice", moderation.VoiceStateUnderReview, false, now)
	addVoice(t, store, "v-suspended-author", "suspended", moderation.VoiceStateNormal, false, now)
	addVoice(t, store, "v-timed-out-author", "timed-out", moderation.VoiceStateNormal, false, now)
	addVoice(t, store, "v-deleted-author", "ghost", moderation.VoiceStateNormal, false, now)

	voices, err := svc.ListVisible(ctx)
	require.NoError(t, err)

	ids := make([]string, len(voices))
	for i, v := range voices {
		ids[i] = v.ID
	}

	t.Run("only clean voices by authors in good standing", func(t *testing.T) {
		assert.Equal(t, []string{"v-new", "v-old"}, ids)
	})

	t.Run("expired timeout readmits the author's voices", func(t *testing.T) {
		past := now.Add(-time.Minute)
		require.NoError(t, store.UserStore().UpdateUser(ctx, "timed-out", func(p *identity.Principal) error {
			p.TimeoutUntil = &past
			return nil
		}))

		voices, err := svc.ListVisible(ctx)
		require.NoError(t, err)
		found := false
		for _, v := range voices {
			if v.ID == "v-timed-out-author" {
				found = true
			}
		}
		assert.True(t, found)
	})
}

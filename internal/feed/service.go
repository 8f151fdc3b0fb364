// Package feed assembles the public voice feed. Exclusion rules live here so
// every listing surface applies the same visibility policy.
package feed

import (
	"context"
	"sort"
	"time"

	"tribune/internal/accounts"
	"tribune/internal/identity"
	"tribune/internal/moderation"

	"github.com/rs/zerolog/log"
)

// Service builds visible-feed queries over the voice and user stores.
type Service struct {
	voices moderation.Store
	users  accounts.Store
}

// NewService creates a feed Service.
func NewService(voices moderation.Store, users accounts.Store) *Service {
	return &Service{voices: voices, users: users}
}

// ListVisible returns the public feed, newest first. A voice is excluded when
// it is hidden, under review, or its author's effective account status is not
// normal: author standing is inherited by the author's content even when the
// voice itself is clean.
func (s *Service) ListVisible(ctx context.Context) ([]moderation.Voice, error) {
	all, err := s.voices.ListVoices(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	blockedAuthors := make(map[string]bool)

	visible := make([]moderation.Voice, 0, len(all))
	for _, v := range all {
		if v.Hidden || v.State != moderation.VoiceStateNormal {
			continue
		}

		blocked, ok := blockedAuthors[v.AuthorID]
		if !ok {
			blocked = s.authorBlocked(ctx, v.AuthorID, now)
			blockedAuthors[v.AuthorID] = blocked
		}
		if blocked {
			continue
		}

		visible = append(visible, v)
	}

	sort.Slice(visible, func(i, j int) bool {
		return visible[i].CreatedAt.After(visible[j].CreatedAt)
	})

	return visible, nil
}

// authorBlocked reports whether the author's standing excludes their content.
// A missing author row (deleted account) excludes the content as well.
func (s *Service) authorBlocked(ctx context.Context, authorID string, now time.Time) bool {
	author, err := s.users.GetUser(ctx, authorID)
	if err != nil {
		log.Debug().Err(err).Str("author_id", authorID).Msg("feed: author lookup failed, excluding")
		return true
	}
	return identity.IsBlocked(author, now)
}

// Package events manages society events. Creating an event notifies every
// member, so creation is restricted to media managers and the president.
package events

import (
	"context"
	"errors"
	"strings"
	"time"

	"tribune/internal/identity"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	// ErrEventNotFound is returned when no event exists with the given ID.
	ErrEventNotFound = errors.New("event not found")
	// ErrInvalidEvent is returned when an event fails validation.
	ErrInvalidEvent = errors.New("invalid event")
)

// Event is a scheduled society event.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"starts_at"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store persists events.
type Store interface {
	CreateEvent(ctx context.Context, ev Event) error
	GetEvent(ctx context.Context, id string) (*Event, error)
	ListEvents(ctx context.Context) ([]Event, error)
	DeleteEvent(ctx context.Context, id string) error
}

// Hooks receive event lifecycle callbacks. Used to fan out notifications
// without coupling this package to the mail layer.
type Hooks struct {
	OnCreate func(ev Event)
}

// Service implements event management on top of a Store.
type Service struct {
	store  Store
	policy *identity.Policy
	hooks  Hooks
}

// NewService creates an event Service.
func NewService(store Store, policy *identity.Policy) *Service {
	return &Service{store: store, policy: policy}
}

// SetHooks installs lifecycle callbacks.
func (s *Service) SetHooks(h Hooks) { s.hooks = h }

// Create validates and stores a new event. The actor must hold a content
// management role.
func (s *Service) Create(ctx context.Context, actor *identity.Principal, ev Event) (*Event, error) {
	if err := s.policy.AuthorizeContentMutation(actor); err != nil {
		return nil, err
	}

	ev.Title = strings.TrimSpace(ev.Title)
	if ev.Title == "" {
		return nil, ErrInvalidEvent
	}
	if ev.StartsAt.IsZero() {
		return nil, ErrInvalidEvent
	}

	ev.ID = uuid.NewString()
	ev.CreatedBy = actor.ID
	ev.CreatedAt = time.Now()

	if err := s.store.CreateEvent(ctx, ev); err != nil {
		return nil, err
	}

	log.Info().Str("event_id", ev.ID).Str("created_by", actor.ID).Msg("event created")

	if s.hooks.OnCreate != nil {
		s.hooks.OnCreate(ev)
	}

	return &ev, nil
}

// List returns all events, soonest first.
func (s *Service) List(ctx context.Context) ([]Event, error) {
	return s.store.ListEvents(ctx)
}

// Delete removes an event. Same role requirement as creation.
func (s *Service) Delete(ctx context.Context, actor *identity.Principal, id string) error {
	if err := s.policy.AuthorizeContentMutation(actor); err != nil {
		return err
	}
	return s.store.DeleteEvent(ctx, id)
}

// Package join handles membership applications from prospective members.
package join

import (
	"context"
	"errors"
	"strings"
	"time"

	"tribune/internal/identity"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrInvalidRequest is returned when a join request fails validation.
var ErrInvalidRequest = errors.New("invalid join request")

const maxMessageLength = 1000

// Request is a membership application submitted from the public site.
type Request struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists join requests.
type Store interface {
	CreateJoinRequest(ctx context.Context, req Request) error
	ListJoinRequests(ctx context.Context) ([]Request, error)
	DeleteJoinRequest(ctx context.Context, id string) error
}

// Hooks receive callbacks when a request is submitted.
type Hooks struct {
	OnSubmit func(req Request)
}

// Service validates and records membership applications.
type Service struct {
	store  Store
	policy *identity.Policy
	hooks  Hooks
}

// NewService creates a join Service.
func NewService(store Store, policy *identity.Policy) *Service {
	return &Service{store: store, policy: policy}
}

// SetHooks installs submission callbacks.
func (s *Service) SetHooks(h Hooks) { s.hooks = h }

// Submit validates and stores an application. Submission is unauthenticated.
func (s *Service) Submit(ctx context.Context, req Request) (*Request, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Message = strings.TrimSpace(req.Message)

	if req.Name == "" || req.Email == "" || !strings.Contains(req.Email, "@") {
		return nil, ErrInvalidRequest
	}
	if len(req.Message) > maxMessageLength {
		req.Message = req.Message[:maxMessageLength]
	}

	req.ID = uuid.NewString()
	req.CreatedAt = time.Now()

	if err := s.store.CreateJoinRequest(ctx, req); err != nil {
		return nil, err
	}

	log.Info().Str("request_id", req.ID).Msg("join request submitted")

	if s.hooks.OnSubmit != nil {
		s.hooks.OnSubmit(req)
	}

	return &req, nil
}

// List returns all pending applications. President only.
func (s *Service) List(ctx context.Context, actor *identity.Principal) ([]Request, error) {
	if !s.policy.CanManageUsers(actor) {
		return nil, identity.ErrUnauthorized
	}
	return s.store.ListJoinRequests(ctx)
}

// Dismiss removes an application. President only.
func (s *Service) Dismiss(ctx context.Context, actor *identity.Principal, id string) error {
	if !s.policy.CanManageUsers(actor) {
		return identity.ErrUnauthorized
	}
	return s.store.DeleteJoinRequest(ctx, id)
}

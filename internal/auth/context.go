package auth

import (
	"context"

	"tribune/internal/identity"
)

type contextKey string

const principalContextKey contextKey = "tribune.principal"

// WithPrincipal returns a context carrying the resolved principal snapshot.
func WithPrincipal(ctx context.Context, p *identity.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// GetAuthenticatedPrincipal returns the principal resolved for this request,
// or ErrUnauthenticated if the request carries no valid session. The snapshot
// was loaded fresh from the store by the auth middleware; callers must not
// retain it across requests.
func GetAuthenticatedPrincipal(ctx context.Context) (*identity.Principal, error) {
	p, ok := ctx.Value(principalContextKey).(*identity.Principal)
	if !ok || p == nil {
		return nil, ErrUnauthenticated
	}
	return p, nil
}

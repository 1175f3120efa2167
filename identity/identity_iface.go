package identity

import (
	"context"

	"github.com/gangerdermatology/auth/sessioninfo"
)

// Provider is the identity provider contract used by the session provider
// and the request guard.
type Provider interface {
	AuthorizeURL(redirectTo, verifier, hostedDomain string) string
	ExchangeCode(ctx context.Context, code, verifier string) (*sessioninfo.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*sessioninfo.Session, error)
	User(ctx context.Context, accessToken string) (*sessioninfo.User, error)
	VerifyToken(ctx context.Context, accessToken string) (*sessioninfo.User, error)
	SignOut(ctx context.Context, accessToken string) error
}

// Verifier checks an access token's signature and claims without a network
// round-trip to the identity provider.
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (*Claims, error)
}

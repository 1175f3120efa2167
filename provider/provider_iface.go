package provider

import (
	"context"
	"net/http"

	"github.com/gangerdermatology/auth/sessioninfo"
)

// Authenticator runs the browser side of an OAuth sign-in.
type Authenticator interface {
	AuthCodeURL(w http.ResponseWriter, returnTo string) (string, error)
	Verify(ctx context.Context, w http.ResponseWriter, r *http.Request) (*sessioninfo.Session, string, error)
}

// Listener is notified after every state change.
type Listener func(State)

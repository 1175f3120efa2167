package oauthflow

import (
	"context"
	"net/http"

	"github.com/gangerdermatology/auth/sessioninfo"
)

// Authenticator runs the browser side of the identity provider sign-in.
type Authenticator interface {
	// AuthCodeURL returns the URL to redirect to in order to start sign-in. The
	// pending sign-in is recorded in an encrypted cookie written to w.
	AuthCodeURL(w http.ResponseWriter, returnTo string) (string, error)

	// Verify completes sign-in from the callback request. It returns the new session
	// and the application path to land on.
	Verify(ctx context.Context, w http.ResponseWriter, r *http.Request) (session *sessioninfo.Session, returnTo string, err error)
}

// Package oauthflow implements the Authorization Code Flow with PKCE (Proof Key for Code Exchange)
// against the platform identity provider.
package oauthflow

import (
	"context"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/cccteam/httpio"
	"github.com/cccteam/logger"
	"github.com/gangerdermatology/auth/cookie"
	"github.com/gangerdermatology/auth/identity"
	"github.com/gangerdermatology/auth/sessioninfo"
	"github.com/go-playground/errors/v5"
	"github.com/gofrs/uuid"
	"golang.org/x/oauth2"
)

const (
	// CookieName is the name of the cookie holding the pending sign-in.
	CookieName = "ganger-auth-flow"

	cookieMaxAge = 10 * time.Minute
)

var _ Authenticator = &Flow{}

// Flow implements the Authenticator interface.
type Flow struct {
	cookieClient   *cookie.Client
	idp            identity.Provider
	callbackURL    string
	allowedDomains []string
}

// New returns a new Flow. callbackURL is the absolute URL of the callback handler.
// When allowedDomains is not empty only identities with an email in one of those
// domains may complete sign-in.
func New(cookieClient *cookie.Client, idp identity.Provider, callbackURL string, allowedDomains ...string) *Flow {
	domains := make([]string, 0, len(allowedDomains))
	for _, d := range allowedDomains {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			domains = append(domains, d)
		}
	}

	return &Flow{
		cookieClient:   cookieClient,
		idp:            idp,
		callbackURL:    callbackURL,
		allowedDomains: domains,
	}
}

// AuthCodeURL returns the URL to redirect to in order to start sign-in
func (f *Flow) AuthCodeURL(w http.ResponseWriter, returnTo string) (string, error) {
	verifier := oauth2.GenerateVerifier()

	// state rides on the callback URL; the provider runs its own state with Google
	state, err := uuid.NewV4()
	if err != nil {
		return "", errors.Wrap(err, "uuid.NewV4()")
	}

	cval := cookie.NewValues().
		SetString(cookie.State, state.String()).
		SetString(cookie.Verifier, verifier).
		SetString(cookie.ReturnTo, SafeReturnTo(returnTo))
	f.cookieClient.Write(w, CookieName, cookieMaxAge, cval)

	redirectTo, err := url.Parse(f.callbackURL)
	if err != nil {
		return "", errors.Wrap(err, "url.Parse()")
	}
	q := redirectTo.Query()
	q.Set("state", state.String())
	redirectTo.RawQuery = q.Encode()

	var hostedDomain string
	if len(f.allowedDomains) > 0 {
		hostedDomain = f.allowedDomains[0]
	}

	return f.idp.AuthorizeURL(redirectTo.String(), verifier, hostedDomain), nil
}

// Verify performs the verification and processing of the callback request
func (f *Flow) Verify(ctx context.Context, w http.ResponseWriter, r *http.Request) (*sessioninfo.Session, string, error) {
	cval, ok, err := f.cookieClient.Read(r, CookieName)
	if err != nil {
		return nil, "", errors.Wrap(err, "cookie.Client.Read()")
	}
	if !ok {
		return nil, "", httpio.NewForbiddenMessage("No sign-in in progress")
	}
	f.cookieClient.Delete(w, CookieName)

	returnTo, _ := cval.GetString(cookie.ReturnTo)
	returnTo = SafeReturnTo(returnTo)

	query := r.URL.Query()
	if e := query.Get("error"); e != "" {
		return nil, "", httpio.NewUnauthorizedMessage("Sign-in failed: " + e)
	}

	state, err := cval.GetString(cookie.State)
	if err != nil || state == "" || query.Get("state") != state {
		return nil, "", httpio.NewForbiddenMessage("Invalid 'state' parameter value")
	}

	code := query.Get("code")
	if code == "" {
		return nil, "", httpio.NewBadRequestMessage("Missing 'code' parameter")
	}

	verifier, err := cval.GetString(cookie.Verifier)
	if err != nil {
		return nil, "", httpio.NewForbiddenMessage("Invalid sign-in cookie")
	}

	session, err := f.idp.ExchangeCode(ctx, code, verifier)
	if err != nil {
		if errors.Is(err, identity.ErrRejected) {
			return nil, "", httpio.NewUnauthorizedMessageWithError(err, "Sign-in was rejected")
		}

		return nil, "", httpio.NewInternalServerErrorMessageWithError(err, "Failed to exchange code")
	}

	if session.User == nil || !f.AllowedEmail(session.User.Email) {
		if err := f.idp.SignOut(ctx, session.AccessToken); err != nil {
			logger.FromCtx(ctx).Error(errors.Wrap(err, "identity.Provider.SignOut()"))
		}

		return nil, "", httpio.NewForbiddenMessage("This account is not permitted to sign in")
	}

	return session, returnTo, nil
}

// AllowedEmail reports whether email belongs to one of the allowed domains.
func (f *Flow) AllowedEmail(email string) bool {
	if len(f.allowedDomains) == 0 {
		return true
	}

	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return false
	}

	return slices.Contains(f.allowedDomains, strings.ToLower(email[at+1:]))
}

// SafeReturnTo returns returnTo if it is a local absolute path, and "/" otherwise.
func SafeReturnTo(returnTo string) string {
	returnTo = strings.TrimSpace(returnTo)
	if returnTo == "" || !strings.HasPrefix(returnTo, "/") || strings.HasPrefix(returnTo, "//") || strings.Contains(returnTo, `\`) {
		return "/"
	}

	u, err := url.Parse(returnTo)
	if err != nil || u.IsAbs() || u.Host != "" {
		return "/"
	}

	return returnTo
}

// Package identity is a client for the hosted identity provider's auth API:
// the OAuth handoff with PKCE, code exchange, token refresh, user lookup and
// sign-out.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gangerdermatology/auth/sessioninfo"
	"github.com/go-playground/errors/v5"
	"go.opentelemetry.io/otel"
	"golang.org/x/oauth2"
)

const name = "github.com/gangerdermatology/auth/identity"

// DefaultTimeout bounds every call to the identity provider.
const DefaultTimeout = 10 * time.Second

var _ Provider = &Client{}

// Client calls the identity provider's REST API.
type Client struct {
	baseURL    string
	anonKey    string
	provider   string
	httpClient *http.Client
	timeout    time.Duration
	verifier   Verifier
	now        func() time.Time
}

// New returns a Client for the project at baseURL.
func New(baseURL, anonKey string, options ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		anonKey:    anonKey,
		provider:   "google",
		httpClient: http.DefaultClient,
		timeout:    DefaultTimeout,
		now:        time.Now,
	}
	for _, opt := range options {
		opt(c)
	}

	return c
}

// AuthorizeURL returns the provider URL that starts an OAuth sign-in. The
// challenge is derived from verifier, which the caller keeps until the
// callback. hostedDomain restricts the account picker when set.
func (c *Client) AuthorizeURL(redirectTo, verifier, hostedDomain string) string {
	q := url.Values{}
	q.Set("provider", c.provider)
	q.Set("redirect_to", redirectTo)
	q.Set("code_challenge", oauth2.S256ChallengeFromVerifier(verifier))
	q.Set("code_challenge_method", "s256")
	q.Set("access_type", "offline")
	q.Set("prompt", "select_account")
	if hostedDomain != "" {
		q.Set("hd", hostedDomain)
	}

	return c.baseURL + "/auth/v1/authorize?" + q.Encode()
}

// ExchangeCode trades an authorization code and its PKCE verifier for a session.
func (c *Client) ExchangeCode(ctx context.Context, code, verifier string) (*sessioninfo.Session, error) {
	ctx, span := otel.Tracer(name).Start(ctx, "Client.ExchangeCode()")
	defer span.End()

	body := map[string]string{"auth_code": code, "code_verifier": verifier}

	s, err := c.token(ctx, "pkce", body)
	if err != nil {
		return nil, errors.Wrap(err, "Client.token()")
	}

	return s, nil
}

// Refresh trades a refresh token for a new session. It makes exactly one
// attempt.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*sessioninfo.Session, error) {
	ctx, span := otel.Tracer(name).Start(ctx, "Client.Refresh()")
	defer span.End()

	if refreshToken == "" {
		return nil, errors.Wrap(ErrRejected, "empty refresh token")
	}

	s, err := c.token(ctx, "refresh_token", map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return nil, errors.Wrap(err, "Client.token()")
	}

	return s, nil
}

// User returns the user that owns accessToken, as seen by the identity
// provider.
func (c *Client) User(ctx context.Context, accessToken string) (*sessioninfo.User, error) {
	ctx, span := otel.Tracer(name).Start(ctx, "Client.User()")
	defer span.End()

	var u userResponse
	if err := c.do(ctx, http.MethodGet, "/auth/v1/user", accessToken, nil, &u); err != nil {
		return nil, errors.Wrap(err, "Client.do()")
	}
	if u.ID == "" {
		return nil, errors.Wrap(ErrRejected, "user response has no id")
	}

	return u.user(c.now()), nil
}

// VerifyToken authenticates accessToken. With a Verifier configured the
// signature is checked locally; otherwise the identity provider is asked.
func (c *Client) VerifyToken(ctx context.Context, accessToken string) (*sessioninfo.User, error) {
	if c.verifier == nil {
		u, err := c.User(ctx, accessToken)
		if err != nil {
			return nil, errors.Wrap(err, "Client.User()")
		}

		return u, nil
	}

	claims, err := c.verifier.Verify(ctx, accessToken)
	if err != nil {
		return nil, errors.Wrap(err, "Verifier.Verify()")
	}

	return &sessioninfo.User{
		ID:     claims.Subject,
		Email:  strings.ToLower(claims.Email),
		Active: true,
	}, nil
}

// SignOut revokes the session that owns accessToken.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	ctx, span := otel.Tracer(name).Start(ctx, "Client.SignOut()")
	defer span.End()

	if err := c.do(ctx, http.MethodPost, "/auth/v1/logout?scope=local", accessToken, nil, nil); err != nil {
		// A token the provider no longer knows is already signed out.
		if errors.Is(err, ErrRejected) {
			return nil
		}

		return errors.Wrap(err, "Client.do()")
	}

	return nil
}

func (c *Client) token(ctx context.Context, grantType string, body any) (*sessioninfo.Session, error) {
	var t tokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type="+url.QueryEscape(grantType), "", body, &t); err != nil {
		return nil, err
	}
	if t.AccessToken == "" {
		return nil, errors.Wrap(ErrRejected, "token response has no access token")
	}

	return t.session(c.now()), nil
}

func (c *Client) do(ctx context.Context, method, path, bearer string, in, out any) error {
	ctx, cancel := context.WithTimeoutCause(ctx, c.timeout, errors.Newf("identity %s %s timeout", method, path))
	defer cancel()

	var body io.Reader = http.NoBody
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "json.Marshal()")
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrap(err, "http.NewRequestWithContext()")
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.anonKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if cause := context.Cause(ctx); cause != nil && ctx.Err() != nil {
			return errors.Wrap(cause, "http.Client.Do()")
		}

		return errors.Wrap(err, "http.Client.Do()")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var e errorResponse
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&e)

		switch resp.StatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound, http.StatusUnprocessableEntity:
			return errors.Wrapf(ErrRejected, "%s %s: %d %s", method, path, resp.StatusCode, e.text())
		}

		return errors.Newf("%s %s: unexpected status %d: %s", method, path, resp.StatusCode, e.text())
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "json.Decoder.Decode()")
	}

	return nil
}

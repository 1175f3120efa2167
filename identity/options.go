package identity

import (
	"net/http"
	"time"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds each call to the identity provider.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithVerifier enables local access-token verification.
func WithVerifier(v Verifier) Option {
	return func(c *Client) {
		c.verifier = v
	}
}

// WithOAuthProvider sets the upstream OAuth provider name. The default is google.
func WithOAuthProvider(provider string) Option {
	return func(c *Client) {
		c.provider = provider
	}
}

// WithClock sets the clock used to compute session expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

package provider

import (
	"time"

	"github.com/gangerdermatology/auth/roles"
)

// Option configures a Provider.
type Option func(*Provider)

// WithAuthenticator sets the OAuth flow used by SignIn and CompleteSignIn.
func WithAuthenticator(a Authenticator) Option {
	return func(p *Provider) {
		p.flow = a
	}
}

// WithRegistry sets the role registry. (default: roles.Default())
func WithRegistry(r *roles.Registry) Option {
	return func(p *Provider) {
		p.registry = r
	}
}

// WithAppName sets the application name used to scope the active team. (default: ganger)
func WithAppName(name string) Option {
	return func(p *Provider) {
		p.appName = name
	}
}

// WithTimeout bounds each identity provider call. (default: 10s)
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) {
		p.now = now
	}
}

package auth

import (
	"time"

	"github.com/gangerdermatology/auth/guard"
	"github.com/gangerdermatology/auth/identity"
	"github.com/gangerdermatology/auth/provider"
	"github.com/gangerdermatology/auth/roles"
)

// Option configures Auth.
type Option func(*Auth)

// WithIdentityProvider replaces the identity provider client built from the config.
func WithIdentityProvider(idp identity.Provider) Option {
	return func(a *Auth) {
		a.idp = idp
	}
}

// WithAuthenticator replaces the OAuth sign-in flow built from the config.
func WithAuthenticator(flow provider.Authenticator) Option {
	return func(a *Auth) {
		a.flow = flow
	}
}

// WithRegistry sets the role registry. (default: roles.Default())
func WithRegistry(r *roles.Registry) Option {
	return func(a *Auth) {
		a.registry = r
	}
}

// WithMetrics records guard decisions in m.
func WithMetrics(m *guard.Metrics) Option {
	return func(a *Auth) {
		a.metrics = m
	}
}

// WithReporter sets where guards report internal errors. (default: guard.LogReporter)
func WithReporter(rep guard.Reporter) Option {
	return func(a *Auth) {
		a.reporter = rep
	}
}

// WithLogHandler sets the LogHandler. (default: httpio.Log)
func WithLogHandler(l LogHandler) Option {
	return func(a *Auth) {
		a.handle = l
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(a *Auth) {
		a.now = now
	}
}

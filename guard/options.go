package guard

import (
	"time"

	"github.com/gangerdermatology/auth/autherror"
	"github.com/gangerdermatology/auth/roles"
	"github.com/gangerdermatology/auth/sessionstore"
)

// Option configures a Guard.
type Option func(*Guard)

// WithSessions lets the guard read the access token from the shared session
// cookie when the request carries no other token.
func WithSessions(s *sessionstore.Store) Option {
	return func(g *Guard) {
		g.sessions = s
	}
}

// WithRegistry sets the role registry. (default: roles.Default())
func WithRegistry(r *roles.Registry) Option {
	return func(g *Guard) {
		g.registry = r
	}
}

// WithProduction hides internal error detail from responses.
func WithProduction(production bool) Option {
	return func(g *Guard) {
		g.writer = autherror.NewWriter(production)
	}
}

// WithMetrics records decisions in m.
func WithMetrics(m *Metrics) Option {
	return func(g *Guard) {
		g.metrics = m
	}
}

// WithReporter sends error reports to rep instead of the request logger.
func WithReporter(rep Reporter) Option {
	return func(g *Guard) {
		g.report = rep
	}
}

// WithTimeout bounds token verification. (default: 10s)
func WithTimeout(d time.Duration) Option {
	return func(g *Guard) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Guard) {
		g.now = now
	}
}

package auth

import (
	"net/http"
	"time"

	"github.com/gangerdermatology/auth/guard"
)

// Guard returns a guard for req sharing this Auth's identity provider,
// profile store, session cookie, metrics and error reporting.
func (a *Auth) Guard(req guard.Requirements) *guard.Guard {
	return guard.New(a.idp, a.profiles, req,
		guard.WithSessions(a.sessions),
		guard.WithRegistry(a.registry),
		guard.WithProduction(a.cfg.Production),
		guard.WithMetrics(a.metrics),
		guard.WithReporter(a.reporter),
		guard.WithTimeout(a.cfg.RequestTimeout),
		guard.WithClock(a.now),
	)
}

// WithAuth admits any signed in user.
func (a *Auth) WithAuth(next http.Handler) http.Handler {
	return a.authenticated.Middleware(next)
}

// WithStaffAuth admits staff and above.
func (a *Auth) WithStaffAuth(next http.Handler) http.Handler {
	return a.staff.Middleware(next)
}

// WithManagerAuth admits managers and above.
func (a *Auth) WithManagerAuth(next http.Handler) http.Handler {
	return a.manager.Middleware(next)
}

// WithAdminAuth admits technical admins and superadmins.
func (a *Auth) WithAdminAuth(next http.Handler) http.Handler {
	return a.admin.Middleware(next)
}

// WithSuperAdminAuth admits superadmins.
func (a *Auth) WithSuperAdminAuth(next http.Handler) http.Handler {
	return a.superAdmin.Middleware(next)
}

// WithHIPAACompliance admits staff that send an access reason, audits the
// access and scrubs reported errors.
func (a *Auth) WithHIPAACompliance(next http.Handler) http.Handler {
	return a.hipaa.Middleware(next)
}

// WithRateLimitedAuth admits staff, at most maxRequests per window each.
// Every call returns a middleware with its own counters.
func (a *Auth) WithRateLimitedAuth(window time.Duration, maxRequests int) func(http.Handler) http.Handler {
	return a.Guard(guard.RateLimited(window, maxRequests)).Middleware
}

// WithRequirements admits requests that satisfy req.
func (a *Auth) WithRequirements(req guard.Requirements) func(http.Handler) http.Handler {
	return a.Guard(req).Middleware
}

// HandleAuth is WithAuth for a guard.HandlerFunc.
func (a *Auth) HandleAuth(h guard.HandlerFunc) http.Handler {
	return a.authenticated.Handle(h)
}

// HandleStaff is WithStaffAuth for a guard.HandlerFunc.
func (a *Auth) HandleStaff(h guard.HandlerFunc) http.Handler {
	return a.staff.Handle(h)
}

// HandleManager is WithManagerAuth for a guard.HandlerFunc.
func (a *Auth) HandleManager(h guard.HandlerFunc) http.Handler {
	return a.manager.Handle(h)
}

// HandleAdmin is WithAdminAuth for a guard.HandlerFunc.
func (a *Auth) HandleAdmin(h guard.HandlerFunc) http.Handler {
	return a.admin.Handle(h)
}

// HandleSuperAdmin is WithSuperAdminAuth for a guard.HandlerFunc.
func (a *Auth) HandleSuperAdmin(h guard.HandlerFunc) http.Handler {
	return a.superAdmin.Handle(h)
}

// HandleHIPAA is WithHIPAACompliance for a guard.HandlerFunc.
func (a *Auth) HandleHIPAA(h guard.HandlerFunc) http.Handler {
	return a.hipaa.Handle(h)
}

// HandleRateLimited is WithRateLimitedAuth for a guard.HandlerFunc.
func (a *Auth) HandleRateLimited(window time.Duration, maxRequests int, h guard.HandlerFunc) http.Handler {
	return a.Guard(guard.RateLimited(window, maxRequests)).Handle(h)
}

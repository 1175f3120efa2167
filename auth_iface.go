package auth

import (
	"net/http"
	"time"

	"github.com/gangerdermatology/auth/guard"
)

var _ Handlers = &Auth{}

// LogHandler defines the handler signature required for handling logs.
type LogHandler func(handler func(w http.ResponseWriter, r *http.Request) error) http.HandlerFunc

// Handlers defines the session endpoints and route guards an application mounts.
type Handlers interface {
	SignIn() http.HandlerFunc
	Callback() http.HandlerFunc
	SignOut() http.HandlerFunc
	Session() http.HandlerFunc
	Refresh() http.HandlerFunc
	SetActiveTeam() http.HandlerFunc
	LoadSession(next http.Handler) http.Handler
	SetXSRFToken(next http.Handler) http.Handler
	ValidateXSRFToken(next http.Handler) http.Handler

	WithAuth(next http.Handler) http.Handler
	WithStaffAuth(next http.Handler) http.Handler
	WithManagerAuth(next http.Handler) http.Handler
	WithAdminAuth(next http.Handler) http.Handler
	WithSuperAdminAuth(next http.Handler) http.Handler
	WithHIPAACompliance(next http.Handler) http.Handler
	WithRateLimitedAuth(window time.Duration, maxRequests int) func(http.Handler) http.Handler
	WithRequirements(req guard.Requirements) func(http.Handler) http.Handler

	HandleAuth(h guard.HandlerFunc) http.Handler
	HandleStaff(h guard.HandlerFunc) http.Handler
	HandleManager(h guard.HandlerFunc) http.Handler
	HandleAdmin(h guard.HandlerFunc) http.Handler
	HandleSuperAdmin(h guard.HandlerFunc) http.Handler
	HandleHIPAA(h guard.HandlerFunc) http.Handler
	HandleRateLimited(window time.Duration, maxRequests int, h guard.HandlerFunc) http.Handler
}

// Package guard admits or rejects HTTP requests before the wrapped handler
// runs, based on the caller's token, profile and the route's Requirements.
package guard

import (
	"context"
	"net"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/cccteam/httpio"
	"github.com/cccteam/logger"
	"github.com/gangerdermatology/auth/autherror"
	"github.com/gangerdermatology/auth/identity"
	"github.com/gangerdermatology/auth/profilestore"
	"github.com/gangerdermatology/auth/roles"
	"github.com/gangerdermatology/auth/sessioninfo"
	"github.com/gangerdermatology/auth/sessionstore"
	"github.com/go-playground/errors/v5"
	"go.opentelemetry.io/otel"
)

const name = "github.com/gangerdermatology/auth/guard"

// Request headers read by HIPAA guards.
const (
	HeaderAccessReason     = "X-Access-Reason"
	HeaderBreakGlass       = "X-Break-Glass"
	HeaderBreakGlassReason = "X-Break-Glass-Reason"
)

// State is how far a request got through evaluation.
type State int

const (
	Unauthenticated State = iota
	Authenticated
	Authorized
	Rejected
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	case Authorized:
		return "authorized"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Decision is the outcome of evaluating one request. User and Profile are set
// once the caller is authenticated, even when the request is then rejected.
type Decision struct {
	State   State
	User    *sessioninfo.User
	Profile *sessioninfo.Profile
	Err     error
}

func (d *Decision) reject(err error) *Decision {
	d.State = Rejected
	d.Err = err

	return d
}

// Code returns the error code of a rejected decision.
func (d *Decision) Code() autherror.Code {
	if d.State != Rejected {
		return ""
	}
	if e, ok := autherror.As(d.Err); ok {
		return e.Code()
	}

	return autherror.CodeInternal
}

// Guard enforces one set of Requirements.
type Guard struct {
	idp      identity.Provider
	profiles profilestore.Store
	sessions *sessionstore.Store
	registry *roles.Registry
	req      Requirements
	checks   []roles.Requirement
	limiter  *limiter
	writer   *autherror.Writer
	metrics  *Metrics
	report   Reporter
	timeout  time.Duration
	now      func() time.Time
}

// New returns a Guard for req. Errors outside the taxonomy are written
// without detail unless WithProduction(false) is given.
func New(idp identity.Provider, profiles profilestore.Store, req Requirements, options ...Option) *Guard {
	g := &Guard{
		idp:      idp,
		profiles: profiles,
		registry: roles.Default(),
		writer:   autherror.NewWriter(true),
		report:   LogReporter,
		timeout:  identity.DefaultTimeout,
		now:      time.Now,
	}

	for _, opt := range options {
		opt(g)
	}

	if req.Name == "" {
		req.Name = "custom"
	}
	g.req = req
	g.checks = g.requirements()
	if req.RateLimit != nil {
		g.limiter = newLimiter(req.RateLimit)
	}

	return g
}

// Requirements returns what the guard enforces.
func (g *Guard) Requirements() Requirements {
	return g.req
}

func (g *Guard) requirements() []roles.Requirement {
	var reqs []roles.Requirement
	if g.req.MinRole != "" {
		reqs = append(reqs, g.registry.RequireRole(g.req.MinRole))
	}
	if len(g.req.Roles) > 0 {
		allowed := slices.Clone(g.req.Roles)
		reqs = append(reqs, func(s roles.Subject) error {
			if !slices.Contains(allowed, s.Role) {
				return autherror.Forbiddenf("One of roles %v is required", allowed)
			}

			return nil
		})
	}
	for _, p := range g.req.Permissions {
		reqs = append(reqs, g.registry.RequirePermission(p))
	}

	return reqs
}

// Middleware admits requests that satisfy the guard's Requirements. Admitted
// requests carry the user and profile in their context (see sessioninfo.UserFromCtx).
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r, ok := g.admit(w, r)
		if !ok {
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Handle admits requests like Middleware and writes h's result. Errors
// returned by h are written in the standard error shape.
func (g *Guard) Handle(h HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r, ok := g.admit(w, r)
		if !ok {
			return
		}

		resp, err := h(r)
		if err != nil {
			g.fail(w, r, err)

			return
		}

		if err := resp.write(w); err != nil {
			logger.Req(r).Error(errors.Wrap(err, "Response.write()"))
		}
	})
}

// Evaluate decides r without writing anything. The request is authorized only
// when every check passes; any failure or missing input rejects it.
func (g *Guard) Evaluate(r *http.Request) *Decision {
	ctx, span := otel.Tracer(name).Start(r.Context(), "Guard.Evaluate()")
	defer span.End()

	d := &Decision{State: Unauthenticated}

	tok, err := g.token(r)
	if err != nil {
		return d.reject(err)
	}
	if tok == "" {
		return d.reject(autherror.Unauthenticated("Authentication required"))
	}

	user, err := g.verify(ctx, tok)
	if err != nil {
		return d.reject(err)
	}
	if !user.Active {
		return d.reject(autherror.Inactive())
	}

	profile, err := g.profiles.Profile(ctx, user.ID)
	if err != nil {
		switch {
		case profilestore.IsInvalidValue(err):
			return d.reject(autherror.Forbidden("Profile role is not recognized").WithCause(err))
		case !httpio.HasNotFound(err):
			return d.reject(errors.Wrap(err, "profilestore.Store.Profile()"))
		}
		profile = nil
	}
	if profile != nil && !profile.Active {
		return d.reject(autherror.Inactive())
	}

	d.State = Authenticated
	d.User = user.WithProfile(profile)
	d.Profile = profile

	if g.limiter != nil {
		if wait, ok := g.limiter.allow(user.ID, g.now()); !ok {
			return d.reject(autherror.RateLimited(wait))
		}
	}

	if err := roles.Require(profile.Subject(), g.checks...); err != nil {
		return d.reject(err)
	}

	if g.req.RequireHIPAA && strings.TrimSpace(r.Header.Get(HeaderAccessReason)) == "" {
		return d.reject(autherror.HIPAACompliance("An access reason is required for PHI access"))
	}

	d.State = Authorized

	return d
}

// admit evaluates r, records the decision and writes any rejection.
func (g *Guard) admit(w http.ResponseWriter, r *http.Request) (*http.Request, bool) {
	start := time.Now()
	d := g.Evaluate(r)

	code := "AUTHORIZED"
	if d.State == Rejected {
		code = string(d.Code())
	}
	g.metrics.observe(g.req.Name, code, time.Since(start))

	if d.State != Authorized {
		requestID := g.fail(w, r, d.Err)
		g.audit(r, d, requestID)

		return r, false
	}
	g.audit(r, d, "")

	ctx := sessioninfo.NewCtx(r.Context(), d.User, d.Profile)
	l := logger.FromCtx(ctx).AddRequestAttribute("user ID", d.User.ID).
		WithAttributes().AddAttribute("user ID", d.User.ID).Logger()

	return r.WithContext(logger.NewCtx(ctx, l)), true
}

// fail writes err and returns the request ID given to the client.
func (g *Guard) fail(w http.ResponseWriter, r *http.Request, err error) string {
	e, ok := autherror.As(err)
	if ok {
		status, requestID := g.writer.Write(w, r, err)
		logger.Req(r).Infof("guard %s rejected request: %s (%d, request ID %s)", g.req.Name, e.Code(), status, requestID)

		return requestID
	}

	rep := Report{Method: r.Method, Path: r.URL.Path, Error: err.Error()}
	if g.req.RequireHIPAA {
		rep = Scrub(r, err)
		err = scrubbedError(rep.Error)
	}
	rep.Guard = g.req.Name

	_, requestID := g.writer.Write(w, r, err)
	logger.Req(r).AddRequestAttribute("request ID", requestID)
	g.report(r.Context(), rep)

	return requestID
}

// scrubbedError carries error text that has already been through Scrub.
type scrubbedError string

func (e scrubbedError) Error() string {
	return string(e)
}

// audit records PHI access and denials of authenticated callers. Failures
// are logged and do not change the response.
func (g *Guard) audit(r *http.Request, d *Decision, requestID string) {
	entry := &profilestore.AuditEntry{
		Resource:  r.Method + " " + r.URL.Path,
		RequestID: requestID,
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
		At:        g.now(),
	}

	switch {
	case d.State == Authorized && g.req.RequireHIPAA:
		entry.Action = profilestore.ActionPHIAccess
		entry.Outcome = profilestore.OutcomeAllowed
		entry.Reason = r.Header.Get(HeaderAccessReason)
		if strings.EqualFold(r.Header.Get(HeaderBreakGlass), "true") {
			entry.Action = profilestore.ActionBreakGlass
			entry.Details = map[string]string{"break_glass_reason": r.Header.Get(HeaderBreakGlassReason)}
		}
	case d.State == Rejected && d.User != nil:
		entry.Action = profilestore.ActionAccessDenied
		entry.Outcome = profilestore.OutcomeDenied
		entry.Reason = string(d.Code())
	default:
		return
	}
	entry.UserID = d.User.ID

	if err := g.profiles.RecordAudit(r.Context(), entry); err != nil {
		logger.Req(r).Error(errors.Wrap(err, "profilestore.Store.RecordAudit()"))
	}
}

func (g *Guard) verify(ctx context.Context, tok string) (*sessioninfo.User, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	user, err := g.idp.VerifyToken(ctx, tok)
	if err != nil {
		if errors.Is(err, identity.ErrRejected) {
			return nil, autherror.InvalidToken(err)
		}

		// An unreachable or slow identity provider leaves the caller unauthenticated.
		err = errors.Wrap(err, "identity.Provider.VerifyToken()")
		logger.FromCtx(ctx).Error(err)

		return nil, autherror.Unauthenticated("Authentication service unavailable").WithCause(err)
	}
	if user == nil || user.ID == "" {
		return nil, autherror.InvalidToken(nil)
	}

	return user, nil
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		ip, _, _ := strings.Cut(fwd, ",")

		return strings.TrimSpace(ip)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}

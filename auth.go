// Package auth wires the platform session and authorization layer into an
// application: sign-in endpoints backed by the shared session cookie, a
// per-request session Provider, and route guards.
package auth

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/cccteam/httpio"
	"github.com/cccteam/logger"
	"github.com/gangerdermatology/auth/config"
	"github.com/gangerdermatology/auth/cookie"
	"github.com/gangerdermatology/auth/guard"
	"github.com/gangerdermatology/auth/identity"
	"github.com/gangerdermatology/auth/internal/oauthflow"
	"github.com/gangerdermatology/auth/profilestore"
	"github.com/gangerdermatology/auth/provider"
	"github.com/gangerdermatology/auth/roles"
	"github.com/gangerdermatology/auth/sessionstore"
	"github.com/go-playground/errors/v5"
	"go.opentelemetry.io/otel"
)

const name = "github.com/gangerdermatology/auth"

// Auth holds the shared dependencies of an application's session endpoints and guards.
type Auth struct {
	cfg      *config.Config
	idp      identity.Provider
	profiles profilestore.Store
	sessions *sessionstore.Store
	cookies  *cookie.Client
	flow     provider.Authenticator
	registry *roles.Registry
	metrics  *guard.Metrics
	reporter guard.Reporter
	handle   LogHandler
	now      func() time.Time

	authenticated *guard.Guard
	staff         *guard.Guard
	manager       *guard.Guard
	admin         *guard.Guard
	superAdmin    *guard.Guard
	hipaa         *guard.Guard
}

// New returns Auth for cfg. Profiles, teams and audit entries are kept in profiles.
func New(cfg *config.Config, profiles profilestore.Store, options ...Option) (*Auth, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config.Config.Validate()")
	}

	a := &Auth{
		cfg:      cfg,
		profiles: profiles,
		registry: roles.Default(),
		reporter: guard.LogReporter,
		handle:   httpio.Log,
		now:      time.Now,
	}
	for _, opt := range options {
		opt(a)
	}

	if a.idp == nil {
		a.idp = identity.New(cfg.BaseURL, cfg.AnonKey,
			identity.WithVerifier(verifier(cfg)),
			identity.WithTimeout(cfg.RequestTimeout),
		)
	}

	key, strategies, err := sessionstore.Strategies(cfg.BaseURL, cfg.ProjectRef)
	if err != nil {
		return nil, errors.Wrap(err, "sessionstore.Strategies()")
	}
	var codec sessionstore.Codec = sessionstore.Base64Codec{}
	if cfg.SessionKey != "" {
		if codec, err = sessionstore.NewSealedCodec(cfg.SessionKey); err != nil {
			return nil, errors.Wrap(err, "sessionstore.NewSealedCodec()")
		}
	}
	a.sessions = sessionstore.New(key,
		sessionstore.WithStrategies(strategies...),
		sessionstore.WithCodec(codec),
		sessionstore.WithDomain(cfg.CookieDomain),
		sessionstore.WithSecure(cfg.Production),
		sessionstore.WithMaxAge(cfg.SessionMaxAge),
		sessionstore.WithClock(a.now),
	)

	if a.cookies, err = cookie.New(cfg.CookieKey, cookie.WithDomain(cfg.CookieDomain), cookie.WithSecure(cfg.Production)); err != nil {
		return nil, errors.Wrap(err, "cookie.New()")
	}
	if a.flow == nil {
		a.flow = oauthflow.New(a.cookies, a.idp, cfg.CallbackURL(), cfg.AllowedEmailDomains...)
	}

	a.authenticated = a.Guard(guard.Authenticated())
	a.staff = a.Guard(guard.Staff())
	a.manager = a.Guard(guard.Manager())
	a.admin = a.Guard(guard.Admin())
	a.superAdmin = a.Guard(guard.SuperAdmin())
	a.hipaa = a.Guard(guard.HIPAA())

	return a, nil
}

func verifier(cfg *config.Config) identity.Verifier {
	if cfg.JWTSecret != "" {
		return identity.NewHS256Verifier(cfg.BaseURL, cfg.JWTSecret)
	}

	return identity.NewJWKSVerifier(context.Background(), cfg.BaseURL)
}

// Sessions returns the shared session store.
func (a *Auth) Sessions() *sessionstore.Store {
	return a.sessions
}

// NewProvider returns a session Provider bound to the cookies of r. Writes go to w.
func (a *Auth) NewProvider(w http.ResponseWriter, r *http.Request) *provider.Provider {
	return provider.New(a.sessions.Request(w, r), a.idp, a.profiles,
		provider.WithAuthenticator(a.flow),
		provider.WithRegistry(a.registry),
		provider.WithAppName(a.cfg.AppName),
		provider.WithTimeout(a.cfg.RequestTimeout),
		provider.WithClock(a.now),
	)
}

// Provider returns the session Provider installed by LoadSession.
func Provider(r *http.Request) *provider.Provider {
	return provider.FromReq(r)
}

// LoadSession loads the caller's session and makes its Provider available to
// next through Provider(r). Signed out callers are passed through.
func (a *Auth) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := otel.Tracer(name).Start(r.Context(), "Auth.LoadSession()")
		defer span.End()

		p := a.NewProvider(w, r)
		p.Load(ctx)

		next.ServeHTTP(w, r.WithContext(provider.NewCtx(ctx, p)))
	})
}

// SignIn starts Google sign-in and redirects to the identity provider. The
// returnTo query parameter names the local page to land on afterwards.
func (a *Auth) SignIn() http.HandlerFunc {
	return a.handle(func(w http.ResponseWriter, r *http.Request) error {
		ctx, span := otel.Tracer(name).Start(r.Context(), "Auth.SignIn()")
		defer span.End()

		authURL, err := a.NewProvider(w, r).SignIn(w, r.URL.Query().Get("returnTo"))
		if err != nil {
			return httpio.NewEncoder(w).ClientMessage(ctx, err)
		}

		http.Redirect(w, r, authURL, http.StatusFound)

		return nil
	})
}

// Callback completes sign-in. Failures are sent back to the login page with
// a message.
func (a *Auth) Callback() http.HandlerFunc {
	return a.handle(func(w http.ResponseWriter, r *http.Request) error {
		ctx, span := otel.Tracer(name).Start(r.Context(), "Auth.Callback()")
		defer span.End()

		returnTo, err := a.NewProvider(w, r).CompleteSignIn(ctx, w, r)
		if err != nil {
			message := "Internal Server Error"
			if !httpio.CauseIsError(err) {
				message = httpio.Message(err)
			}
			http.Redirect(w, r, a.loginURL(message), http.StatusFound)

			return errors.Wrap(err, "provider.Provider.CompleteSignIn()")
		}

		http.Redirect(w, r, returnTo, http.StatusFound)

		return nil
	})
}

// SignOut destroys the caller's session.
func (a *Auth) SignOut() http.HandlerFunc {
	return a.handle(func(w http.ResponseWriter, r *http.Request) error {
		ctx, span := otel.Tracer(name).Start(r.Context(), "Auth.SignOut()")
		defer span.End()

		p := a.NewProvider(w, r)
		p.Load(ctx)
		p.SignOut(ctx)

		return httpio.NewEncoder(w).Ok(nil)
	})
}

// Session reports the caller's session state.
func (a *Auth) Session() http.HandlerFunc {
	return a.handle(func(w http.ResponseWriter, r *http.Request) error {
		ctx, span := otel.Tracer(name).Start(r.Context(), "Auth.Session()")
		defer span.End()

		state := a.NewProvider(w, r).Load(ctx)

		return httpio.NewEncoder(w).Ok(state)
	})
}

// Refresh exchanges the caller's refresh token for a new session.
func (a *Auth) Refresh() http.HandlerFunc {
	return a.handle(func(w http.ResponseWriter, r *http.Request) error {
		ctx, span := otel.Tracer(name).Start(r.Context(), "Auth.Refresh()")
		defer span.End()

		p := a.NewProvider(w, r)
		if err := p.Refresh(ctx); err != nil {
			if httpio.HasUnauthorized(err) {
				return httpio.NewEncoder(w).ClientMessage(ctx, err)
			}

			return httpio.NewEncoder(w).ClientMessage(ctx, httpio.NewUnauthorizedMessageWithError(err, "Session refresh failed"))
		}

		return httpio.NewEncoder(w).Ok(p.State())
	})
}

// SetActiveTeam selects the team given by the team query parameter.
func (a *Auth) SetActiveTeam() http.HandlerFunc {
	return a.handle(func(w http.ResponseWriter, r *http.Request) error {
		ctx, span := otel.Tracer(name).Start(r.Context(), "Auth.SetActiveTeam()")
		defer span.End()

		teamID := r.URL.Query().Get("team")
		if teamID == "" {
			return httpio.NewEncoder(w).BadRequestMessage(ctx, "missing team query parameter")
		}

		p := a.NewProvider(w, r)
		if !p.Load(ctx).IsAuthenticated {
			return httpio.NewEncoder(w).ClientMessage(ctx, httpio.NewUnauthorizedMessage("Authentication required"))
		}

		if err := p.SetActiveTeam(ctx, teamID); err != nil {
			if errors.Is(err, provider.ErrNotMember) {
				return httpio.NewEncoder(w).ClientMessage(ctx, httpio.NewNotFoundMessage("team not found"))
			}

			return httpio.NewEncoder(w).ClientMessage(ctx, err)
		}

		logger.Req(r).AddRequestAttribute("team ID", teamID)

		return httpio.NewEncoder(w).Ok(p.State())
	})
}

func (a *Auth) loginURL(message string) string {
	return a.cfg.LoginURL + "?message=" + url.QueryEscape(message)
}

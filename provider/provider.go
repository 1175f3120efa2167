// Package provider holds the current session for one client and derives the
// user, profile, team and permission view that application code reads.
package provider

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/cccteam/httpio"
	"github.com/cccteam/logger"
	"github.com/gangerdermatology/auth/identity"
	"github.com/gangerdermatology/auth/profilestore"
	"github.com/gangerdermatology/auth/roles"
	"github.com/gangerdermatology/auth/sessioninfo"
	"github.com/gangerdermatology/auth/sessionstore"
	"github.com/go-playground/errors/v5"
	"go.opentelemetry.io/otel"
)

const name = "github.com/gangerdermatology/auth/provider"

// storageWrite is the change a resolution makes to the session store.
type storageWrite int

const (
	keepStored storageWrite = iota
	saveSession
	clearSession
)

// Provider is the single holder of session state for one client. Every
// consumer of a Provider observes the same user and profile values.
type Provider struct {
	storage  sessionstore.Storage
	idp      identity.Provider
	profiles profilestore.Store
	flow     Authenticator
	registry *roles.Registry
	appName  string
	timeout  time.Duration
	now      func() time.Time

	mu         sync.RWMutex
	generation uint64
	state      snapshot
	listeners  map[uint64]Listener
	nextID     uint64
}

// New returns a Provider reading the session from storage. The Provider
// reports IsLoading until the first call to Load.
func New(storage sessionstore.Storage, idp identity.Provider, profiles profilestore.Store, options ...Option) *Provider {
	p := &Provider{
		storage:   storage,
		idp:       idp,
		profiles:  profiles,
		registry:  roles.Default(),
		appName:   "ganger",
		timeout:   identity.DefaultTimeout,
		now:       time.Now,
		state:     snapshot{loading: true, activeTeam: -1},
		listeners: make(map[uint64]Listener),
	}
	for _, opt := range options {
		opt(p)
	}

	return p
}

// State returns the current view.
func (p *Provider) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.state.view(p.registry, p.now())
}

// Subscribe registers l for state changes. Listeners run synchronously, in
// the goroutine that made the change, after the change is visible through
// State. The returned func removes the listener.
func (p *Provider) Subscribe(l Listener) (unsubscribe func()) {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = l
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

// Load reads the session from storage and resolves the user and profile. An
// expired session gets exactly one refresh attempt; a session that cannot be
// used is cleared.
func (p *Provider) Load(ctx context.Context) State {
	ctx, span := otel.Tracer(name).Start(ctx, "Provider.Load()")
	defer span.End()

	gen := p.currentGeneration()
	next, write := p.resolve(ctx)

	return p.commit(ctx, gen, next, write)
}

// Refresh exchanges the stored refresh token for a new session. On failure
// the session is cleared and the Provider becomes unauthenticated.
func (p *Provider) Refresh(ctx context.Context) error {
	ctx, span := otel.Tracer(name).Start(ctx, "Provider.Refresh()")
	defer span.End()

	gen := p.currentGeneration()

	session := p.storage.Session(ctx)
	if !session.Refreshable() {
		p.commit(ctx, gen, snapshot{activeTeam: -1}, clearSession)

		return httpio.NewUnauthorizedMessage("No session to refresh")
	}

	refreshed, err := p.refresh(ctx, session)
	if err != nil {
		p.commit(ctx, gen, snapshot{activeTeam: -1}, clearSession)

		return errors.Wrap(err, "Provider.refresh()")
	}

	p.commit(ctx, gen, p.withProfile(ctx, refreshed, refreshed.User), saveSession)

	return nil
}

// SignIn starts an OAuth sign-in and returns the URL to redirect the browser to.
func (p *Provider) SignIn(w http.ResponseWriter, returnTo string) (string, error) {
	if p.flow == nil {
		return "", ErrNoAuthenticator
	}

	u, err := p.flow.AuthCodeURL(w, returnTo)
	if err != nil {
		return "", errors.Wrap(err, "Authenticator.AuthCodeURL()")
	}

	return u, nil
}

// CompleteSignIn finishes the OAuth sign-in carried by r, stores the new
// session, and materializes the user's profile. It returns the local path
// the browser should return to.
func (p *Provider) CompleteSignIn(ctx context.Context, w http.ResponseWriter, r *http.Request) (string, error) {
	ctx, span := otel.Tracer(name).Start(ctx, "Provider.CompleteSignIn()")
	defer span.End()

	if p.flow == nil {
		return "", ErrNoAuthenticator
	}

	session, returnTo, err := p.flow.Verify(ctx, w, r)
	if err != nil {
		return "", errors.Wrap(err, "Authenticator.Verify()")
	}
	if session == nil || session.User == nil {
		return "", httpio.NewUnauthorizedMessage("Sign-in returned no user")
	}

	// last write wins between concurrent sign-ins
	gen := p.bumpGeneration()

	profile, err := p.profiles.EnsureProfile(ctx, session.User)
	if err != nil {
		logger.FromCtx(ctx).Error(errors.Wrap(err, "profilestore.Store.EnsureProfile()"))
		profile = nil
	}
	next := p.withLoadedProfile(ctx, session, session.User, profile)
	p.commit(ctx, gen, next, saveSession)

	p.audit(ctx, r, &profilestore.AuditEntry{
		UserID:  session.User.ID,
		Action:  profilestore.ActionSignIn,
		Outcome: profilestore.OutcomeAllowed,
	})

	return returnTo, nil
}

// SignOut clears the session and notifies listeners. Checks that start after
// SignOut returns observe the signed out state; loads and refreshes that were
// in flight when it was called are discarded.
func (p *Provider) SignOut(ctx context.Context) {
	ctx, span := otel.Tracer(name).Start(ctx, "Provider.SignOut()")
	defer span.End()

	stored := p.storage.Session(ctx)

	p.mu.Lock()
	p.generation++
	prev := p.state
	p.state = snapshot{activeTeam: -1}
	p.storage.ClearSession(ctx)
	p.mu.Unlock()

	p.notify()

	var accessToken, userID string
	switch {
	case prev.session != nil:
		accessToken = prev.session.AccessToken
	case stored != nil:
		accessToken = stored.AccessToken
	}
	if prev.user != nil {
		userID = prev.user.ID
	}

	if accessToken != "" {
		ctx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()

		if err := p.idp.SignOut(ctx, accessToken); err != nil {
			logger.FromCtx(ctx).Error(errors.Wrap(err, "identity.Provider.SignOut()"))
		}
	}

	if userID != "" {
		p.audit(ctx, nil, &profilestore.AuditEntry{
			UserID:  userID,
			Action:  profilestore.ActionSignOut,
			Outcome: profilestore.OutcomeAllowed,
		})
	}
}

// SetActiveTeam selects the team the user is working in and remembers the
// choice for this application.
func (p *Provider) SetActiveTeam(ctx context.Context, teamID string) error {
	p.mu.Lock()
	i := activeIndex(p.state.teams, teamID)
	if i < 0 || p.state.teams[i].Team.ID != teamID {
		p.mu.Unlock()

		return errors.Wrapf(ErrNotMember, "team %s", teamID)
	}
	p.state.activeTeam = i
	p.storage.SetItem(ctx, p.teamKey(), teamID)
	p.mu.Unlock()

	p.notify()

	return nil
}

// RefreshProfile reloads the profile, teams and app grants for the current
// user. On failure the profile becomes nil and the user stays signed in.
func (p *Provider) RefreshProfile(ctx context.Context) error {
	ctx, span := otel.Tracer(name).Start(ctx, "Provider.RefreshProfile()")
	defer span.End()

	p.mu.RLock()
	gen := p.generation
	current := p.state
	p.mu.RUnlock()

	if current.user == nil {
		return httpio.NewUnauthorizedMessage("Not signed in")
	}

	profile, err := p.profiles.Profile(ctx, current.user.ID)
	if err != nil {
		p.commit(ctx, gen, p.withLoadedProfile(ctx, current.session, current.user, nil), keepStored)

		return errors.Wrap(err, "profilestore.Store.Profile()")
	}
	p.commit(ctx, gen, p.withLoadedProfile(ctx, current.session, current.user, profile), keepStored)

	return nil
}

// HasPermission reports whether the signed in user holds permission. Without
// a profile the user holds no permissions.
func (p *Provider) HasPermission(permission string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.state.profile == nil || !p.state.authenticated(p.now()) {
		return false
	}

	return p.registry.HasPermission(p.state.profile.Role, permission, p.state.explicit()...)
}

// HasAppAccess reports whether the signed in user may use app at level. An
// unexpired explicit grant replaces the role default.
func (p *Provider) HasAppAccess(app string, level roles.AccessLevel) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	now := p.now()
	if p.state.profile == nil || !p.state.authenticated(now) {
		return false
	}

	var explicit roles.AccessLevel
	for _, g := range p.state.grants {
		if g.App == app && !g.Expired(now) {
			explicit = g.Level
		}
	}

	return p.registry.HasAppAccess(p.state.profile.Role, explicit, level)
}

// resolve computes the state for the stored session without touching the
// Provider.
func (p *Provider) resolve(ctx context.Context) (snapshot, storageWrite) {
	session := p.storage.Session(ctx)
	if session == nil || session.User == nil {
		return snapshot{activeTeam: -1}, keepStored
	}

	if session.Valid(p.now()) {
		user, err := p.verify(ctx, session)
		switch {
		case err == nil:
			return p.withProfile(ctx, session, user), keepStored
		case !errors.Is(err, identity.ErrRejected):
			// the session may still be good; fail closed without discarding it
			logger.FromCtx(ctx).Error(errors.Wrap(err, "Provider.verify()"))

			return snapshot{activeTeam: -1}, keepStored
		}
	}

	if !session.Refreshable() {
		return snapshot{activeTeam: -1}, clearSession
	}

	refreshed, err := p.refresh(ctx, session)
	if err != nil {
		logger.FromCtx(ctx).Infof("session refresh failed: %v", err)

		return snapshot{activeTeam: -1}, clearSession
	}

	return p.withProfile(ctx, refreshed, refreshed.User), saveSession
}

// verify authenticates the stored access token with the identity provider
// and returns the user it belongs to.
func (p *Provider) verify(ctx context.Context, session *sessioninfo.Session) (*sessioninfo.User, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	verified, err := p.idp.VerifyToken(ctx, session.AccessToken)
	if err != nil {
		return nil, errors.Wrap(err, "identity.Provider.VerifyToken()")
	}
	if verified == nil {
		return nil, errors.Wrap(identity.ErrRejected, "token verified without a user")
	}
	if verified.ID != session.User.ID {
		return nil, errors.Wrap(identity.ErrRejected, "token subject does not match the stored user")
	}

	user := *verified
	if user.Name == "" {
		user.Name = session.User.Name
	}
	if user.AvatarURL == "" {
		user.AvatarURL = session.User.AvatarURL
	}
	user.MFAEnabled = user.MFAEnabled || session.User.MFAEnabled

	return &user, nil
}

// refresh makes a single refresh attempt. A timeout is a failure.
func (p *Provider) refresh(ctx context.Context, session *sessioninfo.Session) (*sessioninfo.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	refreshed, err := p.idp.Refresh(ctx, session.RefreshToken)
	if err != nil {
		return nil, errors.Wrap(err, "identity.Provider.Refresh()")
	}
	if refreshed.User == nil {
		refreshed.User = session.User
	}

	return refreshed, nil
}

// withProfile loads the profile for user. A failed lookup leaves the profile
// nil.
func (p *Provider) withProfile(ctx context.Context, session *sessioninfo.Session, user *sessioninfo.User) snapshot {
	profile, err := p.profiles.Profile(ctx, user.ID)
	if err != nil {
		if !httpio.HasNotFound(err) {
			logger.FromCtx(ctx).Error(errors.Wrap(err, "profilestore.Store.Profile()"))
		}
		profile = nil
	}

	return p.withLoadedProfile(ctx, session, user, profile)
}

// withLoadedProfile completes a snapshot with the teams and app grants of
// profile. Lookup failures leave those empty.
func (p *Provider) withLoadedProfile(ctx context.Context, session *sessioninfo.Session, user *sessioninfo.User, profile *sessioninfo.Profile) snapshot {
	next := snapshot{session: session, user: user, profile: profile, activeTeam: -1}
	if profile == nil {
		return next
	}

	teams, err := p.profiles.Teams(ctx, user.ID)
	if err != nil {
		logger.FromCtx(ctx).Error(errors.Wrap(err, "profilestore.Store.Teams()"))
	}
	grants, err := p.profiles.AppPermissions(ctx, user.ID)
	if err != nil {
		logger.FromCtx(ctx).Error(errors.Wrap(err, "profilestore.Store.AppPermissions()"))
	}

	stored, _ := p.storage.GetItem(ctx, p.teamKey())
	next.teams = teams
	next.grants = grants
	next.activeTeam = activeIndex(teams, stored)

	return next
}

func (p *Provider) currentGeneration() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.generation
}

func (p *Provider) bumpGeneration() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.generation++

	return p.generation
}

// commit installs next and applies write to storage unless a sign-in or
// sign-out happened since gen was read, in which case next is discarded.
func (p *Provider) commit(ctx context.Context, gen uint64, next snapshot, write storageWrite) State {
	p.mu.Lock()
	if gen != p.generation {
		p.state.loading = false
		st := p.state.view(p.registry, p.now())
		p.mu.Unlock()

		return st
	}

	switch write {
	case saveSession:
		p.storage.SetSession(ctx, next.session)
	case clearSession:
		p.storage.ClearSession(ctx)
	}
	p.state = next
	st := p.state.view(p.registry, p.now())
	p.mu.Unlock()

	p.notify()

	return st
}

func (p *Provider) notify() {
	p.mu.RLock()
	st := p.state.view(p.registry, p.now())
	listeners := make([]Listener, 0, len(p.listeners))
	for _, l := range p.listeners {
		listeners = append(listeners, l)
	}
	p.mu.RUnlock()

	for _, l := range listeners {
		l(st)
	}
}

func (p *Provider) audit(ctx context.Context, r *http.Request, entry *profilestore.AuditEntry) {
	if r != nil {
		entry.IPAddress = r.RemoteAddr
		entry.UserAgent = r.UserAgent()
	}

	if err := p.profiles.RecordAudit(ctx, entry); err != nil {
		logger.FromCtx(ctx).Error(errors.Wrap(err, "profilestore.Store.RecordAudit()"))
	}
}

func (p *Provider) teamKey() string {
	return p.appName + "-active-team"
}

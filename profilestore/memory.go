package profilestore

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cccteam/httpio"
	"github.com/gangerdermatology/auth/roles"
	"github.com/gangerdermatology/auth/sessioninfo"
	"github.com/go-playground/errors/v5"
)

// Memory is an in-process Store for local development and tests. It honours the
// same semantics as the database drivers but keeps nothing across restarts.
type Memory struct {
	mu          sync.RWMutex
	profiles    map[string]*sessioninfo.Profile
	teams       map[string][]sessioninfo.TeamMembership
	grants      map[string][]sessioninfo.AppPermission
	permissions map[string][]string
	audit       []AuditEntry
	now         func() time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		profiles:    make(map[string]*sessioninfo.Profile),
		teams:       make(map[string][]sessioninfo.TeamMembership),
		grants:      make(map[string][]sessioninfo.AppPermission),
		permissions: make(map[string][]string),
		now:         time.Now,
	}
}

// PutProfile adds or replaces a profile. Permissions on p become its explicit grants.
func (m *Memory) PutProfile(p *sessioninfo.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *p
	cp.Locations = slices.Clone(p.Locations)
	cp.Permissions = nil
	m.profiles[p.UserID] = &cp
	m.permissions[p.UserID] = slices.Clone(p.Permissions)
}

// PutTeam adds a team membership for userID.
func (m *Memory) PutTeam(userID string, membership sessioninfo.TeamMembership) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.teams[userID] = append(m.teams[userID], membership)
}

// PutAppPermission adds or replaces the grant for grant.App.
func (m *Memory) PutAppPermission(userID string, grant sessioninfo.AppPermission) {
	m.mu.Lock()
	defer m.mu.Unlock()

	grants := slices.DeleteFunc(m.grants[userID], func(g sessioninfo.AppPermission) bool { return g.App == grant.App })
	m.grants[userID] = append(grants, grant)
}

// AuditEntries returns a copy of the recorded audit log.
func (m *Memory) AuditEntries() []AuditEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Clone(m.audit)
}

// Profile returns the profile for userID.
func (m *Memory) Profile(_ context.Context, userID string) (*sessioninfo.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.profiles[userID]
	if !ok {
		return nil, httpio.NewNotFoundMessagef("profile %q not found", userID)
	}

	return m.copyProfile(p), nil
}

// ProfileByEmail returns the profile whose email matches case-insensitively.
func (m *Memory) ProfileByEmail(_ context.Context, email string) (*sessioninfo.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	email = strings.TrimSpace(email)
	for _, p := range m.profiles {
		if strings.EqualFold(p.Email, email) {
			return m.copyProfile(p), nil
		}
	}

	return nil, httpio.NewNotFoundMessagef("profile for %q not found", email)
}

// EnsureProfile creates a staff profile for user if none exists.
func (m *Memory) EnsureProfile(_ context.Context, user *sessioninfo.User) (*sessioninfo.Profile, error) {
	if user == nil {
		return nil, errors.New("user is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.profiles[user.ID]
	if !ok {
		now := m.now()
		p = &sessioninfo.Profile{
			UserID:    user.ID,
			Email:     strings.ToLower(user.Email),
			FullName:  user.Name,
			Role:      roles.Staff,
			Active:    true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		m.profiles[user.ID] = p
	}

	return m.copyProfile(p), nil
}

// Teams returns the team memberships of userID.
func (m *Memory) Teams(_ context.Context, userID string) ([]sessioninfo.TeamMembership, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Clone(m.teams[userID]), nil
}

// AppPermissions returns the unexpired grants of userID.
func (m *Memory) AppPermissions(_ context.Context, userID string) ([]sessioninfo.AppPermission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := m.now()
	var grants []sessioninfo.AppPermission
	for _, g := range m.grants[userID] {
		if !g.Expired(now) {
			grants = append(grants, g)
		}
	}

	return grants, nil
}

// UserPermissions returns the explicit permissions of userID.
func (m *Memory) UserPermissions(_ context.Context, userID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Clone(m.permissions[userID]), nil
}

// AddUserPermissions grants permissions to userID.
func (m *Memory) AddUserPermissions(_ context.Context, userID string, permissions ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range permissions {
		if !slices.Contains(m.permissions[userID], p) {
			m.permissions[userID] = append(m.permissions[userID], p)
		}
	}
	slices.Sort(m.permissions[userID])

	return nil
}

// DeleteUserPermissions revokes permissions from userID.
func (m *Memory) DeleteUserPermissions(_ context.Context, userID string, permissions ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.permissions[userID] = slices.DeleteFunc(m.permissions[userID], func(p string) bool {
		return slices.Contains(permissions, p)
	})

	return nil
}

// RecordAudit appends entry to the in-memory audit log.
func (m *Memory) RecordAudit(_ context.Context, entry *AuditEntry) error {
	if entry == nil {
		return errors.New("audit entry is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e := *entry
	if e.At.IsZero() {
		e.At = m.now()
	}
	m.audit = append(m.audit, e)

	return nil
}

func (m *Memory) copyProfile(p *sessioninfo.Profile) *sessioninfo.Profile {
	cp := *p
	cp.Locations = slices.Clone(p.Locations)
	cp.Permissions = slices.Clone(m.permissions[p.UserID])

	return &cp
}

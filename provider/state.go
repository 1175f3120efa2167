package provider

import (
	"slices"
	"time"

	"github.com/gangerdermatology/auth/roles"
	"github.com/gangerdermatology/auth/sessioninfo"
)

// State is the view of the session handed to application code.
type State struct {
	User            *sessioninfo.User            `json:"user"`
	Profile         *sessioninfo.Profile         `json:"profile"`
	IsAuthenticated bool                         `json:"isAuthenticated"`
	IsLoading       bool                         `json:"isLoading"`
	Permissions     []string                     `json:"permissions"`
	Teams           []sessioninfo.TeamMembership `json:"teams"`
	ActiveTeam      *sessioninfo.Team            `json:"activeTeam"`
	TeamRole        roles.TeamRole               `json:"teamRole,omitempty"`
	AppPermissions  []sessioninfo.AppPermission  `json:"appPermissions,omitempty"`
}

// snapshot is the mutable state guarded by Provider.mu.
type snapshot struct {
	loading    bool
	session    *sessioninfo.Session
	user       *sessioninfo.User
	profile    *sessioninfo.Profile
	teams      []sessioninfo.TeamMembership
	grants     []sessioninfo.AppPermission
	activeTeam int
}

// authenticated reports whether the snapshot holds a usable, active identity.
// An inactive profile overrides an active identity; a missing profile does not.
func (s *snapshot) authenticated(now time.Time) bool {
	if s.user == nil || !s.user.Active || !s.session.Valid(now) {
		return false
	}

	return s.profile == nil || s.profile.Active
}

func (s *snapshot) membership() (sessioninfo.TeamMembership, bool) {
	if s.activeTeam < 0 || s.activeTeam >= len(s.teams) {
		return sessioninfo.TeamMembership{}, false
	}

	return s.teams[s.activeTeam], true
}

// explicit returns the permission overrides for the snapshot: the profile's
// own grants plus those of the active team role.
func (s *snapshot) explicit() []string {
	if s.profile == nil {
		return nil
	}

	perms := slices.Clone(s.profile.Permissions)
	if m, ok := s.membership(); ok {
		perms = append(perms, m.Role.Permissions()...)
	}

	return perms
}

func (s *snapshot) view(registry *roles.Registry, now time.Time) State {
	st := State{
		User:            s.user,
		Profile:         s.profile,
		IsAuthenticated: s.authenticated(now),
		IsLoading:       s.loading,
		Teams:           s.teams,
		AppPermissions:  s.grants,
	}
	if !st.IsAuthenticated {
		return st
	}

	if m, ok := s.membership(); ok {
		team := m.Team
		st.ActiveTeam = &team
		st.TeamRole = m.Role
	}

	if s.profile != nil {
		perms := append(registry.Permissions(s.profile.Role), s.explicit()...)
		slices.Sort(perms)
		st.Permissions = slices.Compact(perms)
	}

	return st
}

// activeIndex returns the index of teamID in teams, falling back to the
// first team.
func activeIndex(teams []sessioninfo.TeamMembership, teamID string) int {
	if len(teams) == 0 {
		return -1
	}

	if i := slices.IndexFunc(teams, func(m sessioninfo.TeamMembership) bool { return m.Team.ID == teamID }); i >= 0 {
		return i
	}

	return 0
}

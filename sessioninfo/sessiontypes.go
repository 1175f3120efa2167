// Package sessioninfo defines the session, identity and profile records shared
// by the auth packages, and the context helpers used to pass them to handlers.
package sessioninfo

import (
	"slices"
	"time"

	"github.com/gangerdermatology/auth/roles"
)

// Session is the authenticated token pair plus identity for one browser.
// Its JSON form is what the session store persists.
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	ExpiresAt    int64  `json:"expires_at"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`
}

// Expired reports whether the access token is past its expiry. A session
// without an expiry is treated as expired.
func (s *Session) Expired(now time.Time) bool {
	return s == nil || s.ExpiresAt <= now.Unix()
}

// Refreshable reports whether the session carries a refresh token.
func (s *Session) Refreshable() bool {
	return s != nil && s.RefreshToken != ""
}

// Valid reports whether the session has a user and an unexpired access token.
func (s *Session) Valid(now time.Time) bool {
	return s != nil && s.User != nil && s.AccessToken != "" && !s.Expired(now)
}

// Usable reports whether the session is valid now or can be made valid by a
// refresh. An unusable session is the same as no session.
func (s *Session) Usable(now time.Time) bool {
	if s == nil || s.User == nil {
		return false
	}

	return s.Valid(now) || s.Refreshable()
}

// User is the authenticated principal as reported by the identity provider,
// with role and location data merged in from the profile store by the guard.
type User struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	Name       string     `json:"name,omitempty"`
	AvatarURL  string     `json:"avatar_url,omitempty"`
	Role       roles.Role `json:"role,omitempty"`
	Locations  []string   `json:"locations,omitempty"`
	Active     bool       `json:"active"`
	MFAEnabled bool       `json:"mfa_enabled"`
}

// WithProfile returns a copy of u with the profile's authorization data applied.
// A nil profile leaves the user without a role.
func (u *User) WithProfile(p *Profile) *User {
	merged := *u
	merged.Locations = nil
	merged.Role = ""
	if p == nil {
		return &merged
	}

	merged.Role = p.Role
	merged.Locations = slices.Clone(p.Locations)
	merged.Active = u.Active && p.Active
	if merged.Name == "" {
		merged.Name = p.FullName
	}

	return &merged
}

// Profile is the application-level record associated with an identity.
type Profile struct {
	UserID      string     `json:"user_id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name,omitempty"`
	Role        roles.Role `json:"role"`
	Department  string     `json:"department,omitempty"`
	Locations   []string   `json:"locations,omitempty"`
	Active      bool       `json:"active"`
	Permissions []string   `json:"permissions,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Subject returns the authorization subject for the profile. A nil profile
// yields the zero Subject, which is denied everything.
func (p *Profile) Subject() roles.Subject {
	if p == nil {
		return roles.Subject{}
	}

	attrs := map[string]string{}
	if p.Department != "" {
		attrs["department"] = p.Department
	}

	return roles.Subject{
		Role:        p.Role,
		Permissions: slices.Clone(p.Permissions),
		Locations:   slices.Clone(p.Locations),
		Attributes:  attrs,
	}
}

// Team is a collaboration group used by team-oriented applications.
type Team struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// TeamMembership is a user's membership in one team.
type TeamMembership struct {
	Team Team           `json:"team"`
	Role roles.TeamRole `json:"role"`
}

// AppPermission is an explicit per-application grant.
type AppPermission struct {
	App       string            `json:"app"`
	Level     roles.AccessLevel `json:"level"`
	ExpiresAt *time.Time        `json:"expires_at,omitempty"`
}

// Expired reports whether the grant has lapsed.
func (a AppPermission) Expired(now time.Time) bool {
	return a.ExpiresAt != nil && !a.ExpiresAt.After(now)
}

// Package roles is the authorization policy engine. It resolves roles,
// permissions, locations and routes into allow or deny decisions. Every
// lookup fails closed: unknown or missing input denies.
package roles

import (
	"slices"
	"strings"

	"github.com/go-playground/errors/v5"
)

// Role is one of the fixed platform roles. Values outside the enumeration are
// only produced by converting raw strings without Parse, and every predicate
// treats them as unknown.
type Role string

const (
	Staff          Role = "staff"
	ClinicalStaff  Role = "clinical_staff"
	Manager        Role = "manager"
	SuperAdmin     Role = "superadmin"
	PharmaRep      Role = "pharma_rep"
	Patient        Role = "patient"
	TechnicalAdmin Role = "technical_admin"
)

var allRoles = []Role{Staff, ClinicalStaff, Manager, SuperAdmin, PharmaRep, Patient, TechnicalAdmin}

// All returns every role in the enumeration.
func All() []Role {
	return slices.Clone(allRoles)
}

// Parse converts an external string into a Role, rejecting anything outside the enumeration.
func Parse(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", errors.Newf("unknown role %q", s)
	}

	return r, nil
}

// Valid reports whether r is part of the enumeration.
func (r Role) Valid() bool {
	return slices.Contains(allRoles, r)
}

func (r Role) String() string {
	return string(r)
}

// TeamRole is a user's role within one team.
type TeamRole string

const (
	TeamLeader TeamRole = "leader"
	TeamMember TeamRole = "member"
	TeamViewer TeamRole = "viewer"
)

// ParseTeamRole converts an external string into a TeamRole.
func ParseTeamRole(s string) (TeamRole, error) {
	switch r := TeamRole(strings.ToLower(strings.TrimSpace(s))); r {
	case TeamLeader, TeamMember, TeamViewer:
		return r, nil
	default:
		return "", errors.Newf("unknown team role %q", s)
	}
}

// Permissions returns the team-scoped permissions carried by the team role.
func (r TeamRole) Permissions() []string {
	switch r {
	case TeamLeader:
		return []string{"manage:team", "read:team", "write:team"}
	case TeamMember:
		return []string{"read:team", "write:team"}
	case TeamViewer:
		return []string{"read:team"}
	default:
		return nil
	}
}

// AccessLevel is the per-application access granted to a user.
type AccessLevel string

const (
	AccessNone  AccessLevel = "none"
	AccessRead  AccessLevel = "read"
	AccessWrite AccessLevel = "write"
	AccessAdmin AccessLevel = "admin"
)

var accessOrder = []AccessLevel{AccessNone, AccessRead, AccessWrite, AccessAdmin}

// ParseAccessLevel converts an external string into an AccessLevel.
func ParseAccessLevel(s string) (AccessLevel, error) {
	l := AccessLevel(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(accessOrder, l) {
		return "", errors.Newf("unknown access level %q", s)
	}

	return l, nil
}

// Satisfies reports whether l is at least required. Unknown levels never satisfy.
func (l AccessLevel) Satisfies(required AccessLevel) bool {
	have := slices.Index(accessOrder, l)
	want := slices.Index(accessOrder, required)
	if have < 0 || want < 0 {
		return false
	}

	return have >= want
}

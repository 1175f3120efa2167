package roles

import (
	"github.com/gangerdermatology/auth/autherror"
)

// Subject is what a business-logic check is evaluated against. A zero Subject
// has no role and is denied everything.
type Subject struct {
	Role        Role
	Permissions []string
	Locations   []string
	Attributes  map[string]string
}

// Requirement is a guard built by RequirePermission, RequireRole and friends.
// It returns a typed AuthorizationError when the subject does not qualify.
type Requirement func(s Subject) error

// Require runs every requirement and returns the first failure.
func Require(s Subject, reqs ...Requirement) error {
	for _, req := range reqs {
		if err := req(s); err != nil {
			return err
		}
	}

	return nil
}

// RequirePermission returns a Requirement for permission.
func (r *Registry) RequirePermission(permission string) Requirement {
	return func(s Subject) error {
		if !r.HasPermission(s.Role, permission, s.Permissions...) {
			return autherror.Forbiddenf("Permission %q is required", permission)
		}

		return nil
	}
}

// RequireCondition returns a Requirement for a conditioned permission.
func (r *Registry) RequireCondition(p Permission) Requirement {
	return func(s Subject) error {
		if !r.Check(s.Role, p, s.Attributes, s.Permissions...) {
			return autherror.Forbiddenf("Permission %q is required", p.Key())
		}

		return nil
	}
}

// RequireRole returns a Requirement for a minimum role level.
func (r *Registry) RequireRole(role Role) Requirement {
	return func(s Subject) error {
		if !r.HasRole(s.Role, role) {
			return autherror.Forbiddenf("Role %q or higher is required", role)
		}

		return nil
	}
}

// RequireLocation returns a Requirement for access to a facility.
func (r *Registry) RequireLocation(location string) Requirement {
	return func(s Subject) error {
		if !r.HasLocationAccess(s.Role, s.Locations, location) {
			return autherror.Forbiddenf("Access to location %q is required", location)
		}

		return nil
	}
}

// RequirePermission builds a Requirement against the default registry.
func RequirePermission(permission string) Requirement {
	return Default().RequirePermission(permission)
}

// RequireRole builds a Requirement against the default registry.
func RequireRole(role Role) Requirement {
	return Default().RequireRole(role)
}

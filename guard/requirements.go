package guard

import (
	"slices"
	"time"

	"github.com/gangerdermatology/auth/roles"
)

// RateLimit allows MaxRequests per Window for each caller.
type RateLimit struct {
	Window      time.Duration
	MaxRequests int
}

// Requirements is what a request must satisfy to reach the wrapped handler.
type Requirements struct {
	// Name labels the guard in logs and metrics.
	Name string

	// MinRole is the lowest role level admitted. Empty admits any authenticated user.
	MinRole roles.Role

	// Roles, when set, admits only these roles.
	Roles []roles.Role

	// Permissions must all be held.
	Permissions []string

	// RequireHIPAA demands an access reason, audits the access and scrubs reported errors.
	RequireHIPAA bool

	RateLimit *RateLimit
}

// WithPermissions returns a copy of r that also requires permissions.
func (r Requirements) WithPermissions(permissions ...string) Requirements {
	r.Permissions = append(slices.Clone(r.Permissions), permissions...)

	return r
}

// WithRoles returns a copy of r that admits only roles.
func (r Requirements) WithRoles(rs ...roles.Role) Requirements {
	r.Roles = append(slices.Clone(r.Roles), rs...)

	return r
}

// Authenticated admits any signed in user.
func Authenticated() Requirements {
	return Requirements{Name: "authenticated"}
}

// Staff admits staff and above.
func Staff() Requirements {
	return Requirements{Name: "staff", MinRole: roles.Staff}
}

// Manager admits managers and above.
func Manager() Requirements {
	return Requirements{Name: "manager", MinRole: roles.Manager}
}

// Admin admits technical admins and superadmins.
func Admin() Requirements {
	return Requirements{Name: "admin", MinRole: roles.TechnicalAdmin}
}

// SuperAdmin admits superadmins only.
func SuperAdmin() Requirements {
	return Requirements{Name: "superadmin", MinRole: roles.SuperAdmin}
}

// HIPAA admits staff who state an access reason.
func HIPAA() Requirements {
	return Requirements{Name: "hipaa", MinRole: roles.Staff, RequireHIPAA: true}
}

// RateLimited admits staff, at most maxRequests per window each.
func RateLimited(window time.Duration, maxRequests int) Requirements {
	return Requirements{
		Name:      "rate_limited",
		MinRole:   roles.Staff,
		RateLimit: &RateLimit{Window: window, MaxRequests: maxRequests},
	}
}

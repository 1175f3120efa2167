package roles

import (
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/errors/v5"
)

// Definition describes one role in a Registry.
type Definition struct {
	Role        Role
	Level       int
	Permissions []string
	Inherits    []Role

	// AllLocations grants access to every facility regardless of the user's locations.
	AllLocations bool

	// AllApps grants admin access to every application regardless of explicit app permissions.
	AllApps bool

	// AppAccess is the default per-application access when no explicit grant exists.
	AppAccess AccessLevel
}

// Registry is the canonical policy table: role definitions, their resolved
// permission sets and their location and application overrides. It is safe for
// concurrent use.
type Registry struct {
	mu       sync.RWMutex
	defs     map[Role]Definition
	resolved map[Role][]string
}

// NewRegistry returns a Registry holding defs.
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{
		defs:     make(map[Role]Definition),
		resolved: make(map[Role][]string),
	}
	if err := r.Register(defs...); err != nil {
		return nil, errors.Wrap(err, "Registry.Register()")
	}

	return r, nil
}

// Register adds or replaces role definitions. The complete graph is validated
// before anything is applied, so a rejected call leaves the Registry unchanged.
// Unknown roles, negative levels, missing parents and inheritance cycles are rejected.
func (r *Registry) Register(defs ...Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := maps.Clone(r.defs)
	for _, d := range defs {
		if !d.Role.Valid() {
			return errors.Newf("cannot register unknown role %q", d.Role)
		}
		if d.Level < 0 {
			return errors.Newf("role %q has negative level %d", d.Role, d.Level)
		}
		for _, p := range d.Permissions {
			if _, err := ParsePermission(p); err != nil {
				return errors.Wrapf(err, "role %q", d.Role)
			}
		}
		if d.AppAccess == "" {
			d.AppAccess = AccessNone
		}
		d.Permissions = slices.Clone(d.Permissions)
		d.Inherits = slices.Clone(d.Inherits)
		next[d.Role] = d
	}

	resolved, err := resolve(next)
	if err != nil {
		return err
	}

	r.defs = next
	r.resolved = resolved

	return nil
}

// resolve computes the permission closure of every role with a depth first
// traversal, failing on the first back edge.
func resolve(defs map[Role]Definition) (map[Role][]string, error) {
	const (
		visiting = iota + 1
		done
	)

	state := make(map[Role]int, len(defs))
	resolved := make(map[Role][]string, len(defs))

	var visit func(role Role, path []Role) error
	visit = func(role Role, path []Role) error {
		switch state[role] {
		case done:
			return nil
		case visiting:
			return errors.Newf("role inheritance cycle: %s", joinRoles(append(slices.Clone(path), role)))
		}

		def, ok := defs[role]
		if !ok {
			return errors.Newf("role %q inherits unregistered role %q", path[len(path)-1], role)
		}

		state[role] = visiting
		set := slices.Clone(def.Permissions)
		for _, parent := range def.Inherits {
			if err := visit(parent, append(slices.Clone(path), role)); err != nil {
				return err
			}
			set = append(set, resolved[parent]...)
		}
		slices.Sort(set)
		resolved[role] = slices.Compact(set)
		state[role] = done

		return nil
	}

	for _, role := range slices.Sorted(maps.Keys(defs)) {
		if err := visit(role, nil); err != nil {
			return nil, err
		}
	}

	return resolved, nil
}

func joinRoles(path []Role) string {
	s := make([]string, len(path))
	for i := range path {
		s[i] = string(path[i])
	}

	return strings.Join(s, " -> ")
}

// Definition returns the registered definition for role.
func (r *Registry) Definition(role Role) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.defs[role]

	return d, ok
}

// Roles returns the registered roles ordered by level, then name.
func (r *Registry) Roles() []Role {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := slices.Collect(maps.Keys(r.defs))
	slices.SortFunc(list, func(a, b Role) int {
		if d := r.defs[a].Level - r.defs[b].Level; d != 0 {
			return d
		}

		return strings.Compare(string(a), string(b))
	})

	return list
}

// Permissions returns the resolved permission set of role: its own permissions
// plus those of every transitively inherited role. Unknown roles return nil.
func (r *Registry) Permissions(role Role) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.resolved[role])
}

// Level returns the hierarchy level of role, or 0 for unknown roles.
func (r *Registry) Level(role Role) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.defs[role].Level
}

// HasPermission reports whether permission is in role's resolved set or in
// the explicit overrides. Unknown roles and malformed permissions deny.
func (r *Registry) HasPermission(role Role, permission string, explicit ...string) bool {
	want, err := ParsePermission(permission)
	if err != nil {
		return false
	}

	r.mu.RLock()
	granted, ok := r.resolved[role]
	r.mu.RUnlock()
	if !ok {
		return false
	}

	return anyCovers(granted, want) || anyCovers(explicit, want)
}

// Check is HasPermission for a conditioned permission. A condition that attrs
// does not satisfy denies even when the role grants the permission.
func (r *Registry) Check(role Role, p Permission, attrs map[string]string, explicit ...string) bool {
	if !p.ConditionsMet(attrs) {
		return false
	}

	return r.HasPermission(role, p.Key(), explicit...)
}

// HasRole reports whether userRole's level is at least requiredRole's level.
// Either role being unknown denies.
func (r *Registry) HasRole(userRole, requiredRole Role) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	have, ok := r.defs[userRole]
	if !ok {
		return false
	}
	want, ok := r.defs[requiredRole]
	if !ok {
		return false
	}

	return have.Level >= want.Level
}

// HasLocationAccess reports whether a user with role may operate within
// requiredLocation: either the location is one of userLocations or the role
// carries the all-location override.
func (r *Registry) HasLocationAccess(role Role, userLocations []string, requiredLocation string) bool {
	r.mu.RLock()
	def, ok := r.defs[role]
	r.mu.RUnlock()
	if !ok || requiredLocation == "" {
		return false
	}
	if def.AllLocations {
		return true
	}

	return slices.Contains(userLocations, requiredLocation)
}

// HasAppAccess reports whether role may use an application at the required
// level. explicit is the user's unexpired grant for the app, or "" when none
// exists; a grant replaces the role default.
func (r *Registry) HasAppAccess(role Role, explicit, required AccessLevel) bool {
	r.mu.RLock()
	def, ok := r.defs[role]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if def.AllApps {
		return true
	}
	if explicit != "" {
		return explicit.Satisfies(required)
	}

	return def.AppAccess.Satisfies(required)
}

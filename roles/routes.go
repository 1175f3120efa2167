package roles

import (
	"slices"
	"strings"
	"sync"
)

// RouteRule gates a route pattern. Patterns are path prefixes matched by whole
// segments; a "*" segment matches any single segment.
type RouteRule struct {
	Pattern    string
	MinRole    Role
	Permission string
}

func (rr RouteRule) segments() []string {
	return splitPath(rr.Pattern)
}

// RouteTable maps routes to their minimum requirements. The most specific
// matching rule wins.
type RouteTable struct {
	mu    sync.RWMutex
	rules []RouteRule
}

// NewRouteTable returns a table holding rules.
func NewRouteTable(rules ...RouteRule) *RouteTable {
	t := &RouteTable{}
	t.Add(rules...)

	return t
}

// DefaultRoutes returns the platform route table.
func DefaultRoutes() *RouteTable {
	return NewRouteTable(
		RouteRule{Pattern: "/", MinRole: Staff},
		RouteRule{Pattern: "/inventory", MinRole: Staff, Permission: "read:inventory"},
		RouteRule{Pattern: "/handouts", MinRole: Staff, Permission: "read:handouts"},
		RouteRule{Pattern: "/call-center", MinRole: Staff, Permission: "read:call_center"},
		RouteRule{Pattern: "/compliance", MinRole: Staff, Permission: "read:compliance"},
		RouteRule{Pattern: "/pharma-scheduling", MinRole: PharmaRep, Permission: "read:pharma_schedule"},
		RouteRule{Pattern: "/medication-auth", MinRole: ClinicalStaff, Permission: "read:authorizations"},
		RouteRule{Pattern: "/patients", MinRole: ClinicalStaff, Permission: "read:patients"},
		RouteRule{Pattern: "/batch-closeout", MinRole: Manager, Permission: "read:batch_closeout"},
		RouteRule{Pattern: "/clinical-staffing", MinRole: Manager, Permission: "manage:staffing"},
		RouteRule{Pattern: "/reports", MinRole: Manager, Permission: "read:reports"},
		RouteRule{Pattern: "/admin", MinRole: TechnicalAdmin},
		RouteRule{Pattern: "/admin/users", MinRole: TechnicalAdmin, Permission: "manage:users"},
		RouteRule{Pattern: "/admin/audit", MinRole: TechnicalAdmin, Permission: "read:audit_logs"},
	)
}

// Add appends rules. A rule with the same pattern as an existing rule replaces it.
func (t *RouteTable) Add(rules ...RouteRule) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, rule := range rules {
		rule.Pattern = "/" + strings.Join(rule.segments(), "/")
		if i := slices.IndexFunc(t.rules, func(r RouteRule) bool { return r.Pattern == rule.Pattern }); i >= 0 {
			t.rules[i] = rule

			continue
		}
		t.rules = append(t.rules, rule)
	}
}

// Rules returns a copy of the table.
func (t *RouteTable) Rules() []RouteRule {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return slices.Clone(t.rules)
}

// Rule returns the most specific rule matching path.
func (t *RouteTable) Rule(path string) (RouteRule, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	segs := splitPath(path)

	var (
		best      RouteRule
		found     bool
		bestDepth = -1
		bestExact = -1
	)
	for _, rule := range t.rules {
		depth, exact, ok := match(rule.segments(), segs)
		if !ok {
			continue
		}
		if depth > bestDepth || (depth == bestDepth && exact > bestExact) {
			best, found, bestDepth, bestExact = rule, true, depth, exact
		}
	}

	return best, found
}

func match(pattern, path []string) (depth, exact int, ok bool) {
	if len(pattern) > len(path) {
		return 0, 0, false
	}
	for i, p := range pattern {
		switch p {
		case wildcard:
		case path[i]:
			exact++
		default:
			return 0, 0, false
		}
	}

	return len(pattern), exact, true
}

func splitPath(p string) []string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}

	var segs []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}

	return segs
}

// CanAccessRoute reports whether role may access path according to table. A
// path with no matching rule is denied.
func (r *Registry) CanAccessRoute(table *RouteTable, role Role, path string, explicit ...string) bool {
	if _, ok := r.Definition(role); !ok {
		return false
	}

	rule, ok := table.Rule(path)
	if !ok {
		return false
	}
	if rule.MinRole != "" && !r.HasRole(role, rule.MinRole) {
		return false
	}
	if rule.Permission != "" && !r.HasPermission(role, rule.Permission, explicit...) {
		return false
	}

	return true
}

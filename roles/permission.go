package roles

import (
	"strings"

	"github.com/go-playground/errors/v5"
)

const wildcard = "*"

// Permission is an {action, resource, conditions} authorization unit. Its
// string form is "action:resource". Either part of a granted permission may
// be "*".
type Permission struct {
	Action     string
	Resource   string
	Conditions map[string]string
}

// ParsePermission parses "action:resource". A bare "*" grants everything.
func ParsePermission(s string) (Permission, error) {
	s = strings.TrimSpace(s)
	if s == wildcard {
		return Permission{Action: wildcard, Resource: wildcard}, nil
	}

	action, resource, ok := strings.Cut(s, ":")
	action, resource = strings.TrimSpace(action), strings.TrimSpace(resource)
	if !ok || action == "" || resource == "" {
		return Permission{}, errors.Newf("malformed permission %q, expected action:resource", s)
	}

	return Permission{Action: action, Resource: resource}, nil
}

// Key returns the "action:resource" form without conditions.
func (p Permission) Key() string {
	return p.Action + ":" + p.Resource
}

func (p Permission) String() string {
	return p.Key()
}

// ConditionsMet reports whether every condition on p is matched by attrs. A
// condition whose attribute is missing does not match.
func (p Permission) ConditionsMet(attrs map[string]string) bool {
	for k, want := range p.Conditions {
		got, ok := attrs[k]
		if !ok || got != want {
			return false
		}
	}

	return true
}

// covers reports whether the granted permission includes want.
func (p Permission) covers(want Permission) bool {
	return (p.Action == wildcard || p.Action == want.Action) &&
		(p.Resource == wildcard || p.Resource == want.Resource)
}

// anyCovers reports whether any of the granted permission strings covers want.
// Malformed grants are ignored.
func anyCovers(granted []string, want Permission) bool {
	for _, g := range granted {
		p, err := ParsePermission(g)
		if err != nil {
			continue
		}
		if p.covers(want) {
			return true
		}
	}

	return false
}

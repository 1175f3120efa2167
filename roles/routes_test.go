package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouteTable_Rule(t *testing.T) {
	t.Parallel()

	table := NewRouteTable(
		RouteRule{Pattern: "/", MinRole: Staff},
		RouteRule{Pattern: "/admin", MinRole: TechnicalAdmin},
		RouteRule{Pattern: "/admin/users/", MinRole: TechnicalAdmin, Permission: "manage:users"},
		RouteRule{Pattern: "/patients/*/records", MinRole: ClinicalStaff},
		RouteRule{Pattern: "/patients/archived/records", MinRole: Manager},
	)

	tests := []struct {
		path    string
		want    string
		wantHit bool
	}{
		{path: "/", want: "/", wantHit: true},
		{path: "/inventory/items?page=2", want: "/", wantHit: true},
		{path: "/admin", want: "/admin", wantHit: true},
		{path: "/admin/users/42", want: "/admin/users", wantHit: true},
		{path: "/administrator", want: "/", wantHit: true},
		{path: "/patients/123/records", want: "/patients/*/records", wantHit: true},
		{path: "/patients/archived/records/9", want: "/patients/archived/records", wantHit: true},
	}
	for _, tt := range tests {
		got, ok := table.Rule(tt.path)
		assert.Equal(t, tt.wantHit, ok, "Rule(%q)", tt.path)
		assert.Equal(t, tt.want, got.Pattern, "Rule(%q)", tt.path)
	}

	empty := NewRouteTable()
	_, ok := empty.Rule("/")
	assert.False(t, ok)
}

func TestRouteTable_Add_replacesPattern(t *testing.T) {
	t.Parallel()

	table := NewRouteTable(RouteRule{Pattern: "/reports", MinRole: Manager})
	table.Add(RouteRule{Pattern: "reports/", MinRole: Staff})

	rules := table.Rules()
	assert.Len(t, rules, 1)
	assert.Equal(t, Staff, rules[0].MinRole)
}

func TestRegistry_CanAccessRoute(t *testing.T) {
	t.Parallel()

	r := Default()
	table := DefaultRoutes()

	tests := []struct {
		name     string
		role     Role
		path     string
		explicit []string
		want     bool
	}{
		{name: "staff dashboard", role: Staff, path: "/", want: true},
		{name: "staff inventory", role: Staff, path: "/inventory/counts", want: true},
		{name: "staff reports", role: Staff, path: "/reports/monthly", want: false},
		{name: "manager reports", role: Manager, path: "/reports/monthly", want: true},
		{name: "staff patients", role: Staff, path: "/patients/1", want: false},
		{name: "clinical patients", role: ClinicalStaff, path: "/patients/1", want: true},
		{name: "manager admin", role: Manager, path: "/admin", want: false},
		{name: "technical admin users", role: TechnicalAdmin, path: "/admin/users", want: true},
		{name: "superadmin audit", role: SuperAdmin, path: "/admin/audit", want: true},
		{name: "pharma rep schedule", role: PharmaRep, path: "/pharma-scheduling/lunch", want: true},
		{name: "pharma rep dashboard", role: PharmaRep, path: "/", want: false},
		{name: "patient dashboard", role: Patient, path: "/", want: false},
		{name: "unknown role", role: "admin", path: "/", want: false},
		{name: "explicit override satisfies permission but not level", role: Staff, path: "/reports", explicit: []string{"read:reports"}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, r.CanAccessRoute(table, tt.role, tt.path, tt.explicit...))
		})
	}
}

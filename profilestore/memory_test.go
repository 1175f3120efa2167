package profilestore

import (
	"context"
	"testing"
	"time"

	"github.com/cccteam/httpio"
	"github.com/gangerdermatology/auth/roles"
	"github.com/gangerdermatology/auth/sessioninfo"
	"github.com/google/go-cmp/cmp"
)

func TestMemory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	past := now.Add(-time.Hour)

	m := NewMemory()
	m.now = func() time.Time { return now }

	m.PutProfile(&sessioninfo.Profile{
		UserID:      "u1",
		Email:       "Manager@GangerDermatology.com",
		Role:        roles.Manager,
		Active:      true,
		Permissions: []string{"write:inventory"},
	})
	m.PutAppPermission("u1", sessioninfo.AppPermission{App: "inventory", Level: roles.AccessRead})
	m.PutAppPermission("u1", sessioninfo.AppPermission{App: "inventory", Level: roles.AccessAdmin})
	m.PutAppPermission("u1", sessioninfo.AppPermission{App: "handouts", Level: roles.AccessWrite, ExpiresAt: &past})

	p, err := m.ProfileByEmail(ctx, "manager@gangerdermatology.com")
	if err != nil {
		t.Fatalf("Memory.ProfileByEmail() error = %v", err)
	}
	if p.UserID != "u1" {
		t.Errorf("Memory.ProfileByEmail() UserID = %q, want u1", p.UserID)
	}

	if _, err := m.Profile(ctx, "missing"); !httpio.HasNotFound(err) {
		t.Errorf("Memory.Profile() error = %v, want not found", err)
	}

	grants, err := m.AppPermissions(ctx, "u1")
	if err != nil {
		t.Fatalf("Memory.AppPermissions() error = %v", err)
	}
	if diff := cmp.Diff([]sessioninfo.AppPermission{{App: "inventory", Level: roles.AccessAdmin}}, grants); diff != "" {
		t.Errorf("Memory.AppPermissions() mismatch (-want +got):\n%s", diff)
	}

	if err := m.AddUserPermissions(ctx, "u1", "read:billing", "write:inventory"); err != nil {
		t.Fatalf("Memory.AddUserPermissions() error = %v", err)
	}
	if err := m.DeleteUserPermissions(ctx, "u1", "write:inventory"); err != nil {
		t.Fatalf("Memory.DeleteUserPermissions() error = %v", err)
	}
	p, err = m.Profile(ctx, "u1")
	if err != nil {
		t.Fatalf("Memory.Profile() error = %v", err)
	}
	if diff := cmp.Diff([]string{"read:billing"}, p.Permissions); diff != "" {
		t.Errorf("Memory.Profile() Permissions mismatch (-want +got):\n%s", diff)
	}
}

func TestMemory_EnsureProfile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemory()
	m.PutProfile(&sessioninfo.Profile{UserID: "existing", Role: roles.SuperAdmin, Active: true})

	created, err := m.EnsureProfile(ctx, &sessioninfo.User{ID: "new", Email: "New@GangerDermatology.com", Name: "New"})
	if err != nil {
		t.Fatalf("Memory.EnsureProfile() error = %v", err)
	}
	if created.Role != roles.Staff || !created.Active || created.Email != "new@gangerdermatology.com" {
		t.Errorf("Memory.EnsureProfile() = %+v, want active staff with lowercased email", created)
	}

	kept, err := m.EnsureProfile(ctx, &sessioninfo.User{ID: "existing"})
	if err != nil {
		t.Fatalf("Memory.EnsureProfile() error = %v", err)
	}
	if kept.Role != roles.SuperAdmin {
		t.Errorf("Memory.EnsureProfile() Role = %q, want %q", kept.Role, roles.SuperAdmin)
	}
}

func TestMemory_RecordAudit(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	if err := m.RecordAudit(context.Background(), &AuditEntry{Action: ActionSignIn, Outcome: OutcomeAllowed}); err != nil {
		t.Fatalf("Memory.RecordAudit() error = %v", err)
	}

	entries := m.AuditEntries()
	if len(entries) != 1 || entries[0].At.IsZero() {
		t.Errorf("Memory.AuditEntries() = %+v, want one timestamped entry", entries)
	}
}

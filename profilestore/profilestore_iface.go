package profilestore

import (
	"context"
	"time"

	"github.com/cccteam/ccc"
	"github.com/gangerdermatology/auth/profilestore/internal/dbtype"
	"github.com/gangerdermatology/auth/profilestore/internal/postgres"
	"github.com/gangerdermatology/auth/profilestore/internal/spanner"
	"github.com/gangerdermatology/auth/roles"
	"github.com/gangerdermatology/auth/sessioninfo"
)

var (
	_ Store = (*Client)(nil)
	_ Store = (*Memory)(nil)
)

// Store is the application profile store consulted by the provider and the guard.
// Lookups of a missing profile return an error for which httpio.HasNotFound is true.
type Store interface {
	// Profile returns the profile for userID with its explicit permissions.
	Profile(ctx context.Context, userID string) (*sessioninfo.Profile, error)
	// ProfileByEmail returns the profile whose email matches case-insensitively.
	ProfileByEmail(ctx context.Context, email string) (*sessioninfo.Profile, error)
	// EnsureProfile creates a staff profile for user on first sign-in and records the sign-in time.
	EnsureProfile(ctx context.Context, user *sessioninfo.User) (*sessioninfo.Profile, error)
	// Teams returns the active team memberships of userID.
	Teams(ctx context.Context, userID string) ([]sessioninfo.TeamMembership, error)
	// AppPermissions returns the unexpired per-application grants of userID.
	AppPermissions(ctx context.Context, userID string) ([]sessioninfo.AppPermission, error)
	// RecordAudit appends an entry to the audit log.
	RecordAudit(ctx context.Context, entry *AuditEntry) error

	roles.PermissionManager
}

var (
	_ db = (*spanner.ProfileStorageDriver)(nil)
	_ db = (*postgres.ProfileStorageDriver)(nil)
)

// db defines the operations a database driver provides for profile storage.
type db interface {
	// Profile returns the profile row for userID.
	Profile(ctx context.Context, userID ccc.UUID) (*dbtype.Profile, error)
	// ProfileByEmail returns the profile row with a case-insensitive email match.
	ProfileByEmail(ctx context.Context, email string) (*dbtype.Profile, error)
	// EnsureProfile inserts the profile if missing and records the sign-in time.
	EnsureProfile(ctx context.Context, profile *dbtype.InsertProfile) error
	// Teams returns the active team memberships of userID.
	Teams(ctx context.Context, userID ccc.UUID) ([]*dbtype.TeamMembership, error)
	// AppPermissions returns the grants of userID that have not expired at now.
	AppPermissions(ctx context.Context, userID ccc.UUID, now time.Time) ([]*dbtype.AppPermission, error)
	// UserPermissions returns the explicit permissions of userID.
	UserPermissions(ctx context.Context, userID ccc.UUID) ([]string, error)
	// AddUserPermissions grants permissions to userID.
	AddUserPermissions(ctx context.Context, userID ccc.UUID, permissions ...string) error
	// DeleteUserPermissions revokes permissions from userID.
	DeleteUserPermissions(ctx context.Context, userID ccc.UUID, permissions ...string) error
	// InsertAuditLog appends a row to the audit log.
	InsertAuditLog(ctx context.Context, entry *dbtype.AuditLog) error
}

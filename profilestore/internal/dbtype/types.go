// Package dbtype contains types used by the database driver packages for profile storage.
package dbtype

import (
	"time"

	"github.com/cccteam/ccc"
)

// Profile is a row of the staff profile table.
type Profile struct {
	ID         ccc.UUID  `spanner:"Id"         db:"Id"`
	Email      string    `spanner:"Email"      db:"Email"`
	FullName   string    `spanner:"FullName"   db:"FullName"`
	Role       string    `spanner:"Role"       db:"Role"`
	Department string    `spanner:"Department" db:"Department"`
	Locations  []string  `spanner:"Locations"  db:"Locations"`
	Active     bool      `spanner:"Active"     db:"Active"`
	CreatedAt  time.Time `spanner:"CreatedAt"  db:"CreatedAt"`
	UpdatedAt  time.Time `spanner:"UpdatedAt"  db:"UpdatedAt"`
}

// InsertProfile is the profile created on first sign-in.
type InsertProfile struct {
	ID       ccc.UUID  `spanner:"Id"`
	Email    string    `spanner:"Email"`
	FullName string    `spanner:"FullName"`
	Role     string    `spanner:"Role"`
	SignedIn time.Time `spanner:"-"`
}

// TeamMembership is a team joined with the user's role in it.
type TeamMembership struct {
	TeamID      ccc.UUID `spanner:"TeamId"      db:"TeamId"`
	Name        string   `spanner:"Name"        db:"Name"`
	Description string   `spanner:"Description" db:"Description"`
	Role        string   `spanner:"Role"        db:"Role"`
}

// AppPermission is an explicit per-application grant.
type AppPermission struct {
	AppName   string     `db:"AppName"`
	Level     string     `db:"PermissionLevel"`
	ExpiresAt *time.Time `db:"ExpiresAt"`
}

// AuditLog is one row of the audit log.
type AuditLog struct {
	ID        ccc.UUID
	UserID    string
	Action    string
	Resource  string
	Outcome   string
	Reason    string
	RequestID string
	IPAddress string
	UserAgent string
	Details   string
	CreatedAt time.Time
}

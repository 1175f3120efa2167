// Package postgres implements the profile storage driver for PostgreSQL.
package postgres

import (
	"context"
	"time"

	"github.com/cccteam/ccc"
	"github.com/cccteam/httpio"
	"github.com/gangerdermatology/auth/profilestore/internal/dbtype"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/go-playground/errors/v5"
	"github.com/jackc/pgx/v5"
)

// ProfileStorageDriver represents the profile storage implementation for PostgreSQL.
type ProfileStorageDriver struct {
	conn Queryer
}

// NewProfileStorageDriver creates a new ProfileStorageDriver
func NewProfileStorageDriver(conn Queryer) *ProfileStorageDriver {
	return &ProfileStorageDriver{
		conn: conn,
	}
}

// Profile returns the staff profile for userID
func (d *ProfileStorageDriver) Profile(ctx context.Context, userID ccc.UUID) (*dbtype.Profile, error) {
	ctx, span := ccc.StartTrace(ctx)
	defer span.End()

	query := `
		SELECT
			"Id", "Email", "FullName", "Role", "Department", "Locations", "Active", "CreatedAt", "UpdatedAt"
		FROM "StaffUserProfiles"
		WHERE "Id" = $1
	`

	p := &dbtype.Profile{}
	if err := pgxscan.Get(ctx, d.conn, p, query, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpio.NewNotFoundMessagef("profile %s not found", userID)
		}

		return nil, errors.Wrapf(err, "failed to scan row for profile %s", userID)
	}

	return p, nil
}

// ProfileByEmail returns the staff profile with a case-insensitive email match
func (d *ProfileStorageDriver) ProfileByEmail(ctx context.Context, email string) (*dbtype.Profile, error) {
	ctx, span := ccc.StartTrace(ctx)
	defer span.End()

	query := `
		SELECT
			"Id", "Email", "FullName", "Role", "Department", "Locations", "Active", "CreatedAt", "UpdatedAt"
		FROM "StaffUserProfiles"
		WHERE lower("Email") = lower($1)
	`

	p := &dbtype.Profile{}
	if err := pgxscan.Get(ctx, d.conn, p, query, email); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpio.NewNotFoundMessagef("profile for %q not found", email)
		}

		return nil, errors.Wrapf(err, "failed to scan row for profile %q", email)
	}

	return p, nil
}

// EnsureProfile inserts the profile when it does not exist and records the sign-in time.
// An existing profile keeps its role, department and locations.
func (d *ProfileStorageDriver) EnsureProfile(ctx context.Context, profile *dbtype.InsertProfile) error {
	ctx, span := ccc.StartTrace(ctx)
	defer span.End()

	query := `
		INSERT INTO "StaffUserProfiles"
			("Id", "Email", "FullName", "Role", "LastLogin", "CreatedAt", "UpdatedAt")
		VALUES
			($1, $2, $3, $4, $5, $5, $5)
		ON CONFLICT ("Id") DO UPDATE SET
			"LastLogin" = EXCLUDED."LastLogin",
			"UpdatedAt" = EXCLUDED."UpdatedAt"
		`

	if _, err := d.conn.Exec(ctx, query, profile.ID, profile.Email, profile.FullName, profile.Role, profile.SignedIn); err != nil {
		return errors.Wrapf(err, "failed to upsert StaffUserProfiles for %s", profile.ID)
	}

	return nil
}

// Teams returns the active team memberships of userID
func (d *ProfileStorageDriver) Teams(ctx context.Context, userID ccc.UUID) ([]*dbtype.TeamMembership, error) {
	ctx, span := ccc.StartTrace(ctx)
	defer span.End()

	query := `
		SELECT
			t."Id" AS "TeamId", t."Name", t."Description", m."Role"
		FROM "TeamMembers" m
		JOIN "Teams" t ON t."Id" = m."TeamId"
		WHERE m."UserId" = $1 AND m."Active" AND t."Active"
		ORDER BY t."Name"
	`

	var teams []*dbtype.TeamMembership
	if err := pgxscan.Select(ctx, d.conn, &teams, query, userID); err != nil {
		return nil, errors.Wrapf(err, "failed to select teams for %s", userID)
	}

	return teams, nil
}

// AppPermissions returns the grants of userID that have not expired at now
func (d *ProfileStorageDriver) AppPermissions(ctx context.Context, userID ccc.UUID, now time.Time) ([]*dbtype.AppPermission, error) {
	ctx, span := ccc.StartTrace(ctx)
	defer span.End()

	query := `
		SELECT
			"AppName", "PermissionLevel", "ExpiresAt"
		FROM "AppPermissions"
		WHERE "UserId" = $1 AND ("ExpiresAt" IS NULL OR "ExpiresAt" > $2)
		ORDER BY "AppName"
	`

	var perms []*dbtype.AppPermission
	if err := pgxscan.Select(ctx, d.conn, &perms, query, userID, now); err != nil {
		return nil, errors.Wrapf(err, "failed to select app permissions for %s", userID)
	}

	return perms, nil
}

// UserPermissions returns the explicit permissions granted to userID
func (d *ProfileStorageDriver) UserPermissions(ctx context.Context, userID ccc.UUID) ([]string, error) {
	ctx, span := ccc.StartTrace(ctx)
	defer span.End()

	query := `
		SELECT "Permission"
		FROM "UserPermissions"
		WHERE "UserId" = $1
		ORDER BY "Permission"
	`

	var perms []string
	if err := pgxscan.Select(ctx, d.conn, &perms, query, userID); err != nil {
		return nil, errors.Wrapf(err, "failed to select permissions for %s", userID)
	}

	return perms, nil
}

// AddUserPermissions grants permissions to userID. Existing grants are left as they are.
func (d *ProfileStorageDriver) AddUserPermissions(ctx context.Context, userID ccc.UUID, permissions ...string) error {
	ctx, span := ccc.StartTrace(ctx)
	defer span.End()

	tx, err := d.conn.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "Queryer.Begin()")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO "UserPermissions"
			("UserId", "Permission")
		VALUES
			($1, $2)
		ON CONFLICT DO NOTHING
		`

	for _, p := range permissions {
		if _, err := tx.Exec(ctx, query, userID, p); err != nil {
			return errors.Wrapf(err, "failed to insert permission %q for %s", p, userID)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "pgx.Tx.Commit()")
	}

	return nil
}

// DeleteUserPermissions revokes permissions from userID
func (d *ProfileStorageDriver) DeleteUserPermissions(ctx context.Context, userID ccc.UUID, permissions ...string) error {
	ctx, span := ccc.StartTrace(ctx)
	defer span.End()

	query := `
		DELETE FROM "UserPermissions"
		WHERE "UserId" = $1 AND "Permission" = ANY($2)`

	if _, err := d.conn.Exec(ctx, query, userID, permissions); err != nil {
		return errors.Wrapf(err, "failed to delete permissions for %s", userID)
	}

	return nil
}

// InsertAuditLog appends entry to the audit log
func (d *ProfileStorageDriver) InsertAuditLog(ctx context.Context, entry *dbtype.AuditLog) error {
	ctx, span := ccc.StartTrace(ctx)
	defer span.End()

	var userID *string
	if entry.UserID != "" {
		userID = &entry.UserID
	}

	query := `
		INSERT INTO "AuditLogs"
			("Id", "UserId", "Action", "Resource", "Outcome", "Reason", "RequestId", "IpAddress", "UserAgent", "Details", "CreatedAt")
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`

	if _, err := d.conn.Exec(ctx, query,
		entry.ID, userID, entry.Action, entry.Resource, entry.Outcome, entry.Reason,
		entry.RequestID, entry.IPAddress, entry.UserAgent, entry.Details, entry.CreatedAt,
	); err != nil {
		return errors.Wrap(err, "failed to insert into table AuditLogs")
	}

	return nil
}

// Package spanner provides the profile storage driver for Spanner.
package spanner

import (
	"context"
	"time"

	"cloud.google.com/go/spanner"
	"github.com/cccteam/ccc"
	"github.com/cccteam/httpio"
	"github.com/cccteam/spxscan"
	"github.com/gangerdermatology/auth/profilestore/internal/dbtype"
	"github.com/go-playground/errors/v5"
	"google.golang.org/grpc/codes"
)

const profileColumns = `Id, Email, FullName, Role, Department, Locations, Active, CreatedAt, UpdatedAt`

// ProfileStorageDriver represents the profile storage implementation for Spanner.
type ProfileStorageDriver struct {
	spanner *spanner.Client
}

// NewProfileStorageDriver creates a new ProfileStorageDriver
func NewProfileStorageDriver(client *spanner.Client) *ProfileStorageDriver {
	return &ProfileStorageDriver{
		spanner: client,
	}
}

// Profile returns the staff profile for userID
func (s *ProfileStorageDriver) Profile(ctx context.Context, userID ccc.UUID) (*dbtype.Profile, error) {
	ctx, span := ccc.StartTrace(ctx)
	defer span.End()

	stmt := spanner.NewStatement(`
		SELECT ` + profileColumns + `
		FROM StaffUserProfiles
		WHERE Id = @id
	`)
	stmt.Params["id"] = userID

	p := &dbtype.Profile{}
	if err := spxscan.Get(ctx, s.spanner.Single(), p, stmt); err != nil {
		if errors.Is(err, spxscan.ErrNotFound) {
			return nil, httpio.NewNotFoundMessagef("profile %q not found", userID)
		}

		return nil, errors.Wrapf(err, "failed to scan row for profile %q", userID)
	}

	return p, nil
}

// ProfileByEmail returns the staff profile with a case-insensitive email match
func (s *ProfileStorageDriver) ProfileByEmail(ctx context.Context, email string) (*dbtype.Profile, error) {
	ctx, span := ccc.StartTrace(ctx)
	defer span.End()

	stmt := spanner.NewStatement(`
		SELECT ` + profileColumns + `
		FROM StaffUserProfiles
		WHERE EmailLower = LOWER(@email)
	`)
	stmt.Params["email"] = email

	p := &dbtype.Profile{}
	if err := spxscan.Get(ctx, s.spanner.Single(), p, stmt); err != nil {
		if errors.Is(err, spxscan.ErrNotFound) {
			return nil, httpio.NewNotFoundMessagef("profile for %q not found", email)
		}

		return nil, errors.Wrapf(err, "failed to scan row for profile %q", email)
	}

	return p, nil
}

// EnsureProfile inserts the profile when it does not exist and records the sign-in time.
// An existing profile keeps its role, department and locations.
func (s *ProfileStorageDriver) EnsureProfile(ctx context.Context, profile *dbtype.InsertProfile) error {
	ctx, span := ccc.StartTrace(ctx)
	defer span.End()

	_, err := s.spanner.ReadWriteTransaction(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) error {
		stmt := spanner.NewStatement(`
			UPDATE StaffUserProfiles
			SET LastLogin = @signedIn, UpdatedAt = @signedIn
			WHERE Id = @id
		`)
		stmt.Params["id"] = profile.ID
		stmt.Params["signedIn"] = profile.SignedIn

		n, err := txn.Update(ctx, stmt)
		if err != nil {
			return errors.Wrap(err, "spanner.ReadWriteTransaction.Update()")
		}
		if n > 0 {
			return nil
		}

		row := &struct {
			*dbtype.InsertProfile
			Department string    `spanner:"Department"`
			Locations  []string  `spanner:"Locations"`
			Active     bool      `spanner:"Active"`
			LastLogin  time.Time `spanner:"LastLogin"`
			CreatedAt  time.Time `spanner:"CreatedAt"`
			UpdatedAt  time.Time `spanner:"UpdatedAt"`
		}{
			InsertProfile: profile,
			Locations:     []string{},
			Active:        true,
			LastLogin:     profile.SignedIn,
			CreatedAt:     profile.SignedIn,
			UpdatedAt:     profile.SignedIn,
		}

		mutation, err := spanner.InsertStruct("StaffUserProfiles", row)
		if err != nil {
			return errors.Wrap(err, "spanner.InsertStruct()")
		}

		return txn.BufferWrite([]*spanner.Mutation{mutation})
	})
	if err != nil {
		return errors.Wrap(err, "spanner.Client.ReadWriteTransaction()")
	}

	return nil
}

// Teams returns the active team memberships of userID
func (s *ProfileStorageDriver) Teams(ctx context.Context, userID ccc.UUID) ([]*dbtype.TeamMembership, error) {
	ctx, span := ccc.StartTrace(ctx)
	defer span.End()

	stmt := spanner.NewStatement(`
		SELECT
			t.Id AS TeamId, t.Name, t.Description, m.Role
		FROM TeamMembers AS m
		JOIN Teams AS t ON t.Id = m.TeamId
		WHERE m.UserId = @userId AND m.Active AND t.Active
		ORDER BY t.Name
	`)
	stmt.Params["userId"] = userID

	var teams []*dbtype.TeamMembership
	err := s.spanner.Single().Query(ctx, stmt).Do(func(row *spanner.Row) error {
		t := &dbtype.TeamMembership{}
		if err := row.ToStruct(t); err != nil {
			return errors.Wrap(err, "spanner.Row.ToStruct()")
		}
		teams = append(teams, t)

		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query teams for %q", userID)
	}

	return teams, nil
}

// AppPermissions returns the grants of userID that have not expired at now
func (s *ProfileStorageDriver) AppPermissions(ctx context.Context, userID ccc.UUID, now time.Time) ([]*dbtype.AppPermission, error) {
	ctx, span := ccc.StartTrace(ctx)
	defer span.End()

	stmt := spanner.NewStatement(`
		SELECT
			AppName, PermissionLevel, ExpiresAt
		FROM AppPermissions
		WHERE UserId = @userId AND (ExpiresAt IS NULL OR ExpiresAt > @now)
		ORDER BY AppName
	`)
	stmt.Params["userId"] = userID
	stmt.Params["now"] = now

	var perms []*dbtype.AppPermission
	err := s.spanner.Single().Query(ctx, stmt).Do(func(row *spanner.Row) error {
		var r struct {
			AppName         string
			PermissionLevel string
			ExpiresAt       spanner.NullTime
		}
		if err := row.ToStruct(&r); err != nil {
			return errors.Wrap(err, "spanner.Row.ToStruct()")
		}

		p := &dbtype.AppPermission{AppName: r.AppName, Level: r.PermissionLevel}
		if r.ExpiresAt.Valid {
			p.ExpiresAt = &r.ExpiresAt.Time
		}
		perms = append(perms, p)

		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query app permissions for %q", userID)
	}

	return perms, nil
}

// UserPermissions returns the explicit permissions granted to userID
func (s *ProfileStorageDriver) UserPermissions(ctx context.Context, userID ccc.UUID) ([]string, error) {
	ctx, span := ccc.StartTrace(ctx)
	defer span.End()

	stmt := spanner.NewStatement(`
		SELECT Permission
		FROM UserPermissions
		WHERE UserId = @userId
		ORDER BY Permission
	`)
	stmt.Params["userId"] = userID

	var perms []string
	err := s.spanner.Single().Query(ctx, stmt).Do(func(row *spanner.Row) error {
		var p string
		if err := row.Column(0, &p); err != nil {
			return errors.Wrap(err, "spanner.Row.Column()")
		}
		perms = append(perms, p)

		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query permissions for %q", userID)
	}

	return perms, nil
}

// AddUserPermissions grants permissions to userID. Granting an existing permission refreshes its CreatedAt.
func (s *ProfileStorageDriver) AddUserPermissions(ctx context.Context, userID ccc.UUID, permissions ...string) error {
	ctx, span := ccc.StartTrace(ctx)
	defer span.End()

	mutations := make([]*spanner.Mutation, 0, len(permissions))
	for _, p := range permissions {
		mutations = append(mutations, spanner.InsertOrUpdate("UserPermissions",
			[]string{"UserId", "Permission", "CreatedAt"},
			[]any{userID, p, spanner.CommitTimestamp},
		))
	}

	if _, err := s.spanner.Apply(ctx, mutations); err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return httpio.NewNotFoundMessagef("profile %q not found", userID)
		}

		return errors.Wrap(err, "spanner.Client.Apply()")
	}

	return nil
}

// DeleteUserPermissions revokes permissions from userID
func (s *ProfileStorageDriver) DeleteUserPermissions(ctx context.Context, userID ccc.UUID, permissions ...string) error {
	ctx, span := ccc.StartTrace(ctx)
	defer span.End()

	mutations := make([]*spanner.Mutation, 0, len(permissions))
	for _, p := range permissions {
		mutations = append(mutations, spanner.Delete("UserPermissions", spanner.Key{userID.String(), p}))
	}

	if _, err := s.spanner.Apply(ctx, mutations); err != nil {
		return errors.Wrap(err, "spanner.Client.Apply()")
	}

	return nil
}

// InsertAuditLog appends entry to the audit log
func (s *ProfileStorageDriver) InsertAuditLog(ctx context.Context, entry *dbtype.AuditLog) error {
	ctx, span := ccc.StartTrace(ctx)
	defer span.End()

	row := &struct {
		ID        ccc.UUID           `spanner:"Id"`
		UserID    spanner.NullString `spanner:"UserId"`
		Action    string             `spanner:"Action"`
		Resource  string             `spanner:"Resource"`
		Outcome   string             `spanner:"Outcome"`
		Reason    string             `spanner:"Reason"`
		RequestID string             `spanner:"RequestId"`
		IPAddress string             `spanner:"IpAddress"`
		UserAgent string             `spanner:"UserAgent"`
		Details   string             `spanner:"Details"`
		CreatedAt time.Time          `spanner:"CreatedAt"`
	}{
		ID:        entry.ID,
		UserID:    spanner.NullString{StringVal: entry.UserID, Valid: entry.UserID != ""},
		Action:    entry.Action,
		Resource:  entry.Resource,
		Outcome:   entry.Outcome,
		Reason:    entry.Reason,
		RequestID: entry.RequestID,
		IPAddress: entry.IPAddress,
		UserAgent: entry.UserAgent,
		Details:   entry.Details,
		CreatedAt: entry.CreatedAt,
	}

	mutation, err := spanner.InsertStruct("AuditLogs", row)
	if err != nil {
		return errors.Wrap(err, "spanner.InsertStruct()")
	}
	if _, err := s.spanner.Apply(ctx, []*spanner.Mutation{mutation}); err != nil {
		return errors.Wrap(err, "spanner.Client.Apply()")
	}

	return nil
}

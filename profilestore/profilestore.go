// Package profilestore implements the application profile store: staff profiles,
// explicit permissions, team memberships, per-application grants and the audit log.
// There are drivers for both Spanner and Postgres.
package profilestore

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	cloudspanner "cloud.google.com/go/spanner"
	"github.com/cccteam/ccc"
	"github.com/cccteam/httpio"
	"github.com/cccteam/logger"
	"github.com/gangerdermatology/auth/profilestore/internal/dbtype"
	"github.com/gangerdermatology/auth/profilestore/internal/postgres"
	"github.com/gangerdermatology/auth/profilestore/internal/spanner"
	"github.com/gangerdermatology/auth/roles"
	"github.com/gangerdermatology/auth/sessioninfo"
	"github.com/go-playground/errors/v5"
	"go.opentelemetry.io/otel"
)

const name = "github.com/gangerdermatology/auth/profilestore"

// Client is the profile store backed by a database driver.
type Client struct {
	db  db
	now func() time.Time
}

// NewPostgres creates a profile store on a PostgreSQL connection or pool.
func NewPostgres(conn postgres.Queryer) *Client {
	return &Client{
		db:  postgres.NewProfileStorageDriver(conn),
		now: time.Now,
	}
}

// NewSpanner creates a profile store on a Spanner client.
func NewSpanner(client *cloudspanner.Client) *Client {
	return &Client{
		db:  spanner.NewProfileStorageDriver(client),
		now: time.Now,
	}
}

// Profile returns the profile for userID with its explicit permissions.
func (c *Client) Profile(ctx context.Context, userID string) (*sessioninfo.Profile, error) {
	ctx, span := otel.Tracer(name).Start(ctx, "Client.Profile()")
	defer span.End()

	id, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}

	row, err := c.db.Profile(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "db.Profile()")
	}

	return c.withPermissions(ctx, row)
}

// ProfileByEmail returns the profile whose email matches case-insensitively.
func (c *Client) ProfileByEmail(ctx context.Context, email string) (*sessioninfo.Profile, error) {
	ctx, span := otel.Tracer(name).Start(ctx, "Client.ProfileByEmail()")
	defer span.End()

	row, err := c.db.ProfileByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, errors.Wrap(err, "db.ProfileByEmail()")
	}

	return c.withPermissions(ctx, row)
}

// EnsureProfile creates a staff profile for user on first sign-in and records the
// sign-in time. An existing profile is returned unchanged.
func (c *Client) EnsureProfile(ctx context.Context, user *sessioninfo.User) (*sessioninfo.Profile, error) {
	ctx, span := otel.Tracer(name).Start(ctx, "Client.EnsureProfile()")
	defer span.End()

	if user == nil {
		return nil, errors.New("user is required")
	}

	id, err := parseUserID(user.ID)
	if err != nil {
		return nil, err
	}

	insert := &dbtype.InsertProfile{
		ID:       id,
		Email:    strings.ToLower(user.Email),
		FullName: user.Name,
		Role:     string(roles.Staff),
		SignedIn: c.now(),
	}
	if err := c.db.EnsureProfile(ctx, insert); err != nil {
		return nil, errors.Wrap(err, "db.EnsureProfile()")
	}

	row, err := c.db.Profile(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "db.Profile()")
	}

	return c.withPermissions(ctx, row)
}

// Teams returns the active team memberships of userID.
func (c *Client) Teams(ctx context.Context, userID string) ([]sessioninfo.TeamMembership, error) {
	ctx, span := otel.Tracer(name).Start(ctx, "Client.Teams()")
	defer span.End()

	id, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}

	rows, err := c.db.Teams(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "db.Teams()")
	}

	teams := make([]sessioninfo.TeamMembership, 0, len(rows))
	for _, r := range rows {
		role, err := roles.ParseTeamRole(r.Role)
		if err != nil {
			logger.FromCtx(ctx).Error(&InvalidValueError{UserID: userID, Column: "team_members.role", Value: r.Role, Err: err})

			continue
		}
		teams = append(teams, sessioninfo.TeamMembership{
			Team: sessioninfo.Team{
				ID:          r.TeamID.String(),
				Name:        r.Name,
				Description: r.Description,
			},
			Role: role,
		})
	}

	return teams, nil
}

// AppPermissions returns the unexpired per-application grants of userID.
func (c *Client) AppPermissions(ctx context.Context, userID string) ([]sessioninfo.AppPermission, error) {
	ctx, span := otel.Tracer(name).Start(ctx, "Client.AppPermissions()")
	defer span.End()

	id, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}

	rows, err := c.db.AppPermissions(ctx, id, c.now())
	if err != nil {
		return nil, errors.Wrap(err, "db.AppPermissions()")
	}

	grants := make([]sessioninfo.AppPermission, 0, len(rows))
	for _, r := range rows {
		level, err := roles.ParseAccessLevel(r.Level)
		if err != nil {
			logger.FromCtx(ctx).Error(&InvalidValueError{UserID: userID, Column: "app_permissions.level", Value: r.Level, Err: err})

			continue
		}
		grants = append(grants, sessioninfo.AppPermission{
			App:       r.AppName,
			Level:     level,
			ExpiresAt: r.ExpiresAt,
		})
	}

	return grants, nil
}

// UserPermissions returns the explicit permissions granted to userID.
func (c *Client) UserPermissions(ctx context.Context, userID string) ([]string, error) {
	ctx, span := otel.Tracer(name).Start(ctx, "Client.UserPermissions()")
	defer span.End()

	id, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}

	perms, err := c.db.UserPermissions(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "db.UserPermissions()")
	}

	return perms, nil
}

// AddUserPermissions grants permissions to userID.
func (c *Client) AddUserPermissions(ctx context.Context, userID string, permissions ...string) error {
	ctx, span := otel.Tracer(name).Start(ctx, "Client.AddUserPermissions()")
	defer span.End()

	if len(permissions) == 0 {
		return nil
	}

	id, err := parseUserID(userID)
	if err != nil {
		return err
	}

	if err := c.db.AddUserPermissions(ctx, id, permissions...); err != nil {
		return errors.Wrap(err, "db.AddUserPermissions()")
	}

	return nil
}

// DeleteUserPermissions revokes permissions from userID.
func (c *Client) DeleteUserPermissions(ctx context.Context, userID string, permissions ...string) error {
	ctx, span := otel.Tracer(name).Start(ctx, "Client.DeleteUserPermissions()")
	defer span.End()

	if len(permissions) == 0 {
		return nil
	}

	id, err := parseUserID(userID)
	if err != nil {
		return err
	}

	if err := c.db.DeleteUserPermissions(ctx, id, permissions...); err != nil {
		return errors.Wrap(err, "db.DeleteUserPermissions()")
	}

	return nil
}

// RecordAudit appends an entry to the audit log.
func (c *Client) RecordAudit(ctx context.Context, entry *AuditEntry) error {
	ctx, span := otel.Tracer(name).Start(ctx, "Client.RecordAudit()")
	defer span.End()

	row, err := auditLog(entry, c.now)
	if err != nil {
		return err
	}

	if err := c.db.InsertAuditLog(ctx, row); err != nil {
		return errors.Wrap(err, "db.InsertAuditLog()")
	}

	return nil
}

func (c *Client) withPermissions(ctx context.Context, row *dbtype.Profile) (*sessioninfo.Profile, error) {
	p, err := profile(row)
	if err != nil {
		return nil, err
	}

	perms, err := c.db.UserPermissions(ctx, row.ID)
	if err != nil {
		return nil, errors.Wrap(err, "db.UserPermissions()")
	}
	p.Permissions = perms

	return p, nil
}

// profile maps a row to a Profile. A role outside the enumeration is an
// InvalidValueError so callers deny instead of guessing.
func profile(row *dbtype.Profile) (*sessioninfo.Profile, error) {
	role, err := roles.Parse(row.Role)
	if err != nil {
		return nil, &InvalidValueError{UserID: row.ID.String(), Column: "profiles.role", Value: row.Role, Err: err}
	}

	return &sessioninfo.Profile{
		UserID:     row.ID.String(),
		Email:      row.Email,
		FullName:   row.FullName,
		Role:       role,
		Department: row.Department,
		Locations:  row.Locations,
		Active:     row.Active,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}, nil
}

func auditLog(entry *AuditEntry, now func() time.Time) (*dbtype.AuditLog, error) {
	if entry == nil {
		return nil, errors.New("audit entry is required")
	}

	id, err := ccc.NewUUID()
	if err != nil {
		return nil, errors.Wrap(err, "ccc.NewUUID()")
	}

	var details string
	if len(entry.Details) > 0 {
		b, err := json.Marshal(entry.Details)
		if err != nil {
			return nil, errors.Wrap(err, "json.Marshal()")
		}
		details = string(b)
	}

	at := entry.At
	if at.IsZero() {
		at = now()
	}

	return &dbtype.AuditLog{
		ID:        id,
		UserID:    entry.UserID,
		Action:    string(entry.Action),
		Resource:  entry.Resource,
		Outcome:   string(entry.Outcome),
		Reason:    entry.Reason,
		RequestID: entry.RequestID,
		IPAddress: entry.IPAddress,
		UserAgent: entry.UserAgent,
		Details:   details,
		CreatedAt: at,
	}, nil
}

// parseUserID maps an identity provider subject to a profile key. A subject that is
// not a UUID cannot have a profile.
func parseUserID(userID string) (ccc.UUID, error) {
	id, err := ccc.UUIDFromString(userID)
	if err != nil {
		return ccc.NilUUID, httpio.NewNotFoundMessagef("profile %q not found", userID)
	}

	return id, nil
}

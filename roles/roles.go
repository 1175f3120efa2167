package roles

import (
	"context"
	"slices"

	"github.com/cccteam/logger"
	"github.com/gangerdermatology/auth/internal/util"
	"github.com/go-playground/errors/v5"
	"go.opentelemetry.io/otel"
)

const name = "github.com/gangerdermatology/auth/roles"

// PermissionAssigner synchronizes a user's explicit permission overrides.
type PermissionAssigner interface {
	// AssignPermissions ensures that the user holds exactly the specified explicit permissions.
	// It returns true if the user holds at least one explicit permission after the operation.
	AssignPermissions(ctx context.Context, userID string, permissions []string) (hasPermission bool, err error)
}

// PermissionManager is the storage required by PermissionAssignmentClient.
type PermissionManager interface {
	UserPermissions(ctx context.Context, userID string) ([]string, error)
	AddUserPermissions(ctx context.Context, userID string, permissions ...string) error
	DeleteUserPermissions(ctx context.Context, userID string, permissions ...string) error
}

var _ PermissionAssigner = &PermissionAssignmentClient{}

// PermissionAssignmentClient implements the PermissionAssigner interface.
type PermissionAssignmentClient struct {
	manager PermissionManager
}

// NewPermissionAssignmentClient creates a new PermissionAssignmentClient.
func NewPermissionAssignmentClient(manager PermissionManager) *PermissionAssignmentClient {
	return &PermissionAssignmentClient{
		manager: manager,
	}
}

// AssignPermissions ensures that the user holds the specified permissions ONLY.
// Malformed permission strings are dropped before the comparison.
func (c *PermissionAssignmentClient) AssignPermissions(ctx context.Context, userID string, permissions []string) (hasPermission bool, err error) {
	ctx, span := otel.Tracer(name).Start(ctx, "PermissionAssignmentClient.AssignPermissions()")
	defer span.End()

	existing, err := c.manager.UserPermissions(ctx, userID)
	if err != nil {
		return false, errors.Wrap(err, "PermissionManager.UserPermissions()")
	}

	wanted := make([]string, 0, len(permissions))
	for _, p := range permissions {
		perm, err := ParsePermission(p)
		if err != nil {
			logger.FromCtx(ctx).Infof("Skipping permission for user %s: %s", userID, err)

			continue
		}
		if key := canonical(perm); !slices.Contains(wanted, key) {
			wanted = append(wanted, key)
		}
	}

	if add := util.Exclude(wanted, existing); len(add) > 0 {
		if err := c.manager.AddUserPermissions(ctx, userID, add...); err != nil {
			return false, errors.Wrap(err, "PermissionManager.AddUserPermissions()")
		}
		logger.FromCtx(ctx).Infof("User %s granted permissions %v", userID, add)
	}

	if remove := util.Exclude(existing, wanted); len(remove) > 0 {
		if err := c.manager.DeleteUserPermissions(ctx, userID, remove...); err != nil {
			return false, errors.Wrap(err, "PermissionManager.DeleteUserPermissions()")
		}
		logger.FromCtx(ctx).Infof("User %s revoked permissions %v", userID, remove)
	}

	return len(wanted) > 0, nil
}

func canonical(p Permission) string {
	if p.Action == wildcard && p.Resource == wildcard {
		return wildcard
	}

	return p.Key()
}

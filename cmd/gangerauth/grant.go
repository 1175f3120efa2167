package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gangerdermatology/auth/config"
	"github.com/gangerdermatology/auth/profilestore"
	"github.com/gangerdermatology/auth/roles"
	"github.com/go-playground/errors/v5"
	"github.com/spf13/cobra"
)

func grantCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "grant USER_ID [PERMISSION...]",
		Short: "Set the explicit permissions of a staff user",
		Long: `Grant replaces the explicit permission overrides of USER_ID with the
listed permissions (action:resource, or * for all). Listing none revokes
every override. The change is written to the audit log.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return errors.Wrap(err, "config.Load()")
			}
			if cfg.DatabaseURL == "" {
				return errors.New("database_url is required to change permissions")
			}

			store, closeStore, err := openProfileStore(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer closeStore()

			return grant(cmd.Context(), cmd.OutOrStdout(), store, args[0], args[1:])
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "YAML config file; the environment overrides it")

	return cmd
}

// grant assigns exactly permissions to the profile of userID and prints the
// permissions the user holds afterwards.
func grant(ctx context.Context, out io.Writer, store profilestore.Store, userID string, permissions []string) error {
	profile, err := store.Profile(ctx, userID)
	if err != nil {
		return errors.Wrap(err, "profilestore.Store.Profile()")
	}

	if _, err := roles.NewPermissionAssignmentClient(store).AssignPermissions(ctx, profile.UserID, permissions); err != nil {
		return errors.Wrap(err, "roles.PermissionAssignmentClient.AssignPermissions()")
	}

	held, err := store.UserPermissions(ctx, profile.UserID)
	if err != nil {
		return errors.Wrap(err, "profilestore.Store.UserPermissions()")
	}

	if err := store.RecordAudit(ctx, &profilestore.AuditEntry{
		UserID:   profile.UserID,
		Action:   profilestore.ActionPermissionsAssigned,
		Resource: "user_permissions",
		Outcome:  profilestore.OutcomeAllowed,
		Details:  map[string]string{"permissions": strings.Join(held, ",")},
	}); err != nil {
		return errors.Wrap(err, "profilestore.Store.RecordAudit()")
	}

	summary := "(none)"
	if len(held) > 0 {
		summary = strings.Join(held, ",")
	}
	fmt.Fprintf(out, "%s (%s): %s\n", profile.Email, profile.Role, summary)

	return nil
}

package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/gangerdermatology/auth/config"
	"github.com/gangerdermatology/auth/roles"
	"github.com/gangerdermatology/auth/sessionstore"
	"github.com/go-playground/errors/v5"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const redacted = "REDACTED"

func rolesCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "roles",
		Short: "Print the role hierarchy and resolved permissions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry := roles.Default()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ROLE\tLEVEL\tPERMISSIONS")
			for _, role := range registry.Roles() {
				perms := registry.Permissions(role)
				summary := fmt.Sprintf("%d", len(perms))
				if verbose {
					summary = strings.Join(perms, ",")
				}
				fmt.Fprintf(tw, "%s\t%d\t%s\n", role, registry.Level(role), summary)
			}

			return tw.Flush()
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "List every permission instead of a count")

	return cmd
}

func routeCmd() *cobra.Command {
	var explicit []string

	cmd := &cobra.Command{
		Use:   "route ROLE PATH",
		Short: "Report whether a role may open a platform route",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := roles.Parse(args[0])
			if err != nil {
				return errors.Wrap(err, "roles.Parse()")
			}

			table := roles.DefaultRoutes()
			verdict := "denied"
			if roles.Default().CanAccessRoute(table, role, args[1], explicit...) {
				verdict = "allowed"
			}

			rule, ok := table.Rule(args[1])
			if !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s (no matching rule)\n", role, args[1], verdict)

				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s (rule %s min_role=%s permission=%s)\n",
				role, args[1], verdict, rule.Pattern, rule.MinRole, rule.Permission)

			return nil
		},
	}

	cmd.Flags().StringSliceVar(&explicit, "permission", nil, "Explicit permission held by the user (repeatable)")

	return cmd
}

func storageKeyCmd() *cobra.Command {
	var projectRef string

	cmd := &cobra.Command{
		Use:   "storage-key BASE_URL",
		Short: "Print the session cookie names for an identity backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			canonical, err := sessionstore.StorageKey(args[0], projectRef)
			if err != nil {
				return errors.Wrap(err, "sessionstore.StorageKey()")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "canonical: %s\n", canonical)

			if legacy, err := sessionstore.LegacyStorageKey(args[0]); err == nil && legacy != canonical {
				fmt.Fprintf(cmd.OutOrStdout(), "legacy:    %s\n", legacy)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&projectRef, "project-ref", "", "Project reference, required for custom domains")

	return cmd
}

func configCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration as YAML with secrets redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return errors.Wrap(err, "config.Load()")
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(redact(*cfg)); err != nil {
				return errors.Wrap(err, "yaml.Encoder.Encode()")
			}

			return enc.Close()
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "YAML config file; the environment overrides it")

	return cmd
}

func redact(c config.Config) config.Config {
	for _, secret := range []*string{&c.AnonKey, &c.ServiceRoleKey, &c.JWTSecret, &c.CookieKey, &c.SessionKey, &c.DatabaseURL} {
		if *secret != "" {
			*secret = redacted
		}
	}

	return c
}

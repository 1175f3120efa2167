// Command gangerauth serves the platform session endpoints and answers
// questions about roles, routes and session storage keys.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "gangerauth",
		Short:         "Ganger platform session and authorization tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		serveCmd(),
		rolesCmd(),
		routeCmd(),
		storageKeyCmd(),
		grantCmd(),
		configCmd(),
	)

	return cmd
}

// Package main provides the entry point for the tuimigrate CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/tuimigrate/cmd/tuimigrate/commands"
	"github.com/Sumatoshi-tech/tuimigrate/pkg/version"
)

func main() {
	version.Resolve()

	rootCmd := &cobra.Command{
		Use:   "tuimigrate",
		Short: "Migrate Taiga UI templates and modules from v2 to v3",
		Long: `tuimigrate rewrites component templates and NgModule imports of a
project that depends on Taiga UI v2 so that it builds against v3.

Commands:
  update    Run the v3 migration over a project
  rules     List the migration rules
  restore   Restore files from a backup archive`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./tuimigrate.yaml or $HOME/tuimigrate.yaml)")

	rootCmd.AddCommand(commands.NewUpdateCommand())
	rootCmd.AddCommand(commands.NewRulesCommand())
	rootCmd.AddCommand(commands.NewRestoreCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String("tuimigrate"))
		},
	}
}

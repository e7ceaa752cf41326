// Package config implements the "config" subcommands.
package config

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent of the configuration subcommands.
var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the service configuration",
	Long: `Inspect the preprocessing configuration.

Subcommands print the effective configuration (file, environment and
defaults merged) or a JSON schema of the configuration file.`,
}

func init() {
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(schemaCmd)
}

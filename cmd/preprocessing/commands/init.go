package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adept-ml/preprocessing/internal/cli/output"
	"github.com/adept-ml/preprocessing/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Initialize a sample preprocessing configuration file.

By default, the configuration file is created at $XDG_CONFIG_HOME/preprocessing/config.yaml.
Use --config to specify a custom path.

Examples:
  # Initialize with default location
  preprocessing init

  # Initialize with custom path
  preprocessing init --config /etc/preprocessing/config.yaml

  # Force overwrite existing config
  preprocessing init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	var configPath string
	var err error

	if configFile != "" {
		err = config.InitConfigToPath(configFile, initForce)
		configPath = configFile
	} else {
		configPath, err = config.InitConfig(initForce)
	}

	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	out := cmd.OutOrStdout()
	output.NewPrinter(out, output.FormatTable).Success("Configuration file created at: " + configPath)
	_, _ = fmt.Fprintln(out, "\nNext steps:")
	_, _ = fmt.Fprintln(out, "  1. Set data_management.url so readiness checks the Data-Management-Service")
	_, _ = fmt.Fprintln(out, "  2. Start the server with: preprocessing start")
	_, _ = fmt.Fprintf(out, "  3. Or specify custom config: preprocessing start --config %s\n", configPath)
	return nil
}

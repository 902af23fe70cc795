package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marmos91/facilityd/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Initialize a sample facilityd configuration file.

By default, the configuration file is created at $XDG_CONFIG_HOME/facilityd/config.yaml.
Use --config to specify a custom path.

Examples:
  # Initialize with default location
  facilityd init

  # Initialize with custom path
  facilityd init --config /etc/facilityd/config.yaml

  # Force overwrite existing config
  facilityd init --force`,
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

	fmt.Printf("Configuration file created at: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit the configuration file to customize facilities and timeouts")
	fmt.Println("  2. Start the server with: facilityd serve 2222 at-most-once")
	fmt.Printf("  3. Or specify custom config: facilityd serve 2222 at-most-once --config %s\n", configPath)

	return nil
}

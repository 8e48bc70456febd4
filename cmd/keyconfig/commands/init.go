package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/keyconfig/internal/config"
	"github.com/thoreinstein/keyconfig/internal/errors"
	"github.com/thoreinstein/keyconfig/internal/logging"
	"github.com/thoreinstein/keyconfig/internal/paths"
)

var (
	initSettingsFile string
	initEnvPrefix    string
	initNoMask       bool
	initForce        bool
)

func init() {
	initCmd.Flags().StringVar(&initSettingsFile, "settings-file", "", "settings file the commands operate on")
	initCmd.Flags().StringVar(&initEnvPrefix, "env-prefix", "", "prefix of environment variables layered over the settings file")
	initCmd.Flags().BoolVar(&initNoMask, "no-mask", false, "print secret looking values unmasked")
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing configuration")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the keyconfig config file",
	Long: `Create the keyconfig config file under the XDG config home, or under
$KEYCONFIG_CONFIG_DIR when set.`,
	Example: `  # Write defaults
  keyconfig init

  # Layer APP_* environment variables over a project file
  keyconfig init --settings-file ./settings.toml --env-prefix APP_

  See Also: keyconfig path`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, _ []string) error {
	configPath := paths.ConfigFile()
	w := cmd.OutOrStdout()

	if _, err := os.Stat(configPath); err == nil && !initForce {
		fmt.Fprintf(w, "Configuration already exists at %s\n", configPath)
		fmt.Fprintln(w, "Use --force to overwrite")
		return nil
	}

	cfg := config.Default()
	cfg.SettingsFile = initSettingsFile
	cfg.EnvPrefix = initEnvPrefix
	cfg.MaskSecrets = !initNoMask
	if cmd.Flags().Changed("log-format") {
		cfg.LogFormat = logFormat
	}

	if err := config.Save(configPath, cfg); err != nil {
		if errors.Is(err, errors.ErrInvalidConfig) {
			return errors.NewUserError(err, "Check the --settings-file extension: .yaml, .yml, .toml, or .json")
		}
		return errors.NewSystemError(err, "")
	}

	logging.FromContext(cmd.Context()).Info("config written", "path", configPath)
	printOut(w, fmt.Sprintf("Created %s\n", configPath))
	return nil
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/keyconfig/internal/errors"
	"github.com/thoreinstein/keyconfig/internal/paths"
)

var (
	pathConfig bool
	pathAll    bool
)

func init() {
	pathCmd.Flags().BoolVar(&pathConfig, "config", false, "print the keyconfig config file instead")
	pathCmd.Flags().BoolVar(&pathAll, "all", false, "print both files, labelled")
	rootCmd.AddCommand(pathCmd)
}

var pathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings file path",
	Long: `Print the settings file the other commands operate on: --file if
given, then settings_file from the config, then the default location.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		settingsPath, err := cliConfig.SettingsPath(settingsFile)
		if err != nil {
			return errors.NewUserError(err, "Check the --file flag or settings_file in the config")
		}

		w := cmd.OutOrStdout()
		switch {
		case pathAll:
			fmt.Fprintf(w, "config:   %s\n", paths.ConfigFile())
			fmt.Fprintf(w, "settings: %s\n", settingsPath)
		case pathConfig:
			fmt.Fprintln(w, paths.ConfigFile())
		default:
			fmt.Fprintln(w, settingsPath)
		}
		return nil
	},
}

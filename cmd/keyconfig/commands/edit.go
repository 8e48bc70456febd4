package commands

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/keyconfig/internal/config"
	"github.com/thoreinstein/keyconfig/internal/editor"
	"github.com/thoreinstein/keyconfig/internal/errors"
	"github.com/thoreinstein/keyconfig/internal/logging"
	"github.com/thoreinstein/keyconfig/internal/paths"
	"github.com/thoreinstein/keyconfig/pkg/fileutil"
	"github.com/thoreinstein/keyconfig/pkg/source/file"
)

var editConfig bool

func init() {
	editCmd.Flags().BoolVar(&editConfig, "config", false, "edit the keyconfig config file instead")
	rootCmd.AddCommand(editCmd)
}

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the settings file in your editor",
	Long: `Open the settings file in $EDITOR (falling back to $VISUAL, nano, then
vi) and check that it still parses once the editor exits.`,
	Args: cobra.NoArgs,
	RunE: runEdit,
}

func runEdit(cmd *cobra.Command, _ []string) error {
	path := paths.ConfigFile()
	if !editConfig {
		p, err := cliConfig.SettingsPath(settingsFile)
		if err != nil {
			return errors.NewUserError(err, "Check the --file flag or settings_file in the config")
		}
		path = p
		// reject unknown extensions before the editor opens
		if _, err := file.FormatOf(path); err != nil {
			return errors.NewUserError(err, "Use a .yaml, .yml, .toml, or .json settings file")
		}
	}

	if err := fileutil.EnsureParent(path); err != nil {
		return errors.NewSystemError(err, "Check permissions on the parent directory")
	}

	if err := backupFile(path); err != nil {
		return err
	}

	printOut(cmd.ErrOrStderr(), fmt.Sprintf("Location: %s\n", path))

	streams := editor.Streams{In: cmd.InOrStdin(), Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr()}
	if err := editor.Open(cmd.Context(), path, streams); err != nil {
		return errors.NewSystemError(err, "Set $EDITOR to an installed editor")
	}

	if editConfig {
		// the editor may exit without saving a new file
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if _, err := config.Load(path, logging.FromContext(cmd.Context())); err != nil {
			return errors.NewConfigError(err)
		}
		return nil
	}

	if _, err := file.Open(path, file.WithReadOnly()); err != nil {
		return errors.NewUserError(err, "Run 'keyconfig edit' to fix it; 'keyconfig doctor' shows where the error is")
	}
	return nil
}

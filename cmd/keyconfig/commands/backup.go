package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/keyconfig/internal/backup"
	"github.com/thoreinstein/keyconfig/internal/errors"
	"github.com/thoreinstein/keyconfig/internal/logging"
)

var (
	backupListJSON bool
	backupKeep     int
)

func init() {
	backupListCmd.Flags().BoolVar(&backupListJSON, "json", false, "output in JSON format")
	backupPruneCmd.Flags().IntVar(&backupKeep, "keep", 1, "number of snapshots to keep")

	backupCmd.AddCommand(backupListCmd, backupRestoreCmd, backupPruneCmd)
	rootCmd.AddCommand(backupCmd)
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage settings file snapshots",
	Long: `keyconfig snapshots the settings file before set, unset, edit, and
restore change it, keeping backup_retention snapshots per file (default 5).`,
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshots of the settings file",
	Example: `  keyconfig backup list
  keyconfig backup list --json

  See Also:
    keyconfig backup restore - Restore from a snapshot`,
	Args: cobra.NoArgs,
	RunE: runBackupList,
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore [backup-id]",
	Short: "Restore the settings file from a snapshot",
	Long: `Restore the settings file from a snapshot. Without an ID the most recent
snapshot is used. The current file is snapshotted first, so a restore can be
undone with another restore.`,
	Example: `  # Undo the last change
  keyconfig backup restore

  # Restore a specific snapshot
  keyconfig backup restore 20260123T100712.123456`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBackupRestore,
}

var backupPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old snapshots of the settings file",
	Args:  cobra.NoArgs,
	RunE:  runBackupPrune,
}

// backupInfoOutput represents a single snapshot in JSON output.
type backupInfoOutput struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Size        int64     `json:"size"`
	ToolVersion string    `json:"keyconfig_version"`
}

// backupTarget resolves the settings file whose snapshots are managed.
func backupTarget() (string, *backup.Manager, error) {
	path, err := cliConfig.SettingsPath(settingsFile)
	if err != nil {
		return "", nil, errors.NewUserError(err, "Check the --file flag or settings_file in the config")
	}
	return path, backup.NewManager(backup.WithRetentionCount(cliConfig.BackupRetention)), nil
}

func runBackupList(cmd *cobra.Command, _ []string) error {
	path, mgr, err := backupTarget()
	if err != nil {
		return err
	}

	manifests, err := mgr.List(path)
	if err != nil && !errors.Is(err, backup.ErrNoBackupsFound) {
		return errors.NewSystemError(errors.Wrap(err, "listing backups"), "")
	}

	w := cmd.OutOrStdout()
	if backupListJSON {
		return outputBackupListJSON(w, manifests)
	}
	return outputBackupListTabular(w, path, manifests)
}

func outputBackupListJSON(w io.Writer, manifests []backup.Manifest) error {
	backups := make([]backupInfoOutput, len(manifests))
	for i, m := range manifests {
		backups[i] = backupInfoOutput{
			ID:          m.ID,
			CreatedAt:   m.CreatedAt,
			Size:        m.Size,
			ToolVersion: m.ToolVersion,
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(backups), "encoding JSON")
}

func outputBackupListTabular(w io.Writer, path string, manifests []backup.Manifest) error {
	bold := color.New(color.Bold)
	fmt.Fprintf(w, "%s %s\n", bold.Sprint("Settings:"), path)

	if len(manifests) == 0 {
		fmt.Fprintln(w, color.HiBlackString("  (no backups available)"))
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Backups are created automatically before keyconfig modifies the settings file.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n",
		bold.Sprint("ID"), bold.Sprint("CREATED"), bold.Sprint("SIZE"), bold.Sprint("VERSION"))
	for _, m := range manifests {
		fmt.Fprintf(tw, "  %s\t%s\t%d\t%s\n",
			color.GreenString(m.ID),
			m.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			m.Size,
			m.ToolVersion)
	}
	return errors.Wrap(tw.Flush(), "writing table")
}

func runBackupRestore(cmd *cobra.Command, args []string) error {
	path, mgr, err := backupTarget()
	if err != nil {
		return err
	}

	var id string
	if len(args) > 0 {
		id = args[0]
	} else {
		manifests, err := mgr.List(path)
		if errors.Is(err, backup.ErrNoBackupsFound) {
			return errors.NewUserError(errors.Wrapf(err, "for %s", path), "Run 'keyconfig backup list' to check the settings file path")
		}
		if err != nil {
			return errors.NewSystemError(errors.Wrap(err, "listing backups"), "")
		}
		id = manifests[0].ID
	}

	manifest, err := mgr.Restore(path, id)
	switch {
	case errors.Is(err, backup.ErrNoBackupsFound):
		return errors.NewUserError(err, "Run 'keyconfig backup list' to see snapshot IDs")
	case errors.Is(err, backup.ErrBackupCorrupted):
		return errors.NewSystemError(err, "Pick another snapshot with 'keyconfig backup list'")
	case err != nil:
		return errors.NewSystemError(err, "")
	}

	logging.FromContext(cmd.Context()).Info("settings restored", "backup", manifest.ID, "path", manifest.OriginalPath)

	printOut(cmd.OutOrStdout(), fmt.Sprintf("✓ restored %s from %s\n", manifest.OriginalPath, manifest.ID))
	return nil
}

func runBackupPrune(cmd *cobra.Command, _ []string) error {
	if backupKeep < 0 {
		return errors.NewUserError(errors.New("--keep must be zero or more"), "")
	}

	path, mgr, err := backupTarget()
	if err != nil {
		return err
	}

	if err := mgr.Prune(path, backupKeep); err != nil {
		return errors.NewSystemError(errors.Wrap(err, "pruning backups"), "")
	}

	printOut(cmd.OutOrStdout(), fmt.Sprintf("✓ kept at most %d snapshot(s) of %s\n", backupKeep, path))
	return nil
}

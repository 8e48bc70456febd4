package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/keyconfig/internal/errors"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check <key>...",
	Short: "Verify that keys are set",
	Long: `Report whether each named key has a value in the environment or the
settings file. Exits with status 1 when any key is missing, so it can guard
scripts:

  keyconfig check Host Port && ./deploy`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	s, err := openSettings(cmd)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	var missing []string
	for _, key := range args {
		_, found, err := s.lookup(key)
		if err != nil {
			return errors.NewConfigError(err)
		}
		if !found {
			missing = append(missing, key)
			printOut(w, fmt.Sprintf("✗ %s missing\n", key))
			continue
		}
		printOut(w, fmt.Sprintf("✓ %s (%s)\n", key, s.origin(key)))
	}

	if len(missing) > 0 {
		err := errors.Wrapf(errors.ErrMissingKeys, "%s", strings.Join(missing, ", "))
		return errors.NewUserError(err, "Run: keyconfig set <key> <value>")
	}
	return nil
}

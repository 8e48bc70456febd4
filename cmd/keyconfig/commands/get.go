package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/thoreinstein/keyconfig/internal/cli/prompt"
	"github.com/thoreinstein/keyconfig/internal/errors"
)

// isTerminal reports whether v is an *os.File attached to a terminal.
// Tests replace it.
var isTerminal = func(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// newSelector builds the key picker. Tests replace it.
var newSelector = func(in io.Reader, out io.Writer) *prompt.Selector {
	return prompt.NewSelectorWithIO(in, out)
}

func init() {
	rootCmd.AddCommand(getCmd)
}

var getCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print the value of a key",
	Long: `Print the value of a key. Environment variables named by env_prefix
take precedence over the settings file.

Without a key, an interactive picker lists the keys in the settings file.
The picker needs a terminal on stdin.`,
	Example: `  keyconfig get Port
  keyconfig get server.host
  keyconfig get`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	s, err := openSettings(cmd)
	if err != nil {
		return err
	}

	var key string
	if len(args) == 1 {
		key = args[0]
	} else {
		key, err = pickKey(cmd, s)
		if err != nil {
			return err
		}
	}

	v, found, err := s.lookup(key)
	if err != nil {
		return errors.NewConfigError(err)
	}
	if !found {
		err := errors.Wrapf(errors.ErrKeyNotFound, "%q", key)
		return errors.NewUserError(err, "Run 'keyconfig list' to see available keys")
	}

	out, err := render(v)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

// pickKey asks the user for a key. A full terminal gets the fuzzy finder;
// a terminal on stdin with redirected stdout gets a numbered prompt on
// stderr.
func pickKey(cmd *cobra.Command, s *settings) (string, error) {
	in := cmd.InOrStdin()
	if !isTerminal(in) {
		return "", errors.NewUserError(errors.New("no key given"),
			"Pass a key, or run from a terminal to pick one interactively")
	}

	keys := s.keys()
	sel := newSelector(in, cmd.ErrOrStderr())

	var (
		key string
		err error
	)
	if isTerminal(cmd.OutOrStdout()) {
		key, err = sel.FuzzyKey(keys, func(k string) string { return preview(s, k) })
	} else {
		key, err = sel.SelectKey(keys)
	}

	switch {
	case err == nil:
		return key, nil
	case errors.Is(err, prompt.ErrNoKeys):
		return "", errors.NewUserError(err, "Run 'keyconfig set <key> <value>' to add one")
	case errors.Is(err, prompt.ErrSelectionCancelled):
		return "", errors.NewExitError(err, errors.ExitUser)
	default:
		return "", errors.NewUserError(err, "")
	}
}

// preview renders the picker's side pane for key.
func preview(s *settings, key string) string {
	v, found, err := s.lookup(key)
	switch {
	case err != nil:
		return "error: " + err.Error()
	case !found:
		return "(unset)"
	}
	out, err := render(mask(key, v))
	if err != nil {
		return "error: " + err.Error()
	}
	return fmt.Sprintf("%s\n\nsource: %s\n\n%s", key, s.origin(key), out)
}

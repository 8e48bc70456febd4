package commands

import (
	"github.com/spf13/cobra"

	"github.com/thoreinstein/keyconfig/internal/errors"
	"github.com/thoreinstein/keyconfig/pkg/fileutil"
)

// listReveal holds the value of the --reveal flag.
var listReveal bool

func init() {
	listCmd.Flags().BoolVar(&listReveal, "reveal", false,
		"print secret looking values unmasked")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Print every key and value as YAML",
	Long: `Print every key in the settings file with its effective value as
YAML. Nested tables are flattened to dotted keys. Values whose key looks
secret (token, password, api_key, ...) or that start with a known token
prefix are masked unless mask_secrets is off or --reveal is given.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func runList(cmd *cobra.Command, _ []string) error {
	s, err := openSettings(cmd)
	if err != nil {
		return err
	}

	keys := s.keys()
	if len(keys) == 0 {
		s.logger.Info("settings file is empty", "path", s.file.Path())
		return nil
	}

	out := make(map[string]any, len(keys))
	for _, key := range keys {
		v, _, err := s.lookup(key)
		if err != nil {
			return errors.NewConfigError(err)
		}
		if !listReveal {
			v = mask(key, v)
		}
		out[key] = v
	}

	data, err := fileutil.MarshalYAML(out)
	if err != nil {
		return errors.NewSystemError(err, "")
	}
	_, err = cmd.OutOrStdout().Write(data)
	return errors.Wrap(err, "writing output")
}

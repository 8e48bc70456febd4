package commands

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/keyconfig/internal/errors"
	"github.com/thoreinstein/keyconfig/pkg/keyconfig"
	"github.com/thoreinstein/keyconfig/pkg/keyconfig/convert"
)

// valueTypes maps --type names to the type a value is converted to before
// it is stored.
var valueTypes = map[string]reflect.Type{
	"string":   reflect.TypeFor[string](),
	"int":      reflect.TypeFor[int64](),
	"uint":     reflect.TypeFor[uint64](),
	"float":    reflect.TypeFor[float64](),
	"bool":     reflect.TypeFor[bool](),
	"duration": reflect.TypeFor[time.Duration](),
	"time":     reflect.TypeFor[time.Time](),
	"list":     reflect.TypeFor[[]string](),
}

// setType holds the value of the --type flag.
var setType string

func init() {
	setCmd.Flags().StringVarP(&setType, "type", "t", "string",
		"value type: "+strings.Join(slices.Sorted(maps.Keys(valueTypes)), ", "))
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(unsetCmd)
}

var setCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Write a value to the settings file",
	Long: `Write a value to the settings file. The value is parsed as --type
first, so "--type int" rejects "eighty" instead of storing it. Lists are
comma separated.`,
	Example: `  keyconfig set Host example.com
  keyconfig set Port 8080 --type int
  keyconfig set Tags a,b,c --type list`,
	Args: cobra.ExactArgs(2),
	RunE: runSet,
}

var unsetCmd = &cobra.Command{
	Use:     "unset <key>",
	Aliases: []string{"rm"},
	Short:   "Remove a key from the settings file",
	Args:    cobra.ExactArgs(1),
	RunE:    runUnset,
}

func runSet(cmd *cobra.Command, args []string) error {
	key, raw := args[0], args[1]

	typ, ok := valueTypes[setType]
	if !ok {
		err := errors.Newf("unknown value type %q", setType)
		return errors.NewUserError(err, "Run 'keyconfig set --help' to see value types")
	}

	value, err := convert.To(raw, typ)
	if err != nil {
		return errors.NewUserError(err, fmt.Sprintf("Pass a value that parses as %s", setType))
	}

	s, err := openSettings(cmd)
	if err != nil {
		return err
	}

	if err := backupFile(s.file.Path()); err != nil {
		return err
	}
	if err := s.store.SetValue(key, value, nil, typ); err != nil {
		if errors.Is(err, keyconfig.ErrNotSupported) {
			return errors.NewUserError(err, "The settings file is read-only")
		}
		return errors.NewSystemError(err, "")
	}

	s.logger.Info("value written", "key", key, "file", s.file.Path())
	if s.env != nil {
		if _, shadowed, _ := s.env.GetValue(key, nil, rawType); shadowed {
			s.logger.Warn("value is shadowed by an environment variable",
				"key", key, "variable", s.env.VarName(key))
		}
	}

	printOut(cmd.OutOrStdout(), fmt.Sprintf("✓ %s updated\n", key))
	return nil
}

func runUnset(cmd *cobra.Command, args []string) error {
	key := args[0]

	s, err := openSettings(cmd)
	if err != nil {
		return err
	}

	if _, ok := s.file.Get(key); !ok {
		err := errors.Wrapf(errors.ErrKeyNotFound, "%q", key)
		return errors.NewUserError(err, "Run 'keyconfig list' to see available keys")
	}
	if err := backupFile(s.file.Path()); err != nil {
		return err
	}
	if err := s.file.Delete(key); err != nil {
		return errors.NewSystemError(err, "")
	}

	printOut(cmd.OutOrStdout(), fmt.Sprintf("✓ %s removed\n", key))
	return nil
}

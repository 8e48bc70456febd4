package commands

import (
	"io"
	"log/slog"
	"reflect"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/keyconfig/internal/backup"
	"github.com/thoreinstein/keyconfig/internal/errors"
	"github.com/thoreinstein/keyconfig/internal/logging"
	"github.com/thoreinstein/keyconfig/pkg/fileutil"
	"github.com/thoreinstein/keyconfig/pkg/keyconfig"
	"github.com/thoreinstein/keyconfig/pkg/keyconfig/convert"
	"github.com/thoreinstein/keyconfig/pkg/source/chain"
	"github.com/thoreinstein/keyconfig/pkg/source/env"
	"github.com/thoreinstein/keyconfig/pkg/source/file"
)

// rawType requests values from sources without conversion.
var rawType = reflect.TypeFor[any]()

// settings is the layered store the commands read and write: environment
// variables (when an env prefix is configured) over the settings file.
type settings struct {
	file   *file.Source
	env    *env.Source
	store  *chain.Source
	logger *slog.Logger
}

// openSettings opens the settings file named by --file or the config.
func openSettings(cmd *cobra.Command) (*settings, error) {
	path, err := cliConfig.SettingsPath(settingsFile)
	if err != nil {
		return nil, errors.NewUserError(err, "Check the --file flag or settings_file in the config")
	}

	fsrc, err := file.Open(path)
	if err != nil {
		if errors.Is(err, file.ErrUnsupportedFormat) {
			return nil, errors.NewUserError(err, "Use a .yaml, .yml, .toml, or .json settings file")
		}
		return nil, errors.NewConfigError(err)
	}

	s := &settings{
		file:   fsrc,
		logger: logging.FromContext(cmd.Context()),
	}

	var members []keyconfig.Source
	if cliConfig.EnvPrefix != "" {
		s.env = env.New(cliConfig.EnvPrefix)
		members = append(members, s.env)
	}
	members = append(members, fsrc)
	s.store = chain.New(members...)

	s.logger.Debug("settings opened", "path", path, "sources", s.store.Name())
	return s, nil
}

// backupFile snapshots path before its first write in this process. A
// backup_retention of zero turns snapshots off.
func backupFile(path string) error {
	if cliConfig == nil || cliConfig.BackupRetention == 0 {
		return nil
	}

	mgr := backup.NewManager(backup.WithRetentionCount(cliConfig.BackupRetention))
	if err := backup.EnsureBackedUp(mgr, path); err != nil {
		return errors.NewSystemError(err, "Set backup_retention: 0 in the config to skip snapshots")
	}
	return nil
}

// lookup returns the raw value of key from the first layer holding it.
func (s *settings) lookup(key string) (any, bool, error) {
	v, found, err := s.store.GetValue(key, nil, rawType)
	if err != nil {
		return nil, found, errors.Wrapf(err, "reading %q", key)
	}
	if found {
		s.logger.Debug("value resolved", "key", key, "source", s.origin(key))
	}
	return v, found, nil
}

// origin names the layer holding key.
func (s *settings) origin(key string) string {
	if src := s.store.Source(key, nil, rawType); src != nil {
		return src.Name()
	}
	return ""
}

// keys returns the file's keys, sorted.
func (s *settings) keys() []string {
	return s.file.Keys()
}

// render formats a raw value for display. Scalars print as text; anything
// else is printed as YAML.
func render(v any) (string, error) {
	if s, err := convert.ToString(v); err == nil {
		return s, nil
	}
	data, err := fileutil.MarshalYAML(v)
	if err != nil {
		return "", errors.Wrap(err, "rendering value")
	}
	return strings.TrimSuffix(string(data), "\n"), nil
}

// mask hides secret looking string values when the config asks for it.
func mask(key string, v any) any {
	if cliConfig == nil || !cliConfig.MaskSecrets {
		return v
	}
	if s, ok := v.(string); ok {
		return logging.Redact(key, s)
	}
	return v
}

// printOut writes to the command's stdout unless --quiet is set.
func printOut(w io.Writer, s string) {
	if quiet {
		return
	}
	_, _ = io.WriteString(w, s)
}

package config

import (
	"io/fs"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/thoreinstein/keyconfig/internal/backup"
	"github.com/thoreinstein/keyconfig/internal/errors"
	"github.com/thoreinstein/keyconfig/internal/paths"
	"github.com/thoreinstein/keyconfig/pkg/fileutil"
	"github.com/thoreinstein/keyconfig/pkg/keyconfig"
	"github.com/thoreinstein/keyconfig/pkg/source/vipersrc"
)

// EnvPrefix prefixes environment overrides, e.g. KEYCONFIG_LOG_FORMAT.
const EnvPrefix = "KEYCONFIG"

// CurrentVersion is the only config file version understood.
const CurrentVersion = 1

// Config is the CLI configuration.
type Config struct {
	Version int `keyconfig:"version" default:"1"`
	// SettingsFile is the settings store the commands operate on. Empty
	// means paths.DefaultSettingsFile.
	SettingsFile string `keyconfig:"settings_file"`
	// EnvPrefix, when set, layers environment variables with this prefix
	// over the settings file for reads.
	EnvPrefix   string `keyconfig:"env_prefix"`
	LogFormat   string `keyconfig:"log_format" default:"text"`
	MaskSecrets bool   `keyconfig:"mask_secrets" default:"true"`
	// BackupRetention is how many snapshots of each settings file to keep.
	// Zero turns snapshots off.
	BackupRetention int `keyconfig:"backup_retention" default:"5"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Version:         CurrentVersion,
		LogFormat:       "text",
		MaskSecrets:     true,
		BackupRetention: backup.DefaultRetentionCount,
	}
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(paths.ConfigDir())
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	}
	return v
}

// Load reads the CLI configuration. An empty path searches ConfigDir and
// falls back to defaults when nothing is found; an explicit path must
// exist. The result is validated.
func Load(path string, logger *slog.Logger) (*Config, error) {
	v := newViper(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && path == "":
		case errors.Is(err, fs.ErrNotExist) && path == "":
		case errors.As(err, &notFound), errors.Is(err, fs.ErrNotExist):
			return nil, errors.Wrapf(err, "config file not found at %s", path)
		default:
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	src := vipersrc.New(v, vipersrc.WithReadOnly(), vipersrc.WithName("config"))
	cfg, err := keyconfig.New[Config](keyconfig.WithLogger(logger)).Load(src)
	if err != nil {
		return nil, errors.Wrap(err, "binding config")
	}

	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "validating config")
	}
	return cfg, nil
}

// Save writes cfg to path as YAML, creating parent directories.
func Save(path string, cfg *Config) error {
	if err := Validate(cfg); err != nil {
		return errors.Wrap(err, "validating config")
	}
	if err := fileutil.EnsureParent(path); err != nil {
		return err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	src := vipersrc.New(v, vipersrc.WithPersist(), vipersrc.WithName("config"))
	return errors.Wrap(keyconfig.Save(src, cfg), "writing config")
}

// SettingsPath resolves the settings store: override, then SettingsFile,
// then paths.DefaultSettingsFile. A leading "~" is expanded.
func (c *Config) SettingsPath(override string) (string, error) {
	switch {
	case override != "":
		return paths.ExpandHome(override)
	case c != nil && c.SettingsFile != "":
		return paths.ExpandHome(c.SettingsFile)
	default:
		return paths.DefaultSettingsFile(), nil
	}
}

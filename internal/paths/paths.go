package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
)

// AppName names the per-application directories.
const AppName = "keyconfig"

// EnvConfigDir overrides ConfigDir when set.
const EnvConfigDir = "KEYCONFIG_CONFIG_DIR"

const (
	configFileName   = "config.yaml"
	settingsFileName = "settings.yaml"
	backupDirName    = "backups"
)

// DefaultDirPerm is used for directories created by EnsureDir.
const DefaultDirPerm = 0o700

// ErrHomeDirNotFound indicates the user's home directory could not be
// determined.
var ErrHomeDirNotFound = errors.New("home directory not found")

// EnsureDir creates path and its parents. A zero perm means DefaultDirPerm.
// Existing directories are left untouched.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return errors.Wrapf(os.MkdirAll(path, perm), "creating %s", path)
}

// ResolveHome returns the user's home directory.
func ResolveHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(ErrHomeDirNotFound, err.Error())
	}
	return home, nil
}

// ExpandHome replaces a leading "~" in path with the home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := ResolveHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// ConfigHome returns the XDG config home directory.
func ConfigHome() string {
	return xdg.ConfigHome
}

// ConfigDir returns the keyconfig configuration directory.
func ConfigDir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir
	}
	return filepath.Join(ConfigHome(), AppName)
}

// ConfigFile returns the path of the CLI's own config file.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), configFileName)
}

// DefaultSettingsFile returns the settings store used when neither a flag
// nor the CLI config names one.
func DefaultSettingsFile() string {
	return filepath.Join(ConfigDir(), settingsFileName)
}

// BackupDir returns the root directory for settings file snapshots.
func BackupDir() string {
	return filepath.Join(ConfigDir(), backupDirName)
}

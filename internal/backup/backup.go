package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/thoreinstein/keyconfig/cmd"
	"github.com/thoreinstein/keyconfig/internal/errors"
	"github.com/thoreinstein/keyconfig/internal/paths"
	"github.com/thoreinstein/keyconfig/pkg/fileutil"
)

const manifestName = "manifest.json"

// Manager handles snapshot creation, restoration, and pruning.
type Manager struct {
	rootDir        string
	retentionCount int
	now            func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithBackupDir sets the root backup directory.
func WithBackupDir(dir string) Option {
	return func(m *Manager) {
		m.rootDir = dir
	}
}

// WithRetentionCount sets the number of snapshots kept per settings file.
// Snapshot prunes down to it.
func WithRetentionCount(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.retentionCount = n
		}
	}
}

// withClock replaces time.Now in tests.
func withClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a new backup Manager with the given options.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		rootDir:        paths.BackupDir(),
		retentionCount: DefaultRetentionCount,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Snapshot copies the settings file at path into a new snapshot and prunes
// older ones past the retention count. A missing file returns
// ErrNothingToBackUp.
func (m *Manager) Snapshot(path string) (*Manifest, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s", path)
	}

	info, err := os.Stat(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrapf(ErrNothingToBackUp, "%s does not exist", abs)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "stat %s", abs)
	}

	data, err := fileutil.ReadFileWithLimit(abs)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", abs)
	}

	created := m.now().UTC()
	manifest := &Manifest{
		Version:      ManifestVersion,
		CreatedAt:    created,
		OriginalPath: abs,
		FileName:     filepath.Base(abs),
		SHA256Hash:   hashBytes(data),
		Mode:         info.Mode().Perm(),
		Size:         int64(len(data)),
		ToolVersion:  cmd.Version,
		ID:           created.Format(idFormat),
	}

	dir := m.snapshotDir(abs, manifest.ID)
	if err := paths.EnsureDir(dir, 0); err != nil {
		return nil, errors.Wrap(err, "creating backup directory")
	}
	// snapshots hold secrets as often as the settings file does
	if err := fileutil.AtomicWriteFile(filepath.Join(dir, manifest.FileName), data, fileutil.DefaultPerm); err != nil {
		os.RemoveAll(dir)
		return nil, errors.Wrap(err, "copying settings file")
	}
	if err := fileutil.AtomicWriteJSON(filepath.Join(dir, manifestName), manifest); err != nil {
		os.RemoveAll(dir)
		return nil, errors.Wrap(err, "writing manifest")
	}

	if err := m.Prune(abs, m.retentionCount); err != nil {
		return manifest, errors.Wrap(err, "pruning old backups")
	}
	return manifest, nil
}

// Restore replaces the settings file with snapshot id after verifying its
// hash. The current file, if any, is snapshotted first so the restore can
// itself be undone.
func (m *Manager) Restore(path, id string) (*Manifest, error) {
	if id == "" {
		return nil, errors.New("backup ID is required")
	}

	manifest, err := m.Get(path, id)
	if err != nil {
		return nil, err
	}

	data, err := fileutil.ReadFileWithLimit(filepath.Join(m.snapshotDir(manifest.OriginalPath, id), manifest.FileName))
	if err != nil {
		return nil, errors.Wrapf(err, "reading backup %s", id)
	}
	if hashBytes(data) != manifest.SHA256Hash {
		return nil, errors.Wrapf(ErrBackupCorrupted, "backup %s hash mismatch", id)
	}

	if _, err := m.Snapshot(manifest.OriginalPath); err != nil && !errors.Is(err, ErrNothingToBackUp) {
		return nil, errors.Wrap(err, "saving current settings before restore")
	}

	if err := fileutil.EnsureParent(manifest.OriginalPath); err != nil {
		return nil, err
	}
	if err := fileutil.AtomicWriteFile(manifest.OriginalPath, data, manifest.Mode); err != nil {
		return nil, errors.Wrapf(err, "restoring %s", manifest.OriginalPath)
	}
	return manifest, nil
}

// List returns the snapshots of the settings file at path, newest first.
func (m *Manager) List(path string) ([]Manifest, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s", path)
	}

	entries, err := os.ReadDir(m.fileDir(abs))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoBackupsFound
		}
		return nil, errors.Wrap(err, "reading backup directory")
	}

	manifests := make([]Manifest, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		manifest, err := m.Get(abs, entry.Name())
		if err != nil {
			// Skip invalid backup directories
			continue
		}
		manifests = append(manifests, *manifest)
	}

	if len(manifests) == 0 {
		return nil, ErrNoBackupsFound
	}

	slices.SortFunc(manifests, func(a, b Manifest) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return manifests, nil
}

// Prune removes all but the newest keep snapshots of the settings file.
func (m *Manager) Prune(path string, keep int) error {
	if keep < 0 {
		return errors.New("keep must be non-negative")
	}

	manifests, err := m.List(path)
	if err != nil {
		if errors.Is(err, ErrNoBackupsFound) {
			return nil
		}
		return err
	}

	for _, old := range manifests[min(keep, len(manifests)):] {
		if err := os.RemoveAll(m.snapshotDir(old.OriginalPath, old.ID)); err != nil {
			return errors.Wrapf(err, "removing backup %s", old.ID)
		}
	}
	return nil
}

// Get returns the manifest of snapshot id.
func (m *Manager) Get(path, id string) (*Manifest, error) {
	// IDs name directories; reject anything that would escape them
	if id == "" || id != filepath.Base(id) || strings.HasPrefix(id, ".") {
		return nil, errors.Wrapf(ErrNoBackupsFound, "backup %q not found", id)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s", path)
	}

	data, err := fileutil.ReadFileWithLimit(filepath.Join(m.snapshotDir(abs, id), manifestName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(ErrNoBackupsFound, "backup %q not found", id)
		}
		return nil, errors.Wrap(err, "reading manifest")
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, errors.Wrap(err, "parsing manifest")
	}

	manifest.ID = id
	return &manifest, nil
}

// fileDir holds the snapshots of one settings file. The name joins the
// file's base name with a hash of its absolute path so that equally named
// files in different directories do not share snapshots.
func (m *Manager) fileDir(abs string) string {
	sum := sha256.Sum256([]byte(abs))
	return filepath.Join(m.rootDir, filepath.Base(abs)+"-"+hex.EncodeToString(sum[:6]))
}

func (m *Manager) snapshotDir(abs, id string) string {
	return filepath.Join(m.fileDir(abs), id)
}

func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

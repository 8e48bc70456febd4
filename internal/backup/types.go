package backup

import (
	"io/fs"
	"time"

	"github.com/thoreinstein/keyconfig/internal/errors"
)

// Manifest format version for forward compatibility.
const ManifestVersion = 1

// DefaultRetentionCount is the default number of snapshots kept per
// settings file.
const DefaultRetentionCount = 5

// idFormat names snapshot directories. Sub-second precision keeps IDs of
// back to back snapshots distinct.
const idFormat = "20060102T150405.000000"

// Sentinel errors for backup operations.
var (
	// ErrNoBackupsFound indicates no snapshots exist for the settings file.
	ErrNoBackupsFound = errors.New("no backups found")

	// ErrBackupCorrupted indicates the snapshot no longer matches the hash
	// recorded in its manifest.
	ErrBackupCorrupted = errors.New("backup corrupted")

	// ErrNothingToBackUp indicates the settings file does not exist yet.
	ErrNothingToBackUp = errors.New("nothing to back up")
)

// Manifest describes one snapshot. It is stored as manifest.json next to
// the copied file.
type Manifest struct {
	// Version is the manifest format version.
	Version int `json:"version"`

	// CreatedAt is when the snapshot was taken.
	CreatedAt time.Time `json:"created_at"`

	// OriginalPath is the absolute path of the settings file.
	OriginalPath string `json:"original_path"`

	// FileName is the name of the copy inside the snapshot directory.
	FileName string `json:"file_name"`

	// SHA256Hash is the hex-encoded SHA256 hash of the copy.
	SHA256Hash string `json:"sha256_hash"`

	// Mode is the settings file's permission bits.
	Mode fs.FileMode `json:"mode"`

	// Size is the copy's length in bytes.
	Size int64 `json:"size"`

	// ToolVersion is the keyconfig version that took the snapshot.
	ToolVersion string `json:"keyconfig_version"`

	// ID is the snapshot directory name. It is populated when loading
	// from disk.
	ID string `json:"-"`
}

// Package fileutil writes and reads configuration files safely.
//
// Writes go through a temporary file in the target directory followed by a
// rename, so a crash mid-write leaves the previous file intact. Reads are
// capped at MaxFileSize.
package fileutil

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/keyconfig/internal/errors"
)

// DefaultPerm is used for files written without an explicit mode. Config
// files may hold credentials, so they are private to the owner.
const DefaultPerm os.FileMode = 0o600

// DirPerm is used for parent directories created by EnsureParent.
const DirPerm os.FileMode = 0o700

// AtomicWriteFile replaces path with data using a temp file and rename.
// The parent directory must exist.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".keyconfig-*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}

	tmpName := tmp.Name()
	renamed := false
	defer func() {
		if !renamed {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "writing temp file")
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return errors.Wrap(err, "setting file permissions")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "syncing temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}

	if err := os.Rename(tmpName, path); err != nil {
		return errors.Wrap(err, "renaming temp file")
	}
	renamed = true
	return nil
}

// EnsureParent creates the parent directory of path with DirPerm.
func EnsureParent(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), DirPerm); err != nil {
		return errors.Wrapf(err, "creating directory for %s", path)
	}
	return nil
}

// MarshalYAML encodes v as YAML with two space indentation.
func MarshalYAML(v any) (data []byte, err error) {
	// yaml.v3 panics on some unmarshalable values.
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("marshaling YAML: %v", r)
		}
	}()

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, errors.Wrap(err, "marshaling YAML")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "marshaling YAML")
	}
	return buf.Bytes(), nil
}

// MarshalJSON encodes v as indented JSON with a trailing newline.
func MarshalJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "marshaling JSON")
	}
	return append(data, '\n'), nil
}

// MarshalTOML encodes v as TOML.
func MarshalTOML(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(v); err != nil {
		return nil, errors.Wrap(err, "marshaling TOML")
	}
	return buf.Bytes(), nil
}

// AtomicWriteYAML writes v as YAML to path with DefaultPerm.
func AtomicWriteYAML(path string, v any) error {
	return writeEncoded(path, v, MarshalYAML)
}

// AtomicWriteJSON writes v as indented JSON to path with DefaultPerm.
func AtomicWriteJSON(path string, v any) error {
	return writeEncoded(path, v, MarshalJSON)
}

// AtomicWriteTOML writes v as TOML to path with DefaultPerm.
func AtomicWriteTOML(path string, v any) error {
	return writeEncoded(path, v, MarshalTOML)
}

func writeEncoded(path string, v any, marshal func(any) ([]byte, error)) error {
	data, err := marshal(v)
	if err != nil {
		return err
	}
	return AtomicWriteFile(path, data, DefaultPerm)
}

package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/keyconfig/internal/errors"
)

func TestBackup_SetSnapshotsPreviousFile(t *testing.T) {
	dir := isolate(t)
	path := settingsIn(dir)
	writeFile(t, path, "host: before\n")

	_, _, err := execute(t, "set", "host", "after", "-f", path)
	require.NoError(t, err)

	out, _, err := execute(t, "backup", "list", "--json", "-f", path)
	require.NoError(t, err)

	var backups []backupInfoOutput
	require.NoError(t, json.Unmarshal([]byte(out), &backups))
	require.Len(t, backups, 1)
	assert.Equal(t, int64(len("host: before\n")), backups[0].Size)

	out, _, err = execute(t, "backup", "restore", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ restored "+path)

	out, _, err = execute(t, "get", "host", "-f", path)
	require.NoError(t, err)
	assert.Equal(t, "before\n", out)

	// the restore saved "after" first
	out, _, err = execute(t, "backup", "list", "--json", "-f", path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &backups))
	assert.Len(t, backups, 2)
}

func TestBackup_NewFileHasNoSnapshot(t *testing.T) {
	dir := isolate(t)

	_, _, err := execute(t, "set", "host", "a", "-f", settingsIn(dir))
	require.NoError(t, err)

	out, _, err := execute(t, "backup", "list", "-f", settingsIn(dir))
	require.NoError(t, err)
	assert.Contains(t, out, "(no backups available)")

	_, _, err = execute(t, "backup", "restore", "-f", settingsIn(dir))
	require.Error(t, err)
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))
}

func TestBackup_Disabled(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "config.yaml"), "version: 1\nbackup_retention: 0\n")
	writeFile(t, settingsIn(dir), "host: a\n")

	_, _, err := execute(t, "unset", "host", "-f", settingsIn(dir))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "backups"))
	assert.True(t, os.IsNotExist(err), "no snapshots should be written")
}

func TestBackup_ListTable(t *testing.T) {
	dir := isolate(t)
	path := settingsIn(dir)
	writeFile(t, path, "port: 1\n")

	_, _, err := execute(t, "set", "port", "2", "-t", "int", "-f", path)
	require.NoError(t, err)

	out, _, err := execute(t, "backup", "list", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Settings: "+path)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "VERSION")
}

func TestBackup_RestoreUnknownID(t *testing.T) {
	dir := isolate(t)

	_, _, err := execute(t, "backup", "restore", "20990101T000000.000000", "-f", settingsIn(dir))
	require.Error(t, err)
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))
	assert.Contains(t, errors.Suggestion(err), "keyconfig backup list")
}

func TestBackup_Prune(t *testing.T) {
	dir := isolate(t)
	path := settingsIn(dir)
	writeFile(t, path, "n: 0\n")

	// each restore snapshots the current file
	for range 3 {
		_, _, err := execute(t, "set", "n", "1", "-f", path)
		require.NoError(t, err)
		_, _, err = execute(t, "backup", "restore", "-f", path)
		require.NoError(t, err)
	}

	out, _, err := execute(t, "backup", "prune", "--keep", "1", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "kept at most 1")

	out, _, err = execute(t, "backup", "list", "--json", "-f", path)
	require.NoError(t, err)
	var backups []backupInfoOutput
	require.NoError(t, json.Unmarshal([]byte(out), &backups))
	assert.Len(t, backups, 1)

	_, _, err = execute(t, "backup", "prune", "--keep", "-1", "-f", path)
	require.Error(t, err)
}

func TestEdit_Snapshots(t *testing.T) {
	dir := isolate(t)
	path := settingsIn(dir)
	writeFile(t, path, "host: a\n")
	fakeEditor(t, ">", "host: b")

	_, _, err := execute(t, "edit", "-f", path)
	require.NoError(t, err)

	_, _, err = execute(t, "backup", "restore", "-f", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "host: a\n", string(data))
}

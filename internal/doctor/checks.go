package doctor

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"runtime"
	"slices"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/thoreinstein/keyconfig/internal/config"
	"github.com/thoreinstein/keyconfig/internal/errors"
	"github.com/thoreinstein/keyconfig/internal/logging"
	"github.com/thoreinstein/keyconfig/internal/paths"
	"github.com/thoreinstein/keyconfig/pkg/fileutil"
	"github.com/thoreinstein/keyconfig/pkg/source/env"
	"github.com/thoreinstein/keyconfig/pkg/source/file"
)

// ConfigCheck loads and validates the keyconfig config file.
type ConfigCheck struct {
	// Path is the config file. Empty checks paths.ConfigFile.
	Path string
}

var _ Check = (*ConfigCheck)(nil)

// Name returns the unique identifier for this check.
func (c *ConfigCheck) Name() string {
	return "config-file"
}

// Category returns the grouping for this check.
func (c *ConfigCheck) Category() string {
	return "config"
}

// Run executes the config check.
func (c *ConfigCheck) Run(ctx context.Context) *CheckResult {
	path := c.Path
	if path == "" {
		path = paths.ConfigFile()
	}
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"path": path},
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		result.Status = SeverityInfo
		result.Message = "no config file, defaults in use"
		result.FixHint = "Run: keyconfig init"
		return result
	}

	if _, err := config.Load(path, logging.FromContext(ctx)); err != nil {
		result.Status = SeverityError
		result.Message = err.Error()
		result.FixHint = "Run: keyconfig init --force, or fix " + path
		return result
	}

	result.Status = SeverityPass
	result.Message = "config file is valid"
	return result
}

// SettingsSyntaxCheck decodes the settings file and reports the position of
// syntax errors.
type SettingsSyntaxCheck struct {
	Path string
}

var _ Check = (*SettingsSyntaxCheck)(nil)

// Name returns the unique identifier for this check.
func (c *SettingsSyntaxCheck) Name() string {
	return "settings-syntax"
}

// Category returns the grouping for this check.
func (c *SettingsSyntaxCheck) Category() string {
	return "settings"
}

// Run executes the syntax check.
func (c *SettingsSyntaxCheck) Run(_ context.Context) *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"path": c.Path},
	}

	data, err := fileutil.ReadFileWithLimit(c.Path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		result.Status = SeverityInfo
		result.Message = "settings file does not exist yet"
		result.FixHint = "Run: keyconfig set <key> <value>"
		return result
	case err != nil:
		result.Status = SeverityError
		result.Message = err.Error()
		return result
	}

	src, err := file.Open(c.Path, file.WithReadOnly())
	if err != nil {
		result.Status = SeverityError
		result.Message = describeParseError(err, data)
		if errors.Is(err, file.ErrUnsupportedFormat) {
			result.FixHint = "Use a .yaml, .yml, .toml, or .json settings file"
		}
		return result
	}

	keys := src.Keys()
	result.Status = SeverityPass
	result.Message = fmt.Sprintf("%s file with %d keys", src.Format(), len(keys))
	result.Details["keys"] = len(keys)
	return result
}

// describeParseError adds line and column to decoder errors that carry an
// offset or position.
func describeParseError(err error, data []byte) string {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col := offsetToLineCol(data, int(syntaxErr.Offset))
		return fmt.Sprintf("JSON syntax error at line %d, column %d: %s", line, col, syntaxErr.Error())
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		line, col := offsetToLineCol(data, int(typeErr.Offset))
		return fmt.Sprintf("JSON type error at line %d, column %d: %s", line, col, typeErr.Error())
	}

	var decodeErr *toml.DecodeError
	if errors.As(err, &decodeErr) {
		row, col := decodeErr.Position()
		return fmt.Sprintf("TOML syntax error at line %d, column %d: %s", row, col, decodeErr.Error())
	}

	// yaml.v3 errors already name the line
	return err.Error()
}

// offsetToLineCol converts a byte offset to line and column numbers.
// Lines and columns are 1-indexed.
func offsetToLineCol(data []byte, offset int) (line, col int) {
	offset = min(max(offset, 0), len(data))

	line = 1
	lineStart := 0
	for i := range offset {
		if data[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}

	return line, offset - lineStart + 1
}

// PermissionCheck flags a settings file that other users can modify, or
// can read while it holds secret looking values.
type PermissionCheck struct {
	Path string
	PermissionFixer
}

var (
	_ Check = (*PermissionCheck)(nil)
	_ Fixer = (*PermissionCheck)(nil)
)

// Name returns the unique identifier for this check.
func (c *PermissionCheck) Name() string {
	return "settings-permissions"
}

// Category returns the grouping for this check.
func (c *PermissionCheck) Category() string {
	return "settings"
}

// Run executes the permission check.
func (c *PermissionCheck) Run(_ context.Context) *CheckResult {
	c.setIssues(nil)
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"path": c.Path},
	}

	// Unix permission bits do not apply on Windows
	if runtime.GOOS == "windows" {
		result.Status = SeverityPass
		result.Message = "permission checks skipped on windows"
		return result
	}

	info, err := os.Stat(c.Path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		result.Status = SeverityPass
		result.Message = "settings file does not exist yet"
		return result
	case err != nil:
		result.Status = SeverityError
		result.Message = fmt.Sprintf("cannot stat settings file: %v", err)
		return result
	}

	perm := info.Mode().Perm()
	result.Details["permissions"] = formatPermissions(perm)

	var issues []pathIssue
	if perm&0o022 != 0 {
		issues = append(issues, pathIssue{
			Path:    c.Path,
			Problem: fmt.Sprintf("writable by group or others (%s)", formatPermissions(perm)),
		})
	} else if secrets := secretKeys(c.Path); perm&0o044 != 0 && len(secrets) > 0 {
		result.Details["secret_keys"] = secrets
		issues = append(issues, pathIssue{
			Path: c.Path,
			Problem: fmt.Sprintf("readable by group or others (%s) and holds %s",
				formatPermissions(perm), strings.Join(secrets, ", ")),
		})
	}

	if len(issues) == 0 {
		result.Status = SeverityPass
		result.Message = fmt.Sprintf("permissions %s are safe", formatPermissions(perm))
		return result
	}

	c.setIssues(issues)
	result.Status = SeverityWarning
	result.Message = issues[0].Problem
	result.Fixable = true
	result.FixHint = fmt.Sprintf("chmod %o %s, or run: keyconfig doctor --fix", fileutil.DefaultPerm, c.Path)
	return result
}

// secretKeys returns the keys in path whose name or value looks secret.
func secretKeys(path string) []string {
	src, err := file.Open(path, file.WithReadOnly())
	if err != nil {
		return nil
	}

	var out []string
	for key, v := range src.Values() {
		s, _ := v.(string)
		if logging.ShouldMask(key) || logging.ContainsTokenPrefix(s) {
			out = append(out, key)
		}
	}
	slices.Sort(out)
	return out
}

// formatPermissions returns a human-readable permission string (e.g., "0644").
func formatPermissions(mode os.FileMode) string {
	return fmt.Sprintf("%04o", mode.Perm())
}

// ShadowCheck lists settings file keys hidden by environment variables.
type ShadowCheck struct {
	File *file.Source
	// Env is nil when no env prefix is configured.
	Env *env.Source
}

var _ Check = (*ShadowCheck)(nil)

// Name returns the unique identifier for this check.
func (c *ShadowCheck) Name() string {
	return "env-shadowing"
}

// Category returns the grouping for this check.
func (c *ShadowCheck) Category() string {
	return "settings"
}

// Run executes the shadowing check.
func (c *ShadowCheck) Run(_ context.Context) *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
	}

	if c.Env == nil || c.File == nil {
		result.Status = SeverityPass
		result.Message = "no environment layer configured"
		return result
	}

	shadowed := map[string]any{}
	for _, key := range c.File.Keys() {
		if _, found, _ := c.Env.GetValue(key, nil, reflect.TypeFor[string]()); found {
			shadowed[key] = c.Env.VarName(key)
		}
	}

	if len(shadowed) == 0 {
		result.Status = SeverityPass
		result.Message = fmt.Sprintf("no settings overridden by %s variables", c.Env.Name())
		return result
	}

	result.Status = SeverityInfo
	result.Message = fmt.Sprintf("%d setting(s) overridden by environment variables", len(shadowed))
	result.Details = shadowed
	return result
}

package commands

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/keyconfig/internal/cli/prompt"
	"github.com/thoreinstein/keyconfig/internal/config"
	"github.com/thoreinstein/keyconfig/internal/errors"
	"github.com/thoreinstein/keyconfig/internal/logging"
	"github.com/thoreinstein/keyconfig/pkg/source/chain"
	"github.com/thoreinstein/keyconfig/pkg/source/file"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// settingsIn returns a settings file path inside dir.
func settingsIn(dir string) string {
	return filepath.Join(dir, "settings.yaml")
}

func TestSetGet_RoundTrip(t *testing.T) {
	dir := isolate(t)
	path := settingsIn(dir)

	tests := []struct {
		key, value, typ string
		want            string
	}{
		{"Host", "example.com", "string", "example.com"},
		{"Port", "8080", "int", "8080"},
		{"Debug", "1", "bool", "true"},
		{"Timeout", "90s", "duration", "1m30s"},
		{"Ratio", "0.25", "float", "0.25"},
		{"Tags", "a, b,c", "list", "- a\n- b\n- c"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			out, _, err := execute(t, "set", tt.key, tt.value, "--type", tt.typ, "--file", path)
			require.NoError(t, err)
			assert.Contains(t, out, tt.key+" updated")

			out, _, err = execute(t, "get", tt.key, "-f", path)
			require.NoError(t, err)
			assert.Equal(t, tt.want+"\n", out)
		})
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Port: 8080")
}

func TestSet_Errors(t *testing.T) {
	dir := isolate(t)
	path := settingsIn(dir)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unparsable value", []string{"set", "Port", "eighty", "--type", "int"}, "Pass a value that parses as int"},
		{"unknown type", []string{"set", "Port", "1", "--type", "complex"}, "keyconfig set --help"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, append(tt.args, "-f", path)...)
			require.Error(t, err)
			assert.Equal(t, errors.ExitUser, errors.ExitCode(err))
			assert.Contains(t, errors.Suggestion(err), tt.want)
		})
	}

	_, err := os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist, "failed set must not create the file")
}

func TestSet_UnsupportedFormat(t *testing.T) {
	dir := isolate(t)

	_, _, err := execute(t, "set", "Host", "x", "-f", filepath.Join(dir, "settings.ini"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, file.ErrUnsupportedFormat))
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))
}

func TestGet_Missing(t *testing.T) {
	dir := isolate(t)

	_, _, err := execute(t, "get", "Nope", "-f", settingsIn(dir))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrKeyNotFound))
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))
}

func TestGet_NestedKey(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "settings.toml")
	writeFile(t, path, "[server]\nhost = \"db.internal\"\nport = 5432\n")

	out, _, err := execute(t, "get", "server.port", "-f", path)
	require.NoError(t, err)
	assert.Equal(t, "5432\n", out)
}

func TestGet_EnvironmentOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := settingsIn(dir)
	writeFile(t, path, "Port: 8080\nHost: file.example\n")

	cfg := config.Default()
	cfg.EnvPrefix = "APP_"
	require.NoError(t, config.Save(filepath.Join(dir, "config.yaml"), cfg))
	t.Setenv("APP_PORT", "9090")

	out, _, err := execute(t, "get", "Port", "-f", path)
	require.NoError(t, err)
	assert.Equal(t, "9090\n", out)

	out, _, err = execute(t, "get", "Host", "-f", path)
	require.NoError(t, err)
	assert.Equal(t, "file.example\n", out)

	out, _, err = execute(t, "check", "Port", "Host", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Port (env:APP_)")
	assert.Contains(t, out, "✓ Host (file:settings.yaml)")
}

func TestGet_NoKeyWithoutTerminal(t *testing.T) {
	dir := isolate(t)

	_, _, err := execute(t, "get", "-f", settingsIn(dir))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no key given")
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))
}

func TestGet_Picker(t *testing.T) {
	origTerminal, origSelector := isTerminal, newSelector
	t.Cleanup(func() { isTerminal, newSelector = origTerminal, origSelector })

	dir := isolate(t)
	path := settingsIn(dir)
	writeFile(t, path, "Alpha: one\nBeta: two\nGamma: three\n")

	t.Run("fuzzy finder on a full terminal", func(t *testing.T) {
		isTerminal = func(any) bool { return true }
		newSelector = func(in io.Reader, out io.Writer) *prompt.Selector {
			return prompt.NewSelectorWithIO(in, out).WithFinder(
				func(slice any, _ func(int) string, _ ...fuzzyfinder.Option) (int, error) {
					assert.Equal(t, []string{"Alpha", "Beta", "Gamma"}, slice)
					return 2, nil
				})
		}

		out, _, err := execute(t, "get", "-f", path)
		require.NoError(t, err)
		assert.Equal(t, "three\n", out)
	})

	t.Run("aborted finder", func(t *testing.T) {
		isTerminal = func(any) bool { return true }
		newSelector = func(in io.Reader, out io.Writer) *prompt.Selector {
			return prompt.NewSelectorWithIO(in, out).WithFinder(
				func(any, func(int) string, ...fuzzyfinder.Option) (int, error) {
					return 0, fuzzyfinder.ErrAbort
				})
		}

		_, _, err := execute(t, "get", "-f", path)
		require.Error(t, err)
		assert.True(t, errors.Is(err, prompt.ErrSelectionCancelled))
	})

	t.Run("numbered prompt when stdout is redirected", func(t *testing.T) {
		// only stdin is a terminal
		isTerminal = func(v any) bool {
			_, ok := v.(*strings.Reader)
			return ok
		}
		newSelector = origSelector

		resetFlags(t)
		var out, errOut strings.Builder
		rootCmd.SetOut(&out)
		rootCmd.SetErr(&errOut)
		rootCmd.SetIn(strings.NewReader("2\n"))
		rootCmd.SetArgs([]string{"get", "-f", path})

		require.NoError(t, rootCmd.ExecuteContext(t.Context()))
		assert.Equal(t, "two\n", out.String())
		assert.Contains(t, errOut.String(), "[2] Beta")
	})
}

func TestPreview(t *testing.T) {
	dir := isolate(t)
	path := settingsIn(dir)
	writeFile(t, path, "api_token: supersecretvalue\nHost: example.com\n")

	fsrc, err := file.Open(path)
	require.NoError(t, err)

	cliConfig = config.Default()
	t.Cleanup(func() { cliConfig = nil })
	s := &settings{file: fsrc, store: chain.New(fsrc), logger: logging.ForTest(t)}

	got := preview(s, "api_token")
	assert.Contains(t, got, "****alue")
	assert.NotContains(t, got, "supersecret")
	assert.Contains(t, got, "source: file:settings.yaml")

	assert.Contains(t, preview(s, "Host"), "example.com")
	assert.Equal(t, "(unset)", preview(s, "Missing"))
}

func TestList(t *testing.T) {
	dir := isolate(t)
	path := settingsIn(dir)
	writeFile(t, path, "Host: example.com\napi_token: supersecretvalue\nserver:\n  port: 5432\n")

	out, _, err := execute(t, "list", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Host: example.com\n")
	assert.Contains(t, out, "server.port: 5432\n")
	assert.Contains(t, out, "****alue")
	assert.NotContains(t, out, "supersecret")

	out, _, err = execute(t, "list", "--reveal", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "api_token: supersecretvalue")
}

func TestList_MaskingDisabledByConfig(t *testing.T) {
	dir := isolate(t)
	path := settingsIn(dir)
	writeFile(t, path, "password: hunter2hunter2\n")
	writeFile(t, filepath.Join(dir, "config.yaml"), "version: 1\nmask_secrets: false\n")

	out, _, err := execute(t, "list", "-f", path)
	require.NoError(t, err)
	assert.Equal(t, "password: hunter2hunter2\n", out)
}

func TestList_Empty(t *testing.T) {
	dir := isolate(t)

	out, _, err := execute(t, "list", "-f", settingsIn(dir))
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCheck(t *testing.T) {
	dir := isolate(t)
	path := settingsIn(dir)
	writeFile(t, path, "Host: example.com\nPort: 8080\n")

	out, _, err := execute(t, "check", "Host", "Port", "-f", path)
	require.NoError(t, err)
	assert.Equal(t, "✓ Host (file:settings.yaml)\n✓ Port (file:settings.yaml)\n", out)

	out, _, err = execute(t, "check", "Host", "User", "Token", "-f", path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrMissingKeys))
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))
	assert.Contains(t, err.Error(), "User, Token")
	assert.Contains(t, out, "✗ User missing")

	out, _, err = execute(t, "check", "User", "-q", "-f", path)
	require.Error(t, err)
	assert.Empty(t, out, "--quiet suppresses the report")
}

func TestUnset(t *testing.T) {
	dir := isolate(t)
	path := settingsIn(dir)
	writeFile(t, path, "Host: example.com\nPort: 8080\nserver:\n  port: 1\n")

	out, _, err := execute(t, "unset", "Port", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Port removed")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "Port")

	_, _, err = execute(t, "unset", "Port", "-f", path)
	assert.True(t, errors.Is(err, errors.ErrKeyNotFound))

	out, _, err = execute(t, "rm", "server.port", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "server.port removed")

	_, _, err = execute(t, "get", "server.port", "-f", path)
	assert.True(t, errors.Is(err, errors.ErrKeyNotFound))
}

func TestPath(t *testing.T) {
	dir := isolate(t)

	out, _, err := execute(t, "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "settings.yaml")+"\n", out)

	out, _, err = execute(t, "path", "-f", "/tmp/other.toml")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/other.toml\n", out)

	out, _, err = execute(t, "path", "--config")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.yaml")+"\n", out)

	out, _, err = execute(t, "path", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "config:   "+filepath.Join(dir, "config.yaml"))
	assert.Contains(t, out, "settings: "+filepath.Join(dir, "settings.yaml"))
}

func TestPath_FromConfig(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "config.yaml"), "version: 1\nsettings_file: /srv/app/settings.json\n")

	out, _, err := execute(t, "path")
	require.NoError(t, err)
	assert.Equal(t, "/srv/app/settings.json\n", out)
}

func TestInit(t *testing.T) {
	dir := isolate(t)
	configPath := filepath.Join(dir, "config.yaml")

	out, _, err := execute(t, "init", "--settings-file", "/srv/app/settings.toml", "--env-prefix", "APP_")
	require.NoError(t, err)
	assert.Contains(t, out, "Created "+configPath)

	cfg, err := config.Load(configPath, logging.ForTest(t))
	require.NoError(t, err)
	assert.Equal(t, "/srv/app/settings.toml", cfg.SettingsFile)
	assert.Equal(t, "APP_", cfg.EnvPrefix)
	assert.True(t, cfg.MaskSecrets)

	out, _, err = execute(t, "init", "--env-prefix", "OTHER_")
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")

	_, _, err = execute(t, "init", "--force", "--no-mask")
	require.NoError(t, err)
	cfg, err = config.Load(configPath, logging.ForTest(t))
	require.NoError(t, err)
	assert.False(t, cfg.MaskSecrets)
	assert.Empty(t, cfg.EnvPrefix)
}

func TestInit_InvalidSettingsFile(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "init", "--settings-file", "settings.ini")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))
}

func TestVersion(t *testing.T) {
	isolate(t)

	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "keyconfig version dev")
	assert.Contains(t, out, "commit: none")
	assert.Contains(t, out, "built:  unknown")
}

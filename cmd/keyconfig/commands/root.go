// Package commands implements the CLI commands for keyconfig.
package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/keyconfig/cmd"
	"github.com/thoreinstein/keyconfig/internal/config"
	"github.com/thoreinstein/keyconfig/internal/errors"
	"github.com/thoreinstein/keyconfig/internal/logging"
)

// settingsFile holds the value of the --file flag.
var settingsFile string

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the value of the --log-format flag.
var logFormat string

// logFile holds the path to the log file.
var logFile string

// cliConfig is the configuration loaded before each command runs.
var cliConfig *config.Config

func init() {
	rootCmd.PersistentFlags().StringVarP(&settingsFile, "file", "f", "",
		"settings file to operate on (default from config, then "+
			"$XDG_CONFIG_HOME/keyconfig/settings.yaml)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")

	rootCmd.Version = cmd.Short()
	rootCmd.SetVersionTemplate("keyconfig version {{.Version}}\n")

	// Silence errors and usage so we can control error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

var rootCmd = &cobra.Command{
	Use:   "keyconfig",
	Short: "Read and write key/value settings files",
	Long: `keyconfig reads and writes flat key/value settings stored in YAML,
TOML, or JSON files. Environment variables can be layered over the file
for reads by setting env_prefix in the keyconfig config file.`,
	Example: `  # Show a value
  keyconfig get Port

  # Pick a key interactively
  keyconfig get

  # Store a typed value
  keyconfig set Timeout 30s --type duration

  # Verify required keys before deploying
  keyconfig check Host Port

  See Also: keyconfig init, keyconfig path`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		return loadConfig(cmd)
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		err := errors.New("cannot use --quiet and --verbose together")
		return errors.NewUserError(err, "Pass only one of -q and -v")
	}

	format := logging.Format(logFormat)
	switch format {
	case logging.FormatText, logging.FormatJSON:
	default:
		err := errors.Newf("unknown log format %q", logFormat)
		return errors.NewUserError(err, "Use --log-format text or --log-format json")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity

		// CLI flags take precedence, but if not set, check env var
		if v == 0 {
			if val, ok := os.LookupEnv("KEYCONFIG_DEBUG"); ok {
				switch val {
				case "1", "true":
					v = 2
				case "2":
					v = 3
				}
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	handlers := []slog.Handler{
		logging.New(logging.Config{Level: level, Format: format, Output: cmd.ErrOrStderr()}).Handler(),
	}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return errors.NewUserError(err, "failed to open log file")
		}
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{
			Level: level,
		}))
	}

	var handler slog.Handler
	if len(handlers) > 1 {
		handler = logging.NewMultiHandler(handlers...)
	} else {
		handler = handlers[0]
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

// loadConfig reads the CLI config. The config file's log_format applies
// when --log-format was not given.
func loadConfig(cmd *cobra.Command) error {
	// Skip for commands that must work with a broken config
	switch cmd.Name() {
	case "help", "version", "init":
		cliConfig = config.Default()
		return nil
	}

	logger := logging.FromContext(cmd.Context())
	cfg, err := config.Load("", logger)
	switch {
	case err != nil && (cmd.Name() == "doctor" || cmd.Name() == "edit" && editConfig):
		// these report or repair the broken config themselves
		logger.Debug("using default config", "error", err)
		cliConfig = config.Default()
		return nil
	case err != nil:
		return errors.NewConfigError(err)
	}
	cliConfig = cfg

	if !cmd.Flags().Changed("log-format") && cfg.LogFormat != logFormat {
		logFormat = cfg.LogFormat
		return setupLogging(cmd)
	}
	return nil
}

// Execute runs the root command. Errors are returned unwrapped so main can
// print them as is.
func Execute() error {
	return rootCmd.Execute()
}

package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/keyconfig/internal/doctor"
	"github.com/thoreinstein/keyconfig/internal/errors"
	"github.com/thoreinstein/keyconfig/internal/paths"
	"github.com/thoreinstein/keyconfig/pkg/source/env"
	"github.com/thoreinstein/keyconfig/pkg/source/file"
)

var (
	doctorJSON bool
	doctorAll  bool
	doctorFix  bool
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false,
		"output results as JSON")
	doctorCmd.Flags().BoolVar(&doctorAll, "all", false,
		"show every check, including passed ones")
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false,
		"repair fixable issues, then check again")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose configuration issues",
	Long: `Run diagnostic checks on the keyconfig config file and the settings file.

Validates the config, reports settings file syntax errors with their line
and column, flags settings files that other users can read or modify, and
lists settings hidden by environment variables.

Output modes:
  (default)   Show errors and warnings
  --all       Show all checks including passed ones
  --json      Machine-readable JSON output
  -q          No output, exit code only

Exit codes:
  0 - All checks passed (no errors or warnings)
  1 - Warnings present, no errors
  2 - Errors present`,
	PreRunE: validateDoctorFlags,
	RunE:    runDoctor,
}

// validateDoctorFlags ensures output flags are mutually exclusive.
func validateDoctorFlags(_ *cobra.Command, _ []string) error {
	if doctorJSON && (doctorAll || quiet) {
		err := errors.New("flags --json, --all, and --quiet are mutually exclusive")
		return errors.NewUserError(err, "Pass only one output flag")
	}
	return nil
}

// doctorOutput is the JSON document written by --json.
type doctorOutput struct {
	*doctor.Report
	Fixes []doctor.FixResult `json:"fixes,omitempty"`
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	runner, err := newDoctorRunner()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	report := runner.Run(ctx)

	var fixes []doctor.FixResult
	if doctorFix {
		for _, check := range runner.Checks() {
			if f, ok := check.(doctor.Fixer); ok && f.CanFix() {
				fixes = append(fixes, f.Fix()...)
			}
		}
		if len(fixes) > 0 {
			report = runner.Run(ctx)
		}
	}

	if err := outputDoctorReport(cmd.OutOrStdout(), report, fixes); err != nil {
		return err
	}

	// Determine exit code based on results
	if report.HasErrors() {
		return errors.NewExitError(errDoctorErrors, errors.ExitSystem)
	}
	if report.HasWarnings() {
		return errors.NewExitError(errDoctorWarnings, errors.ExitUser)
	}
	return nil
}

// newDoctorRunner registers the checks for the current config and
// settings file.
func newDoctorRunner() (*doctor.Runner, error) {
	path, err := cliConfig.SettingsPath(settingsFile)
	if err != nil {
		return nil, errors.NewUserError(err, "Check the --file flag or settings_file in the config")
	}

	runner := doctor.NewRunner()
	runner.AddCheck(&doctor.ConfigCheck{Path: paths.ConfigFile()})
	runner.AddCheck(&doctor.SettingsSyntaxCheck{Path: path})
	runner.AddCheck(&doctor.PermissionCheck{Path: path})

	shadow := &doctor.ShadowCheck{}
	// a file that does not parse is reported by the syntax check
	if src, err := file.Open(path, file.WithReadOnly()); err == nil {
		shadow.File = src
	}
	if cliConfig.EnvPrefix != "" {
		shadow.Env = env.New(cliConfig.EnvPrefix)
	}
	runner.AddCheck(shadow)

	return runner, nil
}

func outputDoctorReport(w io.Writer, report *doctor.Report, fixes []doctor.FixResult) error {
	if quiet {
		return nil
	}

	if doctorJSON {
		return outputDoctorJSON(w, report, fixes)
	}

	return outputDoctorText(w, report, fixes)
}

func outputDoctorJSON(w io.Writer, report *doctor.Report, fixes []doctor.FixResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doctorOutput{Report: report, Fixes: fixes}); err != nil {
		return errors.Wrap(err, "encoding JSON")
	}
	return nil
}

func outputDoctorText(w io.Writer, report *doctor.Report, fixes []doctor.FixResult) error {
	for _, fix := range fixes {
		icon := "✓"
		if !fix.Fixed {
			icon = "✗"
		}
		fmt.Fprintf(w, "%s fixed %s: %s\n", icon, fix.Path, fix.Description)
	}
	if len(fixes) > 0 {
		fmt.Fprintln(w)
	}

	hasOutput := false
	for _, result := range report.Results {
		problem := result.Status == doctor.SeverityError || result.Status == doctor.SeverityWarning
		if !doctorAll && !problem {
			continue
		}

		hasOutput = true
		fmt.Fprintf(w, "%s [%s] %s: %s\n", statusIcon(result.Status), result.Category, result.Name, result.Message)

		if result.FixHint != "" && problem {
			fmt.Fprintf(w, "  hint: %s\n", result.FixHint)
		}
	}

	if hasOutput {
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Summary: %d passed, %d info, %d warnings, %d errors\n",
		report.Summary.Passed, report.Summary.Info, report.Summary.Warnings, report.Summary.Errors)

	return nil
}

func statusIcon(s doctor.Severity) string {
	switch s {
	case doctor.SeverityPass:
		return "✓"
	case doctor.SeverityInfo:
		return "ℹ"
	case doctor.SeverityWarning:
		return "⚠"
	case doctor.SeverityError:
		return "✗"
	default:
		return "?"
	}
}

// errDoctorWarnings is a sentinel error for exit code 1.
var errDoctorWarnings = errors.New("warnings found")

// errDoctorErrors is a sentinel error for exit code 2.
var errDoctorErrors = errors.New("errors found")

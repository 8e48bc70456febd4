package errors

import (
	stderrors "errors"
	"fmt"

	crdb "github.com/cockroachdb/errors"
)

// Exit codes for CLI applications.
const (
	ExitSuccess = 0
	ExitUser    = 1
	ExitSystem  = 2
)

// Sentinel errors shared by the CLI commands.
var (
	// ErrKeyNotFound indicates the requested key has no value in the store.
	ErrKeyNotFound = crdb.New("key not found")

	// ErrMissingKeys indicates a check found keys without a value.
	ErrMissingKeys = crdb.New("required keys are missing")

	// ErrInvalidConfig indicates the CLI settings failed validation.
	ErrInvalidConfig = crdb.New("invalid configuration")

	// ErrUnsupportedFormat indicates a settings file extension with no codec.
	ErrUnsupportedFormat = crdb.New("unsupported file format")
)

// New creates an error with a stack trace.
func New(msg string) error {
	return crdb.NewWithDepth(1, msg)
}

// Newf creates a formatted error with a stack trace.
func Newf(format string, args ...any) error {
	return crdb.NewWithDepthf(1, format, args...)
}

// Wrap annotates err with msg. It returns nil when err is nil.
func Wrap(err error, msg string) error {
	return crdb.WrapWithDepth(1, err, msg)
}

// Wrapf annotates err with a formatted message. It returns nil when err is
// nil.
func Wrapf(err error, format string, args ...any) error {
	return crdb.WrapWithDepthf(1, err, format, args...)
}

// Is reports whether any error in err's chain matches target, including
// marks added with Mark and members of joined errors.
func Is(err, target error) bool {
	return crdb.Is(err, target) || stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Join combines errs into one error. Nil entries are dropped; it returns
// nil when nothing remains.
func Join(errs ...error) error {
	return crdb.Join(errs...)
}

// Mark makes err match reference under Is without changing its message.
func Mark(err, reference error) error {
	return crdb.Mark(err, reference)
}

// WithHint attaches a user facing hint that survives wrapping.
func WithHint(err error, hint string) error {
	return crdb.WithHint(err, hint)
}

// FlattenHints returns every hint attached along err's chain.
func FlattenHints(err error) string {
	return crdb.FlattenHints(err)
}

// ExitError pairs an error with a process exit code and an optional
// suggestion printed below the error message.
type ExitError struct {
	Err        error
	Code       int
	Suggestion string
}

// NewExitError creates an ExitError.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{Err: err, Code: code}
}

// NewUserError creates an ExitError with ExitUser.
func NewUserError(err error, suggestion string) *ExitError {
	return &ExitError{Err: err, Code: ExitUser, Suggestion: suggestion}
}

// NewSystemError creates an ExitError with ExitSystem.
func NewSystemError(err error, suggestion string) *ExitError {
	return &ExitError{Err: err, Code: ExitSystem, Suggestion: suggestion}
}

// NewConfigError reports an unusable settings file.
func NewConfigError(err error) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitUser,
		Suggestion: "Run: keyconfig path --all, then fix or remove the broken file",
	}
}

// Error returns the underlying message, or the exit code when there is none.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode returns the exit code for err: ExitSuccess for nil, the code of
// the first ExitError in the chain, and ExitSystem otherwise.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitSystem
}

// Suggestion returns the suggestion of the first ExitError in err's chain,
// falling back to hints attached with WithHint.
func Suggestion(err error) string {
	var exitErr *ExitError
	if As(err, &exitErr) && exitErr.Suggestion != "" {
		return exitErr.Suggestion
	}
	return FlattenHints(err)
}

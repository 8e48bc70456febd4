// Package errors carries the error conventions of the keyconfig CLI.
//
// It re-exports the wrapping helpers of github.com/cockroachdb/errors so
// command code imports a single errors package, defines the sentinels the
// commands match on, and provides [ExitError], which pairs an error with a
// process exit code and an optional hint for the user:
//
//	err := errors.NewUserError(errors.ErrKeyNotFound, "Run: keyconfig list")
//	os.Exit(errors.ExitCode(err))
//
// Exit codes follow Unix conventions:
//
//   - ExitSuccess (0): the command succeeded
//   - ExitUser (1): bad input, a missing key or an invalid config file
//   - ExitSystem (2): I/O and permission failures
package errors

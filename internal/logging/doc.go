// Package logging provides slog based logging for keyconfig.
//
// Text output goes through [Handler], which colors levels on a terminal and
// masks attribute values that look like credentials. JSON output uses the
// standard [slog.JSONHandler].
//
//	logger := logging.New(logging.Config{
//		Level:  slog.LevelDebug,
//		Format: logging.FormatText,
//		Output: os.Stderr,
//	})
//	logger.Debug("field bound", "key", "Port", "source", "file:app.yaml")
//
// The binding engine logs through a discard logger unless one is supplied,
// so library users see nothing by default. Tests can route output to the
// test log with [ForTest].
package logging

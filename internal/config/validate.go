package config

import (
	"strconv"
	"strings"

	"github.com/thoreinstein/keyconfig/internal/errors"
	"github.com/thoreinstein/keyconfig/internal/logging"
	"github.com/thoreinstein/keyconfig/pkg/source/file"
)

// FieldError reports one invalid setting.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return e.Field + " " + e.Value + ": " + e.Err.Error()
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Validate checks cfg. Every problem is reported; the result matches
// errors.ErrInvalidConfig and each FieldError.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.Wrap(errors.ErrInvalidConfig, "config is nil")
	}

	var errs []error

	if cfg.Version != CurrentVersion {
		errs = append(errs, &FieldError{
			Field: "version",
			Value: strconv.Itoa(cfg.Version),
			Err:   errors.Newf("unsupported version, want %d", CurrentVersion),
		})
	}

	switch logging.Format(cfg.LogFormat) {
	case logging.FormatText, logging.FormatJSON:
	default:
		errs = append(errs, &FieldError{
			Field: "log_format",
			Value: cfg.LogFormat,
			Err:   errors.New("must be text or json"),
		})
	}

	if cfg.SettingsFile != "" {
		if strings.ContainsRune(cfg.SettingsFile, 0) {
			errs = append(errs, &FieldError{
				Field: "settings_file",
				Value: cfg.SettingsFile,
				Err:   errors.New("contains a null byte"),
			})
		} else if _, err := file.FormatOf(cfg.SettingsFile); err != nil {
			errs = append(errs, &FieldError{Field: "settings_file", Value: cfg.SettingsFile, Err: err})
		}
	}

	if cfg.BackupRetention < 0 {
		errs = append(errs, &FieldError{
			Field: "backup_retention",
			Value: strconv.Itoa(cfg.BackupRetention),
			Err:   errors.New("must be zero or more"),
		})
	}

	if len(errs) == 0 {
		return nil
	}
	return errors.Mark(errors.Join(errs...), errors.ErrInvalidConfig)
}

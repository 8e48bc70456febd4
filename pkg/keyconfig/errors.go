package keyconfig

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Sentinel errors identifying the failure kind, matched with errors.Is.
var (
	// ErrStructural indicates a bound field cannot be read or written through
	// reflection, or its binding declaration is malformed.
	ErrStructural = errors.New("field is not bindable")

	// ErrUnsupportedConstruct indicates a binding tag on an embedded or
	// function-typed field.
	ErrUnsupportedConstruct = errors.New("construct is not supported for binding")

	// ErrUnsupportedType indicates the source cannot represent the field type.
	ErrUnsupportedType = errors.New("type is not supported by source")

	// ErrMissingRequired indicates a required value was absent.
	ErrMissingRequired = errors.New("value is required but was not specified")

	// ErrSourceRead indicates the source failed to produce a usable value.
	ErrSourceRead = errors.New("reading config value failed")

	// ErrSourceWrite indicates the source failed to persist a value.
	ErrSourceWrite = errors.New("writing config value failed")

	// ErrConstruction indicates the target instance could not be created.
	ErrConstruction = errors.New("cannot construct config instance")

	// ErrNotSupported indicates a write against a source that cannot be written.
	ErrNotSupported = errors.New("source does not support saving config values")
)

// Op names the operation that produced a FieldError.
type Op string

// Operations reported in FieldError.
const (
	OpDiscover Op = "discover"
	OpCheck    Op = "check"
	OpLoad     Op = "load"
	OpSave     Op = "save"
)

// FieldError describes a failure tied to a single bound field.
//
// errors.Is matches both Kind and anything in the Err chain, so callers can
// test for ErrMissingRequired as well as for a source's own failure.
type FieldError struct {
	// Op is the operation that was running.
	Op Op
	// Type is the name of the bound struct type.
	Type string
	// Field is the Go field name.
	Field string
	// Key is the configuration key the field is bound to.
	Key string
	// Source is the name of the source involved, if any.
	Source string
	// Kind is one of the package sentinel errors.
	Kind error
	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	msg := fmt.Sprintf("%s %s.%s", e.Op, e.Type, e.Field)
	if e.Key != "" && e.Key != e.Field {
		msg += fmt.Sprintf(" (key %q)", e.Key)
	}
	if e.Source != "" {
		msg += fmt.Sprintf(" [source %s]", e.Source)
	}
	msg += ": " + e.Kind.Error()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *FieldError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the error kind.
func (e *FieldError) Is(target error) bool {
	return target == e.Kind
}

package keyconfig

import (
	"log/slog"
	"reflect"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/keyconfig/internal/logging"
	"github.com/thoreinstein/keyconfig/pkg/keyconfig/convert"
)

// Manager binds the struct type T to configuration sources.
//
// A Manager holds no per-call state and may be shared between goroutines.
// It does not serialize calls made against the same Source or instance.
type Manager[T any] struct {
	logger *slog.Logger
}

// Option configures a Manager.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for debug output. The default discards.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New creates a Manager for T.
func New[T any](opts ...Option) *Manager[T] {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.NewDiscard()
	}
	return &Manager[T]{logger: o.logger}
}

// Table returns the bindings of T that src can serve.
func (m *Manager[T]) Table(src Source) (*Table, error) {
	return DiscoverFor[T](src)
}

// CheckRequired reports whether every required nullable field of T has a
// value in src. It stops at the first missing value.
//
// Fields whose type cannot represent absence (numbers, booleans, times) are
// never reported missing. A failure to read a value is returned as an error
// matching ErrSourceRead rather than as a missing value.
func (m *Manager[T]) CheckRequired(src Source) (bool, error) {
	table, err := m.Table(src)
	if err != nil {
		return false, err
	}

	for _, fb := range table.Fields {
		value, found, err := src.GetValue(fb.Key, table.Type, fb.Type)
		if err != nil {
			return false, newFieldError(OpCheck, table, fb, src, ErrSourceRead, err)
		}

		if fb.Required && fb.Nullable && isMissing(fb, value, found) {
			m.logger.Debug("required config value missing",
				"type", typeName(table.Type), "key", fb.Key, "source", src.Name())
			return false, nil
		}
	}

	return true, nil
}

// Load creates a T and populates it from src.
//
// Discovery runs before the instance is created, so a type src cannot
// represent fails without constructing anything.
func (m *Manager[T]) Load(src Source) (*T, error) {
	if k := reflect.TypeFor[T]().Kind(); k != reflect.Struct {
		return nil, errors.Wrapf(ErrConstruction, "%s is a %s, not a struct", reflect.TypeFor[T](), k)
	}

	table, err := m.Table(src)
	if err != nil {
		return nil, err
	}

	instance := new(T)
	if err := m.fulfill(table, src, instance); err != nil {
		return nil, err
	}
	return instance, nil
}

// Fulfill populates instance from src, field by field in declaration order.
//
// A required key that is absent, or empty for a text field, fails with
// ErrMissingRequired. Any other absent key receives its default (see
// ResolveDefault). The first failure
// aborts the call and leaves instance partially populated; callers should
// discard it.
func (m *Manager[T]) Fulfill(src Source, instance *T) error {
	if instance == nil {
		return errors.Wrapf(ErrConstruction, "nil %s instance", reflect.TypeFor[T]())
	}

	table, err := m.Table(src)
	if err != nil {
		return err
	}
	return m.fulfill(table, src, instance)
}

func (m *Manager[T]) fulfill(table *Table, src Source, instance *T) error {
	rv := reflect.ValueOf(instance).Elem()

	for _, fb := range table.Fields {
		value, found, err := src.GetValue(fb.Key, table.Type, fb.Type)
		if err != nil {
			return newFieldError(OpLoad, table, fb, src, ErrSourceRead, err)
		}

		if fb.Required && isMissing(fb, value, found) {
			return newFieldError(OpLoad, table, fb, src, ErrMissingRequired, nil)
		}

		usedDefault := false
		if isAbsent(value, found) {
			value = ResolveDefault(fb)
			usedDefault = true
		}

		if err := assign(rv.FieldByIndex(fb.Index), value); err != nil {
			return newFieldError(OpLoad, table, fb, src, ErrSourceRead, err)
		}

		m.logger.Debug("loaded config value",
			"type", typeName(table.Type), "key", fb.Key, "default", usedDefault)
	}

	return nil
}

// Save writes every bound field of instance to src in declaration order.
//
// It fails with ErrNotSupported before touching any field when src cannot
// be written. A required nullable field with no value fails with
// ErrMissingRequired. Fields written before a failure stay written; there
// is no rollback.
func (m *Manager[T]) Save(src Source, instance *T) error {
	if src == nil {
		return errors.New("keyconfig: nil source")
	}
	if !src.CanSet() {
		return errors.Wrapf(ErrNotSupported, "source %q", src.Name())
	}
	if instance == nil {
		return errors.Wrapf(ErrConstruction, "nil %s instance", reflect.TypeFor[T]())
	}

	table, err := m.Table(src)
	if err != nil {
		return err
	}

	rv := reflect.ValueOf(instance).Elem()
	for _, fb := range table.Fields {
		fv := rv.FieldByIndex(fb.Index)

		var value any
		if fb.Nullable && fb.Kind != convert.KindString && fv.IsNil() {
			value = nil
		} else {
			value = fv.Interface()
		}

		if fb.Required && fb.Nullable && isZeroNullable(fv) {
			return newFieldError(OpSave, table, fb, src, ErrMissingRequired, nil)
		}

		if err := src.SetValue(fb.Key, value, table.Type, fb.Type); err != nil {
			return newFieldError(OpSave, table, fb, src, ErrSourceWrite, err)
		}

		m.logger.Debug("saved config value",
			"type", typeName(table.Type), "key", fb.Key, "source", src.Name())
	}

	return nil
}

// CheckRequired is Manager.CheckRequired with a default Manager.
func CheckRequired[T any](src Source) (bool, error) {
	return New[T]().CheckRequired(src)
}

// Load is Manager.Load with a default Manager.
func Load[T any](src Source) (*T, error) {
	return New[T]().Load(src)
}

// Fulfill is Manager.Fulfill with a default Manager.
func Fulfill[T any](src Source, instance *T) error {
	return New[T]().Fulfill(src, instance)
}

// Save is Manager.Save with a default Manager.
func Save[T any](src Source, instance *T) error {
	return New[T]().Save(src, instance)
}

// isAbsent reports whether a GetValue result carries no value.
func isAbsent(value any, found bool) bool {
	if !found || value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}

// isMissing reports whether a GetValue result leaves a required field
// without a value. For text fields the empty string counts as missing, the
// same rule Save applies to the field itself.
func isMissing(fb FieldBinding, value any, found bool) bool {
	if isAbsent(value, found) {
		return true
	}
	if fb.Kind != convert.KindString {
		return false
	}
	rv := reflect.ValueOf(value)
	return rv.Kind() == reflect.String && rv.Len() == 0
}

// isZeroNullable reports whether a nullable field holds no value. The empty
// string is the absent value of text fields.
func isZeroNullable(fv reflect.Value) bool {
	switch fv.Kind() {
	case reflect.String:
		return fv.Len() == 0
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return fv.IsNil()
	default:
		return false
	}
}

// assign stores value into the field, converting it when its dynamic type
// differs from the field type.
func assign(field reflect.Value, value any) error {
	if value == nil {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}

	rv := reflect.ValueOf(value)
	if rv.Type().AssignableTo(field.Type()) {
		field.Set(rv)
		return nil
	}

	converted, err := convert.To(value, field.Type())
	if err != nil {
		return errors.Wrapf(err, "assigning %T to %s", value, field.Type())
	}
	field.Set(reflect.ValueOf(converted))
	return nil
}

func newFieldError(op Op, table *Table, fb FieldBinding, src Source, kind, cause error) *FieldError {
	return &FieldError{
		Op:     op,
		Type:   typeName(table.Type),
		Field:  fb.Name,
		Key:    fb.Key,
		Source: src.Name(),
		Kind:   kind,
		Err:    cause,
	}
}

package keyconfig

import "reflect"

// Source is the contract a configuration store offers to the binding engine.
//
// The engine borrows a Source for the duration of one call and never retains
// it. Implementations that are shared between goroutines must do their own
// locking.
type Source interface {
	// Name identifies the source in error messages.
	Name() string

	// CanSet reports whether SetValue may be called. The engine checks it
	// before every save and never calls SetValue when it is false.
	CanSet() bool

	// CanHandle reports whether values of type t can be stored and retrieved.
	CanHandle(t reflect.Type) bool

	// GetValue returns the value stored under key, converted to valueType.
	// found is false when the key has no value. An error is returned only
	// when a stored value exists but cannot be represented as valueType.
	GetValue(key string, owner, valueType reflect.Type) (value any, found bool, err error)

	// SetValue stores value under key. A nil value clears the key. Sources
	// that cannot be written return ErrNotSupported.
	SetValue(key string, value any, owner, valueType reflect.Type) error
}

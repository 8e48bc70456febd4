package keyconfig

import (
	"reflect"
	"sync"
	"time"

	"github.com/thoreinstein/keyconfig/pkg/keyconfig/convert"
)

// zeroTable holds the intrinsic default of every type the bundled sources
// can represent. Types missing from the table fall back to reflect.Zero.
var zeroTable = map[reflect.Type]func() any{
	reflect.TypeFor[string]():        func() any { return "" },
	reflect.TypeFor[bool]():          func() any { return false },
	reflect.TypeFor[int]():           func() any { return int(0) },
	reflect.TypeFor[int8]():          func() any { return int8(0) },
	reflect.TypeFor[int16]():         func() any { return int16(0) },
	reflect.TypeFor[int32]():         func() any { return int32(0) },
	reflect.TypeFor[int64]():         func() any { return int64(0) },
	reflect.TypeFor[uint]():          func() any { return uint(0) },
	reflect.TypeFor[uint8]():         func() any { return uint8(0) },
	reflect.TypeFor[uint16]():        func() any { return uint16(0) },
	reflect.TypeFor[uint32]():        func() any { return uint32(0) },
	reflect.TypeFor[uint64]():        func() any { return uint64(0) },
	reflect.TypeFor[float32]():       func() any { return float32(0) },
	reflect.TypeFor[float64]():       func() any { return float64(0) },
	reflect.TypeFor[time.Time]():     func() any { return time.Time{} },
	reflect.TypeFor[time.Duration](): func() any { return time.Duration(0) },
	reflect.TypeFor[[]string]():      func() any { return []string(nil) },
}

// registered holds caller supplied defaults keyed by type.
var registered sync.Map // map[reflect.Type]func() any

// RegisterDefault installs fn as the default for every non-required field of
// type t that has no default tag. It overrides the intrinsic zero value,
// which is useful for named types whose zero value is not meaningful.
// fn must return a value of type t.
func RegisterDefault(t reflect.Type, fn func() any) {
	registered.Store(t, fn)
}

// UnregisterDefault removes a default installed with RegisterDefault.
func UnregisterDefault(t reflect.Type) {
	registered.Delete(t)
}

// ResolveDefault returns the value used for fb when its key is absent.
//
// An explicit default is returned as declared; pointer and slice defaults
// are copied so instances never share storage. Otherwise a registered
// default, the intrinsic zero of the type, or reflect.Zero for anything
// else, in that order.
func ResolveDefault(fb FieldBinding) any {
	if fb.HasDefault {
		switch fb.Kind {
		case convert.KindPointer, convert.KindStringSlice:
			if v, err := convert.To(fb.Default, fb.Type); err == nil {
				return v
			}
		}
		return fb.Default
	}

	if fn, ok := registered.Load(fb.Type); ok {
		return fn.(func() any)()
	}
	if fn, ok := zeroTable[fb.Type]; ok {
		return fn()
	}
	return reflect.Zero(fb.Type).Interface()
}

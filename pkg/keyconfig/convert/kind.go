package convert

import (
	"reflect"
	"time"
)

// Kind classifies a Go type by how configuration values of that type are
// stored and converted.
type Kind int

const (
	_ Kind = iota // zero is the invalid kind

	KindString
	KindBool
	KindInt
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindTime
	KindDuration
	KindStringSlice
	KindPointer
	KindOther
)

var kindNames = [...]string{
	"invalid",
	"string",
	"bool",
	"int",
	"int8",
	"int16",
	"int32",
	"int64",
	"uint",
	"uint8",
	"uint16",
	"uint32",
	"uint64",
	"float32",
	"float64",
	"time",
	"duration",
	"[]string",
	"pointer",
	"other",
}

// String returns the kind name.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "invalid"
	}
	return kindNames[k]
}

// IsNumber reports whether k is an integer or floating point kind.
func (k Kind) IsNumber() bool {
	return k.IsInteger() || k == KindFloat32 || k == KindFloat64
}

// IsInteger reports whether k is a signed or unsigned integer kind.
func (k Kind) IsInteger() bool {
	switch k {
	case KindInt, KindInt8, KindInt16, KindInt32, KindInt64,
		KindUint, KindUint8, KindUint16, KindUint32, KindUint64:
		return true
	default:
		return false
	}
}

// IsScalar reports whether k holds a single textual, boolean, numeric or
// temporal value.
func (k Kind) IsScalar() bool {
	switch k {
	case KindString, KindBool, KindTime, KindDuration:
		return true
	default:
		return k.IsNumber()
	}
}

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
)

// KindOf classifies t. Named types are classified by their underlying kind,
// except time.Duration which is recognized before its int64 representation.
func KindOf(t reflect.Type) Kind {
	if t == nil {
		return 0
	}

	switch t {
	case timeType:
		return KindTime
	case durationType:
		return KindDuration
	}

	switch t.Kind() {
	case reflect.String:
		return KindString
	case reflect.Bool:
		return KindBool
	case reflect.Int:
		return KindInt
	case reflect.Int8:
		return KindInt8
	case reflect.Int16:
		return KindInt16
	case reflect.Int32:
		return KindInt32
	case reflect.Int64:
		return KindInt64
	case reflect.Uint:
		return KindUint
	case reflect.Uint8:
		return KindUint8
	case reflect.Uint16:
		return KindUint16
	case reflect.Uint32:
		return KindUint32
	case reflect.Uint64:
		return KindUint64
	case reflect.Float32:
		return KindFloat32
	case reflect.Float64:
		return KindFloat64
	case reflect.Slice:
		if t.Elem().Kind() == reflect.String {
			return KindStringSlice
		}
		return KindOther
	case reflect.Pointer:
		return KindPointer
	default:
		return KindOther
	}
}

// Nullable reports whether a value of type t can represent "no value".
// Strings count as nullable: the empty string is their absent value.
func Nullable(t reflect.Type) bool {
	if t == nil {
		return true
	}
	switch t.Kind() {
	case reflect.String, reflect.Pointer, reflect.Interface, reflect.Map,
		reflect.Slice, reflect.Chan, reflect.Func:
		return true
	default:
		return false
	}
}

// Supports reports whether t can be converted by [To]: scalars, string
// slices, and pointers to scalars.
func Supports(t reflect.Type) bool {
	k := KindOf(t)
	switch {
	case k.IsScalar(), k == KindStringSlice:
		return true
	case k == KindPointer:
		return KindOf(t.Elem()).IsScalar()
	default:
		return false
	}
}

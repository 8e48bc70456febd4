// Package convert coerces raw configuration values into typed Go values.
//
// Sources store values in whatever representation their medium offers: a
// YAML document yields ints and strings, the environment yields only
// strings, an in-memory map yields whatever was put into it. [To] turns any
// of those into the exact type a struct field declares, and [ToString]
// renders a typed value for text-only media.
package convert

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cast"
)

// ParseError reports a stored value that cannot be represented as the
// requested type.
type ParseError struct {
	// Value is the raw value that failed to convert.
	Value any
	// Type is the requested type.
	Type reflect.Type
	// Err is the underlying conversion failure.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot convert %q to %s: %v", fmt.Sprint(e.Value), e.Type, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// baseTypes maps scalar kinds to their predeclared Go type.
var baseTypes = map[Kind]reflect.Type{
	KindString:  reflect.TypeOf(""),
	KindBool:    reflect.TypeOf(false),
	KindInt:     reflect.TypeOf(int(0)),
	KindInt8:    reflect.TypeOf(int8(0)),
	KindInt16:   reflect.TypeOf(int16(0)),
	KindInt32:   reflect.TypeOf(int32(0)),
	KindInt64:   reflect.TypeOf(int64(0)),
	KindUint:    reflect.TypeOf(uint(0)),
	KindUint8:   reflect.TypeOf(uint8(0)),
	KindUint16:  reflect.TypeOf(uint16(0)),
	KindUint32:  reflect.TypeOf(uint32(0)),
	KindUint64:  reflect.TypeOf(uint64(0)),
	KindFloat32: reflect.TypeOf(float32(0)),
	KindFloat64: reflect.TypeOf(float64(0)),
}

// To converts value to type t.
//
// A nil value converts to the zero value of t. Pointer targets receive a
// freshly allocated pointer to the converted element, so the result never
// aliases value. Interface targets receive the dereferenced value as is.
// Conversion failures are returned as *ParseError.
func To(value any, t reflect.Type) (any, error) {
	if t == nil {
		return nil, errors.New("convert: nil target type")
	}
	if value == nil {
		return reflect.Zero(t).Interface(), nil
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Zero(t).Interface(), nil
		}
		value = rv.Elem().Interface()
		rv = rv.Elem()
	}

	if t.Kind() == reflect.Interface {
		if !rv.Type().Implements(t) {
			return nil, &ParseError{Value: value, Type: t, Err: errors.Newf("%s does not implement %s", rv.Type(), t)}
		}
		return value, nil
	}

	k := KindOf(t)
	if k == KindPointer {
		elem, err := To(value, t.Elem())
		if err != nil {
			return nil, err
		}
		p := reflect.New(t.Elem())
		p.Elem().Set(reflect.ValueOf(elem))
		return p.Interface(), nil
	}

	if rv.Type() == t && k != KindStringSlice {
		return value, nil
	}

	out, err := castTo(normalize(value), k)
	if err != nil {
		return nil, &ParseError{Value: value, Type: t, Err: err}
	}

	ov := reflect.ValueOf(out)
	if ov.Type() != t {
		if !ov.Type().ConvertibleTo(t) {
			return nil, &ParseError{Value: value, Type: t, Err: errors.Newf("incompatible type %s", ov.Type())}
		}
		ov = ov.Convert(t)
	}
	return ov.Interface(), nil
}

// ToString renders value as text. Times use RFC 3339 with nanoseconds,
// durations use time.Duration.String, and string slices are joined with
// commas. Nil pointers render as the empty string.
func ToString(value any) (string, error) {
	value = Indirect(value)

	switch v := value.(type) {
	case nil:
		return "", nil
	case time.Time:
		return v.Format(time.RFC3339Nano), nil
	case time.Duration:
		return v.String(), nil
	}

	if KindOf(reflect.TypeOf(value)) == KindStringSlice {
		items, err := cast.ToStringSliceE(normalize(value))
		if err != nil {
			return "", errors.Wrap(err, "rendering string slice")
		}
		return strings.Join(items, ","), nil
	}

	s, err := cast.ToStringE(normalize(value))
	if err != nil {
		return "", errors.Wrapf(err, "rendering %T", value)
	}
	return s, nil
}

// Plain returns value in a form every text and document codec round-trips:
// predeclared scalars and []string are kept, times become RFC 3339 text,
// and durations and named types become their ToString rendering. Pointers
// are dereferenced; nil yields nil.
func Plain(value any) (any, error) {
	value = Indirect(value)

	switch v := value.(type) {
	case nil:
		return nil, nil
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32,
		float32, float64:
		return v, nil
	case uint64:
		if v > math.MaxInt64 {
			return ToString(v)
		}
		return v, nil
	case time.Time:
		return v.Format(time.RFC3339Nano), nil
	case []string:
		return slices.Clone(v), nil
	default:
		return ToString(v)
	}
}

// Indirect dereferences pointers until it reaches a non-pointer value.
// A nil pointer yields nil.
func Indirect(value any) any {
	rv := reflect.ValueOf(value)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}

// normalize strips named types down to their predeclared base type so cast's
// type switches recognize them, and unwraps json.Number into text.
func normalize(value any) any {
	if n, ok := value.(json.Number); ok {
		return n.String()
	}

	rv := reflect.ValueOf(value)
	k := KindOf(rv.Type())
	if base, ok := baseTypes[k]; ok && rv.Type() != base {
		return rv.Convert(base).Interface()
	}
	if k == KindStringSlice && rv.Type() != reflect.TypeOf([]string(nil)) {
		return rv.Convert(reflect.TypeOf([]string(nil))).Interface()
	}
	return value
}

func castTo(value any, k Kind) (any, error) {
	switch k {
	case KindString:
		return ToString(value)
	case KindBool:
		return cast.ToBoolE(value)
	case KindInt:
		return cast.ToIntE(value)
	case KindInt8:
		return cast.ToInt8E(value)
	case KindInt16:
		return cast.ToInt16E(value)
	case KindInt32:
		return cast.ToInt32E(value)
	case KindInt64:
		return cast.ToInt64E(value)
	case KindUint:
		return cast.ToUintE(value)
	case KindUint8:
		return cast.ToUint8E(value)
	case KindUint16:
		return cast.ToUint16E(value)
	case KindUint32:
		return cast.ToUint32E(value)
	case KindUint64:
		return cast.ToUint64E(value)
	case KindFloat32:
		return cast.ToFloat32E(value)
	case KindFloat64:
		return cast.ToFloat64E(value)
	case KindTime:
		return cast.ToTimeE(value)
	case KindDuration:
		return cast.ToDurationE(value)
	case KindStringSlice:
		switch v := value.(type) {
		case string:
			return splitList(v), nil
		case []string:
			return slices.Clone(v), nil
		}
		return cast.ToStringSliceE(value)
	default:
		return nil, errors.Newf("unsupported kind %s", k)
	}
}

// splitList splits a comma separated list, dropping empty items.
func splitList(s string) []string {
	items := []string{}
	for item := range strings.SplitSeq(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

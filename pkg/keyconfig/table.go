package keyconfig

import (
	"reflect"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/keyconfig/pkg/keyconfig/convert"
)

// Struct tags read by the binding engine.
const (
	// TagName marks a field for binding: `keyconfig:"Key,required"`.
	// An empty key binds the field under its own name; "-" skips the field.
	TagName = "keyconfig"

	// DefaultTagName supplies the value used when a non-required key is
	// absent: `default:"8080"`.
	DefaultTagName = "default"

	optRequired = "required"
)

// FieldBinding associates one struct field with a configuration key.
type FieldBinding struct {
	// Name is the Go field name.
	Name string
	// Index is the field index sequence for reflect.Value.FieldByIndex.
	Index []int
	// Key is the configuration key.
	Key string
	// Required makes an absent value an error on load and save.
	Required bool
	// Default is the explicit default value, valid when HasDefault is set.
	Default any
	// HasDefault reports whether a default tag was declared.
	HasDefault bool
	// Type is the field's declared type.
	Type reflect.Type
	// Kind classifies Type.
	Kind convert.Kind
	// Nullable reports whether Type can represent an absent value.
	Nullable bool
}

// Table is the ordered set of bindings for one struct type.
type Table struct {
	// Type is the bound struct type.
	Type reflect.Type
	// Fields are the bindings in field declaration order.
	Fields []FieldBinding
}

// Lookup returns the binding for a configuration key.
func (t *Table) Lookup(key string) (FieldBinding, bool) {
	for _, fb := range t.Fields {
		if fb.Key == key {
			return fb, true
		}
	}
	return FieldBinding{}, false
}

// Keys returns the configuration keys in declaration order.
func (t *Table) Keys() []string {
	keys := make([]string, len(t.Fields))
	for i, fb := range t.Fields {
		keys[i] = fb.Key
	}
	return keys
}

// fieldSpec is a parsed field declaration. err holds the structural failure
// for the field, reported when discovery reaches it.
type fieldSpec struct {
	binding FieldBinding
	err     error
}

// typeSpec is the source-independent interpretation of a struct type.
type typeSpec struct {
	typ    reflect.Type
	fields []fieldSpec
}

// specs memoizes typeSpec per struct type. Struct tags are immutable for the
// life of the process, so concurrent LoadOrStore races are harmless.
var specs sync.Map // map[reflect.Type]*typeSpec

// Discover returns the bindings of typ that src can serve. typ must be a
// struct type or a pointer to one.
//
// Fields are checked in declaration order and the first failure is returned:
// ErrStructural for unexported or malformed declarations,
// ErrUnsupportedConstruct for embedded and function-typed fields, and
// ErrUnsupportedType when src cannot handle the field type.
func Discover(src Source, typ reflect.Type) (*Table, error) {
	if src == nil {
		return nil, errors.New("keyconfig: nil source")
	}

	st, err := structType(typ)
	if err != nil {
		return nil, err
	}

	spec := specFor(st)
	table := &Table{
		Type:   st,
		Fields: make([]FieldBinding, 0, len(spec.fields)),
	}

	for _, fs := range spec.fields {
		if fs.err != nil {
			return nil, fs.err
		}

		fb := fs.binding
		if !src.CanHandle(fb.Type) {
			return nil, &FieldError{
				Op:     OpDiscover,
				Type:   typeName(st),
				Field:  fb.Name,
				Key:    fb.Key,
				Source: src.Name(),
				Kind:   ErrUnsupportedType,
				Err:    errors.Newf("field type %s", fb.Type),
			}
		}

		fb.Index = append([]int(nil), fb.Index...)
		table.Fields = append(table.Fields, fb)
	}

	return table, nil
}

// DiscoverFor is Discover for the type parameter T.
func DiscoverFor[T any](src Source) (*Table, error) {
	return Discover(src, reflect.TypeFor[T]())
}

func structType(typ reflect.Type) (reflect.Type, error) {
	if typ == nil {
		return nil, errors.Wrap(ErrStructural, "nil type")
	}
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil, errors.Wrapf(ErrStructural, "%s is not a struct type", typ)
	}
	return typ, nil
}

func specFor(st reflect.Type) *typeSpec {
	if cached, ok := specs.Load(st); ok {
		return cached.(*typeSpec)
	}
	spec, _ := specs.LoadOrStore(st, buildSpec(st))
	return spec.(*typeSpec)
}

func buildSpec(st reflect.Type) *typeSpec {
	spec := &typeSpec{typ: st}
	seen := make(map[string]string)

	for i := range st.NumField() {
		f := st.Field(i)

		tag, ok := f.Tag.Lookup(TagName)
		if !ok || tag == "-" {
			continue
		}

		fs := parseField(st, f, tag)
		if fs.err == nil {
			if prev, dup := seen[fs.binding.Key]; dup {
				fs.err = fieldErr(st, f.Name, fs.binding.Key, ErrStructural,
					errors.Newf("key already bound to field %s", prev))
			} else {
				seen[fs.binding.Key] = f.Name
			}
		}
		spec.fields = append(spec.fields, fs)
	}

	return spec
}

func parseField(st reflect.Type, f reflect.StructField, tag string) fieldSpec {
	key, opts, _ := strings.Cut(tag, ",")
	key = strings.TrimSpace(key)
	if key == "" {
		key = f.Name
	}

	if !f.IsExported() {
		return fieldSpec{err: fieldErr(st, f.Name, key, ErrStructural,
			errors.New("field is not exported"))}
	}
	if f.Anonymous {
		return fieldSpec{err: fieldErr(st, f.Name, key, ErrUnsupportedConstruct,
			errors.New("embedded fields cannot be bound"))}
	}
	if f.Type.Kind() == reflect.Func {
		return fieldSpec{err: fieldErr(st, f.Name, key, ErrUnsupportedConstruct,
			errors.New("function fields cannot be bound"))}
	}

	fb := FieldBinding{
		Name:     f.Name,
		Index:    f.Index,
		Key:      key,
		Type:     f.Type,
		Kind:     convert.KindOf(f.Type),
		Nullable: convert.Nullable(f.Type),
	}

	if opts != "" {
		for opt := range strings.SplitSeq(opts, ",") {
			switch strings.TrimSpace(opt) {
			case optRequired:
				fb.Required = true
			case "":
			default:
				return fieldSpec{err: fieldErr(st, f.Name, key, ErrStructural,
					errors.Newf("unknown tag option %q", opt))}
			}
		}
	}

	if raw, ok := f.Tag.Lookup(DefaultTagName); ok {
		v, err := convert.To(raw, f.Type)
		if err != nil {
			return fieldSpec{err: fieldErr(st, f.Name, key, ErrStructural,
				errors.Wrap(err, "invalid default"))}
		}
		fb.Default = v
		fb.HasDefault = true
	}

	return fieldSpec{binding: fb}
}

// typeName names t in errors and logs. Anonymous struct types have no name
// and are spelled out instead.
func typeName(t reflect.Type) string {
	if name := t.Name(); name != "" {
		return name
	}
	return t.String()
}

func fieldErr(st reflect.Type, field, key string, kind, cause error) *FieldError {
	return &FieldError{
		Op:    OpDiscover,
		Type:  typeName(st),
		Field: field,
		Key:   key,
		Kind:  kind,
		Err:   cause,
	}
}

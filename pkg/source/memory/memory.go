// Package memory provides an in-process configuration source backed by a map.
//
// It is the reference implementation of keyconfig.Source: values keep their
// Go representation, so a round trip through a memory source is lossless.
// Stored values of a different type than the one requested are converted
// with the convert package, which lets tests seed strings such as "8080"
// for integer fields.
package memory

import (
	"maps"
	"reflect"
	"slices"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/keyconfig/pkg/keyconfig"
	"github.com/thoreinstein/keyconfig/pkg/keyconfig/convert"
)

// DefaultName is the source name used when none is configured.
const DefaultName = "memory"

// Source is a map-backed keyconfig.Source. It is safe for concurrent use.
type Source struct {
	mu       sync.RWMutex
	name     string
	readOnly bool
	values   map[string]any
}

// Option configures a Source.
type Option func(*Source)

// WithName sets the name reported in errors.
func WithName(name string) Option {
	return func(s *Source) {
		s.name = name
	}
}

// WithReadOnly makes the source reject writes through SetValue.
// Set still works, so a read-only source can be seeded.
func WithReadOnly() Option {
	return func(s *Source) {
		s.readOnly = true
	}
}

// WithValues seeds the source. The map is copied.
func WithValues(values map[string]any) Option {
	return func(s *Source) {
		maps.Copy(s.values, values)
	}
}

// New creates a Source.
func New(opts ...Option) *Source {
	s := &Source{
		name:   DefaultName,
		values: make(map[string]any),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements keyconfig.Source.
func (s *Source) Name() string {
	return s.name
}

// CanSet implements keyconfig.Source.
func (s *Source) CanSet() bool {
	return !s.readOnly
}

// CanHandle implements keyconfig.Source. Scalars, string slices and pointers
// to scalars are supported.
func (s *Source) CanHandle(t reflect.Type) bool {
	return convert.Supports(t)
}

// GetValue implements keyconfig.Source.
func (s *Source) GetValue(key string, _, valueType reflect.Type) (any, bool, error) {
	s.mu.RLock()
	raw, ok := s.values[key]
	s.mu.RUnlock()

	if !ok || raw == nil {
		return nil, false, nil
	}

	v, err := convert.To(raw, valueType)
	if err != nil {
		return nil, true, errors.Wrapf(err, "key %q", key)
	}
	return v, true, nil
}

// SetValue implements keyconfig.Source. A nil value, including a nil
// pointer, removes the key.
func (s *Source) SetValue(key string, value any, _, _ reflect.Type) error {
	if s.readOnly {
		return errors.Wrapf(keyconfig.ErrNotSupported, "source %q is read-only", s.name)
	}
	s.Set(key, value)
	return nil
}

// Set stores value under key, bypassing the read-only flag. Pointers are
// dereferenced and slices copied so the source never aliases caller memory.
func (s *Source) Set(key string, value any) {
	value = convert.Indirect(value)
	if ss, ok := value.([]string); ok {
		value = slices.Clone(ss)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if value == nil {
		delete(s.values, key)
		return
	}
	s.values[key] = value
}

// Get returns the raw stored value.
func (s *Source) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Delete removes key.
func (s *Source) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

// Keys returns the stored keys in sorted order.
func (s *Source) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.values))
}

// Snapshot returns a copy of the stored values.
func (s *Source) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.values)
}

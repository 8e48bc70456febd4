// Package vipersrc adapts a *viper.Viper to keyconfig.Source.
//
// Viper already merges flags, environment, config files and defaults; this
// source exposes the merged view to the binding engine. Viper keys are case
// insensitive, so "IpAddress" and "ipaddress" name the same value.
package vipersrc

import (
	"reflect"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/thoreinstein/keyconfig/pkg/keyconfig"
	"github.com/thoreinstein/keyconfig/pkg/keyconfig/convert"
)

// Source reads and writes through a viper instance.
type Source struct {
	v        *viper.Viper
	name     string
	persist  bool
	readOnly bool

	mu      sync.RWMutex
	cleared map[string]struct{}
}

// Option configures a Source.
type Option func(*Source)

// WithPersist writes the config file after every SetValue.
func WithPersist() Option {
	return func(s *Source) {
		s.persist = true
	}
}

// WithReadOnly rejects writes.
func WithReadOnly() Option {
	return func(s *Source) {
		s.readOnly = true
	}
}

// WithName sets the name reported in errors. The default is "viper".
func WithName(name string) Option {
	return func(s *Source) {
		s.name = name
	}
}

// New wraps v. A nil v wraps viper's global instance.
func New(v *viper.Viper, opts ...Option) *Source {
	if v == nil {
		v = viper.GetViper()
	}
	s := &Source{v: v, name: "viper", cleared: make(map[string]struct{})}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Viper returns the wrapped instance.
func (s *Source) Viper() *viper.Viper {
	return s.v
}

// Name implements keyconfig.Source.
func (s *Source) Name() string {
	return s.name
}

// CanSet implements keyconfig.Source.
func (s *Source) CanSet() bool {
	return !s.readOnly
}

// CanHandle implements keyconfig.Source.
func (s *Source) CanHandle(t reflect.Type) bool {
	return convert.Supports(t)
}

// GetValue implements keyconfig.Source. Keys viper reports as unset are
// absent; keys with only a viper default are present. Keys cleared through
// SetValue stay absent until written again.
func (s *Source) GetValue(key string, _, valueType reflect.Type) (any, bool, error) {
	if s.isCleared(key) || !s.v.IsSet(key) {
		return nil, false, nil
	}
	raw := s.v.Get(key)
	if raw == nil {
		return nil, false, nil
	}

	v, err := convert.To(raw, valueType)
	if err != nil {
		return nil, true, errors.Wrapf(err, "key %q", key)
	}
	return v, true, nil
}

// SetValue implements keyconfig.Source. Viper cannot delete keys and
// ignores nil overrides, so a nil value marks the key cleared: it reads back
// as absent and is left out of the persisted file.
func (s *Source) SetValue(key string, value any, _, _ reflect.Type) error {
	if s.readOnly {
		return errors.Wrapf(keyconfig.ErrNotSupported, "source %q is read-only", s.name)
	}

	plain, err := convert.Plain(value)
	if err != nil {
		return errors.Wrapf(err, "key %q", key)
	}

	k := strings.ToLower(key)
	s.mu.Lock()
	if plain == nil {
		s.cleared[k] = struct{}{}
	} else {
		delete(s.cleared, k)
		s.v.Set(key, plain)
	}
	s.mu.Unlock()

	if !s.persist {
		return nil
	}
	if err := s.write(); err != nil {
		return errors.Wrapf(err, "writing %s", s.v.ConfigFileUsed())
	}
	return nil
}

// isCleared reports whether key, or a table containing it, was cleared.
func (s *Source) isCleared(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.cleared) == 0 {
		return false
	}

	k := strings.ToLower(key)
	for {
		if _, ok := s.cleared[k]; ok {
			return true
		}
		i := strings.LastIndexByte(k, '.')
		if i < 0 {
			return false
		}
		k = k[:i]
	}
}

// write persists the merged settings. Cleared keys are removed from a copy
// of the settings, which is then written over the config file.
func (s *Source) write() error {
	s.mu.RLock()
	cleared := make([]string, 0, len(s.cleared))
	for k := range s.cleared {
		cleared = append(cleared, k)
	}
	s.mu.RUnlock()

	path := s.v.ConfigFileUsed()
	if len(cleared) == 0 || path == "" {
		return s.v.WriteConfig()
	}

	settings := s.v.AllSettings()
	for _, k := range cleared {
		deletePath(settings, strings.Split(k, "."))
	}

	out := viper.New()
	if err := out.MergeConfigMap(settings); err != nil {
		return err
	}
	return out.WriteConfigAs(path)
}

func deletePath(m map[string]any, parts []string) {
	if len(parts) == 1 {
		delete(m, parts[0])
		return
	}
	if child, ok := m[parts[0]].(map[string]any); ok {
		deletePath(child, parts[1:])
	}
}

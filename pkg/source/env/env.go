// Package env reads configuration values from environment variables.
//
// Keys are mapped to variable names by upper snake casing them and adding
// a prefix, so with prefix "APP_" the key "IpAddress" reads APP_IP_ADDRESS
// and "log.level" reads APP_LOG_LEVEL. The source is read-only.
package env

import (
	"os"
	"reflect"
	"strings"
	"unicode"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/keyconfig/pkg/keyconfig"
	"github.com/thoreinstein/keyconfig/pkg/keyconfig/convert"
)

// LookupFunc resolves a variable name. It has the signature of os.LookupEnv.
type LookupFunc func(name string) (string, bool)

// Source is a read-only keyconfig.Source over environment variables.
type Source struct {
	prefix string
	lookup LookupFunc
}

// Option configures a Source.
type Option func(*Source)

// WithLookup replaces os.LookupEnv, typically with a map in tests.
func WithLookup(fn LookupFunc) Option {
	return func(s *Source) {
		s.lookup = fn
	}
}

// New creates a Source reading variables that start with prefix.
func New(prefix string, opts ...Option) *Source {
	s := &Source{
		prefix: prefix,
		lookup: os.LookupEnv,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements keyconfig.Source.
func (s *Source) Name() string {
	if s.prefix == "" {
		return "env"
	}
	return "env:" + s.prefix
}

// CanSet implements keyconfig.Source. The environment is never written.
func (s *Source) CanSet() bool {
	return false
}

// CanHandle implements keyconfig.Source.
func (s *Source) CanHandle(t reflect.Type) bool {
	return convert.Supports(t)
}

// GetValue implements keyconfig.Source. A variable that is set to the empty
// string counts as present.
func (s *Source) GetValue(key string, _, valueType reflect.Type) (any, bool, error) {
	name := s.VarName(key)
	raw, ok := s.lookup(name)
	if !ok {
		return nil, false, nil
	}

	v, err := convert.To(raw, valueType)
	if err != nil {
		return nil, true, errors.Wrapf(err, "variable %s", name)
	}
	return v, true, nil
}

// SetValue implements keyconfig.Source and always fails with
// keyconfig.ErrNotSupported.
func (s *Source) SetValue(key string, _ any, _, _ reflect.Type) error {
	return errors.Wrapf(keyconfig.ErrNotSupported, "environment variable %s", s.VarName(key))
}

// VarName returns the variable read for key.
func (s *Source) VarName(key string) string {
	return s.prefix + VarName(key)
}

// VarName converts key to upper snake case. Word boundaries are lower to
// upper transitions, the last capital of an acronym followed by a lower
// case letter, and the separators '.', '-' and ' '.
func VarName(key string) string {
	runes := []rune(key)
	var b strings.Builder
	b.Grow(len(key) + 4)

	underscore := func() {
		s := b.String()
		if s != "" && !strings.HasSuffix(s, "_") {
			b.WriteByte('_')
		}
	}

	for i, r := range runes {
		switch {
		case r == '.' || r == '-' || r == ' ' || r == '_':
			underscore()
			continue
		case unicode.IsUpper(r) && i > 0:
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				underscore()
			}
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return strings.TrimSuffix(b.String(), "_")
}

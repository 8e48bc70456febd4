// Package chain layers several keyconfig sources into one.
//
// Reads consult the members in order and return the first value found, so
// earlier members take precedence, the way command line flags override the
// environment which overrides a settings file. Writes go to the first
// member that accepts them.
package chain

import (
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/keyconfig/pkg/keyconfig"
)

// Source is an ordered list of sources.
type Source struct {
	members []keyconfig.Source
}

// New creates a chain over sources, highest precedence first. Nil entries
// are skipped.
func New(sources ...keyconfig.Source) *Source {
	members := make([]keyconfig.Source, 0, len(sources))
	for _, s := range sources {
		if s != nil {
			members = append(members, s)
		}
	}
	return &Source{members: members}
}

// Members returns the chained sources in precedence order.
func (c *Source) Members() []keyconfig.Source {
	return append([]keyconfig.Source(nil), c.members...)
}

// Name implements keyconfig.Source, listing the member names.
func (c *Source) Name() string {
	names := make([]string, len(c.members))
	for i, m := range c.members {
		names[i] = m.Name()
	}
	return "chain(" + strings.Join(names, ",") + ")"
}

// CanSet implements keyconfig.Source. It is true when any member is
// writable.
func (c *Source) CanSet() bool {
	return c.writer() != nil
}

// CanHandle implements keyconfig.Source. A type is handled only when every
// member handles it, so a value can be read from any layer.
func (c *Source) CanHandle(t reflect.Type) bool {
	if len(c.members) == 0 {
		return false
	}
	for _, m := range c.members {
		if !m.CanHandle(t) {
			return false
		}
	}
	return true
}

// GetValue implements keyconfig.Source. The first member holding key wins.
// A read error from any member consulted stops the lookup.
func (c *Source) GetValue(key string, owner, valueType reflect.Type) (any, bool, error) {
	for _, m := range c.members {
		v, found, err := m.GetValue(key, owner, valueType)
		if err != nil {
			return nil, found, errors.Wrapf(err, "source %q", m.Name())
		}
		if found {
			return v, true, nil
		}
	}
	return nil, false, nil
}

// SetValue implements keyconfig.Source, writing to the first writable
// member.
func (c *Source) SetValue(key string, value any, owner, valueType reflect.Type) error {
	w := c.writer()
	if w == nil {
		return errors.Wrapf(keyconfig.ErrNotSupported, "no writable source in %s", c.Name())
	}
	return w.SetValue(key, value, owner, valueType)
}

// Source returns the first member holding key, or nil.
func (c *Source) Source(key string, owner, valueType reflect.Type) keyconfig.Source {
	for _, m := range c.members {
		if _, found, err := m.GetValue(key, owner, valueType); err == nil && found {
			return m
		}
	}
	return nil
}

func (c *Source) writer() keyconfig.Source {
	for _, m := range c.members {
		if m.CanSet() {
			return m
		}
	}
	return nil
}

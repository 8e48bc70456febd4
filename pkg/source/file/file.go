// Package file is a keyconfig.Source over a YAML, TOML or JSON settings
// file.
//
// The document is read once when the source is opened and kept in memory.
// Top level keys map directly to binding keys; a dotted key such as
// "server.port" also reaches into nested tables, for reads and writes alike.
// A top level entry literally named "server.port" takes precedence over the
// nested one. Every write rewrites the whole file atomically.
package file

import (
	"io/fs"
	"maps"
	"path/filepath"
	"reflect"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/keyconfig/pkg/fileutil"
	"github.com/thoreinstein/keyconfig/pkg/keyconfig"
	"github.com/thoreinstein/keyconfig/pkg/keyconfig/convert"
)

// Source is a settings file. It is safe for concurrent use within one
// process; concurrent writers in other processes are not detected.
type Source struct {
	mu       sync.RWMutex
	path     string
	format   Format
	readOnly bool
	doc      map[string]any
}

// Option configures a Source.
type Option func(*Source)

// WithReadOnly opens the file for reading only.
func WithReadOnly() Option {
	return func(s *Source) {
		s.readOnly = true
	}
}

// WithFormat overrides the format derived from the file extension.
func WithFormat(f Format) Option {
	return func(s *Source) {
		s.format = f
	}
}

// Open reads the settings file at path. A missing file is an empty
// document and is created on the first write.
func Open(path string, opts ...Option) (*Source, error) {
	s := &Source{path: path}
	for _, opt := range opts {
		opt(s)
	}

	if s.format == "" {
		f, err := FormatOf(path)
		if err != nil {
			return nil, err
		}
		s.format = f
	}

	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload discards in-memory state and reads the file again.
func (s *Source) Reload() error {
	doc, err := s.read()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
	return nil
}

func (s *Source) read() (map[string]any, error) {
	data, err := fileutil.ReadFileWithLimit(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", s.path)
	}

	doc, err := decode(s.format, data)
	if err != nil {
		return nil, &ParseError{Path: s.path, Format: s.format, Err: err}
	}
	return doc, nil
}

// Path returns the file path.
func (s *Source) Path() string {
	return s.path
}

// Format returns the file encoding.
func (s *Source) Format() Format {
	return s.format
}

// Name implements keyconfig.Source.
func (s *Source) Name() string {
	return "file:" + filepath.Base(s.path)
}

// CanSet implements keyconfig.Source.
func (s *Source) CanSet() bool {
	return !s.readOnly
}

// CanHandle implements keyconfig.Source.
func (s *Source) CanHandle(t reflect.Type) bool {
	return convert.Supports(t)
}

// GetValue implements keyconfig.Source. A key whose value is null counts
// as absent.
func (s *Source) GetValue(key string, _, valueType reflect.Type) (any, bool, error) {
	raw, ok := s.Get(key)
	if !ok || raw == nil {
		return nil, false, nil
	}

	v, err := convert.To(raw, valueType)
	if err != nil {
		return nil, true, errors.Wrapf(err, "%s: key %q", s.path, key)
	}
	return v, true, nil
}

// SetValue implements keyconfig.Source. Dotted keys are written into their
// nested table. The file is rewritten before SetValue returns; when that
// fails the in-memory document keeps its previous value.
func (s *Source) SetValue(key string, value any, _, _ reflect.Type) error {
	if s.readOnly {
		return errors.Wrapf(keyconfig.ErrNotSupported, "%s is read-only", s.path)
	}

	stored, err := convert.Plain(value)
	if err != nil {
		return errors.Wrapf(err, "key %q", key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := cloneTable(s.doc)
	setPath(s.doc, key, stored)

	if err := s.persist(); err != nil {
		s.doc = prev
		return err
	}
	return nil
}

// setPath stores value under key, where Get would find it: a top level
// entry named key, else the nested table a dotted key names. Missing tables
// are created. When a non-table value sits on the path the key is stored
// at the top level. A nil value removes the entry.
func setPath(doc map[string]any, key string, value any) {
	table, leaf := doc, key
	if _, top := doc[key]; !top && strings.Contains(key, ".") {
		parts := strings.Split(key, ".")
		if t, ok := descend(doc, parts[:len(parts)-1], value != nil); ok {
			table, leaf = t, parts[len(parts)-1]
		} else if value == nil {
			return
		}
	}

	if value == nil {
		delete(table, leaf)
		return
	}
	table[leaf] = value
}

// descend returns the table at path below doc, creating missing tables
// when create is set.
func descend(doc map[string]any, path []string, create bool) (map[string]any, bool) {
	cur := doc
	for _, part := range path {
		next, ok := cur[part]
		if !ok {
			if !create {
				return nil, false
			}
			t := map[string]any{}
			cur[part] = t
			cur = t
			continue
		}

		t, ok := asTable(next)
		if !ok {
			return nil, false
		}
		cur[part] = t
		cur = t
	}
	return cur, true
}

func cloneTable(t map[string]any) map[string]any {
	out := make(map[string]any, len(t))
	for k, v := range t {
		if nested, ok := v.(map[string]any); ok {
			v = cloneTable(nested)
		}
		out[k] = v
	}
	return out
}

// Delete removes key from the file.
func (s *Source) Delete(key string) error {
	return s.SetValue(key, nil, nil, nil)
}

// persist writes the document. Callers hold s.mu.
func (s *Source) persist() error {
	data, err := encode(s.format, s.doc)
	if err != nil {
		return err
	}
	if err := fileutil.EnsureParent(s.path); err != nil {
		return err
	}
	return fileutil.AtomicWriteFile(s.path, data, fileutil.DefaultPerm)
}

// Get returns the raw decoded value of key, following dots into nested
// tables when there is no top level entry.
func (s *Source) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.doc[key]; ok {
		return v, true
	}
	if !strings.Contains(key, ".") {
		return nil, false
	}

	var cur any = s.doc
	for part := range strings.SplitSeq(key, ".") {
		table, ok := asTable(cur)
		if !ok {
			return nil, false
		}
		if cur, ok = table[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// Keys returns every leaf key, nested tables flattened with dots, sorted.
func (s *Source) Keys() []string {
	return slices.Sorted(maps.Keys(s.Values()))
}

// Values returns the leaf values keyed like Keys.
func (s *Source) Values() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]any, len(s.doc))
	flatten("", s.doc, out)
	return out
}

func flatten(prefix string, table map[string]any, out map[string]any) {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := table[k]
		if prefix != "" {
			k = prefix + "." + k
		}
		if nested, ok := asTable(v); ok {
			flatten(k, nested, out)
			continue
		}
		out[k] = v
	}
}

func asTable(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, v := range t {
			ks, err := convert.ToString(k)
			if err != nil {
				return nil, false
			}
			m[ks] = v
		}
		return m, true
	default:
		return nil, false
	}
}

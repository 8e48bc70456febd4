// Package prompt provides interactive CLI prompts for choosing settings keys.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/thoreinstein/keyconfig/internal/errors"
)

// Sentinel errors for key selection.
var (
	ErrNoKeys             = errors.New("no keys to select from")
	ErrInvalidSelection   = errors.New("invalid selection")
	ErrSelectionCancelled = errors.New("selection cancelled")
)

// FindFunc matches the signature of fuzzyfinder.Find.
type FindFunc func(slice any, itemFunc func(i int) string, opts ...fuzzyfinder.Option) (int, error)

// Selector handles interactive key selection prompts.
type Selector struct {
	reader io.Reader
	writer io.Writer
	find   FindFunc
}

// NewSelector creates a new Selector using stdin and stdout.
func NewSelector() *Selector {
	return &Selector{
		reader: os.Stdin,
		writer: os.Stdout,
		find:   fuzzyfinder.Find,
	}
}

// NewSelectorWithIO creates a Selector with custom reader and writer for testing.
func NewSelectorWithIO(r io.Reader, w io.Writer) *Selector {
	return &Selector{
		reader: r,
		writer: w,
		find:   fuzzyfinder.Find,
	}
}

// WithFinder replaces the fuzzy finder used by FuzzyKey.
func (s *Selector) WithFinder(fn FindFunc) *Selector {
	s.find = fn
	return s
}

// SelectKey prompts the user to choose from a numbered list of keys.
//
// Returns:
//   - ErrNoKeys if the list is empty
//   - The key if only one exists (auto-selects without prompting)
//   - The selected key based on user input, the first on empty input
//   - ErrInvalidSelection if the selection is out of range
//   - ErrSelectionCancelled if input is EOF (e.g., Ctrl+D)
func (s *Selector) SelectKey(keys []string) (string, error) {
	if len(keys) == 0 {
		return "", ErrNoKeys
	}

	if len(keys) == 1 {
		return keys[0], nil
	}

	fmt.Fprintln(s.writer, "Available keys:")
	for i, k := range keys {
		fmt.Fprintf(s.writer, "  [%d] %s\n", i+1, k)
	}
	fmt.Fprint(s.writer, "Select [1]: ")

	line, err := bufio.NewReader(s.reader).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		if err == io.EOF {
			return "", ErrSelectionCancelled
		}
		return "", errors.Wrap(err, "reading selection")
	}

	input := strings.TrimSpace(line)
	if input == "" {
		return keys[0], nil
	}

	n, err := strconv.Atoi(input)
	if err != nil {
		return "", errors.Wrapf(ErrInvalidSelection, "%q is not a number", input)
	}
	if n < 1 || n > len(keys) {
		return "", errors.Wrapf(ErrInvalidSelection, "%d is out of range (1-%d)", n, len(keys))
	}

	return keys[n-1], nil
}

// FuzzyKey lets the user pick a key with a fuzzy finder. preview, when
// non-nil, renders the right-hand pane for the highlighted key.
func (s *Selector) FuzzyKey(keys []string, preview func(key string) string) (string, error) {
	if len(keys) == 0 {
		return "", ErrNoKeys
	}

	var opts []fuzzyfinder.Option
	if preview != nil {
		opts = append(opts, fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i < 0 || i >= len(keys) {
				return ""
			}
			return preview(keys[i])
		}))
	}

	idx, err := s.find(keys, func(i int) string { return keys[i] }, opts...)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return "", ErrSelectionCancelled
		}
		return "", errors.Wrap(err, "fuzzy finder failed")
	}
	if idx < 0 || idx >= len(keys) {
		return "", errors.Wrapf(ErrInvalidSelection, "index %d is out of range", idx)
	}

	return keys[idx], nil
}

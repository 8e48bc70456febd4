// Package editor launches the user's preferred text editor on a file.
package editor

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/thoreinstein/keyconfig/internal/errors"
)

// ErrNoEditor is returned when $EDITOR or $VISUAL is set but holds only
// whitespace.
var ErrNoEditor = errors.New("no editor command")

// Streams are the terminal the editor runs on.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Open runs the user's preferred editor on path and waits for it to exit.
// Uses $EDITOR, falling back to $VISUAL, then nano, then vi. The variable
// may carry arguments, as in EDITOR="code --wait".
func Open(ctx context.Context, path string, streams Streams) error {
	cmd, err := Command(ctx, path)
	if err != nil {
		return err
	}
	cmd.Stdin = streams.In
	cmd.Stdout = streams.Out
	cmd.Stderr = streams.Err

	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "running editor %s", cmd.Args[0])
	}
	return nil
}

// Command builds the editor invocation for path without starting it.
func Command(ctx context.Context, path string) (*exec.Cmd, error) {
	fields := strings.Fields(detectEditor())
	if len(fields) == 0 {
		return nil, ErrNoEditor
	}

	args := append(fields[1:], path)
	return exec.CommandContext(ctx, fields[0], args...), nil
}

// detectEditor returns the editor command to use based on environment variables
// and available binaries. Fallback chain: $EDITOR → $VISUAL → nano → vi
func detectEditor() string {
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor
	}

	if visual := os.Getenv("VISUAL"); visual != "" {
		return visual
	}

	// nano is easier for beginners
	if _, err := exec.LookPath("nano"); err == nil {
		return "nano"
	}

	return "vi"
}

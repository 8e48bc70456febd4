// Package main is the entry point for the keyconfig CLI.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/thoreinstein/keyconfig/cmd/keyconfig/commands"
	"github.com/thoreinstein/keyconfig/internal/errors"
	"github.com/thoreinstein/keyconfig/internal/logging"
)

func main() {
	err := commands.Execute()
	if err == nil {
		return
	}

	if !logging.SupportsColor(os.Stderr) {
		color.NoColor = true
	}
	fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("Error:"), err)
	if s := errors.Suggestion(err); s != "" {
		fmt.Fprintf(os.Stderr, "%s\n", color.YellowString(s))
	}
	os.Exit(errors.ExitCode(err))
}

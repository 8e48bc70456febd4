package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/thoreinstein/keyconfig/cmd"
	"github.com/thoreinstein/keyconfig/internal/errors"
	"github.com/thoreinstein/keyconfig/internal/paths"
)

var (
	genDocDir    string
	genDocFormat string
)

var genDocCmd = &cobra.Command{
	Use:    "gen-doc",
	Short:  "Generate reference documentation for the CLI",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE:   runGenDoc,
}

func init() {
	genDocCmd.Flags().StringVarP(&genDocDir, "dir", "d", "", "output directory for documentation")
	genDocCmd.Flags().StringVar(&genDocFormat, "format", "markdown", "output format: markdown, man")
	rootCmd.AddCommand(genDocCmd)
}

func runGenDoc(c *cobra.Command, _ []string) error {
	if genDocDir == "" {
		return errors.NewUserError(errors.New("output directory is required"), "Pass --dir")
	}

	if err := paths.EnsureDir(genDocDir, 0o755); err != nil {
		return errors.NewSystemError(err, "")
	}

	var err error
	switch genDocFormat {
	case "markdown":
		err = doc.GenMarkdownTreeCustom(rootCmd, genDocDir, filePrepender, linkHandler)
	case "man":
		header := &doc.GenManHeader{
			Title:   "KEYCONFIG",
			Section: "1",
			Source:  "keyconfig " + cmd.Version,
		}
		err = doc.GenManTree(rootCmd, header, genDocDir)
	default:
		return errors.NewUserError(errors.Newf("unknown format %q", genDocFormat), "Use --format markdown or --format man")
	}
	if err != nil {
		return errors.NewSystemError(errors.Wrapf(err, "generating %s", genDocFormat), "")
	}

	printOut(c.OutOrStdout(), fmt.Sprintf("Documentation generated in %s\n", genDocDir))
	return nil
}

// filePrepender adds front matter to each Markdown page.
func filePrepender(filename string) string {
	name := filepath.Base(filename)
	base := strings.TrimSuffix(name, filepath.Ext(name))
	// keyconfig_backup_list.md -> keyconfig backup list
	title := strings.ReplaceAll(base, "_", " ")

	return fmt.Sprintf(`---
title: "%s"
description: "Reference for %s command"
draft: false
toc: true
---
`, title, title)
}

func linkHandler(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return "/docs/reference/" + strings.ToLower(base) + "/"
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the docflow CLI, which bundles the
// standalone converters as subcommands alongside batch and history.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docflow/internal/cli"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the docflow CLI.
var rootCmd = &cobra.Command{
	Use:   "docflow",
	Short: "Convert between PDF and DOCX and remove PDF passwords",
	Long: `docflow wraps external document tools behind a small CLI. LibreOffice
performs PDF<->DOCX conversion (installed locally, in a docker or podman
container, or behind a Gotenberg service); pdfcpu removes PDF passwords.

The same operations are available as standalone programs: pdf_to_docx,
docx_to_pdf, and remove_pdf_password.`,
}

func init() {
	cli.WithConfig(rootCmd)

	rootCmd.AddCommand(
		cli.NewPDFToDOCXCmd("pdf-to-docx"),
		cli.NewDOCXToPDFCmd("docx-to-pdf"),
		cli.NewUnlockCmd("unlock"),
		cli.NewBatchCmd(),
		cli.NewHistoryCmd(),
	)
}

func main() {
	os.Exit(cli.Execute(rootCmd))
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Command remove_pdf_password writes an unencrypted copy of a PDF.
//
//	remove_pdf_password <input_pdf_path> <output_pdf_path> <password>
package main

import (
	"os"

	"github.com/pdiddy/docflow/internal/cli"
)

func main() {
	os.Exit(cli.Execute(cli.Standalone(cli.NewUnlockCmd("remove_pdf_password"))))
}

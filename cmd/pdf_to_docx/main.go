// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Command pdf_to_docx converts a PDF file to DOCX.
//
//	pdf_to_docx <input_pdf_path> <output_docx_path>
package main

import (
	"os"

	"github.com/pdiddy/docflow/internal/cli"
)

func main() {
	os.Exit(cli.Execute(cli.Standalone(cli.NewPDFToDOCXCmd("pdf_to_docx"))))
}

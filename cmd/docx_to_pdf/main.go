// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Command docx_to_pdf converts a DOCX file to PDF.
//
//	docx_to_pdf <input_docx_path> <output_pdf_path>
package main

import (
	"os"

	"github.com/pdiddy/docflow/internal/cli"
)

func main() {
	os.Exit(cli.Execute(cli.Standalone(cli.NewDOCXToPDFCmd("docx_to_pdf"))))
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docflow/internal/convert"
	"github.com/pdiddy/docflow/pkg/types"
)

// NewPDFToDOCXCmd returns the PDF to DOCX command under the given name.
func NewPDFToDOCXCmd(name string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name + " <input_pdf_path> <output_docx_path>",
		Short: "Convert a PDF file to DOCX",
		Long: `Convert a PDF document to Word (DOCX) by importing it into LibreOffice.
The whole document is converted in one call; success means the output file
exists afterwards. Exit status is 0 on success and 1 on any failure.`,
		Args: exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, types.OpPDFToDOCX, args[0], args[1])
		},
	}
	addBackendFlags(cmd)
	return cmd
}

// NewDOCXToPDFCmd returns the DOCX to PDF command under the given name.
func NewDOCXToPDFCmd(name string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name + " <input_docx_path> <output_pdf_path>",
		Short: "Convert a DOCX file to PDF",
		Long: `Convert a Word document (DOCX, DOC, ODT) to PDF with LibreOffice, either
installed locally, in a container, or behind a Gotenberg service. Success
means the output file exists afterwards; pass --verify to also check that
it parses as a PDF with at least one page.`,
		Args: exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, types.OpDOCXToPDF, args[0], args[1])
		},
	}
	addBackendFlags(cmd)
	cmd.Flags().Bool("verify", false, "check that the output is a readable PDF")
	return cmd
}

func runConvert(cmd *cobra.Command, op types.Operation, in, out string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	verify, _ := cmd.Flags().GetBool("verify")

	job := types.Job{Op: op, Input: in, Output: out}
	conv := &lazyConverter{cfg: cfg, op: op, verify: verify}

	started := time.Now()
	runErr := convert.Run(cmd.Context(), conv, job, cmd.OutOrStdout())
	recorder{cfg: cfg.History}.record(cmd.Context(), types.JobResult{
		Job:      job,
		Status:   statusOf(runErr),
		Err:      runErr,
		Started:  started,
		Duration: time.Since(started),
	})

	if runErr != nil {
		return reported(fmt.Errorf("%s failed: %w", op, runErr))
	}
	return nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docflow/internal/convert"
	"github.com/pdiddy/docflow/internal/secrets"
	"github.com/pdiddy/docflow/internal/unlock"
	"github.com/pdiddy/docflow/pkg/types"
)

// NewBatchCmd returns the batch command, which applies one operation to
// many inputs.
func NewBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch <files...>",
		Short: "Convert or unlock many files into an output directory",
		Long: `Batch applies one operation (pdf-to-docx, docx-to-pdf, or unlock) to every
input file and writes the results into --out-dir, printing one status line
per file and a summary. Inputs whose output already exists are skipped
unless --force is given. For unlock, passwords come from --passwords-dir
(one file per PDF, named after it) with --password as the fallback.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runBatch,
	}
	addBackendFlags(cmd)
	cmd.Flags().String("op", string(types.OpDOCXToPDF), "operation: pdf-to-docx, docx-to-pdf, or unlock")
	cmd.Flags().String("out-dir", ".", "directory for converted files")
	cmd.Flags().Int("parallel", 1, "number of files processed at once")
	cmd.Flags().Bool("force", false, "overwrite existing outputs")
	cmd.Flags().String("passwords-dir", "", "directory of per-PDF password files (unlock)")
	cmd.Flags().String("password", "", "password used when no per-PDF file exists (unlock)")
	return cmd
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opName, _ := cmd.Flags().GetString("op")
	op := types.Operation(opName)
	if !op.Valid() {
		return fmt.Errorf("unknown operation %q (want pdf-to-docx, docx-to-pdf, or unlock)", opName)
	}
	outDir, _ := cmd.Flags().GetString("out-dir")
	parallel, _ := cmd.Flags().GetInt("parallel")
	force, _ := cmd.Flags().GetBool("force")

	var conv convert.Converter
	if op == types.OpUnlock {
		conv, err = unlockConverter(cmd)
		if err != nil {
			return err
		}
	} else {
		conv = &lazyConverter{cfg: cfg, op: op}
	}

	rec := recorder{cfg: cfg.History}
	var results []types.JobResult
	result := convert.ConvertBatch(cmd.Context(), conv, convert.Jobs(op, args, outDir), convert.BatchOptions{
		OutDir:   outDir,
		Parallel: parallel,
		Force:    force,
		OnResult: func(r types.JobResult) { results = append(results, r) },
	}, cmd.OutOrStdout())
	rec.record(cmd.Context(), results...)

	if result.HasFailures() {
		return reported(fmt.Errorf("%d file(s) failed", result.Failed))
	}
	return nil
}

// unlockConverter adapts unlock.Remove to the Converter interface, looking
// up each file's password in the passwords directory.
func unlockConverter(cmd *cobra.Command) (convert.Converter, error) {
	dir, _ := cmd.Flags().GetString("passwords-dir")
	fallback, _ := cmd.Flags().GetString("password")

	passwords := map[string]string{}
	if dir != "" {
		var err error
		if passwords, err = secrets.Load(dir); err != nil {
			return nil, err
		}
	}

	return convert.ConverterFunc(func(_ context.Context, inPath, outPath string) error {
		_, err := unlock.Remove(inPath, outPath, secrets.Lookup(passwords, inPath, fallback))
		return err
	}), nil
}

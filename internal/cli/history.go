// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docflow/internal/fileutil"
	"github.com/pdiddy/docflow/internal/history"
	"github.com/pdiddy/docflow/pkg/types"
)

// NewHistoryCmd returns the command that lists recorded jobs.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded conversion jobs",
		Long: `History lists jobs recorded in the SQLite journal, most recent first.
Recording is off by default; enable it with history.enabled in the config
file, DOCFLOW_HISTORY_ENABLED=true, or --history on a command.`,
		Args: cobra.NoArgs,
		RunE: runHistory,
	}
	cmd.Flags().Int("limit", 20, "maximum number of jobs to list")
	cmd.Flags().String("status", "", "filter by status: converted, skipped, failed")
	cmd.Flags().String("op", "", "filter by operation: pdf-to-docx, docx-to-pdf, unlock")
	cmd.Flags().String("format", "table", "output format: table, yaml, or json")
	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	status, _ := cmd.Flags().GetString("status")
	op, _ := cmd.Flags().GetString("op")
	format, _ := cmd.Flags().GetString("format")

	// Listing must not create the journal.
	if !fileutil.Exists(cfg.History.Path) {
		if f := history.Format(format); f == history.FormatTable || f == "" {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "No history recorded.")
			return err
		}
		return history.Write(cmd.OutOrStdout(), []history.Entry{}, history.Format(format))
	}

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(cmd.Context(), history.ListOptions{
		Limit:  limit,
		Status: types.JobStatus(status),
		Op:     types.Operation(op),
	})
	if err != nil {
		return err
	}
	return history.Write(cmd.OutOrStdout(), entries, history.Format(format))
}

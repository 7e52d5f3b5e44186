// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"go.yaml.in/yaml/v3"
)

// Format selects how entries are written.
type Format string

const (
	FormatTable Format = "table"
	FormatYAML  Format = "yaml"
	FormatJSON  Format = "json"
)

// Write renders entries to w in the given format.
func Write(w io.Writer, entries []Entry, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		return nil
	case FormatTable, "":
		return writeTable(w, entries)
	default:
		return fmt.Errorf("unknown format %q (want table, yaml, or json)", format)
	}
}

func writeTable(w io.Writer, entries []Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No jobs recorded.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tOP\tSTATUS\tDURATION\tINPUT\tOUTPUT")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Started.Local().Format("2006-01-02 15:04:05"), e.Op, e.Status,
			(time.Duration(e.DurationMS) * time.Millisecond).String(), e.Input, e.Output)
	}
	return tw.Flush()
}

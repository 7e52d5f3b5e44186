// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cli builds the cobra commands shared by the standalone
// pdf_to_docx, docx_to_pdf, and remove_pdf_password programs and the
// docflow umbrella binary.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// errReported marks failures whose message the command already printed.
var errReported = errors.New("reported")

// usageError is returned when a command receives the wrong number of
// positional arguments.
type usageError struct {
	cmd *cobra.Command
}

func (e usageError) Error() string {
	return "Usage: " + strings.TrimSuffix(e.cmd.UseLine(), " [flags]")
}

// exactArgs rejects any call without exactly n positional arguments, before
// the command touches the filesystem.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usageError{cmd: cmd}
		}
		return nil
	}
}

// WithConfig prepares a root command: it registers --config and loads the
// configuration before the command (or any subcommand) runs.
func WithConfig(cmd *cobra.Command) *cobra.Command {
	addConfigFlag(cmd)
	cmd.PersistentPreRunE = configPreRun
	return cmd
}

// Standalone prepares cmd as a positional-only program. Every argument,
// including ones that start with a dash, is taken literally, so passwords
// and paths such as "-secret" pass through. Configuration still comes from
// docflow.yaml and the environment.
func Standalone(cmd *cobra.Command) *cobra.Command {
	cmd.ResetFlags()
	cmd.DisableFlagParsing = true
	cmd.PersistentPreRunE = func(*cobra.Command, []string) error {
		return InitConfig("")
	}
	return cmd
}

// Execute runs cmd with os.Args and returns the process exit code: 0 on
// success, 1 on any failure. All diagnostics go to standard output.
func Execute(cmd *cobra.Command) int {
	return execute(cmd, os.Args[1:], os.Stdout)
}

func execute(cmd *cobra.Command, args []string, out io.Writer) int {
	if args == nil {
		// cobra falls back to os.Args for nil.
		args = []string{}
	}
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	err := cmd.Execute()
	if err == nil {
		return 0
	}

	var uerr usageError
	switch {
	case errors.As(err, &uerr):
		fmt.Fprintln(out, uerr.Error())
	case errors.Is(err, errReported):
	default:
		fmt.Fprintf(out, "Error: %v\n", err)
	}
	return 1
}

// reported wraps err so Execute does not print it a second time.
func reported(err error) error {
	return fmt.Errorf("%w: %w", errReported, err)
}

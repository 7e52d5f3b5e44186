// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docflow/internal/fileutil"
	"github.com/pdiddy/docflow/internal/secrets"
	"github.com/pdiddy/docflow/internal/unlock"
	"github.com/pdiddy/docflow/pkg/types"
)

// NewUnlockCmd returns the password removal command under the given name.
func NewUnlockCmd(name string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name + " <input_pdf_path> <output_pdf_path> <password>",
		Short: "Remove the password from a PDF file",
		Long: `Decrypt a password protected PDF and write an unencrypted copy with every
page in its original order. A PDF that is not encrypted is copied through
unchanged. With --password-file or --prompt the password argument is
omitted.`,
		Args: func(cmd *cobra.Command, args []string) error {
			want := 3
			if passwordFromFlags(cmd) {
				want = 2
			}
			return exactArgs(want)(cmd, args)
		},
		RunE: runUnlock,
	}
	cmd.Flags().String("password-file", "", "read the password from this file")
	cmd.Flags().Bool("prompt", false, "prompt for the password without echo")
	cmd.Flags().Bool("history", false, "record the job in the history journal")
	return cmd
}

func passwordFromFlags(cmd *cobra.Command) bool {
	file, _ := cmd.Flags().GetString("password-file")
	prompt, _ := cmd.Flags().GetBool("prompt")
	return file != "" || prompt
}

func resolvePassword(cmd *cobra.Command, args []string) (string, error) {
	if file, _ := cmd.Flags().GetString("password-file"); file != "" {
		return secrets.ReadFile(file)
	}
	if prompt, _ := cmd.Flags().GetBool("prompt"); prompt {
		return secrets.Prompt(int(os.Stdin.Fd()), cmd.OutOrStdout(), "Password")
	}
	return args[2], nil
}

func runUnlock(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	in, out := args[0], args[1]

	if err := fileutil.RequireFile(in); err != nil {
		fmt.Fprintf(w, "Error: The file '%s' was not found.\n", in)
		return reported(err)
	}

	password, err := resolvePassword(cmd, args)
	if err != nil {
		return err
	}

	job := types.Job{Op: types.OpUnlock, Input: in, Output: out, Password: password}
	started := time.Now()
	res, err := unlock.Remove(in, out, password)
	recorder{cfg: cfg.History}.record(cmd.Context(), types.JobResult{
		Job:      job,
		Status:   statusOf(err),
		Err:      err,
		Started:  started,
		Duration: time.Since(started),
	})

	switch {
	case errors.Is(err, unlock.ErrIncorrectPassword):
		fmt.Fprintln(w, "Error: Incorrect password provided.")
		return reported(err)
	case err != nil:
		fmt.Fprintf(w, "An error occurred while removing the password: %v\n", err)
		return reported(err)
	}

	if !res.Encrypted {
		fmt.Fprintf(w, "Note: %s was not encrypted; copied %d page(s) unchanged.\n", in, res.Pages)
	}
	fmt.Fprintf(w, "Successfully removed password from %s\n", in)
	return nil
}

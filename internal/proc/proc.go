// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package proc starts external tools so that cancelling their context ends
// the whole process tree. soffice is a launcher that forks soffice.bin, and
// killing only the launcher leaves the real worker holding our pipes.
package proc

import (
	"context"
	"os/exec"
	"time"
)

// WaitDelay bounds how long Wait keeps reading a cancelled command's
// output pipes after the kill.
const WaitDelay = 5 * time.Second

// Command is exec.CommandContext with the child placed in its own process
// group (where the platform has them). Cancelling ctx kills the group.
func Command(ctx context.Context, name string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = WaitDelay
	killGroupOnCancel(cmd)
	return cmd
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build unix

package proc

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

func killGroupOnCancel(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		if errors.Is(err, syscall.ESRCH) {
			return os.ErrProcessDone
		}
		return err
	}
}

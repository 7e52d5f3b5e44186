// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build !unix

package proc

import "os/exec"

// killGroupOnCancel keeps the default Cancel (kill the direct child);
// WaitDelay still stops Wait from blocking on inherited pipes.
func killGroupOnCancel(*exec.Cmd) {}

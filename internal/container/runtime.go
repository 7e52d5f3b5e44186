// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package container implements container runtime detection and execution
// for running LibreOffice without a local installation.
package container

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/google/uuid"

	"github.com/pdiddy/docflow/internal/proc"
)

const (
	binDocker = "docker"
	binPodman = "podman"
)

// ErrNoRuntime is returned by DetectRuntime when no container runtime works.
var ErrNoRuntime = errors.New("no container runtime available")

// Mount binds a host directory into the container.
type Mount struct {
	Host      string
	Container string
}

func (m Mount) String() string { return m.Host + ":" + m.Container }

// RunSpec describes a single container invocation.
type RunSpec struct {
	// Name is the container name; Run generates one when empty so a
	// cancelled run can be removed.
	Name    string
	Image   string
	Mounts  []Mount
	WorkDir string
	// User is passed as --user (uid:gid) so files written to mounts are
	// owned by the caller rather than root.
	User string
	// Env entries are KEY=VALUE pairs.
	Env []string
	// NoNetwork disables container networking.
	NoNetwork bool
	// Command overrides the image entrypoint arguments.
	Command []string
}

// args builds the argument list after the runtime binary.
func (s RunSpec) args() []string {
	args := []string{"run", "--rm", "-i"}
	if s.Name != "" {
		args = append(args, "--name", s.Name)
	}
	if s.NoNetwork {
		args = append(args, "--network", "none")
	}
	if s.User != "" {
		args = append(args, "--user", s.User)
	}
	for _, e := range s.Env {
		args = append(args, "-e", e)
	}
	for _, m := range s.Mounts {
		args = append(args, "-v", m.String())
	}
	if s.WorkDir != "" {
		args = append(args, "-w", s.WorkDir)
	}
	args = append(args, s.Image)
	return append(args, s.Command...)
}

// Runtime runs one-shot LibreOffice containers.
type Runtime interface {
	// Name is the runtime binary, docker or podman.
	Name() string

	// Available reports whether the binary is on PATH and its daemon or
	// service answers "info".
	Available() bool

	// ImageExists returns nil when image is present locally.
	ImageExists(image string) error

	// Run starts one container for spec and waits for it. Cancelling ctx
	// kills the runtime client process.
	Run(ctx context.Context, spec RunSpec, stdin io.Reader, stdout io.Writer) error
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunSilent(name string, args ...string) error
	RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunSilent(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

func (o *osExecutor) RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error {
	var stderr bytes.Buffer
	cmd := proc.Command(ctx, name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

// runtime implements Runtime for docker and podman, which accept the same
// run flags and differ in how an image is checked.
type runtime struct {
	bin        string
	imageCheck []string
	exec       executor
}

func (r *runtime) Name() string { return r.bin }

func (r *runtime) Available() bool {
	if _, err := r.exec.LookPath(r.bin); err != nil {
		return false
	}
	return r.exec.RunSilent(r.bin, "info") == nil
}

func (r *runtime) ImageExists(image string) error {
	args := append(append([]string{}, r.imageCheck...), image)
	if err := r.exec.RunSilent(r.bin, args...); err != nil {
		return fmt.Errorf("image %s not found in %s (build it with `mage image`): %w", image, r.bin, err)
	}
	return nil
}

func (r *runtime) Run(ctx context.Context, spec RunSpec, stdin io.Reader, stdout io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if spec.Name == "" {
		spec.Name = "docflow-" + uuid.NewString()
	}
	if err := r.exec.RunPiped(ctx, r.bin, spec.args(), stdin, stdout); err != nil {
		if ctx.Err() != nil {
			// Killing the client does not stop the container.
			_ = r.exec.RunSilent(r.bin, "rm", "-f", spec.Name)
			return fmt.Errorf("running %s container %s: %w", r.bin, spec.Image, ctx.Err())
		}
		return fmt.Errorf("running %s container %s: %w", r.bin, spec.Image, err)
	}
	return nil
}

func newDockerRuntime(exec executor) *runtime {
	return &runtime{
		bin:        binDocker,
		imageCheck: []string{"image", "inspect"},
		exec:       exec,
	}
}

func newPodmanRuntime(exec executor) *runtime {
	return &runtime{
		bin:        binPodman,
		imageCheck: []string{"image", "exists"},
		exec:       exec,
	}
}

var defaultExec = &osExecutor{}

// DetectRuntime returns docker when it is operational and podman otherwise.
func DetectRuntime() (Runtime, error) {
	return detectRuntime(defaultExec)
}

func detectRuntime(exec executor) (Runtime, error) {
	docker := newDockerRuntime(exec)
	if docker.Available() {
		return docker, nil
	}

	podman := newPodmanRuntime(exec)
	if podman.Available() {
		return podman, nil
	}

	return nil, fmt.Errorf("%w: neither %s nor %s is operational", ErrNoRuntime, binDocker, binPodman)
}

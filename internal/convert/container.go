// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdiddy/docflow/internal/container"
	"github.com/pdiddy/docflow/internal/fileutil"
	"github.com/pdiddy/docflow/internal/office"
)

// DefaultImage is the container image used when none is configured. It
// must provide soffice on PATH.
const DefaultImage = "docflow-office:latest"

const workDir = "/work"

// ContainerConverter converts documents by running LibreOffice inside a
// container. It depends on a container.Runtime (docker or podman) injected
// at construction time.
type ContainerConverter struct {
	runtime container.Runtime
	image   string
	target  office.Target
}

// NewContainerConverter creates a converter that uses the given container
// runtime to run image. It verifies that the image exists locally before
// returning.
func NewContainerConverter(rt container.Runtime, image string, target office.Target) (*ContainerConverter, error) {
	if image == "" {
		image = DefaultImage
	}
	if err := rt.ImageExists(image); err != nil {
		return nil, fmt.Errorf("office image not available in %s: %w", rt.Name(), err)
	}
	return &ContainerConverter{runtime: rt, image: image, target: target}, nil
}

// Convert copies inPath into a scratch directory mounted at /work, runs
// soffice in the container, and moves the result to outPath.
func (c *ContainerConverter) Convert(ctx context.Context, inPath, outPath string) error {
	scratch, err := os.MkdirTemp("", "docflow-ctr-*")
	if err != nil {
		return fmt.Errorf("creating scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	name := filepath.Base(inPath)
	if err := copyFile(inPath, filepath.Join(scratch, name)); err != nil {
		return err
	}

	outDir := path.Join(workDir, "out")
	spec := container.RunSpec{
		Image:     c.image,
		Mounts:    []container.Mount{{Host: scratch, Container: workDir}},
		WorkDir:   workDir,
		User:      hostUser(),
		Env:       []string{"HOME=/tmp"},
		NoNetwork: true,
		Command:   append([]string{"soffice"}, c.target.Args(path.Join(workDir, name), outDir, "")...),
	}

	var console strings.Builder
	if err := c.runtime.Run(ctx, spec, nil, &console); err != nil {
		return fmt.Errorf("converting %s in %s: %w", inPath, c.runtime.Name(), err)
	}

	produced := c.target.OutputPath(name, filepath.Join(scratch, "out"))
	if !fileutil.Exists(produced) {
		msg := strings.TrimSpace(console.String())
		if msg == "" {
			msg = "no output from LibreOffice"
		}
		return fmt.Errorf("container produced no %s output for %s: %s", c.target.Ext, inPath, msg)
	}

	if err := fileutil.ReplaceFile(produced, outPath); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	return nil
}

// hostUser returns uid:gid of the current process, or "" where the
// platform has no numeric ids.
func hostUser() string {
	uid, gid := os.Getuid(), os.Getgid()
	if uid < 0 || gid < 0 {
		return ""
	}
	return strconv.Itoa(uid) + ":" + strconv.Itoa(gid)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return out.Close()
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package office locates and drives a headless LibreOffice (soffice) process.
package office

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pdiddy/docflow/internal/proc"
)

// ErrNotInstalled is returned when no soffice binary can be found.
var ErrNotInstalled = errors.New("LibreOffice (soffice) not found")

// Target describes a LibreOffice export: the output extension, the
// --convert-to filter, and an optional import filter.
type Target struct {
	Ext      string
	Filter   string
	InFilter string
}

var (
	// TargetPDF exports a Writer document (DOCX, ODT, DOC) to PDF.
	TargetPDF = Target{Ext: "pdf", Filter: "pdf:writer_pdf_Export"}

	// TargetDOCX imports a PDF into Writer and saves it as Office Open XML.
	TargetDOCX = Target{Ext: "docx", Filter: "docx:MS Word 2007 XML", InFilter: "writer_pdf_import"}
)

// Args returns the soffice arguments that convert input into outDir.
// profileDir isolates the LibreOffice user profile so concurrent runs do
// not contend for the same lock file.
func (t Target) Args(input, outDir, profileDir string) []string {
	args := []string{"--headless", "--norestore", "--nolockcheck"}
	if profileDir != "" {
		p := filepath.ToSlash(profileDir)
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		u := url.URL{Scheme: "file", Path: p}
		args = append(args, "-env:UserInstallation="+u.String())
	}
	if t.InFilter != "" {
		args = append(args, "--infilter="+t.InFilter)
	}
	return append(args, "--convert-to", t.Filter, "--outdir", outDir, input)
}

// OutputPath returns where soffice writes the converted copy of input.
func (t Target) OutputPath(input, outDir string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(outDir, base+"."+t.Ext)
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Stat(path string) error
	Run(ctx context.Context, name string, args []string, out io.Writer) error
}

type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Stat(path string) error {
	_, err := os.Stat(path)
	return err
}

func (o *osExecutor) Run(ctx context.Context, name string, args []string, out io.Writer) error {
	cmd := proc.Command(ctx, name, args...)
	cmd.Stdout = out
	cmd.Stderr = out
	return cmd.Run()
}

// Office runs conversions with a single soffice binary.
type Office struct {
	bin  string
	exec executor
}

// New locates soffice and returns an Office bound to it. An explicit path
// takes precedence over the PATH search and platform install locations.
func New(path string) (*Office, error) {
	return newOffice(path, &osExecutor{}, runtime.GOOS)
}

func newOffice(path string, exec executor, goos string) (*Office, error) {
	bin, err := locate(path, exec, goos)
	if err != nil {
		return nil, err
	}
	return &Office{bin: bin, exec: exec}, nil
}

// Bin returns the soffice binary in use.
func (o *Office) Bin() string { return o.bin }

// Convert runs soffice to convert input into outDir and returns the path of
// the file it produced. LibreOffice often reports problems only on its
// console output, so that output is attached to any error.
func (o *Office) Convert(ctx context.Context, input, outDir string, target Target) (string, error) {
	profile, err := os.MkdirTemp("", "docflow-lo-*")
	if err != nil {
		return "", fmt.Errorf("creating LibreOffice profile directory: %w", err)
	}
	defer os.RemoveAll(profile)

	var out bytes.Buffer
	runErr := o.exec.Run(ctx, o.bin, target.Args(input, outDir, profile), &out)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", fmt.Errorf("soffice did not finish: %w", ctxErr)
	}
	if runErr != nil {
		return "", fmt.Errorf("soffice failed: %w%s", runErr, detail(out.String()))
	}

	produced := target.OutputPath(input, outDir)
	if err := o.exec.Stat(produced); err != nil {
		return "", fmt.Errorf("soffice produced no %s output%s", target.Ext, detail(out.String()))
	}
	return produced, nil
}

func detail(output string) string {
	output = strings.TrimSpace(output)
	if output == "" {
		return ""
	}
	return ": " + output
}

// locate resolves the soffice binary.
func locate(path string, exec executor, goos string) (string, error) {
	if path != "" {
		if err := exec.Stat(path); err != nil {
			return "", fmt.Errorf("could not find soffice at %s: %w", path, ErrNotInstalled)
		}
		return path, nil
	}

	for _, name := range []string{"soffice", "libreoffice"} {
		if p, err := exec.LookPath(name); err == nil {
			return p, nil
		}
	}

	for _, p := range installPaths(goos) {
		if exec.Stat(p) == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("%w: install LibreOffice or set SOFFICE_PATH", ErrNotInstalled)
}

// installPaths lists the default LibreOffice locations per platform.
func installPaths(goos string) []string {
	switch goos {
	case "windows":
		return []string{
			`C:\Program Files\LibreOffice\program\soffice.exe`,
			`C:\Program Files (x86)\LibreOffice\program\soffice.exe`,
		}
	case "darwin":
		return []string{"/Applications/LibreOffice.app/Contents/MacOS/soffice"}
	default:
		return []string{
			"/usr/lib/libreoffice/program/soffice",
			"/opt/libreoffice/program/soffice",
			"/snap/bin/libreoffice",
		}
	}
}

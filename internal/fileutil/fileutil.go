// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fileutil holds the file existence checks and output placement
// shared by the converters and the password remover.
package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrNotFound is returned when a required input file does not exist.
var ErrNotFound = errors.New("file not found")

// RequireFile returns an error wrapping ErrNotFound when path does not exist
// or names a directory.
func RequireFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return fmt.Errorf("checking %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory: %w", path, ErrNotFound)
	}
	return nil
}

// Exists reports whether a regular file exists at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// TempFileBeside creates an empty temporary file in the directory of dst so
// that ReplaceFile can rename it into place on the same filesystem.
func TempFileBeside(dst string) (*os.File, error) {
	dir := filepath.Dir(dst)
	f, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("creating temporary file in %s: %w", dir, err)
	}
	return f, nil
}

// ReplaceFile moves src onto dst, overwriting dst. When a rename is not
// possible (different filesystems) it copies and removes src instead.
func ReplaceFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", dst, err)
	}
	in.Close()
	return os.Remove(src)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets obtains PDF passwords without putting them on the command
// line: from a single file, from a directory of per-document files, or from
// an interactive prompt.
//
// A password directory holds one file per PDF. The file name without its
// extension matches the PDF base name (report.pdf -> report or report.txt)
// and the contents are the password. Only the trailing line break is
// removed; passwords are otherwise forwarded verbatim.
package secrets

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"
)

// ErrEmpty is returned when a password source yields an empty password.
var ErrEmpty = errors.New("password is empty")

// Load reads all files in dir and returns a map of document base name to
// password. A missing directory is not an error; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading password directory %s: %w", dir, err)
	}

	passwords := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read password file %s: %v\n", name, err)
			continue
		}

		if value := trimLine(string(data)); value != "" {
			passwords[strings.TrimSuffix(name, filepath.Ext(name))] = value
		}
	}

	return passwords, nil
}

// Lookup returns the password for the PDF at path, or fallback when the
// map has none.
func Lookup(passwords map[string]string, path, fallback string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if v, ok := passwords[base]; ok {
		return v
	}
	return fallback
}

// ReadFile returns the password stored in the file at path.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading password file: %w", err)
	}
	value := trimLine(string(data))
	if value == "" {
		return "", fmt.Errorf("%s: %w", path, ErrEmpty)
	}
	return value, nil
}

// Prompt writes prompt to w and reads a password from the terminal on fd
// without echoing it.
func Prompt(fd int, w io.Writer, prompt string) (string, error) {
	if !term.IsTerminal(fd) {
		return "", errors.New("cannot prompt for password: standard input is not a terminal")
	}
	fmt.Fprint(w, prompt+": ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	if len(b) == 0 {
		return "", ErrEmpty
	}
	return string(b), nil
}

// trimLine removes one trailing line break (LF or CRLF).
func trimLine(s string) string {
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r")
}

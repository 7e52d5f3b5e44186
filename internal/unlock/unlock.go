// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package unlock removes password protection from PDF files. Decryption and
// serialization are done by pdfcpu; this package only decides what to do
// with the document and where the result goes.
package unlock

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/text/secure/precis"
	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/docflow/internal/fileutil"
)

var (
	// ErrIncorrectPassword is returned when the password unlocks nothing.
	ErrIncorrectPassword = errors.New("incorrect password")

	// ErrPageCount is returned when the written document does not carry
	// every page of the input.
	ErrPageCount = errors.New("page count mismatch")

	// ErrUnsupportedPassword is returned for AES-256 documents whose
	// password contains runes pdfcpu refuses before hashing, such as
	// spaces. The password may well be correct; it cannot be checked.
	ErrUnsupportedPassword = errors.New("password contains characters that cannot be used to open AES-256 documents")
)

// aes256Profile is the string profile pdfcpu applies to revision 5 and 6
// passwords before hashing them.
var aes256Profile = precis.NewIdentifier(precis.BidiRule, precis.Norm(norm.NFKC))

// readError classifies a pdfcpu failure to open or decrypt in.
func readError(in, password string, err error) error {
	if errors.Is(err, pdfcpu.ErrWrongPassword) {
		return fmt.Errorf("%s: %w", in, ErrIncorrectPassword)
	}
	if _, perr := aes256Profile.String(password); perr != nil && strings.Contains(err.Error(), perr.Error()) {
		return fmt.Errorf("%s: %w (%v)", in, ErrUnsupportedPassword, err)
	}
	return fmt.Errorf("reading %s: %w", in, err)
}

// Result describes a completed password removal.
type Result struct {
	// Encrypted reports whether the input was password protected.
	Encrypted bool
	// Pages is the page count of both input and output.
	Pages int
}

var disableConfigDir sync.Once

// newConfig returns a pdfcpu configuration that tries password both as the
// user and the owner password. Output avoids object and xref streams so the
// result opens in the widest range of readers.
func newConfig(password string) *model.Configuration {
	// pdfcpu would otherwise create a config directory under the user's home.
	disableConfigDir.Do(api.DisableConfigDir)

	conf := model.NewDefaultConfiguration()
	conf.UserPW = password
	conf.OwnerPW = password
	conf.WriteObjectStream = false
	conf.WriteXRefStream = false
	return conf
}

// Remove reads the PDF at in, decrypts it with password when it is
// encrypted, and writes every page in original order to out without
// encryption. A non-encrypted input is copied through unchanged. The output
// is written beside out and renamed into place only on success, so a wrong
// password leaves no file behind.
func Remove(in, out, password string) (Result, error) {
	if err := fileutil.RequireFile(in); err != nil {
		return Result{}, err
	}

	f, err := os.Open(in)
	if err != nil {
		return Result{}, fmt.Errorf("opening %s: %w", in, err)
	}
	defer f.Close()

	ctx, err := api.ReadContext(f, newConfig(password))
	if err != nil {
		return Result{}, readError(in, password, err)
	}

	res := Result{Encrypted: ctx.Encrypt != nil}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return Result{}, fmt.Errorf("rewinding %s: %w", in, err)
	}
	if res.Pages, err = api.PageCount(f, newConfig(password)); err != nil {
		return Result{}, fmt.Errorf("counting pages of %s: %w", in, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return Result{}, fmt.Errorf("rewinding %s: %w", in, err)
	}

	tmp, err := fileutil.TempFileBeside(out)
	if err != nil {
		return Result{}, err
	}
	defer os.Remove(tmp.Name())

	if res.Encrypted {
		err = api.Decrypt(f, tmp, newConfig(password))
	} else {
		err = api.Optimize(f, tmp, newConfig(""))
	}
	if err != nil {
		tmp.Close()
		if errors.Is(err, pdfcpu.ErrWrongPassword) {
			return Result{}, fmt.Errorf("%s: %w", in, ErrIncorrectPassword)
		}
		return Result{}, fmt.Errorf("writing unlocked copy of %s: %w", in, err)
	}
	if err := tmp.Close(); err != nil {
		return Result{}, fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}

	n, err := PageCount(tmp.Name())
	if err != nil {
		return Result{}, err
	}
	if n != res.Pages {
		return Result{}, fmt.Errorf("%s has %d pages, %s has %d: %w", in, res.Pages, out, n, ErrPageCount)
	}

	if err := fileutil.ReplaceFile(tmp.Name(), out); err != nil {
		return Result{}, fmt.Errorf("writing %s: %w", out, err)
	}
	return res, nil
}

// PageCount returns the number of pages of the unencrypted PDF at path.
func PageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	n, err := api.PageCount(f, newConfig(""))
	if err != nil {
		return 0, fmt.Errorf("counting pages of %s: %w", path, err)
	}
	return n, nil
}

// IsEncrypted reports whether the PDF at path is password protected.
// Files that open with an empty user password still count as encrypted.
func IsEncrypted(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	ctx, err := api.ReadContext(f, newConfig(""))
	if err != nil {
		if errors.Is(err, pdfcpu.ErrWrongPassword) {
			return true, nil
		}
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	return ctx.Encrypt != nil, nil
}

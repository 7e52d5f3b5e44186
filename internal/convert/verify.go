// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var errNoPages = errors.New("PDF has no pages")

var disableConfigDir sync.Once

// VerifyPDF opens the PDF at path and returns its page count. A file that
// cannot be parsed or has no pages is an error. This is an opt-in content
// check on top of the existence post-condition.
func VerifyPDF(path string) (int, error) {
	disableConfigDir.Do(api.DisableConfigDir)

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("verifying %s: %w", path, err)
	}
	defer f.Close()

	n, err := api.PageCount(f, model.NewDefaultConfiguration())
	if err != nil {
		return 0, fmt.Errorf("verifying %s: %w", path, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("verifying %s: %w", path, errNoPages)
	}
	return n, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"os"

	"github.com/pdiddy/docflow/internal/fileutil"
	"github.com/pdiddy/docflow/internal/office"
)

// officeRunner is the part of office.Office the converter depends on.
type officeRunner interface {
	Convert(ctx context.Context, input, outDir string, target office.Target) (string, error)
}

// OfficeConverter converts documents with a locally installed LibreOffice.
// soffice always names its output after the input, so each conversion runs
// into a scratch directory and the result is moved to the requested path.
type OfficeConverter struct {
	office officeRunner
	target office.Target
}

// NewOfficeConverter creates a converter that exports to target using the
// given LibreOffice installation.
func NewOfficeConverter(o *office.Office, target office.Target) *OfficeConverter {
	return &OfficeConverter{office: o, target: target}
}

// Convert runs soffice on inPath and places the result at outPath.
func (c *OfficeConverter) Convert(ctx context.Context, inPath, outPath string) error {
	scratch, err := os.MkdirTemp("", "docflow-out-*")
	if err != nil {
		return fmt.Errorf("creating scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	produced, err := c.office.Convert(ctx, inPath, scratch, c.target)
	if err != nil {
		return fmt.Errorf("converting %s: %w", inPath, err)
	}

	if err := fileutil.ReplaceFile(produced, outPath); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	return nil
}

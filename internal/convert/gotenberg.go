// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/docflow/internal/fileutil"
	"github.com/pdiddy/docflow/internal/httputil"
)

const gotenbergConvertPath = "/forms/libreoffice/convert"

// GotenbergConverter converts office documents to PDF by posting them to a
// Gotenberg service, which runs LibreOffice server-side. Gotenberg has no
// PDF import route, so only the DOCX->PDF direction is available.
type GotenbergConverter struct {
	client     *http.Client
	baseURL    string
	maxRetries int
}

// NewGotenbergConverter creates a converter for the service at baseURL.
func NewGotenbergConverter(client *http.Client, baseURL string, maxRetries int) *GotenbergConverter {
	if client == nil {
		client = http.DefaultClient
	}
	return &GotenbergConverter{
		client:     client,
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxRetries: maxRetries,
	}
}

// Convert uploads inPath and writes the returned PDF to outPath.
func (g *GotenbergConverter) Convert(ctx context.Context, inPath, outPath string) error {
	if strings.EqualFold(filepath.Ext(inPath), ".pdf") {
		return fmt.Errorf("gotenberg cannot convert PDF input %s: %w", inPath, ErrUnsupported)
	}

	body, contentType, err := multipartFile("files", inPath)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+gotenbergConvertPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building gotenberg request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := httputil.DoWithRetry(ctx, g.client, req, g.maxRetries)
	if err != nil {
		return fmt.Errorf("posting %s to gotenberg: %w", inPath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("gotenberg returned %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	tmp, err := fileutil.TempFileBeside(outPath)
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("reading gotenberg response: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	return fileutil.ReplaceFile(tmp.Name(), outPath)
}

// multipartFile encodes the file at path as a single form field.
func multipartFile(field, path string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return nil, "", fmt.Errorf("building form: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", path, err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("building form: %w", err)
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}

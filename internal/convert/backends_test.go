// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docflow/internal/container"
	"github.com/pdiddy/docflow/internal/office"
	"github.com/pdiddy/docflow/internal/pdftest"
)

// fakeOffice stands in for office.Office, writing a file where soffice would.
type fakeOffice struct {
	err    error
	target office.Target
}

func (f *fakeOffice) Convert(_ context.Context, input, outDir string, target office.Target) (string, error) {
	f.target = target
	if f.err != nil {
		return "", f.err
	}
	produced := target.OutputPath(input, outDir)
	return produced, os.WriteFile(produced, []byte("converted "+filepath.Base(input)), 0o644)
}

func TestOfficeConverter(t *testing.T) {
	inPath, tmpDir := setupInput(t, "report.pdf")
	outPath := filepath.Join(tmpDir, "final name.docx")

	fo := &fakeOffice{}
	c := &OfficeConverter{office: fo, target: office.TargetDOCX}
	require.NoError(t, c.Convert(context.Background(), inPath, outPath))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "converted report.pdf", string(data))
	assert.Equal(t, office.TargetDOCX, fo.target)

	c = &OfficeConverter{office: &fakeOffice{err: errors.New("soffice failed: exit status 1")}, target: office.TargetDOCX}
	err = c.Convert(context.Background(), inPath, filepath.Join(tmpDir, "other.docx"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exit status 1")
	assert.NoFileExists(t, filepath.Join(tmpDir, "other.docx"))
}

// fakeRuntime implements container.Runtime. Run simulates soffice inside
// the container by writing into the mounted host directory.
type fakeRuntime struct {
	imageOK bool
	produce bool
	spec    container.RunSpec
}

func (f *fakeRuntime) Name() string    { return "docker" }
func (f *fakeRuntime) Available() bool { return true }

func (f *fakeRuntime) ImageExists(image string) error {
	if f.imageOK {
		return nil
	}
	return errors.New("no such image: " + image)
}

func (f *fakeRuntime) Run(_ context.Context, spec container.RunSpec, _ io.Reader, stdout io.Writer) error {
	f.spec = spec
	if !f.produce {
		_, _ = io.WriteString(stdout, "Error: source file could not be loaded")
		return nil
	}
	host := spec.Mounts[0].Host
	if err := os.MkdirAll(filepath.Join(host, "out"), 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(host, "out", "letter.pdf"), []byte("%PDF"), 0o644)
}

func TestContainerConverter(t *testing.T) {
	_, err := NewContainerConverter(&fakeRuntime{}, "", office.TargetPDF)
	require.Error(t, err)
	assert.Contains(t, err.Error(), DefaultImage)

	inPath, tmpDir := setupInput(t, "letter.docx")
	rt := &fakeRuntime{imageOK: true, produce: true}
	c, err := NewContainerConverter(rt, "", office.TargetPDF)
	require.NoError(t, err)

	outPath := filepath.Join(tmpDir, "letter.pdf")
	require.NoError(t, c.Convert(context.Background(), inPath, outPath))
	assert.FileExists(t, outPath)

	assert.Equal(t, DefaultImage, rt.spec.Image)
	assert.Equal(t, "/work", rt.spec.Mounts[0].Container)
	assert.True(t, rt.spec.NoNetwork)
	assert.Equal(t, hostUser(), rt.spec.User)
	assert.Equal(t, "soffice", rt.spec.Command[0])
	assert.Equal(t, "/work/letter.docx", rt.spec.Command[len(rt.spec.Command)-1])
	assert.NoDirExists(t, rt.spec.Mounts[0].Host, "scratch directory should be removed")
}

func TestContainerConverter_NoOutput(t *testing.T) {
	inPath, tmpDir := setupInput(t, "letter.docx")
	c, err := NewContainerConverter(&fakeRuntime{imageOK: true}, "custom:1", office.TargetPDF)
	require.NoError(t, err)

	err = c.Convert(context.Background(), inPath, filepath.Join(tmpDir, "letter.pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source file could not be loaded")
}

func TestGotenbergConverter(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/forms/libreoffice/convert" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mediaType != "multipart/form-data" {
			http.Error(w, "expected multipart", http.StatusBadRequest)
			return
		}
		f, hdr, err := r.FormFile("files")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		if hdr.Filename != "letter.docx" {
			http.Error(w, "unexpected filename "+hdr.Filename, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(pdftest.Build(2))
	}))
	defer ts.Close()

	inPath, tmpDir := setupInput(t, "letter.docx")
	outPath := filepath.Join(tmpDir, "letter.pdf")

	g := NewGotenbergConverter(ts.Client(), ts.URL+"/", 1)
	require.NoError(t, g.Convert(context.Background(), inPath, outPath))

	pages, err := VerifyPDF(outPath)
	require.NoError(t, err)
	assert.Equal(t, 2, pages)
}

func TestGotenbergConverter_Errors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "LibreOffice failed to process a document", http.StatusBadRequest)
	}))
	defer ts.Close()

	g := NewGotenbergConverter(ts.Client(), ts.URL, 1)

	inPath, tmpDir := setupInput(t, "letter.docx")
	err := g.Convert(context.Background(), inPath, filepath.Join(tmpDir, "letter.pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to process")
	assert.NoFileExists(t, filepath.Join(tmpDir, "letter.pdf"))

	pdfIn, _ := setupInput(t, "scan.pdf")
	err = g.Convert(context.Background(), pdfIn, filepath.Join(tmpDir, "scan.docx"))
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestVerifyPDF(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.pdf")
	pdftest.Write(t, good, 3)
	pages, err := VerifyPDF(good)
	require.NoError(t, err)
	assert.Equal(t, 3, pages)

	bad := filepath.Join(dir, "bad.pdf")
	require.NoError(t, os.WriteFile(bad, []byte("not a pdf at all"), 0o644))
	_, err = VerifyPDF(bad)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "bad.pdf"))
}

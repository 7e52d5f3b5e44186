// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdftest builds small PDF fixtures for tests. Every page gets a
// distinct MediaBox width (PageWidth(i)) so page order can be checked after
// a round trip.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"testing"

	"rsc.io/pdf"
)

// PageWidth returns the MediaBox width given to the page at zero-based index i.
func PageWidth(i int) float64 { return float64(200 + 10*i) }

// Build returns a valid, unencrypted PDF with the given number of pages.
func Build(pages int) []byte {
	var buf bytes.Buffer
	var offsets []int

	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")

	kids := make([]string, pages)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R", 3+2*i)
	}
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages))

	for i := 0; i < pages; i++ {
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %d 300] /Resources << >> /Contents %d 0 R >>",
			int(PageWidth(i)), 4+2*i))
		content := "q Q"
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

// Write creates a PDF with the given number of pages at path.
func Write(t testing.TB, path string, pages int) {
	t.Helper()
	if err := os.WriteFile(path, Build(pages), 0o644); err != nil {
		t.Fatal(err)
	}
}

// PageWidths opens an unencrypted PDF and returns the MediaBox width of
// each page in order.
func PageWidths(t testing.TB, path string) []float64 {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		t.Fatal(err)
	}
	r, err := pdf.NewReader(f, info.Size())
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	widths := make([]float64, r.NumPage())
	for i := range widths {
		box := r.Page(i + 1).V.Key("MediaBox")
		widths[i] = box.Index(2).Float64()
	}
	return widths
}

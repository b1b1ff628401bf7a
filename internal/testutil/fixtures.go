// fixtures.go - Shared test fixtures
package testutil

import (
	"bytes"
	"mime/multipart"
	"os"
	"testing"
)

// minimalPDF is a syntactically valid single-page PDF. It is enough
// for code paths that only stat, copy or name files; rendering tests
// need real documents and stub the renderer instead.
const minimalPDF = `%PDF-1.4
1 0 obj << /Type /Catalog /Pages 2 0 R >> endobj
2 0 obj << /Type /Pages /Kids [3 0 R] /Count 1 >> endobj
3 0 obj << /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >> endobj
xref
0 4
0000000000 65535 f
0000000009 00000 n
0000000058 00000 n
0000000115 00000 n
trailer << /Size 4 /Root 1 0 R >>
startxref
186
%%EOF
`

// WritePDF writes a minimal PDF fixture to path.
func WritePDF(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(minimalPDF), 0o644); err != nil {
		t.Fatalf("writing PDF fixture: %v", err)
	}
}

// PDFBytes returns the minimal PDF fixture as a byte slice.
func PDFBytes() []byte {
	return []byte(minimalPDF)
}

// MultipartPDFs builds a multipart/form-data body carrying one PDF
// fixture per name under the "files" field. Returns the body and the
// content type.
func MultipartPDFs(t *testing.T, names ...string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for _, name := range names {
		fw, err := mw.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("building multipart body: %v", err)
		}
		if _, err := fw.Write([]byte(minimalPDF)); err != nil {
			t.Fatalf("writing multipart part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}
	return body, mw.FormDataContentType()
}

// MultipartFile builds a multipart body with a single arbitrary file.
func MultipartFile(t *testing.T, field, name string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	fw, err := mw.CreateFormFile(field, name)
	if err != nil {
		t.Fatalf("building multipart body: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("writing multipart part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}
	return body, mw.FormDataContentType()
}

// LargeBytes returns n bytes of filler for size-limit tests.
func LargeBytes(n int) []byte {
	return bytes.Repeat([]byte{'x'}, n)
}

package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestTextFromDocxDeclaredAsZip(t *testing.T) {
	data := buildDocx(t, `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`+
		`<w:p><w:r><w:t>1. Term.</w:t></w:r></w:p>`+
		`<w:p><w:r><w:t>This Agreement lasts two years.</w:t></w:r></w:p>`+
		`</w:body></w:document>`)

	got, err := Text(context.Background(), data, "application/zip", "nda.docx")
	require.NoError(t, err)
	assert.Equal(t, "1. Term.\nThis Agreement lasts two years.", got)
}

func TestTextPlain(t *testing.T) {
	got, err := Text(context.Background(), []byte("Governing law: Delaware."), "text/plain; charset=utf-8", "terms.txt")
	require.NoError(t, err)
	assert.Equal(t, "Governing law: Delaware.", got)

	got, err = Text(context.Background(), []byte("fee\xff due"), "", "terms.txt")
	require.NoError(t, err)
	assert.Equal(t, "fee due", got)
}

func TestTextRejectsPlainZip(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("notes.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = Text(context.Background(), buf.Bytes(), "application/zip", "notes.zip")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestTextLegacyDocIsNotReadLocally(t *testing.T) {
	_, err := Text(context.Background(), []byte{0xD0, 0xCF, 0x11, 0xE0}, "application/octet-stream", "old.doc")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestTextBrokenPDF(t *testing.T) {
	_, err := Text(context.Background(), []byte("%PDF-1.4 not really"), MimePDF, "x.pdf")
	assert.Error(t, err)
}

func TestNormalizeMimeType(t *testing.T) {
	cases := []struct {
		mime, name, want string
	}{
		{"application/pdf", "a.bin", MimePDF},
		{"text/markdown", "a.md", MimeText},
		{"application/octet-stream", "A.PDF", MimePDF},
		{"", "contract.docx", MimeDOCX},
		{"application/octet-stream", "contract.doc", MimeDOC},
		{"image/png", "scan.png", "image/png"},
		{"", "noext", "application/octet-stream"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeMimeType(tc.mime, tc.name, nil), tc.name)
	}
}

func TestTextHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Text(ctx, []byte("x"), MimeText, "a.txt")
	assert.ErrorIs(t, err, context.Canceled)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>AI: What is 2+2?</w:t></w:r></w:p>
    <w:p><w:r><w:t xml:space="preserve">Student: </w:t></w:r><w:r><w:t>4</w:t></w:r></w:p>
    <w:p><w:r><w:br w:type="page"/><w:t>AI:</w:t><w:tab/><w:t>Good.</w:t></w:r></w:p>
  </w:body>
</w:document>`

func docx(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func write(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoad_Text(t *testing.T) {
	path := write(t, t.TempDir(), "chat.TXT", []byte("\xef\xbb\xbfAI: hi\r\nStudent: h\xffey"))
	text, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "AI: hi\r\nStudent: hey", text)
}

func TestLoad_Docx(t *testing.T) {
	path := write(t, t.TempDir(), "chat.docx", docx(t, map[string]string{
		"[Content_Types].xml": "<Types/>",
		"word/document.xml":   documentXML,
	}))
	text, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "AI: What is 2+2?\nStudent: 4\n\fAI:\tGood.", text)
}

func TestLoad_DocxErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(write(t, dir, "nozip.docx", []byte("plain text")))
	assert.ErrorContains(t, err, "open docx zip")

	_, err = Load(write(t, dir, "nodoc.docx", docx(t, map[string]string{"word/other.xml": "<x/>"})))
	assert.ErrorContains(t, err, "document.xml not found")

	_, err = Load(write(t, dir, "badxml.docx", docx(t, map[string]string{"word/document.xml": "<w:p><w:t>x</w:p>"})))
	assert.ErrorContains(t, err, "decode document.xml")
}

func TestLoad_PDFMalformed(t *testing.T) {
	_, err := Load(write(t, t.TempDir(), "broken.pdf", []byte("%PDF-1.4 not really")))
	assert.Error(t, err)
}

func TestLoad_Unsupported(t *testing.T) {
	_, err := Load(write(t, t.TempDir(), "chat.rtf", []byte("{\\rtf1}")))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "gone.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.docx", "a.txt", "c.pdf", "notes.md", ".hidden.txt", "~$lock.docx"} {
		write(t, dir, name, nil)
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.txt"), 0o755))

	got, err := List(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.docx"),
		filepath.Join(dir, "c.pdf"),
	}, got)
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("x.Docx"))
	assert.True(t, Supported("x.pdf"))
	assert.False(t, Supported("x.doc"))
	assert.False(t, Supported("README"))
}

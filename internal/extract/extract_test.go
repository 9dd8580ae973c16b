package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"
)

func buildZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("write zip entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

const docxDocumentXML = `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second paragraph.</w:t></w:r></w:p>
  </w:body>
</w:document>`

const odtContentXML = `<?xml version="1.0"?>
<office:document-content xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0"
    xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0">
  <office:body>
    <office:text>
      <text:p>Open document text.</text:p>
      <text:p>Another line.</text:p>
    </office:text>
  </office:body>
</office:document-content>`

func TestExtractTextFromBytesDOCX(t *testing.T) {
	data := buildZip(t, map[string]string{"word/document.xml": docxDocumentXML})

	text, err := ExtractTextFromBytes(context.Background(), data, "application/zip", "essay.docx")
	if err != nil {
		t.Fatalf("ExtractTextFromBytes: %v", err)
	}
	if !strings.Contains(text, "First paragraph.") || !strings.Contains(text, "Second paragraph.") {
		t.Fatalf("extracted text = %q", text)
	}
}

func TestExtractTextFromBytesODT(t *testing.T) {
	data := buildZip(t, map[string]string{
		"mimetype":    "application/vnd.oasis.opendocument.text",
		"content.xml": odtContentXML,
	})

	text, err := ExtractTextFromBytes(context.Background(), data, "application/zip", "notes.odt")
	if err != nil {
		t.Fatalf("ExtractTextFromBytes: %v", err)
	}
	if !strings.Contains(text, "Open document text.") || !strings.Contains(text, "Another line.") {
		t.Fatalf("extracted text = %q", text)
	}
}

func TestExtractTextFromBytesPlainText(t *testing.T) {
	body := "Просто текст.\nВторая строка."
	text, err := ExtractTextFromBytes(context.Background(), []byte(body), "text/plain; charset=utf-8", "notes.txt")
	if err != nil {
		t.Fatalf("ExtractTextFromBytes: %v", err)
	}
	if text != body {
		t.Fatalf("plain text altered: %q", text)
	}
}

func TestExtractTextFromBytesMarkdownByExtension(t *testing.T) {
	body := "# Title\n\nSome markdown."
	text, err := ExtractTextFromBytes(context.Background(), []byte(body), "application/octet-stream", "README.md")
	if err != nil {
		t.Fatalf("ExtractTextFromBytes: %v", err)
	}
	if text != body {
		t.Fatalf("markdown altered: %q", text)
	}
}

func TestExtractTextFromBytesRealZipRejected(t *testing.T) {
	data := buildZip(t, map[string]string{"notes.txt": "hello"})

	_, err := ExtractTextFromBytes(context.Background(), data, "application/zip", "notes.zip")
	if err == nil {
		t.Fatal("expected unsupported mime error for plain zip")
	}
	if !strings.Contains(err.Error(), "unsupported mime type: application/zip") {
		t.Fatalf("unexpected error: %v", err)
	}
}

package textextract

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestExtractMarkdownFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brief.md")
	brief := "# AI and daily life\n\n- **Smart** homes\n- See [this post](https://example.com)\n"
	if err := os.WriteFile(path, []byte(brief), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ExtractFile(path)
	if err != nil {
		t.Fatalf("ExtractFile: %v", err)
	}
	want := "AI and daily life\n\nSmart homes\nSee this post"
	if got.Content != want {
		t.Errorf("Content = %q, want %q", got.Content, want)
	}
	if got.Type != "md" {
		t.Errorf("Type = %q", got.Type)
	}
}

func TestExtractDOCX(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	w.Write([]byte(`<w:document><w:body><w:p><w:r><w:t>First  para</w:t></w:r></w:p><w:p><w:r><w:t>Second</w:t></w:r></w:p></w:body></w:document>`))
	zw.Close()

	got, err := Extract(bytes.NewReader(buf.Bytes()), int64(buf.Len()), ".docx")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got.Content != "First para\nSecond" {
		t.Errorf("Content = %q", got.Content)
	}
}

func TestExtractUnsupported(t *testing.T) {
	if _, err := Extract(bytes.NewReader(nil), 0, ".odt"); err == nil {
		t.Fatal("expected error")
	}
}

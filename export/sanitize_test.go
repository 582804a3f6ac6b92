package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempMarkup(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "region.html")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write markup: %v", err)
	}
	return path
}

func readMarkupFile(t *testing.T, path string) string {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read markup: %v", err)
	}
	return string(raw)
}

func TestDetectCharset_Declared(t *testing.T) {
	path := writeTempMarkup(t, `<html><head><META Charset="ISO-8859-1"></head><body></body></html>`)

	charset, err := DetectCharset(path)
	if err != nil {
		t.Fatalf("detect charset: %v", err)
	}
	if charset != "ISO-8859-1" {
		t.Fatalf("expected ISO-8859-1, got %q", charset)
	}
}

func TestDetectCharset_ContentTypeAttribute(t *testing.T) {
	path := writeTempMarkup(t, `<html><head><meta http-equiv="Content-Type" content="text/html; charset=windows-1252"></head></html>`)

	charset, err := DetectCharset(path)
	if err != nil {
		t.Fatalf("detect charset: %v", err)
	}
	if charset != "windows-1252" {
		t.Fatalf("expected windows-1252, got %q", charset)
	}
}

func TestDetectCharset_DefaultsToUTF8(t *testing.T) {
	path := writeTempMarkup(t, `<html><head></head><body>no declaration</body></html>`)

	charset, err := DetectCharset(path)
	if err != nil {
		t.Fatalf("detect charset: %v", err)
	}
	if charset != "utf-8" {
		t.Fatalf("expected utf-8, got %q", charset)
	}
}

func TestDetectCharset_BoundedScan(t *testing.T) {
	padding := strings.Repeat("<!-- x -->", 250)
	if len(padding) < charsetScanLimit {
		t.Fatalf("padding must exceed scan limit")
	}
	path := writeTempMarkup(t, padding+`<meta charset="ISO-8859-1">`)

	charset, err := DetectCharset(path)
	if err != nil {
		t.Fatalf("detect charset: %v", err)
	}
	if charset != "utf-8" {
		t.Fatalf("expected declaration past the scan window to be ignored, got %q", charset)
	}
}

func TestStripInvalidRunes_Idempotent(t *testing.T) {
	path := writeTempMarkup(t, "<html><body>a�b�</body></html>")

	if err := StripInvalidRunes(path, "utf-8"); err != nil {
		t.Fatalf("strip: %v", err)
	}
	once := readMarkupFile(t, path)
	if strings.Contains(once, "�") {
		t.Fatalf("replacement characters survived: %q", once)
	}
	if !strings.Contains(once, "ab") {
		t.Fatalf("surrounding content damaged: %q", once)
	}

	if err := StripInvalidRunes(path, "utf-8"); err != nil {
		t.Fatalf("second strip: %v", err)
	}
	if twice := readMarkupFile(t, path); twice != once {
		t.Fatalf("strip is not idempotent: %q vs %q", once, twice)
	}
}

func TestRemoveBorders_AppendsToFirstStyleBlockOnly(t *testing.T) {
	path := writeTempMarkup(t, `<html><head><style>h1 { color: red; }</style><style>p { color: blue; }</style></head><body></body></html>`)

	if err := RemoveBorders(path, "utf-8"); err != nil {
		t.Fatalf("remove borders: %v", err)
	}

	content := readMarkupFile(t, path)
	if strings.Count(content, "margin: 0;") != 1 {
		t.Fatalf("expected exactly one injection site, got: %s", content)
	}

	first := strings.Index(content, "<style>")
	second := strings.Index(content[first+1:], "<style>") + first + 1
	injected := strings.Index(content, "margin: 0;")
	if injected < first || injected > second {
		t.Fatalf("expected injection inside the first style block")
	}
	if !strings.Contains(content, "p { color: blue; }</style>") {
		t.Fatalf("second style block was modified: %s", content)
	}
}

func TestRemoveBorders_InsertsStyleBeforeHeadClose(t *testing.T) {
	path := writeTempMarkup(t, `<html><head><title>t</title></head><body></body></html>`)

	if err := RemoveBorders(path, "utf-8"); err != nil {
		t.Fatalf("remove borders: %v", err)
	}

	content := readMarkupFile(t, path)
	if strings.Count(content, "<style>") != 1 {
		t.Fatalf("expected exactly one inserted style block, got: %s", content)
	}
	styleClose := strings.Index(content, "</style>")
	headClose := strings.Index(content, "</head>")
	if styleClose < 0 || headClose < 0 || styleClose > headClose {
		t.Fatalf("expected style block immediately before </head>: %s", content)
	}
	if !strings.Contains(content, "width: 100%;") {
		t.Fatalf("expected table rule in injected block: %s", content)
	}
}

func TestRemoveBorders_NoStyleNoHead(t *testing.T) {
	original := `<table><tr><td>1</td></tr></table>`
	path := writeTempMarkup(t, original)

	if err := RemoveBorders(path, "utf-8"); err != nil {
		t.Fatalf("remove borders: %v", err)
	}
	if content := readMarkupFile(t, path); content != original {
		t.Fatalf("expected markup without style/head to pass through, got: %s", content)
	}
}

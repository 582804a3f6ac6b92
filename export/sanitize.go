package export

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// charsetScanLimit bounds how much of a markup file charset detection reads.
const charsetScanLimit = 2048

// DefaultCharset is assumed when a markup file declares no charset.
const DefaultCharset = "utf-8"

var charsetPattern = regexp.MustCompile(`(?i)<meta.*?charset=["']*([^"'>\s]+)`)

// borderResetCSS zeroes the body margin, lets the page size track its content
// and stretches tables to the full container width.
const borderResetCSS = `
        body {
            margin: 0;
            width: auto;
            height: auto;
        }
        table {
            width: 100%;
        }
    `

// DetectCharset scans the first 2048 bytes of the file at path for a meta
// charset declaration and returns the declared value, or DefaultCharset when
// none is found. Declarations past the scan window are ignored.
func DetectCharset(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = file.Close()
	}()

	head := make([]byte, charsetScanLimit)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", err
	}
	head = head[:n]

	if match := charsetPattern.FindSubmatch(head); match != nil {
		return string(match[1]), nil
	}
	return DefaultCharset, nil
}

// StripInvalidRunes rewrites the file at path with every Unicode replacement
// character removed. The file is decoded and re-encoded using the given
// charset. Idempotent.
func StripInvalidRunes(path, charset string) error {
	content, enc, err := readMarkup(path, charset)
	if err != nil {
		return err
	}

	cleaned := strings.ReplaceAll(content, "�", "")
	if cleaned == content {
		return nil
	}
	return writeMarkup(path, cleaned, enc)
}

// RemoveBorders injects the border-reset CSS into the markup file at path.
// The rules are appended inside the first <style> block when one exists;
// otherwise a new <style> block is inserted immediately before the first
// closing head tag. At most one site is modified.
func RemoveBorders(path, charset string) error {
	content, enc, err := readMarkup(path, charset)
	if err != nil {
		return err
	}
	return writeMarkup(path, injectBorderReset(content), enc)
}

var (
	stylePattern     = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	styleClosePat    = regexp.MustCompile(`(?i)</style>`)
	headClosePattern = regexp.MustCompile(`(?i)</head>`)
)

func injectBorderReset(content string) string {
	if loc := stylePattern.FindStringIndex(content); loc != nil {
		block := content[loc[0]:loc[1]]
		closeLoc := styleClosePat.FindStringIndex(block)
		insertAt := loc[0] + closeLoc[0]
		return content[:insertAt] + borderResetCSS + content[insertAt:]
	}
	if loc := headClosePattern.FindStringIndex(content); loc != nil {
		styleBlock := "<style>" + borderResetCSS + "</style>\n"
		return content[:loc[0]] + styleBlock + content[loc[0]:]
	}
	return content
}

func readMarkup(path, charset string) (string, encoding.Encoding, error) {
	enc, err := resolveCharset(charset)
	if err != nil {
		return "", nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}

	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", nil, fmt.Errorf("decode %s markup: %w", charset, err)
	}
	return string(decoded), enc, nil
}

func writeMarkup(path, content string, enc encoding.Encoding) error {
	encoded, err := enc.NewEncoder().Bytes([]byte(content))
	if err != nil {
		return fmt.Errorf("encode markup: %w", err)
	}
	return os.WriteFile(path, encoded, 0o644)
}

func resolveCharset(charset string) (encoding.Encoding, error) {
	name := strings.TrimSpace(charset)
	if name == "" {
		name = DefaultCharset
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", charset, err)
	}
	return enc, nil
}

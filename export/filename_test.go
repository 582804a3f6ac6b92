package export

import (
	"strings"
	"testing"
)

func TestHashedFilename_Unique(t *testing.T) {
	first := HashedFilename("html", "")
	second := HashedFilename("html", "")
	if first == second {
		t.Fatalf("expected unique names, got %q twice", first)
	}
}

func TestHashedFilename_Extension(t *testing.T) {
	name := HashedFilename("png", "")
	if !strings.HasSuffix(name, ".png") {
		t.Fatalf("expected .png suffix, got %q", name)
	}
	if strings.Count(name, ".") != 1 {
		t.Fatalf("expected a single extension separator, got %q", name)
	}
}

func TestHashedFilename_ModifierBeforeExtension(t *testing.T) {
	name := HashedFilename("html", "_table")
	if !strings.HasSuffix(name, "_table.html") {
		t.Fatalf("expected modifier immediately before extension, got %q", name)
	}
}

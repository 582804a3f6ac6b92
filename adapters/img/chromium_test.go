package exportimg

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-sheetsnap/export"
)

func chromeBinaryPath(t *testing.T) string {
	t.Helper()

	chromePath := os.Getenv("CHROME_BIN")
	if chromePath == "" {
		paths := []string{"google-chrome", "chromium", "chromium-browser"}
		for _, candidate := range paths {
			if path, err := exec.LookPath(candidate); err == nil {
				chromePath = path
				break
			}
		}
	}
	if chromePath == "" {
		t.Skip("chromium binary not found; set CHROME_BIN to run this test")
	}

	return chromePath
}

func TestBuildScreenshotParams_Formats(t *testing.T) {
	if _, err := buildScreenshotParams(export.ImageOptions{Format: "png"}); err != nil {
		t.Fatalf("png: %v", err)
	}
	if _, err := buildScreenshotParams(export.ImageOptions{Format: "JPEG", Quality: 80}); err != nil {
		t.Fatalf("jpeg: %v", err)
	}
	if _, err := buildScreenshotParams(export.ImageOptions{}); err != nil {
		t.Fatalf("empty format should default to png: %v", err)
	}

	_, err := buildScreenshotParams(export.ImageOptions{Format: "tiff"})
	if err == nil {
		t.Fatalf("expected error for unsupported format")
	}
	if export.KindFromError(err) != export.KindValidation {
		t.Fatalf("expected validation error, got %v", export.KindFromError(err))
	}
}

func TestBuildScreenshotParams_QualityBounds(t *testing.T) {
	_, err := buildScreenshotParams(export.ImageOptions{Format: "jpg", Quality: 101})
	if err == nil {
		t.Fatalf("expected error for out-of-range quality")
	}
	if export.KindFromError(err) != export.KindValidation {
		t.Fatalf("expected validation error, got %v", export.KindFromError(err))
	}
}

func TestChromiumEngine_Render_Smoke(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping chromium smoke test in short mode")
	}

	chromePath := chromeBinaryPath(t)

	htmlPath := filepath.Join(t.TempDir(), "region.html")
	markup := `<html><head></head><body><table><tr><td>Hello</td></tr></table></body></html>`
	if err := os.WriteFile(htmlPath, []byte(markup), 0o644); err != nil {
		t.Fatalf("write markup: %v", err)
	}

	engine := &ChromiumEngine{
		BrowserPath: chromePath,
		Headless:    true,
		Timeout:     10 * time.Second,
		Args:        []string{"--no-sandbox", "--disable-dev-shm-usage"},
	}
	defer func() {
		_ = engine.Close()
	}()

	imagePath := filepath.Join(t.TempDir(), "out.png")
	err := engine.Render(context.Background(), export.RenderRequest{
		HTMLPath:  htmlPath,
		ImagePath: imagePath,
		Options:   export.DefaultImageOptions(),
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	shot, err := os.ReadFile(imagePath)
	if err != nil {
		t.Fatalf("read image: %v", err)
	}
	if len(shot) < 8 || string(shot[1:4]) != "PNG" {
		t.Fatalf("expected png output")
	}
}

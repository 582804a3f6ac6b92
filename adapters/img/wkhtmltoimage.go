package exportimg

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-sheetsnap/export"
)

// WKHTMLToImageEngine invokes wkhtmltoimage for HTML-to-image conversion.
type WKHTMLToImageEngine struct {
	// Command overrides the executable name or path.
	Command string
	// ToolDir locates the executable when it is not on PATH. The directory
	// is prepended to PATH in the child process environment only; the
	// ambient process environment is never mutated.
	ToolDir string
	Args    []string
	Env     []string
	Timeout time.Duration
}

// Render executes wkhtmltoimage against the markup file.
func (e WKHTMLToImageEngine) Render(ctx context.Context, req export.RenderRequest) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cmdCtx := ctx
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		cmdCtx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	args := append([]string{}, e.Args...)
	args = append(args, optionArgs(req.Options)...)
	args = append(args, req.HTMLPath, req.ImagePath)

	cmd := exec.CommandContext(cmdCtx, e.command(), args...)
	cmd.Env = e.childEnv()

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		message := strings.TrimSpace(stderr.String())
		if message == "" {
			message = "wkhtmltoimage failed"
		}
		return export.NewError(export.KindExport, message, err)
	}
	return nil
}

// command resolves the executable, preferring ToolDir when set.
func (e WKHTMLToImageEngine) command() string {
	name := strings.TrimSpace(e.Command)
	if name == "" {
		name = "wkhtmltoimage"
	}
	if e.ToolDir == "" || strings.ContainsRune(name, os.PathSeparator) {
		return name
	}
	candidate := filepath.Join(e.ToolDir, name)
	if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
		return candidate
	}
	return name
}

// childEnv builds the child process environment, scoping any PATH extension
// to this single launch.
func (e WKHTMLToImageEngine) childEnv() []string {
	if e.ToolDir == "" && len(e.Env) == 0 {
		return nil
	}
	env := os.Environ()
	if e.ToolDir != "" {
		for i, kv := range env {
			if strings.HasPrefix(kv, "PATH=") {
				env[i] = "PATH=" + e.ToolDir + string(os.PathListSeparator) + kv[len("PATH="):]
				break
			}
		}
	}
	return append(env, e.Env...)
}

// optionArgs maps recognized options onto wkhtmltoimage flags. Extra options
// pass through as --key value (or a bare --key for empty values), in sorted
// order so invocations are reproducible.
func optionArgs(opts export.ImageOptions) []string {
	var args []string
	if opts.Format != "" {
		args = append(args, "--format", opts.Format)
	}
	if opts.Quality > 0 {
		args = append(args, "--quality", strconv.Itoa(opts.Quality))
	}
	if opts.Zoom > 0 {
		args = append(args, "--zoom", strconv.FormatFloat(opts.Zoom, 'f', -1, 64))
	}

	keys := make([]string, 0, len(opts.Extra))
	for key := range opts.Extra {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		flag := "--" + strings.TrimPrefix(key, "--")
		if value := opts.Extra[key]; value != "" {
			args = append(args, flag, value)
			continue
		}
		args = append(args, flag)
	}
	return args
}

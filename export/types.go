package export

import (
	"context"

	"github.com/xuri/excelize/v2"
)

// Source identifies the workbook an export reads from. Callers choose the
// variant explicitly instead of the pipeline sniffing argument types.
type Source interface {
	isSource()
}

// PathSource is a filesystem path to a workbook file. The pipeline opens and
// closes the workbook itself.
type PathSource string

func (PathSource) isSource() {}

// WorkbookSource wraps an already-open workbook. The caller retains ownership;
// the pipeline never closes it.
type WorkbookSource struct {
	Workbook *Workbook
}

func (WorkbookSource) isSource() {}

// FromFile wraps a live excelize file the caller already holds.
func FromFile(f *excelize.File) WorkbookSource {
	return WorkbookSource{Workbook: Wrap(f)}
}

// Selector identifies the region to export. Either field may be empty: an
// empty Page means the first sheet (or a sheet implied by a qualified Range),
// an empty Range means the used area of the selected page.
type Selector struct {
	Page  string
	Range string
}

// Region is a resolved rectangular cell region on a single sheet.
// Coordinates are one-based and inclusive.
type Region struct {
	Sheet    string
	StartCol int
	StartRow int
	EndCol   int
	EndRow   int
}

// ImageOptions configures the rasterizer. Zero-valued fields are omitted from
// the engine invocation so the tool's own defaults apply; a fully zero value
// is replaced by DefaultImageOptions.
type ImageOptions struct {
	Format  string
	Quality int
	Zoom    float64
	Extra   map[string]string
}

// DefaultImageOptions returns the built-in option set used when a request
// carries no options.
func DefaultImageOptions() ImageOptions {
	return ImageOptions{Format: "png", Quality: 100, Zoom: 4}
}

func (o ImageOptions) isZero() bool {
	return o.Format == "" && o.Quality == 0 && o.Zoom == 0 && len(o.Extra) == 0
}

// RenderRequest is the input to an image engine: a sanitized markup file and
// the destination image path.
type RenderRequest struct {
	HTMLPath  string
	ImagePath string
	Options   ImageOptions
}

// ImageEngine rasterizes a markup file into an image file.
type ImageEngine interface {
	Render(ctx context.Context, req RenderRequest) error
}

// EngineFunc adapts a function to an ImageEngine.
type EngineFunc func(ctx context.Context, req RenderRequest) error

func (f EngineFunc) Render(ctx context.Context, req RenderRequest) error {
	if f == nil {
		return NewError(KindInternal, "image engine func is nil", nil)
	}
	return f(ctx, req)
}

// Request captures one export request.
type Request struct {
	Source    Source
	ImagePath string
	Page      string
	Range     string
	Image     ImageOptions
}

// Selector returns the request's region selector.
func (r Request) Selector() Selector {
	return Selector{Page: r.Page, Range: r.Range}
}

// Service exports a workbook region as an image.
type Service interface {
	Export(ctx context.Context, req Request) error
}

// Logger provides logging hooks.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Errorf(format string, args ...any)
}

// NopLogger is a no-op logger.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any) {}
func (NopLogger) Infof(string, ...any)  {}
func (NopLogger) Errorf(string, ...any) {}

package export

import (
	"context"
	"os"
	"path/filepath"
)

// tempDirName is the temporary-files directory created beside the executable.
const tempDirName = "temporary_files"

// Exporter wires the export pipeline: publish the selected region as markup,
// sanitize it, rasterize it, clean up. One uniquely named markup file is
// allocated per call, so concurrent exports never share state.
type Exporter struct {
	Engine    ImageEngine
	Logger    Logger
	Publisher *Publisher

	// TempDir overrides where intermediate markup files are written.
	TempDir string
}

// NewExporter creates an exporter using the given image engine.
func NewExporter(engine ImageEngine) *Exporter {
	return &Exporter{Engine: engine, Logger: NopLogger{}}
}

// Export runs one export request. Every stage failure returns a kinded error:
// KindNotFound/KindOpen/KindAutomation from the open phase, KindAutomation
// from selector resolution, KindExport from the publish and render phases.
// Workbooks opened here are closed on every exit path; wrapped workbooks stay
// open for their owner.
func (e *Exporter) Export(ctx context.Context, req Request) error {
	if e == nil {
		return AsGoError(NewError(KindInternal, "exporter is nil", nil))
	}
	if e.Engine == nil {
		return AsGoError(NewError(KindValidation, "image engine is required", nil))
	}
	if req.ImagePath == "" {
		return AsGoError(NewError(KindValidation, "image path is required", nil))
	}
	if ctx == nil {
		ctx = context.Background()
	}

	logger := e.logger()

	wb, err := e.resolveSource(req.Source)
	if err != nil {
		logger.Errorf("resolve export source: %v", err)
		return AsGoError(err)
	}
	if wb.owned {
		defer func() {
			if closeErr := wb.Close(); closeErr != nil {
				logger.Errorf("close workbook: %v", closeErr)
			}
		}()
	}

	if err := e.run(ctx, wb, req, logger); err != nil {
		logger.Errorf("unable to generate picture: %v", err)
		return AsGoError(err)
	}

	logger.Infof("successfully generated %s", req.ImagePath)
	return nil
}

func (e *Exporter) run(ctx context.Context, wb *Workbook, req Request, logger Logger) error {
	tempDir, err := e.tempDir()
	if err != nil {
		return NewError(KindExport, "resolve temporary directory", err)
	}
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return NewError(KindExport, "create temporary directory", err)
	}
	htmlPath := filepath.Join(tempDir, HashedFilename("html", ""))

	publisher := e.Publisher
	if publisher == nil {
		publisher = &Publisher{Logger: logger}
	}
	if err := publisher.Publish(wb, req.Selector(), htmlPath); err != nil {
		return err
	}
	// The markup file is removed whether or not rendering succeeds.
	defer func() {
		if err := os.Remove(htmlPath); err != nil {
			logger.Errorf("failed to delete intermediate markup file: %v", err)
		}
	}()

	charset, err := DetectCharset(htmlPath)
	if err != nil {
		return NewError(KindExport, "detect markup charset", err)
	}
	if err := StripInvalidRunes(htmlPath, charset); err != nil {
		return NewError(KindExport, "strip invalid characters", err)
	}
	if err := RemoveBorders(htmlPath, charset); err != nil {
		return NewError(KindExport, "remove markup borders", err)
	}

	options := req.Image
	if options.isZero() {
		options = DefaultImageOptions()
	}

	if err := e.Engine.Render(ctx, RenderRequest{
		HTMLPath:  htmlPath,
		ImagePath: req.ImagePath,
		Options:   options,
	}); err != nil {
		if KindFromError(err) == KindInternal {
			return NewError(KindExport, "image render failed", err)
		}
		return err
	}
	return nil
}

// resolveSource maps the request source onto a workbook handle. A nil source
// is a misuse error rather than a silent no-op.
func (e *Exporter) resolveSource(src Source) (*Workbook, error) {
	switch s := src.(type) {
	case PathSource:
		return Open(string(s))
	case WorkbookSource:
		if s.Workbook == nil || s.Workbook.File() == nil {
			return nil, NewError(KindValidation, "workbook source is not open", nil)
		}
		return s.Workbook, nil
	case nil:
		return nil, NewError(KindValidation, "export source is required", nil)
	default:
		return nil, NewError(KindValidation, "unsupported export source", nil)
	}
}

func (e *Exporter) tempDir() (string, error) {
	if e.TempDir != "" {
		return e.TempDir, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return filepath.Join(os.TempDir(), tempDirName), nil
	}
	return filepath.Join(filepath.Dir(exe), tempDirName), nil
}

func (e *Exporter) logger() Logger {
	if e.Logger == nil {
		return NopLogger{}
	}
	return e.Logger
}

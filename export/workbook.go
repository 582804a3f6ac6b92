package export

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// Workbook is a scoped handle around one open workbook document. Opened
// handles own the underlying file and must release it exactly once; wrapped
// handles leave ownership with the caller.
type Workbook struct {
	path  string
	file  *excelize.File
	owned bool
}

// Open opens the workbook at path. The path is resolved to an absolute form
// before the document is opened. A missing file fails with KindNotFound
// before any workbook engine work starts; an engine fault while parsing the
// document fails with KindAutomation; any other I/O fault fails with
// KindOpen.
func Open(path string) (*Workbook, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, NewError(KindOpen, "resolve workbook path "+path, err)
	}

	if _, err := os.Stat(abs); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewError(KindNotFound, "no such workbook file: "+path, err)
		}
		return nil, NewError(KindOpen, "stat workbook file "+path, err)
	}

	file, err := excelize.OpenFile(abs)
	if err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return nil, NewError(KindOpen, "open workbook file "+path, err)
		}
		return nil, NewError(KindAutomation, "workbook engine rejected "+path, err)
	}

	return &Workbook{path: abs, file: file, owned: true}, nil
}

// Wrap adopts an already-open workbook without taking ownership. Closing the
// returned handle clears its reference but leaves the underlying file open
// for the caller.
func Wrap(file *excelize.File) *Workbook {
	return &Workbook{file: file}
}

// Path returns the absolute path the workbook was opened from, or empty for
// wrapped handles.
func (w *Workbook) Path() string {
	if w == nil {
		return ""
	}
	return w.path
}

// File returns the underlying workbook document, or nil once closed.
func (w *Workbook) File() *excelize.File {
	if w == nil {
		return nil
	}
	return w.file
}

// Close releases the workbook. Unsaved changes are discarded. Safe to call
// multiple times and on handles that never opened anything.
func (w *Workbook) Close() error {
	if w == nil || w.file == nil {
		return nil
	}

	file := w.file
	w.file = nil
	if !w.owned {
		return nil
	}
	if err := file.Close(); err != nil {
		return NewError(KindInternal, "close workbook", err)
	}
	return nil
}

package command

import (
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-sheetsnap/export"
)

// ExportImage requests one region-to-image export.
type ExportImage struct {
	Request export.Request
}

func (ExportImage) Type() string { return "sheetsnap:export" }

func (msg ExportImage) Validate() error {
	if msg.Request.Source == nil {
		return errors.New("export source is required", errors.CategoryValidation).
			WithTextCode("SOURCE_REQUIRED")
	}
	if msg.Request.ImagePath == "" {
		return errors.New("image path is required", errors.CategoryValidation).
			WithTextCode("IMAGE_PATH_REQUIRED")
	}
	return nil
}

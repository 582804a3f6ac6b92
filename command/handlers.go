package command

import (
	"context"

	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-sheetsnap/export"
)

// ExportImageHandler handles export requests.
type ExportImageHandler struct {
	Service export.Service
}

func NewExportImageHandler(svc export.Service) *ExportImageHandler {
	return &ExportImageHandler{Service: svc}
}

func (h *ExportImageHandler) Execute(ctx context.Context, msg ExportImage) error {
	if h == nil || h.Service == nil {
		return errors.New("export service is required", errors.CategoryInternal).
			WithTextCode("SERVICE_REQUIRED")
	}
	if err := h.Service.Export(ctx, msg.Request); err != nil {
		return err
	}
	if res := gcmd.ResultFromContext[string](ctx); res != nil {
		res.Store(msg.Request.ImagePath)
	}
	return nil
}

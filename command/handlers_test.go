package command

import (
	"context"
	"testing"

	"github.com/goliatone/go-sheetsnap/export"
)

type stubService struct {
	requests []export.Request
	err      error
}

func (s *stubService) Export(ctx context.Context, req export.Request) error {
	_ = ctx
	s.requests = append(s.requests, req)
	return s.err
}

func TestExportImage_Validate(t *testing.T) {
	msg := ExportImage{}
	if err := msg.Validate(); err == nil {
		t.Fatalf("expected validation error for empty message")
	}

	msg.Request.Source = export.PathSource("book.xlsx")
	if err := msg.Validate(); err == nil {
		t.Fatalf("expected validation error without image path")
	}

	msg.Request.ImagePath = "out.png"
	if err := msg.Validate(); err != nil {
		t.Fatalf("expected valid message, got %v", err)
	}
}

func TestExportImage_Type(t *testing.T) {
	if got := (ExportImage{}).Type(); got != "sheetsnap:export" {
		t.Fatalf("unexpected message type %q", got)
	}
}

func TestExportImageHandler_Execute(t *testing.T) {
	svc := &stubService{}
	handler := NewExportImageHandler(svc)

	msg := ExportImage{Request: export.Request{
		Source:    export.PathSource("book.xlsx"),
		ImagePath: "out.png",
		Page:      "Sheet1",
	}}
	if err := handler.Execute(context.Background(), msg); err != nil {
		t.Fatalf("execute: %v", err)
	}

	if len(svc.requests) != 1 {
		t.Fatalf("expected one service call, got %d", len(svc.requests))
	}
	if svc.requests[0].Page != "Sheet1" {
		t.Fatalf("request was not forwarded intact")
	}
}

func TestExportImageHandler_RequiresService(t *testing.T) {
	handler := &ExportImageHandler{}
	if err := handler.Execute(context.Background(), ExportImage{}); err == nil {
		t.Fatalf("expected error without service")
	}
}

func TestExportImageHandler_PropagatesFailure(t *testing.T) {
	svc := &stubService{err: export.NewError(export.KindExport, "render failed", nil)}
	handler := NewExportImageHandler(svc)

	err := handler.Execute(context.Background(), ExportImage{Request: export.Request{
		Source:    export.PathSource("book.xlsx"),
		ImagePath: "out.png",
	}})
	if err == nil {
		t.Fatalf("expected failure to propagate")
	}
	if export.KindFromError(err) != export.KindExport {
		t.Fatalf("expected export kind, got %v", export.KindFromError(err))
	}
}

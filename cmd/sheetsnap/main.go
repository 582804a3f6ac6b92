// Package main provides the CLI entry point for go-sheetsnap.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	exportimg "github.com/goliatone/go-sheetsnap/adapters/img"
	"github.com/goliatone/go-sheetsnap/adapters/logfile"
	"github.com/goliatone/go-sheetsnap/command"
	"github.com/goliatone/go-sheetsnap/export"
)

var (
	page        string
	cellRange   string
	format      string
	quality     int
	zoom        float64
	engineName  string
	toolDir     string
	browserPath string
	logFilePath string
	timeout     time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sheetsnap [workbook.xlsx] [image.png]",
		Short: "Export a spreadsheet region as an image",
		Long: `sheetsnap exports a rectangular region of a workbook (a named range, an
address range, or a page's entire used area) into a raster image file.

Examples:
  sheetsnap report.xlsx report.png
  sheetsnap report.xlsx report.png -p Sheet1
  sheetsnap report.xlsx report.png -r NamedRange
  sheetsnap report.xlsx report.png -r 'Sheet1!A1:U8'`,
		Args:         cobra.ExactArgs(2),
		RunE:         run,
		SilenceUsage: true,
	}

	rootCmd.Flags().StringVarP(&page, "page", "p", "", "Page (sheet) name; defaults to the first page unless the range implies one")
	rootCmd.Flags().StringVarP(&cellRange, "range", "r", "", "Range in Excel notation or a named range; defaults to the page's used area")
	rootCmd.Flags().StringVar(&format, "format", "", "Image format (png, jpg, webp)")
	rootCmd.Flags().IntVar(&quality, "quality", 0, "Image quality, 0-100")
	rootCmd.Flags().Float64Var(&zoom, "zoom", 0, "Zoom multiplier")
	rootCmd.Flags().StringVar(&engineName, "engine", "wkhtmltoimage", "Rasterizer engine: wkhtmltoimage or chromium")
	rootCmd.Flags().StringVar(&toolDir, "tool-dir", "", "Directory containing the wkhtmltoimage executable when it is not on PATH")
	rootCmd.Flags().StringVar(&browserPath, "browser", "", "Chromium binary path for the chromium engine")
	rootCmd.Flags().StringVar(&logFilePath, "log-file", "", "Append logs to this file; without it logs are discarded")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 0, "Rasterizer timeout (0 means wait indefinitely)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	engine, err := buildEngine()
	if err != nil {
		return err
	}

	var logger export.Logger = export.NopLogger{}
	if logFilePath != "" {
		fileLogger, err := logfile.New(logFilePath, "sheetsnap")
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer func() {
			_ = fileLogger.Close()
		}()
		logger = fileLogger
	}

	exporter := export.NewExporter(engine)
	exporter.Logger = logger

	msg := command.ExportImage{
		Request: export.Request{
			Source:    export.PathSource(args[0]),
			ImagePath: args[1],
			Page:      page,
			Range:     cellRange,
			Image: export.ImageOptions{
				Format:  format,
				Quality: quality,
				Zoom:    zoom,
			},
		},
	}
	if err := msg.Validate(); err != nil {
		return err
	}

	handler := command.NewExportImageHandler(exporter)
	return handler.Execute(cmd.Context(), msg)
}

func buildEngine() (export.ImageEngine, error) {
	switch engineName {
	case "wkhtmltoimage":
		return exportimg.WKHTMLToImageEngine{ToolDir: toolDir, Timeout: timeout}, nil
	case "chromium":
		return &exportimg.ChromiumEngine{
			BrowserPath: browserPath,
			Headless:    true,
			Timeout:     timeout,
		}, nil
	default:
		return nil, fmt.Errorf("unknown engine: %s (must be wkhtmltoimage or chromium)", engineName)
	}
}

// Package logfile provides a file-backed logger for go-sheetsnap. Each line
// carries a timestamp, the logger name, a severity and the message. Without a
// configured sink the pipeline keeps its default no-op logger.
package logfile

import (
	"fmt"
	"log/slog"
	"os"
)

// Logger writes export pipeline logs to a file.
type Logger struct {
	base *slog.Logger
	file *os.File
}

// New opens (or creates) the log file at path and returns a logger named
// name that appends to it.
func New(path, name string) (*Logger, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}

	handler := slog.NewTextHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug})
	base := slog.New(handler)
	if name != "" {
		base = base.With("logger", name)
	}
	return &Logger{base: base, file: file}, nil
}

// Close flushes and closes the underlying file.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

func (l *Logger) Debugf(format string, args ...any) {
	if l == nil || l.base == nil {
		return
	}
	l.base.Debug(fmt.Sprintf(format, args...))
}

func (l *Logger) Infof(format string, args ...any) {
	if l == nil || l.base == nil {
		return
	}
	l.base.Info(fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...any) {
	if l == nil || l.base == nil {
		return
	}
	l.base.Error(fmt.Sprintf(format, args...))
}

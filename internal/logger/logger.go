// Package logger provides the structured, tick-stamped event stream
// the scheduler and process-lifecycle operations write to (spec.md §6).
//
// It wraps log/slog exactly the way the teacher's internal/logger does:
// a severity-ranked handler factory that emits either text or JSON,
// optionally rotated through lumberjack when writing to a file.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/go-pennos/pennos/cfg"
	natefinchlumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the sink every kernel-state transition writes through.
type Logger struct {
	mu     sync.Mutex
	slog   *slog.Logger
	writer io.Writer
}

// New builds a Logger from the resolved logging config.
func New(cfgLogging cfg.LoggingConfig) (*Logger, error) {
	var w io.Writer = os.Stderr
	if cfgLogging.FilePath != "" {
		w = &natefinchlumberjack.Logger{
			Filename:   cfgLogging.FilePath,
			MaxSize:    cfgLogging.LogRotate.MaxFileSizeMb,
			MaxBackups: cfgLogging.LogRotate.BackupFileCount,
			Compress:   cfgLogging.LogRotate.Compress,
		}
	}

	level := severityToSlogLevel(cfgLogging.Severity)
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch cfgLogging.Format {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	return &Logger{slog: slog.New(handler), writer: w}, nil
}

func severityToSlogLevel(sev cfg.LogSeverity) slog.Level {
	switch sev {
	case cfg.TraceLogSeverity:
		return slog.LevelDebug - 4
	case cfg.DebugLogSeverity:
		return slog.LevelDebug
	case cfg.WarningLogSeverity:
		return slog.LevelWarn
	case cfg.ErrorLogSeverity:
		return slog.LevelError
	case cfg.OffLogSeverity:
		return slog.LevelError + 4
	default:
		return slog.LevelInfo
	}
}

// Event writes one tab-delimited record of the exact form spec.md §6
// requires: "[TICK] KIND PID PRIORITY NAME", with CHANGED carrying two
// priorities appended after NAME.
func (l *Logger) Event(tick uint64, kind Kind, pid int, priority int, name string, extra ...int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	line := fmt.Sprintf("[%d]\t%s\t%d\t%d\t%s", tick, kind, pid, priority, name)
	for _, e := range extra {
		line += fmt.Sprintf("\t%d", e)
	}
	fmt.Fprintln(l.writer, line)
}

// Debugf logs an unstructured diagnostic message at DEBUG level,
// for conditions the event stream doesn't itself model.
func (l *Logger) Debugf(format string, args ...any) {
	l.slog.Debug(fmt.Sprintf(format, args...))
}

// Errorf logs an unstructured diagnostic message at ERROR level.
func (l *Logger) Errorf(format string, args ...any) {
	l.slog.Error(fmt.Sprintf(format, args...))
}

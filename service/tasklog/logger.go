// Package tasklog writes task scoped log entries to both the process log and
// the task log sink of the agent protocol.
package tasklog

import (
	"context"
	"log/slog"

	"github.com/viant/storyflow/model"
)

// Sink receives task log entries
type Sink interface {
	LogTask(ctx context.Context, entry *model.TaskLog) error
}

// Logger writes task log entries
type Logger struct {
	logger *slog.Logger
	sink   Sink
}

// New creates a task logger, sink may be nil
func New(logger *slog.Logger, sink Sink) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{logger: logger, sink: sink}
}

// Slog returns the process logger
func (l *Logger) Slog() *slog.Logger {
	return l.logger
}

// Log writes entry locally and forwards it to the sink, sink errors are only logged
func (l *Logger) Log(ctx context.Context, entry *model.TaskLog, args ...any) {
	if entry == nil {
		return
	}
	l.logger.Log(ctx, level(entry.Level), entry.TaskID+" :: "+entry.Message, args...)
	if l.sink == nil {
		return
	}
	if err := l.sink.LogTask(ctx, entry); err != nil {
		l.logger.Warn("failed to send task log", "task_id", entry.TaskID, "error", err)
	}
}

// Info logs an info entry
func (l *Logger) Info(ctx context.Context, taskID, message string, args ...any) {
	l.Log(ctx, &model.TaskLog{TaskID: taskID, Level: model.LogLevelInfo, Message: message}, args...)
}

// Warning logs a warning entry
func (l *Logger) Warning(ctx context.Context, taskID, message string, args ...any) {
	l.Log(ctx, &model.TaskLog{TaskID: taskID, Level: model.LogLevelWarning, Message: message}, args...)
}

// Error logs an error entry
func (l *Logger) Error(ctx context.Context, taskID, message string, args ...any) {
	l.Log(ctx, &model.TaskLog{TaskID: taskID, Level: model.LogLevelError, Message: message}, args...)
}

func level(level model.LogLevel) slog.Level {
	switch level {
	case model.LogLevelDebug:
		return slog.LevelDebug
	case model.LogLevelWarning:
		return slog.LevelWarn
	case model.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

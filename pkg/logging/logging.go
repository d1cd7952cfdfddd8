// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging provides the structured, leveled logger used across
// the client library and its CLI, plus an Observer adapter that turns
// an rbroker.Client's request lifecycle callbacks into log lines.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/databroker-go/rbroker/pkg/rbroker"
)

// Level represents a log level.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger provides structured logging.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	WithFields(fields ...Field) Logger
}

// Field represents a key-value pair in structured logging.
type Field struct {
	Key   string
	Value interface{}
}

// NewField creates a new field.
func NewField(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// loggerImpl is the default logger implementation.
type loggerImpl struct {
	level  Level
	out    io.Writer
	errOut io.Writer
	fields []Field
}

// NewLogger creates a new logger. If verbose is true, Debug level logs
// are shown.
func NewLogger(verbose bool) Logger {
	level := LevelInfo
	if verbose {
		level = LevelDebug
	}

	return &loggerImpl{
		level:  level,
		out:    os.Stdout,
		errOut: os.Stderr,
		fields: []Field{},
	}
}

// Debug logs a debug message.
func (l *loggerImpl) Debug(msg string, fields ...Field) {
	if l.level <= LevelDebug {
		l.log(LevelDebug, msg, fields...)
	}
}

// Info logs an info message.
func (l *loggerImpl) Info(msg string, fields ...Field) {
	if l.level <= LevelInfo {
		l.log(LevelInfo, msg, fields...)
	}
}

// Warn logs a warning message.
func (l *loggerImpl) Warn(msg string, fields ...Field) {
	if l.level <= LevelWarn {
		l.log(LevelWarn, msg, fields...)
	}
}

// Error logs an error message (always shown).
func (l *loggerImpl) Error(msg string, fields ...Field) {
	l.log(LevelError, msg, fields...)
}

// WithFields returns a new logger with additional fields.
func (l *loggerImpl) WithFields(fields ...Field) Logger {
	return &loggerImpl{
		level:  l.level,
		out:    l.out,
		errOut: l.errOut,
		fields: append(l.fields, fields...),
	}
}

// log writes a log message as a timestamped, leveled line followed by
// its fields rendered key=value, base fields from WithFields first.
func (l *loggerImpl) log(level Level, msg string, fields ...Field) {
	writer := l.out
	if level == LevelError {
		writer = l.errOut
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s: %s", time.Now().Format("2006-01-02 15:04:05"), level.String(), msg)
	for _, f := range l.fields {
		fmt.Fprintf(&b, " %s=%v", f.Key, f.Value)
	}
	for _, f := range fields {
		fmt.Fprintf(&b, " %s=%v", f.Key, f.Value)
	}
	b.WriteByte('\n')
	io.WriteString(writer, b.String())
}

// Observer adapts a Logger into an rbroker.Observer: every posted
// request and every successful completion is logged at Debug level, and
// every completion with any other Status at Warn, keyed by opcode and
// (for completions) Status, so --verbose on the CLI traces the full
// lifecycle of a request without the engine itself knowing logging
// exists.
type Observer struct {
	log Logger
}

// NewObserver wraps log as an rbroker.Observer.
func NewObserver(log Logger) *Observer {
	return &Observer{log: log}
}

// OnPost implements rbroker.Observer.
func (o *Observer) OnPost(opcode rbroker.Opcode) {
	o.log.Debug("posted", NewField("opcode", opcode.String()))
}

// OnComplete implements rbroker.Observer.
func (o *Observer) OnComplete(opcode rbroker.Opcode, status rbroker.Status) {
	level := o.log.Debug
	if status != rbroker.Success {
		level = o.log.Warn
	}
	level("completed",
		NewField("opcode", opcode.String()),
		NewField("status", status.String()),
	)
}

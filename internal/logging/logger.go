// Package logging provides structured, leveled logging for the wallet
// ledger service. Output is JSON by default so log aggregation can index
// fields; text format is available for local development.
package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// Level represents the severity of a log message
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
	LevelFatal Level = "fatal"
)

// Format represents the output format for logs
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

var levelRank = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
	LevelFatal: 4,
}

// Logger provides structured logging. Loggers are immutable: WithField and
// friends return a copy carrying the extra context.
type Logger struct {
	level  Level
	format Format
	output io.Writer
	fields map[string]interface{}
}

type entry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// New creates a new logger instance writing to stdout.
func New(level Level, format Format) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: os.Stdout,
		fields: make(map[string]interface{}),
	}
}

func (l *Logger) clone() *Logger {
	c := &Logger{
		level:  l.level,
		format: l.format,
		output: l.output,
		fields: make(map[string]interface{}, len(l.fields)+1),
	}
	for k, v := range l.fields {
		c.fields[k] = v
	}
	return c
}

// WithField returns a logger with an additional field attached.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	c := l.clone()
	c.fields[key] = value
	return c
}

// WithFields returns a logger with multiple additional fields attached.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	c := l.clone()
	for k, v := range fields {
		c.fields[k] = v
	}
	return c
}

// WithError attaches an error to the logger context.
func (l *Logger) WithError(err error) *Logger {
	return l.WithField("error", err.Error())
}

// SetOutput redirects log output, used by tests.
func (l *Logger) SetOutput(w io.Writer) {
	l.output = w
}

func (l *Logger) Debug(msg string)                          { l.log(LevelDebug, msg) }
func (l *Logger) Debugf(format string, args ...interface{}) { l.log(LevelDebug, fmt.Sprintf(format, args...)) }
func (l *Logger) Info(msg string)                           { l.log(LevelInfo, msg) }
func (l *Logger) Infof(format string, args ...interface{})  { l.log(LevelInfo, fmt.Sprintf(format, args...)) }
func (l *Logger) Warn(msg string)                           { l.log(LevelWarn, msg) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.log(LevelWarn, fmt.Sprintf(format, args...)) }
func (l *Logger) Error(msg string)                          { l.log(LevelError, msg) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.log(LevelError, fmt.Sprintf(format, args...)) }

// Fatal logs a fatal message and exits.
func (l *Logger) Fatal(msg string) {
	l.log(LevelFatal, msg)
	os.Exit(1)
}

func (l *Logger) log(level Level, msg string) {
	if levelRank[level] < levelRank[l.level] {
		return
	}

	e := entry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     string(level),
		Message:   msg,
		Fields:    l.fields,
	}

	var line string
	if l.format == FormatText {
		line = fmt.Sprintf("[%s] %s: %s", e.Timestamp, e.Level, e.Message)
		if len(e.Fields) > 0 {
			b, _ := json.Marshal(e.Fields)
			line += " " + string(b)
		}
	} else {
		b, _ := json.Marshal(e)
		line = string(b)
	}

	fmt.Fprintln(l.output, line)
}

var global *Logger

// Init initializes the global logger.
func Init(level Level, format Format) {
	global = New(level, format)
}

// Global returns the global logger, creating a default one if Init was
// never called (tests, ad hoc tools).
func Global() *Logger {
	if global == nil {
		global = New(LevelInfo, FormatJSON)
	}
	return global
}

type loggerKey struct{}

// WithLogger returns a context carrying the logger.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext retrieves the logger from the context, falling back to the
// global logger.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*Logger); ok {
		return logger
	}
	return Global()
}

// ParseLevel parses a string into a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	default:
		return LevelInfo
	}
}

// ParseFormat parses a string into a Format, defaulting to JSON.
func ParseFormat(s string) Format {
	if s == "text" {
		return FormatText
	}
	return FormatJSON
}

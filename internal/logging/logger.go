// Package logging provides the small keyval logger shared by the learner,
// the store backends and the CLI.
package logging

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Level is the severity of a log message.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the level name.
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

// Logger logs messages with alternating key-value context.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
	// With returns a logger that prepends the given key-value pairs to
	// every message.
	With(keyvals ...any) Logger
}

type writerLogger struct {
	mu       sync.Mutex
	w        io.Writer
	minLevel Level
	keyvals  []any
}

// New returns a logger writing timestamped lines to w, dropping messages
// below minLevel.
func New(w io.Writer, minLevel Level) Logger {
	return &writerLogger{w: w, minLevel: minLevel}
}

func (l *writerLogger) Debug(msg string, keyvals ...any) { l.log(LevelDebug, msg, keyvals) }
func (l *writerLogger) Info(msg string, keyvals ...any)  { l.log(LevelInfo, msg, keyvals) }
func (l *writerLogger) Warn(msg string, keyvals ...any)  { l.log(LevelWarn, msg, keyvals) }
func (l *writerLogger) Error(msg string, keyvals ...any) { l.log(LevelError, msg, keyvals) }

func (l *writerLogger) With(keyvals ...any) Logger {
	merged := make([]any, 0, len(l.keyvals)+len(keyvals))
	merged = append(merged, l.keyvals...)
	merged = append(merged, keyvals...)
	return &writerLogger{w: l.w, minLevel: l.minLevel, keyvals: merged}
}

func (l *writerLogger) log(level Level, msg string, keyvals []any) {
	if level < l.minLevel {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "%s [%s]", time.Now().Format("2006-01-02 15:04:05.000"), level)
	writePairs(l.w, l.keyvals)
	writePairs(l.w, keyvals)
	fmt.Fprintf(l.w, ": %s\n", msg)
}

func writePairs(w io.Writer, keyvals []any) {
	for i := 0; i+1 < len(keyvals); i += 2 {
		fmt.Fprintf(w, " %v=%v", keyvals[i], keyvals[i+1])
	}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
func (n nopLogger) With(...any) Logger { return n }

// Nop returns a logger that discards everything.
func Nop() Logger { return nopLogger{} }

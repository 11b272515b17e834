// Package logger is the printf-style logging seam used across nbwatch.
// Components take a Logger so tests can capture output and the TUI can
// route it away from the screen.
package logger

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
)

// DebugEnvVar turns on debug lines when set to any non-empty value.
const DebugEnvVar = "NBWATCH_DEBUG"

// Level is a log severity.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Logger takes fmt.Printf style messages at four levels.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// DebugEnabled reports whether NBWATCH_DEBUG is set.
func DebugEnabled() bool {
	return os.Getenv(DebugEnvVar) != ""
}

// envLogger writes through the standard log package, so redirecting
// log.SetOutput (as the TUI does) redirects every component at once.
type envLogger struct {
	prefix string
}

// NewEnvLogger returns a Logger whose lines start with prefix, e.g.
// "[sync]". Debug lines appear only while NBWATCH_DEBUG is set; the
// variable is read on every call so --debug takes effect after startup.
func NewEnvLogger(prefix string) Logger {
	return envLogger{prefix: prefix}
}

func (l envLogger) emit(level Level, format string, args []interface{}) {
	var tag string
	switch level {
	case LevelWarn, LevelError:
		tag = strings.ToUpper(string(level)) + ": "
	}
	log.Print(l.prefix + " " + tag + fmt.Sprintf(format, args...))
}

func (l envLogger) Debug(format string, args ...interface{}) {
	if DebugEnabled() {
		l.emit(LevelDebug, format, args)
	}
}

func (l envLogger) Info(format string, args ...interface{})  { l.emit(LevelInfo, format, args) }
func (l envLogger) Warn(format string, args ...interface{})  { l.emit(LevelWarn, format, args) }
func (l envLogger) Error(format string, args ...interface{}) { l.emit(LevelError, format, args) }

type noop struct{}

// Noop discards everything.
func Noop() Logger { return noop{} }

func (noop) Debug(string, ...interface{}) {}
func (noop) Info(string, ...interface{})  {}
func (noop) Warn(string, ...interface{})  {}
func (noop) Error(string, ...interface{}) {}

// Entry is one captured line.
type Entry struct {
	Level   Level
	Message string
}

// BufferLogger records entries for tests. The poll loop may log from its
// own goroutine while the test reads.
type BufferLogger struct {
	mu      sync.Mutex
	entries []Entry
}

// NewBufferLogger returns an empty BufferLogger.
func NewBufferLogger() *BufferLogger {
	return &BufferLogger{}
}

func (l *BufferLogger) add(level Level, format string, args []interface{}) {
	l.mu.Lock()
	l.entries = append(l.entries, Entry{Level: level, Message: fmt.Sprintf(format, args...)})
	l.mu.Unlock()
}

func (l *BufferLogger) Debug(format string, args ...interface{}) { l.add(LevelDebug, format, args) }
func (l *BufferLogger) Info(format string, args ...interface{})  { l.add(LevelInfo, format, args) }
func (l *BufferLogger) Warn(format string, args ...interface{})  { l.add(LevelWarn, format, args) }
func (l *BufferLogger) Error(format string, args ...interface{}) { l.add(LevelError, format, args) }

// Entries returns a copy of everything logged so far.
func (l *BufferLogger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}

// HasLevel reports whether anything was logged at level.
func (l *BufferLogger) HasLevel(level Level) bool {
	for _, e := range l.Entries() {
		if e.Level == level {
			return true
		}
	}
	return false
}

// Contains reports whether a message at level contains substr.
func (l *BufferLogger) Contains(level Level, substr string) bool {
	for _, e := range l.Entries() {
		if e.Level == level && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

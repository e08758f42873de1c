// Package logger provides leveled logging for ixbrlcheck.
// Debug and info messages are printed only in verbose mode; warnings are
// always printed. A nil *Logger discards everything.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Logger writes "[LEVEL] message" lines to an output writer
type Logger struct {
	mu      sync.Mutex
	verbose bool
	output  io.Writer
}

// New creates a logger writing to stderr
func New(verbose bool) *Logger {
	return NewWithOutput(os.Stderr, verbose)
}

// NewWithOutput creates a logger writing to w. Useful for testing.
func NewWithOutput(w io.Writer, verbose bool) *Logger {
	return &Logger{
		verbose: verbose,
		output:  w,
	}
}

// Discard returns a logger that prints nothing
func Discard() *Logger {
	return NewWithOutput(io.Discard, false)
}

// SetVerbose enables or disables verbose logging
func (l *Logger) SetVerbose(v bool) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.verbose = v
}

// IsVerbose returns true if verbose mode is enabled
func (l *Logger) IsVerbose() bool {
	if l == nil {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.verbose
}

// Debug prints a message if verbose mode is enabled
func (l *Logger) Debug(format string, args ...any) {
	l.print(true, "[DEBUG] "+format+"\n", args...)
}

// Info prints an informational message if verbose mode is enabled
func (l *Logger) Info(format string, args ...any) {
	l.print(true, "[INFO] "+format+"\n", args...)
}

// Warn prints a warning message
func (l *Logger) Warn(format string, args ...any) {
	l.print(false, "[WARN] "+format+"\n", args...)
}

// Section prints a section header if verbose mode is enabled
func (l *Logger) Section(name string) {
	l.print(true, "\n=== %s ===\n", name)
}

func (l *Logger) print(verboseOnly bool, format string, args ...any) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if verboseOnly && !l.verbose {
		return
	}
	_, _ = fmt.Fprintf(l.output, format, args...)
}

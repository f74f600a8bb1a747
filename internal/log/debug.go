// Package log is the debug logger shared by the apollo TUI and CLI.
//
// Messages written before a destination is configured are buffered, then
// flushed to the file handed to SetFile. When no file is configured the
// buffer is dropped and every later message is discarded, so the TUI never
// writes log lines over its own screen.
package log

import (
	"log"
	"os"
	"sync"
)

// DebugLogger is an io.Writer that buffers until a file is attached.
type DebugLogger struct {
	mu      sync.Mutex
	file    *os.File
	buffer  []byte
	discard bool
}

var (
	globalDebugLogger = &DebugLogger{}
	stdLogger         = log.New(globalDebugLogger, "", log.LstdFlags|log.Lmicroseconds)
)

// Write implements io.Writer.
func (l *DebugLogger) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.discard {
		return len(p), nil
	}

	if l.file != nil {
		n, err := l.file.Write(p)
		_ = l.file.Sync()
		return n, err
	}

	// p may be reused by the caller
	l.buffer = append(l.buffer, p...)
	return len(p), nil
}

// SetFile attaches the log file at path, creating it when needed, and
// flushes whatever was buffered. An empty path drops the buffer and
// discards all future output.
func SetFile(path string) error {
	globalDebugLogger.mu.Lock()
	defer globalDebugLogger.mu.Unlock()

	if globalDebugLogger.file != nil {
		_ = globalDebugLogger.file.Close()
		globalDebugLogger.file = nil
	}

	if path == "" {
		globalDebugLogger.discard = true
		globalDebugLogger.buffer = nil
		return nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) //nolint:gosec
	if err != nil {
		globalDebugLogger.discard = true
		globalDebugLogger.buffer = nil
		return err
	}

	globalDebugLogger.file = f
	globalDebugLogger.discard = false
	if len(globalDebugLogger.buffer) > 0 {
		_, _ = f.Write(globalDebugLogger.buffer)
		_ = f.Sync()
		globalDebugLogger.buffer = nil
	}
	return nil
}

// Printf writes a formatted debug message.
func Printf(format string, args ...any) {
	stdLogger.Printf(format, args...)
}

// Println writes a debug message.
func Println(v ...any) {
	stdLogger.Println(v...)
}

// Warnf writes a message prefixed with "warning:". State mutators use it
// when they ignore a request instead of failing.
func Warnf(format string, args ...any) {
	stdLogger.Printf("warning: "+format, args...)
}

// Close closes the log file, if any.
func Close() error {
	globalDebugLogger.mu.Lock()
	defer globalDebugLogger.mu.Unlock()

	if globalDebugLogger.file == nil {
		return nil
	}
	err := globalDebugLogger.file.Close()
	globalDebugLogger.file = nil
	return err
}

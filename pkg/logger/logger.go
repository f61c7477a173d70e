// Package logger provides the run's internal diagnostics log. It is
// separate from pkg/logging, which carries captured task output and audit
// events: this log records what nauman itself is doing (policy decisions,
// resolved commands) for debugging a run after the fact.
package logger

import (
	"fmt"
	"log"
	"os"
	"sync"
)

var (
	globalLogger *log.Logger
	logFile      *os.File
	verbose      bool
	mu           sync.Mutex
)

// Init points the diagnostics log at the given file, replacing any previous
// one. Until Init is called every log call is a no-op.
func Init(logPath string) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644) //#nosec G304 -- path lives under the run's log directory
	if err != nil {
		return fmt.Errorf("failed to create diagnostics log: %w", err)
	}

	logFile = f
	globalLogger = log.New(f, "", log.Ltime|log.Lmicroseconds)
	return nil
}

// SetVerbose additionally echoes every message to stderr.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// Close closes the diagnostics log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
		globalLogger = nil
	}
}

func emit(level, format string, v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	if globalLogger != nil {
		globalLogger.Printf(level+" "+format, v...)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, level+" "+format+"\n", v...)
	}
}

// Debug logs a debug message.
func Debug(format string, v ...interface{}) {
	emit("[DEBUG]", format, v...)
}

// Info logs an info message.
func Info(format string, v ...interface{}) {
	emit("[INFO]", format, v...)
}

// Error logs an error message.
func Error(format string, v ...interface{}) {
	emit("[ERROR]", format, v...)
}

package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// TODO: Allow configuration of log level (e.g., via env var or config file)

var defaultLogger *slog.Logger

// getLogFilePath determines the path for the application log file based on XDG spec.
func getLogFilePath() (string, error) {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not get user home directory: %w", err)
		}
		stateDir = filepath.Join(homeDir, ".local", "state")
	}

	return filepath.Join(stateDir, "photobatch", "app.log"), nil
}

// setupLogging configures the default logger based on whether to log to file and/or stderr.
func setupLogging(logToFile bool, logToStderr bool) {
	if !logToFile && !logToStderr {
		// Default to stderr if neither is specified, to ensure logs aren't lost.
		logToStderr = true
		fmt.Fprintln(os.Stderr, "Warning: No log output specified, defaulting to stderr.")
	}

	var writers []io.Writer

	if logToFile {
		logFilePath, err := getLogFilePath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error determining log file path: %v. File logging disabled.\n", err)
		} else {
			logDir := filepath.Dir(logFilePath)
			if err := os.MkdirAll(logDir, 0750); err != nil {
				fmt.Fprintf(os.Stderr, "Error creating log directory %s: %v. File logging disabled.\n", logDir, err)
			} else {
				file, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error opening log file %s: %v. File logging disabled.\n", logFilePath, err)
				} else {
					// The file handle is left for the OS to close on exit,
					// which is acceptable for a short-lived CLI tool.
					writers = append(writers, file)
				}
			}
		}
	}

	if logToStderr {
		writers = append(writers, os.Stderr)
	}

	var finalWriter io.Writer
	if len(writers) == 0 {
		// Fallback if all writers failed to initialize (should be rare)
		fmt.Fprintln(os.Stderr, "Error: All log writers failed to initialize. Logging to stderr as fallback.")
		finalWriter = os.Stderr
	} else if len(writers) == 1 {
		finalWriter = writers[0]
	} else {
		finalWriter = io.MultiWriter(writers...)
	}

	// JSON handler for structured logging consistency.
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	defaultLogger = slog.New(slog.NewJSONHandler(finalWriter, opts))
}

// InitLogger initializes the logger. quiet suppresses the stderr copy, which
// is needed while a progress view owns the terminal.
// It MUST be called once at the beginning of the application.
func InitLogger(quiet bool) {
	setupLogging(true, !quiet)
}

// SetLogger allows replacing the default logger instance, e.g. for tests.
// Should be used *after* InitLogger if needed.
func SetLogger(l *slog.Logger) {
	defaultLogger = l
}

// checkLogger ensures the logger is initialized before use, preventing nil panics.
func checkLogger() {
	if defaultLogger == nil {
		fmt.Fprintln(os.Stderr, "Error: Logger accessed before InitLogger was called. Initializing with defaults.")
		InitLogger(false)
	}
}

// Info logs an informational message.
func Info(msg string, args ...any) {
	checkLogger()
	defaultLogger.Info(msg, args...)
}

// Infof logs a formatted informational message.
// Note: slog prefers structured logging over formatted strings.
// This function is kept for compatibility but using Info with key-value pairs is recommended.
func Infof(format string, v ...interface{}) {
	checkLogger()
	defaultLogger.Info(fmt.Sprintf(format, v...))
}

// Error logs an error message.
func Error(msg string, args ...any) {
	checkLogger()
	defaultLogger.Error(msg, args...)
}

// Errorf logs a formatted error message.
func Errorf(format string, v ...interface{}) {
	checkLogger()
	defaultLogger.Error(fmt.Sprintf(format, v...))
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	checkLogger()
	defaultLogger.Debug(msg, args...)
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	checkLogger()
	defaultLogger.Warn(msg, args...)
}

// Warnf logs a formatted warning message.
func Warnf(format string, v ...interface{}) {
	checkLogger()
	defaultLogger.Warn(fmt.Sprintf(format, v...))
}

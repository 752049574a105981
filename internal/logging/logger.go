package logging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultLogFile = "webcanvas.log"
	maxLogSizeMB   = 5
	maxLogBackups  = 5
	maxLogAgeDays  = 14
)

var logger *slog.Logger

// InitLogger initializes the debug logger to write rotated logs under the
// application data directory. Logging helpers are nil-safe before Init.
func InitLogger(dataDir string) error {
	logPath := filepath.Join(dataDir, "logs", defaultLogFile)
	if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	writer := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    maxLogSizeMB,
		MaxBackups: maxLogBackups,
		MaxAge:     maxLogAgeDays,
		Compress:   true,
	}

	logger = slog.New(slog.NewTextHandler(writer, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	logger.Info("=== webcanvas log started ===")

	return nil
}

// Debug logs a debug message
func Debug(format string, v ...interface{}) {
	if logger != nil {
		logger.Debug(fmt.Sprintf(format, v...))
	}
}

// Info logs an info message
func Info(format string, v ...interface{}) {
	if logger != nil {
		logger.Info(fmt.Sprintf(format, v...))
	}
}

// Error logs an error message
func Error(format string, v ...interface{}) {
	if logger != nil {
		logger.Error(fmt.Sprintf(format, v...))
	}
}

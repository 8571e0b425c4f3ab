// Package log provides the debug logger for wtf.
//
// Logging is off unless WTF_DEBUG=1 is set. When enabled, entries go to a
// rotating debug.log inside the wtf config directory.
package log

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const debugEnv = "WTF_DEBUG"

var (
	logger      *zap.Logger
	enabled     bool
	initialized bool
	mu          sync.Mutex
	turnCount   int

	dumpDir     string // WTF_DUMP_DIR directory for raw request/response JSON
	dumpEnabled bool
)

// Init initializes the logger based on the WTF_DEBUG env var. dir is the
// directory that receives debug.log.
func Init(dir string) error {
	mu.Lock()
	defer mu.Unlock()

	if initialized {
		return nil
	}
	initialized = true

	if d := os.Getenv("WTF_DUMP_DIR"); d != "" {
		if err := os.MkdirAll(d, 0755); err != nil {
			return fmt.Errorf("failed to create WTF_DUMP_DIR: %w", err)
		}
		dumpDir = d
		dumpEnabled = true
	}

	if os.Getenv(debugEnv) != "1" {
		logger = zap.NewNop()
		return nil
	}
	enabled = true

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	writeSyncer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(dir, "debug.log"),
		MaxSize:    50, // MB
		MaxBackups: 3,
		MaxAge:     7, // Days
		Compress:   true,
	})

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "T",
		LevelKey:       "L",
		NameKey:        "",
		CallerKey:      "",
		MessageKey:     "M",
		StacktraceKey:  "",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout("15:04:05"),
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		writeSyncer,
		zapcore.DebugLevel,
	)
	logger = zap.New(core)
	logger.Info("debug logging started", zap.Int("pid", os.Getpid()))
	return nil
}

// IsEnabled returns whether debug logging is enabled
func IsEnabled() bool {
	return enabled
}

// Logger returns the underlying zap logger
func Logger() *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// Sync flushes any buffered log entries
func Sync() error {
	if logger != nil {
		return logger.Sync()
	}
	return nil
}

// NextTurn increments and returns the model call counter.
func NextTurn() int {
	mu.Lock()
	defer mu.Unlock()
	turnCount++
	return turnCount
}

// CurrentTurn returns the model call counter.
func CurrentTurn() int {
	mu.Lock()
	defer mu.Unlock()
	return turnCount
}

// escapeForLog escapes newlines and tabs for single-line log output
func escapeForLog(s string) string {
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return s
}

// LogStreamDone logs stream completion stats
func LogStreamDone(provider string, duration time.Duration, chunks int) {
	if !enabled {
		return
	}
	logger.Debug("stream done",
		zap.String("provider", provider),
		zap.Duration("duration", duration.Round(time.Millisecond)),
		zap.Int("chunks", chunks))
}

// LogTool logs tool execution with timing
func LogTool(name, id string, durationMs int64, success bool) {
	if !enabled {
		return
	}
	status := "ok"
	if !success {
		status = "error"
	}
	logger.Info(fmt.Sprintf("[tool] %s id=%s %dms %s", name, id, durationMs, status))
}

// LogError logs an error with a short context label.
func LogError(context string, err error) {
	if !enabled {
		return
	}
	logger.Error("!!! "+context, zap.Error(err))
}

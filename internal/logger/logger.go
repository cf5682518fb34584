package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu      sync.RWMutex
	base    = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	logFile *os.File
	logPath string
)

// Options controls the logger output
type Options struct {
	Level  string // debug/info/warn/error
	Format string // console/json
	File   string // optional file sink, stdout when empty
}

// Init configures the global logger
func Init(opts Options) error {
	var out io.Writer = os.Stdout

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		mu.Lock()
		logFile, logPath = f, opts.File
		mu.Unlock()
		out = io.MultiWriter(os.Stdout, f)
	}

	if !strings.EqualFold(opts.Format, "json") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}

	mu.Lock()
	base = zerolog.New(out).Level(level).With().Timestamp().Logger()
	mu.Unlock()

	if path := GetLogPath(); path != "" {
		LogInfo("Logger initialized, log file: %s", path)
	}
	return nil
}

// Close closes the log file, if any
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	logPath = ""
}

// L returns the global logger
func L() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := base
	return &l
}

// With returns a child logger carrying one string field, e.g. With("room", code)
func With(key, value string) zerolog.Logger {
	return L().With().Str(key, value).Logger()
}

// LogDebug logs a debug message
func LogDebug(format string, args ...any) {
	L().Debug().Msgf(format, args...)
}

// LogInfo logs an info message
func LogInfo(format string, args ...any) {
	L().Info().Msgf(format, args...)
}

// LogWarn logs a warning
func LogWarn(format string, args ...any) {
	L().Warn().Msgf(format, args...)
}

// LogError logs an error message
func LogError(format string, args ...any) {
	L().Error().Msgf(format, args...)
}

// LogPanic logs a panic with stack trace
func LogPanic(r any) {
	L().Error().Str("stack", string(debug.Stack())).Msgf("[PANIC] %v", r)
}

// GetLogPath returns the current log file path
func GetLogPath() string {
	mu.RLock()
	defer mu.RUnlock()
	return logPath
}

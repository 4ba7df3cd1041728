package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level represents logging severity.
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

// traceZapLevel sits below zap's DebugLevel so trace output can be filtered separately.
const traceZapLevel = zapcore.DebugLevel - 1

var (
	mu               sync.Mutex
	currentLevel     = LevelWarn
	currentVerbosity = 0
	atomicLevel      = zap.NewAtomicLevelAt(toZapLevel(LevelWarn))
	logger           = newLogger(os.Stderr)
)

func newLogger(w io.Writer) *zap.SugaredLogger {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.RFC3339TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(cfg),
		zapcore.Lock(zapcore.AddSync(w)),
		atomicLevel,
	)
	return zap.New(core).Sugar()
}

// SetOutput redirects log output, mainly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(w)
}

// L returns the structured logger for key/value logging.
func L() *zap.SugaredLogger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// Sync flushes buffered entries.
func Sync() {
	_ = L().Sync()
}

// SetVerbosity configures logger output from count of -v flags (0-4).
func SetVerbosity(count int) {
	if count < 0 {
		count = 0
	}
	if count > 4 {
		count = 4
	}

	var l Level
	switch count {
	case 0:
		l = LevelWarn
	case 1:
		l = LevelInfo
	case 2:
		l = LevelDebug
	default:
		l = LevelTrace
	}

	mu.Lock()
	currentVerbosity = count
	currentLevel = l
	mu.Unlock()
	atomicLevel.SetLevel(toZapLevel(l))
}

// SetLevel applies a named level such as "info". The -v count is updated to match.
func SetLevel(name string) error {
	_, count, err := ParseLevel(name)
	if err != nil {
		return err
	}
	SetVerbosity(count)
	if strings.EqualFold(name, "error") {
		mu.Lock()
		currentLevel = LevelError
		mu.Unlock()
		atomicLevel.SetLevel(zapcore.ErrorLevel)
	}
	return nil
}

// Verbosity returns the stored -v count.
func Verbosity() int {
	mu.Lock()
	defer mu.Unlock()
	return currentVerbosity
}

// LevelName returns current level label.
func LevelName() string {
	mu.Lock()
	defer mu.Unlock()
	return LevelToString(currentLevel)
}

// LevelToString converts a Level to human readable text.
func LevelToString(l Level) string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarn:
		return "warn"
	case LevelInfo:
		return "info"
	case LevelDebug:
		return "debug"
	case LevelTrace:
		return "trace"
	default:
		return "unknown"
	}
}

// ParseLevel returns Level + verbosity count from string.
func ParseLevel(s string) (Level, int, error) {
	switch strings.ToLower(s) {
	case "error":
		return LevelError, 0, nil
	case "warn", "warning":
		return LevelWarn, 0, nil
	case "info":
		return LevelInfo, 1, nil
	case "debug":
		return LevelDebug, 2, nil
	case "trace":
		return LevelTrace, 4, nil
	default:
		return LevelWarn, Verbosity(), fmt.Errorf("unknown level %s", s)
	}
}

func toZapLevel(l Level) zapcore.Level {
	switch l {
	case LevelError:
		return zapcore.ErrorLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelInfo:
		return zapcore.InfoLevel
	case LevelDebug:
		return zapcore.DebugLevel
	default:
		return traceZapLevel
	}
}

// Errorf always prints.
func Errorf(format string, args ...any) {
	L().Errorf(format, args...)
}

func Warnf(format string, args ...any) {
	L().Warnf(format, args...)
}

func Infof(format string, args ...any) {
	L().Infof(format, args...)
}

func Debugf(format string, args ...any) {
	L().Debugf(format, args...)
}

func Tracef(format string, args ...any) {
	L().Logf(traceZapLevel, format, args...)
}

package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Leveled logger shared by the API server and the CLI.
// - package-level Debug/Info/Warn/Error/Fatal variants and Init(level)
// - backed by zap; L() exposes the structured logger for request logs

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var (
	mu       sync.RWMutex
	level    = LevelInfo
	atom     = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	base     *zap.Logger
	sugar    *zap.SugaredLogger
	encoding = "json"
	output   = os.Stdout
)

func init() {
	setCore(newCore(encoding, output))
}

// Init sets the global log level (case-insensitive: debug, info, warn, error, fatal).
// Call early during startup. Default level is Info.
func Init(l string) {
	mu.Lock()
	defer mu.Unlock()
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "debug":
		level = LevelDebug
	case "warn", "warning":
		level = LevelWarn
	case "error":
		level = LevelError
	case "fatal":
		level = LevelFatal
	default:
		level = LevelInfo
	}
	atom.SetLevel(zapLevel(level))
}

// SetFormat switches the encoder between "json" (default) and "console".
func SetFormat(f string) {
	f = strings.ToLower(strings.TrimSpace(f))
	if f != "console" {
		f = "json"
	}
	mu.Lock()
	encoding = f
	out := output
	mu.Unlock()
	setCore(newCore(f, out))
}

// SetOutput redirects log lines, e.g. to os.Stderr when stdout carries
// command output.
func SetOutput(out *os.File) {
	mu.Lock()
	output = out
	f := encoding
	mu.Unlock()
	setCore(newCore(f, out))
}

// SetCore replaces the output core; used by tests to observe entries.
// The current level still applies.
func SetCore(core zapcore.Core) {
	setCore(core)
}

// L returns the structured logger.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

func setCore(core zapcore.Core) {
	l := zap.New(&levelFilter{Core: core})
	mu.Lock()
	base = l
	sugar = l.Sugar()
	mu.Unlock()
}

func newCore(f string, out *os.File) zapcore.Core {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if f == "console" {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}
	// filtering happens in levelFilter; the inner core accepts everything
	return zapcore.NewCore(enc, zapcore.Lock(out), zapcore.DebugLevel)
}

// levelFilter gates any core with the package's atomic level.
type levelFilter struct {
	zapcore.Core
}

func (f *levelFilter) Enabled(l zapcore.Level) bool { return atom.Enabled(l) }

func (f *levelFilter) With(fields []zapcore.Field) zapcore.Core {
	return &levelFilter{Core: f.Core.With(fields)}
}

func (f *levelFilter) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !atom.Enabled(e.Level) {
		return ce
	}
	return f.Core.Check(e, ce)
}

func zapLevel(l Level) zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	case LevelFatal:
		return zapcore.FatalLevel
	}
	return zapcore.InfoLevel
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

func Debugf(format string, v ...interface{}) { current().Debugf(format, v...) }

func Infof(format string, v ...interface{}) { current().Infof(format, v...) }

func Warnf(format string, v ...interface{}) { current().Warnf(format, v...) }

func Errorf(format string, v ...interface{}) { current().Errorf(format, v...) }

// Fatalf logs regardless of level and exits.
func Fatalf(format string, v ...interface{}) {
	l := current()
	_ = l.Desugar().Core().Write(zapcore.Entry{Level: zapcore.FatalLevel, Time: time.Now(), Message: fmt.Sprintf(format, v...)}, nil)
	_ = l.Sync()
	os.Exit(1)
}

// Println kept for brief messages (maps to Info)
func Println(v ...interface{}) {
	current().Info(strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

// Debug/Info/Warn/Error helpers that accept a single string
func Debug(v string) { Debugf("%s", v) }
func Info(v string)  { Infof("%s", v) }
func Warn(v string)  { Warnf("%s", v) }
func Error(v string) { Errorf("%s", v) }

// Sync flushes buffered entries.
func Sync() { _ = current().Sync() }

// LevelString returns the current level as text.
func LevelString() string {
	mu.RLock()
	defer mu.RUnlock()
	switch level {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	}
	return "info"
}

package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitAndLevelString(t *testing.T) {
	Init("debug")
	if got := LevelString(); got != "debug" {
		t.Fatalf("LevelString() = %q, want %q", got, "debug")
	}
	Init("WARN")
	if got := LevelString(); got != "warn" {
		t.Fatalf("LevelString() = %q, want %q", got, "warn")
	}
	Init("Error")
	if got := LevelString(); got != "error" {
		t.Fatalf("LevelString() = %q, want %q", got, "error")
	}
	Init("nonsense")
	if got := LevelString(); got != "info" {
		t.Fatalf("LevelString() = %q, want %q for unknown input", got, "info")
	}
}

func TestLevelFilteringAndPrintln(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetCore(core)
	defer SetFormat("json")

	Init("warn")
	Debugf("debug-msg")
	Infof("info-msg")
	Warnf("warn-msg")
	Errorf("error-msg %d", 7)

	if n := logs.FilterMessage("debug-msg").Len(); n != 0 {
		t.Fatalf("debug messages should be suppressed at warn level")
	}
	if n := logs.FilterMessage("info-msg").Len(); n != 0 {
		t.Fatalf("info messages should be suppressed at warn level")
	}
	if n := logs.FilterMessage("warn-msg").Len(); n != 1 {
		t.Fatalf("warn message missing: %v", logs.All())
	}
	if n := logs.FilterMessage("error-msg 7").Len(); n != 1 {
		t.Fatalf("error message missing: %v", logs.All())
	}

	// Println maps to info and is suppressed at warn
	Println("hello")
	if logs.FilterMessage("hello").Len() != 0 {
		t.Fatalf("Println should be suppressed at warn level")
	}

	Init("info")
	Println("hello")
	if logs.FilterMessage("hello").Len() != 1 {
		t.Fatalf("Println expected at info level, got: %v", logs.All())
	}
}

func TestStructuredLoggerSharesLevel(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetCore(core)
	defer SetFormat("json")

	Init("error")
	L().Info("request")
	if logs.Len() != 0 {
		t.Fatalf("structured info entry should be filtered at error level")
	}
	Init("debug")
	L().Debug("request")
	if logs.Len() != 1 {
		t.Fatalf("structured debug entry expected at debug level")
	}
	Init("info")
}

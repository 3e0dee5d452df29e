/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{TraceLevel, "TRACE"},
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{Level(999), "UNKNOWN"},
	}

	for _, test := range tests {
		if result := test.level.String(); result != test.expected {
			t.Errorf("Level.String() = %v, expected %v", result, test.expected)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"trace":   TraceLevel,
		"DEBUG":   DebugLevel,
		"info":    InfoLevel,
		"warning": WarnLevel,
		"warn":    WarnLevel,
		"error":   ErrorLevel,
		"bogus":   InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerInitialization(t *testing.T) {
	if err := Initialize(Config{Level: InfoLevel, Component: "test"}); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}
	if defaultLogger == nil {
		t.Fatal("Initialize() did not set defaultLogger")
	}
	if defaultLogger.config.Component != "test" {
		t.Errorf("Initialize() did not set config correctly, got component: %s", defaultLogger.config.Component)
	}
}

func TestLoggerPrettyFormatting(t *testing.T) {
	l := New(Config{Level: InfoLevel, Component: "cache"}, &bytes.Buffer{})

	entry := LogEntry{
		Time:      time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		Level:     "INFO",
		Message:   "test message",
		Component: "cache",
		Fields:    map[string]interface{}{"b": 2, "a": "value"},
	}

	result := l.formatPretty(entry)
	expected := "2025-01-01 12:00:00 [INFO] cache: test message {a=value, b=2}"
	if result != expected {
		t.Errorf("formatPretty() = %q, expected %q", result, expected)
	}
}

func TestLoggerJSONFormatting(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: InfoLevel, JSON: true, Component: "engine"}, &buf)

	l.Info("scan complete", Int("documents", 3))

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry.Message != "scan complete" || entry.Component != "engine" || entry.Level != "INFO" {
		t.Errorf("unexpected entry: %+v", entry)
	}
	if entry.Fields["documents"] != float64(3) {
		t.Errorf("documents field = %v", entry.Fields["documents"])
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: WarnLevel}, &buf)

	l.Debug("debug")
	l.Info("info")
	if buf.Len() != 0 {
		t.Errorf("messages below level were written: %q", buf.String())
	}
	l.Warn("warn")
	l.Error("error")
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: InfoLevel}, &buf)
	base.With("fix").Info("applied")
	if !strings.Contains(buf.String(), "fix: applied") {
		t.Errorf("component missing: %q", buf.String())
	}
	if base.config.Component != "" {
		t.Errorf("With must not mutate the parent")
	}
}

func TestNopAndNil(t *testing.T) {
	Nop().Error("dropped")
	var l *Logger
	l.Info("dropped")
	if l.With("x") != nil {
		t.Error("With on nil logger should stay nil")
	}
}

func TestFieldConstructors(t *testing.T) {
	if f := String("k", "v"); f.Key != "k" || f.Value != "v" {
		t.Errorf("String() = %+v", f)
	}
	if f := Int("n", 4); f.Value != 4 {
		t.Errorf("Int() = %+v", f)
	}
	if f := Bool("b", true); f.Value != true {
		t.Errorf("Bool() = %+v", f)
	}
	if f := Duration("d", time.Second); f.Value != "1s" {
		t.Errorf("Duration() = %+v", f)
	}
	if f := Err(errors.New("boom")); f.Key != "error" || f.Value != "boom" {
		t.Errorf("Err() = %+v", f)
	}
	if f := Err(nil); f.Value != "<nil>" {
		t.Errorf("Err(nil) = %+v", f)
	}
}

func TestSetOutput(t *testing.T) {
	if err := Initialize(Config{Level: InfoLevel}); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	SetOutput(&buf)
	Info("hello")
	Warn("careful")
	if !strings.Contains(buf.String(), "hello") || !strings.Contains(buf.String(), "careful") {
		t.Errorf("default logger output missing: %q", buf.String())
	}
}

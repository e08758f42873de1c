package logger

import (
	"bytes"
	"testing"
)

func TestSetVerbose(t *testing.T) {
	l := NewWithOutput(&bytes.Buffer{}, false)

	if l.IsVerbose() {
		t.Error("expected verbose to be false initially")
	}

	l.SetVerbose(true)
	if !l.IsVerbose() {
		t.Error("expected verbose to be true after SetVerbose(true)")
	}

	l.SetVerbose(false)
	if l.IsVerbose() {
		t.Error("expected verbose to be false after SetVerbose(false)")
	}
}

func TestDebug_WhenVerbose(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOutput(&buf, true)

	l.Debug("test message %s", "arg")

	if got := buf.String(); got != "[DEBUG] test message arg\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestDebug_WhenNotVerbose(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOutput(&buf, false)

	l.Debug("test message")
	l.Info("test message")
	l.Section("Parse")

	if buf.Len() != 0 {
		t.Errorf("expected no output when verbose is disabled, got: %q", buf.String())
	}
}

func TestInfoAndSection(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOutput(&buf, true)

	l.Section("Rules")
	l.Info("%d rules", 12)

	want := "\n=== Rules ===\n[INFO] 12 rules\n"
	if got := buf.String(); got != want {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestWarn_AlwaysPrinted(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOutput(&buf, false)

	l.Warn("cache unavailable: %v", "disk full")

	if got := buf.String(); got != "[WARN] cache unavailable: disk full\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestNilLogger(t *testing.T) {
	var l *Logger

	// none of these may panic
	l.SetVerbose(true)
	l.Debug("x")
	l.Info("x")
	l.Warn("x")
	l.Section("x")

	if l.IsVerbose() {
		t.Error("expected nil logger not to be verbose")
	}
}

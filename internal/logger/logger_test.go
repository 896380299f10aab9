package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func reset() { Init(Options{}) }

func TestInit_DefaultLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{Output: buf})
	defer reset()

	Debug("hidden")
	Info("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug message logged at info level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("info message missing")
	}
}

func TestInit_Debug(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{Debug: true, Output: buf})
	defer reset()

	Debug("stage complete", "stage", "finalize")
	if !strings.Contains(buf.String(), "stage=finalize") {
		t.Errorf("output = %q, want stage attribute", buf.String())
	}
}

func TestInit_QuietOverridesDebug(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{Debug: true, Quiet: true, Output: buf})
	defer reset()

	Debug("d")
	Info("i")
	Warn("w")
	Error("e")

	if got := strings.Count(buf.String(), "\n"); got != 1 {
		t.Errorf("got %d lines, want only the error: %q", got, buf.String())
	}
}

func TestInit_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{JSON: true, Output: buf})
	defer reset()

	Warn("conversion warning", "source", "2401.00001")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if rec["msg"] != "conversion warning" || rec["source"] != "2401.00001" {
		t.Errorf("record = %v", rec)
	}
}

func TestWith(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{Output: buf})
	defer reset()

	With("component", "fetch").Info("done")
	if !strings.Contains(buf.String(), "component=fetch") {
		t.Errorf("output = %q", buf.String())
	}
}

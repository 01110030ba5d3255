package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Format: HumanFormat, Level: WarnLevel, Output: &buf})

	logger.Debug("d", nil)
	logger.Info("i", nil)
	logger.Warn("w", nil)
	logger.Error("e", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "[warn] w") || !strings.Contains(lines[1], "[error] e") {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Format: JSONFormat, Level: InfoLevel, Output: &buf})

	logger.Info("converted", map[string]interface{}{"components": 12})

	var entry struct {
		Level   string                 `json:"level"`
		Message string                 `json:"message"`
		Fields  map[string]interface{} `json:"fields"`
	}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry.Level != "info" || entry.Message != "converted" {
		t.Errorf("entry = %+v", entry)
	}
	if entry.Fields["components"] != float64(12) {
		t.Errorf("fields = %v", entry.Fields)
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{Format: HumanFormat, Level: InfoLevel, Output: &buf})
	run := logger.WithFields(map[string]interface{}{"runId": "abc"})

	run.Info("start", nil)
	run.Info("done", map[string]interface{}{"tokens": 100})

	out := buf.String()
	if strings.Count(out, "runId=abc") != 2 {
		t.Errorf("runId not carried on every entry: %q", out)
	}
	if !strings.Contains(out, "runId=abc, tokens=100") {
		t.Errorf("fields not sorted deterministically: %q", out)
	}
}

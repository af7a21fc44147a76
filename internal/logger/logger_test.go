package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "interview.log")

	l, err := New(true, true, path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Debug("recording started")
	l.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry); err != nil {
		t.Fatalf("log line is not json: %q", data)
	}
	if entry["msg"] != "recording started" || entry["level"] != "debug" {
		t.Errorf("entry = %v", entry)
	}
}

func TestNewSkipsDebugByDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "interview.log")

	l, err := New(false, false, path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Debug("hidden")
	l.Info("shown")
	l.Sync()

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "hidden") {
		t.Error("debug entry written at info level")
	}
	if !strings.Contains(string(data), "shown") {
		t.Errorf("log = %q, want info entry", data)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"  short  ", 10, "short"},
		{"I built a cache layer", 7, "I built..."},
		{"привет мир", 6, "привет..."},
		{"anything", 0, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.limit); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
}

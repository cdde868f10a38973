package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetup_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := Setup(&buf, slog.LevelInfo)

	l.Info("fetched headlines", slog.String("category", "science"), slog.Int("page", 2))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected valid JSON log output, got error: %v\nraw output: %s", err, buf.String())
	}
	if entry["msg"] != "fetched headlines" {
		t.Errorf("msg = %q, want %q", entry["msg"], "fetched headlines")
	}
	if entry["category"] != "science" {
		t.Errorf("category = %q, want %q", entry["category"], "science")
	}
	if _, ok := entry["time"]; !ok {
		t.Error("expected 'time' field in JSON log output")
	}
}

func TestSetup_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := Setup(&buf, slog.LevelWarn)

	l.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info should be filtered at warn level, got %s", buf.String())
	}
	l.Error("kept")
	if !strings.Contains(buf.String(), `"level":"ERROR"`) {
		t.Errorf("expected ERROR entry, got %s", buf.String())
	}
}

func TestOpen_AppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "headlines.log")

	for i := 0; i < 2; i++ {
		l, closer, err := Open(path, slog.LevelInfo)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		l.Info("entry")
		if err := closer.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), "\n"); n != 2 {
		t.Errorf("expected 2 log lines, got %d:\n%s", n, data)
	}
}

func TestOpen_EmptyPathDiscards(t *testing.T) {
	l, closer, err := Open("", slog.LevelInfo)
	if err != nil {
		t.Fatal(err)
	}
	l.Info("nowhere")
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}
}

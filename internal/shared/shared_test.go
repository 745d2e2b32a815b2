package shared

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNormalizeTrackKey(t *testing.T) {
	tc := []struct {
		name   string
		title  string
		artist string
		want   string
	}{
		{name: "basic normalization", title: "Song Title", artist: "Artist Name", want: "song title|artist name"},
		{name: "extra whitespace", title: "  Song   Title  ", artist: "  Artist   Name  ", want: "song title|artist name"},
		{name: "mixed case", title: "SoNg TiTlE", artist: "ArTiSt NaMe", want: "song title|artist name"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTrackKey(tt.title, tt.artist); got != tt.want {
				t.Errorf("NormalizeTrackKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tc := []struct {
		seconds int
		want    string
	}{
		{0, "00:00"},
		{59, "00:59"},
		{185, "03:05"},
		{3600, "60:00"},
		{3661, "01:01:01"},
		{-5, "00:00"},
	}

	for _, tt := range tc {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatDuration(tt.seconds); got != tt.want {
				t.Errorf("FormatDuration(%d) = %s, want %s", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestLoggers(t *testing.T) {
	t.Run("NewLogger writes to writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		logger.Info("hello", "key", "value")

		if !strings.Contains(buf.String(), "key=value") {
			t.Errorf("expected structured output, got %s", buf.String())
		}
	})

	t.Run("NewFileLogger creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "flow.log")
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger failed: %v", err)
		}
		logger.Info("written")

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read log file: %v", err)
		}
		if !strings.Contains(string(data), "written") {
			t.Errorf("expected log line in file, got %s", data)
		}
	})
}

func TestMarshalJSON(t *testing.T) {
	data := map[string]int{"a": 1}

	compact, err := MarshalJSON(data, false)
	if err != nil || string(compact) != `{"a":1}` {
		t.Errorf("unexpected compact output %s (%v)", compact, err)
	}

	pretty, err := MarshalJSON(data, true)
	if err != nil || !strings.Contains(string(pretty), "\n  \"a\": 1") {
		t.Errorf("unexpected pretty output %s (%v)", pretty, err)
	}

	unescaped, _ := MarshalJSON("Drum & Bass", false)
	if string(unescaped) != `"Drum & Bass"` {
		t.Errorf("expected HTML characters to be kept, got %s", unescaped)
	}
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Error("expected unique ids")
	}
	if len(a) != 36 {
		t.Errorf("expected uuid string, got %s", a)
	}
}

func TestBrowserCommand(t *testing.T) {
	for _, goos := range []string{"darwin", "linux", "windows"} {
		t.Run(goos, func(t *testing.T) {
			cmd, err := browserCommand(goos, "https://oauth.vk.com/authorize")
			if err != nil {
				t.Fatalf("expected command, got %v", err)
			}
			if cmd.Args[len(cmd.Args)-1] != "https://oauth.vk.com/authorize" {
				t.Errorf("expected url as last argument, got %v", cmd.Args)
			}
		})
	}

	t.Run("unsupported", func(t *testing.T) {
		if _, err := browserCommand("plan9", "x"); err == nil {
			t.Error("expected error for unsupported platform")
		}
	})
}

package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	// Create a temporary log file
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	// Write 10 lines of content
	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf(`{"level":"info","n":%d}`, i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{
			name:     "read all (0)",
			maxLines: 0,
			expected: expectedAll,
		},
		{
			name:     "read all (negative)",
			maxLines: -1,
			expected: expectedAll,
		},
		{
			name:     "read partial (5)",
			maxLines: 5,
			expected: expectedAll[5:],
		},
		{
			name:     "read exactly all (10)",
			maxLines: 10,
			expected: expectedAll,
		},
		{
			name:     "read more than exists (20)",
			maxLines: 20,
			expected: expectedAll,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestReadMissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "absent.log"), 10)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Read() = %v, want no lines", got)
	}
}

func TestRender(t *testing.T) {
	lines := []string{
		`{"level":"warn","component":"editor","save_id":"01J","time":"2026-10-19T10:00:00Z","message":"save failed"}`,
		"",
		"plain text line",
		`{"broken json`,
	}

	var out strings.Builder
	if err := Render(&out, lines, false); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	got := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(got) != 3 {
		t.Fatalf("Render() wrote %d lines, want 3: %q", len(got), out.String())
	}
	for _, want := range []string{"WRN", "save failed", "save_id=01J", "component=editor"} {
		if !strings.Contains(got[0], want) {
			t.Errorf("rendered event %q missing %q", got[0], want)
		}
	}
	if got[1] != "plain text line" {
		t.Errorf("plain line = %q", got[1])
	}
	if got[2] != `{"broken json` {
		t.Errorf("broken json line = %q", got[2])
	}
}

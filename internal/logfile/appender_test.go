package logfile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func TestAppendCreatesAndAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.txt")
	a := NewAppender(path)

	if err := a.Append("first"); err != nil {
		t.Fatalf("Append error: %v", err)
	}
	if err := a.Append("second", "third"); err != nil {
		t.Fatalf("Append error: %v", err)
	}

	lines := readLines(t, path)
	want := []string{"first", "second", "third"}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d: %q", len(lines), len(want), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestAppendPreservesExistingContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.txt")
	if err := os.WriteFile(path, []byte("old\n"), 0644); err != nil {
		t.Fatal(err)
	}
	NewAppender(path).Append("new")

	lines := readLines(t, path)
	if len(lines) != 2 || lines[0] != "old" || lines[1] != "new" {
		t.Fatalf("unexpected content: %q", lines)
	}
}

func TestAppendFailsOnMissingDir(t *testing.T) {
	a := NewAppender(filepath.Join(t.TempDir(), "missing", "job.txt"))
	if err := a.Append("x"); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestWriteOrPrintFallsBackToOut(t *testing.T) {
	a := NewAppender(filepath.Join(t.TempDir(), "missing", "job.txt"))
	var out bytes.Buffer

	err := WriteOrPrint(a, &out, "Failed to write heartbeat log", "line one", "line two")
	if err == nil {
		t.Fatal("expected error")
	}
	got := out.String()
	if !strings.HasPrefix(got, "Failed to write heartbeat log: ") {
		t.Fatalf("unexpected fallback output: %q", got)
	}
	if !strings.HasSuffix(got, "line one\nline two\n") {
		t.Fatalf("fallback should print the lines: %q", got)
	}
}

func TestWriteOrPrintSuccessIsSilent(t *testing.T) {
	a := NewAppender(filepath.Join(t.TempDir(), "job.txt"))
	var out bytes.Buffer
	if err := WriteOrPrint(a, &out, "prefix", "line"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output, got %q", out.String())
	}
}

func TestConcurrentAppendsKeepLinesWhole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.txt")
	a := NewAppender(path)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a.Append(fmt.Sprintf("line-%02d-%s", i, strings.Repeat("x", 64)))
		}(i)
	}
	wg.Wait()

	lines := readLines(t, path)
	if len(lines) != 50 {
		t.Fatalf("got %d lines, want 50", len(lines))
	}
	for _, line := range lines {
		if len(line) != len("line-00-")+64 {
			t.Fatalf("corrupted line: %q", line)
		}
	}
}

package logbook

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestTailReturnsRecentLinesAndTotal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.journal")
	book, err := New(path)
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	for i := 0; i < 5; i++ {
		book.Info("sample-%d", i)
	}
	lines, total := book.Tail(3)
	if total != 5 {
		t.Fatalf("total lines = %d, want 5", total)
	}
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	for idx, want := range []string{"sample-2", "sample-3", "sample-4"} {
		if !strings.Contains(lines[idx], want) {
			t.Fatalf("line %d = %q, missing %s", idx, lines[idx], want)
		}
	}
}

func TestEntryFormatCarriesRunAndLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run.journal")
	fixed := time.Date(2017, 6, 24, 12, 0, 0, 0, time.UTC)
	book, err := New(path, WithClock(func() time.Time { return fixed }), WithRun("abc123"))
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	book.Warn("  zero entries in %s  ", "ElElEl/WZ")
	lines, total := book.Tail(10)
	if total != 1 {
		t.Fatalf("total = %d, want 1", total)
	}
	want := "2017-06-24T12:00:00Z WARN  [abc123] zero entries in ElElEl/WZ"
	if lines[0] != want {
		t.Fatalf("line = %q, want %q", lines[0], want)
	}
}

func TestNilLogbookIsSilent(t *testing.T) {
	var book *Logbook
	book.Info("ignored")
	if lines, total := book.Tail(5); lines != nil || total != 0 {
		t.Fatalf("nil logbook tail = %v, %d", lines, total)
	}
	if book.Path() != "" {
		t.Fatalf("nil logbook path = %q", book.Path())
	}
}

package repl

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHistory_Persist(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", BaseHistory)
	h := NewHistory(path)

	if err := h.Load(); err != nil {
		t.Fatalf("Load missing file: %v", err)
	}

	for _, e := range []HistoryEntry{
		{"1 + 1", modeEval},
		{"version", modeCtrl},
		{"1 + 1", modeEval},
		{"1 + 1", modeEval},
		{"1 + 1", modeCtrl},
		{"   ", modeEval},
	} {
		if _, err := h.Append(e.Line, e.Mode); err != nil {
			t.Fatalf("Append(%q): %v", e.Line, err)
		}
	}

	want := []HistoryEntry{
		{"version", modeCtrl},
		{"1 + 1", modeEval},
		{"1 + 1", modeCtrl},
	}

	if diff := cmp.Diff(want, h.Entries(), cmp.AllowUnexported(HistoryEntry{})); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if got, want := string(data), ": version\n= 1 + 1\n: 1 + 1\n"; got != want {
		t.Errorf("file = %q, want %q", got, want)
	}

	loaded := NewHistory(path)
	if err := loaded.Load(); err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(want, loaded.Entries(), cmp.AllowUnexported(HistoryEntry{})); diff != "" {
		t.Errorf("loaded mismatch (-want +got):\n%s", diff)
	}
}

func TestHistory_Entry(t *testing.T) {
	t.Parallel()

	h := NewHistory("")
	if _, err := h.Append("SUM(1, 2)", modeEval); err != nil {
		t.Fatal(err)
	}

	if e, err := h.Entry(0); err != nil || e.Line != "SUM(1, 2)" {
		t.Errorf("Entry(0) = %v, %v", e, err)
	}

	for _, i := range []int{-1, 1} {
		if _, err := h.Entry(i); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Entry(%d) error = %v, want ErrOutOfBounds", i, err)
		}
	}
}

func TestHistory_Limit(t *testing.T) {
	t.Parallel()

	h := NewHistory(filepath.Join(t.TempDir(), BaseHistory))

	for i := range MaxHistory + 5 {
		if _, err := h.Append(strconv.Itoa(i), modeEval); err != nil {
			t.Fatal(err)
		}
	}

	if h.Len() != MaxHistory {
		t.Fatalf("Len = %d, want %d", h.Len(), MaxHistory)
	}

	if e, _ := h.Entry(0); e.Line != "5" {
		t.Errorf("oldest = %q, want %q", e.Line, "5")
	}

	loaded := NewHistory(h.path)
	if err := loaded.Load(); err != nil {
		t.Fatal(err)
	}

	if loaded.Len() != MaxHistory {
		t.Errorf("loaded Len = %d, want %d", loaded.Len(), MaxHistory)
	}
}

package repl

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/ardnew/formulate/pkg"
)

const (
	// BaseHistory is the default history file name.
	BaseHistory = "history.txt"
	historyMode = 0o600

	// MaxHistory bounds the number of entries kept on disk.
	MaxHistory = 1000
)

// HistoryEntry is one submitted line and the mode it was entered in.
type HistoryEntry struct {
	Line string
	Mode inputMode
}

// String renders the entry as stored: the mode prompt followed by the line.
func (e HistoryEntry) String() string {
	if e.Mode == modeCtrl {
		return ctrlPrompt + e.Line
	}

	return evalPrompt + e.Line
}

func parseHistoryEntry(s string) (HistoryEntry, bool) {
	if line, ok := strings.CutPrefix(s, ctrlPrompt); ok {
		return HistoryEntry{Line: line, Mode: modeCtrl}, line != ""
	}

	line := strings.TrimPrefix(s, evalPrompt)

	return HistoryEntry{Line: line, Mode: modeEval}, line != ""
}

// History is a deduplicated list of submitted lines persisted to a file.
// A History with an empty path is kept in memory only.
type History struct {
	mu      sync.RWMutex
	path    string
	entries []HistoryEntry
}

// NewHistory returns a History backed by the file at path.
func NewHistory(path string) *History {
	return &History{path: path}
}

// Load replaces the entries with the contents of the history file.
// A missing file is not an error.
func (h *History) Load() error {
	if h.path == "" {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	f, err := os.Open(h.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return err
	}
	defer f.Close()

	h.entries = h.entries[:0]

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if e, ok := parseHistoryEntry(strings.TrimSpace(sc.Text())); ok {
			h.entries = append(h.entries, e)
		}
	}

	return sc.Err()
}

// Append records line under mode, moving an identical earlier entry to the
// end. It returns the new number of entries.
func (h *History) Append(line string, mode inputMode) (int, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return h.Len(), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	e := HistoryEntry{Line: line, Mode: mode}

	if n := len(h.entries); n > 0 && h.entries[n-1] == e {
		return n, nil
	}

	i := slices.Index(h.entries, e)
	if i >= 0 {
		h.entries = slices.Delete(h.entries, i, i+1)
	}

	h.entries = append(h.entries, e)

	if over := len(h.entries) - MaxHistory; over > 0 {
		h.entries = slices.Delete(h.entries, 0, over)
		i = 0
	}

	if i >= 0 {
		return len(h.entries), h.rewrite()
	}

	return len(h.entries), h.appendFile(e)
}

// Entry returns the entry at index i, oldest first.
func (h *History) Entry(i int) (HistoryEntry, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if i < 0 || i >= len(h.entries) {
		return HistoryEntry{}, ErrOutOfBounds
	}

	return h.entries[i], nil
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.entries)
}

// Entries returns a copy of all entries, oldest first.
func (h *History) Entries() []HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return slices.Clone(h.entries)
}

func (h *History) appendFile(e HistoryEntry) error {
	if h.path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(h.path), pkg.DirMode); err != nil {
		return err
	}

	f, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, historyMode)
	if err != nil {
		return err
	}

	_, err = f.WriteString(e.String() + "\n")

	return errors.Join(err, f.Close())
}

// rewrite replaces the history file. h.mu must be held.
func (h *History) rewrite() error {
	if h.path == "" {
		return nil
	}

	var b strings.Builder
	for _, e := range h.entries {
		b.WriteString(e.String())
		b.WriteByte('\n')
	}

	if err := os.MkdirAll(filepath.Dir(h.path), pkg.DirMode); err != nil {
		return err
	}

	return os.WriteFile(h.path, []byte(b.String()), historyMode)
}

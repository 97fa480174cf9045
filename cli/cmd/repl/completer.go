package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/formulate/formula"
)

// ctrlCommands are the control-mode commands offered for completion.
//
//nolint:gochecknoglobals
var ctrlCommands = []string{
	"clear", "cls", "edit", "help", "metrics", "owner",
	"quit", "role", "roles", "set", "strict", "unset", "version",
}

// isWordBoundary reports whether r delimits completion words. Reference
// punctuation ('@', '.', '#', '-') belongs to the word so that references
// complete as a whole.
func isWordBoundary(r rune) bool {
	switch r {
	case ' ', '\t',
		'(', ')', '{', '}',
		'+', '*', '/', '^', '&',
		'<', '>', '=', '!',
		',', ';', '"', '\'':
		return true
	}

	return false
}

// wordBounds returns the word around cursor and its byte offsets in input.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(cursor, len(input))

	start = cursor
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor
	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// candidates lists the completions available in the current mode: control
// commands, or library functions followed by session bindings.
func (m model) candidates() []string {
	if m.mode == modeCtrl {
		return ctrlCommands
	}

	return append(formula.FunctionNames(), m.session.Names()...)
}

// computeMatches ranks candidates against the word under the cursor. An
// empty word yields no matches so the hint line stays visible.
func (m model) computeMatches() (matches fuzzy.Matches, wordStart, wordEnd int) {
	input := m.input.Value()

	word, start, end := wordBounds(input, m.input.Position())
	if m.mode == modeCtrl && start == 0 {
		word = strings.TrimPrefix(word, ":")
		start += len(input[start:end]) - len(word)
	}

	if word == "" {
		return nil, start, end
	}

	if m.mode == modeEval && isNumeric(word) {
		return nil, start, end
	}

	return fuzzy.Find(word, m.candidates()), start, end
}

func isNumeric(word string) bool {
	r, _ := utf8.DecodeRuneInString(word)

	return r >= '0' && r <= '9'
}

// renderCandidateBar lays matches out on one line, ellipsized to width. The
// selected candidate is highlighted while tab-cycling.
func renderCandidateBar(matches fuzzy.Matches, selected int, tabbing bool, width int) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	ellipsis := hintStyle.Render("...")
	room := width - lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		entry := renderCandidate(match, tabbing && i == selected)

		w := lipgloss.Width(entry)
		if i > 0 {
			w += len(sep)
		}

		if i > 0 && used+w > room && i < len(matches)-1 {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(entry)

		used += w
	}

	return b.String()
}

// renderCandidate highlights the characters of match that the typed word
// matched. Functions get a "()" suffix for display only.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base, highlight := suggestionStyle, suggestionStyle.Bold(true)
	if selected {
		base, highlight = selectedStyle, selectedStyle.Bold(true)
	}

	hit := make(map[int]bool, len(match.MatchedIndexes))
	for _, i := range match.MatchedIndexes {
		hit[i] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if hit[i] {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	if _, ok := formula.LookupFunction(match.Str); ok {
		b.WriteString(base.Render("()"))
	}

	return b.String()
}

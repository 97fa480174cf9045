package formula

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

const (
	formulaPrefix       = "node-formula:"
	legacyFormulaPrefix = "formula:"
	uuidLen             = 36
)

// invisible matches runes that editors smuggle into stored tokens: zero-width
// characters, bidi controls, NBSP, soft hyphen, BOM, and C0/C1 controls other
// than ordinary whitespace.
func invisible(r rune) bool {
	switch {
	case r == '\t', r == '\n', r == '\r':
		return false
	case r == '\u00a0', r == '\u00ad', r == '\ufeff':
		return true
	case r >= '\u200b' && r <= '\u200f':
		return true
	case r >= '\u202a' && r <= '\u202e':
		return true
	case r >= '\u2060' && r <= '\u2069':
		return true
	}

	return unicode.IsControl(r)
}

// Clean removes invisible runes from s and trims surrounding whitespace.
func Clean(s string) string {
	out, _, err := transform.String(runes.Remove(runes.Predicate(invisible)), s)
	if err != nil {
		out = s
	}

	return strings.TrimSpace(out)
}

func unbrace(s string) (string, bool) {
	if len(s) >= 4 && strings.HasPrefix(s, "{{") && strings.HasSuffix(s, "}}") {
		return strings.TrimSpace(s[2 : len(s)-2]), true
	}

	return s, false
}

// Classify tags a single stored token. It never fails: anything that is not
// recognized is returned as [KindOther] with its cleaned text.
func Classify(raw string) Token {
	s, braced := unbrace(Clean(raw))
	t := Token{Raw: raw, Kind: KindOther, Text: s}

	if braced {
		t.Text = "{{" + s + "}}"
	}

	if s == "" {
		return t
	}

	if id, ok := formulaID(s); ok {
		t.Kind, t.ID, t.Text = KindFormula, id, ""

		return t
	}

	if ref, ok := classifyReference(s); ok {
		ref.Raw = raw

		return ref
	}

	if braced {
		// A placeholder around something other than a reference is a role
		// key unless it is itself a literal.
		if lit, ok := classifyLiteral(s); ok {
			lit.Raw = raw

			return lit
		}

		return t
	}

	if lit, ok := classifyLiteral(s); ok {
		lit.Raw = raw

		return lit
	}

	return t
}

// formulaID finds a formula reference anywhere in s. It takes priority over
// every other reference form.
func formulaID(s string) (string, bool) {
	lower := strings.ToLower(s)

	at := strings.Index(lower, formulaPrefix)
	skip := len(formulaPrefix)

	if at < 0 {
		at = strings.Index(lower, legacyFormulaPrefix)
		skip = len(legacyFormulaPrefix)

		if at < 0 || (at > 0 && isIdentRune(rune(lower[at-1]))) {
			return "", false
		}
	}

	id := s[at+skip:]
	if end := strings.IndexFunc(id, func(r rune) bool { return !isRefIDRune(r) }); end >= 0 {
		id = id[:end]
	}

	return id, id != ""
}

func classifyReference(s string) (Token, bool) {
	var t Token

	switch {
	case strings.HasPrefix(s, "@value."):
		t.Kind, t.ID = KindValue, s[len("@value."):]

	case strings.HasPrefix(s, "@select."):
		t.Kind = KindSelect
		t.ID, t.Sub, _ = strings.Cut(s[len("@select."):], ".")

	case strings.HasPrefix(s, "@calculated."):
		t.Kind, t.ID = KindCalculated, s[len("@calculated."):]

		if len(t.ID) > uuidLen && t.ID[uuidLen] == '-' && uuid.Validate(t.ID[:uuidLen]) == nil {
			t.ID, t.Suffix = t.ID[:uuidLen], t.ID[uuidLen+1:]
		}

	case strings.HasPrefix(s, "@table."):
		t.Kind, t.ID = KindTable, s[len("@table."):]

	case strings.HasPrefix(s, "#") && len(s) > 1 && !strings.ContainsFunc(s[1:], unicode.IsSpace):
		t.Kind, t.ID = KindMarker, s[1:]

	default:
		return t, false
	}

	return t, t.ID != ""
}

func classifyLiteral(s string) (Token, bool) {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return Token{Kind: KindString, Text: unescape(s[1 : len(s)-1])}, true
	}

	if isNumberLiteral(s) {
		return Token{Kind: KindNumber, Text: s}, true
	}

	if op, ok := operatorAliases[strings.ToUpper(s)]; ok {
		return Token{Kind: KindOperator, Text: op}, true
	}

	if name, ok := strings.CutSuffix(s, "("); ok {
		name = strings.TrimSpace(name)
		if name != "" && isIdentStart(rune(name[0])) && !strings.ContainsFunc(name, notIdentRune) {
			return Token{Kind: KindFunction, Text: strings.ToUpper(name)}, true
		}
	}

	return Token{}, false
}

// operatorAliases maps every accepted operator spelling to its canonical
// form.
//
//nolint:gochecknoglobals
var operatorAliases = map[string]string{
	"+": "+", "-": "-", "*": "*", "/": "/", "^": "^", "&": "&",
	"(": "(", ")": ")", ",": ",", ";": ";",
	"=": "==", "==": "==", "!=": "!=", "<>": "!=", "\u2260": "!=",
	">": ">", "<": "<", ">=": ">=", "<=": "<=", "\u2265": ">=", "\u2264": "<=",
	"\u00d7": "*", "\u00f7": "/", "CONCAT": "&",
}

func isNumberLiteral(s string) bool {
	if s == "" || !(s[0] >= '0' && s[0] <= '9' || s[0] == '.') {
		return false
	}

	_, err := strconv.ParseFloat(s, 64)

	return err == nil
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder

	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}

		b.WriteByte(s[i])
	}

	return b.String()
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentRune(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9')
}

// Function names may contain dots (ARRONDI.SUP).
func notIdentRune(r rune) bool { return !isIdentRune(r) && r != '.' }

func isRefIDRune(r rune) bool { return isIdentRune(r) || r == '-' }

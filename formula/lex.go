package formula

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// LexKind tags a [Lexeme].
type LexKind int

const (
	LexNumber LexKind = iota
	LexString
	LexVariable
	LexOperator
	LexFunction
	LexOpen
	LexClose
	LexSeparator
)

//nolint:gochecknoglobals
var lexKindNames = [...]string{
	LexNumber:    "number",
	LexString:    "string",
	LexVariable:  "variable",
	LexOperator:  "operator",
	LexFunction:  "function",
	LexOpen:      "open",
	LexClose:     "close",
	LexSeparator: "separator",
}

func (k LexKind) String() string {
	if k >= 0 && int(k) < len(lexKindNames) {
		return lexKindNames[k]
	}

	return "LexKind(" + strconv.Itoa(int(k)) + ")"
}

// MarshalText encodes k by name.
func (k LexKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Lexeme is a single lexical unit of a normalized expression.
//
// Variables carry the role key (for {{key}} placeholders) or the raw
// reference text. Functions carry the upper-cased name as written; alias
// resolution happens in [ToRPN].
type Lexeme struct {
	Kind LexKind `json:"kind"`
	Text string  `json:"text"`
	Num  float64 `json:"num,omitempty"`
	Pos  int     `json:"pos"`
}

// operand reports whether l can end an operand.
func (l Lexeme) operand() bool {
	switch l.Kind {
	case LexNumber, LexString, LexVariable, LexClose:
		return true
	}

	return false
}

type lexer struct {
	src string
	pos int
	out []Lexeme
}

// Lex splits expr into lexemes. It rejects unterminated strings and
// placeholders, stray identifiers and characters outside the grammar.
func Lex(expr string) ([]Lexeme, error) {
	lx := &lexer{src: expr}

	for {
		lx.skipSpace()

		if lx.pos >= len(lx.src) {
			return lx.out, nil
		}

		if err := lx.next(); err != nil {
			return nil, err
		}
	}
}

func (lx *lexer) fail(at int, detail string) *ParseError {
	return newParseError(ParseFailure, lx.src, at, detail)
}

func (lx *lexer) emit(kind LexKind, text string, num float64, at int) {
	lx.out = append(lx.out, Lexeme{Kind: kind, Text: text, Num: num, Pos: at})
}

func (lx *lexer) last() (Lexeme, bool) {
	if len(lx.out) == 0 {
		return Lexeme{}, false
	}

	return lx.out[len(lx.out)-1], true
}

func (lx *lexer) skipSpace() {
	for lx.pos < len(lx.src) {
		r, n := utf8.DecodeRuneInString(lx.src[lx.pos:])
		if !unicode.IsSpace(r) && !invisible(r) {
			return
		}

		lx.pos += n
	}
}

// peekAfterSpace returns the first non-space byte at or after i.
func (lx *lexer) peekAfterSpace(i int) byte {
	for i < len(lx.src) && (lx.src[i] == ' ' || lx.src[i] == '\t' || lx.src[i] == '\n' || lx.src[i] == '\r') {
		i++
	}

	if i < len(lx.src) {
		return lx.src[i]
	}

	return 0
}

func (lx *lexer) span(start int, keep func(rune) bool) string {
	end := start
	for end < len(lx.src) {
		r, n := utf8.DecodeRuneInString(lx.src[end:])
		if !keep(r) {
			break
		}

		end += n
	}

	lx.pos = end

	return lx.src[start:end]
}

func (lx *lexer) next() error {
	at := lx.pos
	rest := lx.src[at:]
	c := rest[0]

	switch {
	case strings.HasPrefix(rest, "{{"):
		end := strings.Index(rest, "}}")
		if end < 0 {
			return lx.fail(at, "unterminated placeholder")
		}

		key := strings.TrimSpace(rest[2:end])
		if key == "" {
			return lx.fail(at, "empty placeholder")
		}

		lx.pos += end + 2
		lx.emit(LexVariable, key, 0, at)

	case c == '@' || c == '#':
		ref := lx.span(at+1, func(r rune) bool {
			return isRefIDRune(r) || r == '.' || r == ':'
		})
		if ref == "" {
			return lx.fail(at, "unexpected character "+strconv.QuoteRune(rune(c)))
		}

		lx.emit(LexVariable, string(c)+ref, 0, at)

	case c >= '0' && c <= '9', c == '.' && len(rest) > 1 && rest[1] >= '0' && rest[1] <= '9':
		return lx.number(at)

	case c == '"' || c == '\'':
		return lx.quoted(at, c)

	case isIdentStart(rune(c)):
		return lx.ident(at)

	default:
		return lx.operator(at)
	}

	return nil
}

func (lx *lexer) number(at int) error {
	end := at
	digits := func() {
		for end < len(lx.src) && lx.src[end] >= '0' && lx.src[end] <= '9' {
			end++
		}
	}

	digits()

	if end < len(lx.src) && lx.src[end] == '.' {
		end++
		digits()
	}

	if end < len(lx.src) && (lx.src[end] == 'e' || lx.src[end] == 'E') {
		exp := end + 1
		if exp < len(lx.src) && (lx.src[exp] == '+' || lx.src[exp] == '-') {
			exp++
		}

		if exp < len(lx.src) && lx.src[exp] >= '0' && lx.src[exp] <= '9' {
			end = exp
			digits()
		}
	}

	text := lx.src[at:end]

	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return lx.fail(at, "malformed number "+strconv.Quote(text))
	}

	lx.pos = end
	lx.emit(LexNumber, text, v, at)

	return nil
}

func (lx *lexer) quoted(at int, q byte) error {
	var b strings.Builder

	for i := at + 1; i < len(lx.src); i++ {
		switch c := lx.src[i]; {
		case c == '\\' && i+1 < len(lx.src):
			i++
			b.WriteByte(lx.src[i])
		case c == q:
			lx.pos = i + 1
			lx.emit(LexString, b.String(), 0, at)

			return nil
		default:
			b.WriteByte(c)
		}
	}

	return lx.fail(at, "unterminated string")
}

func (lx *lexer) ident(at int) error {
	lower := strings.ToLower(lx.src[at:])

	for _, prefix := range []string{formulaPrefix, legacyFormulaPrefix} {
		if strings.HasPrefix(lower, prefix) {
			id := lx.span(at+len(prefix), isRefIDRune)
			if id == "" {
				return lx.fail(at, "formula reference without id")
			}

			lx.emit(LexVariable, formulaPrefix+id, 0, at)

			return nil
		}
	}

	name := lx.span(at, func(r rune) bool { return !notIdentRune(r) })
	upper := strings.ToUpper(name)
	call := lx.peekAfterSpace(lx.pos) == '('
	prev, ok := lx.last()
	infix := ok && prev.operand()

	switch {
	case upper == "TRUE" || upper == "FALSE":
		if upper == "TRUE" {
			lx.emit(LexNumber, "1", 1, at)
		} else {
			lx.emit(LexNumber, "0", 0, at)
		}

	case (upper == "AND" || upper == "OR") && infix:
		lx.emit(LexOperator, upper, 0, at)

	case upper == "CONCAT" && !call:
		lx.emit(LexOperator, "&", 0, at)

	case call:
		lx.emit(LexFunction, upper, 0, at)

	default:
		return lx.fail(at, "unexpected identifier "+strconv.Quote(name))
	}

	return nil
}

func (lx *lexer) operator(at int) error {
	rest := lx.src[at:]

	if len(rest) >= 2 {
		if op, ok := operatorAliases[rest[:2]]; ok {
			lx.pos += 2
			lx.emit(LexOperator, op, 0, at)

			return nil
		}
	}

	r, n := utf8.DecodeRuneInString(rest)

	op, ok := operatorAliases[string(r)]
	if !ok {
		return lx.fail(at, "unexpected character "+strconv.QuoteRune(r))
	}

	lx.pos += n

	switch op {
	case "(":
		lx.emit(LexOpen, op, 0, at)
	case ")":
		lx.emit(LexClose, op, 0, at)
	case ",", ";":
		lx.emit(LexSeparator, op, 0, at)
	default:
		lx.emit(LexOperator, op, 0, at)
	}

	return nil
}

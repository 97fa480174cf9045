package repl

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/formulate/formula"
)

// paramNames names the parameters of library functions for signature hints.
// Functions missing here get generic names.
//
//nolint:gochecknoglobals
var paramNames = map[string][]string{
	"ROUND":      {"number", "digits"},
	"ROUND_UP":   {"number", "digits"},
	"ROUND_DOWN": {"number", "digits"},
	"TRUNC":      {"number", "digits"},
	"INT":        {"number"},
	"CEILING":    {"number", "step"},
	"FLOOR":      {"number", "step"},
	"ATAN2":      {"x", "y"},
	"POWER":      {"base", "exponent"},
	"LOG":        {"number", "base"},
	"MOD":        {"number", "divisor"},
	"PI":         {"factor"},
	"IF":         {"condition", "then", "else"},
	"IFERROR":    {"value", "fallback"},
	"IFNULL":     {"value", "fallback"},
	"SAFEDIV":    {"numerator", "denominator", "fallback"},
	"PERCENTAGE": {"part", "whole"},
	"RATIO":      {"numerator", "denominator"},
	"INDIRECT":   {"reference"},
	"ROW":        {"range"},
	"GT":         {"a", "b"},
	"GTE":        {"a", "b"},
	"LT":         {"a", "b"},
	"LTE":        {"a", "b"},
	"EQ":         {"a", "b"},
	"NEQ":        {"a", "b"},
}

//nolint:gochecknoglobals
var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

// functionCall describes the call enclosing the cursor.
type functionCall struct {
	name     string
	argIndex int
	inCall   bool
}

// detectFunctionCall finds the innermost unclosed call before cursor and the
// index of the argument being typed. Both ',' and ';' separate arguments.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(cursor, len(input))

	open, depth := -1, 0

	for i := cursor; i > 0; {
		r, size := utf8.DecodeLastRuneInString(input[:i])
		i -= size

		if r == ')' {
			depth++
		} else if r == '(' {
			if depth == 0 {
				open = i

				break
			}

			depth--
		}
	}

	if open < 0 {
		return functionCall{}
	}

	start := open
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if !isNameRune(r) {
			break
		}

		start -= size
	}

	name := input[start:open]
	if name == "" {
		return functionCall{}
	}

	arg := 0
	depth = 0

	for _, r := range input[open+1 : cursor] {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',', ';':
			if depth == 0 {
				arg++
			}
		}
	}

	return functionCall{name: name, argIndex: arg, inCall: true}
}

func isNameRune(r rune) bool {
	return r == '_' || r == '.' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// getSignature renders the signature of library function name, resolving
// aliases. It returns "" for unknown names.
func getSignature(name string) (signature string, params []string) {
	fn, ok := formula.LookupFunction(name)
	if !ok {
		return "", nil
	}

	params = parameters(fn)

	return strings.ToUpper(name) + "(" + strings.Join(params, ", ") + ")", params
}

func parameters(fn *formula.Function) []string {
	named := paramNames[fn.Name]

	n := fn.MaxArgs
	if n == formula.Variadic {
		n = fn.MinArgs + 1
	}

	params := make([]string, n)
	for i := range params {
		switch {
		case i < len(named):
			params[i] = named[i]
		case n == 1:
			params[i] = "value"
		default:
			params[i] = "value" + strconv.Itoa(i+1)
		}

		if i >= fn.MinArgs {
			params[i] = "[" + params[i] + "]"
		}
	}

	if fn.MaxArgs == formula.Variadic {
		params[n-1] = "...values"
	}

	return params
}

// renderSignatureHint renders signature with the parameter at argIndex
// highlighted. A variadic tail stays highlighted past its position.
func renderSignatureHint(signature string, params []string, argIndex int) string {
	name, _, ok := strings.Cut(signature, "(")
	if !ok {
		return signatureStyle.Render(signature)
	}

	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(name))
	b.WriteString(signatureStyle.Render("("))

	for i, p := range params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		variadic := strings.HasPrefix(p, "...")
		if i == argIndex || (variadic && argIndex >= i) {
			b.WriteString(currentParamStyle.Render(p))
		} else {
			b.WriteString(signatureStyle.Render(p))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}

package formula

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
)

func TestCompile_Program(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"1 + 2 * 3", "1 2 3 * +"},
		{"(1 + 2) * 3", "1 2 + 3 *"},
		{"2 ^ 3 ^ 2", "2 3 2 ^ ^"},
		{"-2 ^ 2", "2 NEG 2 ^"},
		{"2 * -3", "2 3 NEG *"},
		{"-(1)", "1 NEG"},
		{"+4", "4"},
		{"10 - 4 - 3", "10 4 - 3 -"},
		{`{{a}} & "x"`, `{{a}} "x" &`},
		{"1 + 2 & 3", "1 2 + 3 &"},
		{`"a" CONCAT "b"`, `"a" "b" &`},
		{`concat("a", 1)`, `"a" 1 CONCAT/2`},
		{"SUM(1, 2; 3)", "1 2 3 SUM/3"},
		{"PI()", "PI/0"},
		{"if((3>2) and (5==5), 10, 0)", "3 2 > 5 5 == AND 10 0 IF/3"},
		{"1 < 2 = 1", "1 2 < 1 =="},
		{"1 <> 2", "1 2 !="},
		{"{{a}} and {{b}} or {{c}}", "{{a}} {{b}} AND {{c}} OR"},
		{"and(1, 0)", "1 0 AND/2"},
		{"avg(1) + moyenne(2)", "1 AVERAGE/1 2 AVERAGE/1 +"},
		{"TRUE + false", "1 0 +"},
		{"@value.x * 2", "{{@value.x}} 2 *"},
		{"node-formula:f-1 / 2", "{{node-formula:f-1}} 2 /"},
		{"1.5e3 + .5", "1.5e3 .5 +"},
		{"round(sum(1, max(2, 3)), 0)", "1 2 3 MAX/2 SUM/2 0 ROUND/2"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			prog, err := Compile(tt.expr)
			if err != nil {
				t.Fatalf("Compile(%q) error: %v", tt.expr, err)
			}

			if got := prog.String(); got != tt.want {
				t.Errorf("Compile(%q) = %q, want %q", tt.expr, got, tt.want)
			}
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		expr   string
		kind   ErrorKind
		detail string
	}{
		{"((1+2", ParseFailure, "unbalanced parentheses"},
		{"1+2)", ParseFailure, "unbalanced parentheses"},
		{"1 +", ParseFailure, "missing operand"},
		{"* 2", ParseFailure, "missing operand"},
		{"()", ParseFailure, "missing operand"},
		{"1 2", ParseFailure, "missing operator"},
		{`{{a}} "b"`, ParseFailure, "use & to concatenate"},
		{"SUM(1,", ParseFailure, "missing operand"},
		{"SUM(1", ParseFailure, "missing ')' to close SUM"},
		{"SUM(1,,2)", ParseFailure, "missing argument"},
		{"FOO(1)", ParseFailure, "unknown function FOO"},
		{"SQR(4)", ParseFailure, "did you mean SQRT?"},
		{"ROUND(1, 2, 3)", ArityMismatch, "ROUND takes 1 to 2 arguments, got 3"},
		{"NOT()", ArityMismatch, "NOT takes exactly 1 arguments, got 0"},
		{"1, 2", ParseFailure, "separator outside"},
		{`"abc`, ParseFailure, "unterminated string"},
		{"1 $ 2", ParseFailure, "unexpected character"},
		{"foo + 1", ParseFailure, "unexpected identifier"},
		{"{{a", ParseFailure, "unterminated placeholder"},
		{"", ParseFailure, "empty expression"},
		{"   ", ParseFailure, "empty expression"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := Compile(tt.expr)
			if err == nil {
				t.Fatalf("Compile(%q) succeeded, want error", tt.expr)
			}

			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("Compile(%q) error %T is not *ParseError", tt.expr, err)
			}

			if pe.Kind != tt.kind {
				t.Errorf("kind = %v, want %v", pe.Kind, tt.kind)
			}

			if !strings.Contains(pe.Detail, tt.detail) {
				t.Errorf("detail = %q, want it to contain %q", pe.Detail, tt.detail)
			}

			if !errors.Is(err, ErrParse) && !errors.Is(err, ErrArity) {
				t.Errorf("error %v matches no sentinel", err)
			}
		})
	}
}

func TestParseError_Snippet(t *testing.T) {
	_, err := Compile("1 + )")

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %v", err)
	}

	if pe.Offset != 4 {
		t.Errorf("offset = %d, want 4", pe.Offset)
	}

	if want := "1 + )\n    ^"; pe.Snippet() != want {
		t.Errorf("snippet = %q, want %q", pe.Snippet(), want)
	}
}

func TestToRPN_Deterministic(t *testing.T) {
	const expr = `SI({{ref_1}} >= 10; ARRONDI({{ref_2}} / 3, 2), "n/a") & "!"`

	lexemes, err := Lex(expr)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}

	first, err := ToRPN(lexemes)
	if err != nil {
		t.Fatalf("ToRPN: %v", err)
	}

	again, _ := Lex(expr)

	second, err := ToRPN(again)
	if err != nil {
		t.Fatalf("ToRPN: %v", err)
	}

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("programs differ (-first +second):\n%s", diff)
	}
}

func TestLex(t *testing.T) {
	got, err := Lex("ROUND({{ a }}; 2) \u2265 'it\\'s'")
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}

	want := []Lexeme{
		{Kind: LexFunction, Text: "ROUND", Pos: 0},
		{Kind: LexOpen, Text: "(", Pos: 5},
		{Kind: LexVariable, Text: "a", Pos: 6},
		{Kind: LexSeparator, Text: ";", Pos: 13},
		{Kind: LexNumber, Text: "2", Num: 2, Pos: 15},
		{Kind: LexClose, Text: ")", Pos: 16},
		{Kind: LexOperator, Text: ">=", Pos: 18},
		{Kind: LexString, Text: "it's", Pos: 22},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Lex mismatch (-want +got):\n%s", diff)
	}
}

func FuzzCompile(f *testing.F) {
	for _, seed := range []string{
		"1 + 2 * 3",
		"((1+2",
		`SI({{a}} > 2; "x"; "y")`,
		"-(-(-1))",
		"SUMPRODUCT(INDIRECT(\"1:3\"), 2)",
		"@calculated.x-y & #m",
		"",
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, expr string) {
		if !utf8.ValidString(expr) {
			t.Skip("invalid UTF-8")
		}

		first, err := Compile(expr)
		if err != nil {
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("Compile(%q) returned %T, want *ParseError", expr, err)
			}

			return
		}

		second, _ := Compile(expr)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Fatalf("Compile(%q) not deterministic:\n%s", expr, diff)
		}

		// Executing any compiled program must not panic.
		Execute(first, Resolver{}, nil)
	})
}

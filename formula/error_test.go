package formula

import (
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestErrorKind_Text(t *testing.T) {
	for k := ParseFailure; k <= RangeTruncated; k++ {
		b, err := k.MarshalText()
		if err != nil {
			t.Fatal(err)
		}

		var got ErrorKind
		if err := got.UnmarshalText(b); err != nil || got != k {
			t.Errorf("UnmarshalText(%s) = %v, %v", b, got, err)
		}
	}

	var k ErrorKind
	if err := k.UnmarshalText([]byte("bogus")); !errors.Is(err, ErrInvalidKind) {
		t.Errorf("UnmarshalText(bogus) error = %v, want %v", err, ErrInvalidKind)
	}

	b, err := json.Marshal(Result{Value: 1.5, Errors: []ErrorKind{DivisionByZero, RangeTruncated}})
	if err != nil {
		t.Fatal(err)
	}

	if want := `{"value":1.5,"errors":["division_by_zero","range_truncated"]}`; string(b) != want {
		t.Errorf("json = %s, want %s", b, want)
	}
}

func TestErrorKind_Fatal(t *testing.T) {
	fatal := map[ErrorKind]bool{
		ParseFailure:      true,
		ArityMismatch:     true,
		CircularReference: true,
		EvaluationFailure: true,
	}

	for k := ParseFailure; k <= RangeTruncated; k++ {
		if k.Fatal() != fatal[k] {
			t.Errorf("%s.Fatal() = %v", k, k.Fatal())
		}
	}
}

func TestError_Is(t *testing.T) {
	cause := errors.New("boom")
	err := ErrEvaluate.Wrap(cause).With(slog.String("expr", "1/0"))

	if !errors.Is(err, ErrEvaluate) {
		t.Error("derived error does not match its sentinel")
	}

	if !errors.Is(err, cause) {
		t.Error("derived error does not match its cause")
	}

	if errors.Is(err, ErrParse) {
		t.Error("derived error matches an unrelated sentinel")
	}

	if got, want := err.Error(), "evaluation failed: boom"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestParseError(t *testing.T) {
	_, err := Compile("SUM(1,")

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Compile() error = %T, want *ParseError", err)
	}

	if pe.Kind != ParseFailure {
		t.Errorf("kind = %s, want %s", pe.Kind, ParseFailure)
	}

	if !strings.Contains(pe.Error(), "at offset") {
		t.Errorf("Error() = %q lacks offset", pe.Error())
	}

	_, err = Compile("ABS(1, 2)")
	if !errors.Is(err, ErrArity) {
		t.Errorf("Compile(ABS(1, 2)) error = %v, want %v", err, ErrArity)
	}
}

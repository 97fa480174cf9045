package repl

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want any
	}{
		{"42", 42.0},
		{"-3", -3.0},
		{"2.5", 2.5},
		{"true", true},
		{"bolt", "bolt"},
		{"20,5", "20,5"},
		{"[1, 2, 3]", []any{1.0, 2.0, 3.0}},
		{"{a: 1}", "{a: 1}"},
		{"", ""},
	}

	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, ParseValue(tt.raw)); diff != "" {
			t.Errorf("ParseValue(%q) mismatch (-want +got):\n%s", tt.raw, diff)
		}
	}
}

func TestFormatValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		v    any
		want string
	}{
		{nil, "null"},
		{1234567.0, "1234567"},
		{0.125, "0.125"},
		{1e22, "1e+22"},
		{"x", `"x"`},
		{[]float64{1, 2.5}, "[1, 2.5]"},
		{true, "?"},
	}

	for _, tt := range tests {
		if got := FormatValue(tt.v); got != tt.want {
			t.Errorf("FormatValue(%#v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestSession_RoundTrip(t *testing.T) {
	t.Parallel()

	s := NewSession()
	s.Owner = "N1"
	s.Set("a", "1")
	s.Set("tags", "[2, 3]")
	s.SetRole("r", "@value.a")

	data, err := s.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	got, err := ParseSession(data)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(s, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"a", "r", "tags"}, got.Names()); diff != "" {
		t.Errorf("Names mismatch (-want +got):\n%s", diff)
	}

	if _, err := ParseSession([]byte("values: [")); err == nil {
		t.Error("ParseSession accepted malformed YAML")
	}
}

func TestAssignment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		k, v   string
		wantOK bool
	}{
		{"a=1", "a", "1", true},
		{" a = x=y ", "a", "x=y", true},
		{"=1", "", "1", false},
		{"a", "a", "", false},
	}

	for _, tt := range tests {
		k, v, ok := Assignment(tt.in)
		if k != tt.k || v != tt.v || ok != tt.wantOK {
			t.Errorf("Assignment(%q) = %q, %q, %v", tt.in, k, v, ok)
		}
	}
}

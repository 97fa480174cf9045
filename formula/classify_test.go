package formula

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestClassify(t *testing.T) {
	const id = "123e4567-e89b-12d3-a456-426614174000"

	tests := []struct {
		raw  string
		want Token
	}{
		{"@value.abc", Token{Kind: KindValue, ID: "abc"}},
		{"{{@select.n1.opt2}}", Token{Kind: KindSelect, ID: "n1", Sub: "opt2"}},
		{"@select.n1", Token{Kind: KindSelect, ID: "n1"}},
		{"@calculated." + id + "-total", Token{Kind: KindCalculated, ID: id, Suffix: "total"}},
		{"@calculated." + id, Token{Kind: KindCalculated, ID: id}},
		{"@calculated.node7-x", Token{Kind: KindCalculated, ID: "node7-x"}},
		{"@table.t1", Token{Kind: KindTable, ID: "t1"}},
		{"node-formula:abc-123", Token{Kind: KindFormula, ID: "abc-123"}},
		{"formula:xyz", Token{Kind: KindFormula, ID: "xyz"}},
		{"@value.node-formula:f1", Token{Kind: KindFormula, ID: "f1"}},
		{"#total", Token{Kind: KindMarker, ID: "total"}},
		{`"hi there"`, Token{Kind: KindString, Text: "hi there"}},
		{"3.5", Token{Kind: KindNumber, Text: "3.5"}},
		{"concat", Token{Kind: KindOperator, Text: "&"}},
		{"<>", Token{Kind: KindOperator, Text: "!="}},
		{"sum(", Token{Kind: KindFunction, Text: "SUM"}},
		{"arrondi.sup (", Token{Kind: KindFunction, Text: "ARRONDI.SUP"}},
		{"\u200b@value.a\u00a0", Token{Kind: KindValue, ID: "a"}},
		{"\u202a#m\u202c", Token{Kind: KindMarker, ID: "m"}},
		{"whatever", Token{Kind: KindOther, Text: "whatever"}},
		{"{{price}}", Token{Kind: KindOther, Text: "{{price}}"}},
		{"{{42}}", Token{Kind: KindNumber, Text: "42"}},
		{"@value.", Token{Kind: KindOther, Text: "@value."}},
		{"", Token{Kind: KindOther}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := Classify(tt.raw)
			tt.want.Raw = tt.raw

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Classify(%q) mismatch (-want +got):\n%s", tt.raw, diff)
			}
		})
	}
}

func TestToken_Reference(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"{{ @value.a }}", "@value.a"},
		{"@select.n.o", "@select.n.o"},
		{"formula:f", "node-formula:f"},
		{"#m", "#m"},
		{"+", ""},
	}

	for _, tt := range tests {
		if got := Classify(tt.raw).Reference(); got != tt.want {
			t.Errorf("Classify(%q).Reference() = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestToken_Owns(t *testing.T) {
	tests := []struct {
		raw   string
		owner string
		want  bool
	}{
		{"@calculated.N", "N", true},
		{"@value.N", "N", true},
		{"@select.N", "N", false},
		{"@calculated.M", "N", false},
		{"@value.N", "", false},
	}

	for _, tt := range tests {
		if got := Classify(tt.raw).Owns(tt.owner); got != tt.want {
			t.Errorf("Classify(%q).Owns(%q) = %v, want %v", tt.raw, tt.owner, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name      string
		tokens    []string
		wantExpr  string
		wantRoles RoleMap
	}{
		{
			name:      "shared role key",
			tokens:    []string{"@value.a", "+", "@value.b", "*", "@value.a", "CONCAT", `"x"`},
			wantExpr:  `{{ref_1}} + {{ref_2}} * {{ref_1}} & "x"`,
			wantRoles: RoleMap{"ref_1": "@value.a", "ref_2": "@value.b"},
		},
		{
			name:      "legacy formula reference",
			tokens:    []string{"formula:f1", "/", "2"},
			wantExpr:  "{{ref_1}} / 2",
			wantRoles: RoleMap{"ref_1": "node-formula:f1"},
		},
		{
			name:      "function call",
			tokens:    []string{"SOMME(", "@table.t", ";", "3", ")"},
			wantExpr:  "SOMME( {{ref_1}} ; 3 )",
			wantRoles: RoleMap{"ref_1": "@table.t"},
		},
		{
			name:      "invisible tokens dropped",
			tokens:    []string{"1", "\u200b", "+", "2"},
			wantExpr:  "1 + 2",
			wantRoles: RoleMap{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, roles := Normalize(tt.tokens)

			if expr != tt.wantExpr {
				t.Errorf("expression = %q, want %q", expr, tt.wantExpr)
			}

			if diff := cmp.Diff(tt.wantRoles, roles); diff != "" {
				t.Errorf("roles mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalize_Compiles(t *testing.T) {
	expr, _ := Normalize([]string{"SI(", "@value.a", ">", "2", ",", `"big"`, ",", `"small"`, ")"})

	if _, err := Compile(expr); err != nil {
		t.Fatalf("normalized expression %q does not compile: %v", expr, err)
	}
}

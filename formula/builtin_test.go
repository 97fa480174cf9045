package formula

import (
	"math"
	"testing"
)

func TestBuiltins(t *testing.T) {
	values := map[string]any{"@value.x": 42}

	tests := []struct {
		expr string
		want float64
		errs []ErrorKind
	}{
		// rounding
		{"ROUND(2.5)", 3, nil},
		{"ROUND(-2.5)", -3, nil},
		{"ROUND(1.2345, 2)", 1.23, nil},
		{"ROUND(1234, -2)", 1200, nil},
		{"ROUND(1.5, 400)", 1.5, nil},
		{"ROUND(1234, -400)", 0, nil},
		{"ARRONDI(0.125; 2)", 0.13, nil},
		{"ROUND_UP(1.21, 1)", 1.3, nil},
		{"ROUND_UP(-1.21, 1)", -1.3, nil},
		{"ROUND_DOWN(1.29, 1)", 1.2, nil},
		{"ROUND_DOWN(-1.29, 1)", -1.2, nil},
		{"INT(-1.5)", -2, nil},
		{"TRUNC(-1.57, 1)", -1.5, nil},
		{"CEILING(4.1, 2)", 6, nil},
		{"FLOOR(4.9, 2)", 4, nil},
		{"CEILING(3.2, 0)", 3.2, nil},
		{"PLAFOND(2.1)", 3, nil},
		// trigonometry
		{"DEGREES(PI())", 180, nil},
		{"RADIANS(180)", math.Pi, nil},
		{"SIN(0) + COS(0)", 1, nil},
		{"TAN(PI() / 4)", 1, nil},
		{"ASIN(1)", math.Pi / 2, nil},
		{"ACOS(1)", 0, nil},
		{"ATAN(1)", math.Pi / 4, nil},
		{"ATAN2(1, 1)", math.Pi / 4, nil},
		{"ATAN2(2, 0)", 0, nil},
		// math
		{"SQRT(16)", 4, nil},
		{"SQRT(-4)", 0, []ErrorKind{InvalidResult}},
		{"POWER(2, 10)", 1024, nil},
		{"EXP(0)", 1, nil},
		{"LN(1)", 0, nil},
		{"LN(0)", 0, nil},
		{"LOG(100)", 2, nil},
		{"LOG(8, 2)", 3, nil},
		{"LOG(-1)", 0, nil},
		{"LOG10(1000)", 3, nil},
		{"ABS(-3)", 3, nil},
		{"SIGN(-2) + SIGNE(5)", 0, nil},
		{"MOD(7, 3)", 1, nil},
		{"MOD(-7, 3)", -1, nil},
		{"MOD(7, -3)", 1, nil},
		{"MOD(5.5, 2)", 1.5, nil},
		{"MOD(5, 0)", 0, []ErrorKind{DivisionByZero}},
		{"PI(2)", 2 * math.Pi, nil},
		// statistics
		{"MIN(3, 1, 2)", 1, nil},
		{"MAX(3, 1, 2)", 3, nil},
		{"AVERAGE(1, 2, 3, 4)", 2.5, nil},
		{`COUNT(1, "2", "x")`, 1, nil},
		{`COUNT(1, 2, INDIRECT("3:5"))`, 5, nil},
		{`NB(INDIRECT("1:4"))`, 4, nil},
		{`SUMPRODUCT(INDIRECT("1:3"), INDIRECT("4:6"))`, 32, nil},
		{`SUMPRODUCT(INDIRECT("1:3"), 2)`, 12, nil},
		{`SUMPRODUCT(INDIRECT("1:3"))`, 6, nil},
		// logic
		{"IF(0, 1, 2)", 2, nil},
		{"IF(1, 5)", 5, nil},
		{"IF(0, 5)", 0, nil},
		{"SI(1 > 2; 1; 0)", 0, nil},
		{"NOT(0)", 1, nil},
		{"AND(1, 1, 0)", 0, nil},
		{"OR(0, 0, 3)", 1, nil},
		{"1 and 0 or 1", 1, nil},
		{"IFERROR(1 / 0, 7)", 7, []ErrorKind{DivisionByZero}},
		{"IFERROR(4, 7)", 4, nil},
		{"SIERREUR(SQRT(-1); 9)", 9, []ErrorKind{InvalidResult}},
		{"IFERROR({{missing}}, 3)", 3, []ErrorKind{UnknownVariable}},
		// comparison
		{`"abc" == "abc"`, 1, nil},
		{`"10" > 9`, 1, nil},
		{`"b" > "a"`, 1, nil},
		{"GTE(2, 2) + LT(1, 2) + NEQ(1, 1)", 2, nil},
		// utility
		{`SUM(ROW(INDIRECT("2:4")))`, 9, nil},
		{`SUM(INDIRECT("4:2"))`, 9, nil},
		{`SUM(INDIRECT("1:2000"))`, 500500, []ErrorKind{RangeTruncated}},
		{`INDIRECT("@value.x") + 1`, 43, nil},
		{`INDIRECT("3,5")`, 3.5, nil},
		{`INDIRECT("@value.nope")`, 0, []ErrorKind{UnknownVariable}},
		{"SAFEDIV(1, 0, 9)", 9, nil},
		{"SAFEDIV(9, 3)", 3, nil},
		{"PERCENTAGE(1, 0)", 0, nil},
		{"RATIO(3, 4)", 0.75, nil},
		{"IFNULL(0, 5)", 5, nil},
		{"IFNULL(2, 5)", 2, nil},
		{`COALESCE(0, "", 4, 5)`, 4, nil},
		{`PRESENT("")`, 0, nil},
		{"EMPTY(0)", 1, nil},
		{`CONCAT(1, "2", 3) + 1`, 124, nil},
	}

	eng := New()

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			res := evaluate(t, eng, Request{Expr: tt.expr, Values: values})

			wantNumber(t, res, tt.want)

			if len(res.Errors) != len(tt.errs) {
				t.Fatalf("errors = %v, want %v", res.Errors, tt.errs)
			}

			for i, k := range tt.errs {
				if res.Errors[i] != k {
					t.Errorf("errors = %v, want %v", res.Errors, tt.errs)
				}
			}
		})
	}
}

func TestBuiltins_SumProductLengthMismatch(t *testing.T) {
	res := evaluate(t, New(), Request{Expr: `SUMPRODUCT(INDIRECT("1:3"), INDIRECT("1:2"))`})

	if !res.Fatal() || !res.Has(ArityMismatch) {
		t.Errorf("result = %+v, want fatal arity_error", res)
	}
}

func TestLookupFunction(t *testing.T) {
	tests := []struct {
		name, want string
	}{
		{"sum", "SUM"},
		{"Moyenne", "AVERAGE"},
		{"arrondi.inf", "ROUND_DOWN"},
		{"sumprod", "SUMPRODUCT"},
	}

	for _, tt := range tests {
		f, ok := LookupFunction(tt.name)
		if !ok || f.Name != tt.want {
			t.Errorf("LookupFunction(%q) = %v, %v; want %s", tt.name, f, ok, tt.want)
		}
	}

	if _, ok := LookupFunction("NOPE"); ok {
		t.Error("LookupFunction(NOPE) succeeded")
	}
}

func TestFunctionNames(t *testing.T) {
	names := FunctionNames()

	for _, want := range []string{"SUM", "AVG", "SIERREUR", "INDIRECT"} {
		found := false

		for _, n := range names {
			found = found || n == want
		}

		if !found {
			t.Errorf("FunctionNames() lacks %s", want)
		}
	}

	if got := Suggest("sqr", 1); len(got) != 1 || got[0] != "SQRT" {
		t.Errorf("Suggest(sqr) = %v, want [SQRT]", got)
	}
}

package formula

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Operand values on the evaluation stack are float64, string, or []float64
// (an integer range produced by INDIRECT). A nil operand is an unresolved
// reference: it reads as 0 in numeric context and "" in text context.

// toNumber coerces v to a number. Strings are trimmed, inner spaces are
// dropped and a decimal comma is accepted. The boolean result reports whether
// v was numeric.
func toNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case bool:
		if x {
			return 1, true
		}

		return 0, true
	case string:
		return parseNumber(x)
	case []float64:
		if len(x) > 0 {
			return x[0], true
		}
	}

	return 0, false
}

func num(v any) float64 {
	f, _ := toNumber(v)

	return f
}

func parseNumber(s string) (float64, bool) {
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r) || invisible(r):
			return -1
		case r == ',':
			return '.'
		}

		return r
	}, s)

	if s == "" {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}

	return f, true
}

// toText renders v in display form.
func toText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return formatNumber(x)
	case []float64:
		if len(x) == 1 {
			return formatNumber(x[0])
		}

		parts := make([]string, len(x))
		for i, f := range x {
			parts[i] = formatNumber(f)
		}

		return strings.Join(parts, ",")
	}

	f, _ := toNumber(v)

	return formatNumber(f)
}

func formatNumber(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "0"
	}

	if math.Abs(f) >= 1e21 {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}

	return strconv.FormatFloat(f, 'f', -1, 64)
}

// toRange flattens v to a numeric slice.
func toRange(v any) []float64 {
	if r, ok := v.([]float64); ok {
		return r
	}

	return []float64{num(v)}
}

func truth(b bool) float64 {
	if b {
		return 1
	}

	return 0
}

// finite reports whether v holds no NaN or infinite number.
func finite(v any) bool {
	switch x := v.(type) {
	case float64:
		return !math.IsInf(x, 0) && !math.IsNaN(x)
	case []float64:
		for _, f := range x {
			if math.IsInf(f, 0) || math.IsNaN(f) {
				return false
			}
		}
	}

	return true
}

// sanitize replaces non-finite numbers with 0 and reports whether it had to.
func sanitize(v any) (any, bool) {
	switch x := v.(type) {
	case float64:
		if !finite(x) {
			return 0.0, true
		}
	case []float64:
		if !finite(x) {
			out := make([]float64, len(x))
			for i, f := range x {
				if finite(f) {
					out[i] = f
				}
			}

			return out, true
		}
	}

	return v, false
}

// broadcast applies fn element-wise. A single-element operand is repeated
// against the other; ranges of different lengths do not combine.
func broadcast(a, b any, fn func(x, y float64) float64) (any, bool) {
	ra, aok := a.([]float64)
	rb, bok := b.([]float64)

	if !aok && !bok {
		return fn(num(a), num(b)), true
	}

	if !aok || len(ra) == 0 {
		ra = []float64{num(a)}
	}

	if !bok || len(rb) == 0 {
		rb = []float64{num(b)}
	}

	n := max(len(ra), len(rb))
	if len(ra) > 1 && len(rb) > 1 && len(ra) != len(rb) {
		return nil, false
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = fn(ra[min(i, len(ra)-1)], rb[min(i, len(rb)-1)])
	}

	if n == 1 {
		return out[0], true
	}

	return out, true
}

// mapValue applies fn to a scalar or to each element of a range.
func mapValue(v any, fn func(float64) float64) any {
	if r, ok := v.([]float64); ok {
		out := make([]float64, len(r))
		for i, f := range r {
			out[i] = fn(f)
		}

		return out
	}

	return fn(num(v))
}

// normalizeResult shapes the final stack value for callers: numeric strings
// become numbers unless text was requested, singleton ranges collapse.
func normalizeResult(v any, wantString bool) any {
	if wantString {
		return toText(v)
	}

	if s, ok := v.(string); ok {
		if f, ok := parseNumber(s); ok {
			return f
		}

		return s
	}

	if r, ok := v.([]float64); ok && len(r) == 1 {
		return r[0]
	}

	if v == nil {
		return 0.0
	}

	return v
}

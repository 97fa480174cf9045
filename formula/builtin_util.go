package formula

import (
	"regexp"
	"strconv"
	"strings"
)

// MaxRange bounds the length of ranges built by INDIRECT("a:b").
const MaxRange = 1000

//nolint:gochecknoglobals
var rangePattern = regexp.MustCompile(`^\s*(-?\d+)\s*:\s*(-?\d+)\s*$`)

func utilityFunctions() []Function {
	return []Function{
		{Name: "ROW", MinArgs: 1, MaxArgs: 1, Impl: func(c *Call) any {
			return mapValue(c.Value(0), func(v float64) float64 { return v })
		}},
		{Name: "INDIRECT", MinArgs: 1, MaxArgs: 1, Impl: indirect},
		{Name: "SAFEDIV", MinArgs: 2, MaxArgs: 3, Impl: func(c *Call) any {
			if d := c.Num(1); d != 0 {
				return c.Num(0) / d
			}

			return c.NumOr(2, 0)
		}},
		{Name: "PERCENTAGE", MinArgs: 2, MaxArgs: 2, Impl: func(c *Call) any {
			if w := c.Num(1); w != 0 {
				return c.Num(0) / w * 100
			}

			return 0.0
		}},
		{Name: "RATIO", MinArgs: 2, MaxArgs: 2, Impl: func(c *Call) any {
			if d := c.Num(1); d != 0 {
				return c.Num(0) / d
			}

			return 0.0
		}},
		{Name: "IFNULL", MinArgs: 2, MaxArgs: 2, Impl: func(c *Call) any {
			if blank(c.Value(0)) {
				return c.Value(1)
			}

			return c.Value(0)
		}},
		{Name: "COALESCE", MinArgs: 1, MaxArgs: Variadic, Impl: func(c *Call) any {
			for i := range c.Len() {
				if !blank(c.Value(i)) {
					return c.Value(i)
				}
			}

			return 0.0
		}},
		{Name: "PRESENT", MinArgs: 1, MaxArgs: 1, Impl: func(c *Call) any {
			return truth(!blank(c.Value(0)))
		}},
		{Name: "EMPTY", MinArgs: 1, MaxArgs: 1, Impl: func(c *Call) any {
			return truth(blank(c.Value(0)))
		}},
		{Name: "CONCAT", MinArgs: 1, MaxArgs: Variadic, Impl: func(c *Call) any {
			var b strings.Builder
			for i := range c.Len() {
				b.WriteString(c.Text(i))
			}

			return b.String()
		}},
	}
}

// blank reports whether v counts as missing: unresolved, empty text, or a
// numeric zero.
func blank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		if strings.TrimSpace(x) == "" {
			return true
		}

		f, ok := parseNumber(x)

		return ok && f == 0
	case []float64:
		return len(x) == 0
	}

	return num(v) == 0
}

// indirect dereferences a textual reference. "a:b" builds an integer range,
// a known reference yields its value, anything else is read as a number.
func indirect(c *Call) any {
	text := c.Text(0)

	if m := rangePattern.FindStringSubmatch(text); m != nil {
		from, _ := strconv.Atoi(m[1])
		to, _ := strconv.Atoi(m[2])

		step, span := 1, to-from
		if to < from {
			step, span = -1, from-to
		}

		n := span + 1
		if span < 0 || span >= MaxRange {
			n = MaxRange

			c.Warn(RangeTruncated)
		}

		out := make([]float64, n)
		for i := range out {
			out[i] = float64(from + i*step)
		}

		return out
	}

	if v, ok := c.Lookup(strings.TrimSpace(text)); ok {
		return v
	} else if c.m.fatal {
		return nil
	}

	if f, ok := parseNumber(text); ok {
		return f
	}

	c.Warn(UnknownVariable)

	return 0.0
}

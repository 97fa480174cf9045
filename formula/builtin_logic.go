package formula

import (
	"cmp"
	"strings"
)

func logicFunctions() []Function {
	comparison := func(name string, ok func(int) bool) Function {
		return Function{Name: name, MinArgs: 2, MaxArgs: 2, Impl: func(c *Call) any {
			return truth(ok(compare(c.Value(0), c.Value(1))))
		}}
	}

	return []Function{
		{Name: "IF", MinArgs: 2, MaxArgs: 3, Impl: func(c *Call) any {
			if c.Num(0) != 0 {
				return c.Value(1)
			}

			if c.Len() > 2 {
				return c.Value(2)
			}

			return 0.0
		}},
		{Name: "IFERROR", MinArgs: 2, MaxArgs: 2, Impl: func(c *Call) any {
			if c.Failed(0) {
				return c.Value(1)
			}

			return c.Value(0)
		}},
		{Name: "AND", MinArgs: 1, MaxArgs: Variadic, Impl: func(c *Call) any {
			for _, v := range c.Numbers() {
				if v == 0 {
					return 0.0
				}
			}

			return 1.0
		}},
		{Name: "OR", MinArgs: 1, MaxArgs: Variadic, Impl: func(c *Call) any {
			for _, v := range c.Numbers() {
				if v != 0 {
					return 1.0
				}
			}

			return 0.0
		}},
		{Name: "NOT", MinArgs: 1, MaxArgs: 1, Impl: func(c *Call) any {
			return truth(c.Num(0) == 0)
		}},
		comparison("GT", func(n int) bool { return n > 0 }),
		comparison("GTE", func(n int) bool { return n >= 0 }),
		comparison("LT", func(n int) bool { return n < 0 }),
		comparison("LTE", func(n int) bool { return n <= 0 }),
		comparison("EQ", func(n int) bool { return n == 0 }),
		comparison("NEQ", func(n int) bool { return n != 0 }),
	}
}

// compare orders two operands numerically, falling back to text order when
// either side is text that does not parse as a number.
func compare(a, b any) int {
	_, as := a.(string)
	_, bs := b.(string)

	if as || bs {
		fa, aok := toNumber(a)
		fb, bok := toNumber(b)

		if !aok || !bok {
			return strings.Compare(toText(a), toText(b))
		}

		return cmp.Compare(fa, fb)
	}

	return cmp.Compare(num(a), num(b))
}

package formula

import "math"

func unary(name string, fn func(float64) float64) Function {
	return Function{Name: name, MinArgs: 1, MaxArgs: 1, Impl: func(c *Call) any {
		return mapValue(c.Value(0), fn)
	}}
}

// maxDecimals bounds the rounding position in either direction; beyond it
// the scale factor no longer fits a float64 exactly.
const maxDecimals = 15

// scaled rounds v at the given number of decimals with round.
func scaled(v, decimals float64, round func(float64) float64) float64 {
	p := math.Pow(10, math.Trunc(max(-maxDecimals, min(maxDecimals, decimals))))

	return round(v*p) / p
}

func awayFromZero(v float64) float64 {
	if v < 0 {
		return -math.Ceil(-v)
	}

	return math.Ceil(v)
}

func roundingFunctions() []Function {
	digits := func(name string, round func(float64) float64) Function {
		return Function{Name: name, MinArgs: 1, MaxArgs: 2, Impl: func(c *Call) any {
			d := c.NumOr(1, 0)

			return mapValue(c.Value(0), func(v float64) float64 { return scaled(v, d, round) })
		}}
	}

	step := func(name string, round func(float64) float64) Function {
		return Function{Name: name, MinArgs: 1, MaxArgs: 2, Impl: func(c *Call) any {
			s := c.NumOr(1, 1)
			if s == 0 {
				return c.Num(0)
			}

			return round(c.Num(0)/s) * s
		}}
	}

	return []Function{
		digits("ROUND", math.Round),
		digits("ROUND_UP", awayFromZero),
		digits("ROUND_DOWN", math.Trunc),
		digits("TRUNC", math.Trunc),
		unary("INT", math.Floor),
		step("CEILING", math.Ceil),
		step("FLOOR", math.Floor),
	}
}

func mathFunctions() []Function {
	return []Function{
		unary("RADIANS", func(v float64) float64 { return v * math.Pi / 180 }),
		unary("DEGREES", func(v float64) float64 { return v * 180 / math.Pi }),
		unary("SIN", math.Sin),
		unary("COS", math.Cos),
		unary("TAN", math.Tan),
		unary("ASIN", math.Asin),
		unary("ACOS", math.Acos),
		unary("ATAN", math.Atan),
		{Name: "ATAN2", MinArgs: 2, MaxArgs: 2, Impl: func(c *Call) any {
			return math.Atan2(c.Num(1), c.Num(0))
		}},
		{Name: "SQRT", MinArgs: 1, MaxArgs: 1, Impl: func(c *Call) any {
			return mapValue(c.Value(0), func(v float64) float64 {
				if v < 0 {
					c.Warn(InvalidResult)

					return 0
				}

				return math.Sqrt(v)
			})
		}},
		{Name: "POWER", MinArgs: 2, MaxArgs: 2, Impl: func(c *Call) any {
			return math.Pow(c.Num(0), c.Num(1))
		}},
		unary("EXP", math.Exp),
		unary("LN", positive(math.Log)),
		unary("LOG10", positive(math.Log10)),
		{Name: "LOG", MinArgs: 1, MaxArgs: 2, Impl: func(c *Call) any {
			v, base := c.Num(0), c.NumOr(1, 10)
			if v <= 0 || base <= 0 || base == 1 {
				return 0.0
			}

			return math.Log(v) / math.Log(base)
		}},
		unary("ABS", math.Abs),
		unary("SIGN", func(v float64) float64 {
			switch {
			case v > 0:
				return 1
			case v < 0:
				return -1
			}

			return 0
		}),
		{Name: "MOD", MinArgs: 2, MaxArgs: 2, Impl: func(c *Call) any {
			v, d := c.Num(0), c.Num(1)
			if d == 0 {
				c.Warn(DivisionByZero)

				return 0.0
			}

			return math.Mod(v, d)
		}},
		{Name: "PI", MinArgs: 0, MaxArgs: 1, Impl: func(c *Call) any {
			return math.Pi * c.NumOr(0, 1)
		}},
	}
}

// positive guards logarithms: non-positive input yields 0.
func positive(fn func(float64) float64) func(float64) float64 {
	return func(v float64) float64 {
		if v <= 0 {
			return 0
		}

		return fn(v)
	}
}

package formula

import "slices"

func statFunctions() []Function {
	aggregate := func(name string, fn func([]float64) float64) Function {
		return Function{Name: name, MinArgs: 1, MaxArgs: Variadic, Impl: func(c *Call) any {
			vs := c.Numbers()
			if len(vs) == 0 {
				return 0.0
			}

			return fn(vs)
		}}
	}

	return []Function{
		aggregate("SUM", sum),
		aggregate("MIN", func(vs []float64) float64 { return slices.Min(vs) }),
		aggregate("MAX", func(vs []float64) float64 { return slices.Max(vs) }),
		aggregate("AVERAGE", func(vs []float64) float64 { return sum(vs) / float64(len(vs)) }),
		{Name: "COUNT", MinArgs: 1, MaxArgs: Variadic, Impl: func(c *Call) any {
			n := 0

			for i := range c.Len() {
				switch v := c.Value(i).(type) {
				case []float64:
					n += len(v)
				case float64:
					n++
				}
			}

			return float64(n)
		}},
		{Name: "SUMPRODUCT", MinArgs: 1, MaxArgs: Variadic, Impl: sumProduct},
	}
}

func sum(vs []float64) float64 {
	var s float64
	for _, v := range vs {
		s += v
	}

	return s
}

// sumProduct multiplies its ranges element-wise and sums the products.
// Scalars broadcast; ranges of unequal length are an arity error.
func sumProduct(c *Call) any {
	ranges := make([][]float64, c.Len())
	n := 0

	for i := range ranges {
		ranges[i] = toRange(c.Value(i))
		n = max(n, len(ranges[i]))
	}

	for _, r := range ranges {
		if len(r) > 1 && len(r) != n {
			c.Fail(ArityMismatch)

			return nil
		}
	}

	var total float64

	for i := range n {
		p := 1.0
		for _, r := range ranges {
			if len(r) == 0 {
				p = 0

				continue
			}

			p *= r[min(i, len(r)-1)]
		}

		total += p
	}

	return total
}

package formula

import (
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"
)

// Variadic is the MaxArgs of functions accepting any number of arguments.
const Variadic = -1

// Function is an entry of the function table. Arity is validated once at
// compile time and again before Impl runs, so Impl may index its arguments
// up to MinArgs without checking.
type Function struct {
	Name    string
	MinArgs int
	MaxArgs int
	Impl    func(*Call) any
}

// Accepts reports whether f may be called with n arguments.
func (f *Function) Accepts(n int) bool {
	return n >= f.MinArgs && (f.MaxArgs == Variadic || n <= f.MaxArgs)
}

// Arity renders the accepted argument counts for messages.
func (f *Function) Arity() string {
	switch {
	case f.MaxArgs == Variadic:
		return "at least " + strconv.Itoa(f.MinArgs)
	case f.MinArgs == f.MaxArgs:
		return "exactly " + strconv.Itoa(f.MinArgs)
	default:
		return strconv.Itoa(f.MinArgs) + " to " + strconv.Itoa(f.MaxArgs)
	}
}

// Call is the argument view handed to a function implementation.
type Call struct {
	Name string

	args []entry
	m    *machine
}

// Len returns the number of arguments.
func (c *Call) Len() int { return len(c.args) }

// Value returns argument i as pushed on the stack.
func (c *Call) Value(i int) any {
	if i < len(c.args) {
		return c.args[i].v
	}

	return nil
}

// Num returns argument i coerced to a number, or 0 if absent.
func (c *Call) Num(i int) float64 { return num(c.Value(i)) }

// NumOr returns argument i coerced to a number, or def if absent.
func (c *Call) NumOr(i int, def float64) float64 {
	if i < len(c.args) {
		return num(c.args[i].v)
	}

	return def
}

// Text returns argument i in display form.
func (c *Call) Text(i int) string { return toText(c.Value(i)) }

// Failed reports whether the evaluation of argument i raised any problem.
func (c *Call) Failed(i int) bool {
	return i >= len(c.args) || c.args[i].failed || !finite(c.args[i].v)
}

// Numbers flattens all arguments to numbers, ranges included. Text that
// does not parse as a number counts as 0.
func (c *Call) Numbers() []float64 {
	out := make([]float64, 0, len(c.args))
	for _, a := range c.args {
		out = append(out, toRange(a.v)...)
	}

	return out
}

// Warn records a non-fatal problem.
func (c *Call) Warn(kind ErrorKind) { c.m.warn(kind) }

// Fail aborts the evaluation with kind.
func (c *Call) Fail(kind ErrorKind) { c.m.fail(kind) }

// Lookup resolves a textual reference against the evaluation values. A
// reference to the owning node aborts the evaluation and reports false.
func (c *Call) Lookup(ref string) (any, bool) { return c.m.lookup(ref) }

//nolint:gochecknoglobals
var (
	registryOnce sync.Once
	functions    map[string]*Function
	aliases      map[string]string
	names        []string
)

func registry() map[string]*Function {
	registryOnce.Do(func() {
		functions = map[string]*Function{}

		for _, group := range [][]Function{
			roundingFunctions(),
			mathFunctions(),
			statFunctions(),
			logicFunctions(),
			utilityFunctions(),
		} {
			for i := range group {
				functions[group[i].Name] = &group[i]
			}
		}

		aliases = functionAliases()

		names = make([]string, 0, len(functions)+len(aliases))
		for name := range functions {
			names = append(names, name)
		}

		for name := range aliases {
			names = append(names, name)
		}

		slices.Sort(names)
	})

	return functions
}

// LookupFunction finds a function by name or alias, case-insensitively.
func LookupFunction(name string) (*Function, bool) {
	table := registry()
	name = strings.ToUpper(name)

	if canon, ok := aliases[name]; ok {
		name = canon
	}

	f, ok := table[name]

	return f, ok
}

// FunctionNames returns all callable names, aliases included, sorted.
func FunctionNames() []string {
	registry()

	return slices.Clone(names)
}

// Suggest returns the closest callable names to name, best first.
func Suggest(name string, limit int) []string {
	registry()

	matches := fuzzy.Find(strings.ToUpper(name), names)

	out := make([]string, 0, min(limit, len(matches)))
	for _, m := range matches {
		if len(out) == limit {
			break
		}

		out = append(out, m.Str)
	}

	return out
}

// functionAliases maps alternative spellings, including the French names
// used by form authors, onto canonical function names.
func functionAliases() map[string]string {
	return map[string]string{
		"AVG":         "AVERAGE",
		"MOYENNE":     "AVERAGE",
		"SOMME":       "SUM",
		"NB":          "COUNT",
		"SUMPROD":     "SUMPRODUCT",
		"SOMMEPROD":   "SUMPRODUCT",
		"SI":          "IF",
		"ET":          "AND",
		"OU":          "OR",
		"NON":         "NOT",
		"SIERREUR":    "IFERROR",
		"ARRONDI":     "ROUND",
		"ROUNDUP":     "ROUND_UP",
		"ARRONDI.SUP": "ROUND_UP",
		"ROUNDDOWN":   "ROUND_DOWN",
		"ARRONDI.INF": "ROUND_DOWN",
		"ENT":         "INT",
		"TRONQUE":     "TRUNC",
		"CEIL":        "CEILING",
		"PLAFOND":     "CEILING",
		"PLANCHER":    "FLOOR",
		"RAD":         "RADIANS",
		"DEGRES":      "DEGREES",
		"SINUS":       "SIN",
		"COSINUS":     "COS",
		"TANGENTE":    "TAN",
		"ARCSIN":      "ASIN",
		"ARCCOS":      "ACOS",
		"ARCTAN":      "ATAN",
		"RACINE":      "SQRT",
		"PUISSANCE":   "POWER",
		"SIGNE":       "SIGN",
	}
}

package formula

import (
	"math"
	"slices"

	"github.com/edwingeng/deque"
)

// Result is the outcome of one evaluation. Value is nil exactly when Errors
// holds a fatal kind.
type Result struct {
	Value  any         `json:"value"`
	Errors []ErrorKind `json:"errors"`
}

// Fatal reports whether the evaluation was aborted.
func (r Result) Fatal() bool { return r.Value == nil }

// Has reports whether kind was reported.
func (r Result) Has(kind ErrorKind) bool { return slices.Contains(r.Errors, kind) }

type entry struct {
	v      any
	failed bool // the computation of v reported a problem
}

// machine executes a single program. It is confined to one goroutine.
type machine struct {
	res     Resolver
	metrics *Metrics
	stack   deque.Deque
	errs    []ErrorKind
	warns   int
	fatal   bool
}

// Execute runs p against the values bound by r. Counters in m advance as
// problems are met; m may be nil.
func Execute(p Program, r Resolver, m *Metrics) Result {
	vm := &machine{res: r, metrics: m, stack: deque.NewDeque()}

	v := vm.run(p)
	errs := compact(vm.errs)

	if vm.fatal {
		return Result{Errors: errs}
	}

	if v == nil {
		v = 0.0
	}

	return Result{Value: v, Errors: errs}
}

// compact drops repeated kinds, keeping first occurrences in order.
func compact(kinds []ErrorKind) []ErrorKind {
	out := make([]ErrorKind, 0, len(kinds))
	for _, k := range kinds {
		if !slices.Contains(out, k) {
			out = append(out, k)
		}
	}

	return out
}

func (vm *machine) warn(kind ErrorKind) {
	vm.warns++
	vm.errs = append(vm.errs, kind)
	vm.metrics.count(kind)
}

func (vm *machine) fail(kind ErrorKind) {
	if !vm.fatal {
		vm.fatal = true
		vm.errs = append(vm.errs, kind)
		vm.metrics.count(kind)
	}
}

// lookup resolves a reference built at run time. A reference to the owning
// node aborts execution.
func (vm *machine) lookup(ref string) (any, bool) {
	if vm.res.owns(ref) {
		vm.fail(CircularReference)

		return nil, false
	}

	return vm.res.Resolve(ref)
}

func (vm *machine) push(v any, failed bool) { vm.stack.PushBack(entry{v: v, failed: failed}) }

// popN removes the top n entries, returned in push order.
func (vm *machine) popN(n int) ([]entry, bool) {
	if vm.stack.Len() < n {
		vm.fail(EvaluationFailure)

		return nil, false
	}

	out := make([]entry, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = vm.stack.PopBack().(entry)
	}

	return out, true
}

func (vm *machine) run(p Program) any {
	for _, op := range p {
		if vm.fatal {
			return nil
		}

		switch op.Kind {
		case OpNumber:
			vm.push(op.Num, false)

		case OpString:
			vm.push(op.Text, false)

		case OpVariable:
			vm.variable(op.Text)

		case OpOperator:
			vm.operator(op.Text)

		case OpCall:
			vm.call(op)

		default:
			vm.fail(EvaluationFailure)
		}
	}

	if vm.fatal {
		return nil
	}

	if vm.stack.Len() != 1 {
		vm.fail(EvaluationFailure)

		return nil
	}

	return vm.stack.PopBack().(entry).v
}

func (vm *machine) variable(name string) {
	if v, ok := vm.res.Resolve(name); ok {
		vm.push(v, false)

		return
	}

	if vm.res.Strict {
		vm.fail(UnknownVariable)

		return
	}

	vm.warn(UnknownVariable)
	vm.push(nil, true)
}

func (vm *machine) operator(op string) {
	n := 2
	if op == negate {
		n = 1
	}

	args, ok := vm.popN(n)
	if !ok {
		return
	}

	before := vm.warns

	var v any

	if n == 1 {
		v = mapValue(args[0].v, func(x float64) float64 { return -x })
	} else {
		v = vm.binary(op, args[0].v, args[1].v)
	}

	if clean, bad := sanitize(v); bad {
		v = clean
		vm.warn(InvalidResult)
	}

	failed := vm.warns > before
	for _, a := range args {
		failed = failed || a.failed
	}

	vm.push(v, failed)
}

func (vm *machine) binary(op string, a, b any) any {
	arith := func(fn func(x, y float64) float64) any {
		v, ok := broadcast(a, b, fn)
		if !ok {
			vm.warn(InvalidResult)

			return 0.0
		}

		return v
	}

	switch op {
	case "+":
		return arith(func(x, y float64) float64 { return x + y })
	case "-":
		return arith(func(x, y float64) float64 { return x - y })
	case "*":
		return arith(func(x, y float64) float64 { return x * y })
	case "/":
		return arith(func(x, y float64) float64 {
			if y == 0 {
				vm.warn(DivisionByZero)

				return 0
			}

			return x / y
		})
	case "^":
		return arith(math.Pow)
	case "&":
		return toText(a) + toText(b)
	case "AND":
		return truth(num(a) != 0 && num(b) != 0)
	case "OR":
		return truth(num(a) != 0 || num(b) != 0)
	case ">":
		return truth(compare(a, b) > 0)
	case ">=":
		return truth(compare(a, b) >= 0)
	case "<":
		return truth(compare(a, b) < 0)
	case "<=":
		return truth(compare(a, b) <= 0)
	case "==":
		return truth(compare(a, b) == 0)
	case "!=":
		return truth(compare(a, b) != 0)
	}

	vm.fail(EvaluationFailure)

	return nil
}

func (vm *machine) call(op Op) {
	fn, ok := LookupFunction(op.Text)
	if !ok {
		vm.fail(EvaluationFailure)

		return
	}

	if !fn.Accepts(op.Argc) {
		vm.fail(ArityMismatch)

		return
	}

	args, ok := vm.popN(op.Argc)
	if !ok {
		return
	}

	vm.metrics.called(fn.Name)

	before := vm.warns
	c := &Call{Name: fn.Name, args: args, m: vm}
	v := fn.Impl(c)

	if vm.fatal {
		return
	}

	if clean, bad := sanitize(v); bad {
		v = clean
		vm.warn(InvalidResult)
	}

	failed := vm.warns > before

	if fn.Name == "IFERROR" {
		src := args[0]
		if c.Failed(0) {
			src = args[1]
		}

		failed = failed || src.failed
	} else {
		for _, a := range args {
			failed = failed || a.failed
		}
	}

	vm.push(v, failed)
}

package formula

import (
	"encoding/json"
	"log/slog"
	"math"
)

// Resolver binds the variables of a program to caller-supplied values.
//
// Values may be keyed by role key, by the full reference string a role
// stands for, or by the bare id of that reference. Owner is the id of the
// node that owns the formula; references back to it are rejected before any
// value is looked up.
type Resolver struct {
	Owner  string
	Roles  RoleMap
	Values map[string]any
	Strict bool
}

// reference returns the reference string behind variable name.
func (r Resolver) reference(name string) string {
	if ref, ok := r.Roles[name]; ok {
		return Clean(ref)
	}

	return name
}

// CheckCycle rejects programs that reference the owning node's own value or
// calculated result.
func (r Resolver) CheckCycle(p Program) error {
	if r.Owner == "" {
		return nil
	}

	for _, op := range p {
		if op.Kind == OpVariable && r.owns(op.Text) {
			return r.circular(op.Text)
		}
	}

	return nil
}

// owns reports whether name stands for the owning node's own value or
// calculated result.
func (r Resolver) owns(name string) bool {
	return r.Owner != "" && Classify(r.reference(name)).Owns(r.Owner)
}

func (r Resolver) circular(name string) error {
	return ErrCircular.With(
		slog.String("owner", r.Owner),
		slog.String("reference", r.reference(name)),
	)
}

// Resolve looks name up by role key, then by the reference it stands for,
// then by that reference's bare id.
func (r Resolver) Resolve(name string) (any, bool) {
	if v, ok := r.lookup(name); ok {
		return v, true
	}

	ref := r.reference(name)
	if ref != name {
		if v, ok := r.lookup(ref); ok {
			return v, true
		}
	}

	t := Classify(ref)
	if t.Kind.IsReference() {
		if v, ok := r.lookup(t.Reference()); ok {
			return v, true
		}

		if v, ok := r.lookup(t.ID); ok {
			return v, true
		}
	}

	return nil, false
}

func (r Resolver) lookup(key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	v, ok := r.Values[key]
	if !ok {
		return nil, false
	}

	return operandOf(v)
}

// operandOf converts a caller value to a stack operand. Nil, non-finite
// numbers and unsupported types count as unresolved.
func operandOf(v any) (any, bool) {
	switch x := v.(type) {
	case float64:
		return x, !math.IsNaN(x) && !math.IsInf(x, 0)
	case float32:
		return operandOf(float64(x))
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case bool:
		return truth(x), true
	case string:
		return x, true
	case json.Number:
		f, err := x.Float64()

		return f, err == nil
	case []float64:
		return x, true
	case []any:
		out := make([]float64, 0, len(x))

		for _, e := range x {
			f, ok := operandOf(e)
			if !ok {
				return nil, false
			}

			out = append(out, num(f))
		}

		return out, true
	}

	return nil, false
}

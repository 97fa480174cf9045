// Package formula evaluates the formulas authored in tree-structured forms.
//
// Stored formulas are token lists mixing literals, operators, function
// calls and references to other fields:
//
//	@value.<node>              raw value of a field
//	@select.<node>[.<option>]  selected option of a field
//	@calculated.<node>[-sfx]   computed result of another formula
//	@table.<table>             matrix table lookup
//	node-formula:<id>          another formula (legacy "formula:<id>")
//	#<marker>                  named marker
//
// [Normalize] classifies the tokens and replaces every reference with a
// {{ref_N}} placeholder, producing a normalized expression plus a [RoleMap]
// from role key back to reference. The expression is compiled into a
// postfix [Program], which is cached by expression text, and executed
// against caller-supplied values by a small stack machine.
//
// An [Engine] bundles the cache with evaluation counters and derives a short
// logic version from them, letting clients notice when evaluation state has
// changed:
//
//	eng := formula.New()
//	res, err := eng.Evaluate(ctx, formula.Request{
//		Expr:   "{{price}} * (1 + {{rate}} / 100)",
//		Roles:  formula.RoleMap{"price": "@value.p", "rate": "@value.r"},
//		Values: map[string]any{"@value.p": 120, "r": "20,5"},
//	})
//
// Problems that prevent compilation are returned as a [*ParseError].
// Problems met during execution are listed in [Result.Errors]; only fatal
// ones leave [Result.Value] nil.
package formula

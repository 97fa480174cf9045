package repl

import "github.com/ardnew/formulate/formula"

// Sentinel errors.
var (
	ErrOutOfBounds  = formula.NewError("history index out of range")
	ErrEditDeclined = formula.NewError("edit declined")
	ErrEditor       = formula.NewError("editor failed")
)

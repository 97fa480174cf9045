package server

import "github.com/ardnew/formulate/formula"

// Predefined errors (sentinel values).
var (
	ErrListen    = formula.NewError("listen failed")
	ErrServe     = formula.NewError("server failed")
	ErrScheduler = formula.NewError("metrics reporter failed")
)

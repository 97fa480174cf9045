package cli

import "github.com/ardnew/formulate/formula"

// Sentinel errors.
var (
	ErrConfig = formula.NewError("read configuration file")
	ErrMkdir  = formula.NewError("create runtime directories")
)

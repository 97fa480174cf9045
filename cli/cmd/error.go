package cmd

import "github.com/ardnew/formulate/formula"

// Sentinel errors.
var (
	ErrEvaluate    = formula.NewError("evaluate expression")
	ErrFatalResult = formula.NewError("evaluation failed")
	ErrInvalid     = formula.NewError("invalid expression")
	ErrReadSource  = formula.NewError("read expression source")
	ErrNoInput     = formula.NewError("no expressions given")
	ErrJSONMarshal = formula.NewError("marshal JSON")
	ErrYAMLMarshal = formula.NewError("marshal YAML")
	ErrWriteConfig = formula.NewError("write configuration file")
	ErrFileExists  = formula.NewError("file exists (use --force to overwrite)")
	ErrSession     = formula.NewError("load REPL session")
)

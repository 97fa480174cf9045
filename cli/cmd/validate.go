package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-multierror"

	"github.com/ardnew/formulate/formula"
)

// Validate compiles expressions without evaluating them and reports their
// tokens, RPN program and complexity.
type Validate struct {
	Exprs  []string `arg:"" help:"Expressions to validate."                                       name:"expr"     optional:""`
	Files  []string `help:"Read expressions from file, one per line ('-' for stdin)." name:"file" placeholder:"PATH" short:"f" type:"path"`
	Output string   `default:"json" enum:"json,yaml" help:"Output format."                                  short:"o"`
}

// validation is one reported expression.
type validation struct {
	Source     string           `json:"source,omitempty"`
	Line       int              `json:"line,omitempty"`
	Expression string           `json:"expression"`
	Valid      bool             `json:"valid"`
	Error      string           `json:"error,omitempty"`
	Complexity int              `json:"complexity,omitempty"`
	RPN        formula.Program  `json:"rpn,omitempty"`
	Tokens     []formula.Lexeme `json:"tokens,omitempty"`
}

// Run executes the validate command. Every expression is reported; the
// returned error aggregates every invalid expression and unreadable file.
func (v *Validate) Run(ctx context.Context, env *Env) error {
	if len(v.Exprs) == 0 && len(v.Files) == 0 {
		return ErrNoInput
	}

	var (
		errs   *multierror.Error
		report []validation
	)

	check := func(src string, line int, expr string) {
		r := validation{Source: src, Line: line, Expression: expr}

		res, err := env.Engine.Validate(expr)
		if err != nil {
			r.Error = err.Error()
			errs = multierror.Append(errs, ErrInvalid.
				With(slog.String("expr", expr)).
				Wrap(located(src, line, err)))
		} else {
			r.Valid = true
			r.Complexity, r.RPN, r.Tokens = res.Complexity, res.RPN, res.Tokens
		}

		report = append(report, r)
	}

	for _, expr := range v.Exprs {
		check("", 0, expr)
	}

	srcs, closeAll := openSources(v.Files, env.Stdin, func(path string, err error) {
		errs = multierror.Append(errs, ErrReadSource.With(slog.String("file", path)).Wrap(err))
	})
	defer closeAll()

	for _, src := range srcs {
		err := expressions(src.r, func(line int, expr string) bool {
			check(src.name, line, expr)

			return ctx.Err() == nil
		})
		if err != nil {
			errs = multierror.Append(errs, ErrReadSource.With(slog.String("file", src.name)).Wrap(err))
		}
	}

	env.Logger.DebugContext(ctx, "validated", logAttrs("validate",
		slog.Int("expressions", len(report)),
		slog.Int("errors", len(errs.WrappedErrors())),
	)...)

	if err := encode(env.Stdout, v.Output, report); err != nil {
		return errors.Join(err, errs.ErrorOrNil())
	}

	return errs.ErrorOrNil()
}

func located(src string, line int, err error) error {
	if src == "" {
		return err
	}

	return fmt.Errorf("%s:%d: %w", src, line, err)
}

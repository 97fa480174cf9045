package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fatih/color"

	"github.com/ardnew/formulate/cli/cmd/repl"
	"github.com/ardnew/formulate/formula"
)

// Eval evaluates one expression against values and roles given as flags.
type Eval struct {
	Expr string `arg:"" help:"Expression to evaluate." name:"expr"`

	Roles  map[string]string `help:"Map a role key to a reference."      mapsep:"none" name:"role"  placeholder:"KEY=REF"   short:"r"`
	Values []string          `help:"Bind a value to a key or reference." name:"value"  sep:"none"   placeholder:"KEY=VALUE" short:"V"`
	Owner  string            `help:"Node owning the expression (self-reference guard)."`
	Strict bool              `help:"Treat unresolved references as fatal."`
	Text   bool              `help:"Coerce the result to text."`
	Output string            `default:"text" enum:"text,json,yaml" help:"Output format." short:"o"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context, env *Env) error {
	req, err := e.request()
	if err != nil {
		return err
	}

	res, err := env.Engine.Evaluate(ctx, req)
	if err != nil {
		return ErrEvaluate.With(slog.String("expr", e.Expr)).Wrap(err)
	}

	env.Logger.DebugContext(ctx, "evaluated", logAttrs("eval",
		slog.String("expr", e.Expr),
		slog.Any("value", res.Value),
		slog.Any("errors", res.Errors),
	)...)

	if e.Output != formatText {
		if err := encode(env.Stdout, e.Output, res); err != nil {
			return err
		}
	} else {
		e.print(env, res)
	}

	if res.Fatal() {
		return ErrFatalResult.With(slog.Any("errors", res.Errors))
	}

	return nil
}

func (e *Eval) request() (formula.Request, error) {
	values := make(map[string]any, len(e.Values))

	for _, kv := range e.Values {
		k, v, ok := repl.Assignment(kv)
		if !ok {
			return formula.Request{}, ErrEvaluate.
				With(slog.String("value", kv)).
				Wrap(formula.NewError("expected KEY=VALUE"))
		}

		values[k] = repl.ParseValue(v)
	}

	return formula.Request{
		Expr:       e.Expr,
		Roles:      formula.RoleMap(e.Roles),
		Values:     values,
		Owner:      e.Owner,
		Strict:     e.Strict,
		WantString: e.Text,
	}, nil
}

func (e *Eval) print(env *Env, res formula.Result) {
	fmt.Fprintln(env.Stdout, repl.FormatValue(res.Value))

	if len(res.Errors) == 0 {
		return
	}

	kinds := make([]string, len(res.Errors))
	for i, k := range res.Errors {
		kinds[i] = k.String()
	}

	warn := painter(env.Stderr, color.FgYellow)
	if res.Fatal() {
		warn = painter(env.Stderr, color.FgRed, color.Bold)
	}

	fmt.Fprintln(env.Stderr, warn(strings.Join(kinds, ", ")))
}

package formula

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strconv"

	"github.com/ardnew/formulate/log"
)

// Engine owns the program cache and counters shared by all evaluations. An
// application creates one at startup and passes it to whatever needs it.
// Its methods are safe for concurrent use.
type Engine struct {
	cache     *Cache
	metrics   *Metrics
	logger    log.Logger
	maxLength int
}

// New returns an engine with an empty cache and zeroed counters.
func New(opts ...Option) *Engine {
	e := &Engine{
		cache:     NewCache(),
		metrics:   &Metrics{},
		logger:    log.Default(),
		maxLength: DefaultMaxLength,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Request describes one evaluation.
//
// Either Expr holds a normalized expression, or Tokens holds the stored
// token list, which is normalized first. Roles generated by normalization
// take precedence over caller roles of the same key.
type Request struct {
	Expr       string
	Tokens     []string
	Roles      RoleMap
	Values     map[string]any
	Owner      string
	Strict     bool
	WantString bool
}

func (r Request) expression() (string, RoleMap) {
	if r.Expr != "" || len(r.Tokens) == 0 {
		return r.Expr, r.Roles
	}

	expr, roles := Normalize(r.Tokens)

	merged := maps.Clone(r.Roles)
	if merged == nil {
		merged = RoleMap{}
	}

	maps.Copy(merged, roles)

	return expr, merged
}

// Evaluate compiles and runs req.
//
// Expressions rejected before execution (syntax, arity, length, or a
// reference to the owning node) return a non-nil error alongside a fatal
// [Result] naming the kind. A reference to the owning node reached through
// INDIRECT is rejected the same way. Other problems met while executing are
// reported only through the Result.
func (e *Engine) Evaluate(ctx context.Context, req Request) (res Result, err error) {
	expr, roles := req.expression()

	defer func() {
		if p := recover(); p != nil {
			e.logger.ErrorContext(ctx, "evaluation panicked",
				slog.String("expr", expr),
				slog.String("panic", fmt.Sprint(p)),
			)

			res, err = Result{Errors: []ErrorKind{EvaluationFailure}}, nil
		}
	}()

	prog, err := e.Compile(expr)
	if err != nil {
		return Result{Errors: []ErrorKind{kindOf(err)}}, err
	}

	r := Resolver{Owner: req.Owner, Roles: roles, Values: req.Values, Strict: req.Strict}
	if err := r.CheckCycle(prog); err != nil {
		e.logger.DebugContext(ctx, "self reference rejected",
			slog.String("expr", expr), slog.Any("error", err))

		return Result{Errors: []ErrorKind{CircularReference}}, err
	}

	e.metrics.evaluated()

	res = Execute(prog, r, e.metrics)
	if res.Has(CircularReference) {
		e.logger.DebugContext(ctx, "indirect self reference rejected", slog.String("expr", expr))

		return res, ErrCircular.With(slog.String("owner", req.Owner))
	}

	if !res.Fatal() {
		res.Value = normalizeResult(res.Value, req.WantString)
	}

	e.logger.TraceContext(ctx, "evaluated",
		slog.String("expr", expr),
		slog.Any("value", res.Value),
		slog.Any("errors", res.Errors),
	)

	return res, nil
}

func kindOf(err error) ErrorKind {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Kind
	}

	return ParseFailure
}

// Compile returns the program for expr, from the cache when possible.
// Failures increment the parse error counter.
func (e *Engine) Compile(expr string) (Program, error) {
	if len(expr) > e.maxLength {
		e.metrics.parseFailed()

		return nil, newParseError(ParseFailure, expr, e.maxLength,
			"expression longer than "+strconv.Itoa(e.maxLength)+" bytes")
	}

	prog, hit, err := e.cache.Program(expr, Compile)
	if err != nil {
		e.metrics.parseFailed()
		e.logger.Debug("compile failed", slog.String("expr", expr), slog.Any("error", err))

		return nil, err
	}

	if !hit {
		e.logger.Trace("compiled",
			slog.String("expr", expr), slog.String("rpn", prog.String()))
	}

	return prog, nil
}

// Validation describes a successfully compiled expression.
type Validation struct {
	Tokens     []Lexeme `json:"tokens"`
	RPN        Program  `json:"rpn"`
	Complexity int      `json:"complexity"`
}

// Validate compiles expr and reports its lexemes and program. Complexity is
// the number of program instructions.
func (e *Engine) Validate(expr string) (Validation, error) {
	prog, err := e.Compile(expr)
	if err != nil {
		return Validation{}, err
	}

	// Compile succeeded, so lexing cannot fail.
	lexemes, _ := Lex(expr)

	return Validation{Tokens: lexemes, RPN: prog, Complexity: len(prog)}, nil
}

// Version returns the current logic version.
func (e *Engine) Version() string {
	return LogicVersion(e.metrics.Snapshot(), e.cache.Stats())
}

// Stats returns the program cache statistics.
func (e *Engine) Stats() CacheStats { return e.cache.Stats() }

// Metrics returns a snapshot of the evaluation counters.
func (e *Engine) Metrics() MetricsSnapshot { return e.metrics.Snapshot() }

// ClearCache drops all cached programs and returns the resulting statistics.
func (e *Engine) ClearCache() CacheStats {
	e.cache.Clear()
	e.logger.Debug("program cache cleared")

	return e.cache.Stats()
}

// ResetMetrics zeroes every counter. It exists for tests and administrative
// tooling; nothing in the engine calls it.
func (e *Engine) ResetMetrics() { e.metrics.reset() }

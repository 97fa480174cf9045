package server

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/valyala/fasthttp"

	"github.com/ardnew/formulate/formula"
)

type evaluateRequest struct {
	Expr     string            `json:"expr"`
	Tokens   []string          `json:"tokens"`
	RolesMap map[string]string `json:"rolesMap"`
	Values   map[string]any    `json:"values"`
	Options  struct {
		Strict     bool   `json:"strict"`
		OwnerID    string `json:"ownerId"`
		WantString bool   `json:"wantString"`
	} `json:"options"`
}

type validateRequest struct {
	Expression string `json:"expression"`
}

type errorBody struct {
	Error   string              `json:"error"`
	Details string              `json:"details,omitempty"`
	Errors  []formula.ErrorKind `json:"errors,omitempty"`
}

type versionBody struct {
	Version string `json:"version"`
}

type clearBody struct {
	Cleared bool               `json:"cleared"`
	Stats   formula.CacheStats `json:"stats"`
}

type metricsBody struct {
	Metrics formula.MetricsSnapshot `json:"metrics"`
	Cache   formula.CacheStats      `json:"cache"`
	Version string                  `json:"version"`
}

func (s *Server) evaluate(ctx *fasthttp.RequestCtx) {
	var req evaluateRequest
	if !decode(ctx, &req) {
		return
	}

	res, err := s.engine.Evaluate(ctx, formula.Request{
		Expr:       req.Expr,
		Tokens:     req.Tokens,
		Roles:      req.RolesMap,
		Values:     req.Values,
		Owner:      req.Options.OwnerID,
		Strict:     req.Options.Strict,
		WantString: req.Options.WantString,
	})
	if err != nil {
		writeRejection(ctx, res.Errors, err)

		return
	}

	writeJSON(ctx, fasthttp.StatusOK, res)
}

func (s *Server) validate(ctx *fasthttp.RequestCtx) {
	var req validateRequest
	if !decode(ctx, &req) {
		return
	}

	v, err := s.engine.Validate(req.Expression)
	if err != nil {
		var pe *formula.ParseError
		if errors.As(err, &pe) {
			writeRejection(ctx, []formula.ErrorKind{pe.Kind}, err)
		} else {
			writeRejection(ctx, []formula.ErrorKind{formula.ParseFailure}, err)
		}

		return
	}

	writeJSON(ctx, fasthttp.StatusOK, v)
}

func (s *Server) version(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, fasthttp.StatusOK, versionBody{Version: s.engine.Version()})
}

func (s *Server) clearCache(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, fasthttp.StatusOK, clearBody{Cleared: true, Stats: s.engine.ClearCache()})
}

func (s *Server) metrics(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, fasthttp.StatusOK, metricsBody{
		Metrics: s.engine.Metrics(),
		Cache:   s.engine.Stats(),
		Version: s.engine.Version(),
	})
}

// decode reads the JSON request body into v. Numbers are kept exact so
// that values reach the engine as written. On failure it answers 400 and
// returns false.
func decode(ctx *fasthttp.RequestCtx, v any) bool {
	dec := json.NewDecoder(bytes.NewReader(ctx.PostBody()))
	dec.UseNumber()

	if err := dec.Decode(v); err != nil {
		writeJSON(ctx, fasthttp.StatusBadRequest, errorBody{Error: "Invalid JSON", Details: err.Error()})

		return false
	}

	return true
}

// writeRejection answers 400 for an expression rejected before execution.
// Every compile failure, arity included, is reported as "Parse error" with
// its kind in Errors; other rejections are reported by kind name.
func writeRejection(ctx *fasthttp.RequestCtx, kinds []formula.ErrorKind, err error) {
	body := errorBody{Error: "Parse error", Details: err.Error(), Errors: kinds}

	var pe *formula.ParseError
	if errors.As(err, &pe) {
		body.Details = pe.Detail
	} else if len(kinds) > 0 && kinds[0] != formula.ParseFailure {
		body.Error = kinds[0].String()
	}

	writeJSON(ctx, fasthttp.StatusBadRequest, body)
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		ctx.Error(err.Error(), fasthttp.StatusInternalServerError)

		return
	}

	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(b)
}

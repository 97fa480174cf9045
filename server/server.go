package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/tevino/abool/v2"
	"github.com/valyala/fasthttp"

	"github.com/ardnew/formulate/formula"
	"github.com/ardnew/formulate/log"
	"github.com/ardnew/formulate/pkg"
)

// Server routes HTTP requests to a formula engine.
type Server struct {
	engine *formula.Engine
	logger log.Logger
	routes map[string]route

	interval     time.Duration
	readTimeout  time.Duration
	writeTimeout time.Duration

	reporting *abool.AtomicBool
}

type route struct {
	method  string
	handler fasthttp.RequestHandler
}

// New returns a server for engine.
func New(engine *formula.Engine, opts ...Option) *Server {
	s := &Server{
		engine:       engine,
		logger:       log.Default(),
		interval:     DefaultReportInterval,
		readTimeout:  10 * time.Second,
		writeTimeout: 10 * time.Second,
		reporting:    abool.New(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.routes = map[string]route{
		"/evaluate/formula":     {fasthttp.MethodPost, s.evaluate},
		"/formulas/validate":    {fasthttp.MethodPost, s.validate},
		"/logic/version":        {fasthttp.MethodGet, s.version},
		"/formulas-version":     {fasthttp.MethodGet, s.version},
		"/formulas/cache/clear": {fasthttp.MethodPost, s.clearCache},
		"/logic/metrics":        {fasthttp.MethodGet, s.metrics},
	}

	return s
}

// Handler dispatches ctx by path and method.
func (s *Server) Handler(ctx *fasthttp.RequestCtx) {
	start := time.Now()

	r, ok := s.routes[string(ctx.Path())]

	switch {
	case !ok:
		writeJSON(ctx, fasthttp.StatusNotFound, errorBody{Error: "Not found"})
	case string(ctx.Method()) != r.method:
		ctx.Response.Header.Set(fasthttp.HeaderAllow, r.method)
		writeJSON(ctx, fasthttp.StatusMethodNotAllowed, errorBody{Error: "Method not allowed"})
	default:
		r.handler(ctx)
	}

	s.logger.DebugContext(ctx, "request",
		slog.String("method", string(ctx.Method())),
		slog.String("path", string(ctx.Path())),
		slog.Int("status", ctx.Response.StatusCode()),
		slog.Duration("elapsed", time.Since(start)),
	)
}

// ListenAndServe listens on the TCP address addr and serves until ctx is
// done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig

	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return ErrListen.Wrap(err).With(slog.String("addr", addr))
	}

	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully. The metrics reporter runs for the lifetime of the call.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &fasthttp.Server{
		Handler:      s.Handler,
		Name:         pkg.Name,
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
	}

	stop, err := s.startReporter(ctx)
	if err != nil {
		return err
	}
	defer stop()

	s.logger.InfoContext(ctx, "listening", slog.String("addr", ln.Addr().String()))

	done := make(chan error, 1)

	go func() { done <- srv.Serve(ln) }()

	select {
	case err := <-done:
		if err != nil {
			return ErrServe.Wrap(err)
		}

		return nil

	case <-ctx.Done():
	}

	s.logger.InfoContext(ctx, "shutting down")

	if err := srv.Shutdown(); err != nil {
		return ErrServe.Wrap(err)
	}

	// Serve may not have registered ln yet.
	_ = ln.Close()

	if err := <-done; err != nil && !errors.Is(err, net.ErrClosed) {
		return ErrServe.Wrap(err)
	}

	return nil
}

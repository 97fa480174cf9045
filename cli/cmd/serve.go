package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/ardnew/formulate/server"
)

// Serve runs the HTTP API until the context is cancelled.
type Serve struct {
	Addr           string        `default:":8080"                help:"Listen address."                                   short:"a"`
	ReportInterval time.Duration `default:"1m"                   help:"Metrics report period (0 disables)."`
	ReadTimeout    time.Duration `default:"10s"                  help:"Maximum time to read a request."`
	WriteTimeout   time.Duration `default:"10s"                  help:"Maximum time to write a response."`
}

// Run executes the serve command.
func (s *Serve) Run(ctx context.Context, env *Env) error {
	env.Logger.InfoContext(ctx, "serving", logAttrs("serve",
		slog.String("addr", s.Addr),
		slog.Duration("report_interval", s.ReportInterval),
		slog.String("version", env.Engine.Version()),
	)...)

	srv := server.New(env.Engine,
		server.WithLogger(env.Logger),
		server.WithReportInterval(s.ReportInterval),
		server.WithTimeouts(s.ReadTimeout, s.WriteTimeout),
	)

	err := srv.ListenAndServe(ctx, s.Addr)

	env.Logger.InfoContext(ctx, "server stopped", logAttrs("serve",
		slog.Any("cause", context.Cause(ctx)),
	)...)

	return err
}

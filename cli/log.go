package cli

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/formulate/log"
)

type logConfig struct {
	Level      string `default:"info"    enum:"${logLevelEnum}"  help:"Set log level."`
	Format     string `default:"text"    enum:"${logFormatEnum}" help:"Set log format."`
	TimeLayout string `default:"RFC3339"                         help:"Set timestamp format (Go layout or name, 'none' to omit)."`
	Caller     bool   `default:"false"                           help:"Include caller information."       negatable:""`
	Pretty     bool   `default:"true"                            help:"Enable colorized pretty printing." negatable:""`
}

func (*logConfig) vars() kong.Vars {
	return kong.Vars{
		"logLevelEnum":  strings.Join(slices.Collect(log.Levels()), ","),
		"logFormatEnum": strings.Join(slices.Collect(log.Formats()), ","),
	}
}

func (*logConfig) group() kong.Group {
	return kong.Group{Key: "log", Title: "Logging options"}
}

func (c *logConfig) options() []log.Option {
	return []log.Option{
		log.WithLevel(log.ParseLevel(c.Level)),
		log.WithFormat(log.ParseFormat(c.Format)),
		log.WithTimeLayout(c.TimeLayout),
		log.WithCaller(c.Caller),
		log.WithPretty(c.Pretty),
	}
}

// start installs the configured logger as the package default and returns
// it.
func (c *logConfig) start(ctx context.Context, w io.Writer) log.Logger {
	logger := log.Config(w, c.options()...)

	logger.DebugContext(ctx, "logger initialized",
		slog.String("level", c.Level),
		slog.String("format", c.Format),
		slog.String("time", c.TimeLayout),
		slog.Bool("caller", c.Caller),
		slog.Bool("pretty", c.Pretty),
	)

	return logger
}

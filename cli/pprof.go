//go:build pprof

package cli

import (
	"context"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/formulate/log"
	"github.com/ardnew/formulate/pkg"
	"github.com/ardnew/formulate/profile"
)

type pprofConfig struct {
	Mode string `default:""            enum:",${pprofModeEnum}" help:"Enable profiling." placeholder:"${enum}" short:"p"`
	Dir  string `default:"${pprofDir}"                          help:"Profile output directory." type:"path"`
}

func (pprofConfig) vars() kong.Vars {
	return kong.Vars{
		"pprofModeEnum": strings.Join(profile.Modes(), ","),
		"pprofDir":      pkg.CachePath(profile.Tag),
	}
}

func (pprofConfig) group() kong.Group {
	return kong.Group{Key: "pprof", Title: "Profiling (pprof)"}
}

// start starts profiling if a mode was selected and returns its stop func.
func (c pprofConfig) start(ctx context.Context, logger log.Logger) (stop func()) {
	if c.Mode == "" {
		return func() {}
	}

	attrs := []slog.Attr{slog.String("mode", c.Mode), slog.String("dir", c.Dir)}

	logger.DebugContext(ctx, "pprof start", attrs...)

	p := profile.Profiler{Mode: c.Mode, Path: c.Dir, Quiet: true}.Start()

	return func() {
		p.Stop()
		logger.DebugContext(ctx, "pprof stop", attrs...)
	}
}

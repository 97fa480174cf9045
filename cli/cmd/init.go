package cmd

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/formulate/pkg"
	"github.com/ardnew/formulate/profile"
)

// Init writes a configuration file holding the current global flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file." short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context, env *Env) error {
	ktx := kongContextFrom(ctx)
	if ktx == nil {
		panic("internal error: kong context undefined")
	}

	path, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	fail := ErrWriteConfig.With(slog.String("file", path))

	if _, err := os.Stat(path); err == nil && !i.Force {
		return fail.With(slog.Bool("exists", true)).Wrap(ErrFileExists)
	}

	data, err := yaml.Marshal(flagValues(ktx))
	if err != nil {
		return fail.Wrap(ErrYAMLMarshal.Wrap(err))
	}

	if err := os.MkdirAll(filepath.Dir(path), pkg.DirMode); err != nil {
		return fail.Wrap(err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fail.Wrap(err)
	}

	env.Logger.DebugContext(ctx, "initialized configuration file",
		logAttrs("init", slog.String("path", path))...)

	return nil
}

// flagValues collects the non-empty values of the application's global
// flags, skipping help and profiling flags.
func flagValues(ktx *kong.Context) map[string]any {
	out := map[string]any{}

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || flag.Name == "help" || strings.HasPrefix(flag.Name, profile.Tag) {
			continue
		}

		switch v := ktx.FlagValue(flag).(type) {
		case nil:
		case string:
			if v != "" {
				out[flag.Name] = v
			}
		case time.Duration:
			out[flag.Name] = v.String()
		default:
			out[flag.Name] = v
		}
	}

	return out
}

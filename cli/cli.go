package cli

import (
	"context"
	"io"
	"os"
	"strconv"

	"github.com/alecthomas/kong"

	"github.com/ardnew/formulate/cli/cmd"
	"github.com/ardnew/formulate/cli/cmd/repl"
	"github.com/ardnew/formulate/formula"
	"github.com/ardnew/formulate/log"
	"github.com/ardnew/formulate/pkg"
)

// baseConfig is the base name of the configuration file.
const baseConfig = "config.yaml"

// CLI is the top-level command-line interface for formulate.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	MaxLength int `default:"${maxLength}" help:"Maximum accepted expression length."`

	Serve    cmd.Serve    `cmd:"" help:"Serve the HTTP API."`
	Eval     cmd.Eval     `cmd:"" default:"withargs" help:"Evaluate an expression."`
	Validate cmd.Validate `cmd:"" help:"Compile expressions and report their programs."`
	Repl     cmd.Repl     `cmd:"" help:"Start an interactive session."`
	Version  cmd.Version  `cmd:"" help:"Print version information."`
	Init     cmd.Init     `cmd:"" help:"Write a configuration file from the current flags."`
}

// Streams are the standard streams a run reads and writes.
type Streams struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// StdStreams returns the process's standard streams.
func StdStreams() Streams {
	return Streams{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run parses args and executes the selected command. The exit function is
// called by kong when parsing requests termination (e.g. --help).
func Run(
	ctx context.Context,
	streams Streams,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	if err := pkg.MkdirAll(); err != nil {
		return ErrMkdir.Wrap(err)
	}

	configPath := pkg.ConfigPath(baseConfig)

	vars := kong.Vars{
		cmd.ConfigIdentifier:  configPath,
		cmd.CacheIdentifier:   pkg.CacheDir(),
		cmd.HistoryIdentifier: pkg.CachePath(repl.BaseHistory),
		"maxLength":           strconv.Itoa(formula.DefaultMaxLength),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Parse errors are logged before the configured logger exists.
	log.Config(streams.Stderr)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.Writers(streams.Stdout, streams.Stderr),
		kong.ExplicitGroups([]kong.Group{cli.Log.group(), cli.Pprof.group()}),
		kong.BindSingletonProvider(func() context.Context { return ctx }),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			Summary:             true,
			Tree:                true,
			NoExpandSubcommands: true,
		}),
		kong.Configuration(loadYAML, configPath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)

	logger := cli.Log.start(ctx, streams.Stderr)

	// No-op unless built with tag pprof and a mode is selected.
	defer cli.Pprof.start(ctx, logger)()

	env := &cmd.Env{
		Engine: formula.New(
			formula.WithLogger(logger),
			formula.WithMaxLength(cli.MaxLength),
		),
		Logger: logger,
		Stdin:  streams.Stdin,
		Stdout: streams.Stdout,
		Stderr: streams.Stderr,
	}

	return ktx.Run(env)
}

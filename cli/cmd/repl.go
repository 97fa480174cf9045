package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/formulate/cli/cmd/repl"
)

// Repl starts an interactive evaluation session.
type Repl struct {
	History string `default:"${history}" help:"History file ('' keeps history in memory)." type:"path"`
	Session string `help:"YAML session file with initial values and roles." placeholder:"PATH" short:"S" type:"existingfile"`
	Owner   string `help:"Node owning the evaluated expressions."`
	Strict  bool   `help:"Treat unresolved references as fatal."`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context, env *Env) error {
	session := repl.NewSession()

	if r.Session != "" {
		data, err := os.ReadFile(r.Session)
		if err != nil {
			return ErrSession.With(slog.String("file", r.Session)).Wrap(err)
		}

		if session, err = repl.ParseSession(data); err != nil {
			return ErrSession.With(slog.String("file", r.Session)).Wrap(err)
		}
	}

	if r.Owner != "" {
		session.Owner = r.Owner
	}

	session.Strict = session.Strict || r.Strict

	return repl.Run(ctx, env.Engine, session, r.History, env.Logger)
}

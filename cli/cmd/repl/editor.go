package repl

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/formulate/log"
	"github.com/ardnew/formulate/pkg"
)

const defaultEditor = "vi"

// editSessionCommand implements [tea.ExecCommand]. It writes the session as
// YAML to a temporary file, opens $EDITOR on it, and parses the result,
// offering to re-edit on error. An emptied file leaves result nil.
type editSessionCommand struct {
	ctx     context.Context
	session *Session
	result  *Session
	logger  log.Logger
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

func (c *editSessionCommand) SetStdin(r io.Reader)  { c.stdin = r }
func (c *editSessionCommand) SetStdout(w io.Writer) { c.stdout = w }
func (c *editSessionCommand) SetStderr(w io.Writer) { c.stderr = w }

func (c *editSessionCommand) Run() error {
	content, err := c.session.Marshal()
	if err != nil {
		return err
	}

	f, err := os.CreateTemp("", pkg.Name+"-session-*.yaml")
	if err != nil {
		return err
	}

	path := f.Name()
	defer os.Remove(path)

	if err := f.Close(); err != nil {
		return err
	}

	for {
		if err := os.WriteFile(path, content, historyMode); err != nil {
			return err
		}

		if err := c.launch(path); err != nil {
			return ErrEditor.Wrap(err)
		}

		content, err = os.ReadFile(path)
		if err != nil {
			return err
		}

		if len(bytes.TrimSpace(content)) == 0 {
			return nil
		}

		s, err := ParseSession(content)

		c.logger.TraceContext(c.ctx, "session edit",
			slog.Int("bytes", len(content)),
			slog.Bool("ok", err == nil),
		)

		if err == nil {
			c.result = s

			return nil
		}

		fmt.Fprintf(c.stderr, "\n%s\n", err)
		fmt.Fprint(c.stdout, "Re-edit? [Y/n] ")

		sc := bufio.NewScanner(c.stdin)
		if !sc.Scan() {
			return ErrEditDeclined
		}

		switch strings.ToLower(strings.TrimSpace(sc.Text())) {
		case "n", "no":
			return ErrEditDeclined
		}
	}
}

func (c *editSessionCommand) launch(path string) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	args := append(strings.Fields(editor), path)

	cmd := exec.CommandContext(c.ctx, args[0], args[1:]...) //nolint:gosec
	cmd.Stdin, cmd.Stdout, cmd.Stderr = c.stdin, c.stdout, c.stderr

	return cmd.Run()
}

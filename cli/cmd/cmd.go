package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/formulate/formula"
	"github.com/ardnew/formulate/log"
)

// Env is bound into every command's Run method.
type Env struct {
	Engine *formula.Engine
	Logger log.Logger
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, _ := ctx.Value(contextKey{}).(*kong.Context)

	return ktx
}

// Output formats.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// encode writes v to w as JSON or YAML.
func encode(w io.Writer, format string, v any) error {
	if format == formatYAML {
		b, err := yaml.Marshal(v)
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		_, err = w.Write(b)

		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(v); err != nil {
		return ErrJSONMarshal.Wrap(err)
	}

	return nil
}

// painter colors text when w is a terminal and NO_COLOR is unset.
func painter(w io.Writer, attrs ...color.Attribute) func(a ...any) string {
	c := color.New(attrs...)

	if f, ok := w.(*os.File); !ok || color.NoColor || !isTerminal(f) {
		c.DisableColor()
	} else {
		c.EnableColor()
	}

	return c.SprintFunc()
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()

	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

// stdinSource names standard input among expression sources.
const stdinSource = "-"

// source is one expression file.
type source struct {
	name string
	r    io.Reader
}

// fileKey uniquely identifies a file by its device and inode numbers.
type fileKey struct {
	dev uint64
	ino uint64
}

// openSources opens each path once, resolving symlinks and comparing
// device/inode pairs. Every "-" collapses into a single stdin source read
// last. Paths that cannot be opened are reported through failed.
func openSources(
	paths []string,
	stdin io.Reader,
	failed func(path string, err error),
) (srcs []source, closeAll func()) {
	seen := map[fileKey]struct{}{}
	hasStdin := false

	var files []*os.File

	for _, path := range paths {
		if path == stdinSource {
			hasStdin = true

			continue
		}

		f, err := openUnique(path, seen)
		if err != nil {
			failed(path, err)

			continue
		}

		if f == nil {
			continue
		}

		files = append(files, f)
		srcs = append(srcs, source{name: path, r: f})
	}

	if hasStdin {
		srcs = append(srcs, source{name: stdinSource, r: stdin})
	}

	return srcs, func() {
		for _, f := range files {
			f.Close()
		}
	}
}

// openUnique opens path unless an equivalent file was already seen, in
// which case it returns nil, nil.
func openUnique(path string, seen map[fileKey]struct{}) (*os.File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, err
	}

	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		key := fileKey{dev: uint64(stat.Dev), ino: stat.Ino} //nolint:unconvert
		if _, dup := seen[key]; dup {
			return nil, nil //nolint:nilnil
		}

		seen[key] = struct{}{}
	}

	return os.Open(resolved)
}

// expressions yields the expressions in r, one per line. Blank lines and
// lines starting with '#' are skipped.
func expressions(r io.Reader, yield func(line int, expr string) bool) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for n := 1; sc.Scan(); n++ {
		expr := strings.TrimSpace(sc.Text())
		if expr == "" || strings.HasPrefix(expr, "#") {
			continue
		}

		if !yield(n, expr) {
			break
		}
	}

	return sc.Err()
}

func logAttrs(cmd string, attrs ...slog.Attr) []slog.Attr {
	return append([]slog.Attr{slog.String("command", cmd)}, attrs...)
}

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/fatih/color"
)

//nolint:gochecknoglobals
var (
	keyColor   = color.New(color.FgHiBlack)
	msgColor   = color.New(color.Bold)
	levelColor = map[string]*color.Color{
		"TRACE": color.New(color.FgMagenta),
		"DEBUG": color.New(color.FgBlue),
		"INFO":  color.New(color.FgGreen),
		"WARN":  color.New(color.FgYellow),
		"ERROR": color.New(color.FgRed, color.Bold),
	}
)

// prettyHandler renders records as unquoted key=value pairs with colorized
// keys and levels. Coloring follows [color.NoColor].
type prettyHandler struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	prefix string
	attrs  []slog.Attr
}

func newPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *prettyHandler {
	return &prettyHandler{opts: *opts, mu: &sync.Mutex{}, w: w}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	head := []slog.Attr{
		slog.Time(slog.TimeKey, r.Time),
		slog.Any(slog.LevelKey, r.Level),
	}

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			head = append(head,
				slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", src.File, src.Line)))
		}
	}

	for _, a := range head {
		h.write(&buf, "", a)
	}

	buf.WriteString(msgColor.Sprint(r.Message))
	buf.WriteByte(' ')

	for _, a := range h.attrs {
		h.write(&buf, "", a)
	}

	r.Attrs(func(a slog.Attr) bool {
		h.write(&buf, h.prefix, a)

		return true
	})

	out := append(bytes.TrimRight(buf.Bytes(), " "), '\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(out)

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(append([]slog.Attr{}, h.attrs...), qualify(h.prefix, attrs)...)

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix = h.prefix + name + "."

	return &c
}

func qualify(prefix string, attrs []slog.Attr) []slog.Attr {
	if prefix == "" {
		return attrs
	}

	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: prefix + a.Key, Value: a.Value}
	}

	return out
}

func (h *prettyHandler) write(buf *bytes.Buffer, prefix string, a slog.Attr) {
	if h.opts.ReplaceAttr != nil && a.Value.Kind() != slog.KindGroup {
		a = h.opts.ReplaceAttr(nil, a)
	}

	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		for _, g := range a.Value.Group() {
			h.write(buf, prefix+a.Key+".", g)
		}

		return
	}

	switch a.Key {
	case slog.TimeKey, slog.SourceKey:
		buf.WriteString(keyColor.Sprint(a.Value.String()))
	case slog.LevelKey:
		s := a.Value.String()
		if c, ok := levelColor[s]; ok {
			s = c.Sprintf("%-5s", s)
		}

		buf.WriteString(s)
	default:
		buf.WriteString(keyColor.Sprint(prefix + a.Key + "="))
		buf.WriteString(a.Value.String())
	}

	buf.WriteByte(' ')
}

// indentWriter re-indents each JSON record written through it.
type indentWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (iw *indentWriter) Write(p []byte) (int, error) {
	var buf bytes.Buffer

	if err := json.Indent(&buf, bytes.TrimSpace(p), "", "  "); err != nil {
		buf.Reset()
		buf.Write(p)
	} else {
		buf.WriteByte('\n')
	}

	iw.mu.Lock()
	defer iw.mu.Unlock()

	if _, err := iw.w.Write(buf.Bytes()); err != nil {
		return 0, err
	}

	return len(p), nil
}

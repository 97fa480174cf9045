package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestMake_Defaults(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf)

	if got := logger.Level(); got != DefaultLevel {
		t.Errorf("Level() = %v, want %v", got, DefaultLevel)
	}

	if got := logger.Format(); got != DefaultFormat {
		t.Errorf("Format() = %v, want %v", got, DefaultFormat)
	}

	logger.Info("hello", slog.String("key", "value"))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not a JSON record: %v\n%s", err, buf.String())
	}

	if rec["msg"] != "hello" || rec["key"] != "value" || rec["level"] != "INFO" {
		t.Errorf("unexpected record: %v", rec)
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	tests := []struct {
		name  string
		level Level
		emit  func(Logger)
		want  bool
	}{
		{"trace at trace", LevelTrace, func(l Logger) { l.Trace("m") }, true},
		{"debug at info", LevelInfo, func(l Logger) { l.Debug("m") }, false},
		{"warn at info", LevelInfo, func(l Logger) { l.Warn("m") }, true},
		{"info at error", LevelError, func(l Logger) { l.Info("m") }, false},
		{"error at error", LevelError, func(l Logger) { l.Error("m") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			tt.emit(Make(&buf, WithLevel(tt.level)))

			if got := buf.Len() > 0; got != tt.want {
				t.Errorf("emitted = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLogger_TraceLevelName(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithLevel(LevelTrace)).TraceContext(t.Context(), "deep")

	if !strings.Contains(buf.String(), `"level":"TRACE"`) {
		t.Errorf("trace level not rendered by name: %s", buf.String())
	}
}

func TestLogger_Caller(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithCaller(true)).Info("where")

	if !strings.Contains(buf.String(), "log_test.go") {
		t.Errorf("source does not point at the caller: %s", buf.String())
	}
}

func TestLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithFormat(FormatText), WithTimeLayout("none")).
		Info("plain", slog.Int("n", 3))

	got := strings.TrimSpace(buf.String())
	if got != "level=INFO msg=plain n=3" {
		t.Errorf("text output = %q", got)
	}
}

func TestLogger_PrettyText(t *testing.T) {
	saved := color.NoColor
	color.NoColor = true

	t.Cleanup(func() { color.NoColor = saved })

	var buf bytes.Buffer

	logger := Make(&buf,
		WithFormat(FormatText), WithPretty(true), WithTimeLayout(""))
	logger.With(slog.String("component", "engine")).
		Warn("slow", slog.Group("cache", slog.Int("entries", 2)))

	got := strings.TrimSpace(buf.String())
	want := "WARN  slow component=engine cache.entries=2"

	if got != want {
		t.Errorf("pretty output = %q, want %q", got, want)
	}
}

func TestLogger_PrettyJSON(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithPretty(true)).Info("indented", slog.Bool("ok", true))

	if !strings.Contains(buf.String(), "\n  \"msg\": \"indented\"") {
		t.Errorf("JSON output not indented: %s", buf.String())
	}
}

func TestLogger_Wrap(t *testing.T) {
	var buf bytes.Buffer

	base := Make(&buf, WithLevel(LevelError))
	wrapped := base.Wrap(WithLevel(LevelDebug))

	if base.Level() != LevelError || wrapped.Level() != LevelDebug {
		t.Fatalf("Wrap mutated the original: base=%v wrapped=%v",
			base.Level(), wrapped.Level())
	}

	wrapped.Debug("visible")

	if buf.Len() == 0 {
		t.Error("wrapped logger did not emit at its own level")
	}
}

func TestLogger_ZeroValue(t *testing.T) {
	var l Logger

	l.Error("dropped")
	l.With(slog.String("k", "v")).InfoContext(context.Background(), "dropped")

	if l.Level() != DefaultLevel || l.Format() != DefaultFormat {
		t.Error("zero Logger does not report defaults")
	}
}

func TestWithTimeLayout(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"RFC3339", "2006-01-02T15:04:05Z07:00"},
		{"rfc-3339-nano", "2006-01-02T15:04:05.999999999Z07:00"},
		{"Kitchen", "3:04PM"},
		{"none", ""},
		{"  ", ""},
		{"15:04", "15:04"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := makeConfig(nil, WithTimeLayout(tt.in)).layout; got != tt.want {
				t.Errorf("layout = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	if got := ParseLevel("TRACE"); got != LevelTrace {
		t.Errorf("ParseLevel(TRACE) = %v", got)
	}

	if got := ParseLevel("warn"); got != LevelWarn {
		t.Errorf("ParseLevel(warn) = %v", got)
	}

	if got := ParseLevel("bogus"); got != DefaultLevel {
		t.Errorf("ParseLevel(bogus) = %v", got)
	}

	if got := ParseFormat(" TEXT "); got != FormatText {
		t.Errorf("ParseFormat(TEXT) = %v", got)
	}

	if got := slices.Collect(Levels()); len(got) != 5 || got[0] != "trace" {
		t.Errorf("Levels() = %v", got)
	}

	if got := slices.Collect(Formats()); !slices.Equal(got, []string{"json", "text"}) {
		t.Errorf("Formats() = %v", got)
	}
}

func TestConfig_PackageLogger(t *testing.T) {
	saved := Default()
	t.Cleanup(func() { defaultLog = saved })

	var buf bytes.Buffer

	Config(&buf, WithLevel(LevelDebug))

	Debug("pkg debug")
	Info("pkg info")

	if n := strings.Count(buf.String(), "\n"); n != 2 {
		t.Errorf("package logger wrote %d records, want 2:\n%s", n, buf.String())
	}
}

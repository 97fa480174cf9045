// Package log wraps [log/slog] with a small value-typed [Logger] that is
// configured once at construction through functional options.
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("kitchen"))
//	logger.Info("engine ready", slog.String("version", v))
//
// A package-level logger backs the free functions [Trace], [Debug], [Info],
// [Warn] and [Error]. It discards everything until [Config] installs a new
// one, so library packages may log unconditionally.
//
// Text output is colorized when pretty printing is enabled and the writer is
// a terminal. JSON output is indented instead.
package log

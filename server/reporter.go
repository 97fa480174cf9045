package server

import (
	"context"
	"log/slog"
	"maps"
	"slices"

	"github.com/go-co-op/gocron/v2"
)

// startReporter schedules the periodic metrics report. The returned func
// stops the scheduler.
func (s *Server) startReporter(ctx context.Context) (func(), error) {
	if s.interval <= 0 {
		return func() {}, nil
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, ErrScheduler.Wrap(err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() { s.report(ctx) }),
		gocron.WithName("logic-metrics"),
	)
	if err != nil {
		_ = sched.Shutdown()

		return nil, ErrScheduler.Wrap(err)
	}

	sched.Start()

	return func() {
		if err := sched.Shutdown(); err != nil {
			s.logger.Warn("metrics reporter shutdown", slog.Any("error", err))
		}
	}, nil
}

// report logs the current counters. Overlapping runs are skipped.
func (s *Server) report(ctx context.Context) {
	if !s.reporting.SetToIf(false, true) {
		return
	}
	defer s.reporting.UnSet()

	m, c := s.engine.Metrics(), s.engine.Stats()

	attrs := []slog.Attr{
		slog.String("version", s.engine.Version()),
		slog.Int64("evaluations", m.Evaluations),
		slog.Int64("parseErrors", m.ParseErrors),
		slog.Int64("divisionByZero", m.DivisionByZero),
		slog.Int64("unknownVariables", m.UnknownVariables),
		slog.Int64("invalidResults", m.InvalidResults),
		slog.Group("cache",
			slog.Int64("entries", c.Entries),
			slog.Int64("parseCount", c.ParseCount),
			slog.Int64("hitCount", c.HitCount),
		),
	}

	for _, name := range slices.Sorted(maps.Keys(m.Functions)) {
		attrs = append(attrs, slog.Int64("fn."+name, m.Functions[name]))
	}

	s.logger.InfoContext(ctx, "logic metrics", attrs...)
}

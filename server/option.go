package server

import (
	"time"

	"github.com/ardnew/formulate/log"
)

// DefaultReportInterval is how often the metrics reporter runs.
const DefaultReportInterval = time.Minute

// Option configures a [Server].
type Option func(*Server)

// WithLogger sets the logger for request and reporter records.
func WithLogger(logger log.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithReportInterval sets the metrics reporter period. Zero or negative
// disables the reporter.
func WithReportInterval(d time.Duration) Option {
	return func(s *Server) {
		s.interval = d
	}
}

// WithTimeouts bounds reading a request and writing its response.
func WithTimeouts(read, write time.Duration) Option {
	return func(s *Server) {
		s.readTimeout, s.writeTimeout = read, write
	}
}

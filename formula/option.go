package formula

import "github.com/ardnew/formulate/log"

// DefaultMaxLength is the longest normalized expression accepted, in bytes.
const DefaultMaxLength = 2000

// Option configures an [Engine].
type Option func(*Engine)

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the package-level logger of [log] is used.
func WithLogger(logger log.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMaxLength bounds the length of accepted expressions. Non-positive
// values restore [DefaultMaxLength].
func WithMaxLength(n int) Option {
	return func(e *Engine) {
		if n <= 0 {
			n = DefaultMaxLength
		}

		e.maxLength = n
	}
}

// WithCache makes the engine share an existing program cache.
func WithCache(c *Cache) Option {
	return func(e *Engine) {
		if c != nil {
			e.cache = c
		}
	}
}

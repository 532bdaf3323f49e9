package dbkit

import "github.com/rs/zerolog"

// Option adjusts a Pool before it starts.
type Option func(*Pool)

// WithLogger attaches a zerolog logger for connection lifecycle and
// health events. The default logger discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Pool) {
		p.log = log
	}
}

func nopLogger() zerolog.Logger {
	return zerolog.Nop()
}

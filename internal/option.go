package internal

import (
	"io"
	"time"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	out    io.Writer
	date   string
	now    func() time.Time
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithOutput sets where progress lines are written.
func WithOutput(w io.Writer) Option {
	return func(a *application) {
		a.out = w
	}
}

// WithReferenceDate overrides the reference date (YYYY-MM-DD). Empty means today.
func WithReferenceDate(date string) Option {
	return func(a *application) {
		a.date = date
	}
}

// WithClock replaces the wall clock used when no reference date is given.
func WithClock(now func() time.Time) Option {
	return func(a *application) {
		a.now = now
	}
}

package fastcsr

import (
	"log/slog"

	"github.com/hupe1980/csrgo/core"
	"github.com/hupe1980/csrgo/internal/pool"
)

// Option configures Open and FromBlob.
type Option func(*options)

type options struct {
	pool    *pool.Pool
	logger  *slog.Logger
	metrics core.MetricsObserver
}

func newOptions(opts []Option) *options {
	o := &options{
		pool:    pool.Default(),
		logger:  slog.New(slog.DiscardHandler),
		metrics: core.NoopObserver{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithPool runs scans on p instead of the shared default pool.
func WithPool(p *pool.Pool) Option {
	return func(o *options) {
		if p != nil {
			o.pool = p
		}
	}
}

// WithParallelism runs scans on a shared pool of n workers.
func WithParallelism(n int) Option {
	return func(o *options) { o.pool = pool.Sized(n) }
}

// WithLogger sets the logger for open and close events.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics sets the observer for open and scan timings.
func WithMetrics(m core.MetricsObserver) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

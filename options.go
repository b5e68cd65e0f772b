package csrgo

import (
	"context"
	"log/slog"

	"github.com/hupe1980/csrgo/core"
	"github.com/hupe1980/csrgo/csr"
	"github.com/hupe1980/csrgo/fastcsr"
	"github.com/hupe1980/csrgo/persistence"
	"github.com/hupe1980/csrgo/resource"
)

type options struct {
	ctx         context.Context
	logger      *Logger
	metrics     core.MetricsObserver
	parallelism int
	rc          *resource.Controller
	compression persistence.Compression
}

// Option configures the package-level helpers.
type Option func(*options)

// WithContext sets the context used for resource waits. Default context.Background().
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		o.ctx = ctx
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
//	logger := csrgo.NewJSONLogger(slog.LevelInfo)
//	g, _ := csrgo.BuildFromFile("graph.el", csrgo.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetrics configures a metrics observer. Pass nil to disable metrics.
func WithMetrics(m core.MetricsObserver) Option {
	return func(o *options) {
		if m == nil {
			m = core.NoopObserver{}
		}
		o.metrics = m
	}
}

// WithParallelism sets the number of workers for builds and scans.
// Zero or less uses GOMAXPROCS via the shared pool.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

// WithResourceController bounds build memory, concurrent builds and image IO.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// WithCompression selects the envelope codec for .csrz output. Default zstd.
func WithCompression(c persistence.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		ctx:         context.Background(),
		logger:      NoopLogger(),
		metrics:     core.NoopObserver{},
		compression: persistence.CompressionZSTD,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

func (o options) csrOptions() []csr.Option {
	opts := []csr.Option{
		csr.WithContext(o.ctx),
		csr.WithMetrics(o.metrics),
		csr.WithParallelism(o.parallelism),
	}
	if o.rc != nil {
		opts = append(opts, csr.WithResourceController(o.rc))
	}
	return opts
}

func (o options) fastOptions() []fastcsr.Option {
	return []fastcsr.Option{
		fastcsr.WithMetrics(o.metrics),
		fastcsr.WithParallelism(o.parallelism),
	}
}

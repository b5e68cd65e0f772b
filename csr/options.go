package csr

import (
	"context"
	"log/slog"

	"github.com/hupe1980/csrgo/core"
	"github.com/hupe1980/csrgo/internal/fs"
	"github.com/hupe1980/csrgo/internal/pool"
	"github.com/hupe1980/csrgo/resource"
)

// Option configures Build, Load and Save.
type Option func(*options)

type options struct {
	ctx     context.Context
	pool    *pool.Pool
	logger  *slog.Logger
	metrics core.MetricsObserver
	rc      *resource.Controller
	fsys    fs.FileSystem
}

func newOptions(opts []Option) *options {
	o := &options{
		ctx:     context.Background(),
		pool:    pool.Default(),
		logger:  slog.New(slog.DiscardHandler),
		metrics: core.NoopObserver{},
		fsys:    fs.Default,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithPool runs parallel phases on p instead of the shared default pool.
// The returned CSR keeps using p for its scans.
func WithPool(p *pool.Pool) Option {
	return func(o *options) {
		if p != nil {
			o.pool = p
		}
	}
}

// WithParallelism runs parallel phases and scans on the process-wide pool of
// n workers (see pool.Sized). n <= 0 selects the default pool.
func WithParallelism(n int) Option {
	return func(o *options) { o.pool = pool.Sized(n) }
}

// WithLogger sets the logger for build and image events.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics sets the observer for build, scan and load timings.
func WithMetrics(m core.MetricsObserver) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithResourceController limits concurrent builds, builder memory and image IO.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) { o.rc = rc }
}

// WithContext bounds the wait for a build slot, memory and IO tokens.
// Computation itself is not interruptible.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// WithFileSystem sets the filesystem used by Save.
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		if fsys != nil {
			o.fsys = fsys
		}
	}
}

package catalog

import (
	"log/slog"

	"github.com/hupe1980/csrgo/blobstore"
	"github.com/hupe1980/csrgo/internal/fs"
	"github.com/hupe1980/csrgo/persistence"
	"github.com/hupe1980/csrgo/resource"
)

// Option configures a Catalog.
type Option func(*options)

type options struct {
	logger      *slog.Logger
	compression persistence.Compression
	download    blobstore.DownloadOptions
	fsys        fs.FileSystem
}

// WithLogger sets the logger. Nil disables logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l == nil {
			l = slog.New(slog.DiscardHandler)
		}
		o.logger = l
	}
}

// WithCompression selects the envelope codec used by Publish. Default zstd.
func WithCompression(c persistence.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithDownloadOptions tunes the ranged fetch used by Fetch.
func WithDownloadOptions(d blobstore.DownloadOptions) Option {
	return func(o *options) {
		o.download = d
	}
}

// WithResourceController charges Fetch downloads against rc.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.download.Resource = rc
	}
}

// WithFileSystem sets the filesystem Fetch writes to.
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		o.fsys = fsys
	}
}

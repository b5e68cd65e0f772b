package blobstore

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/csrgo/resource"
)

const (
	defaultChunkSize   = 8 << 20
	defaultConcurrency = 8
)

// DownloadOptions tunes Download.
type DownloadOptions struct {
	// ChunkSize is the byte length of each ranged read. Default 8MB.
	ChunkSize int64
	// Concurrency caps in-flight ranged reads. Default 8.
	Concurrency int
	// Resource, when set, charges every chunk against its memory budget
	// and IO rate limit.
	Resource *resource.Controller
}

func (o DownloadOptions) withDefaults() DownloadOptions {
	if o.ChunkSize <= 0 {
		o.ChunkSize = defaultChunkSize
	}
	if o.Concurrency <= 0 {
		o.Concurrency = defaultConcurrency
	}
	return o
}

// Download copies the whole blob into dst with parallel ranged reads and
// returns the number of bytes written. The first failing chunk cancels the rest.
func Download(ctx context.Context, b Blob, dst io.WriterAt, opts DownloadOptions) (int64, error) {
	opts = opts.withDefaults()
	size := b.Size()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for off := int64(0); off < size; off += opts.ChunkSize {
		n := min(opts.ChunkSize, size-off)
		g.Go(func() error {
			return downloadChunk(ctx, b, dst, off, n, opts.Resource)
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return size, nil
}

func downloadChunk(ctx context.Context, b Blob, dst io.WriterAt, off, n int64, rc *resource.Controller) error {
	if err := rc.AcquireMemory(ctx, n); err != nil {
		return err
	}
	defer rc.ReleaseMemory(n)

	rd, err := b.ReadRange(ctx, off, n)
	if err != nil {
		return fmt.Errorf("blobstore: range %d+%d: %w", off, n, err)
	}
	defer rd.Close()

	buf := make([]byte, n)
	if _, err := io.ReadFull(rd, buf); err != nil {
		return fmt.Errorf("blobstore: range %d+%d: %w", off, n, err)
	}
	if err := rc.AcquireIO(ctx, len(buf)); err != nil {
		return err
	}
	if _, err := dst.WriteAt(buf, off); err != nil {
		return fmt.Errorf("blobstore: write at %d: %w", off, err)
	}
	return nil
}

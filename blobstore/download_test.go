package blobstore

import (
	"context"
	"errors"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/csrgo/resource"
)

type writerAtBuffer struct {
	buf []byte
}

func (w *writerAtBuffer) WriteAt(p []byte, off int64) (int, error) {
	return copy(w.buf[off:], p), nil
}

func TestDownload(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewPCG(1, 2))

	data := make([]byte, 100_003)
	for i := range data {
		data[i] = byte(rng.IntN(256))
	}

	store := NewMemoryStore()
	require.NoError(t, store.Put(ctx, "img", data))
	b, err := store.Open(ctx, "img")
	require.NoError(t, err)

	tests := []struct {
		name string
		opts DownloadOptions
	}{
		{"defaults", DownloadOptions{}},
		{"small chunks", DownloadOptions{ChunkSize: 4096, Concurrency: 3}},
		{"chunk equals size", DownloadOptions{ChunkSize: int64(len(data))}},
		{"with resource", DownloadOptions{ChunkSize: 1000, Resource: resource.NewController(resource.Config{
			MemoryLimitBytes:   4000,
			IOLimitBytesPerSec: 1 << 30,
		})}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := &writerAtBuffer{buf: make([]byte, len(data))}
			n, err := Download(ctx, b, dst, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, int64(len(data)), n)
			assert.Equal(t, data, dst.buf)
		})
	}
}

func TestDownload_ToFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	src := NewLocalStore(dir)
	require.NoError(t, src.Put(ctx, "src.bin", []byte("0123456789abcdef")))

	b, err := src.Open(ctx, "src.bin")
	require.NoError(t, err)
	defer b.Close()

	f, err := os.Create(filepath.Join(dir, "dst.bin"))
	require.NoError(t, err)
	_, err = Download(ctx, b, f, DownloadOptions{ChunkSize: 5})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	got, err := os.ReadFile(filepath.Join(dir, "dst.bin"))
	require.NoError(t, err)
	assert.Equal(t, "0123456789abcdef", string(got))
}

type failingBlob struct {
	Blob
	calls atomic.Int32
}

var errBackend = errors.New("backend down")

func (b *failingBlob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	if b.calls.Add(1) == 2 {
		return nil, errBackend
	}
	return b.Blob.ReadRange(ctx, off, length)
}

func TestDownload_Error(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Put(ctx, "img", make([]byte, 64)))
	inner, err := store.Open(ctx, "img")
	require.NoError(t, err)

	dst := &writerAtBuffer{buf: make([]byte, 64)}
	_, err = Download(ctx, &failingBlob{Blob: inner}, dst, DownloadOptions{ChunkSize: 8, Concurrency: 1})
	assert.ErrorIs(t, err, errBackend)
}

package redis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/hupe1980/csrgo/blobstore"
	"github.com/redis/go-redis/v9"
)

// DefaultPrefix is used when Options.Prefix is empty.
const DefaultPrefix = "csrgo:"

// Options configures a Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string        // Key prefix, default "csrgo:"
	TTL      time.Duration // Expiration for blobs, 0 means no expiration
}

// Store implements blobstore.BlobStore on top of a Redis client.
type Store struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

var _ blobstore.BlobStore = (*Store)(nil)

// NewStore connects to Redis using opts.
func NewStore(opts Options) *Store {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return NewStoreWithClient(client, opts.Prefix, opts.TTL)
}

// NewStoreWithClient wraps an existing client.
func NewStoreWithClient(client redis.Cmdable, prefix string, ttl time.Duration) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix, ttl: ttl}
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (s *Store) key(name string) string {
	return s.prefix + name
}

// Open returns a handle to the blob. The size is captured at open time.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.key(name)
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis exists %s: %w", name, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("redis: %s: %w", name, blobstore.ErrNotFound)
	}
	size, err := s.client.StrLen(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis strlen %s: %w", name, err)
	}
	return &blob{client: s.client, key: key, size: size}, nil
}

// Create returns a writable blob that is stored on Close.
func (s *Store) Create(_ context.Context, name string) (blobstore.WritableBlob, error) {
	return &writableBlob{store: s, name: name}, nil
}

// Put stores data under name with a single SET.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	if err := s.client.Set(ctx, s.key(name), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", name, err)
	}
	return nil
}

// Delete removes the blob.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := s.client.Del(ctx, s.key(name)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", name, err)
	}
	return nil
}

// List scans keys under the store prefix that start with prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	iter := s.client.Scan(ctx, 0, escapeGlob(s.key(prefix))+"*", 256).Iterator()
	for iter.Next(ctx) {
		names = append(names, strings.TrimPrefix(iter.Val(), s.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// escapeGlob quotes the SCAN MATCH metacharacters in s.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

type blob struct {
	client redis.Cmdable
	key    string
	size   int64
}

func (b *blob) Size() int64 { return b.size }

func (b *blob) Close() error { return nil }

func (b *blob) getRange(ctx context.Context, off, length int64) ([]byte, error) {
	// GETRANGE end is inclusive.
	data, err := b.client.GetRange(ctx, b.key, off, off+length-1).Bytes()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis getrange %s: %w", b.key, err)
	}
	return data, nil
}

func (b *blob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("redis: negative offset %d", off)
	}
	if off >= b.size {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}
	data, err := b.getRange(ctx, off, int64(len(p)))
	if err != nil {
		return 0, err
	}
	n := copy(p, data)
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (b *blob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	if off < 0 {
		return nil, fmt.Errorf("redis: negative offset %d", off)
	}
	if off >= b.size {
		return nil, io.EOF
	}
	if length < 0 || off+length > b.size {
		length = b.size - off
	}
	data, err := b.getRange(ctx, off, length)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

type writableBlob struct {
	store  *Store
	name   string
	buf    bytes.Buffer
	closed bool
}

func (w *writableBlob) Write(p []byte) (int, error) {
	if w.closed {
		return 0, os.ErrClosed
	}
	return w.buf.Write(p)
}

// Sync is a no-op; the value is sent on Close.
func (w *writableBlob) Sync() error { return nil }

func (w *writableBlob) Close() error {
	if w.closed {
		return os.ErrClosed
	}
	w.closed = true
	return w.store.Put(context.Background(), w.name, w.buf.Bytes())
}

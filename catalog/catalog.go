package catalog

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/csrgo/blobstore"
	"github.com/hupe1980/csrgo/csr"
	"github.com/hupe1980/csrgo/fastcsr"
	"github.com/hupe1980/csrgo/internal/fs"
	"github.com/hupe1980/csrgo/persistence"
)

const (
	// CurrentName is the base name of the pointer blob of a graph.
	CurrentName = "CURRENT"
	// ImageExt is the extension of packed images in the store.
	ImageExt = ".csrz"
	// LocalExt is the extension of fetched raw images.
	LocalExt = ".csr"
)

var (
	// ErrNoCurrentVersion is returned when a graph has never been published.
	ErrNoCurrentVersion = errors.New("catalog: no current version")
	// ErrInvalidName is returned for graph names that are not clean relative paths.
	ErrInvalidName = errors.New("catalog: invalid graph name")
)

// Catalog stores versioned CSR images in a BlobStore.
type Catalog struct {
	store blobstore.BlobStore
	opts  options
}

// New returns a Catalog over store.
func New(store blobstore.BlobStore, opts ...Option) *Catalog {
	o := options{
		logger:      slog.New(slog.DiscardHandler),
		compression: persistence.CompressionZSTD,
		fsys:        fs.Default,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Catalog{store: store, opts: o}
}

// Store returns the underlying blob store.
func (c *Catalog) Store() blobstore.BlobStore { return c.store }

func validName(graph string) error {
	if graph == "" || strings.HasPrefix(graph, "/") || path.Clean(graph) != graph ||
		graph == ".." || strings.HasPrefix(graph, "../") || path.Base(graph) == CurrentName {
		return fmt.Errorf("%w: %q", ErrInvalidName, graph)
	}
	return nil
}

func imageName(graph, version string) string {
	return path.Join(graph, version+ImageExt)
}

func currentName(graph string) string {
	return path.Join(graph, CurrentName)
}

// Publish packs g, uploads it as a new version and moves CURRENT to it.
func (c *Catalog) Publish(ctx context.Context, graph string, g *csr.CSR) (string, error) {
	if err := validName(graph); err != nil {
		return "", err
	}
	start := time.Now()

	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("catalog: version id: %w", err)
	}
	version := id.String()

	var raw bytes.Buffer
	raw.Grow(int(g.ImageSize()))
	if _, err := g.WriteTo(&raw); err != nil {
		return "", fmt.Errorf("catalog: encode image: %w", err)
	}

	var packed bytes.Buffer
	if _, err := persistence.Pack(&packed, raw.Bytes(), c.opts.compression); err != nil {
		return "", fmt.Errorf("catalog: pack image: %w", err)
	}

	if err := c.store.Put(ctx, imageName(graph, version), packed.Bytes()); err != nil {
		return "", fmt.Errorf("catalog: upload %s/%s: %w", graph, version, err)
	}
	if err := c.store.Put(ctx, currentName(graph), []byte(version)); err != nil {
		return "", fmt.Errorf("catalog: commit %s/%s: %w", graph, version, err)
	}

	c.opts.logger.Info("catalog published",
		"graph", graph,
		"version", version,
		"vertices", g.NumVertices(),
		"edges", g.NumEdges(),
		"raw_bytes", raw.Len(),
		"packed_bytes", packed.Len(),
		"compression", c.opts.compression.String(),
		"duration", time.Since(start),
	)
	return version, nil
}

// Resolve returns the version CURRENT points to.
func (c *Catalog) Resolve(ctx context.Context, graph string) (string, error) {
	if err := validName(graph); err != nil {
		return "", err
	}
	b, err := c.store.Open(ctx, currentName(graph))
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return "", fmt.Errorf("%w: %s", ErrNoCurrentVersion, graph)
		}
		return "", fmt.Errorf("catalog: resolve %s: %w", graph, err)
	}
	defer b.Close()

	content, err := io.ReadAll(io.NewSectionReader(blobstore.ReaderAt(ctx, b), 0, b.Size()))
	if err != nil {
		return "", fmt.Errorf("catalog: read %s pointer: %w", graph, err)
	}
	version := strings.TrimSpace(string(content))
	if version == "" {
		return "", fmt.Errorf("%w: %s", ErrNoCurrentVersion, graph)
	}
	return version, nil
}

// Versions lists the published versions of graph, oldest first.
func (c *Catalog) Versions(ctx context.Context, graph string) ([]string, error) {
	if err := validName(graph); err != nil {
		return nil, err
	}
	prefix := graph + "/"
	names, err := c.store.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("catalog: list %s: %w", graph, err)
	}

	var versions []string
	for _, name := range names {
		rest := strings.TrimPrefix(name, prefix)
		if strings.Contains(rest, "/") || !strings.HasSuffix(rest, ImageExt) {
			continue
		}
		versions = append(versions, strings.TrimSuffix(rest, ImageExt))
	}
	return versions, nil
}

// Prune deletes all but the newest keep versions. The current version is
// never deleted. It returns the deleted versions.
func (c *Catalog) Prune(ctx context.Context, graph string, keep int) ([]string, error) {
	versions, err := c.Versions(ctx, graph)
	if err != nil {
		return nil, err
	}
	current, err := c.Resolve(ctx, graph)
	if err != nil && !errors.Is(err, ErrNoCurrentVersion) {
		return nil, err
	}

	keep = max(keep, 0)
	var deleted []string
	for _, v := range versions[:max(len(versions)-keep, 0)] {
		if v == current {
			continue
		}
		if err := c.store.Delete(ctx, imageName(graph, v)); err != nil {
			return deleted, fmt.Errorf("catalog: delete %s/%s: %w", graph, v, err)
		}
		deleted = append(deleted, v)
	}
	if len(deleted) > 0 {
		c.opts.logger.Info("catalog pruned", "graph", graph, "deleted", len(deleted))
	}
	return deleted, nil
}

// LocalPath returns where Fetch places version of graph under dir.
func LocalPath(dir, graph, version string) string {
	return filepath.Join(dir, filepath.FromSlash(graph), version+LocalExt)
}

// Fetch makes the current version of graph available under dir and returns
// the path of the raw image.
func (c *Catalog) Fetch(ctx context.Context, graph, dir string) (string, error) {
	version, err := c.Resolve(ctx, graph)
	if err != nil {
		return "", err
	}
	return c.FetchVersion(ctx, graph, version, dir)
}

// FetchVersion downloads, unpacks and verifies one version of graph. The
// image is renamed into place only after it verified; an existing local copy
// is returned as is.
func (c *Catalog) FetchVersion(ctx context.Context, graph, version, dir string) (string, error) {
	if err := validName(graph); err != nil {
		return "", err
	}
	target := LocalPath(dir, graph, version)
	fsys := c.opts.fsys

	if _, err := fsys.Stat(target); err == nil {
		c.opts.logger.Debug("catalog cache hit", "graph", graph, "version", version, "path", target)
		return target, nil
	}

	start := time.Now()
	targetDir := filepath.Dir(target)
	if err := fsys.MkdirAll(targetDir, 0o755); err != nil {
		return "", fmt.Errorf("catalog: %w", err)
	}

	size, err := c.fetch(ctx, graph, version, target)
	if err != nil {
		c.opts.logger.Error("catalog fetch failed", "graph", graph, "version", version, "error", err)
		return "", err
	}

	c.opts.logger.Info("catalog fetched",
		"graph", graph,
		"version", version,
		"path", target,
		"bytes", size,
		"duration", time.Since(start),
	)
	return target, nil
}

func (c *Catalog) fetch(ctx context.Context, graph, version, target string) (int64, error) {
	fsys := c.opts.fsys
	dir := filepath.Dir(target)

	b, err := c.store.Open(ctx, imageName(graph, version))
	if err != nil {
		return 0, fmt.Errorf("catalog: open %s/%s: %w", graph, version, err)
	}
	defer b.Close()

	envName := tempName(dir, version+ImageExt)
	env, err := fsys.OpenFile(envName, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o644)
	if err != nil {
		return 0, fmt.Errorf("catalog: %w", err)
	}
	defer func() {
		_ = env.Close()
		_ = fsys.Remove(envName)
	}()

	n, err := blobstore.Download(ctx, b, env, c.opts.download)
	if err != nil {
		return 0, fmt.Errorf("catalog: download %s/%s: %w", graph, version, err)
	}

	rawName := tempName(dir, version+LocalExt)
	if err := unpackFile(fsys, rawName, io.NewSectionReader(env, 0, n)); err != nil {
		_ = fsys.Remove(rawName)
		return 0, fmt.Errorf("catalog: unpack %s/%s: %w", graph, version, err)
	}

	size, err := verify(rawName)
	if err != nil {
		_ = fsys.Remove(rawName)
		return 0, fmt.Errorf("catalog: verify %s/%s: %w", graph, version, err)
	}

	if err := fsys.Rename(rawName, target); err != nil {
		_ = fsys.Remove(rawName)
		return 0, fmt.Errorf("catalog: %w", err)
	}
	return size, fs.SyncDir(fsys, dir)
}

func tempName(dir, base string) string {
	return filepath.Join(dir, "."+base+"."+uuid.NewString()+".tmp")
}

func unpackFile(fsys fs.FileSystem, name string, src io.Reader) error {
	f, err := fsys.OpenFile(name, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	buf := bufio.NewWriterSize(f, 256*1024)
	if _, err := persistence.Unpack(buf, src); err != nil {
		_ = f.Close()
		return err
	}
	if err := buf.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func verify(name string) (int64, error) {
	g, err := fastcsr.Open(name)
	if err != nil {
		return 0, err
	}
	defer g.Close()

	if err := g.Verify(); err != nil {
		return 0, err
	}
	return g.ImageSize(), nil
}

// Open fetches the current version of graph into dir and maps it.
func (c *Catalog) Open(ctx context.Context, graph, dir string, opts ...fastcsr.Option) (*fastcsr.FastCSR, error) {
	p, err := c.Fetch(ctx, graph, dir)
	if err != nil {
		return nil, err
	}
	return fastcsr.Open(p, opts...)
}

package fastcsr

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/hupe1980/csrgo/blobstore"
	"github.com/hupe1980/csrgo/core"
	"github.com/hupe1980/csrgo/internal/mmap"
	"github.com/hupe1980/csrgo/internal/pool"
	"github.com/hupe1980/csrgo/persistence"
)

// ErrNotMappable is returned by FromBlob for blobs without direct byte access.
var ErrNotMappable = errors.New("fastcsr: blob is not mappable")

// FastCSR is a read-only CSR backed by an image in mapped memory.
type FastCSR struct {
	numVertices int
	numEdges    int
	offsets     []uint64
	neighbors   []core.VertexID

	// copied is set when the mapping was misaligned and views had to be copied.
	copied  bool
	mapping *mmap.Mapping
	closer  io.Closer
	closed  atomic.Bool
	size    int64

	pool    *pool.Pool
	logger  *slog.Logger
	metrics core.MetricsObserver
}

// Open maps the image at path. It fails if the file cannot be opened or
// mapped, is shorter than the header, or its length differs from the one
// the header declares.
func Open(path string, opts ...Option) (*FastCSR, error) {
	o := newOptions(opts)
	start := time.Now()

	g, size, err := open(path, o)

	o.metrics.OnOpen(size, time.Since(start), err)
	if err != nil {
		o.logger.Error("fastcsr open failed", "path", path, "error", err)
		return nil, err
	}
	o.logger.Info("fastcsr opened",
		"path", path,
		"vertices", g.numVertices,
		"edges", g.numEdges,
		"bytes", size,
		"duration", time.Since(start),
	)
	return g, nil
}

func open(path string, o *options) (*FastCSR, int64, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("fastcsr: %w", err)
	}
	size := int64(m.Size())

	g, err := fromBytes(m.Bytes(), o)
	if err != nil {
		_ = m.Close()
		return nil, size, fmt.Errorf("fastcsr: %s: %w", path, err)
	}
	g.mapping = m
	g.closer = m
	return g, size, nil
}

// FromBlob opens a FastCSR over a blob that exposes its bytes, such as a
// LocalStore blob. Closing the FastCSR closes the blob.
func FromBlob(b blobstore.Blob, opts ...Option) (*FastCSR, error) {
	o := newOptions(opts)
	start := time.Now()

	m, ok := b.(blobstore.Mappable)
	if !ok {
		o.metrics.OnOpen(b.Size(), time.Since(start), ErrNotMappable)
		return nil, ErrNotMappable
	}
	data, err := m.Bytes()
	if err == nil {
		var g *FastCSR
		if g, err = fromBytes(data, o); err == nil {
			g.closer = b
			o.metrics.OnOpen(g.size, time.Since(start), nil)
			o.logger.Info("fastcsr opened from blob", "vertices", g.numVertices, "edges", g.numEdges, "bytes", g.size)
			return g, nil
		}
	}
	err = fmt.Errorf("fastcsr: %w", err)
	o.metrics.OnOpen(b.Size(), time.Since(start), err)
	return nil, err
}

func fromBytes(data []byte, o *options) (*FastCSR, error) {
	r := persistence.NewSliceReader(data)
	h, err := r.ReadHeader()
	if err != nil {
		return nil, err
	}
	layout, err := h.Layout()
	if err != nil {
		return nil, err
	}
	if len(data) != layout.Size {
		sentinel := persistence.ErrTruncated
		if len(data) > layout.Size {
			sentinel = persistence.ErrCorrupt
		}
		return nil, fmt.Errorf("%w: header declares %d bytes, image has %d", sentinel, layout.Size, len(data))
	}

	numVertices := int(h.NumVertices)
	numEdges := int(h.NumEdges)

	offsets, copiedOffsets, err := r.ReadUint64SliceView(numVertices)
	if err != nil {
		return nil, fmt.Errorf("offsets: %w", err)
	}
	neighbors, copiedNeighbors, err := r.ReadUint64SliceView(numEdges)
	if err != nil {
		return nil, fmt.Errorf("neighbors: %w", err)
	}

	return &FastCSR{
		numVertices: numVertices,
		numEdges:    numEdges,
		offsets:     offsets,
		neighbors:   neighbors,
		copied:      copiedOffsets || copiedNeighbors,
		size:        int64(len(data)),
		pool:        o.pool,
		logger:      o.logger,
		metrics:     o.metrics,
	}, nil
}

// Close releases the mapping. Views obtained earlier become invalid.
// Close is idempotent.
func (g *FastCSR) Close() error {
	if g.closed.Swap(true) {
		return nil
	}
	g.logger.Debug("fastcsr closed", "vertices", g.numVertices, "edges", g.numEdges)
	if g.closer == nil {
		return nil
	}
	return g.closer.Close()
}

// NumVertices returns the number of vertices.
func (g *FastCSR) NumVertices() int { return g.numVertices }

// NumEdges returns the number of edges.
func (g *FastCSR) NumEdges() int { return g.numEdges }

// ImageSize returns the image length in bytes.
func (g *FastCSR) ImageSize() int64 { return g.size }

// ZeroCopy reports whether the arrays are views into the mapping rather
// than private copies.
func (g *FastCSR) ZeroCopy() bool { return !g.copied }

// Offsets returns the mapped offsets array.
func (g *FastCSR) Offsets() []uint64 { return g.offsets }

// NeighborArray returns the mapped neighbors array.
func (g *FastCSR) NeighborArray() []core.VertexID { return g.neighbors }

// Offset returns the start of v's range in the neighbors array.
func (g *FastCSR) Offset(v core.VertexID) uint64 { return g.offsets[v] }

// OffsetRange returns [start, end) of v's neighbors.
func (g *FastCSR) OffsetRange(v core.VertexID) (start, end uint64) {
	start = g.offsets[v]
	if int(v) == g.numVertices-1 {
		return start, uint64(g.numEdges)
	}
	return start, g.offsets[v+1]
}

// Neighbors returns v's neighbors as a view into the mapping.
func (g *FastCSR) Neighbors(v core.VertexID) []core.VertexID {
	start, end := g.OffsetRange(v)
	return g.neighbors[start:end:end]
}

// Degree returns v's out-degree.
func (g *FastCSR) Degree(v core.VertexID) int {
	start, end := g.OffsetRange(v)
	return int(end - start)
}

// Advise passes an access-pattern hint for the whole image to the kernel.
// It is a no-op for images not opened from a file.
func (g *FastCSR) Advise(p mmap.AccessPattern) error {
	if g.mapping == nil {
		return nil
	}
	return g.mapping.Advise(p)
}

// Verify checks the image structure: offsets start at zero, never decrease
// and stay within the neighbors array, and every neighbor id is a vertex.
func (g *FastCSR) Verify() error {
	if err := persistence.ValidateStructure(g.offsets, g.neighbors); err != nil {
		return fmt.Errorf("fastcsr: %w", err)
	}
	return nil
}

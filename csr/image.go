package csr

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hupe1980/csrgo/persistence"
	"github.com/hupe1980/csrgo/resource"
)

// WriteTo writes the graph's binary image to w.
func (g *CSR) WriteTo(w io.Writer) (int64, error) {
	return persistence.WriteImage(w, g.offsets, g.neighbors)
}

// ImageSize returns the length of the binary image.
func (g *CSR) ImageSize() int64 {
	return int64(persistence.HeaderSize) + int64(persistence.WordSize)*int64(g.numVertices+g.numEdges)
}

// Save writes the image to path atomically. WithFileSystem,
// WithResourceController (IO rate) and WithContext apply.
func (g *CSR) Save(path string, opts ...Option) error {
	o := newOptions(opts)
	start := time.Now()

	err := persistence.SaveToFile(o.fsys, path, func(w io.Writer) error {
		if o.rc != nil {
			w = resource.NewRateLimitedWriter(o.ctx, w, o.rc)
		}
		_, err := g.WriteTo(w)
		return err
	})
	if err != nil {
		g.logger.Error("csr save failed", "path", path, "error", err)
		return fmt.Errorf("csr: save %s: %w", path, err)
	}
	g.logger.Info("csr saved", "path", path, "bytes", g.ImageSize(), "duration", time.Since(start))
	return nil
}

// ReadFrom decodes an owned CSR from an image stream. The offsets are
// checked; neighbor ids are not (use Validate).
func ReadFrom(r io.Reader, opts ...Option) (*CSR, error) {
	o := newOptions(opts)
	if o.rc != nil {
		r = resource.NewRateLimitedReader(o.ctx, r, o.rc)
	}

	_, offsets, neighbors, err := persistence.ReadImage(r)
	if err != nil {
		return nil, fmt.Errorf("csr: read image: %w", err)
	}
	if err := checkOffsets(offsets, len(neighbors)); err != nil {
		return nil, err
	}
	return newCSR(offsets, neighbors, o), nil
}

// Load reads an image file into an owned CSR. The file length must match
// the length its header declares.
func Load(path string, opts ...Option) (*CSR, error) {
	o := newOptions(opts)
	start := time.Now()

	g, size, err := load(path, opts)

	o.metrics.OnOpen(size, time.Since(start), err)
	if err != nil {
		o.logger.Error("csr load failed", "path", path, "error", err)
		return nil, err
	}
	o.logger.Info("csr loaded", "path", path, "vertices", g.numVertices, "edges", g.numEdges, "duration", time.Since(start))
	return g, nil
}

func load(path string, opts []Option) (*CSR, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("csr: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, 0, fmt.Errorf("csr: %w", err)
	}

	br := bufio.NewReaderSize(f, 256*1024)
	hdr, err := br.Peek(persistence.HeaderSize)
	if err != nil {
		return nil, fi.Size(), fmt.Errorf("csr: %s: %w: %d bytes", path, persistence.ErrTruncated, fi.Size())
	}
	h, err := persistence.ParseHeader(hdr)
	if err != nil {
		return nil, fi.Size(), fmt.Errorf("csr: %s: %w", path, err)
	}
	want, err := h.ImageSize()
	if err != nil {
		return nil, fi.Size(), fmt.Errorf("csr: %s: %w", path, err)
	}
	if size := fi.Size(); int64(want) != size {
		sentinel := persistence.ErrTruncated
		if size > int64(want) {
			sentinel = persistence.ErrCorrupt
		}
		return nil, size, fmt.Errorf("csr: %s: %w: header declares %d bytes, file has %d", path, sentinel, want, size)
	}

	g, err := ReadFrom(br, opts...)
	return g, fi.Size(), err
}

func checkOffsets(offsets []uint64, numEdges int) error {
	for i := range offsets {
		if (i == 0 && offsets[0] != 0) || (i > 0 && offsets[i] < offsets[i-1]) {
			return fmt.Errorf("%w: offsets[%d] = %d", ErrInvalidStructure, i, offsets[i])
		}
	}
	if n := len(offsets); n > 0 && offsets[n-1] > uint64(numEdges) {
		return fmt.Errorf("%w: last offset %d exceeds %d edges", ErrInvalidStructure, offsets[n-1], numEdges)
	}
	return nil
}

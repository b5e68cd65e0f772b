package csrgo

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hupe1980/csrgo/core"
	"github.com/hupe1980/csrgo/csr"
	"github.com/hupe1980/csrgo/edgelist"
	"github.com/hupe1980/csrgo/fastcsr"
	"github.com/hupe1980/csrgo/persistence"
)

// Format is a graph file format recognised by Convert.
type Format int

const (
	FormatUnknown Format = iota
	// FormatEdgeList is a text edge list, optionally compressed (.gz, .zst, .lz4).
	FormatEdgeList
	// FormatImage is the raw binary image.
	FormatImage
	// FormatPacked is the image inside a compressed envelope.
	FormatPacked
)

func (f Format) String() string {
	switch f {
	case FormatEdgeList:
		return "edgelist"
	case FormatImage:
		return "image"
	case FormatPacked:
		return "packed"
	default:
		return "unknown"
	}
}

// DetectFormat infers the format from the file extension.
func DetectFormat(path string) Format {
	name := strings.ToLower(filepath.Base(path))
	switch filepath.Ext(name) {
	case ".gz", ".zst", ".lz4":
		name = strings.TrimSuffix(name, filepath.Ext(name))
		if isEdgeListExt(filepath.Ext(name)) {
			return FormatEdgeList
		}
		return FormatUnknown
	case ".csr", ".bin":
		return FormatImage
	case ".csrz":
		return FormatPacked
	}
	if isEdgeListExt(filepath.Ext(name)) {
		return FormatEdgeList
	}
	return FormatUnknown
}

func isEdgeListExt(ext string) bool {
	switch ext {
	case ".el", ".csv", ".txt", ".tsv", ".edges":
		return true
	}
	return false
}

// LoadEdgeList reads an edge list file.
func LoadEdgeList(path string) (core.EdgeList, error) {
	return edgelist.ReadFile(path)
}

// Build constructs a CSR over vertices [0, edges.NumVertices()).
func Build(edges core.EdgeList, opts ...Option) (*csr.CSR, error) {
	o := applyOptions(opts)
	return build(edges, o)
}

func build(edges core.EdgeList, o options) (*csr.CSR, error) {
	start := time.Now()
	n, err := edges.CountVertices()
	if err != nil {
		o.logger.LogBuild(o.ctx, 0, len(edges), time.Since(start), err)
		return nil, err
	}
	g, err := csr.Build(n, edges, o.csrOptions()...)
	o.logger.LogBuild(o.ctx, n, len(edges), time.Since(start), err)
	return g, err
}

// BuildFromFile reads an edge list file and builds its CSR.
func BuildFromFile(path string, opts ...Option) (*csr.CSR, error) {
	o := applyOptions(opts)
	edges, err := edgelist.ReadFile(path)
	if err != nil {
		o.logger.ErrorContext(o.ctx, "read edge list failed", "path", path, "error", err)
		return nil, err
	}
	o.logger.DebugContext(o.ctx, "edge list read", "path", path, "edges", len(edges))
	return build(edges, o)
}

// Save writes the binary image of g to path atomically.
func Save(g *csr.CSR, path string, opts ...Option) error {
	o := applyOptions(opts)
	err := g.Save(path, o.csrOptions()...)
	o.logger.LogSave(o.ctx, path, g.ImageSize(), err)
	return err
}

// OpenFast maps an image file read-only.
func OpenFast(path string, opts ...Option) (*fastcsr.FastCSR, error) {
	o := applyOptions(opts)
	f, err := fastcsr.Open(path, o.fastOptions()...)
	if err != nil {
		o.logger.LogOpen(o.ctx, path, 0, err)
		return nil, err
	}
	o.logger.LogOpen(o.ctx, path, f.ImageSize(), nil)
	return f, nil
}

// Load reads a graph in any format Convert accepts into an owned CSR.
// Images are validated structurally.
func Load(path string, opts ...Option) (*csr.CSR, error) {
	o := applyOptions(opts)
	return load(path, o)
}

func load(path string, o options) (*csr.CSR, error) {
	switch DetectFormat(path) {
	case FormatEdgeList:
		return BuildFromFile(path, withOptions(o))
	case FormatImage:
		g, err := csr.Load(path, o.csrOptions()...)
		if err != nil {
			return nil, err
		}
		return validated(g)
	case FormatPacked:
		return loadPacked(path, o)
	default:
		return nil, &ErrUnsupportedFormat{Path: path}
	}
}

func loadPacked(path string, o options) (*csr.CSR, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var raw bytes.Buffer
	if _, err := persistence.Unpack(&raw, f); err != nil {
		return nil, fmt.Errorf("unpack %s: %w", path, err)
	}
	g, err := csr.ReadFrom(&raw, o.csrOptions()...)
	if err != nil {
		return nil, err
	}
	return validated(g)
}

func validated(g *csr.CSR) (*csr.CSR, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Convert rewrites a graph file in the format implied by dst's extension.
func Convert(src, dst string, opts ...Option) error {
	o := applyOptions(opts)
	if DetectFormat(dst) == FormatUnknown {
		return &ErrUnsupportedFormat{Path: dst}
	}

	g, err := load(src, o)
	if err != nil {
		return err
	}
	return write(g, dst, o)
}

func write(g *csr.CSR, dst string, o options) error {
	switch DetectFormat(dst) {
	case FormatEdgeList:
		err := edgelist.WriteFile(dst, g.Edges())
		o.logger.LogSave(o.ctx, dst, int64(g.NumEdges()), err)
		return err
	case FormatImage:
		return Save(g, dst, withOptions(o))
	case FormatPacked:
		var raw bytes.Buffer
		raw.Grow(int(g.ImageSize()))
		if _, err := g.WriteTo(&raw); err != nil {
			return err
		}
		var packed int64
		err := persistence.SaveToFile(nil, dst, func(w io.Writer) error {
			cw := persistence.NewChecksumWriter(w)
			_, err := persistence.Pack(cw, raw.Bytes(), o.compression)
			packed = cw.Count()
			return err
		})
		o.logger.LogSave(o.ctx, dst, packed, err)
		return err
	default:
		return &ErrUnsupportedFormat{Path: dst}
	}
}

// withOptions replays resolved options into a nested helper call.
func withOptions(src options) Option {
	return func(o *options) { *o = src }
}

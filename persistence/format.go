package persistence

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/hupe1980/csrgo/internal/conv"
)

const (
	// WordSize is the width of every header field and array element.
	WordSize = 8
	// HeaderSize is the fixed prefix holding num_vertices and num_edges.
	HeaderSize = 2 * WordSize
)

var (
	// ErrTruncated means the data is shorter than its header claims.
	ErrTruncated = errors.New("persistence: truncated image")
	// ErrCorrupt means the header describes an impossible image.
	ErrCorrupt = errors.New("persistence: corrupt image")
)

// Header is the image prefix.
type Header struct {
	NumVertices uint64
	NumEdges    uint64
}

// Layout gives byte positions of the image sections.
type Layout struct {
	OffsetsStart   int
	NeighborsStart int
	Size           int
}

// Layout computes section positions, rejecting counts that overflow int.
func (h Header) Layout() (Layout, error) {
	nbrStart, err := conv.MulAdd(h.NumVertices, WordSize, HeaderSize)
	if err != nil {
		return Layout{}, fmt.Errorf("%w: %d vertices: %w", ErrCorrupt, h.NumVertices, err)
	}
	size, err := conv.MulAdd(h.NumEdges, WordSize, uint64(nbrStart))
	if err != nil {
		return Layout{}, fmt.Errorf("%w: %d edges: %w", ErrCorrupt, h.NumEdges, err)
	}
	return Layout{OffsetsStart: HeaderSize, NeighborsStart: nbrStart, Size: size}, nil
}

// ImageSize returns the total image length in bytes.
func (h Header) ImageSize() (int, error) {
	l, err := h.Layout()
	return l.Size, err
}

// Encode writes the header into the first HeaderSize bytes of dst.
func (h Header) Encode(dst []byte) {
	binary.LittleEndian.PutUint64(dst[0:], h.NumVertices)
	binary.LittleEndian.PutUint64(dst[WordSize:], h.NumEdges)
}

// ParseHeader decodes the header at the start of b.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("%w: %d bytes, header needs %d", ErrTruncated, len(b), HeaderSize)
	}
	return Header{
		NumVertices: binary.LittleEndian.Uint64(b[0:]),
		NumEdges:    binary.LittleEndian.Uint64(b[WordSize:]),
	}, nil
}

package persistence

import (
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/csrgo/internal/conv"
)

// ImageWriter writes an image section by section.
type ImageWriter struct {
	w io.Writer
	n int64
}

func NewImageWriter(w io.Writer) *ImageWriter {
	return &ImageWriter{w: w}
}

// Written returns the bytes written so far.
func (iw *ImageWriter) Written() int64 { return iw.n }

func (iw *ImageWriter) WriteHeader(h Header) error {
	var buf [HeaderSize]byte
	h.Encode(buf[:])
	n, err := iw.w.Write(buf[:])
	iw.n += int64(n)
	return err
}

// WriteUint64Slice writes words as raw little-endian bytes without copying.
func (iw *ImageWriter) WriteUint64Slice(words []uint64) error {
	if len(words) == 0 {
		return nil
	}
	if err := validateUint64SliceAlignment(words); err != nil {
		return err
	}
	n, err := iw.w.Write(wordBytes(words))
	iw.n += int64(n)
	return err
}

// WriteImage writes a complete image and returns its length.
func WriteImage(w io.Writer, offsets, neighbors []uint64) (int64, error) {
	iw := NewImageWriter(w)
	h := Header{NumVertices: uint64(len(offsets)), NumEdges: uint64(len(neighbors))}
	if err := iw.WriteHeader(h); err != nil {
		return iw.Written(), err
	}
	if err := iw.WriteUint64Slice(offsets); err != nil {
		return iw.Written(), err
	}
	if err := iw.WriteUint64Slice(neighbors); err != nil {
		return iw.Written(), err
	}
	return iw.Written(), nil
}

// ReadImage decodes an image from r into owned slices.
func ReadImage(r io.Reader) (Header, []uint64, []uint64, error) {
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Header{}, nil, nil, truncated(err)
	}
	h, err := ParseHeader(buf[:])
	if err != nil {
		return Header{}, nil, nil, err
	}
	if _, err := h.Layout(); err != nil {
		return Header{}, nil, nil, err
	}

	offsets, err := readWords(r, h.NumVertices)
	if err != nil {
		return Header{}, nil, nil, fmt.Errorf("offsets: %w", err)
	}
	neighbors, err := readWords(r, h.NumEdges)
	if err != nil {
		return Header{}, nil, nil, fmt.Errorf("neighbors: %w", err)
	}
	return h, offsets, neighbors, nil
}

func readWords(r io.Reader, count uint64) ([]uint64, error) {
	n, err := conv.Uint64ToInt(count)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	out := make([]uint64, n)
	if _, err := io.ReadFull(r, wordBytes(out)); err != nil {
		return nil, truncated(err)
	}
	return out, nil
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %w", ErrTruncated, err)
	}
	return err
}

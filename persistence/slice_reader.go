package persistence

import (
	"encoding/binary"
	"fmt"
	"unsafe"
)

// SliceReader provides bounds-checked reads from a byte slice, typically a
// memory mapping. Views it returns alias the slice.
type SliceReader struct {
	b   []byte
	off int
}

func NewSliceReader(b []byte) *SliceReader {
	return &SliceReader{b: b}
}

func (r *SliceReader) Offset() int { return r.off }

func (r *SliceReader) Remaining() int { return len(r.b) - r.off }

func (r *SliceReader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || n > len(r.b)-r.off {
		return nil, fmt.Errorf("%w: sliceReader out of bounds read (%d bytes at %d, len=%d)", ErrTruncated, n, r.off, len(r.b))
	}
	out := r.b[r.off : r.off+n]
	r.off += n
	return out, nil
}

func (r *SliceReader) ReadUint64() (uint64, error) {
	b, err := r.ReadBytes(WordSize)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *SliceReader) ReadHeader() (Header, error) {
	b, err := r.ReadBytes(HeaderSize)
	if err != nil {
		return Header{}, err
	}
	return ParseHeader(b)
}

// ReadUint64SliceView returns n words without copying when the bytes are
// 8-byte aligned, and a private copy otherwise. copied reports which.
func (r *SliceReader) ReadUint64SliceView(n int) (words []uint64, copied bool, err error) {
	if n == 0 {
		return nil, false, nil
	}
	if n < 0 || n > (len(r.b)-r.off)/WordSize {
		return nil, false, fmt.Errorf("%w: %d words at %d, len=%d", ErrTruncated, n, r.off, len(r.b))
	}
	bb, err := r.ReadBytes(n * WordSize)
	if err != nil {
		return nil, false, err
	}
	if !isWordAligned(bb) {
		out := make([]uint64, n)
		copy(wordBytes(out), bb)
		return out, true, nil
	}
	return unsafe.Slice((*uint64)(unsafe.Pointer(&bb[0])), n), false, nil
}

// ReadUint64SliceCopy returns n words in a new slice.
func (r *SliceReader) ReadUint64SliceCopy(n int) ([]uint64, error) {
	if n == 0 {
		return nil, nil
	}
	if n < 0 || n > (len(r.b)-r.off)/WordSize {
		return nil, fmt.Errorf("%w: %d words at %d, len=%d", ErrTruncated, n, r.off, len(r.b))
	}
	bb, err := r.ReadBytes(n * WordSize)
	if err != nil {
		return nil, err
	}
	out := make([]uint64, n)
	copy(wordBytes(out), bb)
	return out, nil
}

package mmap

// Region is a window [offset, offset+size) into a Mapping.
// The parent owns the memory.
type Region struct {
	parent *Mapping
	offset int
	size   int
}

// Region returns a window into the mapping.
func (m *Mapping) Region(offset, size int) (*Region, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}
	if offset < 0 || size < 0 || offset > len(m.data)-size {
		return nil, ErrOutOfBounds
	}
	return &Region{parent: m, offset: offset, size: size}, nil
}

// Offset returns the region start within the mapping.
func (r *Region) Offset() int { return r.offset }

// Size returns the region length.
func (r *Region) Size() int { return r.size }

// Bytes returns the region's bytes, or nil once the parent is closed.
func (r *Region) Bytes() []byte {
	if r.parent.closed.Load() {
		return nil
	}
	return r.parent.data[r.offset : r.offset+r.size]
}

// Advise hints the kernel about the access pattern of this region only.
func (r *Region) Advise(pattern AccessPattern) error {
	if r.parent.closed.Load() {
		return ErrClosed
	}
	return osAdvise(r.parent.data[r.offset:r.offset+r.size], pattern)
}

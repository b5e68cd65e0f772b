// Package mmap maps graph image files read-only into memory.
//
// A Mapping owns the mapped bytes; a Region is a bounds-checked window into
// it. Both expose Advise for madvise(2) access hints (a no-op on Windows).
//
//	m, err := mmap.Open("graph.csr")
//	if err != nil { ... }
//	defer m.Close()
//	nbrs, _ := m.Region(off, n)
//	_ = nbrs.Advise(mmap.AccessRandom)
//
// Bytes returned by a Mapping or Region must not be used after Close.
package mmap

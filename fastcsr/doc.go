// Package fastcsr queries a serialized CSR image in place.
//
// Open maps an image file read-only and exposes its offsets and neighbor
// arrays as typed views over the mapped bytes, so opening costs one mmap
// call regardless of graph size and repeated runs reuse the page cache.
// The image is produced by csr.CSR.Save or csr.CSR.WriteTo; there is no
// write path here.
//
//	g, err := fastcsr.Open("web.csr")
//	if err != nil {
//		return err
//	}
//	defer g.Close()
//
//	g.NeighborScan(func(v core.VertexID, nbrs []core.VertexID) {
//		// runs in parallel, one call per vertex
//	})
//
// Slices returned by Neighbors alias the mapping and must not be used after
// Close. Open checks only that the file is as long as its header says;
// Verify performs the full structural check.
package fastcsr

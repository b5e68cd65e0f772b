// Package core holds the small shared types of csrgo: vertex identifiers,
// edges and edge lists, per-vertex locked cells, and the metrics observer
// contract implemented by the root package and the observability package.
package core

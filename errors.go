package csrgo

import (
	"fmt"

	"github.com/hupe1980/csrgo/core"
	"github.com/hupe1980/csrgo/csr"
	"github.com/hupe1980/csrgo/persistence"
	"github.com/hupe1980/csrgo/resource"
)

var (
	// ErrInvalidStructure is returned when offsets are not a valid prefix sum.
	ErrInvalidStructure = csr.ErrInvalidStructure
	// ErrTruncated is returned for images shorter than their header declares.
	ErrTruncated = persistence.ErrTruncated
	// ErrCorrupt is returned for images that fail a structural check.
	ErrCorrupt = persistence.ErrCorrupt
	// ErrMemoryLimitExceeded is returned when a build does not fit the memory budget.
	ErrMemoryLimitExceeded = resource.ErrMemoryLimitExceeded
	// ErrVertexIDOverflow is returned for edge lists naming an id at or above math.MaxInt.
	ErrVertexIDOverflow = core.ErrVertexIDOverflow
)

// ErrUnsupportedFormat indicates a path whose extension names no known format.
type ErrUnsupportedFormat struct {
	Path string
}

func (e *ErrUnsupportedFormat) Error() string {
	return fmt.Sprintf("unsupported format: %s", e.Path)
}

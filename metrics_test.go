package csrgo

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/csrgo/core"
	"github.com/hupe1980/csrgo/resource"
)

func TestBasicMetricsCollector(t *testing.T) {
	metrics := &BasicMetricsCollector{}

	g, err := Build(sampleEdges(), WithMetrics(metrics))
	require.NoError(t, err)

	g.ReadOnlyScan(func(_, _ core.VertexID) {})
	g.BFS(0, func(core.VertexID) {})

	path := filepath.Join(t.TempDir(), "g.csr")
	require.NoError(t, Save(g, path))

	f, err := OpenFast(path, WithMetrics(metrics))
	require.NoError(t, err)
	defer f.Close()
	f.NeighborScan(func(core.VertexID, []core.VertexID) {})

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.BuildCount)
	assert.Equal(t, int64(0), stats.BuildErrors)
	assert.Equal(t, int64(4), stats.BuildEdges)
	assert.Equal(t, int64(1), stats.ReadOnlyScans)
	assert.Equal(t, int64(1), stats.BFSScans)
	assert.Equal(t, int64(1), stats.NeighborScans)
	assert.Equal(t, int64(3), stats.TotalScans())
	assert.Equal(t, int64(1), stats.OpenCount)
	assert.Equal(t, f.ImageSize(), stats.OpenBytes)
}

func TestBasicMetricsCollector_BuildError(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 8})

	_, err := Build(sampleEdges(), WithMetrics(metrics), WithResourceController(rc))
	require.ErrorIs(t, err, ErrMemoryLimitExceeded)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.BuildCount)
	assert.Equal(t, int64(1), stats.BuildErrors)
	assert.Equal(t, int64(0), stats.BuildEdges)
}

func TestMultiObserver(t *testing.T) {
	a, b := &BasicMetricsCollector{}, &BasicMetricsCollector{}
	m := MultiObserver{a, b}

	m.OnBuild(3, 4, time.Millisecond, nil)
	m.OnScan(core.ScanUpdate, time.Millisecond)
	m.OnOpen(72, time.Millisecond, errors.New("boom"))

	for _, c := range []*BasicMetricsCollector{a, b} {
		s := c.GetStats()
		assert.Equal(t, int64(1), s.BuildCount)
		assert.Equal(t, int64(1), s.UpdateTraversals)
		assert.Equal(t, int64(1), s.OpenErrors)
		assert.Equal(t, int64(0), s.OpenBytes)
		assert.Equal(t, time.Millisecond.Nanoseconds(), s.BuildAvgNanos)
	}
}

package fastcsr

import (
	"bytes"
	"context"
	"encoding/binary"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/csrgo/blobstore"
	"github.com/hupe1980/csrgo/core"
	"github.com/hupe1980/csrgo/csr"
	"github.com/hupe1980/csrgo/internal/mmap"
	"github.com/hupe1980/csrgo/persistence"
)

func randomGraph(t *testing.T, numV, numE int, seed uint64) *csr.CSR {
	t.Helper()
	rng := rand.New(rand.NewPCG(seed, seed+1))
	el := make(core.EdgeList, numE)
	for i := range el {
		el[i] = core.Edge{Src: rng.Uint64N(uint64(numV)), Dst: rng.Uint64N(uint64(numV))}
	}
	g, err := csr.Build(numV, el)
	require.NoError(t, err)
	return g
}

func saveGraph(t *testing.T, g *csr.CSR) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.csr")
	require.NoError(t, g.Save(path))
	return path
}

func TestOpen_RoundTrip(t *testing.T) {
	src := randomGraph(t, 500, 4000, 1)
	path := saveGraph(t, src)

	g, err := Open(path)
	require.NoError(t, err)
	defer g.Close()

	require.Equal(t, src.NumVertices(), g.NumVertices())
	require.Equal(t, src.NumEdges(), g.NumEdges())
	assert.Equal(t, src.ImageSize(), g.ImageSize())
	assert.True(t, g.ZeroCopy())

	for v := range core.VertexID(src.NumVertices()) {
		require.Equal(t, src.Neighbors(v), g.Neighbors(v), "vertex %d", v)
		assert.Equal(t, src.Offsets()[v], g.Offset(v))
		assert.Equal(t, src.Degree(v), g.Degree(v))
	}
	assert.Equal(t, src.Offsets(), g.Offsets())
	assert.Equal(t, src.NeighborArray(), g.NeighborArray())
	require.NoError(t, g.Verify())
}

func TestOpen_LastVertexRange(t *testing.T) {
	el := core.EdgeList{{Src: 0, Dst: 1}, {Src: 2, Dst: 0}, {Src: 2, Dst: 1}}
	src, err := csr.Build(3, el)
	require.NoError(t, err)

	g, err := Open(saveGraph(t, src))
	require.NoError(t, err)
	defer g.Close()

	start, end := g.OffsetRange(2)
	assert.Equal(t, uint64(1), start)
	assert.Equal(t, uint64(3), end)
	assert.ElementsMatch(t, []core.VertexID{0, 1}, g.Neighbors(2))
	assert.Empty(t, g.Neighbors(1))
}

func TestOpen_Empty(t *testing.T) {
	src, err := csr.Build(0, nil)
	require.NoError(t, err)

	g, err := Open(saveGraph(t, src))
	require.NoError(t, err)
	defer g.Close()

	assert.Zero(t, g.NumVertices())
	assert.Zero(t, g.NumEdges())
	require.NoError(t, g.Verify())

	calls := 0
	g.NeighborScan(func(core.VertexID, []core.VertexID) { calls++ })
	assert.Zero(t, calls)
}

func TestOpen_Errors(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, b []byte) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, b, 0o644))
		return path
	}

	src := randomGraph(t, 10, 30, 2)
	var img bytes.Buffer
	_, err := src.WriteTo(&img)
	require.NoError(t, err)

	tests := []struct {
		name string
		path string
		want error
	}{
		{"missing", filepath.Join(dir, "missing.csr"), os.ErrNotExist},
		{"empty", write("empty.csr", nil), persistence.ErrTruncated},
		{"short header", write("short.csr", make([]byte, 15)), persistence.ErrTruncated},
		{"truncated body", write("cut.csr", img.Bytes()[:img.Len()-8]), persistence.ErrTruncated},
		{"trailing bytes", write("long.csr", append(bytes.Clone(img.Bytes()), 1)), persistence.ErrCorrupt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Open(tt.path)
			require.ErrorIs(t, err, tt.want)
			assert.Nil(t, g)
		})
	}
}

func TestVerify_DetectsCorruption(t *testing.T) {
	src := randomGraph(t, 10, 30, 3)
	var img bytes.Buffer
	_, err := src.WriteTo(&img)
	require.NoError(t, err)

	b := img.Bytes()
	last := len(b) - persistence.WordSize
	binary.LittleEndian.PutUint64(b[last:], 10) // neighbor id == V

	path := filepath.Join(t.TempDir(), "bad.csr")
	require.NoError(t, os.WriteFile(path, b, 0o644))

	g, err := Open(path)
	require.NoError(t, err, "open does not validate ids")
	defer g.Close()

	assert.ErrorIs(t, g.Verify(), persistence.ErrCorrupt)
}

func TestClose(t *testing.T) {
	g, err := Open(saveGraph(t, randomGraph(t, 10, 20, 4)))
	require.NoError(t, err)

	require.NoError(t, g.Advise(mmap.AccessSequential))
	require.NoError(t, g.Close())
	require.NoError(t, g.Close())
	assert.ErrorIs(t, g.Advise(mmap.AccessRandom), mmap.ErrClosed)
}

func TestOpen_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	g, err := Open(saveGraph(t, randomGraph(t, 10, 20, 5)), WithLogger(logger))
	require.NoError(t, err)
	defer g.Close()

	assert.Contains(t, buf.String(), "fastcsr opened")
	assert.Contains(t, buf.String(), "edges=20")
}

type opaqueBlob struct {
	blobstore.Blob
}

func TestFromBlob(t *testing.T) {
	ctx := context.Background()
	src := randomGraph(t, 100, 700, 6)

	var img bytes.Buffer
	_, err := src.WriteTo(&img)
	require.NoError(t, err)

	stores := map[string]blobstore.BlobStore{
		"local":  blobstore.NewLocalStore(t.TempDir()),
		"memory": blobstore.NewMemoryStore(),
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Put(ctx, "g.csr", img.Bytes()))
			b, err := store.Open(ctx, "g.csr")
			require.NoError(t, err)

			g, err := FromBlob(b)
			require.NoError(t, err)
			defer g.Close()

			assert.Equal(t, src.NumEdges(), g.NumEdges())
			for v := range core.VertexID(src.NumVertices()) {
				require.Equal(t, src.Neighbors(v), g.Neighbors(v))
			}
			assert.NoError(t, g.Advise(mmap.AccessWillNeed))
		})
	}

	t.Run("not mappable", func(t *testing.T) {
		store := blobstore.NewMemoryStore()
		require.NoError(t, store.Put(ctx, "g.csr", img.Bytes()))
		b, err := store.Open(ctx, "g.csr")
		require.NoError(t, err)

		_, err = FromBlob(opaqueBlob{b})
		assert.ErrorIs(t, err, ErrNotMappable)
	})

	t.Run("truncated", func(t *testing.T) {
		store := blobstore.NewMemoryStore()
		require.NoError(t, store.Put(ctx, "g.csr", img.Bytes()[:20]))
		b, err := store.Open(ctx, "g.csr")
		require.NoError(t, err)

		_, err = FromBlob(b)
		assert.ErrorIs(t, err, persistence.ErrTruncated)
	})
}

package catalog

import (
	"bytes"
	"context"
	"io"
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

func stores(t *testing.T) map[string]blobstore.BlobStore {
	return map[string]blobstore.BlobStore{
		"memory": blobstore.NewMemoryStore(),
		"local":  blobstore.NewLocalStore(t.TempDir()),
	}
}

func TestPublishFetch(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			cat := New(store)
			g := randomGraph(t, 300, 2000, 7)

			version, err := cat.Publish(ctx, "social/friends", g)
			require.NoError(t, err)
			assert.NotEmpty(t, version)

			current, err := cat.Resolve(ctx, "social/friends")
			require.NoError(t, err)
			assert.Equal(t, version, current)

			dir := t.TempDir()
			f, err := cat.Open(ctx, "social/friends", dir)
			require.NoError(t, err)
			defer f.Close()

			assert.Equal(t, LocalPath(dir, "social/friends", version), filepath.Join(dir, "social", "friends", version+".csr"))
			assert.Equal(t, g.NumVertices(), f.NumVertices())
			assert.Equal(t, g.NumEdges(), f.NumEdges())
			assert.Equal(t, g.Offsets(), f.Offsets())
			assert.Equal(t, g.NeighborArray(), f.NeighborArray())
		})
	}
}

func TestFetch_UsesLocalCopy(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	cat := New(store)

	version, err := cat.Publish(ctx, "g", randomGraph(t, 50, 200, 1))
	require.NoError(t, err)

	dir := t.TempDir()
	p1, err := cat.Fetch(ctx, "g", dir)
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, imageName("g", version)))

	p2, err := cat.Fetch(ctx, "g", dir)
	require.NoError(t, err)
	assert.Equal(t, p1, p2)
}

func TestVersionsAndPrune(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	cat := New(store)

	var published []string
	for i := range 4 {
		v, err := cat.Publish(ctx, "g", randomGraph(t, 20, 40, uint64(i)))
		require.NoError(t, err)
		published = append(published, v)
	}
	// Images of other graphs under the same prefix are not versions of g.
	_, err := cat.Publish(ctx, "g/sub", randomGraph(t, 5, 5, 9))
	require.NoError(t, err)

	versions, err := cat.Versions(ctx, "g")
	require.NoError(t, err)
	assert.Equal(t, published, versions)

	deleted, err := cat.Prune(ctx, "g", 1)
	require.NoError(t, err)
	assert.Equal(t, published[:3], deleted)

	versions, err = cat.Versions(ctx, "g")
	require.NoError(t, err)
	assert.Equal(t, published[3:], versions)

	current, err := cat.Resolve(ctx, "g")
	require.NoError(t, err)
	assert.Equal(t, published[3], current)
}

func TestPrune_KeepsCurrent(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	cat := New(store)

	first, err := cat.Publish(ctx, "g", randomGraph(t, 10, 10, 1))
	require.NoError(t, err)
	second, err := cat.Publish(ctx, "g", randomGraph(t, 10, 10, 2))
	require.NoError(t, err)

	// Roll CURRENT back to the first version.
	require.NoError(t, store.Put(ctx, currentName("g"), []byte(first)))

	deleted, err := cat.Prune(ctx, "g", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{second}, deleted)

	versions, err := cat.Versions(ctx, "g")
	require.NoError(t, err)
	assert.Equal(t, []string{first}, versions)
}

func TestResolve_NoCurrentVersion(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	cat := New(store)

	_, err := cat.Resolve(ctx, "missing")
	assert.ErrorIs(t, err, ErrNoCurrentVersion)

	require.NoError(t, store.Put(ctx, currentName("blank"), []byte("\n")))
	_, err = cat.Resolve(ctx, "blank")
	assert.ErrorIs(t, err, ErrNoCurrentVersion)

	_, err = cat.Fetch(ctx, "missing", t.TempDir())
	assert.ErrorIs(t, err, ErrNoCurrentVersion)
}

func TestInvalidNames(t *testing.T) {
	cat := New(blobstore.NewMemoryStore())
	ctx := context.Background()
	g := randomGraph(t, 2, 1, 1)

	for _, name := range []string{"", "/abs", "a/../b", "..", "../up", "a//b", "a/", "CURRENT", "a/CURRENT"} {
		t.Run(name, func(t *testing.T) {
			_, err := cat.Publish(ctx, name, g)
			assert.ErrorIs(t, err, ErrInvalidName)
			_, err = cat.Resolve(ctx, name)
			assert.ErrorIs(t, err, ErrInvalidName)
		})
	}
}

func TestCompression(t *testing.T) {
	for _, c := range []persistence.Compression{persistence.CompressionNone, persistence.CompressionLZ4, persistence.CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			ctx := context.Background()
			store := blobstore.NewMemoryStore()
			cat := New(store, WithCompression(c))
			g := randomGraph(t, 100, 500, 3)

			version, err := cat.Publish(ctx, "g", g)
			require.NoError(t, err)

			b, err := store.Open(ctx, imageName("g", version))
			require.NoError(t, err)
			h, err := persistence.ReadEnvelopeHeader(io.NewSectionReader(blobstore.ReaderAt(ctx, b), 0, b.Size()))
			require.NoError(t, err)
			assert.Equal(t, c, h.Compression)
			assert.Equal(t, uint64(g.ImageSize()), h.RawSize)

			f, err := cat.Open(ctx, "g", t.TempDir())
			require.NoError(t, err)
			defer f.Close()
			assert.Equal(t, g.NeighborArray(), f.NeighborArray())
		})
	}
}

func TestFetch_RejectsBadImages(t *testing.T) {
	invalid := func() []byte {
		var raw bytes.Buffer
		// Vertex 1 points at vertex 7 in a two-vertex graph.
		_, err := persistence.WriteImage(&raw, []uint64{0, 1}, []uint64{1, 7})
		require.NoError(t, err)
		var packed bytes.Buffer
		_, err = persistence.Pack(&packed, raw.Bytes(), persistence.CompressionZSTD)
		require.NoError(t, err)
		return packed.Bytes()
	}

	tests := []struct {
		name    string
		blob    []byte
		wantErr error
	}{
		{name: "garbage", blob: []byte("not an envelope at all, sorry"), wantErr: persistence.ErrCorruptEnvelope},
		{name: "dangling neighbor", blob: invalid(), wantErr: persistence.ErrCorrupt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := blobstore.NewMemoryStore()
			require.NoError(t, store.Put(ctx, imageName("g", "v1"), tt.blob))
			require.NoError(t, store.Put(ctx, currentName("g"), []byte("v1")))

			dir := t.TempDir()
			_, err := New(store).Fetch(ctx, "g", dir)
			assert.ErrorIs(t, err, tt.wantErr)

			entries, err := os.ReadDir(filepath.Join(dir, "g"))
			require.NoError(t, err)
			assert.Empty(t, entries, "failed fetch must not leave files behind")
		})
	}
}

func TestFetch_MissingImage(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, currentName("g"), []byte("gone")))

	_, err := New(store).Fetch(ctx, "g", t.TempDir())
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx := context.Background()
	cat := New(blobstore.NewMemoryStore(), WithLogger(logger))
	_, err := cat.Publish(ctx, "g", randomGraph(t, 10, 20, 1))
	require.NoError(t, err)

	dir := t.TempDir()
	_, err = cat.Fetch(ctx, "g", dir)
	require.NoError(t, err)
	_, err = cat.Fetch(ctx, "g", dir)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "catalog published")
	assert.Contains(t, out, "catalog fetched")
	assert.Contains(t, out, "catalog cache hit")
	assert.Contains(t, out, `"compression":"zstd"`)
}

package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/csrgo/codec"
	"github.com/hupe1980/csrgo/core"
	"github.com/hupe1980/csrgo/persistence"
)

// run executes one command line against a fresh CLI and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	c := New(&out, &logs, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&logs)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err, "csrgo %s", strings.Join(args, " "))
	return out
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "csrgo.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
		assert.Nil(t, cfg.ResourceController())
	})

	t.Run("missing file", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("overrides", func(t *testing.T) {
		path := writeConfig(t, `
[build]
parallelism = 3
memory_limit_bytes = 1048576

[pagerank]
iterations = 7

[store]
kind = "redis"
addr = "localhost:6379"
`)
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 3, cfg.Build.Parallelism)
		assert.Equal(t, 7, cfg.PageRank.Iterations)
		assert.Equal(t, DefaultConfig().PageRank.Damping, cfg.PageRank.Damping)
		assert.Equal(t, "redis", cfg.Store.Kind)
		assert.Equal(t, "csrgo-cache", cfg.Store.CacheDir)
		assert.NotNil(t, cfg.ResourceController())
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "[build]\nthreads = 4\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "build.threads")
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "[build\n"))
		assert.Error(t, err)
	})
}

func TestGraphCommands(t *testing.T) {
	dir := t.TempDir()
	el := filepath.Join(dir, "graph.el")
	img := filepath.Join(dir, "graph.csr")

	out := mustRun(t, "gen", el, "-n", "200", "-d", "8", "--seed", "7")
	assert.Contains(t, out, "Wrote "+el)

	out = mustRun(t, "build", el, "-p", "2")
	assert.Contains(t, out, "Wrote "+img)
	require.FileExists(t, img)

	t.Run("info json", func(t *testing.T) {
		out := mustRun(t, "info", img, "--json", "--verify")
		var info ImageInfo
		require.NoError(t, codec.Default.Unmarshal([]byte(out), &info))
		assert.Equal(t, 200, info.Vertices)
		assert.True(t, info.Verified)
		assert.Less(t, info.MaxDegree, 8)
		assert.Equal(t, int64(16+8*200+8*info.Edges), info.Bytes)
	})

	t.Run("info text", func(t *testing.T) {
		out := mustRun(t, "info", img, "--verify")
		assert.Contains(t, out, "vertices")
		assert.Contains(t, out, "Structure verified")
	})

	t.Run("bfs", func(t *testing.T) {
		out := mustRun(t, "bfs", img, "--start", "0", "--levels")
		assert.Contains(t, out, "level 0: 1 vertices")

		_, err := run(t, "bfs", img, "--start", "200")
		assert.ErrorContains(t, err, "out of range")
	})

	t.Run("pagerank", func(t *testing.T) {
		for _, mode := range [][]string{nil, {"--locked"}, {"--fast"}} {
			args := append([]string{"pagerank", img, "-k", "5", "-i", "10"}, mode...)
			out := mustRun(t, args...)
			lines := strings.Split(strings.TrimSpace(out), "\n")
			require.Len(t, lines, 5, "mode %v", mode)
			assert.Len(t, strings.Fields(lines[0]), 2)
		}

		_, err := run(t, "pagerank", img, "--locked", "--fast")
		assert.Error(t, err)
		_, err = run(t, "pagerank", img, "--damping", "1.5")
		assert.ErrorContains(t, err, "damping")
	})

	t.Run("convert", func(t *testing.T) {
		packed := filepath.Join(dir, "graph.csrz")
		mustRun(t, "convert", img, packed, "--compression", "lz4")
		back := filepath.Join(dir, "back.csr")
		mustRun(t, "convert", packed, back)

		a, err := os.ReadFile(img)
		require.NoError(t, err)
		b, err := os.ReadFile(back)
		require.NoError(t, err)
		assert.Equal(t, len(a), len(b))

		_, err = run(t, "convert", img, packed, "--compression", "brotli")
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := run(t, "info", filepath.Join(dir, "missing.csr"))
		assert.Error(t, err)
	})
}

func TestCatalogCommands(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, fmt.Sprintf(`
[store]
kind = "local"
root = %q
cache_dir = %q
`, filepath.Join(dir, "store"), filepath.Join(dir, "cache")))

	el := filepath.Join(dir, "g.el")
	mustRun(t, "gen", el, "-n", "50", "-d", "4")

	_, err := run(t, "--config", cfg, "fetch", "--graph", "web")
	assert.Error(t, err, "nothing published yet")

	out := mustRun(t, "--config", cfg, "publish", el, "--graph", "web")
	first := strings.TrimPrefix(strings.TrimSpace(lastLine(out)), "✓ web@")
	require.NotEmpty(t, first)

	time.Sleep(2 * time.Millisecond)
	out = mustRun(t, "--config", cfg, "publish", el, "--graph", "web", "--keep", "1")
	assert.Contains(t, out, "pruned "+first)

	out = mustRun(t, "--config", cfg, "versions", "--graph", "web")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "* "))
	current := strings.TrimPrefix(lines[0], "* ")

	out = mustRun(t, "--config", cfg, "fetch", "--graph", "web")
	path := strings.TrimSpace(out)
	assert.Equal(t, filepath.Join(dir, "cache", "web", current+".csr"), path)
	require.FileExists(t, path)

	out = mustRun(t, "--config", cfg, "info", path, "--json")
	var info ImageInfo
	require.NoError(t, codec.Default.Unmarshal([]byte(out), &info))
	assert.Equal(t, 50, info.Vertices)

	_, err = run(t, "--config", cfg, "publish", el, "--graph", "../escape")
	assert.Error(t, err)
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return lines[len(lines)-1]
}

func TestOpenStore_UnknownKind(t *testing.T) {
	_, err := openStore(context.Background(), StoreConfig{Kind: "ftp"})
	assert.ErrorContains(t, err, "unknown kind")

	_, err = openStore(context.Background(), StoreConfig{Kind: "s3"})
	assert.ErrorContains(t, err, "bucket")

	_, err = openStore(context.Background(), StoreConfig{Kind: "minio", Bucket: "b"})
	assert.ErrorContains(t, err, "endpoint")
}

func TestServeArgs(t *testing.T) {
	_, err := run(t, "serve")
	assert.ErrorContains(t, err, "either")
	_, err = run(t, "serve", "x.csr", "--graph", "web")
	assert.ErrorContains(t, err, "either")
}

func TestServe_RejectsCorruptImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.csr")
	var buf bytes.Buffer
	// Vertex 1 points at 99 in a 3-vertex graph.
	_, err := persistence.WriteImage(&buf, []uint64{0, 1, 2}, []uint64{1, 99, 0})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	out, err := run(t, "serve", path, "--addr", "127.0.0.1:0")
	assert.ErrorIs(t, err, persistence.ErrCorrupt)
	assert.Contains(t, out, "Verification failed")
}

func TestListen_Shutdown(t *testing.T) {
	var out, logs bytes.Buffer
	c := New(&out, &logs, LogInfo)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	errc := make(chan error, 1)
	go func() {
		errc <- c.listen(ctx, "127.0.0.1:0", nil)
	}()

	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("listen did not return after cancel")
	}
	assert.Contains(t, logs.String(), "listening")
}

func TestReplaceExt(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"graph.el", "graph.csr"},
		{"graph.el.gz", "graph.csr"},
		{"data/web.tsv.zst", "data/web.csr"},
		{"noext", "noext.csr"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, replaceExt(tt.in, ".csr"), tt.in)
	}
}

func TestTopRanks(t *testing.T) {
	rank := []float64{0.1, 0.4, 0.1, 0.4}
	got := topRanks(rank, 3)
	require.Len(t, got, 3)
	assert.Equal(t, []core.VertexID{1, 3, 0}, []core.VertexID{got[0].v, got[1].v, got[2].v})

	assert.Len(t, topRanks(rank, 10), 4)
	assert.Empty(t, topRanks(rank, -1))
}

package benchmark_test

import (
	"math/rand/v2"
	"path/filepath"
	"testing"

	"github.com/hupe1980/csrgo/core"
	"github.com/hupe1980/csrgo/csr"
	"github.com/hupe1980/csrgo/edgelist"
)

// graphSizes are the vertex counts every benchmark runs at. The average
// out-degree is fixed at avgDegree.
var graphSizes = []struct {
	name     string
	vertices int
}{
	{"10K", 10_000},
	{"100K", 100_000},
}

const avgDegree = 16

func randomEdges(n int) core.EdgeList {
	return edgelist.Random(n, 2*avgDegree, rand.New(rand.NewPCG(42, 1024)))
}

func buildGraph(b *testing.B, n int) *csr.CSR {
	b.Helper()
	g, err := csr.Build(n, randomEdges(n))
	if err != nil {
		b.Fatal(err)
	}
	return g
}

func saveGraph(b *testing.B, g *csr.CSR) string {
	b.Helper()
	path := filepath.Join(b.TempDir(), "bench.csr")
	if err := g.Save(path); err != nil {
		b.Fatal(err)
	}
	return path
}

package csrgo_test

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"

	"github.com/hupe1980/csrgo"
	"github.com/hupe1980/csrgo/algo"
	"github.com/hupe1980/csrgo/core"
	"github.com/hupe1980/csrgo/internal/pool"
)

// Example_build builds a small graph and reads a vertex's neighbors.
func Example_build() {
	edges := core.EdgeList{{Src: 0, Dst: 1}, {Src: 0, Dst: 2}, {Src: 1, Dst: 2}, {Src: 2, Dst: 0}}

	g, err := csrgo.Build(edges, csrgo.WithLogger(csrgo.NoopLogger()))
	if err != nil {
		log.Fatal(err)
	}

	// Neighbor order within a vertex is not fixed.
	n := slices.Clone(g.Neighbors(0))
	slices.Sort(n)
	fmt.Println(g.NumVertices(), g.NumEdges(), n)
	// Output: 3 4 [1 2]
}

// Example_openFast saves an image and traverses the memory-mapped view.
func Example_openFast() {
	dir, err := os.MkdirTemp("", "csrgo-example-")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	edges := core.EdgeList{{Src: 0, Dst: 1}, {Src: 1, Dst: 2}, {Src: 2, Dst: 3}}
	g, err := csrgo.Build(edges, csrgo.WithLogger(csrgo.NoopLogger()))
	if err != nil {
		log.Fatal(err)
	}

	path := filepath.Join(dir, "chain.csr")
	if err := csrgo.Save(g, path, csrgo.WithLogger(csrgo.NoopLogger())); err != nil {
		log.Fatal(err)
	}

	f, err := csrgo.OpenFast(path, csrgo.WithLogger(csrgo.NoopLogger()))
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	for i, level := range algo.LevelBFS(f, 0, pool.Default()) {
		fmt.Println(i, level)
	}
	// Output:
	// 0 [0]
	// 1 [1]
	// 2 [2]
	// 3 [3]
}

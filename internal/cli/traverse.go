package cli

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/hupe1980/csrgo"
	"github.com/hupe1980/csrgo/algo"
	"github.com/hupe1980/csrgo/core"
	"github.com/hupe1980/csrgo/csr"
	"github.com/hupe1980/csrgo/internal/mmap"
	"github.com/hupe1980/csrgo/internal/pool"
)

// bfsCommand creates the "bfs" command.
func (c *CLI) bfsCommand() *cobra.Command {
	var (
		start      uint64
		showLevels bool
	)
	cmd := &cobra.Command{
		Use:   "bfs <image>",
		Short: "Run a level-synchronous BFS over a mapped image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := csrgo.OpenFast(args[0], c.options(cmd)...)
			if err != nil {
				return err
			}
			defer f.Close()
			_ = f.Advise(mmap.AccessRandom)

			if start >= uint64(f.NumVertices()) {
				return fmt.Errorf("start vertex %d out of range [0, %d)", start, f.NumVertices())
			}

			p := newProgress(c.Logger)
			levels := algo.LevelBFS(f, start, pool.Sized(c.cfg.Build.Parallelism))
			reached := 0
			for _, l := range levels {
				reached += len(l)
			}
			p.done(fmt.Sprintf("BFS from %d", start))

			c.printSuccess("Reached %d of %d vertices in %d levels", reached, f.NumVertices(), len(levels))
			if showLevels {
				for i, l := range levels {
					c.printDetail("level %d: %d vertices", i, len(l))
				}
			}
			return nil
		},
	}
	cmd.Flags().Uint64VarP(&start, "start", "s", 0, "start vertex")
	cmd.Flags().BoolVar(&showLevels, "levels", false, "print the size of every level")
	return cmd
}

// pagerankCommand creates the "pagerank" command.
func (c *CLI) pagerankCommand() *cobra.Command {
	var (
		iterations int
		damping    float64
		top        int
		locked     bool
		fast       bool
	)
	cmd := &cobra.Command{
		Use:   "pagerank <graph>",
		Short: "Compute PageRank",
		Long: `Compute PageRank over an image, packed image or edge list.

By default ranks are pulled in parallel over the transposed graph. --locked
updates ranks in place under per-vertex locks. --fast writes the transpose
to a temporary image and runs over the memory-mapped view.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if locked && fast {
				return fmt.Errorf("--locked and --fast are mutually exclusive")
			}
			if cmd.Flags().Changed("iterations") {
				c.cfg.PageRank.Iterations = iterations
			}
			if cmd.Flags().Changed("damping") {
				c.cfg.PageRank.Damping = damping
			}
			iters, d := c.cfg.PageRank.Iterations, c.cfg.PageRank.Damping
			if d < 0 || d > 1 {
				return fmt.Errorf("damping %v outside [0, 1]", d)
			}

			g, err := csrgo.Load(args[0], c.options(cmd)...)
			if err != nil {
				return err
			}

			p := newProgress(c.Logger)
			var rank []float64
			switch {
			case locked:
				rank, err = algo.PageRankLocked(g, iters, d, c.csrOptions()...)
			case fast:
				rank, err = c.fastPageRank(g, iters, d)
			default:
				rank, err = algo.PageRank(g, iters, d, c.csrOptions()...)
			}
			if err != nil {
				return err
			}
			p.done(fmt.Sprintf("PageRank, %d iterations", iters))

			for _, r := range topRanks(rank, top) {
				fmt.Fprintf(c.out, "%d\t%.6g\n", r.v, r.rank)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&iterations, "iterations", "i", 20, "number of rounds")
	cmd.Flags().Float64Var(&damping, "damping", algo.DefaultDamping, "damping factor")
	cmd.Flags().IntVarP(&top, "top", "k", 10, "number of vertices to print")
	cmd.Flags().BoolVar(&locked, "locked", false, "update ranks in place under per-vertex locks")
	cmd.Flags().BoolVar(&fast, "fast", false, "run over a memory-mapped transposed image")
	return cmd
}

func (c *CLI) csrOptions() []csr.Option {
	opts := []csr.Option{csr.WithParallelism(c.cfg.Build.Parallelism), csr.WithLogger(c.slog())}
	if c.rc != nil {
		opts = append(opts, csr.WithResourceController(c.rc))
	}
	return opts
}

func (c *CLI) fastPageRank(g *csr.CSR, iters int, damping float64) ([]float64, error) {
	in, err := g.Transpose(c.csrOptions()...)
	if err != nil {
		return nil, err
	}
	dir, err := os.MkdirTemp("", appName+"-pagerank-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "in.csr")
	if err := in.Save(path); err != nil {
		return nil, err
	}
	f, err := csrgo.OpenFast(path, csrgo.WithParallelism(c.cfg.Build.Parallelism))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return algo.FastPageRank(f, iters, damping), nil
}

type ranked struct {
	v    core.VertexID
	rank float64
}

// topRanks returns the k highest ranks, ties broken by vertex id.
func topRanks(rank []float64, k int) []ranked {
	all := make([]ranked, len(rank))
	for v, r := range rank {
		all[v] = ranked{v: core.VertexID(v), rank: r}
	}
	slices.SortFunc(all, func(a, b ranked) int {
		if c := cmp.Compare(b.rank, a.rank); c != 0 {
			return c
		}
		return cmp.Compare(a.v, b.v)
	})
	return all[:min(max(k, 0), len(all))]
}

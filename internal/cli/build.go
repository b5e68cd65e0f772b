package cli

import (
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/csrgo"
	"github.com/hupe1980/csrgo/edgelist"
	"github.com/hupe1980/csrgo/persistence"
)

// genCommand creates the "gen" command.
func (c *CLI) genCommand() *cobra.Command {
	var (
		vertices  int
		maxDegree int
		seed      uint64
	)
	cmd := &cobra.Command{
		Use:   "gen <output>",
		Short: "Write a random edge list",
		Long:  `Write a random edge list where every vertex gets between 0 and max-degree-1 out-edges. The output is compressed when its name ends in .gz, .zst or .lz4.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if vertices <= 0 || maxDegree <= 0 {
				return fmt.Errorf("--vertices and --max-degree must be positive")
			}
			p := newProgress(c.Logger)
			el := edgelist.Random(vertices, maxDegree, rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
			if err := edgelist.WriteFile(args[0], el); err != nil {
				return err
			}
			p.done(fmt.Sprintf("Generated %d edges", len(el)))
			c.printSuccess("Wrote %s", args[0])
			return nil
		},
	}
	cmd.Flags().IntVarP(&vertices, "vertices", "n", 1000, "number of vertices")
	cmd.Flags().IntVarP(&maxDegree, "max-degree", "d", 16, "exclusive upper bound of the out-degree")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")
	return cmd
}

// buildCommand creates the "build" command.
func (c *CLI) buildCommand() *cobra.Command {
	var (
		output      string
		parallelism int
	)
	cmd := &cobra.Command{
		Use:   "build <edgelist>",
		Short: "Build a CSR image from an edge list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("parallelism") {
				c.cfg.Build.Parallelism = parallelism
			}
			if output == "" {
				output = replaceExt(args[0], ".csr")
			}
			opts := c.options(cmd)

			p := newProgress(c.Logger)
			g, err := csrgo.BuildFromFile(args[0], opts...)
			if err != nil {
				return err
			}
			if err := csrgo.Save(g, output, opts...); err != nil {
				return err
			}
			p.done(fmt.Sprintf("Built %d vertices, %d edges", g.NumVertices(), g.NumEdges()))
			c.printSuccess("Wrote %s", output)
			c.printDetail("%d bytes", g.ImageSize())
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "image path (default: input with .csr extension)")
	cmd.Flags().IntVarP(&parallelism, "parallelism", "p", 0, "worker count (0 = GOMAXPROCS)")
	return cmd
}

// convertCommand creates the "convert" command.
func (c *CLI) convertCommand() *cobra.Command {
	var compression string
	cmd := &cobra.Command{
		Use:   "convert <src> <dst>",
		Short: "Convert between edge lists, images (.csr) and packed images (.csrz)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := persistence.ParseCompression(compression)
			if err != nil {
				return err
			}
			opts := append(c.options(cmd), csrgo.WithCompression(codec))

			p := newProgress(c.Logger)
			if err := csrgo.Convert(args[0], args[1], opts...); err != nil {
				return err
			}
			p.done(fmt.Sprintf("Converted %s to %s", csrgo.DetectFormat(args[0]), csrgo.DetectFormat(args[1])))
			c.printSuccess("Wrote %s", args[1])
			return nil
		},
	}
	cmd.Flags().StringVar(&compression, "compression", "zstd", "codec for .csrz output (none, lz4, zstd)")
	return cmd
}

// replaceExt swaps the extension of path, dropping a compression suffix first.
func replaceExt(path, ext string) string {
	for _, suffix := range []string{".gz", ".zst", ".lz4"} {
		path = strings.TrimSuffix(path, suffix)
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/csrgo"
	"github.com/hupe1980/csrgo/codec"
	"github.com/hupe1980/csrgo/core"
	"github.com/hupe1980/csrgo/fastcsr"
	"github.com/hupe1980/csrgo/internal/mmap"
)

// ImageInfo summarizes an image for "info --json".
type ImageInfo struct {
	Path      string  `json:"path"`
	Vertices  int     `json:"vertices"`
	Edges     int     `json:"edges"`
	Bytes     int64   `json:"bytes"`
	ZeroCopy  bool    `json:"zero_copy"`
	MaxDegree int     `json:"max_degree"`
	AvgDegree float64 `json:"avg_degree"`
	Sinks     int     `json:"sinks"`
	Verified  bool    `json:"verified"`
}

func describe(path string, f *fastcsr.FastCSR) ImageInfo {
	info := ImageInfo{
		Path:     path,
		Vertices: f.NumVertices(),
		Edges:    f.NumEdges(),
		Bytes:    f.ImageSize(),
		ZeroCopy: f.ZeroCopy(),
	}
	for v := range f.NumVertices() {
		d := f.Degree(core.VertexID(v))
		info.MaxDegree = max(info.MaxDegree, d)
		if d == 0 {
			info.Sinks++
		}
	}
	if info.Vertices > 0 {
		info.AvgDegree = float64(info.Edges) / float64(info.Vertices)
	}
	return info
}

// infoCommand creates the "info" command.
func (c *CLI) infoCommand() *cobra.Command {
	var (
		verify  bool
		asJSON  bool
		encoder string
	)
	cmd := &cobra.Command{
		Use:   "info <image>",
		Short: "Print image statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := csrgo.OpenFast(args[0], c.options(cmd)...)
			if err != nil {
				return err
			}
			defer f.Close()
			_ = f.Advise(mmap.AccessSequential)

			info := describe(args[0], f)
			if verify {
				if err := f.Verify(); err != nil {
					c.printError("Verification failed")
					return err
				}
				info.Verified = true
			}

			if asJSON {
				enc, err := codec.ByName(encoder)
				if err != nil {
					return err
				}
				b, err := enc.Marshal(info)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(c.out, string(b))
				return err
			}

			fields := []field{
				{"vertices", formatCount(info.Vertices)},
				{"edges", formatCount(info.Edges)},
				{"bytes", fmt.Sprintf("%d", info.Bytes)},
				{"zero-copy", fmt.Sprintf("%t", info.ZeroCopy)},
				{"max degree", formatCount(info.MaxDegree)},
				{"avg degree", fmt.Sprintf("%.2f", info.AvgDegree)},
				{"sinks", formatCount(info.Sinks)},
			}
			fmt.Fprint(c.out, renderFields(args[0], fields))
			if verify {
				c.printSuccess("Structure verified")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&verify, "verify", false, "check offsets and neighbor ids (O(V+E))")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd.Flags().StringVar(&encoder, "codec", "go-json", "JSON codec (go-json, json)")
	return cmd
}

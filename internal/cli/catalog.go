package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/csrgo"
	"github.com/hupe1980/csrgo/catalog"
)

// publishCommand creates the "publish" command.
func (c *CLI) publishCommand() *cobra.Command {
	var (
		graph string
		keep  int
	)
	cmd := &cobra.Command{
		Use:   "publish <graph-file>",
		Short: "Publish an image or edge list as the current version of a graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := csrgo.Load(args[0], c.options(cmd)...)
			if err != nil {
				return err
			}
			cat, err := c.catalog(cmd.Context())
			if err != nil {
				return err
			}

			p := newProgress(c.Logger)
			version, err := cat.Publish(cmd.Context(), graph, g)
			if err != nil {
				return err
			}
			p.done(fmt.Sprintf("Published %s", graph))
			c.printSuccess("%s@%s", graph, version)

			if keep > 0 {
				deleted, err := cat.Prune(cmd.Context(), graph, keep)
				if err != nil {
					return err
				}
				for _, v := range deleted {
					c.printDetail("pruned %s", v)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&graph, "graph", "g", "", "graph name")
	cmd.Flags().IntVar(&keep, "keep", 0, "prune to this many versions after publishing (0 = keep all)")
	_ = cmd.MarkFlagRequired("graph")
	return cmd
}

// fetchCommand creates the "fetch" command.
func (c *CLI) fetchCommand() *cobra.Command {
	var (
		graph   string
		dir     string
		version string
	)
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download and verify the current image of a graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = c.cfg.Store.CacheDir
			}
			cat, err := c.catalog(cmd.Context())
			if err != nil {
				return err
			}

			p := newProgress(c.Logger)
			var path string
			if version != "" {
				path, err = cat.FetchVersion(cmd.Context(), graph, version, dir)
			} else {
				path, err = cat.Fetch(cmd.Context(), graph, dir)
			}
			if err != nil {
				return err
			}
			p.done(fmt.Sprintf("Fetched %s", graph))
			_, err = fmt.Fprintln(c.out, path)
			return err
		},
	}
	cmd.Flags().StringVarP(&graph, "graph", "g", "", "graph name")
	cmd.Flags().StringVar(&dir, "dir", "", "local image directory (default: store.cache_dir)")
	cmd.Flags().StringVar(&version, "version", "", "fetch this version instead of CURRENT")
	_ = cmd.MarkFlagRequired("graph")
	return cmd
}

// versionsCommand creates the "versions" command.
func (c *CLI) versionsCommand() *cobra.Command {
	var graph string
	cmd := &cobra.Command{
		Use:   "versions",
		Short: "List the published versions of a graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := c.catalog(cmd.Context())
			if err != nil {
				return err
			}
			versions, err := cat.Versions(cmd.Context(), graph)
			if err != nil {
				return err
			}
			current, err := cat.Resolve(cmd.Context(), graph)
			if err != nil && !errors.Is(err, catalog.ErrNoCurrentVersion) {
				return err
			}
			for _, v := range versions {
				marker := " "
				if v == current {
					marker = "*"
				}
				fmt.Fprintf(c.out, "%s %s\n", marker, v)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&graph, "graph", "g", "", "graph name")
	_ = cmd.MarkFlagRequired("graph")
	return cmd
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/hupe1980/csrgo"
	"github.com/hupe1980/csrgo/fastcsr"
	"github.com/hupe1980/csrgo/internal/httpapi"
	"github.com/hupe1980/csrgo/internal/mmap"
	"github.com/hupe1980/csrgo/internal/pool"
	"github.com/hupe1980/csrgo/observability"
)

// serveCommand creates the "serve" command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr   string
		graph  string
		dir    string
		verify bool
	)
	cmd := &cobra.Command{
		Use:   "serve [image]",
		Short: "Serve neighbor and BFS queries over HTTP",
		Long: `Serve a memory-mapped image over HTTP. Pass an image path, or --graph to
fetch the current version from the configured store first.

Endpoints:
  GET /v1/stats
  GET /v1/vertices/{id}/neighbors
  GET /v1/bfs/{id}
  GET /metrics`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				c.cfg.Serve.Addr = addr
			}
			if (len(args) == 1) == (graph != "") {
				return fmt.Errorf("pass either an image path or --graph")
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector())
			obs := observability.NewPrometheusObserver(reg)
			opts := append(c.options(cmd), csrgo.WithMetrics(obs))

			f, name, err := c.openServed(cmd.Context(), args, graph, dir, opts)
			if err != nil {
				return err
			}
			defer f.Close()

			// Catalog fetches are verified already. A corrupt local image
			// would panic a BFS worker and take the server down.
			if verify && graph == "" {
				p := newProgress(c.Logger)
				if err := f.Verify(); err != nil {
					c.printError("Verification failed")
					return err
				}
				p.done("Verified " + name)
			}
			_ = f.Advise(mmap.AccessRandom)

			srv := httpapi.New(f, name,
				httpapi.WithLogger(c.slog()),
				httpapi.WithGatherer(reg),
				httpapi.WithPool(pool.Sized(c.cfg.Build.Parallelism)),
			)
			return c.listen(cmd.Context(), c.cfg.Serve.Addr, srv.Handler())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVarP(&graph, "graph", "g", "", "serve the current version of this catalog graph")
	cmd.Flags().StringVar(&dir, "dir", "", "local image directory for --graph (default: store.cache_dir)")
	cmd.Flags().BoolVar(&verify, "verify", true, "check the image structure before serving (O(V+E))")
	return cmd
}

func (c *CLI) openServed(ctx context.Context, args []string, graph, dir string, opts []csrgo.Option) (*fastcsr.FastCSR, string, error) {
	if len(args) == 1 {
		f, err := csrgo.OpenFast(args[0], opts...)
		return f, args[0], err
	}
	if dir == "" {
		dir = c.cfg.Store.CacheDir
	}
	cat, err := c.catalog(ctx)
	if err != nil {
		return nil, "", err
	}
	path, err := cat.Fetch(ctx, graph, dir)
	if err != nil {
		return nil, "", err
	}
	f, err := csrgo.OpenFast(path, opts...)
	return f, graph, err
}

// listen serves h until ctx is cancelled, then drains for up to five seconds.
func (c *CLI) listen(ctx context.Context, addr string, h http.Handler) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	c.Logger.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

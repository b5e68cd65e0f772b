// Package cli implements the csrgo command-line interface.
//
// # Commands
//
//   - gen: write a random edge list
//   - build, convert: build images from edge lists and convert between formats
//   - info: print image statistics, optionally verifying the structure
//   - bfs, pagerank: run traversals over an image
//   - publish, fetch, versions: move images through a blob store catalog
//   - serve: expose an image over HTTP
//
// # Configuration
//
// --config names a TOML file (see Config). A missing file means defaults.
// Flags override values from the file.
package cli

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/hupe1980/csrgo"
	"github.com/hupe1980/csrgo/resource"
)

const appName = "csrgo"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// Version is reported by --version. Set via ldflags.
var Version = "dev"

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	out        io.Writer
	configPath string
	cfg        Config
	rc         *resource.Controller
}

// New creates a CLI that logs to logw and prints results to out.
func New(out, logw io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(logw, level),
		out:    out,
		cfg:    DefaultConfig(),
	}
}

// newLogger creates a logger with timestamp formatting.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// slog returns the terminal logger as a slog.Logger for library packages.
func (c *CLI) slog() *slog.Logger {
	return slog.New(c.Logger)
}

// logger returns the terminal logger in the façade's wrapper.
func (c *CLI) logger() *csrgo.Logger {
	return csrgo.NewLogger(c.Logger)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "csrgo builds and traverses Compressed-Sparse-Row graphs",
		Long:         `csrgo builds CSR graphs from edge lists in parallel, stores them as flat binary images and runs scans over memory-mapped images.`,
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.rc = cfg.ResourceController()
			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "TOML config file")

	root.AddCommand(c.genCommand())
	root.AddCommand(c.buildCommand())
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.infoCommand())
	root.AddCommand(c.bfsCommand())
	root.AddCommand(c.pagerankCommand())
	root.AddCommand(c.publishCommand())
	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.versionsCommand())
	root.AddCommand(c.serveCommand())

	return root
}

// options maps the loaded config onto façade options.
func (c *CLI) options(cmd *cobra.Command) []csrgo.Option {
	return []csrgo.Option{
		csrgo.WithContext(cmd.Context()),
		csrgo.WithLogger(c.logger()),
		csrgo.WithParallelism(c.cfg.Build.Parallelism),
		csrgo.WithResourceController(c.rc),
	}
}

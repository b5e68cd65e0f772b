package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/BurntSushi/toml"

	"github.com/hupe1980/csrgo/algo"
	"github.com/hupe1980/csrgo/resource"
)

// Config is the TOML configuration file.
//
//	[build]
//	parallelism = 8
//	memory_limit_bytes = 4294967296
//
//	[store]
//	kind = "s3"
//	bucket = "graphs"
//	ddb_table = "csrgo-commits"
type Config struct {
	Build    BuildConfig    `toml:"build"`
	PageRank PageRankConfig `toml:"pagerank"`
	Store    StoreConfig    `toml:"store"`
	IO       IOConfig       `toml:"io"`
	Serve    ServeConfig    `toml:"serve"`
}

type BuildConfig struct {
	Parallelism         int   `toml:"parallelism"`
	MemoryLimitBytes    int64 `toml:"memory_limit_bytes"`
	MaxConcurrentBuilds int64 `toml:"max_concurrent_builds"`
}

type PageRankConfig struct {
	Iterations int     `toml:"iterations"`
	Damping    float64 `toml:"damping"`
}

// StoreConfig selects the catalog backend. Kind is one of local, s3, minio
// or redis; the remaining fields apply to the kinds that use them.
type StoreConfig struct {
	Kind      string `toml:"kind"`
	Root      string `toml:"root"`
	Bucket    string `toml:"bucket"`
	Prefix    string `toml:"prefix"`
	Region    string `toml:"region"`
	Endpoint  string `toml:"endpoint"`
	DDBTable  string `toml:"ddb_table"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Secure    bool   `toml:"secure"`
	Addr      string `toml:"addr"`
	Password  string `toml:"password"`
	DB        int    `toml:"db"`
	CacheDir  string `toml:"cache_dir"`
}

type IOConfig struct {
	LimitBytesPerSec int64 `toml:"limit_bytes_per_sec"`
}

type ServeConfig struct {
	Addr string `toml:"addr"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		PageRank: PageRankConfig{Iterations: 20, Damping: algo.DefaultDamping},
		Store:    StoreConfig{Kind: "local", Root: "csrgo-store", CacheDir: "csrgo-cache"},
		Serve:    ServeConfig{Addr: ":8080"},
	}
}

// LoadConfig decodes path over DefaultConfig. An empty path or a missing
// file yields the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, nil
}

// ResourceController builds the limits from [build] and [io]. It returns
// nil when no limit is set.
func (c Config) ResourceController() *resource.Controller {
	rc := resource.Config{
		MemoryLimitBytes:    c.Build.MemoryLimitBytes,
		MaxConcurrentBuilds: c.Build.MaxConcurrentBuilds,
		IOLimitBytesPerSec:  c.IO.LimitBytesPerSec,
	}
	if rc == (resource.Config{}) {
		return nil
	}
	return resource.NewController(rc)
}

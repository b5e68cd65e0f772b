package cli

import (
	"context"
	"fmt"

	"github.com/hupe1980/csrgo/blobstore"
	"github.com/hupe1980/csrgo/blobstore/minio"
	"github.com/hupe1980/csrgo/blobstore/redis"
	"github.com/hupe1980/csrgo/blobstore/s3"
	"github.com/hupe1980/csrgo/catalog"
)

// openStore connects the backend named by cfg.Kind.
func openStore(ctx context.Context, cfg StoreConfig) (blobstore.BlobStore, error) {
	switch cfg.Kind {
	case "", "local":
		return blobstore.NewLocalStore(cfg.Root), nil
	case "s3":
		if cfg.Bucket == "" {
			return nil, fmt.Errorf("store: s3 requires bucket")
		}
		opts := []s3.Option{s3.WithPrefix(cfg.Prefix)}
		if cfg.Region != "" {
			opts = append(opts, s3.WithRegion(cfg.Region))
		}
		if cfg.Endpoint != "" {
			opts = append(opts, s3.WithEndpoint(cfg.Endpoint))
		}
		store, err := s3.New(ctx, cfg.Bucket, opts...)
		if err != nil {
			return nil, err
		}
		if cfg.DDBTable == "" {
			return store, nil
		}
		return s3.NewCommitStoreFromConfig(ctx, store, cfg.DDBTable, opts...)
	case "minio":
		if cfg.Endpoint == "" || cfg.Bucket == "" {
			return nil, fmt.Errorf("store: minio requires endpoint and bucket")
		}
		store, err := minio.Connect(cfg.Endpoint, minio.Credentials{
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Secure:    cfg.Secure,
			Region:    cfg.Region,
		}, cfg.Bucket, cfg.Prefix)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	case "redis":
		store := redis.NewStore(redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
			Prefix:   cfg.Prefix,
		})
		if err := store.Ping(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("store: unknown kind %q", cfg.Kind)
	}
}

func (c *CLI) catalog(ctx context.Context) (*catalog.Catalog, error) {
	store, err := openStore(ctx, c.cfg.Store)
	if err != nil {
		return nil, err
	}
	opts := []catalog.Option{catalog.WithLogger(c.slog())}
	if c.rc != nil {
		opts = append(opts, catalog.WithResourceController(c.rc))
	}
	return catalog.New(store, opts...), nil
}

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sashob/springbox/internal/config"
	"github.com/sashob/springbox/internal/server"
	"github.com/sashob/springbox/pkg/cache"
	"github.com/sashob/springbox/pkg/pipeline"
	"github.com/sashob/springbox/pkg/store"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the springbox HTTP API",
		Long: `Run the springbox HTTP API.

The server exposes layout endpoints backed by the article store. Layouts are
cached in Redis when [redis] is configured, otherwise in the local file cache.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	st, err := store.New(ctx, store.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return fmt.Errorf("connect store: %w", err)
	}
	defer st.Close(context.Background())

	backend, err := c.serverCache(ctx, cfg)
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(backend, nil, st, c.Logger)
	defer runner.Close()

	srv := server.New(runner, cfg, c.Logger)
	return srv.ListenAndServe(ctx)
}

// serverCache selects Redis when configured, falling back to the file cache.
func (c *CLI) serverCache(ctx context.Context, cfg config.Config) (cache.Cache, error) {
	if cfg.Redis.Addr != "" {
		backend, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		c.Logger.Info("using redis cache", "addr", cfg.Redis.Addr)
		return backend, nil
	}
	return newCache(false)
}

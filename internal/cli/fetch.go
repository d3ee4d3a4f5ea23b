package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sashob/springbox/pkg/graph"
	"github.com/sashob/springbox/pkg/pipeline"
	"github.com/sashob/springbox/pkg/store"
)

// fetchCommand creates the fetch command for extracting link graphs
// from the article store.
func (c *CLI) fetchCommand() *cobra.Command {
	var (
		output  string
		depth   int
		noCache bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "fetch <article>",
		Short: "Fetch an article's link graph from the store",
		Long: `Fetch an article's link neighborhood from the article store.

The fetch command traverses links outward from the named article up to the
given depth and writes the resulting graph as a graph.json file. The output
can be laid out with 'springbox layout'.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFetch(cmd.Context(), args[0], depth, output, noCache, refresh)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <article>.graph.json)")
	cmd.Flags().IntVarP(&depth, "depth", "d", pipeline.DefaultDepth, "link traversal depth")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass cached graphs")

	return cmd
}

func (c *CLI) runFetch(ctx context.Context, article string, depth int, output string, noCache, refresh bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	st, err := store.New(ctx, store.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return fmt.Errorf("connect store: %w", err)
	}
	defer st.Close(ctx)

	runner, err := c.newRunner(st, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Fetching %q...", article))
	spinner.Start()

	opts := pipeline.Options{Article: article, Depth: depth, Refresh: refresh}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		spinner.Stop()
		return err
	}
	g, cacheHit, err := runner.FetchWithCacheInfo(ctx, opts)
	if err != nil {
		spinner.StopWithError("Fetch failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	out := output
	if out == "" {
		out = article + ".graph.json"
	}
	if err := graph.WriteFile(g, out); err != nil {
		return fmt.Errorf("write output %s: %w", out, err)
	}

	printSuccess("Fetched %q", article)
	printFile(out)
	printStats(len(g.Nodes), len(g.Edges), cacheHit)
	printNewline()
	printNextStep("Layout", "springbox layout "+out)

	return nil
}

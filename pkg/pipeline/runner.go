package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sashob/springbox/pkg/cache"
	"github.com/sashob/springbox/pkg/chart"
	apperrors "github.com/sashob/springbox/pkg/errors"
	"github.com/sashob/springbox/pkg/graph"
	"github.com/sashob/springbox/pkg/observability"
	"github.com/sashob/springbox/pkg/spring"
)

// Cache TTLs per stage. Fetched graphs go stale as articles are edited;
// layouts and charts are pure functions of their inputs and keep longer.
const (
	graphTTL    = 24 * time.Hour
	layoutTTL   = 7 * 24 * time.Hour
	artifactTTL = 7 * 24 * time.Hour
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for its collaborators; multiple goroutines
// can safely share one Runner with different options.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	Fetcher Fetcher
	Logger  *log.Logger
}

// NewRunner creates a runner with the given collaborators.
// If keyer is nil, a DefaultKeyer is used. If c is nil, caching is disabled.
// Fetcher may be nil when only ExecuteGraph is used.
func NewRunner(c cache.Cache, keyer cache.Keyer, fetcher Fetcher, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		Fetcher: fetcher,
		Logger:  logger,
	}
}

// Close releases the cache backend.
func (r *Runner) Close() error {
	return r.Cache.Close()
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the link graph the layout was computed for.
	Graph graph.Graph

	// GraphHash is the content hash of the graph.
	GraphHash string

	// Layout holds the computed positions.
	Layout chart.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	FetchTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	FetchHit  bool
	LayoutHit bool
	RenderHit bool
}

// Execute runs the complete fetch → layout → render pipeline with caching.
// Options.Article must be set; use ExecuteGraph for caller-supplied graphs.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if opts.Article == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "no article to fetch")
	}

	fetchStart := time.Now()
	g, fetchHit, err := r.FetchWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	fetchTime := time.Since(fetchStart)

	result, err := r.executeGraph(ctx, g, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.FetchTime = fetchTime
	result.CacheInfo.FetchHit = fetchHit
	return result, nil
}

// ExecuteGraph runs layout → render for a caller-supplied graph.
func (r *Runner) ExecuteGraph(ctx context.Context, g graph.Graph, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidGraph, err, "invalid graph")
	}
	return r.executeGraph(ctx, g, opts)
}

func (r *Runner) executeGraph(ctx context.Context, g graph.Graph, opts Options) (*Result, error) {
	result := &Result{
		Graph:     g,
		Artifacts: make(map[string][]byte),
	}
	result.Stats.NodeCount = len(g.Nodes)
	result.Stats.EdgeCount = len(g.Edges)

	if data, err := graph.Marshal(g); err == nil {
		result.GraphHash = cache.Hash(data)
	}

	layoutStart := time.Now()
	l, layoutHit, err := r.ComputeLayout(ctx, g, opts)
	if err != nil {
		return nil, err
	}
	result.Layout = l
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"iterations", opts.Iterations,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	renderStart := time.Now()
	artifacts, renderHit, err := r.Render(ctx, l, g, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered charts",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// FetchWithCacheInfo retrieves the article neighborhood with caching and
// reports whether the cache was hit.
func (r *Runner) FetchWithCacheInfo(ctx context.Context, opts Options) (graph.Graph, bool, error) {
	if r.Fetcher == nil {
		return graph.Graph{}, false, apperrors.New(apperrors.ErrCodeInvalidInput, "no article store configured")
	}

	key := r.Keyer.GraphKey("store", opts.Article, cache.GraphKeyOpts{Depth: opts.Depth})
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if g, err := graph.Unmarshal(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "graph")
				return g, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "graph")
	}

	observability.Layout().OnFetchStart(ctx, "store", opts.Article)
	start := time.Now()
	g, err := r.Fetcher.LinkGraph(ctx, opts.Article, opts.Depth)
	observability.Layout().OnFetchComplete(ctx, "store", opts.Article, len(g.Nodes), time.Since(start), err)
	if err != nil {
		return graph.Graph{}, false, err
	}

	if data, err := graph.Marshal(g); err == nil {
		if err := r.Cache.Set(ctx, key, data, graphTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "graph", len(data))
		}
	}
	return g, false, nil
}

// ComputeLayout runs the engine with caching. The cache key covers the
// graph content and every physics parameter, so two layouts share an entry
// only when they are guaranteed identical (the engine is deterministic).
func (r *Runner) ComputeLayout(ctx context.Context, g graph.Graph, opts Options) (chart.Layout, bool, error) {
	if !opts.validated {
		if err := opts.ValidateAndSetDefaults(); err != nil {
			return chart.Layout{}, false, err
		}
	}

	data, err := graph.Marshal(g)
	if err != nil {
		return chart.Layout{}, false, apperrors.Wrap(apperrors.ErrCodeInternal, err, "marshal graph")
	}
	key := r.Keyer.LayoutKey(cache.Hash(data), opts.layoutKeyOpts())

	if !opts.Refresh {
		if cached, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if l, err := chart.UnmarshalLayout(cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return l, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	weights, err := graph.NewWeights(g)
	if err != nil {
		return chart.Layout{}, false, apperrors.Wrap(apperrors.ErrCodeInvalidGraph, err, "build weights")
	}

	box, err := spring.New(g.Names(), spring.Config{
		Width:    opts.Width,
		Height:   opts.Height,
		Charge:   opts.Charge,
		Mass:     opts.Mass,
		TimeStep: opts.TimeStep,
		Weights:  weights.Lookup,
	})
	if err != nil {
		return chart.Layout{}, false, apperrors.Wrap(apperrors.ErrCodeInvalidPhysics, err, "construct engine")
	}

	observability.Layout().OnLayoutStart(ctx, box.Len(), opts.Iterations)
	start := time.Now()
	err = box.Run(opts.Iterations)
	observability.Layout().OnLayoutComplete(ctx, box.Len(), time.Since(start), err)
	if err != nil {
		return chart.Layout{}, false, apperrors.Wrap(apperrors.ErrCodeInvalidPhysics, err, "run layout")
	}

	if !box.Finite() {
		// Divergence is surfaced through the coordinates, not as an error.
		r.Logger.Warn("layout diverged to non-finite coordinates",
			"nodes", box.Len(),
			"charge", opts.Charge,
			"time_step", opts.TimeStep)
	}

	l := chart.FromBox(box, opts.Width, opts.Height)
	if data, err := chart.MarshalLayout(l); err == nil {
		if err := r.Cache.Set(ctx, key, data, layoutTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}
	return l, false, nil
}

// Render produces the requested chart artifacts with per-format caching.
// The bool reports whether every requested format came from cache.
func (r *Runner) Render(ctx context.Context, l chart.Layout, g graph.Graph, opts Options) (map[string][]byte, bool, error) {
	if !opts.validated {
		if err := opts.ValidateAndSetDefaults(); err != nil {
			return nil, false, err
		}
	}

	layoutData, err := chart.MarshalLayout(l)
	if err != nil {
		return nil, false, apperrors.Wrap(apperrors.ErrCodeInternal, err, "marshal layout")
	}
	layoutHash := cache.Hash(layoutData)

	observability.Layout().OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts := make(map[string][]byte, len(opts.Formats))
	allHit := true
	for _, format := range opts.Formats {
		key := r.Keyer.ChartKey(layoutHash, cache.ChartKeyOpts{Format: format})
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, "chart")
				artifacts[format] = data
				continue
			}
			observability.Cache().OnCacheMiss(ctx, "chart")
		}
		allHit = false

		data, err := r.renderFormat(ctx, l, g, format, opts)
		if err != nil {
			observability.Layout().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
			return nil, false, err
		}
		artifacts[format] = data

		if err := r.Cache.Set(ctx, key, data, artifactTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "chart", len(data))
		}
	}

	observability.Layout().OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
	return artifacts, allHit, nil
}

func (r *Runner) renderFormat(ctx context.Context, l chart.Layout, g graph.Graph, format string, opts Options) ([]byte, error) {
	var edges []chart.DOTOption
	if opts.Edges {
		edges = append(edges, chart.WithDOTEdges(g.Edges))
	}

	switch format {
	case FormatJSON:
		return chart.MarshalLayout(l)
	case FormatSVG:
		var svgOpts []chart.SVGOption
		if opts.Labels {
			svgOpts = append(svgOpts, chart.WithLabels())
		}
		return chart.RenderSVG(l, svgOpts...), nil
	case FormatDOT:
		return []byte(chart.ToDOT(l, edges...)), nil
	case FormatPNG:
		data, err := chart.RenderPNG(ctx, l, edges...)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInternal, err, "render png")
		}
		return data, nil
	default:
		return nil, apperrors.New(apperrors.ErrCodeInvalidFormat, "unsupported format %q", format)
	}
}

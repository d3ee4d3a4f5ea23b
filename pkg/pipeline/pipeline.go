// Package pipeline provides the core layout pipeline for springbox.
//
// This package implements the complete fetch → layout → render pipeline
// used by both the CLI and the HTTP API. Centralizing the logic keeps
// behavior and cache keys identical across entry points.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Fetch: load the link graph (from the article store or a caller-supplied graph)
//  2. Layout: run the spring engine for a fixed number of iterations
//  3. Render: produce chart artifacts (JSON, SVG, PNG, DOT)
//
// Each stage can be run independently or as part of the complete pipeline,
// and each stage's result is cached under a content-derived key.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, store, logger)
//	opts := pipeline.Options{
//	    Article: "incunabula",
//	    Depth:   1,
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"context"

	"github.com/sashob/springbox/pkg/cache"
	apperrors "github.com/sashob/springbox/pkg/errors"
	"github.com/sashob/springbox/pkg/graph"
)

// Default physics constants. Tuned so that typical article neighborhoods
// (tens of nodes, weights in the 1-10 range) cluster without diverging
// within the default iteration budget.
const (
	// DefaultWidth is the default canvas width in pixels.
	DefaultWidth = 800.0

	// DefaultHeight is the default canvas height in pixels.
	DefaultHeight = 600.0

	// DefaultCharge is the default uniform node charge.
	DefaultCharge = 1.0

	// DefaultMass is the default uniform node mass.
	DefaultMass = 1.0

	// DefaultTimeStep is the default integration step length.
	DefaultTimeStep = 0.05

	// DefaultIterations is the default number of simulation steps.
	DefaultIterations = 1000

	// DefaultDepth is the default link traversal depth for store fetches.
	DefaultDepth = 1
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatDOT:  true,
}

// Fetcher retrieves an article's link neighborhood. Implemented by
// [github.com/sashob/springbox/pkg/store.Store].
type Fetcher interface {
	LinkGraph(ctx context.Context, root string, depth int) (graph.Graph, error)
}

// Options contains all configuration for the layout pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Fetch options. Article selects store-backed fetching; leave it empty
	// when supplying a graph directly via ExecuteGraph.
	Article string `json:"article,omitempty"`
	Depth   int    `json:"depth,omitempty"`

	// Physics options. Zero values are replaced by the defaults above.
	Width      float64 `json:"width,omitempty"`
	Height     float64 `json:"height,omitempty"`
	Charge     float64 `json:"charge,omitempty"`
	Mass       float64 `json:"mass,omitempty"`
	TimeStep   float64 `json:"time_step,omitempty"`
	Iterations int     `json:"iterations,omitempty"`

	// Render options.
	Formats []string `json:"formats,omitempty"`
	Labels  bool     `json:"labels,omitempty"` // node names in SVG output
	Edges   bool     `json:"edges,omitempty"`  // edge overlay in DOT/PNG output

	// Refresh skips cache reads (but still writes).
	Refresh bool `json:"refresh,omitempty"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults fills zero values with defaults and rejects
// values the engine would refuse at construction. The engine re-checks at
// New, but failing here keeps misconfiguration errors coded and uniform
// across CLI and API.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Charge == 0 {
		o.Charge = DefaultCharge
	}
	if o.Mass == 0 {
		o.Mass = DefaultMass
	}
	if o.TimeStep == 0 {
		o.TimeStep = DefaultTimeStep
	}
	if o.Iterations == 0 {
		o.Iterations = DefaultIterations
	}
	if o.Depth == 0 {
		o.Depth = DefaultDepth
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}

	if o.Width < 0 || o.Height < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidPhysics, "canvas %gx%g is degenerate", o.Width, o.Height)
	}
	if o.Charge < 0 || o.Mass < 0 || o.TimeStep < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidPhysics,
			"charge, mass, and time step must be positive (charge=%g mass=%g dt=%g)",
			o.Charge, o.Mass, o.TimeStep)
	}
	if o.Iterations < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidPhysics, "iterations must be positive, got %d", o.Iterations)
	}
	if o.Depth < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "depth must be non-negative, got %d", o.Depth)
	}
	for _, f := range o.Formats {
		if !ValidFormats[f] {
			return apperrors.New(apperrors.ErrCodeInvalidFormat, "unsupported format %q", f)
		}
	}

	o.validated = true
	return nil
}

// layoutKeyOpts derives the cache key parameters from the physics options.
func (o *Options) layoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Width:      o.Width,
		Height:     o.Height,
		Charge:     o.Charge,
		Mass:       o.Mass,
		TimeStep:   o.TimeStep,
		Iterations: o.Iterations,
	}
}

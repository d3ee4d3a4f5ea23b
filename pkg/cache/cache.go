// Package cache provides pluggable caching for layout pipeline stages.
//
// Three backends are available: [FileCache] for CLI usage (XDG cache
// directory), [RedisCache] for server deployments, and [NullCache] to
// disable caching entirely. Keys are generated by a [Keyer] so that every
// entry point (CLI, API) derives identical keys for identical work.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys with optional TTL.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present; a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// GraphKeyOpts parameterize graph cache keys.
type GraphKeyOpts struct {
	Depth int
}

// LayoutKeyOpts parameterize layout cache keys. Two layouts agree only when
// every physical constant and the iteration count agree, so all of them
// participate in the key.
type LayoutKeyOpts struct {
	Width      float64
	Height     float64
	Charge     float64
	Mass       float64
	TimeStep   float64
	Iterations int
}

// ChartKeyOpts parameterize chart artifact cache keys.
type ChartKeyOpts struct {
	Format string
}

// Keyer generates cache keys for the pipeline stages.
type Keyer interface {
	// GraphKey generates a key for a fetched link graph.
	GraphKey(source, name string, opts GraphKeyOpts) string

	// LayoutKey generates a key for computed positions.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string

	// ChartKey generates a key for a rendered chart artifact.
	ChartKey(layoutHash string, opts ChartKeyOpts) string
}

// DefaultKeyer is the standard key scheme.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// GraphKey generates a key for a fetched link graph.
func (k *DefaultKeyer) GraphKey(source, name string, opts GraphKeyOpts) string {
	return hashKey("graph", source, name, opts)
}

// LayoutKey generates a key for computed positions.
func (k *DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// ChartKey generates a key for a rendered chart artifact.
func (k *DefaultKeyer) ChartKey(layoutHash string, opts ChartKeyOpts) string {
	return hashKey("chart", layoutHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)

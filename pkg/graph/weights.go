package graph

import "fmt"

// Weights is an immutable symmetric adjacency built once from a Graph.
// Its Lookup method satisfies the layout engine's weight oracle contract:
// symmetry holds by construction, so callers cannot feed the engine an
// inconsistent relation through this type.
type Weights struct {
	pairs map[[2]string]float64
}

// NewWeights builds the adjacency from a validated graph. When the same
// unordered pair appears more than once, the weights are summed: parallel
// links between two nodes pull proportionally harder.
func NewWeights(g Graph) (*Weights, error) {
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("weights: %w", err)
	}

	pairs := make(map[[2]string]float64, len(g.Edges))
	for _, e := range g.Edges {
		pairs[pairKey(e.From, e.To)] += e.Weight
	}
	return &Weights{pairs: pairs}, nil
}

// Lookup returns the spring constant for the unordered pair (u, v), and
// whether the pair is connected at all. Safe for concurrent use.
func (w *Weights) Lookup(u, v string) (float64, bool) {
	k, ok := w.pairs[pairKey(u, v)]
	return k, ok
}

// Len returns the number of connected pairs.
func (w *Weights) Len() int { return len(w.pairs) }

// pairKey normalizes an unordered pair to a canonical ordering.
func pairKey(u, v string) [2]string {
	if v < u {
		u, v = v, u
	}
	return [2]string{u, v}
}

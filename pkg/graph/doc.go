// Package graph provides the serialization types for weighted link graphs.
//
// This package defines the canonical wire format for springbox's graph data,
// used for JSON files, API requests, caching, and document-store round trips
// (the types carry bson tags for MongoDB).
//
// # Core Types
//
//   - [Graph]: node-link format with weighted, undirected edges
//   - [Node], [Edge]: shared structural types
//   - [Weights]: immutable symmetric adjacency built from a Graph, the
//     standard implementation of the layout engine's weight oracle
//
// # Graph Serialization
//
// Graphs use a simple node-link JSON format:
//
//	{
//	  "nodes": [{"id": "alpha"}, {"id": "beta"}],
//	  "edges": [{"from": "alpha", "to": "beta", "weight": 2}]
//	}
//
// Common operations:
//
//	g, _ := graph.ReadFile("links.json")   // File → Graph
//	graph.WriteFile(g, "links.json")       // Graph → File
//	data, _ := graph.Marshal(g)            // Graph → []byte
//	w, _ := graph.NewWeights(g)            // Graph → oracle
//
// # Concurrency
//
// Graph values are plain data. Weights is immutable after construction and
// safe for concurrent lookups.
package graph

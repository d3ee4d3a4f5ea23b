// Package chart renders computed layouts for downstream consumption.
//
// The layout engine's entire external contract is a list of (x, y, name)
// triples plus the canvas they were scaled into; this package turns that
// into concrete artifacts:
//
//   - [MarshalLayout] / [UnmarshalLayout]: the JSON wire format used by the
//     API and the artifact cache
//   - [RenderSVG]: a standalone scatter chart
//   - [ToDOT] + [RenderDOT]: Graphviz output with pinned positions, for
//     interoperability with DOT tooling (rendered through neato so the
//     engine's coordinates are respected, not recomputed)
//
// Rendering never mutates the layout; artifacts for the same layout can be
// produced concurrently.
package chart

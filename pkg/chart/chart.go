package chart

import (
	"encoding/json"
	"fmt"

	"github.com/sashob/springbox/pkg/spring"
)

// Layout is the serializable result of a layout run: the canvas dimensions
// and one scatter point per node. This is the unit stored in the artifact
// cache and returned by the API.
type Layout struct {
	Width  float64        `json:"width"`
	Height float64        `json:"height"`
	Points []spring.Point `json:"points"`
}

// FromBox captures a finished box into a Layout. Call after Run (or after
// Rescale) so the coordinates are canvas-space.
func FromBox(box *spring.Box, width, height float64) Layout {
	return Layout{
		Width:  width,
		Height: height,
		Points: box.Positions(),
	}
}

// MarshalLayout converts a Layout to indented JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode layout: %w", err)
	}
	return data, nil
}

// UnmarshalLayout deserializes JSON bytes to a Layout.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("decode layout: %w", err)
	}
	if len(l.Points) == 0 {
		return Layout{}, fmt.Errorf("layout has no points")
	}
	return l, nil
}

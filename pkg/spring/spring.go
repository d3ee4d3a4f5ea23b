// Package spring implements a force-directed layout for weighted link graphs.
//
// The engine models nodes as charged point masses: every pair repels with a
// Coulomb-style inverse-square force, and pairs connected by an edge attract
// under Hooke's law scaled by the edge weight. Integrating the system for a
// fixed number of steps pulls related nodes into clusters while unrelated
// nodes drift apart; the final positions are rescaled into the target canvas.
//
// A layout run is deterministic: nodes start on a grid derived from the
// canvas area and no randomness is used anywhere, so identical inputs always
// produce identical positions.
//
// # Usage
//
//	box, err := spring.New(names, spring.Config{
//	    Width: 800, Height: 600,
//	    Charge: 1, Mass: 1, TimeStep: 0.05,
//	    Weights: weights.Lookup,
//	})
//	if err != nil {
//	    return err
//	}
//	if err := box.Run(1000); err != nil {
//	    return err
//	}
//	for _, p := range box.Positions() {
//	    fmt.Println(p.X, p.Y, p.Name)
//	}
//
// Each Box is single-threaded: phases within a step depend on state written
// by the previous phase and must run in order. Independent boxes share no
// state and may run concurrently.
package spring

import (
	"fmt"
	"math"
)

// Coulomb is the repulsion constant applied to every node pair. The value
// matches the physical electrostatic constant only to give repulsion enough
// relative strength against typical spring weights; it has no physical
// meaning here.
const Coulomb = 8.9875e9

// WeightFunc maps an unordered pair of node names to a spring constant.
// The second return value reports whether the pair is connected at all;
// a false means no attractive force, which is distinct from a zero weight
// only in how the oracle represents it.
//
// The engine assumes the function is symmetric: f(u, v) and f(v, u) must
// agree. This is not verified; an asymmetric oracle produces undefined
// layout behavior.
type WeightFunc func(u, v string) (float64, bool)

// Config carries the physical constants for a layout run.
// All fields are required; there are no defaults.
type Config struct {
	// Width and Height are the target canvas dimensions. Final positions
	// land in [0, Width) x [0, Height).
	Width  float64
	Height float64

	// Charge is the uniform electric charge copied onto every node.
	Charge float64

	// Mass is the uniform mass copied onto every node. Used as a force
	// divisor, so it must be nonzero.
	Mass float64

	// TimeStep is the integration step length. The engine applies no
	// damping, so a step too large relative to Charge and the spring
	// weights can oscillate or diverge; tuning is the caller's job.
	TimeStep float64

	// Weights is the attraction oracle queried for every node pair.
	Weights WeightFunc
}

// body is the engine-owned physical state of one node. Identity lives
// separately in Box.names; the two are joined by index.
type body struct {
	x, y   float64
	vx, vy float64
	ax, ay float64
	fx, fy float64
	mass   float64
	charge float64
}

// Box is one layout session: a node arena plus the constants for the run.
// Created by New, advanced by Run, read out with Positions, then discarded.
type Box struct {
	names  []string
	bodies []body
	width  float64
	height float64
	dt     float64
	kfn    WeightFunc
}

// Point is the read-back contract consumed by rendering collaborators:
// a final position and the node's name, nothing else.
type Point struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Name string  `json:"name"`
}

// New creates a layout session for the named nodes and places them on the
// initial grid. Names must be unique and non-empty; canvas dimensions,
// charge, mass, and time step must be positive; the oracle must be non-nil.
// Misconfiguration fails here, before any iteration runs.
func New(names []string, cfg Config) (*Box, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("spring: no nodes")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("spring: canvas %gx%g is degenerate", cfg.Width, cfg.Height)
	}
	if cfg.Charge <= 0 {
		return nil, fmt.Errorf("spring: charge must be positive, got %g", cfg.Charge)
	}
	if cfg.Mass <= 0 {
		return nil, fmt.Errorf("spring: mass must be positive, got %g", cfg.Mass)
	}
	if cfg.TimeStep <= 0 {
		return nil, fmt.Errorf("spring: time step must be positive, got %g", cfg.TimeStep)
	}
	if cfg.Weights == nil {
		return nil, fmt.Errorf("spring: nil weight oracle")
	}

	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n == "" {
			return nil, fmt.Errorf("spring: empty node name")
		}
		if _, dup := seen[n]; dup {
			return nil, fmt.Errorf("spring: duplicate node %q", n)
		}
		seen[n] = struct{}{}
	}

	b := &Box{
		names:  append([]string(nil), names...),
		bodies: make([]body, len(names)),
		width:  cfg.Width,
		height: cfg.Height,
		dt:     cfg.TimeStep,
		kfn:    cfg.Weights,
	}
	b.initPositions(cfg.Charge, cfg.Mass)
	return b, nil
}

// initPositions tiles the canvas with non-overlapping squares of radius
// R = sqrt(W*H/N) and centers one node in each, wrapping to a new row when
// the running x offset would leave the canvas. Coincident starting positions
// would make the repulsion direction undefined, so the grid guarantees
// distinct coordinates for every node.
func (b *Box) initPositions(charge, mass float64) {
	area := b.width * b.height
	r := math.Sqrt(area / float64(len(b.bodies)))

	curX, curY := 0.0, r
	for i := range b.bodies {
		b.bodies[i] = body{
			x:      curX + r,
			y:      curY,
			mass:   mass,
			charge: charge,
		}
		curX += r
		if curX+r > b.width {
			curX = 0
			curY += 2 * r
		}
	}
}

// Run advances the system for the given number of steps and rescales the
// result onto the canvas. There is no convergence test and no early exit:
// the caller picks an iteration count large enough for the constants in use
// and bounds wall-clock time by bounding it.
//
// Numerical divergence is not detected here; badly tuned constants surface
// as very large or non-finite coordinates in the output. See Finite.
func (b *Box) Run(iterations int) error {
	if iterations < 1 {
		return fmt.Errorf("spring: iterations must be positive, got %d", iterations)
	}
	for range iterations {
		b.Step()
	}
	b.Rescale()
	return nil
}

// Step runs one simulation step: clear accumulated forces, apply repulsion
// and attraction for every pair, then integrate. The phase order is a
// correctness requirement, each phase reads what the previous one wrote.
// Positions after Step are in simulation space; call Rescale once stepping
// is done.
func (b *Box) Step() {
	b.clearForces()
	b.repel()
	b.attract()
	b.integrate()
}

func (b *Box) clearForces() {
	for i := range b.bodies {
		b.bodies[i].fx = 0
		b.bodies[i].fy = 0
	}
}

// repel applies Coulomb repulsion to every unordered pair, independently on
// each axis. An axis with exactly zero coordinate difference is skipped to
// avoid dividing by zero: two nodes sharing an x or y feel no repulsion
// along that axis until motion on the other axis separates them. Degenerate
// but intentional; the grid start keeps it from mattering in practice.
func (b *Box) repel() {
	for i := range b.bodies {
		for j := i + 1; j < len(b.bodies); j++ {
			v, u := &b.bodies[i], &b.bodies[j]

			if dx := v.x - u.x; dx != 0 {
				f := math.Copysign(Coulomb*v.charge*u.charge/(dx*dx), dx)
				v.fx += f
				u.fx -= f
			}
			if dy := v.y - u.y; dy != 0 {
				f := math.Copysign(Coulomb*v.charge*u.charge/(dy*dy), dy)
				v.fy += f
				u.fy -= f
			}
		}
	}
}

// attract applies Hooke's law per axis for every pair the oracle maps:
// F = -d*k, a linear pull toward zero separation. There is no rest length;
// an isolated connected pair settles where the spring balances repulsion.
func (b *Box) attract() {
	for i := range b.bodies {
		for j := i + 1; j < len(b.bodies); j++ {
			k, ok := b.kfn(b.names[i], b.names[j])
			if !ok {
				continue
			}

			v, u := &b.bodies[i], &b.bodies[j]
			dx := v.x - u.x
			dy := v.y - u.y
			v.fx -= dx * k
			u.fx += dx * k
			v.fy -= dy * k
			u.fy += dy * k
		}
	}
}

// integrate advances every body by one semi-implicit Euler step:
//
//	a = F/m
//	pos += v*dt + a/2*dt²
//	v += a*dt
//
// No damping term exists, so kinetic energy is only removed by the spring
// and repulsion terms canceling out.
func (b *Box) integrate() {
	for i := range b.bodies {
		o := &b.bodies[i]
		o.ax = o.fx / o.mass
		o.ay = o.fy / o.mass
		o.x += o.vx*b.dt + o.ax/2*b.dt*b.dt
		o.y += o.vy*b.dt + o.ay/2*b.dt*b.dt
		o.vx += o.ax * b.dt
		o.vy += o.ay * b.dt
	}
}

// Rescale linearly maps every position from simulation space into
// [0, Width) x [0, Height): translate to the bounding-box origin, then scale
// by canvas extent over box extent. The +1 on each extent keeps the scale
// finite when all nodes share a coordinate on an axis.
func (b *Box) Rescale() {
	minX, minY := b.bodies[0].x, b.bodies[0].y
	maxX, maxY := minX, minY
	for _, o := range b.bodies {
		minX = math.Min(minX, o.x)
		maxX = math.Max(maxX, o.x)
		minY = math.Min(minY, o.y)
		maxY = math.Max(maxY, o.y)
	}

	scaleX := b.width / (maxX - minX + 1)
	scaleY := b.height / (maxY - minY + 1)

	for i := range b.bodies {
		b.bodies[i].x = (b.bodies[i].x - minX) * scaleX
		b.bodies[i].y = (b.bodies[i].y - minY) * scaleY
	}
}

// Positions returns the (x, y, name) triple for every node, in construction
// order. After Run the coordinates are canvas-space; between Steps they are
// simulation-space.
func (b *Box) Positions() []Point {
	pts := make([]Point, len(b.bodies))
	for i, o := range b.bodies {
		pts[i] = Point{X: o.x, Y: o.y, Name: b.names[i]}
	}
	return pts
}

// Len returns the number of nodes in the session.
func (b *Box) Len() int { return len(b.bodies) }

// Finite reports whether every coordinate is a finite number. A false means
// the constants diverged during the run; the positions are still returned
// as-is, this is a diagnostic, not an error.
func (b *Box) Finite() bool {
	for _, o := range b.bodies {
		if math.IsNaN(o.x) || math.IsInf(o.x, 0) || math.IsNaN(o.y) || math.IsInf(o.y, 0) {
			return false
		}
	}
	return true
}

package spring

import (
	"math"
	"testing"
)

// noEdges is an oracle with an empty relation: pure repulsion.
func noEdges(u, v string) (float64, bool) { return 0, false }

// constWeight returns an oracle mapping every pair to k.
func constWeight(k float64) WeightFunc {
	return func(u, v string) (float64, bool) { return k, true }
}

func validConfig() Config {
	return Config{
		Width: 100, Height: 100,
		Charge: 1, Mass: 1, TimeStep: 0.05,
		Weights: noEdges,
	}
}

// clusterBox builds the classic fixture: 26 nodes in three fully connected
// clusters with weights 1, 2, and 3, on a 150x400 canvas.
func clusterBox(t *testing.T) (*Box, func(name string) int) {
	t.Helper()

	names := make([]string, 26)
	for i := range names {
		names[i] = string(rune('A' + i))
	}
	group := func(name string) int {
		i := int(name[0] - 'A')
		switch {
		case i < 10:
			return 0
		case i < 20:
			return 1
		default:
			return 2
		}
	}
	weights := []float64{1, 2, 3}

	box, err := New(names, Config{
		Width: 150, Height: 400,
		Charge: 1, Mass: 1, TimeStep: 0.05,
		Weights: func(u, v string) (float64, bool) {
			if group(u) != group(v) {
				return 0, false
			}
			return weights[group(u)], true
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return box, group
}

func separation(box *Box) float64 {
	pts := box.Positions()
	return math.Hypot(pts[0].X-pts[1].X, pts[0].Y-pts[1].Y)
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name   string
		names  []string
		mutate func(*Config)
	}{
		{"no nodes", nil, func(c *Config) {}},
		{"zero width", []string{"A"}, func(c *Config) { c.Width = 0 }},
		{"negative height", []string{"A"}, func(c *Config) { c.Height = -1 }},
		{"zero charge", []string{"A"}, func(c *Config) { c.Charge = 0 }},
		{"zero mass", []string{"A"}, func(c *Config) { c.Mass = 0 }},
		{"negative mass", []string{"A"}, func(c *Config) { c.Mass = -1 }},
		{"zero time step", []string{"A"}, func(c *Config) { c.TimeStep = 0 }},
		{"nil oracle", []string{"A"}, func(c *Config) { c.Weights = nil }},
		{"duplicate name", []string{"A", "A"}, func(c *Config) {}},
		{"empty name", []string{"A", ""}, func(c *Config) {}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			if _, err := New(tt.names, cfg); err == nil {
				t.Error("New should reject misconfiguration")
			}
		})
	}

	if _, err := New([]string{"A"}, validConfig()); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func TestRunRejectsNonPositiveIterations(t *testing.T) {
	box, err := New([]string{"A", "B"}, validConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := box.Run(0); err == nil {
		t.Error("Run(0) should fail")
	}
	if err := box.Run(-5); err == nil {
		t.Error("Run(-5) should fail")
	}
}

func TestGridInitialization(t *testing.T) {
	// Four nodes on a 100x100 canvas tile with radius 50: two per row.
	box, err := New([]string{"A", "B", "C", "D"}, validConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	want := []Point{
		{X: 50, Y: 50, Name: "A"},
		{X: 100, Y: 50, Name: "B"},
		{X: 50, Y: 150, Name: "C"},
		{X: 100, Y: 150, Name: "D"},
	}
	for i, p := range box.Positions() {
		if p != want[i] {
			t.Errorf("node %d: got %+v, want %+v", i, p, want[i])
		}
	}
}

func TestNoInitialOverlap(t *testing.T) {
	box, _ := clusterBox(t)
	pts := box.Positions()
	seen := make(map[[2]float64]string)
	for _, p := range pts {
		key := [2]float64{p.X, p.Y}
		if prev, dup := seen[key]; dup {
			t.Errorf("nodes %s and %s share initial position (%g, %g)", prev, p.Name, p.X, p.Y)
		}
		seen[key] = p.Name
	}
}

func TestDeterminism(t *testing.T) {
	run := func() []Point {
		box, _ := clusterBox(t)
		if err := box.Run(50); err != nil {
			t.Fatalf("Run: %v", err)
		}
		return box.Positions()
	}

	first, second := run(), run()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("node %d: run 1 gave %+v, run 2 gave %+v", i, first[i], second[i])
		}
	}
}

// TestPairwiseForceSymmetry checks Newton's third law indirectly: with two
// equal-mass bodies starting at rest, equal and opposite force contributions
// keep the midpoint fixed for the whole run.
func TestPairwiseForceSymmetry(t *testing.T) {
	cfg := validConfig()
	cfg.Weights = constWeight(1)
	box, err := New([]string{"A", "B"}, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	pts := box.Positions()
	midX := (pts[0].X + pts[1].X) / 2
	midY := (pts[0].Y + pts[1].Y) / 2

	for step := 0; step < 100; step++ {
		box.Step()
		pts = box.Positions()
		gotX := (pts[0].X + pts[1].X) / 2
		gotY := (pts[0].Y + pts[1].Y) / 2
		if math.Abs(gotX-midX) > 1e-6 || math.Abs(gotY-midY) > 1e-6 {
			t.Fatalf("step %d: midpoint drifted from (%g, %g) to (%g, %g)",
				step, midX, midY, gotX, gotY)
		}
	}
}

// TestRepulsionSkipsZeroAxis pins the known degenerate case: an axis with
// exactly zero coordinate difference contributes no repulsion on that axis.
// Two grid-initialized nodes share an x coordinate, so x never moves.
func TestRepulsionSkipsZeroAxis(t *testing.T) {
	box, err := New([]string{"A", "B"}, validConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	before := box.Positions()
	if before[0].X != before[1].X {
		t.Fatalf("fixture expects a shared x coordinate, got %g and %g", before[0].X, before[1].X)
	}

	for step := 0; step < 10; step++ {
		box.Step()
	}

	after := box.Positions()
	if after[0].X != before[0].X || after[1].X != before[1].X {
		t.Errorf("x moved despite zero x separation: %g, %g", after[0].X, after[1].X)
	}
	if math.Abs(after[0].Y-after[1].Y) <= math.Abs(before[0].Y-before[1].Y) {
		t.Error("y separation should grow under repulsion")
	}
}

// TestIsolationSeparation: two nodes with no edge between them only repel,
// so their separation grows strictly every step.
func TestIsolationSeparation(t *testing.T) {
	box, err := New([]string{"A", "B"}, validConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	prev := separation(box)
	for step := 0; step < 200; step++ {
		box.Step()
		got := separation(box)
		if got <= prev {
			t.Fatalf("step %d: separation %g did not grow past %g", step, got, prev)
		}
		prev = got
	}
}

func TestCanvasContainment(t *testing.T) {
	box, _ := clusterBox(t)
	if err := box.Run(50); err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, p := range box.Positions() {
		if p.X < 0 || p.X >= 150 || p.Y < 0 || p.Y >= 400 {
			t.Errorf("node %s at (%g, %g) escapes the 150x400 canvas", p.Name, p.X, p.Y)
		}
	}
}

// TestTwoNodeBalance runs the reference scenario: two connected nodes,
// charge=1, mass=1, dt=0.05, k=1, 100x100 canvas, 1000 steps. With no
// damping the pair oscillates through the separation where attraction and
// repulsion balance (Kc/d^2 = k*d) rather than settling on it; the run must
// bracket that distance and never collapse to contact or go non-finite.
func TestTwoNodeBalance(t *testing.T) {
	cfg := validConfig()
	cfg.Weights = constWeight(1)
	box, err := New([]string{"A", "B"}, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	minSep, maxSep := math.Inf(1), math.Inf(-1)
	for step := 0; step < 1000; step++ {
		box.Step()
		d := separation(box)
		minSep = math.Min(minSep, d)
		maxSep = math.Max(maxSep, d)
	}

	if !box.Finite() {
		t.Fatal("scenario went non-finite")
	}

	balance := math.Cbrt(Coulomb) // Kc/d^2 = d at k=1
	if minSep >= balance || maxSep <= balance {
		t.Errorf("separation range [%g, %g] does not bracket balance distance %g",
			minSep, maxSep, balance)
	}
	if minSep < 1 {
		t.Errorf("pair collapsed to separation %g", minSep)
	}

	box.Rescale()
	for _, p := range box.Positions() {
		if p.X < 0 || p.X >= 100 || p.Y < 0 || p.Y >= 100 {
			t.Errorf("node %s at (%g, %g) outside canvas after rescale", p.Name, p.X, p.Y)
		}
	}
}

// TestWeightProportionality: with everything else fixed, a doubled spring
// constant pulls the pair strictly closer at every early step. The window is
// kept short because the undamped oscillation phases eventually cross.
func TestWeightProportionality(t *testing.T) {
	newBox := func(k float64) *Box {
		cfg := validConfig()
		cfg.Weights = constWeight(k)
		box, err := New([]string{"A", "B"}, cfg)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		return box
	}

	base, double := newBox(1), newBox(2)
	for step := 0; step < 25; step++ {
		base.Step()
		double.Step()
		if d1, d2 := separation(base), separation(double); d2 >= d1 {
			t.Fatalf("step %d: doubled weight gave separation %g, baseline %g", step, d2, d1)
		}
	}
}

// TestClustering: three fully connected clusters end up tighter internally
// than across cluster boundaries.
func TestClustering(t *testing.T) {
	box, group := clusterBox(t)
	if err := box.Run(50); err != nil {
		t.Fatalf("Run: %v", err)
	}

	pts := box.Positions()
	var intra, inter float64
	var nIntra, nInter int
	for i := range pts {
		for j := i + 1; j < len(pts); j++ {
			d := math.Hypot(pts[i].X-pts[j].X, pts[i].Y-pts[j].Y)
			if group(pts[i].Name) == group(pts[j].Name) {
				intra += d
				nIntra++
			} else {
				inter += d
				nInter++
			}
		}
	}

	intra /= float64(nIntra)
	inter /= float64(nInter)
	if intra >= inter {
		t.Errorf("mean intra-cluster distance %g not below inter-cluster %g", intra, inter)
	}
}

func TestFiniteDetectsDivergence(t *testing.T) {
	cfg := validConfig()
	cfg.TimeStep = 1e80 // absurd step to force overflow
	cfg.Weights = constWeight(1)
	box, err := New([]string{"A", "B"}, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if !box.Finite() {
		t.Fatal("fresh box should be finite")
	}
	for step := 0; step < 5; step++ {
		box.Step()
	}
	if box.Finite() {
		t.Error("expected non-finite coordinates after diverging run")
	}
}

func TestSingleNode(t *testing.T) {
	box, err := New([]string{"only"}, validConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := box.Run(10); err != nil {
		t.Fatalf("Run: %v", err)
	}
	p := box.Positions()[0]
	if p.X != 0 || p.Y != 0 {
		t.Errorf("lone node should land at the origin, got (%g, %g)", p.X, p.Y)
	}
	if box.Len() != 1 {
		t.Errorf("Len = %d, want 1", box.Len())
	}
}

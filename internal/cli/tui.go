package cli

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sashob/springbox/pkg/graph"
	"github.com/sashob/springbox/pkg/pipeline"
	"github.com/sashob/springbox/pkg/spring"
)

var (
	tuiDotStyle    = lipgloss.NewStyle().Foreground(colorCyan)
	tuiBorderStyle = lipgloss.NewStyle().Foreground(colorDim)
	tuiBarStyle    = lipgloss.NewStyle().Foreground(colorGreen)
)

// watchLayout runs the spring simulation in a terminal view, drawing node
// positions as they settle. It steps a simulation identical to the one the
// pipeline runs, so the preview matches the written output.
func watchLayout(ctx context.Context, g graph.Graph, opts pipeline.Options) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	weights, err := graph.NewWeights(g)
	if err != nil {
		return err
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
		return err
	}

	m := layoutModel{
		box:   box,
		total: opts.Iterations,
		cols:  72,
		rows:  20,
	}
	p := tea.NewProgram(m, tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(layoutModel); ok && fm.aborted {
		return context.Canceled
	}
	return nil
}

// =============================================================================
// Model
// =============================================================================

type layoutModel struct {
	box     *spring.Box
	total   int
	done    int
	cols    int
	rows    int
	aborted bool
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m layoutModel) Init() tea.Cmd {
	return tick()
}

func (m layoutModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.cols = msg.Width - 4
		m.rows = msg.Height - 6
		if m.cols < 20 {
			m.cols = 20
		}
		if m.rows < 8 {
			m.rows = 8
		}
	case tickMsg:
		// Step in batches so long runs finish in a few seconds of animation.
		batch := m.total / 200
		if batch < 1 {
			batch = 1
		}
		for i := 0; i < batch && m.done < m.total; i++ {
			m.box.Step()
			m.done++
		}
		if m.done >= m.total {
			return m, tea.Quit
		}
		return m, tick()
	}
	return m, nil
}

func (m layoutModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Spring simulation"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("q to abort"))
	b.WriteString("\n\n")
	b.WriteString(m.plot())
	b.WriteString("\n")
	b.WriteString(m.progressBar())
	b.WriteString("\n")

	return b.String()
}

// plot renders the current node positions into a character grid, scaled to
// the live bounding box of the simulation.
func (m layoutModel) plot() string {
	points := m.box.Positions()

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		if !isFinite(p.X) || !isFinite(p.Y) {
			continue
		}
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	spanX := maxX - minX
	spanY := maxY - minY
	if spanX <= 0 || math.IsInf(spanX, 0) {
		spanX = 1
	}
	if spanY <= 0 || math.IsInf(spanY, 0) {
		spanY = 1
	}

	grid := make([][]rune, m.rows)
	for i := range grid {
		grid[i] = make([]rune, m.cols)
		for j := range grid[i] {
			grid[i][j] = ' '
		}
	}
	for _, p := range points {
		if !isFinite(p.X) || !isFinite(p.Y) {
			continue
		}
		col := int((p.X - minX) / spanX * float64(m.cols-1))
		row := int((p.Y - minY) / spanY * float64(m.rows-1))
		grid[row][col] = '•'
	}

	var b strings.Builder
	border := tuiBorderStyle.Render("+" + strings.Repeat("-", m.cols) + "+")
	b.WriteString(border)
	b.WriteString("\n")
	for _, row := range grid {
		b.WriteString(tuiBorderStyle.Render("|"))
		b.WriteString(tuiDotStyle.Render(string(row)))
		b.WriteString(tuiBorderStyle.Render("|"))
		b.WriteString("\n")
	}
	b.WriteString(border)
	return b.String()
}

func (m layoutModel) progressBar() string {
	width := m.cols - 10
	if width < 10 {
		width = 10
	}
	frac := float64(m.done) / float64(m.total)
	filled := int(frac * float64(width))
	bar := tuiBarStyle.Render(strings.Repeat("█", filled)) +
		StyleDim.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("%s %s", bar, StyleDim.Render(fmt.Sprintf("%d/%d", m.done, m.total)))
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Package grid materialises a window of the cell lattice and drives it: one
// batch of cells per viewport and zoom, resized every frame from a noise or
// image source and replayed through any Pen.
package grid

import (
	"fmt"
	"image/color"
	"math"
	"sync/atomic"

	"go.uber.org/zap"

	"kilo/internal/core"
	"kilo/internal/lattice"
)

// ZoomStep is the zoom change applied by ZoomIn and ZoomOut.
const ZoomStep = 0.1

// Batch is one generation of cells. It is built off to the side and swapped
// in whole.
type Batch struct {
	Cells    []Cell
	Window   lattice.Window
	Viewport core.Viewport
	Zoom     float64
	OffsetX  float64
	OffsetY  float64
}

// Grid owns the current cell batch.
type Grid struct {
	baseW, baseH float64
	limits       lattice.Limits
	zoom         float64
	view         core.Viewport

	batch atomic.Pointer[Batch]
	// revealComplete is set once a reveal sequence has finished; later
	// batches start revealed.
	revealComplete atomic.Bool

	log *zap.Logger
}

// Option configures a Grid.
type Option func(*Grid)

// WithLogger sets the logger used for regeneration events.
func WithLogger(l *zap.Logger) Option {
	return func(g *Grid) {
		if l != nil {
			g.log = l
		}
	}
}

// WithBaseSize overrides the lattice cell size at zoom 1.
func WithBaseSize(w, h float64) Option {
	return func(g *Grid) {
		if w > 0 && h > 0 {
			g.baseW, g.baseH = w, h
		}
	}
}

// WithLimits overrides the zoom range and window padding.
func WithLimits(l lattice.Limits) Option {
	return func(g *Grid) { g.limits = l }
}

// WithZoom sets the initial zoom.
func WithZoom(z float64) Option {
	return func(g *Grid) { g.zoom = z }
}

// New builds a grid for view and generates its first batch.
func New(view core.Viewport, opts ...Option) *Grid {
	g := &Grid{
		baseW:  lattice.DefaultBaseWidth,
		baseH:  lattice.DefaultBaseHeight,
		limits: lattice.DefaultLimits(),
		zoom:   lattice.DefaultZoom,
		view:   view,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.zoom = g.limits.ClampZoom(g.zoom)
	g.rebuild()
	return g
}

// Zoom returns the current zoom.
func (g *Grid) Zoom() float64 { return g.zoom }

// Viewport returns the viewport the current batch was built for.
func (g *Grid) Viewport() core.Viewport { return g.view }

// CellSize returns the size of one cell at the current zoom.
func (g *Grid) CellSize() (w, h float64) { return g.baseW * g.zoom, g.baseH * g.zoom }

// SetZoom clamps z and regenerates the batch.
func (g *Grid) SetZoom(z float64) {
	g.zoom = g.limits.ClampZoom(z)
	g.rebuild()
}

// ZoomIn shrinks the zoom factor by ZoomStep, showing more cells.
func (g *Grid) ZoomIn() { g.SetZoom(g.zoom - ZoomStep) }

// ZoomOut grows the zoom factor by ZoomStep, showing fewer, larger cells.
func (g *Grid) ZoomOut() { g.SetZoom(g.zoom + ZoomStep) }

// Regenerate rebuilds the batch for a new viewport.
func (g *Grid) Regenerate(view core.Viewport) {
	g.view = view
	g.rebuild()
}

// Batch returns the current batch.
func (g *Grid) Batch() *Batch { return g.batch.Load() }

// Cells returns the cells of the current batch. Callers on the render
// goroutine may mutate them in place.
func (g *Grid) Cells() []Cell { return g.batch.Load().Cells }

func (g *Grid) rebuild() {
	b := g.generate()
	g.batch.Store(b)
	g.log.Debug("lattice regenerated",
		zap.Float64("zoom", b.Zoom),
		zap.Int("rows", b.Window.Rows),
		zap.Int("cols", b.Window.Cols),
		zap.Int("cells", len(b.Cells)),
		zap.Float64("viewport_w", b.Viewport.W),
		zap.Float64("viewport_h", b.Viewport.H))
}

func (g *Grid) generate() *Batch {
	view := g.view
	cw, ch := g.CellSize()
	cx, cy := view.Center()
	ox, oy := lattice.CenterOffset(cx, cy, g.baseW, g.baseH, g.zoom)
	win := g.limits.Bounds(view.W, view.H, g.baseW, g.baseH, g.zoom)
	// The offset puts lattice (0,0) at cx*(1-zoom), up to half a viewport
	// from the centre, so the window follows the anchor's lattice cell.
	if cw > 0 && ch > 0 {
		win = win.Around(int(math.Floor((cy-oy)/ch)), int(math.Floor((cx-ox)/cw)))
	}
	revealed := g.revealComplete.Load()

	b := &Batch{Window: win, Viewport: view, Zoom: g.zoom, OffsetX: ox, OffsetY: oy}
	if view.Empty() {
		return b
	}
	for row := win.StartRow; row < win.EndRow(); row++ {
		y := float64(row)*ch + oy
		// Whole rows outside the expanded viewport are skipped before the
		// per-cell test.
		if y+ch < -ch || y >= view.H+ch {
			continue
		}
		for col := win.StartCol; col < win.EndCol(); col++ {
			x := float64(col)*cw + ox
			if !lattice.NearViewport(x, y, cw, ch, view.W, view.H) {
				continue
			}
			c := NewCell(x, y, cw, ch)
			c.DistanceFromCenter = math.Hypot(x+cw/2-cx, y+ch/2-cy)
			c.Revealed = revealed
			b.Cells = append(b.Cells, c)
		}
	}
	return b
}

// Step resizes every cell from src for the given frame. A nil source leaves
// the cells untouched.
func (g *Grid) Step(src Source, frame int) {
	cells := g.Cells()
	switch s := src.(type) {
	case nil:
	case NoiseSource:
		fr := s.Field.Frame(frame)
		for i := range cells {
			c := &cells[i]
			c.ApplyValue(fr.At(c.Center()), s.Curve)
		}
	case IconSource:
		fr := s.Field.Frame(frame)
		for i := range cells {
			c := &cells[i]
			if s.Mask != nil && !s.Mask.Detailed(c.Bounds()).Visible {
				c.Hide()
				continue
			}
			c.ApplyValue(fr.At(c.Center()), s.Curve)
		}
	case BrightnessSource:
		for i := range cells {
			c := &cells[i]
			sample := s.Sampler.Detailed(c.Bounds())
			if !sample.Visible {
				c.Hide()
				continue
			}
			c.ApplyValue(sample.Brightness, s.Curve)
		}
	default:
		panic(fmt.Sprintf("grid: unknown source %T", src))
	}
}

// Draw hands col to every cell and draws it. It returns the number of paths
// emitted.
func (g *Grid) Draw(p Pen, col color.RGBA) int {
	cells := g.Cells()
	n := 0
	for i := range cells {
		c := &cells[i]
		c.Color = col
		if c.Draw(p) {
			n++
		}
	}
	return n
}

// DrawVisible is Draw restricted to cells whose footprint overlaps the
// viewport. Exports use it so no path lies wholly outside the canvas.
func (g *Grid) DrawVisible(p Pen, col color.RGBA) int {
	b := g.batch.Load()
	n := 0
	for i := range b.Cells {
		c := &b.Cells[i]
		c.Color = col
		x, y, w, h := c.Bounds()
		if !lattice.InViewport(x, y, w, h, b.Viewport.W, b.Viewport.H) {
			continue
		}
		if c.Draw(p) {
			n++
		}
	}
	return n
}

// Count returns the number of cells in the batch.
func (g *Grid) Count() int { return len(g.Cells()) }

// VisibleCount returns the number of cells overlapping the viewport.
func (g *Grid) VisibleCount() int {
	b := g.batch.Load()
	n := 0
	for i := range b.Cells {
		x, y, w, h := b.Cells[i].Bounds()
		if lattice.InViewport(x, y, w, h, b.Viewport.W, b.Viewport.H) {
			n++
		}
	}
	return n
}

// NonZeroCount returns the number of cells overlapping the viewport whose
// height is above zero. Width is ignored.
func (g *Grid) NonZeroCount() int {
	b := g.batch.Load()
	n := 0
	for i := range b.Cells {
		c := &b.Cells[i]
		x, y, w, h := c.Bounds()
		if c.Height > 0 && lattice.InViewport(x, y, w, h, b.Viewport.W, b.Viewport.H) {
			n++
		}
	}
	return n
}

// Counts bundles the cell counters.
type Counts struct {
	Total   int
	Visible int
	NonZero int
}

// Counts returns all three counters.
func (g *Grid) Counts() Counts {
	return Counts{Total: g.Count(), Visible: g.VisibleCount(), NonZero: g.NonZeroCount()}
}

// RevealAll reveals every cell and marks the reveal sequence complete, so
// later batches are created revealed.
func (g *Grid) RevealAll() {
	g.revealComplete.Store(true)
	cells := g.Cells()
	for i := range cells {
		cells[i].Revealed = true
	}
}

// RevealComplete reports whether a reveal sequence has ever finished.
func (g *Grid) RevealComplete() bool { return g.revealComplete.Load() }

// Conceal marks every cell of the current batch unrevealed so a reveal
// sequence can run again. The completion flag is kept.
func (g *Grid) Conceal() {
	cells := g.Cells()
	for i := range cells {
		cells[i].Revealed = false
	}
}

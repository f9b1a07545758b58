package grid

import (
	"image/color"
	"math"
)

// DefaultRoundness is the corner roundness of a fresh cell on both axes.
const DefaultRoundness = 0.9

// Cell is one materialised lattice position.
type Cell struct {
	// X, Y is the top-left corner of the cell footprint in canvas units.
	X, Y float64
	// BaseWidth, BaseHeight is the footprint size.
	BaseWidth, BaseHeight float64
	// Width, Height is the drawn size, each within [0, base].
	Width, Height float64
	// RoundnessX, RoundnessY scale the corner radii on each axis.
	RoundnessX, RoundnessY float64
	// DistanceFromCenter is measured from the cell centre to the viewport
	// centre when the cell is created.
	DistanceFromCenter float64
	// Revealed gates drawing during the reveal sequence.
	Revealed bool
	// Color is the fill last handed to the cell.
	Color color.RGBA
}

// NewCell returns a full-size cell with the default roundness.
func NewCell(x, y, w, h float64) Cell {
	return Cell{
		X: x, Y: y,
		BaseWidth: w, BaseHeight: h,
		Width: w, Height: h,
		RoundnessX: DefaultRoundness, RoundnessY: DefaultRoundness,
	}
}

// Bounds returns the footprint.
func (c *Cell) Bounds() (x, y, w, h float64) { return c.X, c.Y, c.BaseWidth, c.BaseHeight }

// Center returns the centre of the footprint.
func (c *Cell) Center() (float64, float64) {
	return c.X + c.BaseWidth/2, c.Y + c.BaseHeight/2
}

// Apply sets the drawn size from per-axis scale factors, clamped to [0, 1].
func (c *Cell) Apply(wScale, hScale float64) {
	c.Width = c.BaseWidth * clamp01(wScale)
	c.Height = c.BaseHeight * clamp01(hScale)
}

// ApplyValue runs v through curve on both axes.
func (c *Cell) ApplyValue(v float64, curve SamplerConfig) {
	c.Apply(curve.Scales(v))
}

// Hide collapses the cell on both axes.
func (c *Cell) Hide() {
	c.Width, c.Height = 0, 0
}

// Drawable reports whether Draw would emit a path.
func (c *Cell) Drawable() bool {
	return c.Revealed && c.Height > 0 && c.Width > 0 && !math.IsNaN(c.Width) && !math.IsNaN(c.Height)
}

// DrawRect returns the drawn box, centred inside the footprint.
func (c *Cell) DrawRect() (x, y, w, h float64) {
	return c.X + (c.BaseWidth-c.Width)/2, c.Y + (c.BaseHeight-c.Height)/2, c.Width, c.Height
}

// Draw fills the cell's rounded box with its colour. Hidden, unrevealed and
// zero-area cells emit nothing.
func (c *Cell) Draw(p Pen) bool {
	if !c.Drawable() {
		return false
	}
	x, y, w, h := c.DrawRect()
	RoundedRect(p, x, y, w, h, w*c.RoundnessX/2, h*c.RoundnessY/2)
	p.Fill(c.Color)
	return true
}

// RoundedRect traces a closed box with elliptical-looking corners of radii
// rx and ry joined by quadratic curves whose control points sit on the
// box corners.
func RoundedRect(p Pen, x, y, w, h, rx, ry float64) {
	p.MoveTo(x+rx, y)
	p.LineTo(x+w-rx, y)
	p.QuadTo(x+w, y, x+w, y+ry)
	p.LineTo(x+w, y+h-ry)
	p.QuadTo(x+w, y+h, x+w-rx, y+h)
	p.LineTo(x+rx, y+h)
	p.QuadTo(x, y+h, x, y+h-ry)
	p.LineTo(x, y+ry)
	p.QuadTo(x, y, x+rx, y)
	p.ClosePath()
}

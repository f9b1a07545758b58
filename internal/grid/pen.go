package grid

import "image/color"

// Pen is a drawing backend. A cell emits one closed path per draw and fills
// it; every backend must produce the same geometry for the same calls.
type Pen interface {
	MoveTo(x, y float64)
	LineTo(x, y float64)
	// QuadTo draws a quadratic curve through control point (cx, cy) to (x, y).
	QuadTo(cx, cy, x, y float64)
	ClosePath()
	// Fill paints the current path and starts a new one.
	Fill(c color.RGBA)
}

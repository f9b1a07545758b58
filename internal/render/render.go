// Package render replays a grid through concrete drawing backends: an
// anti-aliased raster, an SVG document, the ebiten canvas and a terminal
// preview.
package render

import (
	"image/color"

	"kilo/internal/grid"
	"kilo/internal/palette"
)

// Backend is a Pen that can also paint a background.
type Backend interface {
	grid.Pen
	Background(c color.RGBA)
}

// Scene paints the swatch background and then every drawable cell of g. With
// visibleOnly set, cells wholly outside the viewport are skipped. It returns
// the number of cells drawn.
func Scene(b Backend, g *grid.Grid, sw palette.Swatch, visibleOnly bool) int {
	b.Background(sw.Background)
	if visibleOnly {
		return g.DrawVisible(b, sw.Graphics)
	}
	return g.Draw(b, sw.Graphics)
}

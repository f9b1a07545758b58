package render

import (
	"image"
	"image/color"

	"github.com/gdamore/tcell/v2"
)

// upperHalf draws the top pixel as foreground and the bottom as background,
// packing two rows of pixels into one terminal row.
const upperHalf = '▀'

// Blit copies img onto s using half-block characters. The image should be
// cols x 2*rows pixels; anything larger is cropped.
func Blit(s tcell.Screen, img *image.RGBA) {
	cols, rows := s.Size()
	b := img.Bounds()
	for ty := 0; ty < rows; ty++ {
		top := b.Min.Y + ty*2
		if top >= b.Max.Y {
			break
		}
		for tx := 0; tx < cols && b.Min.X+tx < b.Max.X; tx++ {
			x := b.Min.X + tx
			fg := img.RGBAAt(x, top)
			bg := fg
			if top+1 < b.Max.Y {
				bg = img.RGBAAt(x, top+1)
			}
			style := tcell.StyleDefault.Foreground(tcellColor(fg)).Background(tcellColor(bg))
			s.SetContent(tx, ty, upperHalf, nil, style)
		}
	}
}

// TerminalRaster returns a raster sized so that one pixel maps onto half a
// terminal cell, together with the canvas-to-pixel factor. The canvas is
// fitted inside the terminal preserving its aspect ratio.
func TerminalRaster(cols, rows int, canvasW, canvasH float64) (*Raster, float64) {
	pw, ph := float64(cols), float64(rows*2)
	if canvasW <= 0 || canvasH <= 0 || pw <= 0 || ph <= 0 {
		return NewRaster(0, 0, 1), 0
	}
	k := min(pw/canvasW, ph/canvasH)
	return NewRaster(int(canvasW*k), int(canvasH*k), 1), k
}

// Scaled wraps a pen and multiplies every coordinate by K.
type Scaled struct {
	Backend
	K float64
}

func (s Scaled) MoveTo(x, y float64) { s.Backend.MoveTo(x*s.K, y*s.K) }
func (s Scaled) LineTo(x, y float64) { s.Backend.LineTo(x*s.K, y*s.K) }

func (s Scaled) QuadTo(cx, cy, x, y float64) {
	s.Backend.QuadTo(cx*s.K, cy*s.K, x*s.K, y*s.K)
}

func tcellColor(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

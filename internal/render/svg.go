package render

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"

	svg "github.com/ajstarks/svgo"
)

// SVG is a pen that writes one <path> element per filled cell. Coordinates
// are canvas units rounded to three decimals.
type SVG struct {
	canvas *svg.SVG
	w, h   int
	d      strings.Builder
	paths  int
}

// NewSVG starts a w x h document on out.
func NewSVG(out io.Writer, w, h int) *SVG {
	s := &SVG{canvas: svg.New(out), w: w, h: h}
	s.canvas.Start(w, h, fmt.Sprintf(`viewBox="0 0 %d %d"`, w, h))
	return s
}

// Background writes a full-size rect in c.
func (s *SVG) Background(c color.RGBA) {
	s.canvas.Rect(0, 0, s.w, s.h, "fill:"+rgb(c))
}

func (s *SVG) MoveTo(x, y float64) { s.cmd('M', x, y) }
func (s *SVG) LineTo(x, y float64) { s.cmd('L', x, y) }

func (s *SVG) QuadTo(cx, cy, x, y float64) { s.cmd('Q', cx, cy, x, y) }

func (s *SVG) ClosePath() { s.d.WriteByte('Z') }

// Fill writes the accumulated path.
func (s *SVG) Fill(c color.RGBA) {
	if s.d.Len() == 0 {
		return
	}
	s.canvas.Path(s.d.String(), "fill:"+rgb(c))
	s.d.Reset()
	s.paths++
}

// Paths returns the number of path elements written.
func (s *SVG) Paths() int { return s.paths }

// End closes the document.
func (s *SVG) End() { s.canvas.End() }

func (s *SVG) cmd(op byte, coords ...float64) {
	if s.d.Len() > 0 {
		s.d.WriteByte(' ')
	}
	s.d.WriteByte(op)
	for i, v := range coords {
		if i > 0 {
			s.d.WriteByte(' ')
		}
		s.d.WriteString(formatCoord(v))
	}
}

func formatCoord(v float64) string {
	v = math.Round(v*1000) / 1000
	if v == 0 {
		v = 0 // drop negative zero
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func rgb(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

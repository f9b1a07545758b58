//go:build ebiten

package render

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var whitePixel = func() *ebiten.Image {
	img := ebiten.NewImage(3, 3)
	img.Fill(color.White)
	return img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
}()

// Canvas is a pen that fills paths on an ebiten image.
type Canvas struct {
	dst      *ebiten.Image
	path     vector.Path
	vertices []ebiten.Vertex
	indices  []uint16
}

// NewCanvas returns a Canvas drawing onto dst.
func NewCanvas(dst *ebiten.Image) *Canvas { return &Canvas{dst: dst} }

// Target swaps the destination image, keeping scratch buffers.
func (c *Canvas) Target(dst *ebiten.Image) { c.dst = dst }

// Background fills the destination with col.
func (c *Canvas) Background(col color.RGBA) { c.dst.Fill(col) }

func (c *Canvas) MoveTo(x, y float64) { c.path.MoveTo(float32(x), float32(y)) }
func (c *Canvas) LineTo(x, y float64) { c.path.LineTo(float32(x), float32(y)) }

func (c *Canvas) QuadTo(cx, cy, x, y float64) {
	c.path.QuadTo(float32(cx), float32(cy), float32(x), float32(y))
}

func (c *Canvas) ClosePath() { c.path.Close() }

// Fill triangulates the accumulated path and draws it in col.
func (c *Canvas) Fill(col color.RGBA) {
	c.vertices, c.indices = c.path.AppendVerticesAndIndicesForFilling(c.vertices[:0], c.indices[:0])
	r, g, b, a := float32(col.R)/0xff, float32(col.G)/0xff, float32(col.B)/0xff, float32(col.A)/0xff
	for i := range c.vertices {
		v := &c.vertices[i]
		v.SrcX, v.SrcY = 1, 1
		v.ColorR, v.ColorG, v.ColorB, v.ColorA = r, g, b, a
	}
	c.dst.DrawTriangles(c.vertices, c.indices, whitePixel, &ebiten.DrawTrianglesOptions{
		FillRule:  ebiten.EvenOdd,
		AntiAlias: true,
	})
	c.path = vector.Path{}
}

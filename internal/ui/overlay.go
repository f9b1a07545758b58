//go:build ebiten

package ui

import (
	"image/color"
	"math"

	"kilo/internal/render"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

// maskThreshold is the alpha above which a pixel counts as ink in the mask
// preview.
const maskThreshold = 0.1

// Overlay draws optional debugging visuals on top of the canvas.
type Overlay struct {
	session Session

	visible        bool
	showMask       bool
	showReveal     bool
	showFootprints bool

	maskImg *ebiten.Image
	maskBuf []byte
	pixel   *ebiten.Image
}

// NewOverlay constructs a new overlay instance.
func NewOverlay(s Session) *Overlay {
	o := &Overlay{session: s, showMask: true, showReveal: true}
	o.pixel = ebiten.NewImage(1, 1)
	o.pixel.Fill(color.White)
	return o
}

// Update handles the overlay toggles.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyO) {
		o.visible = !o.visible
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit1) {
		o.showMask = !o.showMask
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit2) {
		o.showReveal = !o.showReveal
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit3) {
		o.showFootprints = !o.showFootprints
	}
}

// Draw renders the overlay onto screen. The image prompt is shown whenever an
// image mode has nothing to sample, even with the overlay hidden.
func (o *Overlay) Draw(screen *ebiten.Image) {
	view := o.session.Canvas()
	if view.Empty() {
		return
	}
	if o.session.NeedsImage() {
		o.drawNotice(screen, "Select an image: drop a PNG, JPEG, GIF or SVG here")
	}
	if !o.visible {
		return
	}
	if o.showMask {
		o.drawMask(screen, color.RGBA{R: 255, G: 64, B: 160, A: 110})
	}
	if o.showFootprints {
		o.drawFootprints(screen)
	}
	if o.showReveal {
		o.drawReveal(screen)
	}
}

func (o *Overlay) drawMask(screen *ebiten.Image, tint color.RGBA) {
	p := o.session.Processed()
	if p == nil || !o.session.Mode().UsesImage() {
		return
	}
	total := p.Width * p.Height
	if total == 0 {
		return
	}
	if o.maskImg == nil || o.maskImg.Bounds().Dx() != p.Width || o.maskImg.Bounds().Dy() != p.Height {
		o.maskImg = ebiten.NewImage(p.Width, p.Height)
		o.maskBuf = make([]byte, 4*total)
	}
	render.MaskRGBA(o.maskBuf, p, maskThreshold, tint, color.RGBA{})
	o.maskImg.WritePixels(o.maskBuf)
	screen.DrawImage(o.maskImg, &ebiten.DrawImageOptions{})
}

// drawReveal marks the canvas centre and, while the reveal sequence runs, the
// circle inside which cells may appear.
func (o *Overlay) drawReveal(screen *ebiten.Image) {
	view := o.session.Canvas()
	cx, cy := view.Center()
	col := color.RGBA{R: 90, G: 200, B: 255, A: 200}
	o.drawLine(screen, cx-8, cy, cx+8, cy, 1.5, col)
	o.drawLine(screen, cx, cy-8, cx, cy+8, 1.5, col)

	r := o.session.Reveal()
	if !r.Active() {
		return
	}
	radius := r.Radius(view)
	if radius <= 0 {
		return
	}
	const segments = 96
	for i := 0; i < segments; i++ {
		a0 := 2 * math.Pi * float64(i) / segments
		a1 := 2 * math.Pi * float64(i+1) / segments
		o.drawLine(screen,
			cx+math.Cos(a0)*radius, cy+math.Sin(a0)*radius,
			cx+math.Cos(a1)*radius, cy+math.Sin(a1)*radius,
			1.5, col)
	}
}

// drawFootprints outlines every cell footprint that overlaps the canvas.
func (o *Overlay) drawFootprints(screen *ebiten.Image) {
	view := o.session.Canvas()
	col := color.RGBA{R: 255, G: 255, B: 255, A: 60}
	cells := o.session.Grid().Cells()
	for i := range cells {
		x, y, w, h := cells[i].Bounds()
		if x+w < 0 || y+h < 0 || x > view.W || y > view.H {
			continue
		}
		o.drawLine(screen, x, y, x+w, y, 1, col)
		o.drawLine(screen, x, y, x, y+h, 1, col)
	}
}

func (o *Overlay) drawNotice(screen *ebiten.Image, msg string) {
	view := o.session.Canvas()
	face := basicfont.Face7x13
	b := text.BoundString(face, msg)
	pad := 10.0
	w, h := float64(b.Dx())+2*pad, float64(b.Dy())+2*pad
	x, y := view.W/2-w/2, view.H/2-h/2
	o.drawRect(screen, x, y, w, h, color.RGBA{R: 16, G: 16, B: 20, A: 220})
	text.Draw(screen, msg, face, int(x+pad), int(y+pad)+b.Dy(), color.RGBA{R: 230, G: 230, B: 240, A: 255})
}

func (o *Overlay) drawRect(screen *ebiten.Image, x, y, w, h float64, col color.RGBA) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(w, h)
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(col)
	screen.DrawImage(o.pixel, op)
}

func (o *Overlay) drawLine(screen *ebiten.Image, x1, y1, x2, y2, thickness float64, col color.RGBA) {
	if o.pixel == nil || thickness <= 0 {
		return
	}
	dx := x2 - x1
	dy := y2 - y1
	length := math.Hypot(dx, dy)
	if length <= 1e-4 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(length, thickness)
	op.GeoM.Translate(0, -thickness/2)
	op.GeoM.Rotate(math.Atan2(dy, dx))
	op.GeoM.Translate(x1, y1)
	op.ColorScale.ScaleWithColor(col)
	screen.DrawImage(o.pixel, op)
}

package sampler

import (
	"image"
	"math"

	"golang.org/x/image/draw"

	"kilo/internal/core"
)

// CanvasLongSide is the long edge of a canvas sized to an uploaded image.
const CanvasLongSide = 1000.0

// Placement is where the scaled source image sits on the canvas.
type Placement struct {
	X, Y, W, H float64
}

// Fit scales an image of imgW x imgH to fit inside the canvas without
// cropping, preserving its aspect ratio, and centres it.
func Fit(imgW, imgH, canvasW, canvasH float64) Placement {
	if imgW <= 0 || imgH <= 0 || canvasW <= 0 || canvasH <= 0 {
		return Placement{}
	}
	imageAspect := imgW / imgH
	canvasAspect := canvasW / canvasH
	if imageAspect > canvasAspect {
		w := canvasW
		h := w / imageAspect
		return Placement{X: 0, Y: (canvasH - h) / 2, W: w, H: h}
	}
	h := canvasH
	w := h * imageAspect
	return Placement{X: (canvasW - w) / 2, Y: 0, W: w, H: h}
}

// CanvasFor returns a canvas with the image's aspect ratio whose long side is
// longSide.
func CanvasFor(imgW, imgH int, longSide float64) core.Viewport {
	if imgW <= 0 || imgH <= 0 {
		return core.Viewport{}
	}
	aspect := float64(imgW) / float64(imgH)
	if aspect >= 1 {
		return core.Viewport{W: longSide, H: math.Round(longSide / aspect)}
	}
	return core.Viewport{W: math.Round(longSide * aspect), H: longSide}
}

// Processed is an uploaded image redrawn at canvas size. It is never mutated
// after Process returns.
type Processed struct {
	Pix       *image.NRGBA
	Width     int
	Height    int
	Placement Placement
}

// Process draws src onto a transparent canvas-sized buffer using Fit.
func Process(src image.Image, canvas core.Viewport) (*Processed, error) {
	if src == nil {
		return nil, ErrEmptyImage
	}
	w, h := canvas.Pixels()
	sb := src.Bounds()
	if w <= 0 || h <= 0 || sb.Dx() <= 0 || sb.Dy() <= 0 {
		return nil, ErrEmptyImage
	}
	place := Fit(float64(sb.Dx()), float64(sb.Dy()), float64(w), float64(h))
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	dr := image.Rect(
		int(math.Round(place.X)),
		int(math.Round(place.Y)),
		int(math.Round(place.X+place.W)),
		int(math.Round(place.Y+place.H)),
	)
	draw.ApproxBiLinear.Scale(dst, dr, src, sb, draw.Src, nil)
	return &Processed{Pix: dst, Width: w, Height: h, Placement: place}, nil
}

// RGBA returns the raw channels of the pixel nearest to (x, y), clamped to the
// buffer. Coordinates round half up.
func (p *Processed) RGBA(x, y float64) (r, g, b, a uint8) {
	i := p.offset(x, y)
	px := p.Pix.Pix[i : i+4 : i+4]
	return px[0], px[1], px[2], px[3]
}

func (p *Processed) index(x, y float64) int {
	ix := clampInt(int(math.Floor(x+0.5)), 0, p.Width-1)
	iy := clampInt(int(math.Floor(y+0.5)), 0, p.Height-1)
	return iy*p.Width + ix
}

func (p *Processed) offset(x, y float64) int {
	i := p.index(x, y)
	return p.Pix.PixOffset(i%p.Width, i/p.Width)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

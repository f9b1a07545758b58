package render

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/vector"
)

// Raster is an anti-aliased pen that draws into an RGBA image. Canvas
// coordinates are multiplied by Scale.
type Raster struct {
	img   *image.RGBA
	z     vector.Rasterizer
	scale float32
	src   image.Uniform

	// The open path is buffered so Fill can size the rasterizer to its
	// bounding box instead of the whole image.
	path                   []pathOp
	boxed                  bool
	minX, minY, maxX, maxY float32
}

type pathOp struct {
	kind byte
	p    [4]float32
}

// NewRaster returns a Raster for a w x h canvas drawn at an integer scale.
func NewRaster(w, h, scale int) *Raster {
	if scale < 1 {
		scale = 1
	}
	pw, ph := max(w*scale, 0), max(h*scale, 0)
	return &Raster{
		img:   image.NewRGBA(image.Rect(0, 0, pw, ph)),
		scale: float32(scale),
	}
}

// Image returns the target image.
func (r *Raster) Image() *image.RGBA { return r.img }

// Background fills the whole image with c.
func (r *Raster) Background(c color.RGBA) { fillSolidRGBA(r.img.Pix, c) }

func (r *Raster) MoveTo(x, y float64) { r.add('M', r.pt(x), r.pt(y)) }
func (r *Raster) LineTo(x, y float64) { r.add('L', r.pt(x), r.pt(y)) }

// QuadTo bounds the curve by its control point, which the curve never
// leaves the hull of.
func (r *Raster) QuadTo(cx, cy, x, y float64) {
	r.add('Q', r.pt(cx), r.pt(cy), r.pt(x), r.pt(y))
}

func (r *Raster) ClosePath() { r.path = append(r.path, pathOp{kind: 'Z'}) }

// Fill composites the buffered path over the part of the image it covers
// and starts a new path.
func (r *Raster) Fill(c color.RGBA) {
	defer r.clear()
	if !r.boxed {
		return
	}
	box := image.Rect(
		int(math.Floor(float64(r.minX))), int(math.Floor(float64(r.minY))),
		int(math.Ceil(float64(r.maxX))), int(math.Ceil(float64(r.maxY))),
	).Intersect(r.img.Bounds())
	if box.Empty() {
		return
	}

	dx, dy := float32(box.Min.X), float32(box.Min.Y)
	r.z.Reset(box.Dx(), box.Dy())
	for _, op := range r.path {
		p := op.p
		switch op.kind {
		case 'M':
			r.z.MoveTo(p[0]-dx, p[1]-dy)
		case 'L':
			r.z.LineTo(p[0]-dx, p[1]-dy)
		case 'Q':
			r.z.QuadTo(p[0]-dx, p[1]-dy, p[2]-dx, p[3]-dy)
		case 'Z':
			r.z.ClosePath()
		}
	}
	r.src.C = c
	r.z.Draw(r.img, box, &r.src, image.Point{})
}

func (r *Raster) add(kind byte, pts ...float32) {
	op := pathOp{kind: kind}
	copy(op.p[:], pts)
	if !r.boxed {
		r.minX, r.maxX = pts[0], pts[0]
		r.minY, r.maxY = pts[1], pts[1]
		r.boxed = true
	}
	for i := 0; i+1 < len(pts); i += 2 {
		r.minX, r.maxX = min(r.minX, pts[i]), max(r.maxX, pts[i])
		r.minY, r.maxY = min(r.minY, pts[i+1]), max(r.maxY, pts[i+1])
	}
	r.path = append(r.path, op)
}

func (r *Raster) clear() {
	r.path = r.path[:0]
	r.boxed = false
}

func (r *Raster) pt(v float64) float32 { return float32(v) * r.scale }

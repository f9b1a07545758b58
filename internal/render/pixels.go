package render

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"kilo/internal/palette"
	"kilo/internal/sampler"
)

// RampLevels is the number of colours in a Quantize palette.
const RampLevels = 16

// fillSolidRGBA paints every pixel of buf with c.
func fillSolidRGBA(buf []byte, c color.RGBA) {
	for base := 0; base+3 < len(buf); base += 4 {
		buf[base+0] = c.R
		buf[base+1] = c.G
		buf[base+2] = c.B
		buf[base+3] = c.A
	}
}

// MaskRGBA converts a processed image into a two-colour preview of its alpha
// mask: pixels above threshold become on, the rest off. buf must hold
// 4*Width*Height bytes.
func MaskRGBA(buf []byte, p *sampler.Processed, threshold float64, on, off color.RGBA) {
	if p == nil {
		fillSolidRGBA(buf, off)
		return
	}
	cut := uint8(threshold * 255)
	for y := 0; y < p.Height; y++ {
		row := p.Pix.Pix[y*p.Pix.Stride:]
		for x := 0; x < p.Width; x++ {
			base := (y*p.Width + x) * 4
			if base+3 >= len(buf) {
				return
			}
			col := off
			if row[x*4+3] > cut {
				col = on
			}
			buf[base+0] = col.R
			buf[base+1] = col.G
			buf[base+2] = col.B
			buf[base+3] = col.A
		}
	}
}

// Ramp returns n colours blending from sw.Background to sw.Graphics. Both
// ends are exact.
func Ramp(sw palette.Swatch, n int) color.Palette {
	if n < 2 {
		n = 2
	}
	p := make(color.Palette, n)
	for i := range p {
		t := float64(i) / float64(n-1)
		p[i] = color.RGBA{
			R: lerp8(sw.Background.R, sw.Graphics.R, t),
			G: lerp8(sw.Background.G, sw.Graphics.G, t),
			B: lerp8(sw.Background.B, sw.Graphics.B, t),
			A: lerp8(sw.Background.A, sw.Graphics.A, t),
		}
	}
	return p
}

func lerp8(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
}

// Quantize maps a two-colour render onto a RampLevels palette between the
// swatch colours. Anti-aliased edges land on the nearest blend, so a frame
// keeps its look at a quarter of the memory.
func Quantize(img *image.RGBA, sw palette.Swatch) *image.Paletted {
	dst := image.NewPaletted(img.Bounds(), Ramp(sw, RampLevels))
	draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Src)
	return dst
}

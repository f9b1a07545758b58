// Package palette holds the background/graphics colour pairs cells are drawn
// with.
package palette

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/hsluv/hsluv-go"
)

// Swatch is one background/graphics colour pair.
type Swatch struct {
	Background color.RGBA
	Graphics   color.RGBA
}

// DefaultIndex is the swatch a fresh session starts with.
const DefaultIndex = 6

var hexSwatches = [][2]string{
	{"#FFFFFF", "#3FF478"},
	{"#FFFFFF", "#55E0FF"},
	{"#FFFFFF", "#EDC9FF"},
	{"#E3F255", "#3FF478"},
	{"#E3F255", "#FF4D12"},
	{"#E3F255", "#B029FF"},
	{"#3FF478", "#E6F3DB"},
	{"#3FF478", "#E3F255"},
	{"#3FF478", "#FF4D12"},
	{"#E6F3DB", "#3FF478"},
	{"#E6F3DB", "#FF4D12"},
	{"#E6F3DB", "#B029FF"},
	{"#E6F3DB", "#55E0FF"},
	{"#FF4D12", "#E3F255"},
	{"#FF4D12", "#EDC9FF"},
	{"#55E0FF", "#E3F255"},
	{"#EDC9FF", "#B029FF"},
	{"#EDC9FF", "#FF4D12"},
	{"#B029FF", "#E3F255"},
	{"#FFFFFF", "#000000"},
	{"#000000", "#FFFFFF"},
}

// Swatches lists the built-in swatches.
var Swatches = func() []Swatch {
	out := make([]Swatch, len(hexSwatches))
	for i, pair := range hexSwatches {
		out[i] = Swatch{Background: MustHex(pair[0]), Graphics: MustHex(pair[1])}
	}
	return out
}()

// Default returns the default swatch.
func Default() Swatch { return Swatches[DefaultIndex] }

// At returns swatch i, wrapping around in both directions.
func At(i int) Swatch {
	n := len(Swatches)
	return Swatches[((i%n)+n)%n]
}

// ParseHex parses "#RRGGBB" or "RRGGBB" into an opaque colour.
func ParseHex(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("palette: %q is not a 6-digit hex colour", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("palette: parse %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// MustHex is ParseHex for constants.
func MustHex(s string) color.RGBA {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex formats c as "#RRGGBB".
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// FromHue builds a swatch from an HSLuv hue in degrees: a pale background and
// a saturated graphics colour of the same hue.
func FromHue(hue float64) Swatch {
	hue = math.Mod(hue, 360)
	if hue < 0 {
		hue += 360
	}
	return Swatch{
		Background: hsluvRGBA(hue, 60, 92),
		Graphics:   hsluvRGBA(hue, 90, 55),
	}
}

func hsluvRGBA(h, s, l float64) color.RGBA {
	r, g, b := hsluv.HsluvToRGB(h, s, l)
	return color.RGBA{
		R: channel(r),
		G: channel(g),
		B: channel(b),
		A: 0xff,
	}
}

func channel(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 0xff))
}

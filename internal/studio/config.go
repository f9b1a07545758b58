package studio

import (
	"kilo/internal/core"
	"kilo/internal/export"
	"kilo/internal/grid"
	"kilo/internal/lattice"
	"kilo/internal/noise"
	"kilo/internal/palette"
	"kilo/internal/sampler"
)

// DefaultCanvas is the canvas used in noise mode and before an image loads.
var DefaultCanvas = core.Viewport{W: sampler.CanvasLongSide, H: sampler.CanvasLongSide}

// Config gathers the starting state of a session.
type Config struct {
	Mode   core.Mode
	Canvas core.Viewport
	Zoom   float64
	Seed   int64

	// Swatch indexes palette.Swatches. It is ignored when UseHue is set.
	Swatch int
	Hue    float64
	UseHue bool

	Noise           noise.Config
	NoiseCurve      grid.SamplerConfig
	BrightnessCurve grid.SamplerConfig
	Brightness      sampler.BrightnessConfig
	Icon            sampler.IconConfig

	// Reveal runs the reveal sequence on start. Headless sessions leave it
	// off and start fully revealed.
	Reveal bool

	PNGScale int
	FPS      int
}

// DefaultConfig returns the standard session configuration.
func DefaultConfig() Config {
	return Config{
		Mode:            core.ModeNoise,
		Canvas:          DefaultCanvas,
		Zoom:            lattice.DefaultZoom,
		Swatch:          palette.DefaultIndex,
		Noise:           noise.DefaultConfig(),
		NoiseCurve:      grid.DefaultNoiseCurve(),
		BrightnessCurve: grid.DefaultBrightnessCurve(),
		Brightness:      sampler.DefaultBrightnessConfig(),
		Icon:            sampler.DefaultIconConfig(),
		PNGScale:        export.DefaultPNGScale,
		FPS:             export.DefaultFPS,
	}
}

func (c Config) swatch() palette.Swatch {
	if c.UseHue {
		return palette.FromHue(c.Hue)
	}
	return palette.At(c.Swatch)
}

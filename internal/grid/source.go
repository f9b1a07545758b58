package grid

import (
	"kilo/internal/noise"
	"kilo/internal/sampler"
)

// Source is the data that drives cell sizes for one frame. It is a closed set:
// NoiseSource, IconSource or BrightnessSource.
type Source interface {
	source()
}

// NoiseSource sizes cells from the noise field.
type NoiseSource struct {
	Field *noise.Field
	Curve SamplerConfig
}

// IconSource sizes cells from the noise field and hides the cells the icon
// masks out. A nil Mask or a mask without an image hides nothing.
type IconSource struct {
	Field *noise.Field
	Curve SamplerConfig
	Mask  *sampler.Icon
}

// BrightnessSource sizes cells from image luminance. Noise is not consulted.
type BrightnessSource struct {
	Sampler *sampler.Brightness
	Curve   SamplerConfig
}

func (NoiseSource) source()      {}
func (IconSource) source()       {}
func (BrightnessSource) source() {}

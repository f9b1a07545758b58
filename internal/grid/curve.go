package grid

import (
	"math"
	"strconv"
)

// Axis selects which cell dimension a curve drives. Width never collapses
// below its minimum; height drops to zero under the threshold and is the
// signal that hides a cell.
type Axis uint8

const (
	AxisWidth Axis = iota
	AxisHeight
)

// Continuous maps v through the threshold window [t, u] onto [lo, hi]
// linearly. Below t width yields lo and height yields 0; height at exactly t
// is also 0. At or above u both yield hi.
func Continuous(v, t, u, lo, hi float64, axis Axis) float64 {
	if below(v, t, axis) {
		return floor(lo, axis)
	}
	if v >= u {
		return hi
	}
	return lo + (v-t)/(u-t)*(hi-lo)
}

// Discrete is Continuous with the interior quantised into steps equal
// buckets. Bucket k of steps maps to lo + (k+1)/steps*(hi-lo). A step count
// below one is treated as one.
func Discrete(v, t, u, lo, hi float64, steps int, axis Axis) float64 {
	if below(v, t, axis) {
		return floor(lo, axis)
	}
	if v >= u {
		return hi
	}
	if steps < 1 {
		steps = 1
	}
	remap := math.Max(0, math.Min(1, (v-t)/(u-t)))
	bucket := min(int(math.Floor(remap*float64(steps))), steps-1)
	progress := float64(bucket+1) / float64(steps)
	return lo + progress*(hi-lo)
}

func below(v, t float64, axis Axis) bool {
	if axis == AxisHeight {
		return v <= t
	}
	return v < t
}

func floor(lo float64, axis Axis) float64 {
	if axis == AxisHeight {
		return 0
	}
	return lo
}

// SamplerConfig is the curve configuration shared by the noise and image
// sources.
type SamplerConfig struct {
	Threshold        float64
	UpperThreshold   float64
	HeightSteps      int
	UseDiscreteSteps bool
	WidthMinScale    float64
	WidthMaxScale    float64
	HeightMinScale   float64
	HeightMaxScale   float64
}

// DefaultNoiseCurve returns the standard curve for noise and icon modes.
func DefaultNoiseCurve() SamplerConfig {
	return SamplerConfig{
		Threshold:        0.5,
		UpperThreshold:   0.7,
		HeightSteps:      2,
		UseDiscreteSteps: true,
		WidthMinScale:    0.5,
		WidthMaxScale:    1.0,
		HeightMinScale:   0.1,
		HeightMaxScale:   1.0,
	}
}

// DefaultBrightnessCurve returns the standard curve for brightness mode.
func DefaultBrightnessCurve() SamplerConfig {
	return SamplerConfig{
		Threshold:        0.2,
		UpperThreshold:   0.8,
		HeightSteps:      5,
		UseDiscreteSteps: true,
		WidthMinScale:    0.2,
		WidthMaxScale:    1.0,
		HeightMinScale:   0.1,
		HeightMaxScale:   1.0,
	}
}

// Sanitize clamps both thresholds into [0, 1], raises UpperThreshold to
// Threshold when they are inverted and forces at least one step.
func (c SamplerConfig) Sanitize() SamplerConfig {
	c.Threshold = clamp01(c.Threshold)
	c.UpperThreshold = clamp01(c.UpperThreshold)
	if c.UpperThreshold < c.Threshold {
		c.UpperThreshold = c.Threshold
	}
	if c.HeightSteps < 1 {
		c.HeightSteps = 1
	}
	return c
}

// Scale evaluates the curve for one axis.
func (c SamplerConfig) Scale(v float64, axis Axis) float64 {
	lo, hi := c.WidthMinScale, c.WidthMaxScale
	if axis == AxisHeight {
		lo, hi = c.HeightMinScale, c.HeightMaxScale
	}
	if c.UseDiscreteSteps {
		return Discrete(v, c.Threshold, c.UpperThreshold, lo, hi, c.HeightSteps, axis)
	}
	return Continuous(v, c.Threshold, c.UpperThreshold, lo, hi, axis)
}

// Scales evaluates both axes.
func (c SamplerConfig) Scales(v float64) (w, h float64) {
	return c.Scale(v, AxisWidth), c.Scale(v, AxisHeight)
}

// FromMap overrides fields of c from key/value pairs. Unknown keys and
// unparsable values are ignored.
func (c SamplerConfig) FromMap(cfg map[string]string) SamplerConfig {
	floats := map[string]*float64{
		"threshold":       &c.Threshold,
		"upper_threshold": &c.UpperThreshold,
		"width_min":       &c.WidthMinScale,
		"width_max":       &c.WidthMaxScale,
		"height_min":      &c.HeightMinScale,
		"height_max":      &c.HeightMaxScale,
	}
	for key, dst := range floats {
		if v, ok := cfg[key]; ok {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 && parsed <= 1 {
				*dst = parsed
			}
		}
	}
	if v, ok := cfg["steps"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.HeightSteps = parsed
		}
	}
	if v, ok := cfg["discrete"]; ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			c.UseDiscreteSteps = parsed
		}
	}
	return c
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

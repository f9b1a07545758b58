package noise

import (
	"math"
	"strconv"
)

// Config holds the spatial and temporal parameters of the noise field.
type Config struct {
	// Scale multiplies every coordinate before sampling.
	Scale float64
	// ZOffset is the centre of the circular time path on the z axis.
	ZOffset float64
	// AnimationRange is the diameter of the circular time path.
	AnimationRange float64
	// LoopDuration is the number of frames in one full loop.
	LoopDuration int
	// Speed multiplies the frame index before it is wrapped into the loop.
	Speed float64
	// Animate enables the time path. When false the field is frozen at
	// (ZOffset, 0).
	Animate bool
	// Seed selects the noise permutation.
	Seed int64
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Scale:          0.01,
		ZOffset:        0,
		AnimationRange: 100,
		LoopDuration:   300,
		Speed:          1,
		Animate:        false,
		Seed:           0,
	}
}

// FromMap populates a Config from a string map (flag-style key/value pairs).
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if v, ok := cfg["scale"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
			c.Scale = parsed
		}
	}
	if v, ok := cfg["z_offset"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			c.ZOffset = parsed
		}
	}
	if v, ok := cfg["animation_range"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 {
			c.AnimationRange = parsed
		}
	}
	if v, ok := cfg["loop"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.LoopDuration = parsed
		}
	}
	if v, ok := cfg["speed"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 {
			c.Speed = parsed
		}
	}
	if v, ok := cfg["animate"]; ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			c.Animate = parsed
		}
	}
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}
	return c
}

// Coords returns the (z, w) position on the circular time path for frame.
// The path closes exactly after LoopDuration frames at Speed 1, so a loop
// exported frame by frame has no seam.
func (c Config) Coords(frame int) (z, w float64) {
	if !c.Animate || c.LoopDuration <= 0 {
		return c.ZOffset, 0
	}
	loop := float64(c.LoopDuration)
	progress := math.Mod(float64(frame)*c.Speed, loop) / loop
	angle := progress * math.Pi * 2
	radius := c.AnimationRange / 2
	return c.ZOffset + math.Cos(angle)*radius, math.Sin(angle) * radius
}

// Package noise samples a seeded 4D OpenSimplex field along a closed time
// path, so animations built from it loop seamlessly.
package noise

import "github.com/ojrac/opensimplex-go"

// Field is a deterministic 4D noise sampler.
type Field struct {
	cfg Config
	src opensimplex.Noise
}

// New builds a Field for cfg.
func New(cfg Config) *Field {
	return &Field{cfg: cfg, src: opensimplex.New(cfg.Seed)}
}

// Config returns the field configuration.
func (f *Field) Config() Config { return f.cfg }

// SetConfig replaces the configuration, reseeding only when the seed changed.
func (f *Field) SetConfig(cfg Config) {
	if cfg.Seed != f.cfg.Seed {
		f.src = opensimplex.New(cfg.Seed)
	}
	f.cfg = cfg
}

// Sample evaluates the field at (x, y, z, w) multiplied by scale and maps the
// result from [-1, 1] to [0, 1].
func (f *Field) Sample(x, y, z, w, scale float64) float64 {
	v := (f.src.Eval4(x*scale, y*scale, z*scale, w*scale) + 1) * 0.5
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// At samples the canvas point (x, y) at the given frame of the time path.
func (f *Field) At(x, y float64, frame int) float64 {
	z, w := f.cfg.Coords(frame)
	return f.Sample(x, y, z, w, f.cfg.Scale)
}

// Frame pins the time path at one frame so a whole batch of cells can be
// sampled without recomputing the trigonometry per cell.
type Frame struct {
	f    *Field
	z, w float64
}

// Frame returns a sampler fixed at frame.
func (f *Field) Frame(frame int) Frame {
	z, w := f.cfg.Coords(frame)
	return Frame{f: f, z: z, w: w}
}

// At samples the canvas point (x, y).
func (fr Frame) At(x, y float64) float64 {
	return fr.f.Sample(x, y, fr.z, fr.w, fr.f.cfg.Scale)
}

// Coords returns the pinned time-path coordinates.
func (fr Frame) Coords() (z, w float64) { return fr.z, fr.w }

package sampler

import (
	"strconv"
	"sync/atomic"

	"go.uber.org/zap"
)

// NoImageBrightness is reported for every footprint when no image is loaded.
const NoImageBrightness = 0.5

// BrightnessConfig holds the adjustments applied to image luminance.
type BrightnessConfig struct {
	// Brightness is added to the luma, typically in [-1, 1].
	Brightness float64
	// Contrast scales the luma around 0.5.
	Contrast float64
	// Invert flips the adjusted luma.
	Invert bool
	// AlphaThreshold is the alpha at or below which a pixel is transparent.
	AlphaThreshold float64
}

// DefaultBrightnessConfig returns the standard adjustments.
func DefaultBrightnessConfig() BrightnessConfig {
	return BrightnessConfig{Brightness: 0, Contrast: 1, Invert: false, AlphaThreshold: 0.1}
}

// BrightnessConfigFromMap populates a BrightnessConfig from key/value pairs.
func BrightnessConfigFromMap(cfg map[string]string) BrightnessConfig {
	c := DefaultBrightnessConfig()
	if v, ok := cfg["brightness"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			c.Brightness = parsed
		}
	}
	if v, ok := cfg["contrast"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 {
			c.Contrast = parsed
		}
	}
	if v, ok := cfg["invert"]; ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			c.Invert = parsed
		}
	}
	if v, ok := cfg["alpha_threshold"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 && parsed <= 1 {
			c.AlphaThreshold = parsed
		}
	}
	return c
}

func (c BrightnessConfig) sameAdjustment(o BrightnessConfig) bool {
	return c.Brightness == o.Brightness && c.Contrast == o.Contrast && c.Invert == o.Invert
}

// Luma returns the adjusted brightness of one pixel in [0, 1].
func (c BrightnessConfig) Luma(r, g, b uint8) float64 {
	v := (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 255
	v += c.Brightness
	v = (v-0.5)*c.Contrast + 0.5
	if c.Invert {
		v = 1 - v
	}
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// BrightnessSample is the verdict for one footprint.
type BrightnessSample struct {
	Visible         bool
	Brightness      float64
	Alpha           float64
	AvgAlpha        float64
	VisibilityRatio float64
}

type brightnessState struct {
	img  *Processed
	cfg  BrightnessConfig
	luma []float32
}

// Brightness samples the luminance of an uploaded image. The per-pixel luma
// buffer is rebuilt only when the image or an adjustment changes.
type Brightness struct {
	state atomic.Pointer[brightnessState]
	log   *zap.Logger
}

// NewBrightness returns a brightness sampler with no image loaded.
func NewBrightness(cfg BrightnessConfig, opts ...Option) *Brightness {
	o := buildOptions(opts)
	s := &Brightness{log: o.log}
	s.state.Store(&brightnessState{cfg: cfg})
	return s
}

// Load installs a processed image and derives its luma buffer.
func (s *Brightness) Load(p *Processed) {
	cur := s.state.Load()
	next := &brightnessState{img: p, cfg: cur.cfg}
	if p != nil {
		next.luma = extractLuma(p, cur.cfg)
		s.log.Debug("brightness image loaded", zap.Int("width", p.Width), zap.Int("height", p.Height))
	}
	s.state.Store(next)
}

// Clear drops the image.
func (s *Brightness) Clear() { s.Load(nil) }

// HasImage reports whether an image is loaded.
func (s *Brightness) HasImage() bool { return s.state.Load().img != nil }

// Image returns the loaded image or nil.
func (s *Brightness) Image() *Processed { return s.state.Load().img }

// Config returns the current adjustments.
func (s *Brightness) Config() BrightnessConfig { return s.state.Load().cfg }

// SetConfig replaces the adjustments. It reports whether the luma buffer had
// to be rebuilt.
func (s *Brightness) SetConfig(cfg BrightnessConfig) bool {
	cur := s.state.Load()
	next := &brightnessState{img: cur.img, cfg: cfg, luma: cur.luma}
	rebuilt := false
	if cur.img != nil && !cfg.sameAdjustment(cur.cfg) {
		next.luma = extractLuma(cur.img, cfg)
		rebuilt = true
		s.log.Debug("brightness buffer rebuilt",
			zap.Float64("brightness", cfg.Brightness),
			zap.Float64("contrast", cfg.Contrast),
			zap.Bool("invert", cfg.Invert))
	}
	s.state.Store(next)
	return rebuilt
}

// Point samples the pixel at the centre of the footprint.
func (s *Brightness) Point(x, y, w, h float64) BrightnessSample {
	st := s.state.Load()
	if st.img == nil {
		return BrightnessSample{Visible: true, Brightness: NoImageBrightness}
	}
	cx, cy := x+w/2, y+h/2
	_, _, _, a := st.img.RGBA(cx, cy)
	alpha := float64(a) / 255
	out := BrightnessSample{
		Visible:    alpha > st.cfg.AlphaThreshold,
		Brightness: float64(st.luma[st.img.index(cx, cy)]),
		Alpha:      alpha,
		AvgAlpha:   alpha,
	}
	if out.Visible {
		out.VisibilityRatio = 1
	}
	return out
}

// Detailed samples a 3x3 grid spread over the footprint and averages the
// brightness. The footprint is visible if any sample passes the alpha
// threshold or more than 30% of them do.
func (s *Brightness) Detailed(x, y, w, h float64) BrightnessSample {
	st := s.state.Load()
	if st.img == nil {
		return BrightnessSample{Visible: true, Brightness: NoImageBrightness}
	}
	var visible int
	var totalLuma, totalAlpha, maxAlpha float64
	for sx := 0; sx < SampleGrid; sx++ {
		for sy := 0; sy < SampleGrid; sy++ {
			px := x + w*(float64(sx)+0.5)/SampleGrid
			py := y + h*(float64(sy)+0.5)/SampleGrid
			_, _, _, a := st.img.RGBA(px, py)
			alpha := float64(a) / 255
			totalLuma += float64(st.luma[st.img.index(px, py)])
			totalAlpha += alpha
			maxAlpha = max(maxAlpha, alpha)
			if alpha > st.cfg.AlphaThreshold {
				visible++
			}
		}
	}
	const n = SampleGrid * SampleGrid
	out := BrightnessSample{
		Brightness:      totalLuma / n,
		Alpha:           maxAlpha,
		AvgAlpha:        totalAlpha / n,
		VisibilityRatio: float64(visible) / n,
	}
	out.Visible = maxAlpha > st.cfg.AlphaThreshold || out.VisibilityRatio > MinVisibleRatio
	return out
}

func extractLuma(p *Processed, cfg BrightnessConfig) []float32 {
	out := make([]float32, p.Width*p.Height)
	for y := 0; y < p.Height; y++ {
		row := p.Pix.Pix[y*p.Pix.Stride:]
		for x := 0; x < p.Width; x++ {
			px := row[x*4 : x*4+4 : x*4+4]
			out[y*p.Width+x] = float32(cfg.Luma(px[0], px[1], px[2]))
		}
	}
	return out
}

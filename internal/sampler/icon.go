package sampler

import (
	"sync/atomic"

	"go.uber.org/zap"
)

const (
	// SampleGrid is the number of sample points per axis in detailed sampling.
	SampleGrid = 3
	// MinVisibleRatio is the share of visible samples a footprint needs.
	MinVisibleRatio = 0.3
	// MaxWhiteRatio is the share of pure white samples above which an icon
	// footprint is treated as background.
	MaxWhiteRatio = 0.7
)

// IconConfig tunes the icon mask.
type IconConfig struct {
	AlphaThreshold float64
}

// DefaultIconConfig returns the standard icon mask settings.
func DefaultIconConfig() IconConfig { return IconConfig{AlphaThreshold: 0.1} }

// IconSample is the mask verdict for one footprint.
type IconSample struct {
	Visible         bool
	Alpha           float64
	AvgAlpha        float64
	VisibilityRatio float64
	WhiteRatio      float64
}

type iconState struct {
	img *Processed
	cfg IconConfig
}

// Icon masks cells with an uploaded icon. Pure white pixels count as
// background as well as transparent ones. Safe for concurrent readers; each
// Load, Clear or SetConfig swaps in a complete new state.
type Icon struct {
	state atomic.Pointer[iconState]
	log   *zap.Logger
}

// Option configures a sampler.
type Option func(*options)

type options struct {
	log *zap.Logger
}

// WithLogger sets the logger used for load and fallback events.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewIcon returns an icon sampler with no image loaded.
func NewIcon(cfg IconConfig, opts ...Option) *Icon {
	o := buildOptions(opts)
	s := &Icon{log: o.log}
	s.state.Store(&iconState{cfg: cfg})
	return s
}

// Load installs a processed image.
func (s *Icon) Load(p *Processed) {
	cur := s.state.Load()
	s.state.Store(&iconState{img: p, cfg: cur.cfg})
	if p != nil {
		s.log.Debug("icon loaded", zap.Int("width", p.Width), zap.Int("height", p.Height))
	}
}

// Clear drops the image. Every footprint is visible afterwards.
func (s *Icon) Clear() { s.Load(nil) }

// HasImage reports whether an image is loaded.
func (s *Icon) HasImage() bool { return s.state.Load().img != nil }

// Image returns the loaded image or nil.
func (s *Icon) Image() *Processed { return s.state.Load().img }

// Config returns the current settings.
func (s *Icon) Config() IconConfig { return s.state.Load().cfg }

// SetConfig replaces the settings.
func (s *Icon) SetConfig(cfg IconConfig) {
	cur := s.state.Load()
	s.state.Store(&iconState{img: cur.img, cfg: cfg})
}

// Point samples the pixel at the centre of the footprint.
func (s *Icon) Point(x, y, w, h float64) IconSample {
	st := s.state.Load()
	if st.img == nil {
		return IconSample{Visible: true}
	}
	r, g, b, a := st.img.RGBA(x+w/2, y+h/2)
	alpha := float64(a) / 255
	white := isWhite(r, g, b)
	visible := alpha > st.cfg.AlphaThreshold && !white
	out := IconSample{Visible: visible, Alpha: alpha, AvgAlpha: alpha}
	if visible {
		out.VisibilityRatio = 1
	}
	if white {
		out.WhiteRatio = 1
	}
	return out
}

// Detailed samples a 3x3 grid spread over the footprint. The footprint is
// visible only if its strongest alpha passes the threshold, more than 30% of
// samples are visible and fewer than 70% are pure white.
func (s *Icon) Detailed(x, y, w, h float64) IconSample {
	st := s.state.Load()
	if st.img == nil {
		return IconSample{Visible: true}
	}
	var visible, whites int
	var total, maxAlpha float64
	for sx := 0; sx < SampleGrid; sx++ {
		for sy := 0; sy < SampleGrid; sy++ {
			px := x + w*(float64(sx)+0.5)/SampleGrid
			py := y + h*(float64(sy)+0.5)/SampleGrid
			r, g, b, a := st.img.RGBA(px, py)
			alpha := float64(a) / 255
			white := isWhite(r, g, b)
			if white {
				whites++
			}
			total += alpha
			maxAlpha = max(maxAlpha, alpha)
			if alpha > st.cfg.AlphaThreshold && !white {
				visible++
			}
		}
	}
	const n = SampleGrid * SampleGrid
	out := IconSample{
		Alpha:           maxAlpha,
		AvgAlpha:        total / n,
		VisibilityRatio: float64(visible) / n,
		WhiteRatio:      float64(whites) / n,
	}
	out.Visible = maxAlpha > st.cfg.AlphaThreshold &&
		out.VisibilityRatio > MinVisibleRatio &&
		out.WhiteRatio < MaxWhiteRatio
	return out
}

func isWhite(r, g, b uint8) bool { return r == 255 && g == 255 && b == 255 }

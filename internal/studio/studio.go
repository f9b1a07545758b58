// Package studio runs one editing session headlessly: the grid, its noise and
// image sources, the palette, the reveal sequence and the frame counter. The
// GUI, the terminal preview and the exporter all drive a Studio.
//
// A Studio is not safe for concurrent use; call it from one goroutine. Exports
// work on a frozen copy of the session and may run alongside it.
package studio

import (
	"fmt"
	"image"
	"io"

	"go.uber.org/zap"

	"kilo/internal/core"
	"kilo/internal/export"
	"kilo/internal/grid"
	"kilo/internal/noise"
	"kilo/internal/palette"
	"kilo/internal/render"
	"kilo/internal/sampler"
)

// Studio is one session.
type Studio struct {
	cfg Config
	log *zap.Logger

	grid   *grid.Grid
	field  *noise.Field
	icon   *sampler.Icon
	bright *sampler.Brightness
	reveal *grid.Reveal
	swatch palette.Swatch

	// source is the decoded upload, kept so the canvas can be rebuilt.
	source image.Image
	frame  int

	runner export.Runner
}

// New builds a session from cfg. A nil logger disables logging.
func New(cfg Config, log *zap.Logger) *Studio {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Canvas.Empty() {
		cfg.Canvas = DefaultCanvas
	}
	cfg.NoiseCurve = cfg.NoiseCurve.Sanitize()
	cfg.BrightnessCurve = cfg.BrightnessCurve.Sanitize()
	if cfg.PNGScale < 1 {
		cfg.PNGScale = export.DefaultPNGScale
	}
	if cfg.FPS < 1 {
		cfg.FPS = export.DefaultFPS
	}
	if cfg.Noise.Seed == 0 {
		cfg.Noise.Seed = cfg.Seed
	}

	s := &Studio{
		cfg:    cfg,
		log:    log,
		field:  noise.New(cfg.Noise),
		icon:   sampler.NewIcon(cfg.Icon, sampler.WithLogger(log)),
		bright: sampler.NewBrightness(cfg.Brightness, sampler.WithLogger(log)),
		reveal: grid.NewReveal(cfg.Seed),
		swatch: cfg.swatch(),
	}
	s.grid = grid.New(s.canvas(), grid.WithZoom(cfg.Zoom), grid.WithLogger(log.Named("grid")))
	if !cfg.Reveal {
		s.reveal.Skip(s.grid)
	}
	return s
}

// Config returns the current configuration.
func (s *Studio) Config() Config { return s.cfg }

// Grid returns the live grid.
func (s *Studio) Grid() *grid.Grid { return s.grid }

// Mode returns the active mode.
func (s *Studio) Mode() core.Mode { return s.cfg.Mode }

// Frame returns the number of frames stepped so far.
func (s *Studio) Frame() int { return s.frame }

// Swatch returns the colours in use.
func (s *Studio) Swatch() palette.Swatch { return s.swatch }

// Canvas returns the canvas the grid is laid out on.
func (s *Studio) Canvas() core.Viewport { return s.grid.Viewport() }

// HasImage reports whether an image has been uploaded.
func (s *Studio) HasImage() bool { return s.source != nil }

// NeedsImage reports whether the active mode has nothing to sample.
func (s *Studio) NeedsImage() bool { return s.cfg.Mode.UsesImage() && s.source == nil }

// Processed returns the image drawn at canvas size, or nil.
func (s *Studio) Processed() *sampler.Processed { return s.icon.Image() }

// Reveal returns the reveal sequence.
func (s *Studio) Reveal() *grid.Reveal { return s.reveal }

// canvas is the viewport the active mode calls for: the image's aspect ratio
// in image modes, the configured canvas otherwise.
func (s *Studio) canvas() core.Viewport {
	if s.cfg.Mode.UsesImage() && s.source != nil {
		b := s.source.Bounds()
		return sampler.CanvasFor(b.Dx(), b.Dy(), sampler.CanvasLongSide)
	}
	return s.cfg.Canvas
}

// relayout regenerates the grid if the canvas changed.
func (s *Studio) relayout() {
	view := s.canvas()
	if view == s.grid.Viewport() {
		return
	}
	s.grid.Regenerate(view)
	s.log.Debug("canvas changed", zap.Float64("width", view.W), zap.Float64("height", view.H))
}

// LoadImage validates and decodes an upload and makes it the sampled image.
// On error the previous image and every buffer derived from it are kept.
func (s *Studio) LoadImage(r io.Reader) error {
	img, format, err := sampler.Decode(r)
	if err != nil {
		return fmt.Errorf("load image: %w", err)
	}
	b := img.Bounds()
	canvas := sampler.CanvasFor(b.Dx(), b.Dy(), sampler.CanvasLongSide)
	p, err := sampler.Process(img, canvas)
	if err != nil {
		return fmt.Errorf("process image: %w", err)
	}
	s.source = img
	s.icon.Load(p)
	s.bright.Load(p)
	s.relayout()
	s.log.Info("image loaded",
		zap.String("format", string(format)),
		zap.Int("width", b.Dx()),
		zap.Int("height", b.Dy()),
		zap.Float64("canvas_width", canvas.W),
		zap.Float64("canvas_height", canvas.H),
		zap.Float64("placement_x", p.Placement.X),
		zap.Float64("placement_y", p.Placement.Y),
	)
	return nil
}

// ClearImage drops the uploaded image.
func (s *Studio) ClearImage() {
	s.source = nil
	s.icon.Clear()
	s.bright.Clear()
	s.relayout()
}

// SetMode switches the data source and resizes the canvas to match.
func (s *Studio) SetMode(m core.Mode) {
	if m == s.cfg.Mode {
		return
	}
	s.cfg.Mode = m
	s.relayout()
	s.log.Info("mode changed", zap.Stringer("mode", m))
}

// CycleMode advances to the next mode.
func (s *Studio) CycleMode() { s.SetMode(s.cfg.Mode.Next()) }

// SetSwatch selects a palette entry by index.
func (s *Studio) SetSwatch(i int) {
	n := len(palette.Swatches)
	s.cfg.Swatch = ((i % n) + n) % n
	s.cfg.UseHue = false
	s.swatch = s.cfg.swatch()
}

// CycleSwatch advances to the next palette entry.
func (s *Studio) CycleSwatch() { s.SetSwatch(s.cfg.Swatch + 1) }

// SetHue switches to a swatch generated from hue.
func (s *Studio) SetHue(hue float64) {
	s.cfg.Hue = hue
	s.cfg.UseHue = true
	s.swatch = s.cfg.swatch()
}

// ZoomIn and ZoomOut step the zoom and regenerate the lattice.
func (s *Studio) ZoomIn() {
	s.grid.ZoomIn()
	s.cfg.Zoom = s.grid.Zoom()
}

func (s *Studio) ZoomOut() {
	s.grid.ZoomOut()
	s.cfg.Zoom = s.grid.Zoom()
}

// ToggleAnimate starts or freezes the noise animation.
func (s *Studio) ToggleAnimate() {
	s.cfg.Noise.Animate = !s.cfg.Noise.Animate
	s.field.SetConfig(s.cfg.Noise)
}

// ToggleDiscrete switches the active curve between stepped and continuous
// heights.
func (s *Studio) ToggleDiscrete() {
	c := s.curve()
	c.UseDiscreteSteps = !c.UseDiscreteSteps
	s.setCurve(c)
}

// RestartReveal conceals every cell and runs the reveal sequence again.
func (s *Studio) RestartReveal() { s.reveal.Restart(s.grid) }

// curve returns the scale curve of the active mode.
func (s *Studio) curve() grid.SamplerConfig {
	if s.cfg.Mode == core.ModeBrightness {
		return s.cfg.BrightnessCurve
	}
	return s.cfg.NoiseCurve
}

func (s *Studio) setCurve(c grid.SamplerConfig) {
	c = c.Sanitize()
	if s.cfg.Mode == core.ModeBrightness {
		s.cfg.BrightnessCurve = c
		return
	}
	s.cfg.NoiseCurve = c
}

// Source returns the data source of the active mode, or nil when an image
// mode has no image.
func (s *Studio) Source() grid.Source {
	return s.cfg.source(s.field, s.icon, s.bright, s.source != nil)
}

func (c Config) source(field *noise.Field, icon *sampler.Icon, bright *sampler.Brightness, hasImage bool) grid.Source {
	switch c.Mode {
	case core.ModeIcon:
		if !hasImage {
			return nil
		}
		return grid.IconSource{Field: field, Curve: c.NoiseCurve, Mask: icon}
	case core.ModeBrightness:
		if !hasImage {
			return nil
		}
		return grid.BrightnessSource{Sampler: bright, Curve: c.BrightnessCurve}
	default:
		return grid.NoiseSource{Field: field, Curve: c.NoiseCurve}
	}
}

// Step advances the session by one frame: the reveal sequence moves on and
// every cell is resized from the active source.
func (s *Studio) Step() {
	s.reveal.Step(s.grid)
	s.grid.Step(s.Source(), s.frame)
	s.frame++
}

// Render paints the live grid onto b. Nothing but the background is drawn
// while an image mode waits for an image.
func (s *Studio) Render(b render.Backend) int {
	if s.NeedsImage() {
		b.Background(s.swatch.Background)
		return 0
	}
	return render.Scene(b, s.grid, s.swatch, false)
}

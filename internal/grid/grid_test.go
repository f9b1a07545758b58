package grid

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kilo/internal/core"
	"kilo/internal/lattice"
	"kilo/internal/noise"
	"kilo/internal/sampler"
)

type penOp struct {
	Kind string
	Args []float64
}

type recorder struct {
	ops   []penOp
	fills []color.RGBA
}

func (r *recorder) MoveTo(x, y float64) { r.ops = append(r.ops, penOp{"M", []float64{x, y}}) }
func (r *recorder) LineTo(x, y float64) { r.ops = append(r.ops, penOp{"L", []float64{x, y}}) }
func (r *recorder) QuadTo(cx, cy, x, y float64) {
	r.ops = append(r.ops, penOp{"Q", []float64{cx, cy, x, y}})
}
func (r *recorder) ClosePath()        { r.ops = append(r.ops, penOp{Kind: "Z"}) }
func (r *recorder) Fill(c color.RGBA) { r.fills = append(r.fills, c) }

func TestContinuousBoundaries(t *testing.T) {
	assert.Equal(t, 0.0, Continuous(0.5, 0.5, 0.8, 0.2, 1.0, AxisHeight))
	assert.Equal(t, 0.2, Continuous(0.5, 0.5, 0.8, 0.2, 1.0, AxisWidth))
	assert.Equal(t, 0.2, Continuous(0.1, 0.5, 0.8, 0.2, 1.0, AxisWidth))
	assert.Equal(t, 1.0, Continuous(0.8, 0.5, 0.8, 0.2, 1.0, AxisHeight))
	assert.Equal(t, 1.0, Continuous(0.8, 0.5, 0.8, 0.2, 1.0, AxisWidth))
	assert.InDelta(t, 0.6, Continuous(0.65, 0.5, 0.8, 0.2, 1.0, AxisHeight), 1e-12)
}

func TestContinuousMonotonic(t *testing.T) {
	for _, axis := range []Axis{AxisWidth, AxisHeight} {
		prev := math.Inf(-1)
		for i := 0; i <= 1000; i++ {
			v := float64(i) / 1000
			got := Continuous(v, 0.3, 0.7, 0.1, 0.9, axis)
			require.GreaterOrEqual(t, got, prev, "axis %d v=%v", axis, v)
			prev = got
		}
	}
}

func TestDiscreteHasExactlyStepsInteriorValues(t *testing.T) {
	for steps := 1; steps <= 6; steps++ {
		distinct := map[float64]bool{}
		for i := 1; i < 1000; i++ {
			v := 0.2 + 0.6*float64(i)/1000
			distinct[Discrete(v, 0.2, 0.8, 0.2, 1.0, steps, AxisHeight)] = true
		}
		assert.Len(t, distinct, steps, "steps=%d", steps)
	}
}

func TestDiscreteBoundaries(t *testing.T) {
	assert.Equal(t, 0.0, Discrete(0.2, 0.2, 0.8, 0.1, 1.0, 5, AxisHeight))
	assert.Equal(t, 0.1, Discrete(0.1, 0.2, 0.8, 0.1, 1.0, 5, AxisWidth))
	assert.Equal(t, 1.0, Discrete(0.9, 0.2, 0.8, 0.1, 1.0, 5, AxisHeight))
	// Just inside the window lands in the first bucket: lo + 1/steps of the span.
	assert.InDelta(t, 0.1+0.9/5, Discrete(0.21, 0.2, 0.8, 0.1, 1.0, 5, AxisHeight), 1e-12)
}

func TestCurvesTolerateMalformedConfig(t *testing.T) {
	for i := 0; i <= 100; i++ {
		v := float64(i) / 100
		for _, axis := range []Axis{AxisWidth, AxisHeight} {
			got := Discrete(v, 0.5, 0.7, 0.1, 1, 0, axis)
			require.False(t, math.IsNaN(got))
			got = Continuous(v, 0.8, 0.2, 0.1, 1, axis)
			require.False(t, math.IsNaN(got))
			got = Discrete(v, 0.8, 0.2, 0.1, 1, 3, axis)
			require.False(t, math.IsNaN(got))
		}
	}
}

func TestSanitize(t *testing.T) {
	got := SamplerConfig{Threshold: 1.4, UpperThreshold: 0.3, HeightSteps: -2}.Sanitize()
	assert.Equal(t, 1.0, got.Threshold)
	assert.Equal(t, 1.0, got.UpperThreshold)
	assert.Equal(t, 1, got.HeightSteps)

	got = SamplerConfig{Threshold: -0.5, UpperThreshold: math.NaN(), HeightSteps: 3}.Sanitize()
	assert.Equal(t, 0.0, got.Threshold)
	assert.Equal(t, 0.0, got.UpperThreshold)
	assert.Equal(t, 3, got.HeightSteps)

	assert.Equal(t, DefaultNoiseCurve(), DefaultNoiseCurve().Sanitize())
}

func TestSamplerConfigFromMap(t *testing.T) {
	got := DefaultNoiseCurve().FromMap(map[string]string{
		"threshold":  "0.25",
		"steps":      "4",
		"discrete":   "false",
		"width_min":  "1.5",
		"height_max": "0.75",
		"unknown":    "1",
	})
	want := DefaultNoiseCurve()
	want.Threshold = 0.25
	want.HeightSteps = 4
	want.UseDiscreteSteps = false
	want.HeightMaxScale = 0.75
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestCellDrawCentresAndRounds(t *testing.T) {
	c := NewCell(10, 20, 100, 128)
	c.Revealed = true
	c.Color = color.RGBA{R: 1, G: 2, B: 3, A: 255}
	c.Apply(0.5, 0.25)

	x, y, w, h := c.DrawRect()
	assert.Equal(t, []float64{35, 68, 50, 32}, []float64{x, y, w, h})

	var r recorder
	require.True(t, c.Draw(&r))
	require.Len(t, r.ops, 10)
	rx, ry := 50*0.9/2, 32*0.9/2
	want := []penOp{
		{"M", []float64{35 + rx, 68}},
		{"L", []float64{85 - rx, 68}},
		{"Q", []float64{85, 68, 85, 68 + ry}},
		{"L", []float64{85, 100 - ry}},
		{"Q", []float64{85, 100, 85 - rx, 100}},
		{"L", []float64{35 + rx, 100}},
		{"Q", []float64{35, 100, 35, 100 - ry}},
		{"L", []float64{35, 68 + ry}},
		{"Q", []float64{35, 68, 35 + rx, 68}},
		{Kind: "Z"},
	}
	if diff := cmp.Diff(want, r.ops); diff != "" {
		t.Fatalf("path mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []color.RGBA{c.Color}, r.fills)
}

func TestCellSkipsDegenerateDraws(t *testing.T) {
	var r recorder

	c := NewCell(0, 0, 10, 10)
	assert.False(t, c.Draw(&r), "unrevealed")

	c.Revealed = true
	c.Apply(1, 0)
	assert.False(t, c.Draw(&r), "zero height")

	c.Apply(0, 1)
	assert.False(t, c.Draw(&r), "zero width")

	c.Apply(1, 1)
	c.Hide()
	assert.False(t, c.Draw(&r), "hidden")
	assert.Empty(t, r.ops)
	assert.Empty(t, r.fills)
}

func TestCellApplyClamps(t *testing.T) {
	c := NewCell(0, 0, 10, 20)
	c.Apply(2, -1)
	assert.Equal(t, 10.0, c.Width)
	assert.Equal(t, 0.0, c.Height)
}

func coveredBy(cells []Cell, px, py float64) bool {
	for i := range cells {
		x, y, w, h := cells[i].Bounds()
		if px >= x && px < x+w && py >= y && py < y+h {
			return true
		}
	}
	return false
}

func TestGridCoversViewport(t *testing.T) {
	view := core.Viewport{W: 300, H: 200}
	for _, zoom := range []float64{0.05, 0.2, 1, 2.5, 5} {
		g := New(view, WithZoom(zoom))
		cells := g.Cells()
		require.NotEmpty(t, cells, "zoom %v", zoom)
		for i := 0; i <= 10; i++ {
			for j := 0; j <= 10; j++ {
				px := math.Min(view.W*float64(i)/10, view.W-1e-6)
				py := math.Min(view.H*float64(j)/10, view.H-1e-6)
				require.True(t, coveredBy(cells, px, py), "zoom %v gap at (%v,%v)", zoom, px, py)
			}
		}
		cw, ch := g.CellSize()
		for i := range cells {
			x, y, _, _ := cells[i].Bounds()
			require.True(t, lattice.NearViewport(x, y, cw, ch, view.W, view.H))
		}
	}
}

// cellExtent returns the union of the cell footprints.
func cellExtent(cells []Cell) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for i := range cells {
		x, y, w, h := cells[i].Bounds()
		minX, minY = math.Min(minX, x), math.Min(minY, y)
		maxX, maxY = math.Max(maxX, x+w), math.Max(maxY, y+h)
	}
	return minX, minY, maxX, maxY
}

// At the loosest zoom the centre offset moves lattice (0,0) far from the
// viewport centre on wide canvases; the window must still reach every edge.
func TestGridCoversWideViewportsAtMinZoom(t *testing.T) {
	limits := lattice.Limits{MinZoom: 0.5, MaxZoom: 5, ExtraCells: lattice.ExtraCells}
	for _, view := range []core.Viewport{
		// Anchor cell 96 columns from lattice (0,0), padding is 5 per side.
		{W: 1920, H: 1080},
		{W: 3840, H: 2160},
		{W: 333, H: 777},
		{W: 1000, H: 1000},
	} {
		g := New(view, WithBaseSize(10, 12.8), WithLimits(limits), WithZoom(limits.MinZoom))
		require.Equal(t, limits.MinZoom, g.Zoom())
		cells := g.Cells()
		require.NotEmpty(t, cells)

		minX, minY, maxX, maxY := cellExtent(cells)
		assert.LessOrEqual(t, minX, 0.0, "%vx%v left", view.W, view.H)
		assert.LessOrEqual(t, minY, 0.0, "%vx%v top", view.W, view.H)
		assert.GreaterOrEqual(t, maxX, view.W, "%vx%v right", view.W, view.H)
		assert.GreaterOrEqual(t, maxY, view.H, "%vx%v bottom", view.W, view.H)
		for _, p := range [][2]float64{
			{0, 0}, {view.W - 1e-6, 0}, {0, view.H - 1e-6}, {view.W - 1e-6, view.H - 1e-6},
			{view.W / 2, view.H / 2},
		} {
			assert.True(t, coveredBy(cells, p[0], p[1]), "%vx%v gap at %v", view.W, view.H, p)
		}
	}
}

func TestGridCoversWideViewportAtDefaultMinZoom(t *testing.T) {
	view := core.Viewport{W: 1200, H: 300}
	g := New(view, WithZoom(lattice.MinZoom))
	minX, minY, maxX, maxY := cellExtent(g.Cells())
	assert.LessOrEqual(t, minX, 0.0)
	assert.LessOrEqual(t, minY, 0.0)
	assert.GreaterOrEqual(t, maxX, view.W)
	assert.GreaterOrEqual(t, maxY, view.H)
}

func TestGridZoomClamps(t *testing.T) {
	g := New(core.Viewport{W: 40, H: 40})
	assert.Equal(t, lattice.DefaultZoom, g.Zoom())

	g.SetZoom(100)
	assert.Equal(t, lattice.MaxZoom, g.Zoom())
	g.SetZoom(-3)
	assert.Equal(t, lattice.MinZoom, g.Zoom())

	g.SetZoom(1)
	g.ZoomOut()
	assert.InDelta(t, 1.1, g.Zoom(), 1e-12)
	g.ZoomIn()
	g.ZoomIn()
	assert.InDelta(t, 0.9, g.Zoom(), 1e-12)
	assert.Equal(t, g.Zoom(), g.Batch().Zoom)
}

func TestGridKeepsCentreUnderZoom(t *testing.T) {
	view := core.Viewport{W: 500, H: 500}
	g := New(view, WithZoom(1))
	b := g.Batch()
	// At zoom 1 the anchor's lattice position maps back onto itself.
	assert.InDelta(t, 0, b.OffsetX, 1e-9)
	assert.InDelta(t, 0, b.OffsetY, 1e-9)

	g.SetZoom(0.5)
	b = g.Batch()
	cw, ch := g.CellSize()
	// The canvas centre sits at the same fractional lattice position.
	assert.InDelta(t, 250.0/100, (250-b.OffsetX)/cw, 1e-9)
	assert.InDelta(t, 250.0/128, (250-b.OffsetY)/ch, 1e-9)
}

func TestRegenerateSwapsBatch(t *testing.T) {
	g := New(core.Viewport{W: 100, H: 100})
	old := g.Batch()
	oldLen := len(old.Cells)

	g.Regenerate(core.Viewport{W: 400, H: 100})
	assert.NotSame(t, old, g.Batch())
	assert.Len(t, old.Cells, oldLen, "previous batch is left intact")
	assert.Greater(t, g.Count(), oldLen)
	assert.Equal(t, core.Viewport{W: 400, H: 100}, g.Viewport())

	g.Regenerate(core.Viewport{})
	assert.Zero(t, g.Count())
}

func TestRegenerateRestoresRevealAfterCompletion(t *testing.T) {
	g := New(core.Viewport{W: 200, H: 200})
	for _, c := range g.Cells() {
		require.False(t, c.Revealed)
	}
	g.RevealAll()
	assert.True(t, g.RevealComplete())

	g.SetZoom(0.5)
	for _, c := range g.Cells() {
		require.True(t, c.Revealed)
	}
}

func TestDistanceFromCenter(t *testing.T) {
	view := core.Viewport{W: 200, H: 100}
	g := New(view)
	for _, c := range g.Cells() {
		cx, cy := c.Center()
		assert.InDelta(t, math.Hypot(cx-100, cy-50), c.DistanceFromCenter, 1e-9)
	}
}

func noiseField() *noise.Field {
	cfg := noise.DefaultConfig()
	cfg.Seed = 7
	cfg.Animate = true
	return noise.New(cfg)
}

func loadedIcon(t *testing.T, view core.Viewport, img image.Image) *sampler.Icon {
	t.Helper()
	p, err := sampler.Process(img, view)
	require.NoError(t, err)
	s := sampler.NewIcon(sampler.DefaultIconConfig())
	s.Load(p)
	return s
}

func TestStepNoiseRespectsCurve(t *testing.T) {
	view := core.Viewport{W: 300, H: 300}
	g := New(view)
	curve := DefaultNoiseCurve()
	g.Step(NoiseSource{Field: noiseField(), Curve: curve}, 12)

	for _, c := range g.Cells() {
		require.GreaterOrEqual(t, c.Width, c.BaseWidth*curve.WidthMinScale-1e-9)
		require.LessOrEqual(t, c.Width, c.BaseWidth+1e-9)
		require.GreaterOrEqual(t, c.Height, 0.0)
		require.LessOrEqual(t, c.Height, c.BaseHeight+1e-9)
	}
	counts := g.Counts()
	assert.LessOrEqual(t, counts.NonZero, counts.Visible)
	assert.LessOrEqual(t, counts.Visible, counts.Total)
}

func TestStepIsDeterministic(t *testing.T) {
	view := core.Viewport{W: 200, H: 200}
	a, b := New(view), New(view)
	src := NoiseSource{Field: noiseField(), Curve: DefaultNoiseCurve()}
	a.Step(src, 30)
	b.Step(src, 30)
	if diff := cmp.Diff(a.Cells(), b.Cells()); diff != "" {
		t.Fatalf("same frame produced different cells:\n%s", diff)
	}
}

func TestIconMaskHidesBothAxes(t *testing.T) {
	view := core.Viewport{W: 200, H: 200}
	g := New(view)
	mask := loadedIcon(t, view, image.NewNRGBA(image.Rect(0, 0, 50, 50)))

	// Every curve input would otherwise produce a full-size cell.
	curve := DefaultNoiseCurve()
	curve.Threshold, curve.UpperThreshold = 0, 0
	g.Step(IconSource{Field: noiseField(), Curve: curve, Mask: mask}, 0)
	for _, c := range g.Cells() {
		require.Zero(t, c.Width)
		require.Zero(t, c.Height)
	}
	assert.Zero(t, g.NonZeroCount())

	g.Step(IconSource{Field: noiseField(), Curve: curve}, 0)
	assert.Equal(t, g.VisibleCount(), g.NonZeroCount(), "no mask hides nothing")
}

func TestBrightnessSourceUsesLuminance(t *testing.T) {
	view := core.Viewport{W: 100, H: 100}
	g := New(view)
	img := image.NewNRGBA(image.Rect(0, 0, 100, 100))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	p, err := sampler.Process(img, view)
	require.NoError(t, err)
	s := sampler.NewBrightness(sampler.DefaultBrightnessConfig())
	s.Load(p)

	g.Step(BrightnessSource{Sampler: s, Curve: DefaultBrightnessCurve()}, 0)
	for _, c := range g.Cells() {
		x, y, w, h := c.Bounds()
		if !lattice.InViewport(x, y, w, h, view.W, view.H) {
			continue
		}
		require.InDelta(t, c.BaseHeight, c.Height, 1e-9)
		require.InDelta(t, c.BaseWidth, c.Width, 1e-9)
	}

	cfg := s.Config()
	cfg.Invert = true
	s.SetConfig(cfg)
	g.Step(BrightnessSource{Sampler: s, Curve: DefaultBrightnessCurve()}, 0)
	assert.Zero(t, g.NonZeroCount())
}

type bogusSource struct{}

func (bogusSource) source() {}

func TestStepRejectsUnknownSource(t *testing.T) {
	g := New(core.Viewport{W: 50, H: 50})
	assert.Panics(t, func() { g.Step(bogusSource{}, 0) })
	assert.NotPanics(t, func() { g.Step(nil, 0) })
}

func TestDrawVisibleSkipsOffscreen(t *testing.T) {
	view := core.Viewport{W: 200, H: 200}
	g := New(view)
	g.RevealAll()
	col := color.RGBA{R: 9, A: 255}

	var all, visible recorder
	nAll := g.Draw(&all, col)
	nVisible := g.DrawVisible(&visible, col)
	assert.Equal(t, g.Count(), nAll)
	assert.Equal(t, g.VisibleCount(), nVisible)
	assert.Less(t, nVisible, nAll)
	for _, c := range g.Cells() {
		require.Equal(t, col, c.Color)
	}
}

func TestReveal(t *testing.T) {
	view := core.Viewport{W: 200, H: 200}
	g := New(view)
	r := NewReveal(1)

	for i := 0; i < RevealDelay; i++ {
		require.True(t, r.Step(g))
		require.Zero(t, r.Progress())
	}
	for _, c := range g.Cells() {
		require.False(t, c.Revealed)
	}

	steps := 0
	for r.Step(g) {
		steps++
		radius := r.Radius(view)
		for _, c := range g.Cells() {
			if c.Revealed {
				require.LessOrEqual(t, c.DistanceFromCenter, radius)
			}
		}
	}
	assert.Equal(t, RevealDuration-1, steps)
	assert.False(t, r.Active())
	assert.True(t, g.RevealComplete())
	for _, c := range g.Cells() {
		require.True(t, c.Revealed)
	}

	r.Restart(g)
	assert.True(t, r.Active())
	for _, c := range g.Cells() {
		require.False(t, c.Revealed)
	}
	r.Skip(g)
	assert.False(t, r.Active())
	for _, c := range g.Cells() {
		require.True(t, c.Revealed)
	}
}

func TestRevealIsSeeded(t *testing.T) {
	view := core.Viewport{W: 200, H: 200}
	a, b := New(view), New(view)
	ra, rb := NewReveal(5), NewReveal(5)
	for range 40 {
		ra.Step(a)
		rb.Step(b)
	}
	if diff := cmp.Diff(a.Cells(), b.Cells()); diff != "" {
		t.Fatalf("seeded reveal diverged:\n%s", diff)
	}
}

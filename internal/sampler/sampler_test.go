package sampler

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"kilo/internal/core"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func processed(img *image.NRGBA) *Processed {
	b := img.Bounds()
	return &Processed{Pix: img, Width: b.Dx(), Height: b.Dy()}
}

var (
	black       = color.NRGBA{A: 255}
	white       = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	transparent = color.NRGBA{}
)

func TestFitContainsImage(t *testing.T) {
	approx := cmpopts.EquateApprox(0, 0.05)
	got := Fit(200, 300, 1000, 1000)
	want := Placement{X: 166.67, Y: 0, W: 666.67, H: 1000}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Fatalf("tall image placement mismatch (-want +got):\n%s", diff)
	}

	got = Fit(400, 100, 1000, 1000)
	want = Placement{X: 0, Y: 375, W: 1000, H: 250}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Fatalf("wide image placement mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, Placement{}, Fit(0, 10, 100, 100))
}

func TestCanvasFor(t *testing.T) {
	assert.Equal(t, core.Viewport{W: 667, H: 1000}, CanvasFor(200, 300, CanvasLongSide))
	assert.Equal(t, core.Viewport{W: 1000, H: 500}, CanvasFor(400, 200, CanvasLongSide))
	assert.Equal(t, core.Viewport{W: 1000, H: 1000}, CanvasFor(64, 64, CanvasLongSide))
	assert.True(t, CanvasFor(0, 5, CanvasLongSide).Empty())
}

func TestDecodeRasterFormats(t *testing.T) {
	img := solid(8, 4, black)
	encoders := map[Format]func(*bytes.Buffer) error{
		FormatPNG:  func(b *bytes.Buffer) error { return png.Encode(b, img) },
		FormatJPEG: func(b *bytes.Buffer) error { return jpeg.Encode(b, img, nil) },
		FormatGIF:  func(b *bytes.Buffer) error { return gif.Encode(b, img, nil) },
	}
	for format, encode := range encoders {
		var buf bytes.Buffer
		require.NoError(t, encode(&buf))
		got, gotFormat, err := Decode(&buf)
		require.NoError(t, err, format)
		assert.Equal(t, format, gotFormat)
		assert.Equal(t, image.Rect(0, 0, 8, 4), got.Bounds())
	}
}

func TestDecodeSVG(t *testing.T) {
	doc := `<svg xmlns="http://www.w3.org/2000/svg" width="40" height="20" viewBox="0 0 40 20">` +
		`<rect x="0" y="0" width="40" height="20" fill="#ff0000"/></svg>`
	img, format, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, FormatSVG, format)
	assert.Equal(t, image.Rect(0, 0, 40, 20), img.Bounds())
	r, _, _, a := img.At(20, 10).RGBA()
	assert.NotZero(t, a)
	assert.NotZero(t, r)
}

func TestDecodeRejects(t *testing.T) {
	_, _, err := Decode(strings.NewReader("just some text"))
	assert.True(t, errors.Is(err, ErrUnsupportedType), "got %v", err)

	_, _, err = Decode(bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrEmptyImage)

	big := bytes.Repeat([]byte{0}, MaxUploadBytes+1)
	_, _, err = Decode(bytes.NewReader(big))
	assert.ErrorIs(t, err, ErrTooLarge)

	_, _, err = Decode(bytes.NewReader([]byte("\x89PNG\r\n\x1a\ncorrupt")))
	assert.Error(t, err)
}

// declaredPNG encodes a 1x1 PNG and rewrites its header to declare w x h.
func declaredPNG(t *testing.T, w, h uint32) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solid(1, 1, black)))
	data := buf.Bytes()
	// Signature (8), length (4), "IHDR" (4), width, height, ...
	require.Equal(t, "IHDR", string(data[12:16]))
	binary.BigEndian.PutUint32(data[16:20], w)
	binary.BigEndian.PutUint32(data[20:24], h)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}

func TestDecodeRejectsHugeDimensions(t *testing.T) {
	data := declaredPNG(t, 100000, 100000)
	require.Less(t, len(data), 1024)
	_, _, err := Decode(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrTooManyPixels)

	doc := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 90000 90000"></svg>`
	_, _, err = Decode(strings.NewReader(doc))
	assert.ErrorIs(t, err, ErrTooManyPixels)
}

func TestProcessLetterboxes(t *testing.T) {
	p, err := Process(solid(200, 300, black), core.Viewport{W: 1000, H: 1000})
	require.NoError(t, err)
	assert.Equal(t, 1000, p.Width)
	assert.Equal(t, 1000, p.Height)
	assert.InDelta(t, 166.67, p.Placement.X, 0.01)

	_, _, _, a := p.RGBA(500, 500)
	assert.Equal(t, uint8(255), a)
	_, _, _, a = p.RGBA(50, 500)
	assert.Equal(t, uint8(0), a)
	_, _, _, a = p.RGBA(950, 500)
	assert.Equal(t, uint8(0), a)

	_, err = Process(solid(4, 4, black), core.Viewport{})
	assert.ErrorIs(t, err, ErrEmptyImage)
	_, err = Process(nil, core.Viewport{W: 10, H: 10})
	assert.ErrorIs(t, err, ErrEmptyImage)
}

func TestRGBAClampsToBuffer(t *testing.T) {
	img := solid(4, 4, transparent)
	img.SetNRGBA(0, 0, black)
	img.SetNRGBA(3, 3, white)
	p := processed(img)

	_, _, _, a := p.RGBA(-50, -50)
	assert.Equal(t, uint8(255), a)
	r, _, _, _ := p.RGBA(999, 999)
	assert.Equal(t, uint8(255), r)
	// 0.5 rounds up to pixel 1.
	_, _, _, a = p.RGBA(0.5, 0)
	assert.Equal(t, uint8(0), a)
}

func TestIconWithoutImageIsVisible(t *testing.T) {
	s := NewIcon(DefaultIconConfig())
	assert.False(t, s.HasImage())
	assert.True(t, s.Detailed(0, 0, 10, 10).Visible)
	assert.True(t, s.Point(0, 0, 10, 10).Visible)
}

func TestIconDetailed(t *testing.T) {
	img := solid(90, 30, transparent)
	for y := 0; y < 30; y++ {
		for x := 0; x < 30; x++ {
			img.SetNRGBA(x, y, black)
			img.SetNRGBA(x+30, y, white)
		}
	}
	// A single opaque pixel in the otherwise empty third block.
	img.SetNRGBA(65, 5, black)

	s := NewIcon(DefaultIconConfig(), WithLogger(zaptest.NewLogger(t)))
	s.Load(processed(img))
	require.True(t, s.HasImage())

	ink := s.Detailed(0, 0, 30, 30)
	assert.True(t, ink.Visible)
	assert.Equal(t, 1.0, ink.VisibilityRatio)
	assert.Equal(t, 0.0, ink.WhiteRatio)

	paper := s.Detailed(30, 0, 30, 30)
	assert.False(t, paper.Visible)
	assert.Equal(t, 1.0, paper.Alpha)
	assert.Equal(t, 1.0, paper.WhiteRatio)

	speck := s.Detailed(60, 0, 30, 30)
	assert.False(t, speck.Visible, "one visible sample of nine is not enough")
	assert.Equal(t, 1.0, speck.Alpha)
	assert.InDelta(t, 1.0/9, speck.VisibilityRatio, 1e-12)

	assert.True(t, s.Point(0, 0, 30, 30).Visible)
	assert.False(t, s.Point(30, 0, 30, 30).Visible)
	assert.False(t, s.Point(60, 0, 30, 30).Visible)

	s.Clear()
	assert.True(t, s.Detailed(30, 0, 30, 30).Visible)
}

func TestIconAlphaThreshold(t *testing.T) {
	s := NewIcon(DefaultIconConfig())
	s.Load(processed(solid(30, 30, color.NRGBA{A: 51})))
	assert.True(t, s.Detailed(0, 0, 30, 30).Visible)

	s.SetConfig(IconConfig{AlphaThreshold: 0.5})
	assert.False(t, s.Detailed(0, 0, 30, 30).Visible)
	assert.True(t, s.HasImage())
}

func TestLuma(t *testing.T) {
	c := DefaultBrightnessConfig()
	assert.Equal(t, 0.0, c.Luma(0, 0, 0))
	assert.InDelta(t, 1.0, c.Luma(255, 255, 255), 1e-9)
	assert.InDelta(t, 0.299, c.Luma(255, 0, 0), 1e-9)

	c.Brightness = 0.2
	assert.InDelta(t, 0.499, c.Luma(255, 0, 0), 1e-9)

	c = DefaultBrightnessConfig()
	c.Contrast = 2
	assert.InDelta(t, 0.098, c.Luma(255, 0, 0), 1e-9)
	assert.Equal(t, 1.0, c.Luma(255, 255, 255))

	c.Invert = true
	assert.Equal(t, 0.0, c.Luma(255, 255, 255))
	assert.Equal(t, 1.0, c.Luma(0, 0, 0))
}

func TestBrightnessWithoutImage(t *testing.T) {
	s := NewBrightness(DefaultBrightnessConfig())
	got := s.Detailed(0, 0, 10, 10)
	assert.True(t, got.Visible)
	assert.Equal(t, NoImageBrightness, got.Brightness)
	assert.Equal(t, NoImageBrightness, s.Point(0, 0, 1, 1).Brightness)
}

func TestBrightnessDetailed(t *testing.T) {
	img := solid(60, 30, transparent)
	for y := 0; y < 30; y++ {
		for x := 0; x < 30; x++ {
			img.SetNRGBA(x, y, white)
		}
	}
	img.SetNRGBA(35, 5, white)

	s := NewBrightness(DefaultBrightnessConfig())
	s.Load(processed(img))

	lit := s.Detailed(0, 0, 30, 30)
	assert.True(t, lit.Visible)
	assert.InDelta(t, 1.0, lit.Brightness, 1e-6)

	speck := s.Detailed(30, 0, 30, 30)
	assert.True(t, speck.Visible, "brightness mode accepts any sample above the alpha threshold")
	assert.InDelta(t, 1.0/9, speck.Brightness, 1e-6)

	assert.False(t, s.Point(30, 0, 30, 30).Visible)
	assert.InDelta(t, 1.0, s.Point(0, 0, 30, 30).Brightness, 1e-6)
}

func TestBrightnessRebuildsOnlyOnAdjustment(t *testing.T) {
	s := NewBrightness(DefaultBrightnessConfig())
	assert.False(t, s.SetConfig(BrightnessConfig{Contrast: 2, AlphaThreshold: 0.1}), "no image, nothing to rebuild")

	s.Load(processed(solid(9, 9, color.NRGBA{R: 128, G: 128, B: 128, A: 255})))
	before := s.Detailed(0, 0, 9, 9).Brightness

	cfg := s.Config()
	cfg.AlphaThreshold = 0.5
	assert.False(t, s.SetConfig(cfg))
	assert.Equal(t, before, s.Detailed(0, 0, 9, 9).Brightness)

	cfg.Invert = true
	assert.True(t, s.SetConfig(cfg))
	assert.InDelta(t, 1-before, s.Detailed(0, 0, 9, 9).Brightness, 1e-6)
}

func TestBrightnessConfigFromMap(t *testing.T) {
	c := BrightnessConfigFromMap(map[string]string{
		"brightness":      "-0.25",
		"contrast":        "1.5",
		"invert":          "true",
		"alpha_threshold": "2",
	})
	assert.Equal(t, -0.25, c.Brightness)
	assert.Equal(t, 1.5, c.Contrast)
	assert.True(t, c.Invert)
	assert.Equal(t, 0.1, c.AlphaThreshold)
}

func TestSamplersReadWhileSwapping(t *testing.T) {
	icon := NewIcon(DefaultIconConfig())
	bright := NewBrightness(DefaultBrightnessConfig())
	a := processed(solid(20, 20, black))
	b := processed(solid(20, 20, white))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := range 200 {
			if i%2 == 0 {
				icon.Load(a)
				bright.Load(a)
			} else {
				icon.Load(b)
				bright.Load(b)
			}
		}
	}()
	for range 200 {
		v := bright.Detailed(0, 0, 20, 20).Brightness
		if v != 0 && v != 1 && v != NoImageBrightness {
			t.Fatalf("observed partial buffer: brightness %v", v)
		}
		icon.Detailed(0, 0, 20, 20)
	}
	wg.Wait()
}

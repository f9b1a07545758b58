package export

import (
	"bufio"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/setanarut/apng"

	"kilo/internal/grid"
	"kilo/internal/palette"
	"kilo/internal/render"
)

// DefaultPNGScale is the upscale factor of a PNG still.
const DefaultPNGScale = 2

// DefaultFPS is the frame rate of animation exports.
const DefaultFPS = 30

// WriteSVG writes the visible cells of g as an SVG document. It returns the
// number of cell paths written.
func WriteSVG(w io.Writer, g *grid.Grid, sw palette.Swatch) (int, error) {
	ew := &errWriter{w: w}
	vw, vh := g.Viewport().Pixels()
	s := render.NewSVG(ew, vw, vh)
	n := render.Scene(s, g, sw, true)
	s.End()
	if ew.err != nil {
		return 0, fmt.Errorf("write svg: %w", ew.err)
	}
	return n, nil
}

// RenderPNG rasterises the visible cells of g at an integer scale.
func RenderPNG(g *grid.Grid, sw palette.Swatch, scale int) *image.RGBA {
	vw, vh := g.Viewport().Pixels()
	r := render.NewRaster(vw, vh, scale)
	render.Scene(r, g, sw, true)
	return r.Image()
}

// WritePNG encodes RenderPNG to w.
func WritePNG(w io.Writer, g *grid.Grid, sw palette.Swatch, scale int) error {
	if err := png.Encode(w, RenderPNG(g, sw, scale)); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// FrameDelay converts a frame rate into an APNG delay in centiseconds.
func FrameDelay(fps int) uint16 {
	if fps <= 0 {
		fps = DefaultFPS
	}
	d := math.Round(100 / float64(fps))
	return uint16(max(1, d))
}

// WriteAPNG encodes frames as an endlessly looping animated PNG.
func WriteAPNG(w io.Writer, frames []Frame, fps int) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}
	a := &apng.APNG{
		Images: make([]image.Image, len(frames)),
		Delays: make([]uint16, len(frames)),
	}
	delay := FrameDelay(fps)
	for i, f := range frames {
		a.Images[i] = f.Image
		a.Delays[i] = delay
	}
	if err := apng.EncodeAll(w, a); err != nil {
		return fmt.Errorf("encode apng: %w", err)
	}
	return nil
}

// WriteSequence writes each frame to dir as frame_NNNNNN.png and returns the
// paths in order.
func WriteSequence(dir string, frames []Frame) ([]string, error) {
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	paths := make([]string, 0, len(frames))
	for _, f := range frames {
		path := filepath.Join(dir, FrameName(f.Index))
		if err := writePNGFile(path, f.Image); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writePNGFile(path string, img image.Image) error {
	return CreateFile(path, func(w io.Writer) error {
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		return nil
	})
}

// CreateFile creates path and hands a buffered writer to write. A failed
// write removes the partial file.
func CreateFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			os.Remove(path)
		}
	}()
	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// errWriter remembers the first write error so writers without error
// reporting can be checked once at the end.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

package studio

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"kilo/internal/core"
	"kilo/internal/export"
	"kilo/internal/grid"
	"kilo/internal/noise"
	"kilo/internal/palette"
	"kilo/internal/render"
	"kilo/internal/sampler"
)

const healthTimeout = 5 * time.Second

// snapshot is a frozen copy of a session. It owns its own noise field and
// samplers, so rendering it never touches the live session.
type snapshot struct {
	cfg    Config
	view   core.Viewport
	swatch palette.Swatch
	img    *sampler.Processed
}

func (s *Studio) snapshot() snapshot {
	var img *sampler.Processed
	if s.source != nil {
		img = s.icon.Image()
	}
	cfg := s.cfg
	cfg.Icon = s.icon.Config()
	cfg.Brightness = s.bright.Config()
	return snapshot{cfg: cfg, view: s.Canvas(), swatch: s.swatch, img: img}
}

// build lays out a fully revealed grid and the source that drives it.
func (sn snapshot) build() (*grid.Grid, grid.Source) {
	g := grid.New(sn.view, grid.WithZoom(sn.cfg.Zoom))
	g.RevealAll()
	icon := sampler.NewIcon(sn.cfg.Icon)
	bright := sampler.NewBrightness(sn.cfg.Brightness)
	if sn.img != nil {
		icon.Load(sn.img)
		bright.Load(sn.img)
	}
	return g, sn.cfg.source(noise.New(sn.cfg.Noise), icon, bright, sn.img != nil)
}

// step sizes g for frame. Without a source every cell is hidden, leaving
// only the background.
func step(g *grid.Grid, src grid.Source, frame int) {
	if src == nil {
		cells := g.Cells()
		for i := range cells {
			cells[i].Hide()
		}
		return
	}
	g.Step(src, frame)
}

// still returns a grid sized for the most recently stepped frame.
func (s *Studio) still() (*grid.Grid, snapshot) {
	sn := s.snapshot()
	g, src := sn.build()
	step(g, src, max(s.frame-1, 0))
	return g, sn
}

// ExportSVG writes the current frame as SVG and returns the number of cell
// paths.
func (s *Studio) ExportSVG(w io.Writer) (int, error) {
	g, sn := s.still()
	n, err := export.WriteSVG(w, g, sn.swatch)
	if err != nil {
		return 0, err
	}
	s.log.Info("svg exported", zap.Int("paths", n))
	return n, nil
}

// ExportPNG writes the current frame as PNG at the configured scale.
func (s *Studio) ExportPNG(w io.Writer) error {
	g, sn := s.still()
	if err := export.WritePNG(w, g, sn.swatch, sn.cfg.PNGScale); err != nil {
		return err
	}
	s.log.Info("png exported", zap.Int("scale", sn.cfg.PNGScale))
	return nil
}

// capture renders one full noise loop. The capture counter is the noise
// frame, so the last frame joins the first without a seam.
func (sn snapshot) capture(ctx context.Context, report export.Report) ([]export.Frame, error) {
	g, src := sn.build()
	c := export.NewCapture(sn.cfg.Noise.LoopDuration)
	w, h := sn.view.Pixels()
	for !c.Done() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		step(g, src, c.Next())
		r := render.NewRaster(w, h, 1)
		render.Scene(r, g, sn.swatch, true)
		c.Add(render.Quantize(r.Image(), sn.swatch))
		report(export.StateCapturing, c.Percent())
	}
	return c.Frames(), nil
}

// Exporting reports whether a loop export is running.
func (s *Studio) Exporting() bool { return s.runner.Busy() }

// ExportProgress returns the latest loop export progress.
func (s *Studio) ExportProgress() export.Progress { return s.runner.Latest() }

// CancelExport stops the running loop export and discards its frames.
func (s *Studio) CancelExport() { s.runner.Cancel() }

// runLoop captures a loop in the background and hands the frames to finish.
// A non-nil before runs ahead of the capture.
func (s *Studio) runLoop(ctx context.Context, kind string, before func(context.Context) error, finish func(context.Context, snapshot, []export.Frame, export.Report) error) (<-chan export.Progress, error) {
	sn := s.snapshot()
	log := s.log.With(zap.String("export", kind), zap.Int("frames", sn.cfg.Noise.LoopDuration))
	return s.runner.Go(ctx, func(ctx context.Context, report export.Report) error {
		start := time.Now()
		log.Info("export started")
		var frames []export.Frame
		var err error
		if before != nil {
			err = before(ctx)
		}
		if err == nil {
			frames, err = sn.capture(ctx, report)
		}
		if err == nil {
			err = finish(ctx, sn, frames, report)
		}
		switch {
		case err == nil:
			log.Info("export finished", zap.Duration("elapsed", time.Since(start)))
		case ctx.Err() != nil:
			log.Info("export canceled")
		default:
			log.Error("export failed", zap.Error(err))
		}
		return err
	})
}

// ExportAPNG captures one loop and writes it to path as an animated PNG.
func (s *Studio) ExportAPNG(ctx context.Context, path string) (<-chan export.Progress, error) {
	return s.runLoop(ctx, "apng", nil, func(_ context.Context, sn snapshot, frames []export.Frame, report export.Report) error {
		report(export.StateWriting, 0)
		return export.CreateFile(path, func(w io.Writer) error {
			return export.WriteAPNG(w, frames, sn.cfg.FPS)
		})
	})
}

// ExportSequence captures one loop and writes each frame to dir.
func (s *Studio) ExportSequence(ctx context.Context, dir string) (<-chan export.Progress, error) {
	return s.runLoop(ctx, "sequence", nil, func(_ context.Context, _ snapshot, frames []export.Frame, report export.Report) error {
		report(export.StateWriting, 0)
		_, err := export.WriteSequence(dir, frames)
		return err
	})
}

// ExportVideo checks the conversion server, captures one loop and writes the
// encoded video to path.
func (s *Studio) ExportVideo(ctx context.Context, client *export.VideoClient, format, path string) (<-chan export.Progress, error) {
	if n := s.cfg.Noise.LoopDuration; n > export.MaxVideoFrames {
		return nil, fmt.Errorf("%w: loop of %d frames exceeds %d", export.ErrServer, n, export.MaxVideoFrames)
	}
	health := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, healthTimeout)
		defer cancel()
		version, err := client.Health(ctx)
		if err != nil {
			return fmt.Errorf("video server unavailable: %w", err)
		}
		s.log.Debug("video server ready", zap.String("version", version))
		return nil
	}
	return s.runLoop(ctx, "video", health, func(ctx context.Context, _ snapshot, frames []export.Frame, report export.Report) error {
		return export.CreateFile(path, func(w io.Writer) error {
			return client.Convert(ctx, frames, format, w, report)
		})
	})
}

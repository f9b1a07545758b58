// Command kilo-export renders a session without a window and writes it as
// SVG, PNG, an animated PNG, a PNG sequence or a converted video.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"kilo/internal/app"
	"kilo/internal/export"
	"kilo/internal/studio"
)

func main() {
	cfg := app.NewConfig()
	cfg.Reveal = false
	cfg.Bind(flag.CommandLine)
	format := flag.String("format", "svg", "output format: svg, png, apng, frames or video")
	output := flag.String("o", "", "output path (defaults to kilo.<ext> under -out)")
	frame := flag.Int("frame", 0, "noise frame rendered by still exports")
	flag.Parse()

	logger, err := cfg.Logger(false)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	if err := run(cfg, logger, strings.ToLower(*format), *output, *frame); err != nil {
		logger.Error("export failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *app.Config, logger *zap.Logger, format, output string, frame int) error {
	session, err := cfg.Setup(logger)
	if err != nil {
		return err
	}
	if session.NeedsImage() {
		return fmt.Errorf("mode %s needs -image", session.Mode())
	}
	// Stills render the frame before the session counter.
	for i := 0; i <= frame; i++ {
		session.Step()
	}
	if output == "" {
		output = filepath.Join(cfg.OutDir, defaultName(format, cfg.VideoFormat))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var progress <-chan export.Progress
	switch format {
	case "svg":
		return export.CreateFile(output, func(w io.Writer) error {
			return writeSVG(w, session, logger.With(zap.String("path", output)))
		})
	case "png":
		return export.CreateFile(output, func(w io.Writer) error {
			logger.Info("writing png", zap.String("path", output))
			return session.ExportPNG(w)
		})
	case "apng":
		progress, err = session.ExportAPNG(ctx, output)
	case "frames":
		progress, err = session.ExportSequence(ctx, output)
	case "video":
		client := export.NewVideoClient(cfg.Server, logger)
		progress, err = session.ExportVideo(ctx, client, cfg.VideoFormat, output)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return err
	}
	return wait(progress, logger)
}

func writeSVG(w io.Writer, session *studio.Studio, logger *zap.Logger) error {
	n, err := session.ExportSVG(w)
	if err != nil {
		return err
	}
	logger.Info("wrote svg", zap.Int("paths", n))
	return nil
}

// wait drains progress until the export finishes, logging each state change.
func wait(progress <-chan export.Progress, logger *zap.Logger) error {
	var last export.Progress
	for p := range progress {
		if p.State != last.State {
			logger.Info("export", zap.Stringer("state", p.State), zap.Float64("percent", p.Percent))
		}
		last = p
	}
	switch last.State {
	case export.StateDone:
		return nil
	case export.StateCanceled:
		return context.Canceled
	default:
		if last.Err != nil {
			return last.Err
		}
		return fmt.Errorf("export ended in state %s", last.State)
	}
}

func defaultName(format, video string) string {
	switch format {
	case "frames":
		return "kilo-frames"
	case "video":
		return "kilo." + video
	case "apng":
		return "kilo.apng.png"
	default:
		return "kilo." + format
	}
}

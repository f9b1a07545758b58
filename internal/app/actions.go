package app

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"kilo/internal/export"
	"kilo/internal/studio"
)

// Command is one user action, independent of how it was triggered.
type Command int

const (
	CmdNone Command = iota
	CmdQuit
	CmdGrow
	CmdShrink
	CmdMode
	CmdSwatch
	CmdAnimate
	CmdDiscrete
	CmdReveal
	CmdSVG
	CmdPNG
	CmdLoop
	CmdVideo
	CmdCancel
)

// runeCommands maps keyboard characters onto commands. "+" raises the zoom
// factor, enlarging the cells.
var runeCommands = map[rune]Command{
	'q': CmdQuit,
	'+': CmdGrow,
	'=': CmdGrow,
	'-': CmdShrink,
	'm': CmdMode,
	'c': CmdSwatch,
	'a': CmdAnimate,
	'd': CmdDiscrete,
	'r': CmdReveal,
	's': CmdSVG,
	'p': CmdPNG,
	'l': CmdLoop,
	'v': CmdVideo,
	'x': CmdCancel,
}

// CommandForRune returns the command bound to r.
func CommandForRune(r rune) Command {
	if r >= 'A' && r <= 'Z' {
		r += 'a' - 'A'
	}
	return runeCommands[r]
}

// Actions carries out commands against a session.
type Actions struct {
	session *studio.Studio
	cfg     *Config
	log     *zap.Logger
	video   *export.VideoClient
	now     func() time.Time
}

// NewActions returns Actions writing exports under cfg.OutDir.
func NewActions(s *studio.Studio, cfg *Config, log *zap.Logger) *Actions {
	if log == nil {
		log = zap.NewNop()
	}
	return &Actions{
		session: s,
		cfg:     cfg,
		log:     log,
		video:   export.NewVideoClient(cfg.Server, log.Named("video")),
		now:     time.Now,
	}
}

// Do runs cmd and returns a status message for the user, if any. It reports
// false when the program should quit.
func (a *Actions) Do(cmd Command) (string, bool) {
	s := a.session
	switch cmd {
	case CmdQuit:
		return "", false
	case CmdShrink:
		s.ZoomIn()
		return fmt.Sprintf("Zoom %.2f", s.Grid().Zoom()), true
	case CmdGrow:
		s.ZoomOut()
		return fmt.Sprintf("Zoom %.2f", s.Grid().Zoom()), true
	case CmdMode:
		s.CycleMode()
		return "Mode " + s.Mode().String(), true
	case CmdSwatch:
		s.CycleSwatch()
		return fmt.Sprintf("Swatch %d", s.Config().Swatch), true
	case CmdAnimate:
		s.ToggleAnimate()
		return "Animate " + onOff(s.Config().Noise.Animate), true
	case CmdDiscrete:
		s.ToggleDiscrete()
		return "Discrete steps toggled", true
	case CmdReveal:
		s.RestartReveal()
		return "", true
	case CmdSVG:
		return a.saveStill("svg", func(w io.Writer) error {
			_, err := s.ExportSVG(w)
			return err
		}), true
	case CmdPNG:
		return a.saveStill("png", s.ExportPNG), true
	case CmdLoop:
		return a.start("Loop", func(ctx context.Context) (<-chan export.Progress, error) {
			return s.ExportAPNG(ctx, a.outPath("apng.png"))
		}), true
	case CmdVideo:
		return a.start("Video", func(ctx context.Context) (<-chan export.Progress, error) {
			return s.ExportVideo(ctx, a.video, a.cfg.VideoFormat, a.outPath(a.cfg.VideoFormat))
		}), true
	case CmdCancel:
		if !s.Exporting() {
			return "", true
		}
		s.CancelExport()
		return "Export canceled", true
	}
	return "", true
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// outPath returns a timestamped file name in the output directory.
func (a *Actions) outPath(ext string) string {
	name := fmt.Sprintf("kilo-%s.%s", a.now().Format("20060102-150405"), ext)
	return filepath.Join(a.cfg.OutDir, name)
}

func (a *Actions) saveStill(ext string, write func(io.Writer) error) string {
	path := a.outPath(ext)
	if err := export.CreateFile(path, write); err != nil {
		a.log.Error("export failed", zap.String("path", path), zap.Error(err))
		return "Export failed: " + err.Error()
	}
	return "Saved " + path
}

func (a *Actions) start(what string, run func(context.Context) (<-chan export.Progress, error)) string {
	if _, err := run(context.Background()); err != nil {
		a.log.Warn("export not started", zap.Error(err))
		return what + " export not started: " + err.Error()
	}
	return what + " export started"
}

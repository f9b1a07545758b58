package app

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"kilo/internal/core"
	"kilo/internal/export"
	"kilo/internal/lattice"
	"kilo/internal/palette"
	"kilo/internal/studio"
)

// Config represents the command-line parameters shared by the binaries.
type Config struct {
	Mode    string
	Width   int
	Height  int
	Zoom    float64
	Seed    int64
	TPS     int
	Swatch  int
	Hue     float64
	Image   string
	Loop    int
	Speed   float64
	Animate bool
	Reveal  bool

	OutDir      string
	Server      string
	VideoFormat string

	LogLevel string
	LogFile  string

	Sets kvList
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Mode:        core.ModeNoise.String(),
		Width:       int(studio.DefaultCanvas.W),
		Height:      int(studio.DefaultCanvas.H),
		Zoom:        lattice.DefaultZoom,
		Seed:        42,
		TPS:         60,
		Swatch:      palette.DefaultIndex,
		Hue:         -1,
		Loop:        300,
		Speed:       1,
		Reveal:      true,
		OutDir:      ".",
		Server:      "http://localhost:5000",
		VideoFormat: export.FormatMP4,
		LogLevel:    "info",
	}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Mode, "mode", c.Mode, "data source: noise, icon or brightness")
	fs.IntVar(&c.Width, "width", c.Width, "canvas width in noise mode")
	fs.IntVar(&c.Height, "height", c.Height, "canvas height in noise mode")
	fs.Float64Var(&c.Zoom, "zoom", c.Zoom, "cell zoom factor")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for noise and reveal")
	fs.IntVar(&c.TPS, "tps", c.TPS, "ticks per second")
	fs.IntVar(&c.Swatch, "swatch", c.Swatch, "palette swatch index")
	fs.Float64Var(&c.Hue, "hue", c.Hue, "generate the swatch from this HSLuv hue (negative to use -swatch)")
	fs.StringVar(&c.Image, "image", c.Image, "image to sample in icon and brightness modes")
	fs.IntVar(&c.Loop, "loop", c.Loop, "noise loop length in frames")
	fs.Float64Var(&c.Speed, "speed", c.Speed, "noise animation speed")
	fs.BoolVar(&c.Animate, "animate", c.Animate, "animate the noise field")
	fs.BoolVar(&c.Reveal, "reveal", c.Reveal, "run the reveal sequence on start")
	fs.StringVar(&c.OutDir, "out", c.OutDir, "directory exports are written to")
	fs.StringVar(&c.Server, "server", c.Server, "video conversion server URL")
	fs.StringVar(&c.VideoFormat, "video-format", c.VideoFormat, "video format: mp4 or mov")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level: debug, info, warn or error")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "write logs to this file instead of stderr")
	fs.Var(&c.Sets, "set", "parameter override in key=value form (repeatable)")
}

// Studio converts the flags into a session configuration.
func (c *Config) Studio() (studio.Config, error) {
	mode, err := core.ParseMode(c.Mode)
	if err != nil {
		return studio.Config{}, err
	}
	if c.Width <= 0 || c.Height <= 0 {
		return studio.Config{}, fmt.Errorf("canvas %dx%d has no area", c.Width, c.Height)
	}
	cfg := studio.DefaultConfig()
	cfg.Mode = mode
	cfg.Canvas = core.Viewport{W: float64(c.Width), H: float64(c.Height)}
	cfg.Zoom = c.Zoom
	cfg.Seed = c.Seed
	cfg.Noise.Seed = c.Seed
	cfg.Swatch = c.Swatch
	if c.Hue >= 0 {
		cfg.Hue = c.Hue
		cfg.UseHue = true
	}
	if c.Loop > 0 {
		cfg.Noise.LoopDuration = c.Loop
	}
	cfg.Noise.Speed = c.Speed
	cfg.Noise.Animate = c.Animate
	cfg.Reveal = c.Reveal
	return cfg, nil
}

// Setup builds the session: flags, then the -image upload, then the -set
// overrides. Override errors are logged and otherwise ignored.
func (c *Config) Setup(log *zap.Logger) (*studio.Studio, error) {
	cfg, err := c.Studio()
	if err != nil {
		return nil, err
	}
	s := studio.New(cfg, log)
	if c.Image != "" {
		f, err := os.Open(c.Image)
		if err != nil {
			return nil, err
		}
		err = s.LoadImage(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.Image, err)
		}
	}
	if err := s.ApplyOverrides(c.Sets); err != nil {
		log.Warn("ignored overrides", zap.Error(err))
	}
	return s, nil
}

// Logger builds a zap logger at the configured level. Development loggers
// use the console encoder, the rest JSON.
func (c *Config) Logger(development bool) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	if c.LogFile != "" {
		zc.OutputPaths = []string{c.LogFile}
		zc.ErrorOutputPaths = []string{c.LogFile}
	}
	return zc.Build()
}

type kvList []string

func (l *kvList) String() string {
	return strings.Join(*l, ",")
}

func (l *kvList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

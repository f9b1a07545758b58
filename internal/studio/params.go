package studio

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"kilo/internal/core"
	"kilo/internal/lattice"
	"kilo/internal/palette"
)

// Parameters returns the current tunables grouped for display.
func (s *Studio) Parameters() core.ParameterSnapshot {
	n := s.cfg.Noise
	c := s.curve()
	b := s.bright.Config()
	w, h := s.Canvas().Pixels()
	groups := []core.ParameterGroup{
		{
			Name: "Grid",
			Params: []core.Parameter{
				stringParam("mode", "Mode", s.cfg.Mode.String()),
				intParam("w", "Canvas width", w),
				intParam("h", "Canvas height", h),
				floatParam("zoom", "Zoom", s.grid.Zoom()),
				int64Param("seed", "Seed", s.cfg.Seed),
				intParam("swatch", "Swatch", s.cfg.Swatch),
			},
		},
		{
			Name: "Noise",
			Params: []core.Parameter{
				floatParam("scale", "Noise scale", n.Scale),
				floatParam("z_offset", "Z offset", n.ZOffset),
				floatParam("animation_range", "Animation range", n.AnimationRange),
				intParam("loop", "Loop frames", n.LoopDuration),
				floatParam("speed", "Speed", n.Speed),
				boolParam("animate", "Animate", n.Animate),
			},
		},
		{
			Name:    "Curve",
			Summary: s.cfg.Mode.String(),
			Params: []core.Parameter{
				floatParam("threshold", "Threshold", c.Threshold),
				floatParam("upper_threshold", "Upper threshold", c.UpperThreshold),
				intParam("steps", "Height steps", c.HeightSteps),
				boolParam("discrete", "Discrete steps", c.UseDiscreteSteps),
				floatParam("width_min", "Width min", c.WidthMinScale),
				floatParam("width_max", "Width max", c.WidthMaxScale),
				floatParam("height_min", "Height min", c.HeightMinScale),
				floatParam("height_max", "Height max", c.HeightMaxScale),
			},
		},
		{
			Name: "Brightness",
			Params: []core.Parameter{
				floatParam("brightness", "Brightness", b.Brightness),
				floatParam("contrast", "Contrast", b.Contrast),
				boolParam("invert", "Invert", b.Invert),
				floatParam("alpha_threshold", "Alpha threshold", b.AlphaThreshold),
				floatParam("icon_alpha_threshold", "Icon alpha threshold", s.icon.Config().AlphaThreshold),
			},
		},
		{
			Name: "Export",
			Params: []core.Parameter{
				intParam("png_scale", "PNG scale", s.cfg.PNGScale),
				intParam("fps", "Frames per second", s.cfg.FPS),
			},
		},
	}
	return core.ParameterSnapshot{Groups: groups}
}

var controls = []core.ParameterControl{
	{Key: "zoom", Label: "Zoom", Type: core.ParamTypeFloat, Step: 0.05, Min: lattice.MinZoom, Max: lattice.MaxZoom, HasMin: true, HasMax: true},
	{Key: "swatch", Label: "Swatch", Type: core.ParamTypeInt, Step: 1, Min: 0, Max: float64(len(palette.Swatches) - 1), HasMin: true, HasMax: true},
	{Key: "seed", Label: "Seed", Type: core.ParamTypeInt, Step: 1},
	{Key: "scale", Label: "Noise scale", Type: core.ParamTypeFloat, Step: 0.001, Min: 0.0005, Max: 0.1, HasMin: true, HasMax: true},
	{Key: "z_offset", Label: "Z offset", Type: core.ParamTypeFloat, Step: 10},
	{Key: "animation_range", Label: "Animation range", Type: core.ParamTypeFloat, Step: 10, Min: 0, Max: 1000, HasMin: true, HasMax: true},
	{Key: "loop", Label: "Loop frames", Type: core.ParamTypeInt, Step: 30, Min: 1, Max: 3000, HasMin: true, HasMax: true},
	{Key: "speed", Label: "Speed", Type: core.ParamTypeFloat, Step: 0.1, Min: 0, Max: 10, HasMin: true, HasMax: true},
	{Key: "animate", Label: "Animate", Type: core.ParamTypeBool},
	{Key: "threshold", Label: "Threshold", Type: core.ParamTypeFloat, Step: 0.05, Min: 0, Max: 1, HasMin: true, HasMax: true},
	{Key: "upper_threshold", Label: "Upper threshold", Type: core.ParamTypeFloat, Step: 0.05, Min: 0, Max: 1, HasMin: true, HasMax: true},
	{Key: "steps", Label: "Height steps", Type: core.ParamTypeInt, Step: 1, Min: 1, Max: 20, HasMin: true, HasMax: true},
	{Key: "discrete", Label: "Discrete steps", Type: core.ParamTypeBool},
	{Key: "width_min", Label: "Width min", Type: core.ParamTypeFloat, Step: 0.05, Min: 0, Max: 1, HasMin: true, HasMax: true},
	{Key: "width_max", Label: "Width max", Type: core.ParamTypeFloat, Step: 0.05, Min: 0, Max: 1, HasMin: true, HasMax: true},
	{Key: "height_min", Label: "Height min", Type: core.ParamTypeFloat, Step: 0.05, Min: 0, Max: 1, HasMin: true, HasMax: true},
	{Key: "height_max", Label: "Height max", Type: core.ParamTypeFloat, Step: 0.05, Min: 0, Max: 1, HasMin: true, HasMax: true},
	{Key: "brightness", Label: "Brightness", Type: core.ParamTypeFloat, Step: 0.05, Min: -1, Max: 1, HasMin: true, HasMax: true},
	{Key: "contrast", Label: "Contrast", Type: core.ParamTypeFloat, Step: 0.1, Min: 0, Max: 5, HasMin: true, HasMax: true},
	{Key: "invert", Label: "Invert", Type: core.ParamTypeBool},
	{Key: "alpha_threshold", Label: "Alpha threshold", Type: core.ParamTypeFloat, Step: 0.05, Min: 0, Max: 1, HasMin: true, HasMax: true},
	{Key: "icon_alpha_threshold", Label: "Icon alpha threshold", Type: core.ParamTypeFloat, Step: 0.05, Min: 0, Max: 1, HasMin: true, HasMax: true},
	{Key: "png_scale", Label: "PNG scale", Type: core.ParamTypeInt, Step: 1, Min: 1, Max: 8, HasMin: true, HasMax: true},
	{Key: "fps", Label: "Frames per second", Type: core.ParamTypeInt, Step: 1, Min: 1, Max: 60, HasMin: true, HasMax: true},
}

// ParameterControls lists the parameters adjustable from the HUD.
func (s *Studio) ParameterControls() []core.ParameterControl {
	out := make([]core.ParameterControl, len(controls))
	copy(out, controls)
	return out
}

func control(key string) (core.ParameterControl, bool) {
	for _, c := range controls {
		if c.Key == key {
			return c, true
		}
	}
	return core.ParameterControl{}, false
}

// SetIntParameter updates an integer parameter. It reports whether key was
// recognised.
func (s *Studio) SetIntParameter(key string, value int) bool {
	ctrl, ok := control(key)
	if !ok || ctrl.Type != core.ParamTypeInt {
		return false
	}
	value = int(ctrl.Clamp(float64(value)))
	switch key {
	case "swatch":
		s.SetSwatch(value)
	case "seed":
		s.cfg.Seed = int64(value)
		s.cfg.Noise.Seed = int64(value)
		s.field.SetConfig(s.cfg.Noise)
	case "loop":
		s.cfg.Noise.LoopDuration = value
		s.field.SetConfig(s.cfg.Noise)
	case "steps":
		c := s.curve()
		c.HeightSteps = value
		s.setCurve(c)
	case "png_scale":
		s.cfg.PNGScale = value
	case "fps":
		s.cfg.FPS = value
	default:
		return false
	}
	return true
}

// SetFloatParameter updates a floating point parameter. It reports whether
// key was recognised.
func (s *Studio) SetFloatParameter(key string, value float64) bool {
	ctrl, ok := control(key)
	if !ok || ctrl.Type != core.ParamTypeFloat {
		return false
	}
	value = ctrl.Clamp(value)
	n := s.cfg.Noise
	c := s.curve()
	b := s.bright.Config()
	switch key {
	case "zoom":
		s.grid.SetZoom(value)
		s.cfg.Zoom = s.grid.Zoom()
		return true
	case "scale":
		n.Scale = value
	case "z_offset":
		n.ZOffset = value
	case "animation_range":
		n.AnimationRange = value
	case "speed":
		n.Speed = value
	case "threshold":
		c.Threshold = value
	case "upper_threshold":
		c.UpperThreshold = value
	case "width_min":
		c.WidthMinScale = value
	case "width_max":
		c.WidthMaxScale = value
	case "height_min":
		c.HeightMinScale = value
	case "height_max":
		c.HeightMaxScale = value
	case "brightness":
		b.Brightness = value
	case "contrast":
		b.Contrast = value
	case "alpha_threshold":
		b.AlphaThreshold = value
	case "icon_alpha_threshold":
		ic := s.icon.Config()
		ic.AlphaThreshold = value
		s.icon.SetConfig(ic)
		s.cfg.Icon = ic
		return true
	default:
		return false
	}
	if n != s.cfg.Noise {
		s.cfg.Noise = n
		s.field.SetConfig(n)
	}
	if c != s.curve() {
		s.setCurve(c)
	}
	if b != s.bright.Config() {
		s.bright.SetConfig(b)
		s.cfg.Brightness = b
	}
	return true
}

// SetBoolParameter updates a boolean parameter. It reports whether key was
// recognised.
func (s *Studio) SetBoolParameter(key string, value bool) bool {
	switch key {
	case "animate":
		s.cfg.Noise.Animate = value
		s.field.SetConfig(s.cfg.Noise)
	case "discrete":
		c := s.curve()
		c.UseDiscreteSteps = value
		s.setCurve(c)
	case "invert":
		b := s.bright.Config()
		b.Invert = value
		s.bright.SetConfig(b)
		s.cfg.Brightness = b
	default:
		return false
	}
	return true
}

// ApplyOverrides applies key=value pairs through the parameter setters. Every
// pair is attempted; the returned error joins the ones that failed.
func (s *Studio) ApplyOverrides(pairs []string) error {
	var errs []error
	for _, kv := range pairs {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			errs = append(errs, fmt.Errorf("override %q: want key=value", kv))
			continue
		}
		if err := s.set(strings.TrimSpace(key), strings.TrimSpace(value)); err != nil {
			errs = append(errs, fmt.Errorf("override %q: %w", kv, err))
		}
	}
	return errors.Join(errs...)
}

var errUnknownParameter = errors.New("unknown parameter")

func (s *Studio) set(key, value string) error {
	if key == "mode" {
		m, err := core.ParseMode(value)
		if err != nil {
			return err
		}
		s.SetMode(m)
		return nil
	}
	ctrl, ok := control(key)
	if !ok {
		return errUnknownParameter
	}
	switch ctrl.Type {
	case core.ParamTypeInt:
		v, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		s.SetIntParameter(key, v)
	case core.ParamTypeFloat:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		s.SetFloatParameter(key, v)
	case core.ParamTypeBool:
		v, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		s.SetBoolParameter(key, v)
	}
	return nil
}

func stringParam(key, label, value string) core.Parameter {
	return core.Parameter{Key: key, Label: label, Type: core.ParamTypeString, Value: value}
}

func intParam(key, label string, value int) core.Parameter {
	return core.Parameter{Key: key, Label: label, Type: core.ParamTypeInt, Value: strconv.Itoa(value)}
}

func int64Param(key, label string, value int64) core.Parameter {
	return core.Parameter{Key: key, Label: label, Type: core.ParamTypeInt, Value: strconv.FormatInt(value, 10)}
}

func floatParam(key, label string, value float64) core.Parameter {
	return core.Parameter{Key: key, Label: label, Type: core.ParamTypeFloat, Value: strconv.FormatFloat(value, 'f', -1, 64)}
}

func boolParam(key, label string, value bool) core.Parameter {
	return core.Parameter{Key: key, Label: label, Type: core.ParamTypeBool, Value: strconv.FormatBool(value)}
}

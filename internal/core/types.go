package core

import (
	"fmt"
	"strings"
)

// Viewport describes the canvas the lattice is laid out on, in canvas units.
type Viewport struct {
	W float64
	H float64
}

// Center returns the midpoint of the viewport.
func (v Viewport) Center() (float64, float64) { return v.W / 2, v.H / 2 }

// Empty reports whether the viewport has no area.
func (v Viewport) Empty() bool { return v.W <= 0 || v.H <= 0 }

// Pixels returns the viewport rounded to whole pixels.
func (v Viewport) Pixels() (int, int) {
	w, h := int(v.W+0.5), int(v.H+0.5)
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return w, h
}

// Mode selects which data source drives the cell sizes.
type Mode uint8

const (
	// ModeNoise sizes cells from the 4D noise field.
	ModeNoise Mode = iota
	// ModeIcon sizes cells from noise and masks them with an uploaded icon.
	ModeIcon
	// ModeBrightness sizes cells from the luminance of an uploaded image.
	ModeBrightness
)

// Modes lists every mode in cycling order.
var Modes = []Mode{ModeNoise, ModeIcon, ModeBrightness}

func (m Mode) String() string {
	switch m {
	case ModeNoise:
		return "noise"
	case ModeIcon:
		return "icon"
	case ModeBrightness:
		return "brightness"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// UsesImage reports whether the mode needs an uploaded image to draw.
func (m Mode) UsesImage() bool { return m == ModeIcon || m == ModeBrightness }

// Next returns the mode after m in cycling order.
func (m Mode) Next() Mode { return Modes[(int(m)+1)%len(Modes)] }

// ParseMode converts a mode name into a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "noise":
		return ModeNoise, nil
	case "icon":
		return ModeIcon, nil
	case "brightness", "image":
		return ModeBrightness, nil
	}
	return ModeNoise, fmt.Errorf("unknown mode %q", s)
}

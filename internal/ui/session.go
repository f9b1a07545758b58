package ui

import (
	"fmt"

	"kilo/internal/core"
	"kilo/internal/export"
	"kilo/internal/grid"
	"kilo/internal/sampler"
)

// Session is the part of a studio session the HUD and overlay read and
// adjust.
type Session interface {
	core.ParameterControlsProvider
	core.IntParameterSetter
	core.FloatParameterSetter
	core.BoolParameterSetter

	Parameters() core.ParameterSnapshot
	Mode() core.Mode
	Frame() int
	Canvas() core.Viewport
	Grid() *grid.Grid
	Reveal() *grid.Reveal
	Processed() *sampler.Processed
	NeedsImage() bool
	ExportProgress() export.Progress
}

// StatusLine summarises a session for one-line displays.
func StatusLine(s Session) string {
	c := s.Grid().Counts()
	line := fmt.Sprintf("%s | cells %d visible %d drawn %d | frame %d", s.Mode(), c.Total, c.Visible, c.NonZero, s.Frame())
	if p := s.ExportProgress(); p.State != export.StateIdle {
		line += " | export " + ExportLine(p)
	}
	return line
}

// ExportLine describes export progress.
func ExportLine(p export.Progress) string {
	switch {
	case p.Err != nil && p.State == export.StateFailed:
		return p.State.String() + ": " + p.Err.Error()
	case p.State.Terminal() || p.State == export.StateIdle:
		return p.State.String()
	default:
		return fmt.Sprintf("%s %d%%", p.State, int(p.Percent))
	}
}

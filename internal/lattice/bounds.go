// Package lattice holds the pure geometry of the infinite cell lattice: which
// window of cells covers a viewport, where the lattice sits under zoom, and
// which cells are worth materialising.
package lattice

import "math"

const (
	// MinZoom is the most zoomed-out cell scale.
	MinZoom = 0.01
	// MaxZoom is the most zoomed-in cell scale.
	MaxZoom = 5.0
	// ExtraCells pads the coverage window on each axis.
	ExtraCells = 10

	// DefaultBaseWidth is the lattice cell width at zoom 1.
	DefaultBaseWidth = 100.0
	// DefaultBaseHeight is the lattice cell height at zoom 1.
	DefaultBaseHeight = 128.0
	// DefaultZoom is the zoom a fresh grid starts at.
	DefaultZoom = 0.2
)

// Limits bundles the zoom range and window padding used by the calculators.
type Limits struct {
	MinZoom    float64
	MaxZoom    float64
	ExtraCells int
}

// DefaultLimits returns the standard zoom range and padding.
func DefaultLimits() Limits {
	return Limits{MinZoom: MinZoom, MaxZoom: MaxZoom, ExtraCells: ExtraCells}
}

// ClampZoom limits z to [MinZoom, MaxZoom]. NaN maps to MinZoom.
func (l Limits) ClampZoom(z float64) float64 {
	if math.IsNaN(z) || z < l.MinZoom {
		return l.MinZoom
	}
	if z > l.MaxZoom {
		return l.MaxZoom
	}
	return z
}

// Window is a rectangular block of lattice indices.
type Window struct {
	Rows     int
	Cols     int
	StartRow int
	StartCol int
}

// EndRow returns one past the last row index.
func (w Window) EndRow() int { return w.StartRow + w.Rows }

// EndCol returns one past the last column index.
func (w Window) EndCol() int { return w.StartCol + w.Cols }

// Around returns the window moved so its centre sits on lattice (row, col).
func (w Window) Around(row, col int) Window {
	w.StartRow += row
	w.StartCol += col
	return w
}

// Len returns the number of cells in the window.
func (w Window) Len() int { return w.Rows * w.Cols }

// Bounds computes the lattice window that covers a viewport of viewW x viewH
// at the loosest zoom the lattice can be shown at, so zooming in never needs a
// larger window. The window is centred on lattice (0,0) and padded by
// ExtraCells on each axis. A zoom of zero or less means "not supplied".
func (l Limits) Bounds(viewW, viewH, baseW, baseH, zoom float64) Window {
	z := l.MinZoom
	if zoom > 0 && zoom < z {
		z = zoom
	}
	cols := l.ExtraCells
	rows := l.ExtraCells
	if viewW > 0 && baseW > 0 {
		cols += int(math.Ceil(viewW / (baseW * z)))
	}
	if viewH > 0 && baseH > 0 {
		rows += int(math.Ceil(viewH / (baseH * z)))
	}
	return Window{
		Rows:     rows,
		Cols:     cols,
		StartRow: -ceilHalf(rows),
		StartCol: -ceilHalf(cols),
	}
}

// CellCount returns how many whole cells of cellW x cellH cover w x h.
func CellCount(w, h, cellW, cellH float64) (cols, rows int) {
	if cellW <= 0 || cellH <= 0 {
		return 0, 0
	}
	return int(math.Ceil(w / cellW)), int(math.Ceil(h / cellH))
}

// Density returns cells per square canvas unit.
func Density(cellW, cellH float64) float64 {
	if cellW <= 0 || cellH <= 0 {
		return 0
	}
	return 1 / (cellW * cellH)
}

func ceilHalf(n int) int { return (n + 1) / 2 }

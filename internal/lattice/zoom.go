package lattice

// CenterOffset returns the translation that keeps the canvas point
// (anchorX, anchorY) over the same lattice position when cells are scaled by
// zoom. The anchor's lattice coordinate is taken at zoom 1.
func CenterOffset(anchorX, anchorY, baseW, baseH, zoom float64) (x, y float64) {
	if baseW <= 0 || baseH <= 0 {
		return 0, 0
	}
	col := anchorX / baseW
	row := anchorY / baseH
	return anchorX - col*baseW*zoom, anchorY - row*baseH*zoom
}

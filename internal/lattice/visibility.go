package lattice

// NearViewport reports whether the box (x, y, w, h) intersects the viewport
// grown by one box size on every side. Cells that fail this test are never
// materialised.
func NearViewport(x, y, w, h, viewW, viewH float64) bool {
	return x+w >= -w &&
		y+h >= -h &&
		x < viewW+w &&
		y < viewH+h
}

// InViewport reports whether the box (x, y, w, h) overlaps the viewport.
func InViewport(x, y, w, h, viewW, viewH float64) bool {
	return x < viewW && y < viewH && x+w > 0 && y+h > 0
}

// PointInBounds reports whether (x, y) lies in [0,w) x [0,h).
func PointInBounds(x, y, w, h float64) bool {
	return x >= 0 && y >= 0 && x < w && y < h
}

// VisibleArea returns the area of the box that falls inside the viewport.
func VisibleArea(x, y, w, h, viewW, viewH float64) float64 {
	left := max(0, x)
	top := max(0, y)
	right := min(viewW, x+w)
	bottom := min(viewH, y+h)
	if right <= left || bottom <= top {
		return 0
	}
	return (right - left) * (bottom - top)
}

// Box is anything with an axis-aligned footprint.
type Box interface {
	Bounds() (x, y, w, h float64)
}

// CountInViewport counts boxes overlapping the viewport.
func CountInViewport[B Box](boxes []B, viewW, viewH float64) int {
	n := 0
	for _, b := range boxes {
		x, y, w, h := b.Bounds()
		if InViewport(x, y, w, h, viewW, viewH) {
			n++
		}
	}
	return n
}

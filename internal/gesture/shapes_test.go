package gesture

import "github.com/ayusman/mudra/internal/geometry"

// downDown is two parallel vertical strokes, top to bottom.
func downDown(perStroke int) []geometry.Point {
	var points []geometry.Point
	for s, x := range []float64{0, 50} {
		for i := 0; i < perStroke; i++ {
			y := 100 * float64(i) / float64(perStroke-1)
			points = append(points, geometry.Point{X: x, Y: y, StrokeID: s})
		}
	}
	return points
}

// diagonalRetrace runs from the top-left corner to the bottom-right corner
// and back in a single stroke.
func diagonalRetrace(total int) []geometry.Point {
	points := make([]geometry.Point, total)
	half := (total - 1) / 2
	for i := range points {
		t := float64(i) / float64(half)
		if i > half {
			t = 2 - t
		}
		points[i] = geometry.Point{X: 100 * t, Y: 100 * t}
	}
	return points
}

func transform(points []geometry.Point, scale, dx, dy float64) []geometry.Point {
	out := make([]geometry.Point, len(points))
	for i, p := range points {
		out[i] = geometry.Point{X: p.X*scale + dx, Y: p.Y*scale + dy, StrokeID: p.StrokeID}
	}
	return out
}

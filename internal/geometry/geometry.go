// Package geometry provides the point-cloud primitives used by the gesture
// recognizer: distance, centroid, path length, scaling, translation and
// the resampling/interpolation passes that bring point sets to a common size.
package geometry

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Epsilon is added to the bounding box size so that degenerate input
// (a single point, or all points on one spot) never divides by zero.
const Epsilon = 1e-4

// ErrResampleCount is returned by Normalize when resampling is requested
// without a positive target point count.
var ErrResampleCount = errors.New("geometry: resampling requires a positive point count")

// Point2D is a raw coordinate as reported by the input source.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Point is a coordinate that belongs to a stroke of a gesture.
type Point struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	StrokeID int     `json:"stroke_id"`
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Width returns the horizontal extent of the box.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical extent of the box.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Distance calculates the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Centroid returns the mean position of all points, ignoring strokes.
// The centroid of an empty set is the origin.
func Centroid(points []Point) Point2D {
	if len(points) == 0 {
		return Point2D{}
	}
	xs, ys := coords(points)
	return Point2D{X: stat.Mean(xs, nil), Y: stat.Mean(ys, nil)}
}

// PathLength sums the distances between consecutive points of the same
// stroke. Jumps between strokes contribute nothing.
func PathLength(points []Point) float64 {
	var d float64
	for i := 1; i < len(points); i++ {
		if points[i].StrokeID == points[i-1].StrokeID {
			d += Distance(points[i-1], points[i])
		}
	}
	return d
}

// Bounds returns the bounding box of all points.
func Bounds(points []Point) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	xs, ys := coords(points)
	return Rect{
		MinX: floats.Min(xs),
		MinY: floats.Min(ys),
		MaxX: floats.Max(xs),
		MaxY: floats.Max(ys),
	}
}

// Scale fits the points into a unit square while keeping their aspect
// ratio: both axes are divided by the larger side of the bounding box.
func Scale(points []Point) []Point {
	if len(points) == 0 {
		return []Point{}
	}

	b := Bounds(points)
	size := math.Max(b.Width(), b.Height()) + Epsilon

	scaled := make([]Point, len(points))
	for i, p := range points {
		scaled[i] = Point{
			X:        (p.X - b.MinX) / size,
			Y:        (p.Y - b.MinY) / size,
			StrokeID: p.StrokeID,
		}
	}
	return scaled
}

// TranslateTo moves the points so that their centroid lies on origin.
func TranslateTo(points []Point, origin Point2D) []Point {
	c := Centroid(points)
	moved := make([]Point, len(points))
	for i, p := range points {
		moved[i] = Point{
			X:        p.X + origin.X - c.X,
			Y:        p.Y + origin.Y - c.Y,
			StrokeID: p.StrokeID,
		}
	}
	return moved
}

// Resample walks the stroke-continuous path and returns exactly n points
// spaced evenly by arc length. Stroke boundaries move the walk to the next
// stroke without adding length.
func Resample(points []Point, n int) []Point {
	if len(points) == 0 || n <= 0 {
		return nil
	}

	interval := PathLength(points) / float64(max(n-1, 1))
	if interval == 0 {
		return repeat(points[0], n)
	}

	// Work on a copy: interpolated points are inserted into the walk.
	src := make([]Point, len(points))
	copy(src, points)

	var acc float64
	resampled := make([]Point, 0, n)
	resampled = append(resampled, src[0])

	for i := 1; i < len(src); i++ {
		prev, cur := src[i-1], src[i]
		if prev.StrokeID != cur.StrokeID {
			continue
		}

		d := Distance(prev, cur)
		if acc+d >= interval {
			t := (interval - acc) / d
			q := Point{
				X:        prev.X + t*(cur.X-prev.X),
				Y:        prev.Y + t*(cur.Y-prev.Y),
				StrokeID: cur.StrokeID,
			}
			resampled = append(resampled, q)
			src = append(src[:i], append([]Point{q}, src[i:]...)...)
			acc = 0
		} else {
			acc += d
		}
	}

	// Floating point error can leave the walk one point short.
	last := src[len(src)-1]
	for len(resampled) < n {
		resampled = append(resampled, last)
	}
	return resampled[:n]
}

// InterpolateIndexWise produces n points by linear interpolation over the
// array index, not the arc length. Stroke boundaries are ignored and every
// interpolated point takes the stroke of its lower neighbour.
func InterpolateIndexWise(points []Point, n int) []Point {
	if len(points) == 0 || n <= 0 {
		return nil
	}
	if n == 1 {
		return []Point{points[0]}
	}

	result := make([]Point, n)
	result[0] = points[0]

	spring := float64(len(points)-1) / float64(n-1)
	for i := 1; i < n-1; i++ {
		pos := float64(i) * spring
		before := int(math.Floor(pos))
		after := int(math.Ceil(pos))
		frac := pos - float64(before)

		a, b := points[before], points[after]
		result[i] = Point{
			X:        a.X + (b.X-a.X)*frac,
			Y:        a.Y + (b.Y-a.Y)*frac,
			StrokeID: a.StrokeID,
		}
	}

	result[n-1] = points[len(points)-1]
	return result
}

// InterpolateStrokeWise groups the points by stroke, interpolates every
// stroke to k points and concatenates the strokes in ascending id order.
func InterpolateStrokeWise(points []Point, k int) []Point {
	groups := SplitStrokes(points)
	result := make([]Point, 0, len(groups)*k)
	for _, g := range groups {
		result = append(result, InterpolateIndexWise(g, k)...)
	}
	return result
}

// SplitStrokes groups points by stroke id in ascending id order, keeping the
// temporal order inside each group.
func SplitStrokes(points []Point) [][]Point {
	byID := make(map[int][]Point)
	var ids []int
	for _, p := range points {
		if _, ok := byID[p.StrokeID]; !ok {
			ids = append(ids, p.StrokeID)
		}
		byID[p.StrokeID] = append(byID[p.StrokeID], p)
	}
	sort.Ints(ids)

	groups := make([][]Point, len(ids))
	for i, id := range ids {
		groups[i] = byID[id]
	}
	return groups
}

// Normalize optionally resamples the points to n, then scales them into the
// unit square and centres them on the origin.
func Normalize(points []Point, shouldResample bool, n int) ([]Point, error) {
	src := points
	if shouldResample {
		if n <= 0 {
			return nil, ErrResampleCount
		}
		src = Resample(points, n)
	}
	return TranslateTo(Scale(src), Point2D{}), nil
}

// MustNormalize is like Normalize but panics on a programmer error.
func MustNormalize(points []Point, shouldResample bool, n int) []Point {
	normalized, err := Normalize(points, shouldResample, n)
	if err != nil {
		panic(err)
	}
	return normalized
}

// FromPoint2D attaches a stroke id to a raw coordinate.
func FromPoint2D(p Point2D, strokeID int) Point {
	return Point{X: p.X, Y: p.Y, StrokeID: strokeID}
}

// CountStrokes returns the number of distinct stroke ids.
func CountStrokes(points []Point) int {
	seen := make(map[int]struct{})
	for _, p := range points {
		seen[p.StrokeID] = struct{}{}
	}
	return len(seen)
}

func coords(points []Point) (xs, ys []float64) {
	xs = make([]float64, len(points))
	ys = make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.X
		ys[i] = p.Y
	}
	return xs, ys
}

func repeat(p Point, n int) []Point {
	out := make([]Point, n)
	for i := range out {
		out[i] = p
	}
	return out
}

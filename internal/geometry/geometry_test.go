package geometry

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
		want float64
	}{
		{"same point", Point{X: 1, Y: 2}, Point{X: 1, Y: 2}, 0},
		{"3-4-5", Point{X: 0, Y: 0}, Point{X: 3, Y: 4}, 5},
		{"stroke ignored", Point{X: 0, Y: 0, StrokeID: 0}, Point{X: 0, Y: 2, StrokeID: 3}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Distance(tt.a, tt.b), eps)
			assert.InDelta(t, tt.want, Distance(tt.b, tt.a), eps)
		})
	}
}

func TestCentroid(t *testing.T) {
	points := []Point{
		{X: 0, Y: 0, StrokeID: 0},
		{X: 2, Y: 0, StrokeID: 0},
		{X: 2, Y: 2, StrokeID: 1},
		{X: 0, Y: 2, StrokeID: 1},
	}

	c := Centroid(points)
	if diff := cmp.Diff(Point2D{X: 1, Y: 1}, c, approx); diff != "" {
		t.Errorf("Centroid() mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, Point2D{}, Centroid(nil))
}

func TestPathLength_SkipsStrokeBoundaries(t *testing.T) {
	points := []Point{
		{X: 0, Y: 0, StrokeID: 0},
		{X: 0, Y: 1, StrokeID: 0},
		{X: 5, Y: 0, StrokeID: 1}, // jump is not counted
		{X: 5, Y: 1, StrokeID: 1},
	}

	assert.InDelta(t, 2.0, PathLength(points), eps)
	assert.Zero(t, PathLength(points[:1]))
}

func TestScale_PreservesAspectRatio(t *testing.T) {
	points := []Point{
		{X: 10, Y: 10},
		{X: 14, Y: 10},
		{X: 14, Y: 12},
	}

	scaled := Scale(points)
	require.Len(t, scaled, 3)

	size := 4 + Epsilon
	want := []Point{
		{X: 0, Y: 0},
		{X: 4 / size, Y: 0},
		{X: 4 / size, Y: 2 / size},
	}
	if diff := cmp.Diff(want, scaled, approx); diff != "" {
		t.Errorf("Scale() mismatch (-want +got):\n%s", diff)
	}
}

func TestScale_DegenerateInput(t *testing.T) {
	points := []Point{{X: 3, Y: 3}, {X: 3, Y: 3}}

	scaled := Scale(points)
	for _, p := range scaled {
		assert.False(t, math.IsNaN(p.X) || math.IsNaN(p.Y), "scale produced NaN")
		assert.Zero(t, p.X)
		assert.Zero(t, p.Y)
	}
	assert.Empty(t, Scale(nil))
}

func TestTranslateTo(t *testing.T) {
	points := []Point{
		{X: 1, Y: 1, StrokeID: 0},
		{X: 3, Y: 5, StrokeID: 1},
	}

	moved := TranslateTo(points, Point2D{})
	c := Centroid(moved)
	assert.InDelta(t, 0, c.X, eps)
	assert.InDelta(t, 0, c.Y, eps)
	assert.Equal(t, 1, moved[1].StrokeID)

	moved = TranslateTo(points, Point2D{X: 10, Y: -10})
	c = Centroid(moved)
	assert.InDelta(t, 10, c.X, eps)
	assert.InDelta(t, -10, c.Y, eps)
}

func TestResample_ExactCount(t *testing.T) {
	line := []Point{
		{X: 0, Y: 0},
		{X: 1, Y: 0},
		{X: 3, Y: 0},
		{X: 10, Y: 0},
	}

	for _, n := range []int{2, 5, 11, 32, 64} {
		resampled := Resample(line, n)
		require.Len(t, resampled, n, "n=%d", n)
		assert.Equal(t, line[0], resampled[0])
		assert.InDelta(t, 10, resampled[n-1].X, 1e-6)
	}
}

func TestResample_EvenSpacing(t *testing.T) {
	line := []Point{{X: 0, Y: 0}, {X: 10, Y: 0}}

	resampled := Resample(line, 11)
	require.Len(t, resampled, 11)
	for i, p := range resampled {
		assert.InDelta(t, float64(i), p.X, 1e-6, "point %d", i)
	}
}

func TestResample_StrokeBoundaryAddsNoLength(t *testing.T) {
	// Two unit strokes far apart: total length is 2, not 2 + jump.
	points := []Point{
		{X: 0, Y: 0, StrokeID: 0},
		{X: 0, Y: 1, StrokeID: 0},
		{X: 100, Y: 0, StrokeID: 1},
		{X: 100, Y: 1, StrokeID: 1},
	}

	resampled := Resample(points, 5)
	require.Len(t, resampled, 5)

	var first, second int
	for _, p := range resampled {
		switch p.StrokeID {
		case 0:
			first++
			assert.InDelta(t, 0, p.X, eps)
		case 1:
			second++
			assert.InDelta(t, 100, p.X, eps)
		}
	}
	assert.Positive(t, first)
	assert.Positive(t, second)
}

func TestResample_ZeroLength(t *testing.T) {
	points := []Point{{X: 2, Y: 2}, {X: 2, Y: 2}, {X: 2, Y: 2}}

	resampled := Resample(points, 8)
	require.Len(t, resampled, 8)
	for _, p := range resampled {
		assert.Equal(t, points[0], p)
	}
}

func TestResample_EmptyOrInvalid(t *testing.T) {
	assert.Nil(t, Resample(nil, 10))
	assert.Nil(t, Resample([]Point{{X: 1}}, 0))
}

func TestInterpolateIndexWise(t *testing.T) {
	points := []Point{
		{X: 0, Y: 0, StrokeID: 0},
		{X: 1, Y: 0, StrokeID: 0},
		{X: 1, Y: 1, StrokeID: 1},
	}

	got := InterpolateIndexWise(points, 5)
	want := []Point{
		{X: 0, Y: 0, StrokeID: 0},
		{X: 0.5, Y: 0, StrokeID: 0},
		{X: 1, Y: 0, StrokeID: 0},
		{X: 1, Y: 0.5, StrokeID: 0}, // lower neighbour's stroke
		{X: 1, Y: 1, StrokeID: 1},
	}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("InterpolateIndexWise() mismatch (-want +got):\n%s", diff)
	}
}

func TestInterpolateIndexWise_Downsample(t *testing.T) {
	points := make([]Point, 41)
	for i := range points {
		points[i] = Point{X: float64(i)}
	}

	got := InterpolateIndexWise(points, 21)
	require.Len(t, got, 21)
	for i, p := range got {
		assert.InDelta(t, float64(2*i), p.X, 1e-9)
	}
}

func TestInterpolateIndexWise_Edges(t *testing.T) {
	single := []Point{{X: 4, Y: 2}}

	assert.Nil(t, InterpolateIndexWise(nil, 5))
	assert.Nil(t, InterpolateIndexWise(single, 0))
	assert.Equal(t, []Point{{X: 4, Y: 2}}, InterpolateIndexWise(single, 1))

	got := InterpolateIndexWise(single, 3)
	require.Len(t, got, 3)
	for _, p := range got {
		assert.Equal(t, single[0], p)
	}
}

func TestInterpolateStrokeWise(t *testing.T) {
	points := []Point{
		{X: 0, Y: 0, StrokeID: 1},
		{X: 0, Y: 1, StrokeID: 1},
		{X: 0, Y: 2, StrokeID: 1},
		{X: 5, Y: 0, StrokeID: 0},
		{X: 5, Y: 4, StrokeID: 0},
	}

	got := InterpolateStrokeWise(points, 4)
	require.Len(t, got, 8)

	// Stroke 0 comes first even though it was recorded later.
	for i := 0; i < 4; i++ {
		assert.Equal(t, 0, got[i].StrokeID)
		assert.InDelta(t, 5, got[i].X, eps)
	}
	for i := 4; i < 8; i++ {
		assert.Equal(t, 1, got[i].StrokeID)
		assert.InDelta(t, 0, got[i].X, eps)
	}
	assert.InDelta(t, 4.0/3.0, got[1].Y, eps)
}

func TestNormalize_NearIdentityOnNormalized(t *testing.T) {
	points := []Point{
		{X: 12, Y: 40, StrokeID: 0},
		{X: 30, Y: 41, StrokeID: 0},
		{X: 55, Y: 80, StrokeID: 1},
		{X: 20, Y: 95, StrokeID: 1},
	}

	once, err := Normalize(points, false, 0)
	require.NoError(t, err)
	twice, err := Normalize(once, false, 0)
	require.NoError(t, err)

	b := Bounds(twice)
	assert.InDelta(t, 1, math.Max(b.Width(), b.Height()), 1e-3)

	c := Centroid(twice)
	assert.InDelta(t, 0, c.X, 1e-9)
	assert.InDelta(t, 0, c.Y, 1e-9)
}

func TestNormalize_Resample(t *testing.T) {
	points := []Point{{X: 0, Y: 0}, {X: 10, Y: 10}}

	normalized, err := Normalize(points, true, 16)
	require.NoError(t, err)
	assert.Len(t, normalized, 16)

	_, err = Normalize(points, true, 0)
	assert.ErrorIs(t, err, ErrResampleCount)

	assert.Panics(t, func() { MustNormalize(points, true, -1) })
}

func TestSplitStrokesAndCount(t *testing.T) {
	points := []Point{
		{X: 0, StrokeID: 2},
		{X: 1, StrokeID: 0},
		{X: 2, StrokeID: 2},
	}

	groups := SplitStrokes(points)
	require.Len(t, groups, 2)
	assert.Equal(t, []Point{{X: 1, StrokeID: 0}}, groups[0])
	assert.Equal(t, []Point{{X: 0, StrokeID: 2}, {X: 2, StrokeID: 2}}, groups[1])
	assert.Equal(t, 2, CountStrokes(points))
}

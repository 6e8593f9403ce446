package app

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/geometry"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/stroke"
	"github.com/ayusman/mudra/internal/timeutil"
)

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

// diagonalRetrace runs corner to corner and back in one stroke.
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

// feed replays points as ticks: a new stroke id becomes a StartNewStroke.
func feed(sink interface {
	AddPoint(geometry.Point2D)
	StartNewStroke()
}, points []geometry.Point) {
	for i, p := range points {
		if i > 0 && p.StrokeID != points[i-1].StrokeID {
			sink.StartNewStroke()
		}
		sink.AddPoint(geometry.Point2D{X: p.X, Y: p.Y})
	}
}

func builtin(t *testing.T, name string) []geometry.Point {
	t.Helper()
	for _, tpl := range gesture.BuiltinTemplates() {
		if tpl.Name == name {
			return tpl.Points
		}
	}
	t.Fatalf("no builtin template %q", name)
	return nil
}

// segmented returns the builtin as the segmenter emits it with the default
// config.
func segmented(t *testing.T, name string) []geometry.Point {
	t.Helper()
	return geometry.InterpolateStrokeWise(builtin(t, name), stroke.DefaultPointsPerStroke)
}

// writeTemplates stores the two test shapes as a templates file.
func writeTemplates(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "templates.json")
	require.NoError(t, gesture.SaveTemplates(path, []gesture.Template{
		{Name: "down-down", Points: downDown(20)},
		{Name: "diagonal-retrace", Points: diagonalRetrace(41)},
	}))
	return path
}

func testClock() *timeutil.MockClock {
	return timeutil.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	dir := filepath.Join(t.TempDir(), "plugins")
	cfg.PluginDir = &dir
	return cfg
}

// recordingActuator remembers every recognition it is asked to act on.
type recordingActuator struct {
	mu   sync.Mutex
	seen []Recognition
	err  error
}

func (a *recordingActuator) Actuate(_ context.Context, rec Recognition) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.seen = append(a.seen, rec)
	return a.err
}

func (a *recordingActuator) commands() []Command {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Command, len(a.seen))
	for i, rec := range a.seen {
		out[i] = rec.Command
	}
	return out
}

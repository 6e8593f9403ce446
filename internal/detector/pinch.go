package detector

import (
	"sync/atomic"

	"github.com/ayusman/mudra/internal/geometry"
)

// DefaultPinchThreshold is the fingertip distance, in normalized image
// units, below which a hand counts as pinching.
const DefaultPinchThreshold = 0.05

// Sink receives exactly one call per tick.
type Sink interface {
	AddPoint(p geometry.Point2D)
	StartNewStroke()
}

// PinchTracker converts landmark frames into pinch ticks for a Sink.
type PinchTracker struct {
	threshold float64
	sink      Sink

	pinches atomic.Int64
	gaps    atomic.Int64
}

// NewPinchTracker creates a tracker. Non-positive thresholds select
// DefaultPinchThreshold.
func NewPinchTracker(threshold float64, sink Sink) *PinchTracker {
	if threshold <= 0 {
		threshold = DefaultPinchThreshold
	}
	return &PinchTracker{threshold: threshold, sink: sink}
}

// Threshold returns the pinch distance threshold.
func (t *PinchTracker) Threshold() float64 {
	return t.threshold
}

// Tick handles one frame. The most confident hand is used; when it pinches
// its pinch point is added, otherwise a new stroke is started. It reports
// whether the frame contained a pinch.
func (t *PinchTracker) Tick(hands []HandLandmarks) bool {
	hand := BestHand(hands)
	if hand == nil || hand.PinchDistance() >= t.threshold {
		t.gaps.Add(1)
		t.sink.StartNewStroke()
		return false
	}

	x, y := hand.PinchPoint()
	t.pinches.Add(1)
	t.sink.AddPoint(geometry.Point2D{X: x, Y: y})
	return true
}

// Stats returns the number of pinch and no-pinch ticks seen so far.
func (t *PinchTracker) Stats() (pinches, gaps int64) {
	return t.pinches.Load(), t.gaps.Load()
}

// Package stroke turns a per-tick pinch/no-pinch signal into bounded,
// multistroke gesture attempts.
package stroke

import (
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/geometry"
	"github.com/ayusman/mudra/internal/pubsub"
	"github.com/ayusman/mudra/internal/timeutil"
)

// Defaults for Config.
const (
	DefaultTimeout         = 1500 * time.Millisecond
	DefaultMinPoints       = 10
	DefaultPointsPerStroke = 20
)

// Config controls when an attempt ends and how it is shaped.
type Config struct {
	// Timeout is the inactivity period after the last point that ends an
	// attempt.
	Timeout time.Duration
	// MinPoints is the smallest attempt that is emitted; shorter ones are
	// dropped as noise.
	MinPoints int
	// PointsPerStroke is the number of points every stroke is interpolated
	// to before emission.
	PointsPerStroke int
}

// DefaultConfig returns the default segmentation settings.
func DefaultConfig() Config {
	return Config{
		Timeout:         DefaultTimeout,
		MinPoints:       DefaultMinPoints,
		PointsPerStroke: DefaultPointsPerStroke,
	}
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MinPoints <= 0 {
		c.MinPoints = DefaultMinPoints
	}
	if c.PointsPerStroke <= 0 {
		c.PointsPerStroke = DefaultPointsPerStroke
	}
	return c
}

// State is a point-in-time view of the segmenter buffer.
type State struct {
	Points      int  `json:"points"`
	StrokeIndex int  `json:"stroke_index"`
	Pending     bool `json:"pending"`
}

// Segmenter buffers pinch points into strokes and emits the attempt on its
// Attempts topic once no point has arrived for the configured timeout.
type Segmenter struct {
	cfg      Config
	clock    timeutil.Clock
	attempts *pubsub.Topic[[]geometry.Point]

	mu          sync.Mutex
	strokeIndex int
	points      []geometry.Point
	timer       timeutil.Timer
	gen         uint64
}

// New creates a Segmenter. Zero config fields take their defaults and a nil
// clock selects the real clock.
func New(cfg Config, clock timeutil.Clock) *Segmenter {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Segmenter{
		cfg:      cfg.withDefaults(),
		clock:    clock,
		attempts: pubsub.NewTopic[[]geometry.Point]("attempts"),
	}
}

// Attempts returns the topic that completed attempts are published on.
func (s *Segmenter) Attempts() *pubsub.Topic[[]geometry.Point] {
	return s.attempts
}

// Config returns the effective configuration.
func (s *Segmenter) Config() Config {
	return s.cfg
}

// AddPoint appends p to the current stroke and restarts the inactivity
// timer.
func (s *Segmenter) AddPoint(p geometry.Point2D) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.timer = s.clock.AfterFunc(s.cfg.Timeout, func() { s.expire(gen) })

	s.points = append(s.points, geometry.FromPoint2D(p, s.strokeIndex))
}

// StartNewStroke opens a new stroke. Repeated calls without a point in
// between open only one.
func (s *Segmenter) StartNewStroke() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n := len(s.points); n > 0 && s.points[n-1].StrokeID != s.strokeIndex {
		return
	}
	s.strokeIndex++
}

// Flush ends the current attempt immediately, as if the timeout had
// elapsed. It reports whether an attempt was emitted.
func (s *Segmenter) Flush() bool {
	s.mu.Lock()
	points := s.takeLocked()
	s.mu.Unlock()

	return s.emit(points)
}

// Reset drops the buffered attempt without emitting it.
func (s *Segmenter) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.takeLocked()
}

// Snapshot returns the current buffer state.
func (s *Segmenter) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Points:      len(s.points),
		StrokeIndex: s.strokeIndex,
		Pending:     s.timer != nil,
	}
}

// expire runs on the timer. A fire from a timer that was replaced by a later
// AddPoint is ignored.
func (s *Segmenter) expire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	points := s.takeLocked()
	s.mu.Unlock()

	s.emit(points)
}

// takeLocked returns the buffered points and resets the state.
func (s *Segmenter) takeLocked() []geometry.Point {
	points := s.points

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
	s.points = nil
	s.strokeIndex = 0

	return points
}

func (s *Segmenter) emit(points []geometry.Point) bool {
	if len(points) < s.cfg.MinPoints {
		return false
	}
	s.attempts.Publish(geometry.InterpolateStrokeWise(points, s.cfg.PointsPerStroke))
	return true
}

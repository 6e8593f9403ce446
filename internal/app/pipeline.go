package app

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/geometry"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/monitoring"
	"github.com/ayusman/mudra/internal/pubsub"
	"github.com/ayusman/mudra/internal/timeutil"
)

// PipelineSubscriberID is the id the pipeline registers on the attempts
// topic.
const PipelineSubscriberID = "pipeline"

// Recognition is one completed attempt and what it was recognized as.
type Recognition struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Score   float64          `json:"score"`
	Command Command          `json:"command"`
	Strokes int              `json:"strokes"`
	Points  []geometry.Point `json:"points,omitempty"`
	At      time.Time        `json:"at"`
}

// Pipeline recognizes every attempt published by a segmenter and publishes
// the outcome on its results topic.
type Pipeline struct {
	recognizer *gesture.Recognizer
	minScore   float64
	clock      timeutil.Clock
	results    *pubsub.Topic[Recognition]

	mu     sync.Mutex
	source *pubsub.Topic[[]geometry.Point]

	processed atomic.Int64
}

// NewPipeline creates a Pipeline. Results below minScore carry the Unknown
// command but are still published.
func NewPipeline(r *gesture.Recognizer, minScore float64, clock timeutil.Clock) *Pipeline {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Pipeline{
		recognizer: r,
		minScore:   minScore,
		clock:      clock,
		results:    pubsub.NewTopic[Recognition]("recognitions"),
	}
}

// Results returns the topic recognitions are published on.
func (p *Pipeline) Results() *pubsub.Topic[Recognition] {
	return p.results
}

// Recognizer returns the recognizer used for matching.
func (p *Pipeline) Recognizer() *gesture.Recognizer {
	return p.recognizer
}

// Processed returns the number of attempts handled so far.
func (p *Pipeline) Processed() int64 {
	return p.processed.Load()
}

// Attach subscribes the pipeline to src, detaching it from any previous
// source first.
func (p *Pipeline) Attach(src *pubsub.Topic[[]geometry.Point]) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.source != nil {
		p.source.Unsubscribe(PipelineSubscriberID)
	}
	src.Subscribe(PipelineSubscriberID, func(points []geometry.Point) error {
		p.Process(points)
		return nil
	})
	p.source = src
}

// Detach unsubscribes from the current source, if any.
func (p *Pipeline) Detach() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.source != nil {
		p.source.Unsubscribe(PipelineSubscriberID)
		p.source = nil
	}
}

// Process recognizes one attempt, publishes the result and returns it.
func (p *Pipeline) Process(points []geometry.Point) Recognition {
	result := p.recognizer.Recognize(points)
	rec := Recognition{
		ID:      uuid.New().String(),
		Name:    result.Name,
		Score:   result.Score,
		Command: CommandForResult(result, p.minScore),
		Strokes: geometry.CountStrokes(points),
		Points:  points,
		At:      p.clock.Now(),
	}
	p.processed.Add(1)

	monitoring.Logf("Gesture recognized: %s (score: %.3f, command: %s)", rec.Name, rec.Score, rec.Command)
	p.results.Publish(rec)
	return rec
}

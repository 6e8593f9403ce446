// Package gesture recognizes multistroke point-cloud gestures by greedy
// cloud matching against a set of named templates.
package gesture

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/ayusman/mudra/internal/geometry"
)

// UnknownName is reported when nothing could be matched.
const UnknownName = "unknown"

var (
	// ErrEmptyName is returned when a template has no name.
	ErrEmptyName = errors.New("template name is empty")
	// ErrEmptyTemplate is returned when a template has no points.
	ErrEmptyTemplate = errors.New("template has no points")
	// ErrDuplicateName is returned when a template name is already registered.
	ErrDuplicateName = errors.New("template name already registered")
	// ErrLengthMismatch is returned by Rank when the input and a template
	// differ in point count.
	ErrLengthMismatch = errors.New("point count differs from template")
)

// Template is a named reference point cloud.
type Template struct {
	Name   string           `json:"name"`
	Points []geometry.Point `json:"points"`
}

// Result is the outcome of matching an input against the templates.
type Result struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// TemplateInfo summarizes a registered template.
type TemplateInfo struct {
	Name    string `json:"name"`
	Points  int    `json:"points"`
	Strokes int    `json:"strokes"`
}

// Recognizer matches point sequences against registered templates.
// It is safe for concurrent use.
type Recognizer struct {
	mu        sync.RWMutex
	templates []Template
}

// New creates a Recognizer seeded with the given templates. Seeds are
// scaled and centred before they are stored.
func New(seeds ...Template) (*Recognizer, error) {
	r := &Recognizer{}
	for _, t := range seeds {
		if err := r.validate(t.Name, t.Points); err != nil {
			return nil, err
		}
		r.templates = append(r.templates, Template{
			Name:   t.Name,
			Points: geometry.MustNormalize(t.Points, false, 0),
		})
	}
	return r, nil
}

// NewDefault creates a Recognizer seeded with the builtin play and pause
// templates.
func NewDefault() *Recognizer {
	r, err := New(BuiltinTemplates()...)
	if err != nil {
		panic(err)
	}
	return r
}

// AddGesture registers a template exactly as given. Unlike the seeds passed
// to New, the points are not normalized, so callers should supply points
// that are already scaled and centred.
func (r *Recognizer) AddGesture(name string, points []geometry.Point) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.validate(name, points); err != nil {
		return err
	}

	stored := make([]geometry.Point, len(points))
	copy(stored, points)
	r.templates = append(r.templates, Template{Name: name, Points: stored})
	return nil
}

// RemoveGesture unregisters the named template. It reports whether a
// template was removed.
func (r *Recognizer) RemoveGesture(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, t := range r.templates {
		if t.Name == name {
			r.templates = append(r.templates[:i], r.templates[i+1:]...)
			return true
		}
	}
	return false
}

// Recognize returns the best matching template for points. The input is
// interpolated to each template's size, normalized and matched; the lowest
// distance wins. An empty input or template set yields UnknownName.
func (r *Recognizer) Recognize(points []geometry.Point) Result {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(points) == 0 || len(r.templates) == 0 {
		return Result{Name: UnknownName}
	}

	best := -1
	bestDist := math.Inf(1)
	for i, t := range r.templates {
		candidate := geometry.InterpolateIndexWise(points, len(t.Points))
		candidate = geometry.MustNormalize(candidate, false, 0)

		if d := GreedyCloudMatch(candidate, t.Points); d < bestDist {
			bestDist = d
			best = i
		}
	}

	if best == -1 {
		return Result{Name: UnknownName}
	}
	return Result{Name: r.templates[best].Name, Score: Score(bestDist)}
}

// Rank scores points against every template and returns the results by
// descending score. The input is normalized once and not resized, so every
// template must have the same point count as the input.
func (r *Recognizer) Rank(points []geometry.Point) ([]Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	normalized := geometry.MustNormalize(points, false, 0)

	results := make([]Result, 0, len(r.templates))
	for _, t := range r.templates {
		if len(t.Points) != len(normalized) {
			return nil, fmt.Errorf("template %q has %d points, input has %d: %w",
				t.Name, len(t.Points), len(normalized), ErrLengthMismatch)
		}
		results = append(results, Result{
			Name:  t.Name,
			Score: Score(GreedyCloudMatch(normalized, t.Points)),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results, nil
}

// Templates returns a summary of the registered templates in registration
// order.
func (r *Recognizer) Templates() []TemplateInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]TemplateInfo, len(r.templates))
	for i, t := range r.templates {
		infos[i] = TemplateInfo{
			Name:    t.Name,
			Points:  len(t.Points),
			Strokes: geometry.CountStrokes(t.Points),
		}
	}
	return infos
}

// Template returns a copy of the named template.
func (r *Recognizer) Template(name string) (Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.templates {
		if t.Name == name {
			points := make([]geometry.Point, len(t.Points))
			copy(points, t.Points)
			return Template{Name: t.Name, Points: points}, true
		}
	}
	return Template{}, false
}

// Len returns the number of registered templates.
func (r *Recognizer) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.templates)
}

// validate must be called with r.mu held or before r is shared.
func (r *Recognizer) validate(name string, points []geometry.Point) error {
	if name == "" {
		return ErrEmptyName
	}
	if len(points) == 0 {
		return fmt.Errorf("template %q: %w", name, ErrEmptyTemplate)
	}
	for _, t := range r.templates {
		if t.Name == name {
			return fmt.Errorf("template %q: %w", name, ErrDuplicateName)
		}
	}
	return nil
}

package gesture

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ayusman/mudra/internal/geometry"
)

// DefaultTrainPoints is the per-stroke point count used when a Trainer is
// created without one.
const DefaultTrainPoints = 32

// Trainer averages recorded attempts into a gesture template.
type Trainer struct {
	pointsPerStroke int
}

// NewTrainer creates a Trainer that resamples every stroke to
// pointsPerStroke points. Non-positive values select DefaultTrainPoints.
func NewTrainer(pointsPerStroke int) *Trainer {
	if pointsPerStroke <= 0 {
		pointsPerStroke = DefaultTrainPoints
	}
	return &Trainer{pointsPerStroke: pointsPerStroke}
}

// Train decodes each sample as a JSON array of points and averages them
// with TrainPoints.
func (t *Trainer) Train(name string, samples []json.RawMessage) (Template, error) {
	if len(samples) == 0 {
		return Template{}, errors.New("no samples provided")
	}

	parsed := make([][]geometry.Point, len(samples))
	for i, raw := range samples {
		if err := json.Unmarshal(raw, &parsed[i]); err != nil {
			return Template{}, fmt.Errorf("failed to parse sample %d: %w", i, err)
		}
	}
	return t.TrainPoints(name, parsed)
}

// TrainPoints builds a normalized template from samples that share a stroke
// count. Each stroke is resampled by arc length, the samples are averaged
// point by point and the mean shape is scaled and centred. The result can be
// passed straight to Recognizer.AddGesture.
func (t *Trainer) TrainPoints(name string, samples [][]geometry.Point) (Template, error) {
	if name == "" {
		return Template{}, ErrEmptyName
	}
	if len(samples) == 0 {
		return Template{}, errors.New("no samples provided")
	}

	var resampled [][]geometry.Point
	numStrokes := -1
	for i, sample := range samples {
		strokes := geometry.SplitStrokes(sample)
		if len(strokes) == 0 {
			return Template{}, fmt.Errorf("sample %d: %w", i, ErrEmptyTemplate)
		}
		if numStrokes == -1 {
			numStrokes = len(strokes)
		} else if len(strokes) != numStrokes {
			return Template{}, fmt.Errorf("sample %d has %d strokes, expected %d", i, len(strokes), numStrokes)
		}

		var points []geometry.Point
		for s, stroke := range strokes {
			if len(stroke) < 2 {
				return Template{}, fmt.Errorf("sample %d stroke %d has insufficient points", i, s)
			}
			// Renumber so samples recorded with different stroke ids line up.
			for _, p := range geometry.Resample(stroke, t.pointsPerStroke) {
				p.StrokeID = s
				points = append(points, p)
			}
		}
		resampled = append(resampled, geometry.MustNormalize(points, false, 0))
	}

	total := len(resampled[0])
	averaged := make([]geometry.Point, total)
	n := float64(len(resampled))
	for i := 0; i < total; i++ {
		var sumX, sumY float64
		for _, sample := range resampled {
			sumX += sample[i].X
			sumY += sample[i].Y
		}
		averaged[i] = geometry.Point{
			X:        sumX / n,
			Y:        sumY / n,
			StrokeID: resampled[0][i].StrokeID,
		}
	}

	return Template{
		Name:   name,
		Points: geometry.MustNormalize(averaged, false, 0),
	}, nil
}

// Package preview renders point clouds to PNG images for inspecting
// templates and recorded attempts.
package preview

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ayusman/mudra/internal/geometry"
)

// Default image size.
const (
	DefaultWidth  = 5 * vg.Inch
	DefaultHeight = 5 * vg.Inch
)

// ErrNoPoints is returned when there is nothing to draw.
var ErrNoPoints = errors.New("no points to plot")

// Layer is one point cloud drawn on a plot.
type Layer struct {
	Label  string
	Points []geometry.Point
	// Color overrides the per-stroke palette when set.
	Color color.Color
}

// New builds a plot of the given layers. Every stroke is drawn as a line
// with its points marked. The Y axis grows downwards to match image
// coordinates.
func New(title string, layers ...Layer) (*plot.Plot, error) {
	total := 0
	for _, l := range layers {
		total += len(l.Points)
	}
	if total == 0 {
		return nil, ErrNoPoints
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}
	p.Add(plotter.NewGrid())

	strokes := 0
	for _, l := range layers {
		strokes += len(geometry.SplitStrokes(l.Points))
	}
	colors := generateColors(strokes)

	i := 0
	for _, l := range layers {
		for _, stroke := range geometry.SplitStrokes(l.Points) {
			c := colors[i]
			if l.Color != nil {
				c = l.Color
			}
			if err := addStroke(p, stroke, c, legendLabel(l.Label, stroke[0].StrokeID)); err != nil {
				return nil, err
			}
			i++
		}
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

func legendLabel(label string, stroke int) string {
	if label == "" {
		return fmt.Sprintf("stroke %d", stroke)
	}
	return fmt.Sprintf("%s stroke %d", label, stroke)
}

func addStroke(p *plot.Plot, stroke []geometry.Point, c color.Color, label string) error {
	xys := make(plotter.XYs, len(stroke))
	for i, pt := range stroke {
		xys[i] = plotter.XY{X: pt.X, Y: pt.Y}
	}

	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return fmt.Errorf("plot stroke: %w", err)
	}
	line.Color = c
	line.Width = vg.Points(1)
	points.Color = c
	points.Radius = vg.Points(1.5)

	p.Add(line, points)
	p.Legend.Add(label, line, points)
	return nil
}

// WritePNG renders the layers as a PNG of the given size to w.
func WritePNG(w io.Writer, width, height vg.Length, title string, layers ...Layer) error {
	p, err := New(title, layers...)
	if err != nil {
		return err
	}

	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("render plot: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write plot: %w", err)
	}
	return nil
}

// Save renders the layers to a PNG file at the default size, creating the
// parent directory if needed.
func Save(path, title string, layers ...Layer) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WritePNG(f, DefaultWidth, DefaultHeight, title, layers...); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// generateColors spreads n hues around the colour wheel.
func generateColors(n int) []color.Color {
	colors := make([]color.Color, n)
	for i := range colors {
		r, g, b := hslToRGB(float64(i)/float64(n), 0.7, 0.45)
		colors[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return colors
}

func hslToRGB(h, s, l float64) (r, g, b uint8) {
	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q

	rf := hueToRGB(p, q, h+1.0/3.0)
	gf := hueToRGB(p, q, h)
	bf := hueToRGB(p, q, h-1.0/3.0)
	return uint8(math.Round(rf * 255)), uint8(math.Round(gf * 255)), uint8(math.Round(bf * 255))
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	default:
		return p
	}
}

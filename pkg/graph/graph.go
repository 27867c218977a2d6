// Package graph renders named point series into a standalone SVG image.
//
// All series registered on one Renderer share a single coordinate mapping
// derived from the union bounding box of their points. Each series is drawn as
// a polyline with its name written along the line, colored by an evenly spaced
// hue. Axes carry arrowheads and titles.
package graph

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrUnknownSeries is returned when a series name was never registered.
var ErrUnknownSeries = errors.New("graph: unknown series")

// ErrDuplicateSeries is returned when a series name is registered twice.
var ErrDuplicateSeries = errors.New("graph: duplicate series")

// Default canvas geometry.
const (
	DefaultWidth  = 900
	DefaultHeight = 400
	DefaultMargin = 20
)

// Point is one (domain, value) sample. The domain is any orderable key
// converted to a number; timestamps use TimeX.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// TimeX converts a timestamp into the numeric domain used by Point.X.
func TimeX(t time.Time) float64 {
	return float64(t.Unix())
}

// XTime is the inverse of TimeX.
func XTime(x float64) time.Time {
	return time.Unix(int64(x), 0).UTC()
}

// Box is an axis-aligned bounding box in data space.
type Box struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Options configures the canvas and axis titles.
type Options struct {
	// XFormat and YFormat label the axis extremes when set.
	XFormat func(float64) string
	YFormat func(float64) string
	XTitle  string
	YTitle  string
	Width   float64
	Height  float64
	Margin  float64
}

// Series is a named, ordered collection of points.
type Series struct {
	Name   string
	Points []Point
}

// Renderer accumulates series and writes them as SVG.
type Renderer struct {
	index  map[string]int
	id     string
	series []*Series
	opts   Options
}

// New creates a renderer. The id prefixes every DOM id the image defines,
// so several images can be embedded in one page.
func New(id string, opts Options) *Renderer {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}

	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}

	if opts.Margin <= 0 {
		opts.Margin = DefaultMargin
	}

	return &Renderer{
		id:    id,
		opts:  opts,
		index: make(map[string]int),
	}
}

// ID returns the renderer's instance id.
func (r *Renderer) ID() string { return r.id }

// Options returns the effective canvas options.
func (r *Renderer) Options() Options { return r.opts }

// AddSeries registers an empty series. Registration order fixes the color.
func (r *Renderer) AddSeries(name string) error {
	if _, ok := r.index[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateSeries, name)
	}

	r.index[name] = len(r.series)
	r.series = append(r.series, &Series{Name: name})

	return nil
}

// AddPoint appends a point to a registered series.
func (r *Renderer) AddPoint(name string, p Point) error {
	i, ok := r.index[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSeries, name)
	}

	r.series[i].Points = append(r.series[i].Points, p)

	return nil
}

// AddPoints appends several points to a registered series.
func (r *Renderer) AddPoints(name string, points []Point) error {
	for _, p := range points {
		if err := r.AddPoint(name, p); err != nil {
			return err
		}
	}

	return nil
}

// Series returns the registered series in insertion order.
func (r *Renderer) Series() []Series {
	out := make([]Series, len(r.series))

	for i, s := range r.series {
		out[i] = Series{Name: s.Name, Points: sortedPoints(s.Points)}
	}

	return out
}

// Bounds returns the union bounding box of every point in every series.
// The second result is false when no series holds any point.
func (r *Renderer) Bounds() (Box, bool) {
	var (
		box   Box
		found bool
	)

	for _, s := range r.series {
		for _, p := range s.Points {
			if !found {
				box = Box{MinX: p.X, MaxX: p.X, MinY: p.Y, MaxY: p.Y}
				found = true

				continue
			}

			box.MinX = min(box.MinX, p.X)
			box.MaxX = max(box.MaxX, p.X)
			box.MinY = min(box.MinY, p.Y)
			box.MaxY = max(box.MaxY, p.Y)
		}
	}

	return box, found
}

// Map converts a data point into image coordinates. A degenerate axis
// (zero span) maps every point to the middle of the canvas on that axis.
func (r *Renderer) Map(box Box, p Point) (px, py float64) {
	w, h, m := r.opts.Width, r.opts.Height, r.opts.Margin

	if box.MaxX == box.MinX {
		px = w / 2
	} else {
		px = m + (p.X-box.MinX)/(box.MaxX-box.MinX)*(w-2*m)
	}

	if box.MaxY == box.MinY {
		py = h / 2
	} else {
		py = h - m - (p.Y-box.MinY)/(box.MaxY-box.MinY)*(h-2*m)
	}

	return px, py
}

// SeriesHue returns the hue in [0, 1) assigned to a series.
func (r *Renderer) SeriesHue(name string) (float64, error) {
	i, ok := r.index[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownSeries, name)
	}

	return float64(i) / float64(len(r.series)), nil
}

// SeriesColor returns the stroke color assigned to a series.
func (r *Renderer) SeriesColor(name string) (Color, error) {
	hue, err := r.SeriesHue(name)
	if err != nil {
		return Color{}, err
	}

	return HSVToRGB(hue, seriesSaturation, seriesValue), nil
}

func sortedPoints(points []Point) []Point {
	out := make([]Point, len(points))
	copy(out, points)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].X < out[j].X
	})

	return out
}

package report

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/Sumatoshi-tech/revstats/pkg/graph"
	"github.com/Sumatoshi-tech/revstats/pkg/revision"
	"github.com/Sumatoshi-tech/revstats/pkg/stats"
)

// SeriesFunc derives graph series from records.
type SeriesFunc func(records []revision.Record) []graph.Series

// TotalCommitsSeries plots the running commit count over time.
func TotalCommitsSeries(records []revision.Record) []graph.Series {
	return []graph.Series{{Name: "all commits", Points: stats.CumulativeCommits(records)}}
}

// AuthorCommitsSeries plots the running commit count of the top authors.
func AuthorCommitsSeries(top int) SeriesFunc {
	return func(records []revision.Record) []graph.Series {
		bySeries := stats.CumulativeCommitsByAuthor(records, top)
		out := make([]graph.Series, len(bySeries))

		for i, s := range bySeries {
			out[i] = graph.Series{Name: s.Author, Points: s.Points}
		}

		return out
	}
}

// GraphReport renders series as an SVG image referenced from the fragment.
type GraphReport struct {
	series  SeriesFunc
	window  stats.Window
	options graph.Options
	base
}

// NewGraphReport creates a graph report. The image is written as NAME.svg.
func NewGraphReport(name, title string, window stats.Window, series SeriesFunc, options graph.Options) *GraphReport {
	return &GraphReport{
		base:    base{name: name, title: title},
		window:  window,
		series:  series,
		options: options,
	}
}

// Kind implements Report.
func (g *GraphReport) Kind() Kind { return KindGraph }

// ImageName is the file name of the rendered image.
func (g *GraphReport) ImageName() string { return g.name + ".svg" }

type graphData struct {
	Src    string
	Title  string
	Width  string
	Height string
}

// Render implements Report.
func (g *GraphReport) Render(ctx context.Context, src revision.Source, opts Options) (Fragment, error) {
	records, err := fetch(ctx, src, opts.RepositoryURL, g.window.Since(now(opts)))
	if err != nil {
		return Fragment{}, err
	}

	renderer := graph.New(g.name, g.options)

	for _, s := range g.series(records) {
		if err := renderer.AddSeries(s.Name); err != nil {
			return Fragment{}, fmt.Errorf("adding series: %w", err)
		}

		if err := renderer.AddPoints(s.Name, s.Points); err != nil {
			return Fragment{}, fmt.Errorf("adding points: %w", err)
		}
	}

	var image bytes.Buffer

	if err := renderer.Render(&image); err != nil {
		return Fragment{}, err
	}

	effective := renderer.Options()

	body, err := renderTemplate("graph.html", graphData{
		Src:    g.ImageName(),
		Title:  g.title,
		Width:  strconv.FormatFloat(effective.Width, 'f', -1, 64),
		Height: strconv.FormatFloat(effective.Height, 'f', -1, 64),
	})
	if err != nil {
		return Fragment{}, err
	}

	html, err := wrap(g, opts, body)
	if err != nil {
		return Fragment{}, err
	}

	return Fragment{
		HTML:   html,
		Assets: []Asset{{Name: g.ImageName(), Data: image.Bytes()}},
	}, nil
}

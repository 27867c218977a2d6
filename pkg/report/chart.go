package report

import (
	"context"

	"github.com/Sumatoshi-tech/revstats/pkg/plotpage"
	"github.com/Sumatoshi-tech/revstats/pkg/revision"
	"github.com/Sumatoshi-tech/revstats/pkg/stats"
)

// ChartReport renders monthly commit counts of the top authors as an
// interactive stacked bar chart.
type ChartReport struct {
	window stats.Window
	base
	top int
}

// NewChartReport creates the monthly commits chart for the top authors.
func NewChartReport(name, title string, window stats.Window, top int) *ChartReport {
	return &ChartReport{
		base:   base{name: name, title: title},
		window: window,
		top:    top,
	}
}

// Kind implements Report.
func (c *ChartReport) Kind() Kind { return KindChart }

// Render implements Report.
func (c *ChartReport) Render(ctx context.Context, src revision.Source, opts Options) (Fragment, error) {
	records, err := fetch(ctx, src, opts.RepositoryURL, c.window.Since(now(opts)))
	if err != nil {
		return Fragment{}, err
	}

	monthly := stats.CommitsPerMonth(records, c.top)
	series := make([]plotpage.StackSeries, len(monthly.Authors))

	for i, author := range monthly.Authors {
		series[i] = plotpage.StackSeries{Name: author, Data: monthly.Counts[i]}
	}

	chart := plotpage.StackedBars(opts.Theme, c.name+"-chart", monthly.Months, series, "Commits")

	body, err := plotpage.RenderChart(chart)
	if err != nil {
		return Fragment{}, err
	}

	html, err := wrap(c, opts, body)
	if err != nil {
		return Fragment{}, err
	}

	return Fragment{HTML: html, Charts: true}, nil
}

package plotpage

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"regexp"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	chartWidth  = "100%"
	chartHeight = "420px"
	stackName   = "commits"
)

var (
	chartBody = regexp.MustCompile(`(?s)<div class="container">.*</body>`)
	styleTag  = regexp.MustCompile(`(?s)<style>.*?</style>`)
)

// Renderable is anything that writes itself as HTML, such as an echarts chart.
type Renderable interface {
	Render(w io.Writer) error
}

// StackSeries is one stacked component of a bar chart.
type StackSeries struct {
	Name string
	Data []int
}

// StackedBars builds a themed bar chart with one stacked bar per label.
func StackedBars(theme Theme, id string, labels []string, series []StackSeries, valueAxis string) *charts.Bar {
	tc := GetThemeConfig(theme)
	muted := &opts.TextStyle{Color: tc.ChartTextMuted}
	axisLine := &opts.AxisLine{LineStyle: &opts.LineStyle{Color: tc.ChartAxis}}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			ChartID:         id,
			Width:           chartWidth,
			Height:          chartHeight,
			BackgroundColor: tc.ChartBackground,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Type: "scroll", Left: "center", TextStyle: muted}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", End: 100}, opts.DataZoom{Type: "inside"}),
		charts.WithXAxisOpts(opts.XAxis{
			AxisLabel: &opts.AxisLabel{Color: tc.ChartTextMuted},
			AxisLine:  axisLine,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:      valueAxis,
			AxisLabel: &opts.AxisLabel{Color: tc.ChartTextMuted},
			AxisLine:  axisLine,
			SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: tc.ChartGrid}},
		}),
	)

	bar.SetXAxis(labels)

	for _, s := range series {
		data := make([]opts.BarData, len(s.Data))
		for i, v := range s.Data {
			data[i] = opts.BarData{Value: v}
		}

		bar.AddSeries(s.Name, data, charts.WithBarChartOpts(opts.BarChart{Stack: stackName}))
	}

	return bar
}

// RenderChart renders a chart and keeps only its container div and script,
// dropping the standalone page echarts wraps around them.
func RenderChart(chart Renderable) (template.HTML, error) {
	var buf bytes.Buffer

	if err := chart.Render(&buf); err != nil {
		return "", fmt.Errorf("rendering chart: %w", err)
	}

	//nolint:gosec // echarts output is generated from escaped option data.
	return template.HTML(chartFragment(buf.String())), nil
}

func chartFragment(page string) string {
	body := chartBody.FindString(page)
	if body == "" {
		return page
	}

	body = strings.TrimSuffix(body, "</body>")
	body = strings.Replace(body, `class="container"`, `class="echart-box"`, 1)

	return styleTag.ReplaceAllString(body, "")
}

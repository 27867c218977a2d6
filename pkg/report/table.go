package report

import (
	"context"

	"github.com/Sumatoshi-tech/revstats/pkg/revision"
	"github.com/Sumatoshi-tech/revstats/pkg/stats"
)

// TableReport renders a tabular statistic over a time window.
type TableReport struct {
	stat   stats.Tabular
	window stats.Window
	base
	limit int
}

// NewTableReport creates a table of stat restricted to window.
func NewTableReport(name, title string, stat stats.Tabular, window stats.Window) *TableReport {
	return &TableReport{
		base:   base{name: name, title: title},
		stat:   stat,
		window: window,
	}
}

// WithLimit keeps only the first n rows. Zero keeps every row.
func (t *TableReport) WithLimit(n int) *TableReport {
	t.limit = n

	return t
}

// Kind implements Report.
func (t *TableReport) Kind() Kind { return KindTable }

// Statistic returns the underlying statistic.
func (t *TableReport) Statistic() stats.Tabular { return t.stat }

// Window returns the report's time window.
func (t *TableReport) Window() stats.Window { return t.window }

// Rows computes the table rows without rendering them.
func (t *TableReport) Rows(ctx context.Context, src revision.Source, opts Options) ([]stats.Row, error) {
	since := t.window.Since(now(opts))

	records, err := fetch(ctx, src, opts.RepositoryURL, since)
	if err != nil {
		return nil, err
	}

	rows := t.stat.Compute(stats.Input{Records: records, Since: since, Filter: opts.Filter})

	return stats.Top(rows, t.limit), nil
}

type tableData struct {
	KeyColumn   string
	ValueColumn string
	Rows        []stats.Row
}

// Render implements Report.
func (t *TableReport) Render(ctx context.Context, src revision.Source, opts Options) (Fragment, error) {
	rows, err := t.Rows(ctx, src, opts)
	if err != nil {
		return Fragment{}, err
	}

	key, value := t.stat.Columns()

	body, err := renderTemplate("table.html", tableData{KeyColumn: key, ValueColumn: value, Rows: rows})
	if err != nil {
		return Fragment{}, err
	}

	html, err := wrap(t, opts, body)
	if err != nil {
		return Fragment{}, err
	}

	return Fragment{HTML: html}, nil
}

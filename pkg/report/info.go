package report

import (
	"context"
	"time"

	"github.com/Sumatoshi-tech/revstats/pkg/revision"
	"github.com/Sumatoshi-tech/revstats/pkg/stats"
)

// InfoReport renders the general overview of the repository history.
type InfoReport struct {
	base
}

// NewInfoReport creates the general statistics report.
func NewInfoReport(name, title string) *InfoReport {
	return &InfoReport{base: base{name: name, title: title}}
}

// Kind implements Report.
func (i *InfoReport) Kind() Kind { return KindInfo }

type infoData struct {
	RepositoryURL string
	Summary       stats.Summary
}

// Render implements Report.
func (i *InfoReport) Render(ctx context.Context, src revision.Source, opts Options) (Fragment, error) {
	records, err := fetch(ctx, src, opts.RepositoryURL, time.Time{})
	if err != nil {
		return Fragment{}, err
	}

	body, err := renderTemplate("info.html", infoData{
		RepositoryURL: opts.RepositoryURL,
		Summary:       stats.Summarize(records),
	})
	if err != nil {
		return Fragment{}, err
	}

	html, err := wrap(i, opts, body)
	if err != nil {
		return Fragment{}, err
	}

	return Fragment{HTML: html}, nil
}

// Package report composes statistics into a tree of renderable reports.
//
// Leaves implement Report and come in a closed set of kinds: tables,
// general-information paragraphs, SVG graphs and interactive charts. Groups
// order and nest them. The first traversal seals the tree; afterwards it is
// read-only.
package report

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/Sumatoshi-tech/revstats/pkg/plotpage"
	"github.com/Sumatoshi-tech/revstats/pkg/revision"
	"github.com/Sumatoshi-tech/revstats/pkg/stats"
)

// Structural errors. They indicate a programming mistake in tree assembly.
var (
	ErrDuplicateName = errors.New("report: duplicate name")
	ErrTreeSealed    = errors.New("report: tree is sealed")
	ErrInvalidNode   = errors.New("report: invalid node")
)

// Kind tags the variant of a Report.
type Kind int

// Report kinds.
const (
	KindTable Kind = iota + 1
	KindInfo
	KindGraph
	KindChart
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindTable:
		return "table"
	case KindInfo:
		return "info"
	case KindGraph:
		return "graph"
	case KindChart:
		return "chart"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Node is anything that can sit in a report tree.
type Node interface {
	Name() string
	Title() string
}

// Report is a leaf node that renders one HTML fragment.
type Report interface {
	Node
	Kind() Kind
	Render(ctx context.Context, src revision.Source, opts Options) (Fragment, error)
}

// Options are the per-run rendering parameters shared by every report.
type Options struct {
	Now           time.Time
	Filter        stats.PathFilter
	RepositoryURL string
	Theme         plotpage.Theme
	WithLinks     bool
}

// Asset is a file produced alongside a fragment, such as a graph image.
type Asset struct {
	Name string
	Data []byte
}

// Fragment is the rendered output of one report.
type Fragment struct {
	HTML   template.HTML
	Assets []Asset
	// Charts is set when HTML needs the echarts runtime.
	Charts bool
}

// RenderError names the report whose rendering failed.
type RenderError struct {
	Err    error
	Report string
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render report %s: %v", e.Report, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Render renders r and wraps any failure in a RenderError.
func Render(ctx context.Context, r Report, src revision.Source, opts Options) (Fragment, error) {
	frag, err := r.Render(ctx, src, opts)
	if err != nil {
		var re *RenderError
		if errors.As(err, &re) {
			return Fragment{}, err
		}

		return Fragment{}, &RenderError{Report: r.Name(), Err: err}
	}

	return frag, nil
}

// base carries the identity every leaf shares.
type base struct {
	name  string
	title string
}

func (b base) Name() string  { return b.name }
func (b base) Title() string { return b.title }

// fetch loads records for a since-cutoff; a zero cutoff loads everything.
func fetch(ctx context.Context, src revision.Source, repoURL string, since time.Time) ([]revision.Record, error) {
	if since.IsZero() {
		records, err := src.AllRecords(ctx, repoURL)
		if err != nil {
			return nil, fmt.Errorf("loading records: %w", err)
		}

		return records, nil
	}

	records, err := src.RecordsSince(ctx, repoURL, since)
	if err != nil {
		return nil, fmt.Errorf("loading records since %s: %w", since.Format(time.RFC3339), err)
	}

	return records, nil
}

func now(opts Options) time.Time {
	if opts.Now.IsZero() {
		return time.Now().UTC()
	}

	return opts.Now
}

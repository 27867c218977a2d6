// Package site assembles a sealed report tree into HTML documents.
//
// The tree is walked exactly once. The resulting entries drive both the
// navigation menu and the order of report fragments in the body, so the two
// always agree.
package site

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/revstats/pkg/observability"
	"github.com/Sumatoshi-tech/revstats/pkg/plotpage"
	"github.com/Sumatoshi-tech/revstats/pkg/report"
	"github.com/Sumatoshi-tech/revstats/pkg/revision"
)

// IndexName is the entry page of every document.
const IndexName = "index.html"

const (
	tracerName   = "revstats"
	defaultTitle = "Repository Statistics"
	pageExt      = ".html"
)

// File is one output file, relative to the output directory.
type File struct {
	Name string
	Data []byte
}

// Document is the complete, buffered output of one run.
type Document struct {
	Files []File
}

// Lookup returns the file with the given name.
func (d *Document) Lookup(name string) (File, bool) {
	for _, f := range d.Files {
		if f.Name == name {
			return f, true
		}
	}

	return File{}, false
}

// Assembler renders a report tree into a Document.
type Assembler struct {
	// Clock returns the generation time; nil uses time.Now.
	Clock func() time.Time

	// Logger receives progress events; nil uses slog.Default.
	Logger *slog.Logger

	// Tracer creates one span per report; nil uses the global provider.
	Tracer trace.Tracer

	// Metrics records render counts and durations; may be nil.
	Metrics *observability.PipelineMetrics

	Title   string
	Version string
	RunID   string
	Options report.Options

	// MultiPage writes one page per report plus an index page.
	MultiPage bool
}

type rendered struct {
	report report.Report
	frag   report.Fragment
}

// Assemble walks tree once, renders every report against src and wraps the
// fragments in pages. The first report failure aborts assembly and is
// returned as a *report.RenderError.
func (a *Assembler) Assemble(ctx context.Context, tree *report.Group, src revision.Source) (*Document, error) {
	start := a.now()

	entries, err := tree.Walk()
	if err != nil {
		return nil, fmt.Errorf("walk report tree: %w", err)
	}

	leaves := report.Leaves(entries)

	if a.MultiPage {
		for _, r := range leaves {
			if pageName(r.Name()) == IndexName {
				return nil, fmt.Errorf("%w: report %q collides with %s", report.ErrDuplicateName, r.Name(), IndexName)
			}
		}
	}

	results := make([]rendered, 0, len(leaves))

	for _, r := range leaves {
		frag, renderErr := a.render(ctx, r, src)
		if renderErr != nil {
			return nil, renderErr
		}

		results = append(results, rendered{report: r, frag: frag})
	}

	footer := plotpage.Footer{
		GeneratedAt:   start,
		RepositoryURL: a.Options.RepositoryURL,
		RunID:         a.RunID,
		Version:       a.Version,
		Elapsed:       a.now().Sub(start),
	}

	var doc *Document

	if a.MultiPage {
		doc, err = a.multiPage(entries, results, footer)
	} else {
		doc, err = a.singlePage(entries, results, footer)
	}

	if err != nil {
		return nil, err
	}

	a.logger().InfoContext(ctx, "assembled document",
		"reports", len(results), "files", len(doc.Files), "multi_page", a.MultiPage)

	return doc, nil
}

func (a *Assembler) render(ctx context.Context, r report.Report, src revision.Source) (report.Fragment, error) {
	ctx, span := a.tracer().Start(ctx, "report.render",
		trace.WithAttributes(
			attribute.String("report.name", r.Name()),
			attribute.String("report.kind", r.Kind().String()),
		),
	)
	defer span.End()

	began := time.Now()

	frag, err := report.Render(ctx, r, src, a.Options)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "render failed")
		a.Metrics.RecordRender(ctx, r.Kind().String(), observability.StatusError, time.Since(began))

		return report.Fragment{}, err
	}

	a.Metrics.RecordRender(ctx, r.Kind().String(), observability.StatusOK, time.Since(began))
	a.logger().DebugContext(ctx, "rendered report", "report", r.Name(), "kind", r.Kind().String())

	return frag, nil
}

func (a *Assembler) singlePage(entries []report.Entry, results []rendered, footer plotpage.Footer) (*Document, error) {
	menu := buildMenu(entries, func(name string) string { return "#" + name }, "")

	var body strings.Builder

	charts := false
	doc := &Document{}

	for _, res := range results {
		body.WriteString(string(res.frag.HTML))
		body.WriteByte('\n')

		charts = charts || res.frag.Charts
		doc.Files = appendAssets(doc.Files, res.frag.Assets)
	}

	page, err := a.page(menu, template.HTML(body.String()), charts, footer) //nolint:gosec // fragments are rendered by html/template.
	if err != nil {
		return nil, err
	}

	doc.Files = append([]File{{Name: IndexName, Data: page}}, doc.Files...)

	return doc, nil
}

func (a *Assembler) multiPage(entries []report.Entry, results []rendered, footer plotpage.Footer) (*Document, error) {
	doc := &Document{}

	for _, res := range results {
		name := res.report.Name()
		menu := buildMenu(entries, pageName, name)

		page, err := a.page(menu, res.frag.HTML, res.frag.Charts, footer)
		if err != nil {
			return nil, err
		}

		doc.Files = append(doc.Files, File{Name: pageName(name), Data: page})
		doc.Files = appendAssets(doc.Files, res.frag.Assets)
	}

	// The index shows the first report under the shared menu.
	var (
		content template.HTML
		charts  bool
	)

	if len(results) > 0 {
		content = results[0].frag.HTML
		charts = results[0].frag.Charts
	}

	index, err := a.page(buildMenu(entries, pageName, ""), content, charts, footer)
	if err != nil {
		return nil, err
	}

	doc.Files = append([]File{{Name: IndexName, Data: index}}, doc.Files...)

	return doc, nil
}

func (a *Assembler) page(menu []plotpage.MenuItem, content template.HTML, charts bool, footer plotpage.Footer) ([]byte, error) {
	title := a.Title
	if title == "" {
		title = defaultTitle
	}

	p := &plotpage.Page{
		Title:         title,
		RepositoryURL: a.Options.RepositoryURL,
		Theme:         a.Options.Theme,
		Content:       content,
		Menu:          menu,
		Footer:        footer,
		Charts:        charts,
	}

	var buf bytes.Buffer

	if err := p.Render(&buf); err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}

	return buf.Bytes(), nil
}

// buildMenu nests the walk entries by depth. Groups become headings and
// leaves become links built by href.
func buildMenu(entries []report.Entry, href func(string) string, current string) []plotpage.MenuItem {
	items, _ := menuLevel(entries, 0, 0, href, current)

	return items
}

func menuLevel(
	entries []report.Entry, i, depth int, href func(string) string, current string,
) ([]plotpage.MenuItem, int) {
	var items []plotpage.MenuItem

	for i < len(entries) && entries[i].Depth >= depth {
		e := entries[i]

		if e.Group != nil {
			children, next := menuLevel(entries, i+1, depth+1, href, current)
			items = append(items, plotpage.MenuItem{Title: e.Node.Title(), Children: children, Heading: true})
			i = next

			continue
		}

		name := e.Node.Name()
		items = append(items, plotpage.MenuItem{
			Title:   e.Node.Title(),
			Href:    href(name),
			Current: name == current,
		})
		i++
	}

	return items, i
}

func appendAssets(files []File, assets []report.Asset) []File {
	for _, asset := range assets {
		files = append(files, File{Name: asset.Name, Data: asset.Data})
	}

	return files
}

func pageName(name string) string {
	return name + pageExt
}

func (a *Assembler) now() time.Time {
	if a.Clock != nil {
		return a.Clock()
	}

	return time.Now()
}

func (a *Assembler) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}

	return slog.Default()
}

func (a *Assembler) tracer() trace.Tracer {
	if a.Tracer != nil {
		return a.Tracer
	}

	return otel.Tracer(tracerName)
}

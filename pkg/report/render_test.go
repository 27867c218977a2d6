package report_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/revstats/pkg/graph"
	"github.com/Sumatoshi-tech/revstats/pkg/report"
	"github.com/Sumatoshi-tech/revstats/pkg/revision"
	"github.com/Sumatoshi-tech/revstats/pkg/stats"
)

const testRepoURL = "svn://example.org/repo"

var testNow = time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

func testSource() *revision.MemorySource {
	src := revision.NewMemorySource()
	src.Put(testRepoURL, []revision.Record{
		{Number: 1, Author: "A", Timestamp: testNow.AddDate(0, -3, 0), Message: "initial import",
			ChangedPaths: []revision.ChangedPath{{Action: revision.Added, Path: "/trunk/main.go"}}},
		{Number: 2, Author: "B", Timestamp: testNow.AddDate(0, 0, -10), Message: "fix <bug>",
			ChangedPaths: []revision.ChangedPath{{Action: revision.Modified, Path: "/trunk/main.go"}}},
		{Number: 3, Author: "A", Timestamp: testNow.AddDate(0, 0, -2), Message: "docs",
			ChangedPaths: []revision.ChangedPath{{Action: revision.Added, Path: "/trunk/README.md"}}},
	})

	return src
}

func testOptions() report.Options {
	return report.Options{RepositoryURL: testRepoURL, Now: testNow, WithLinks: true}
}

var errBackend = errors.New("backend down")

type failingSource struct{}

func (failingSource) AllRecords(context.Context, string) ([]revision.Record, error) {
	return nil, errBackend
}

func (failingSource) RecordsSince(context.Context, string, time.Time) ([]revision.Record, error) {
	return nil, errBackend
}

func TestTableReport_FragmentLayout(t *testing.T) {
	t.Parallel()

	r := report.NewTableReport("authors_by_commits_all", "Authors by commits",
		stats.AuthorsByCommits(), stats.WindowAll)

	frag, err := r.Render(context.Background(), testSource(), testOptions())
	require.NoError(t, err)

	html := string(frag.HTML)
	anchor := strings.Index(html, `<a id="authors_by_commits_all"></a>`)
	heading := strings.Index(html, `<h2>Authors by commits</h2>`)
	top := strings.Index(html, `href="#top"`)
	table := strings.Index(html, `<table>`)

	require.NotEqual(t, -1, anchor)
	assert.Less(t, anchor, heading)
	assert.Less(t, heading, top)
	assert.Less(t, top, table)

	assert.Contains(t, html, "<td>A</td><td class=\"num\">2</td><td class=\"num\">66.67%</td>")
	assert.Contains(t, html, "<td>B</td><td class=\"num\">1</td><td class=\"num\">33.33%</td>")
	assert.Empty(t, frag.Assets)
	assert.Equal(t, report.KindTable, r.Kind())
}

func TestTableReport_WithoutLinks(t *testing.T) {
	t.Parallel()

	r := report.NewTableReport("t", "T", stats.AuthorsByCommits(), stats.WindowAll)
	opts := testOptions()
	opts.WithLinks = false

	frag, err := r.Render(context.Background(), testSource(), opts)
	require.NoError(t, err)

	assert.Contains(t, string(frag.HTML), `<a id="t"></a><h2>`)
	assert.NotContains(t, string(frag.HTML), "go to top")
	assert.Contains(t, string(frag.HTML), "<h2>T</h2>")
}

func TestTableReport_Windows(t *testing.T) {
	t.Parallel()

	src := testSource()

	week := report.NewTableReport("w", "W", stats.AuthorsByCommits(), stats.WindowLast7Days)
	rows, err := week.Rows(context.Background(), src, testOptions())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "A", rows[0].Key)

	month := report.NewTableReport("m", "M", stats.AuthorsByCommits(), stats.WindowLast30Days)
	rows, err = month.Rows(context.Background(), src, testOptions())
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestTableReport_EmptyWindowRendersNoRows(t *testing.T) {
	t.Parallel()

	opts := testOptions()
	opts.Now = testNow.AddDate(1, 0, 0)

	r := report.NewTableReport("w", "W", stats.AuthorsByCommits(), stats.WindowLast7Days)

	frag, err := r.Render(context.Background(), testSource(), opts)
	require.NoError(t, err)
	assert.Contains(t, string(frag.HTML), "No revisions in this period.")
	assert.NotContains(t, string(frag.HTML), `<td class="num">1</td>`)
}

func TestRender_WrapsFailures(t *testing.T) {
	t.Parallel()

	r := report.NewTableReport("broken", "Broken", stats.AuthorsByCommits(), stats.WindowAll)

	_, err := report.Render(context.Background(), r, failingSource{}, testOptions())
	require.ErrorIs(t, err, errBackend)

	var re *report.RenderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "broken", re.Report)
	assert.Contains(t, err.Error(), "broken")
}

func TestInfoReport_Render(t *testing.T) {
	t.Parallel()

	r := report.NewInfoReport("general", "General Statistics")

	frag, err := r.Render(context.Background(), testSource(), testOptions())
	require.NoError(t, err)

	html := string(frag.HTML)
	assert.Contains(t, html, "Repository URL: <b>"+testRepoURL+"</b>")
	assert.Contains(t, html, "Smallest revision number: 1.")
	assert.Contains(t, html, "Biggest revision number: 3.")
	assert.Contains(t, html, "Revision count: 3.")
	assert.Contains(t, html, "Author count: 2.")
}

func TestInfoReport_Empty(t *testing.T) {
	t.Parallel()

	r := report.NewInfoReport("general", "General Statistics")

	frag, err := r.Render(context.Background(), revision.NewMemorySource(), testOptions())
	require.NoError(t, err)
	assert.Contains(t, string(frag.HTML), "No revisions recorded.")
}

func TestGraphReport_ProducesImageAsset(t *testing.T) {
	t.Parallel()

	r := report.NewGraphReport("commits_graph", "Commits", stats.WindowAll, report.TotalCommitsSeries,
		graph.Options{Width: 300, Height: 200, Margin: 10})

	frag, err := r.Render(context.Background(), testSource(), testOptions())
	require.NoError(t, err)

	require.Len(t, frag.Assets, 1)
	assert.Equal(t, "commits_graph.svg", frag.Assets[0].Name)
	assert.Contains(t, string(frag.Assets[0].Data), "commits_graph-series-0")
	assert.Contains(t, string(frag.HTML), `<img src="commits_graph.svg" alt="Commits" width="300" height="200"/>`)
}

func TestGraphReport_NoRecordsStillRenders(t *testing.T) {
	t.Parallel()

	r := report.NewGraphReport("g", "G", stats.WindowAll, report.AuthorCommitsSeries(3), graph.Options{})

	frag, err := r.Render(context.Background(), revision.NewMemorySource(), testOptions())
	require.NoError(t, err)
	require.Len(t, frag.Assets, 1)
	assert.NotContains(t, string(frag.Assets[0].Data), "<path")
}

func TestChartReport_Render(t *testing.T) {
	t.Parallel()

	r := report.NewChartReport("commits_per_month", "Commits per month", stats.WindowAll, 5)

	frag, err := r.Render(context.Background(), testSource(), testOptions())
	require.NoError(t, err)

	assert.True(t, frag.Charts)
	assert.Contains(t, string(frag.HTML), "commits_per_month-chart")
	assert.Equal(t, report.KindChart, r.Kind())
}

func TestDefaultTree_UniqueLeaves(t *testing.T) {
	t.Parallel()

	tree, err := report.DefaultTree(report.TreeConfig{Charts: true})
	require.NoError(t, err)

	reports, err := tree.Flatten()
	require.NoError(t, err)

	got := names(reports)
	assert.Equal(t, "general", got[0])
	assert.Contains(t, got, "authors_by_commits_all")
	assert.Contains(t, got, "authors_by_commits_7d")
	assert.Contains(t, got, "commits_graph")
	assert.Contains(t, got, "commits_per_month")

	for _, r := range reports {
		_, err := report.Render(context.Background(), r, testSource(), testOptions())
		require.NoError(t, err, r.Name())
	}
}

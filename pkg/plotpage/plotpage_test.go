package plotpage

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test constants to avoid magic strings/numbers.
const (
	testRepoURL = "svn://example.org/repo"
	testTitle   = "Statistics"
)

func TestPage_RenderMenuAndFooter(t *testing.T) {
	t.Parallel()

	page := &Page{
		Title:         testTitle,
		RepositoryURL: testRepoURL,
		Theme:         ThemeLight,
		Content:       `<div class="report">body</div>`,
		Menu: []MenuItem{
			{Title: "General", Href: "#general"},
			{Title: "Authors", Children: []MenuItem{
				{Title: "By commits", Href: "#authors_by_commits", Current: true},
			}},
		},
		Footer: Footer{
			RepositoryURL: testRepoURL,
			GeneratedAt:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
			Elapsed:       1500 * time.Millisecond,
			RunID:         "run-1",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, page.Render(&buf))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, `<a href="#general">General</a>`)
	assert.Contains(t, out, "Authors:")
	assert.Contains(t, out, `<li class="current"><a href="#authors_by_commits">`)
	assert.Contains(t, out, `<div class="report">body</div>`)
	assert.Contains(t, out, "2024-01-02 03:04:05 UTC")
	assert.Contains(t, out, "1.5s")
	assert.Contains(t, out, "run-1")
	assert.NotContains(t, out, EChartsScript)
}

func TestPage_ChartsLoadRuntime(t *testing.T) {
	t.Parallel()

	page := &Page{Title: testTitle, Charts: true, Theme: ThemeDark}

	var buf bytes.Buffer
	require.NoError(t, page.Render(&buf))

	assert.Contains(t, buf.String(), EChartsScript)
	assert.Contains(t, buf.String(), darkTheme.Background)
}

func TestPage_EscapesRepositoryURL(t *testing.T) {
	t.Parallel()

	page := &Page{Title: testTitle, RepositoryURL: "<script>x</script>"}

	var buf bytes.Buffer
	require.NoError(t, page.Render(&buf))

	assert.NotContains(t, buf.String(), "<script>x</script>")
}

func TestParseTheme(t *testing.T) {
	t.Parallel()

	theme, err := ParseTheme("")
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, theme)

	theme, err = ParseTheme("dark")
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, theme)

	_, err = ParseTheme("neon")
	require.ErrorIs(t, err, ErrUnknownTheme)
}

func TestStackedBars_RenderFragment(t *testing.T) {
	t.Parallel()

	chart := StackedBars(ThemeLight, "monthly", []string{"2024-01", "2024-02"},
		[]StackSeries{{Name: "alice", Data: []int{1, 2}}, {Name: "bob", Data: []int{0, 3}}}, "Commits")

	html, err := RenderChart(chart)
	require.NoError(t, err)

	out := string(html)
	assert.Contains(t, out, `class="echart-box"`)
	assert.Contains(t, out, "monthly")
	assert.NotContains(t, out, "<!DOCTYPE")
	assert.NotContains(t, out, "<style>")
	assert.NotContains(t, out, "</body>")
	assert.Contains(t, out, "bob")
}

func TestChartFragment_PassesThroughFragments(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "<div>x</div>", chartFragment("<div>x</div>"))
}

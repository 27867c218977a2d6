package terminal_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/revstats/pkg/revision"
	"github.com/Sumatoshi-tech/revstats/pkg/stats"
	"github.com/Sumatoshi-tech/revstats/pkg/terminal"
)

const testRepoURL = "svn://example.org/repo"

var testNow = time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

func testRecords() []revision.Record {
	return []revision.Record{
		{Number: 1, Author: "alice", Timestamp: testNow.AddDate(0, -2, 0), Message: "import",
			ChangedPaths: []revision.ChangedPath{
				{Action: revision.Added, Path: "/trunk/main.go"},
				{Action: revision.Added, Path: "/vendor/lib.go"},
			}},
		{Number: 2, Author: "bob", Timestamp: testNow.AddDate(0, 0, -3), Message: "fix",
			ChangedPaths: []revision.ChangedPath{{Action: revision.Modified, Path: "/trunk/main.go"}}},
		{Number: 3, Author: "alice", Timestamp: testNow.AddDate(0, 0, -1), Message: "docs",
			ChangedPaths: []revision.ChangedPath{{Action: revision.Added, Path: "/trunk/README"}}},
	}
}

func board(t *testing.T, view terminal.View, name string) terminal.Leaderboard {
	t.Helper()

	for _, b := range view.Boards {
		if b.Name == name {
			return b
		}
	}

	require.Failf(t, "missing leaderboard", "%s", name)

	return terminal.Leaderboard{}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]terminal.Format{
		"":     terminal.FormatText,
		"text": terminal.FormatText,
		"YAML": terminal.FormatYAML,
		"json": terminal.FormatJSON,
	} {
		got, err := terminal.ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := terminal.ParseFormat("xml")
	require.ErrorIs(t, err, terminal.ErrUnknownFormat)
}

func TestBuildView_AllTime(t *testing.T) {
	t.Parallel()

	view := terminal.BuildView(testRepoURL, testRecords(), stats.WindowAll, nil, testNow, 0)

	assert.Equal(t, 3, view.Summary.Count)
	assert.Equal(t, 2, view.Summary.Authors)
	assert.Len(t, view.Boards, len(stats.Builtin()))

	commits := board(t, view, stats.NameAuthorsByCommits)
	require.Len(t, commits.Rows, 2)
	assert.Equal(t, "alice", commits.Rows[0].Key)
	assert.InDelta(t, 2.0, commits.Rows[0].Value, 1e-9)
	assert.Equal(t, "Author", commits.KeyColumn)
}

func TestBuildView_WindowFilterAndTop(t *testing.T) {
	t.Parallel()

	filter, err := stats.NewExcludeFilter([]string{"vendor/**"})
	require.NoError(t, err)

	view := terminal.BuildView(testRepoURL, testRecords(), stats.WindowLast7Days, filter, testNow, 1)

	assert.Equal(t, 2, view.Summary.Count)
	assert.Equal(t, int64(2), view.Summary.SmallestNumber)

	commits := board(t, view, stats.NameAuthorsByCommits)
	assert.Len(t, commits.Rows, 1)

	actions := board(t, view, stats.NamePathsByAction)
	require.Len(t, actions.Rows, 1)
	assert.Equal(t, "added", actions.Rows[0].Key)

	all := terminal.BuildView(testRepoURL, testRecords(), stats.WindowAll, filter, testNow, 0)

	var paths float64
	for _, row := range board(t, all, stats.NamePathsByDirectory).Rows {
		paths += row.Value
		assert.NotEqual(t, "vendor", row.Key)
	}

	assert.InDelta(t, 3.0, paths, 1e-9)
}

func TestBuildView_Selected(t *testing.T) {
	t.Parallel()

	selected, err := stats.Select([]string{stats.NamePathsByLanguage})
	require.NoError(t, err)

	view := terminal.BuildView(testRepoURL, testRecords(), stats.WindowAll, nil, testNow, 0, selected...)

	require.Len(t, view.Boards, 1)
	assert.Equal(t, stats.NamePathsByLanguage, view.Boards[0].Name)
	assert.NotEmpty(t, view.Boards[0].Description)
}

func TestWriteText(t *testing.T) {
	t.Parallel()

	view := terminal.BuildView(testRepoURL, testRecords(), stats.WindowAll, nil, testNow, 0)

	var buf bytes.Buffer
	require.NoError(t, terminal.Write(&buf, view, terminal.FormatText))

	out := buf.String()
	assert.Contains(t, out, testRepoURL)
	assert.Contains(t, out, "Revisions r1..r3")
	assert.Contains(t, out, "Authors by commits")
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "66.67%")
}

func TestWriteText_EmptyWindow(t *testing.T) {
	t.Parallel()

	view := terminal.BuildView(testRepoURL, nil, stats.WindowLast7Days, nil, testNow, 0)

	var buf bytes.Buffer
	require.NoError(t, terminal.WriteText(&buf, view))

	assert.Contains(t, buf.String(), "No revisions in this period.")
	assert.Contains(t, buf.String(), "(empty)")
}

func TestWrite_StructuredFormats(t *testing.T) {
	t.Parallel()

	view := terminal.BuildView(testRepoURL, testRecords(), stats.WindowAll, nil, testNow, 0)

	var jsonBuf bytes.Buffer
	require.NoError(t, terminal.Write(&jsonBuf, view, terminal.FormatJSON))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(jsonBuf.Bytes(), &decoded))
	assert.Equal(t, testRepoURL, decoded["repository"])
	assert.Len(t, decoded["leaderboards"], len(stats.Builtin()))

	var yamlBuf bytes.Buffer
	require.NoError(t, terminal.Write(&yamlBuf, view, terminal.FormatYAML))

	var fromYAML map[string]any
	require.NoError(t, yaml.Unmarshal(yamlBuf.Bytes(), &fromYAML))
	assert.Equal(t, "all", fromYAML["window"])

	require.ErrorIs(t, terminal.Write(&bytes.Buffer{}, view, "csv"), terminal.ErrUnknownFormat)
}

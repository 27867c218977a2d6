package stats_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/revstats/pkg/metrics"
	"github.com/Sumatoshi-tech/revstats/pkg/revision"
	"github.com/Sumatoshi-tech/revstats/pkg/stats"
)

var testBase = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func rec(n int64, author string, offset time.Duration, msg string, paths ...string) revision.Record {
	cps := make([]revision.ChangedPath, 0, len(paths))

	for _, p := range paths {
		cps = append(cps, revision.ChangedPath{Action: revision.Modified, Path: p})
	}

	return revision.Record{
		Number:       n,
		Author:       author,
		Timestamp:    testBase.Add(offset),
		Message:      msg,
		ChangedPaths: cps,
	}
}

func TestComputeGroupedCount_EndToEnd(t *testing.T) {
	t.Parallel()

	records := []revision.Record{
		rec(1, "A", 0, ""),
		rec(2, "B", time.Hour, ""),
		rec(3, "A", 2*time.Hour, ""),
	}

	rows := stats.ComputeGroupedCount(records, stats.ByAuthor, time.Time{})
	require.Len(t, rows, 2)

	assert.Equal(t, "A", rows[0].Key)
	assert.InDelta(t, 2, rows[0].Value, 1e-9)
	assert.InDelta(t, 66.67, rows[0].Percent, 0.01)
	assert.True(t, rows[0].HasPercent)

	assert.Equal(t, "B", rows[1].Key)
	assert.InDelta(t, 1, rows[1].Value, 1e-9)
	assert.InDelta(t, 33.33, rows[1].Percent, 0.01)
}

func TestComputeGroupedCount_SumEqualsMatchingRecords(t *testing.T) {
	t.Parallel()

	var records []revision.Record

	authors := []string{"x", "y", "z", "x", "x", "y", "w"}
	for i, a := range authors {
		records = append(records, rec(int64(i+1), a, time.Duration(i)*24*time.Hour, ""))
	}

	cutoff := testBase.Add(3 * 24 * time.Hour)

	rows := stats.ComputeGroupedCount(records, stats.ByAuthor, cutoff)
	assert.InDelta(t, 4, stats.Total(rows), 1e-9)

	var pct float64
	for _, r := range rows {
		pct += r.Percent
	}

	assert.InDelta(t, 100, pct, 1e-9)
}

func TestComputeGroupedCount_SortTiesByKey(t *testing.T) {
	t.Parallel()

	records := []revision.Record{
		rec(1, "carol", 0, ""),
		rec(2, "bob", 0, ""),
		rec(3, "alice", 0, ""),
		rec(4, "dave", 0, ""),
		rec(5, "dave", 0, ""),
	}

	rows := stats.ComputeGroupedCount(records, stats.ByAuthor, time.Time{})
	keys := make([]string, 0, len(rows))

	for _, r := range rows {
		keys = append(keys, r.Key)
	}

	assert.Equal(t, []string{"dave", "alice", "bob", "carol"}, keys)
}

func TestComputeGroupedCount_Degenerate(t *testing.T) {
	t.Parallel()

	assert.Empty(t, stats.ComputeGroupedCount(nil, stats.ByAuthor, time.Time{}))

	records := []revision.Record{rec(1, "a", 0, "")}
	rows := stats.ComputeGroupedCount(records, stats.ByAuthor, testBase.Add(time.Hour))
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestComputeGroupedSum_MessageLength(t *testing.T) {
	t.Parallel()

	records := []revision.Record{
		rec(1, "a", 0, "héllo"),
		rec(2, "b", 0, "fix"),
		rec(3, "a", 0, "x"),
	}

	rows := stats.ComputeGroupedSum(records, stats.ByAuthor, stats.MessageLength, time.Time{})
	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0].Key)
	assert.InDelta(t, 6, rows[0].Value, 1e-9)
	assert.InDelta(t, 3, rows[1].Value, 1e-9)
}

func TestComputeGroupedSum_ZeroTotalIsEmpty(t *testing.T) {
	t.Parallel()

	records := []revision.Record{rec(1, "a", 0, ""), rec(2, "b", 0, "")}

	rows := stats.ComputeGroupedSum(records, stats.ByAuthor, stats.MessageLength, time.Time{})
	assert.Empty(t, rows)
}

func TestComputePathCount_ByActionAndFilter(t *testing.T) {
	t.Parallel()

	records := []revision.Record{
		{Number: 1, Author: "a", Timestamp: testBase, ChangedPaths: []revision.ChangedPath{
			{Action: revision.Added, Path: "/trunk/main.go"},
			{Action: revision.Added, Path: "/trunk/vendor/lib/lib.go"},
			{Action: revision.Deleted, Path: "/trunk/old.py"},
		}},
	}

	rows := stats.ComputePathCount(records, stats.ByAction, time.Time{}, nil)
	require.Len(t, rows, 2)
	assert.Equal(t, "added", rows[0].Key)

	filter, err := stats.NewExcludeFilter([]string{"**/vendor/**"})
	require.NoError(t, err)

	rows = stats.ComputePathCount(records, stats.ByAction, time.Time{}, filter)
	require.Len(t, rows, 2)
	assert.InDelta(t, 1, rows[0].Value, 1e-9)
}

func TestNewExcludeFilter_Invalid(t *testing.T) {
	t.Parallel()

	_, err := stats.NewExcludeFilter([]string{"[unclosed"})
	require.ErrorIs(t, err, stats.ErrInvalidPattern)

	filter, err := stats.NewExcludeFilter(nil)
	require.NoError(t, err)
	assert.Nil(t, filter)
}

func TestByLanguage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Go", stats.ByLanguage(revision.ChangedPath{Path: "/trunk/cmd/main.go"}))
	assert.Equal(t, "Python", stats.ByLanguage(revision.ChangedPath{Path: "/trunk/tool.py"}))
	assert.Equal(t, stats.VendoredKey, stats.ByLanguage(revision.ChangedPath{Path: "/vendor/x/y.go"}))
}

func TestByTopDirectory(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "trunk", stats.ByTopDirectory(revision.ChangedPath{Path: "/trunk/a/b.c"}))
	assert.Equal(t, stats.RootKey, stats.ByTopDirectory(revision.ChangedPath{Path: "/README"}))
}

func TestTop(t *testing.T) {
	t.Parallel()

	rows := []stats.Row{{Key: "a"}, {Key: "b"}, {Key: "c"}}

	assert.Len(t, stats.Top(rows, 2), 2)
	assert.Len(t, stats.Top(rows, 0), 3)
	assert.Len(t, stats.Top(rows, 10), 3)
}

func TestRegistry_Builtins(t *testing.T) {
	t.Parallel()

	registry := stats.NewRegistry()
	assert.Contains(t, registry.Names(), stats.NameAuthorsByCommits)

	m, ok := metrics.Lookup[stats.Input, []stats.Row](registry, stats.NameAuthorsByChangedPaths)
	require.True(t, ok)

	rows := m.Compute(stats.Input{Records: []revision.Record{
		rec(1, "a", 0, "", "/x", "/y"),
		rec(2, "b", 0, "", "/z"),
	}})
	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0].Key)
	assert.InDelta(t, 2, rows[0].Value, 1e-9)
}

func TestSelect(t *testing.T) {
	t.Parallel()

	all, err := stats.Select(nil)
	require.NoError(t, err)
	assert.Len(t, all, len(stats.Builtin()))

	picked, err := stats.Select([]string{stats.NamePathsByAction, stats.NameAuthorsByCommits})
	require.NoError(t, err)
	require.Len(t, picked, 2)
	assert.Equal(t, stats.NamePathsByAction, picked[0].Name())
	assert.Equal(t, stats.NameAuthorsByCommits, picked[1].Name())

	_, err = stats.Select([]string{"authors_by_mood"})
	require.ErrorIs(t, err, stats.ErrUnknownStatistic)
}

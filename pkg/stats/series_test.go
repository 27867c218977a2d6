package stats_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/revstats/pkg/graph"
	"github.com/Sumatoshi-tech/revstats/pkg/revision"
	"github.com/Sumatoshi-tech/revstats/pkg/stats"
)

const testDay = 24 * time.Hour

func TestCumulativeCommits(t *testing.T) {
	t.Parallel()

	records := []revision.Record{
		rec(3, "a", 2*testDay, ""),
		rec(1, "a", 0, ""),
		rec(2, "b", testDay, ""),
	}

	points := stats.CumulativeCommits(records)
	require.Len(t, points, 3)

	assert.Equal(t, graph.Point{X: graph.TimeX(testBase), Y: 1}, points[0])
	assert.InDelta(t, 3, points[2].Y, 1e-9)
}

func TestCumulativeCommitsByAuthor_Top(t *testing.T) {
	t.Parallel()

	records := []revision.Record{
		rec(1, "a", 0, ""),
		rec(2, "b", testDay, ""),
		rec(3, "a", 2*testDay, ""),
		rec(4, "c", 3*testDay, ""),
	}

	series := stats.CumulativeCommitsByAuthor(records, 2)
	require.Len(t, series, 2)
	assert.Equal(t, "a", series[0].Author)
	assert.Len(t, series[0].Points, 2)
	assert.Equal(t, "b", series[1].Author)
}

func TestCommitsPerMonth_FillsGaps(t *testing.T) {
	t.Parallel()

	jan := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	records := []revision.Record{
		{Number: 1, Author: "a", Timestamp: jan},
		{Number: 2, Author: "a", Timestamp: jan.AddDate(0, 2, 0)},
		{Number: 3, Author: "b", Timestamp: jan.AddDate(0, 2, 1)},
	}

	mc := stats.CommitsPerMonth(records, 0)
	assert.Equal(t, []string{"2024-01", "2024-02", "2024-03"}, mc.Months)
	assert.Equal(t, []string{"a", "b"}, mc.Authors)
	assert.Equal(t, []int{1, 0, 1}, mc.Counts[0])
	assert.Equal(t, []int{0, 0, 1}, mc.Counts[1])

	assert.Empty(t, stats.CommitsPerMonth(nil, 0).Months)
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	records := []revision.Record{
		rec(10, "a", 0, "", "/x"),
		rec(12, "b", 60*testDay, "", "/y", "/z"),
		rec(15, "a", 120*testDay, ""),
	}

	s := stats.Summarize(records)
	assert.Equal(t, int64(10), s.SmallestNumber)
	assert.Equal(t, int64(15), s.BiggestNumber)
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 2, s.Authors)
	assert.Equal(t, 3, s.ChangedPaths)
	assert.Equal(t, 120*testDay, s.Age)
	assert.InDelta(t, 3.0/120, s.PerDay, 1e-9)
	assert.InDelta(t, 3.0/4, s.PerMonth, 1e-9)
	assert.InDelta(t, 3.0/(120/365.25), s.PerYear, 1e-9)
}

func TestSummarize_RatesScaleShortHistories(t *testing.T) {
	t.Parallel()

	records := make([]revision.Record, 200)
	for i := range records {
		records[i] = rec(int64(i+1), "a", time.Duration(i)*180*testDay/199, "")
	}

	s := stats.Summarize(records)
	assert.Equal(t, 180*testDay, s.Age)
	assert.InDelta(t, 200.0/180, s.PerDay, 1e-9)
	assert.InDelta(t, 200.0/6, s.PerMonth, 1e-9)
	assert.InDelta(t, 200.0*365.25/180, s.PerYear, 1e-9)
}

func TestSummarize_SingleInstantHasNoRate(t *testing.T) {
	t.Parallel()

	s := stats.Summarize([]revision.Record{rec(1, "a", 0, ""), rec(2, "b", 0, "")})
	assert.Zero(t, s.Age)
	assert.Zero(t, s.PerDay)
	assert.Zero(t, s.PerYear)
}

func TestSummarize_Empty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, stats.Summary{}, stats.Summarize(nil))
}

func TestWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	w, err := stats.ParseWindow("last-7-days")
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 0, -7), w.Since(now))
	assert.Equal(t, "7d", w.Slug())

	w, err = stats.ParseWindow("")
	require.NoError(t, err)
	assert.True(t, w.Since(now).IsZero())

	_, err = stats.ParseWindow("fortnight")
	require.ErrorIs(t, err, stats.ErrUnknownWindow)
}

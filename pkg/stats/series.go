package stats

import (
	"sort"
	"time"

	"github.com/Sumatoshi-tech/revstats/pkg/graph"
	"github.com/Sumatoshi-tech/revstats/pkg/revision"
)

// CumulativeCommits returns the running commit count against commit time.
func CumulativeCommits(records []revision.Record) []graph.Point {
	sorted := byTime(records)
	points := make([]graph.Point, 0, len(sorted))

	for i, rec := range sorted {
		points = append(points, graph.Point{X: graph.TimeX(rec.Timestamp), Y: float64(i + 1)})
	}

	return points
}

// AuthorSeries is a cumulative commit series for one author.
type AuthorSeries struct {
	Author string
	Points []graph.Point
}

// CumulativeCommitsByAuthor returns one cumulative series per author for the
// top authors by commit count, in leaderboard order. top <= 0 keeps all.
func CumulativeCommitsByAuthor(records []revision.Record, top int) []AuthorSeries {
	leaders := Top(ComputeGroupedCount(records, ByAuthor, time.Time{}), top)
	index := make(map[string]int, len(leaders))
	out := make([]AuthorSeries, len(leaders))

	for i, row := range leaders {
		index[row.Key] = i
		out[i].Author = row.Key
	}

	for _, rec := range byTime(records) {
		i, ok := index[rec.Author]
		if !ok {
			continue
		}

		n := float64(len(out[i].Points) + 1)
		out[i].Points = append(out[i].Points, graph.Point{X: graph.TimeX(rec.Timestamp), Y: n})
	}

	return out
}

// MonthlyCounts holds commits per calendar month for the leading authors.
type MonthlyCounts struct {
	Months  []string
	Authors []string
	// Counts[a][m] is the number of commits by Authors[a] in Months[m].
	Counts [][]int
}

const monthLayout = "2006-01"

// CommitsPerMonth buckets commits by UTC calendar month for the top authors.
// Months without commits inside the covered range are included as zeros.
func CommitsPerMonth(records []revision.Record, top int) MonthlyCounts {
	if len(records) == 0 {
		return MonthlyCounts{}
	}

	sorted := byTime(records)
	first := monthStart(sorted[0].Timestamp)
	last := monthStart(sorted[len(sorted)-1].Timestamp)

	var mc MonthlyCounts

	monthIndex := make(map[string]int)

	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		key := m.Format(monthLayout)
		monthIndex[key] = len(mc.Months)
		mc.Months = append(mc.Months, key)
	}

	leaders := Top(ComputeGroupedCount(records, ByAuthor, time.Time{}), top)
	authorIndex := make(map[string]int, len(leaders))

	for i, row := range leaders {
		authorIndex[row.Key] = i
		mc.Authors = append(mc.Authors, row.Key)
		mc.Counts = append(mc.Counts, make([]int, len(mc.Months)))
	}

	for _, rec := range sorted {
		a, ok := authorIndex[rec.Author]
		if !ok {
			continue
		}

		mc.Counts[a][monthIndex[rec.Timestamp.UTC().Format(monthLayout)]]++
	}

	return mc
}

func monthStart(t time.Time) time.Time {
	t = t.UTC()

	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// byTime returns a copy ordered by timestamp, then revision number.
func byTime(records []revision.Record) []revision.Record {
	out := make([]revision.Record, len(records))
	copy(out, records)

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}

		return out[i].Number < out[j].Number
	})

	return out
}

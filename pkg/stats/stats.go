// Package stats computes grouped aggregate statistics over revision records.
//
// Every computation is a pure function of its inputs. Degenerate inputs
// (no records, a cutoff after the newest record, a zero total) produce an
// empty result rather than an error.
package stats

import (
	"sort"
	"time"
	"unicode/utf8"

	"github.com/Sumatoshi-tech/revstats/pkg/revision"
)

// percentScale converts a fraction into a percentage.
const percentScale = 100

// Row is one line of an aggregate table.
type Row struct {
	Key        string  `json:"key"                yaml:"key"`
	Value      float64 `json:"value"              yaml:"value"`
	Percent    float64 `json:"percent,omitempty"  yaml:"percent,omitempty"`
	HasPercent bool    `json:"-"                  yaml:"-"`
}

// KeyFunc derives the grouping key of a record.
type KeyFunc func(revision.Record) string

// ValueFunc derives the summed quantity of a record.
type ValueFunc func(revision.Record) float64

// ByAuthor groups records by author name.
func ByAuthor(rec revision.Record) string {
	return rec.Author
}

// MessageLength measures a commit message in characters.
func MessageLength(rec revision.Record) float64 {
	return float64(utf8.RuneCountInString(rec.Message))
}

// ChangedPathCount counts the paths touched by a revision.
func ChangedPathCount(rec revision.Record) float64 {
	return float64(len(rec.ChangedPaths))
}

// ComputeGroupedCount counts records per key. A zero since disables the
// cutoff; otherwise only records with Timestamp >= since are counted.
func ComputeGroupedCount(records []revision.Record, key KeyFunc, since time.Time) []Row {
	return ComputeGroupedSum(records, key, func(revision.Record) float64 { return 1 }, since)
}

// ComputeGroupedSum sums value per key over the records at or after since.
func ComputeGroupedSum(records []revision.Record, key KeyFunc, value ValueFunc, since time.Time) []Row {
	totals := make(map[string]float64)

	for _, rec := range revision.Since(records, since) {
		totals[key(rec)] += value(rec)
	}

	return buildRows(totals)
}

// buildRows converts per-key totals into sorted rows with percentages.
// A zero grand total yields no rows.
func buildRows(totals map[string]float64) []Row {
	var total float64

	for _, v := range totals {
		total += v
	}

	if total == 0 {
		return []Row{}
	}

	rows := make([]Row, 0, len(totals))

	for k, v := range totals {
		rows = append(rows, Row{
			Key:        k,
			Value:      v,
			Percent:    percentScale * v / total,
			HasPercent: true,
		})
	}

	SortRows(rows)

	return rows
}

// SortRows orders rows by value descending, then key ascending.
func SortRows(rows []Row) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Value != rows[j].Value {
			return rows[i].Value > rows[j].Value
		}

		return rows[i].Key < rows[j].Key
	})
}

// Total sums the values of rows.
func Total(rows []Row) float64 {
	var total float64

	for _, r := range rows {
		total += r.Value
	}

	return total
}

// Top returns at most n leading rows.
func Top(rows []Row, n int) []Row {
	if n <= 0 || n >= len(rows) {
		return rows
	}

	return rows[:n]
}

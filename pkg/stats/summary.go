package stats

import (
	"time"

	"github.com/Sumatoshi-tech/revstats/pkg/revision"
)

// Calendar approximations used for averages.
const (
	daysPerMonth = 30.0
	daysPerYear  = 365.25
)

// Summary is the general overview of a repository's history.
type Summary struct {
	FirstDate      time.Time     `json:"first_date"       yaml:"first_date"`
	LastDate       time.Time     `json:"last_date"        yaml:"last_date"`
	Authors        int           `json:"authors"          yaml:"authors"`
	SmallestNumber int64         `json:"smallest_number"  yaml:"smallest_number"`
	BiggestNumber  int64         `json:"biggest_number"   yaml:"biggest_number"`
	Count          int           `json:"count"            yaml:"count"`
	Age            time.Duration `json:"age"              yaml:"age"`
	PerDay         float64       `json:"per_day"          yaml:"per_day"`
	PerMonth       float64       `json:"per_month"        yaml:"per_month"`
	PerYear        float64       `json:"per_year"         yaml:"per_year"`
	ChangedPaths   int           `json:"changed_paths"    yaml:"changed_paths"`
}

// Summarize computes the general overview. Averages scale the count to the
// span of the history and are zero when all records share one timestamp.
func Summarize(records []revision.Record) Summary {
	if len(records) == 0 {
		return Summary{}
	}

	first := records[0]
	s := Summary{
		Count:          len(records),
		SmallestNumber: first.Number,
		BiggestNumber:  first.Number,
		FirstDate:      first.Timestamp,
		LastDate:       first.Timestamp,
	}
	authors := make(map[string]struct{})

	for _, rec := range records {
		s.SmallestNumber = min(s.SmallestNumber, rec.Number)
		s.BiggestNumber = max(s.BiggestNumber, rec.Number)

		if rec.Timestamp.Before(s.FirstDate) {
			s.FirstDate = rec.Timestamp
		}

		if rec.Timestamp.After(s.LastDate) {
			s.LastDate = rec.Timestamp
		}

		authors[rec.Author] = struct{}{}
		s.ChangedPaths += len(rec.ChangedPaths)
	}

	s.Authors = len(authors)
	s.Age = s.LastDate.Sub(s.FirstDate)

	days := s.Age.Hours() / 24
	s.PerDay = average(s.Count, days, 1)
	s.PerMonth = average(s.Count, days, daysPerMonth)
	s.PerYear = average(s.Count, days, daysPerYear)

	return s
}

// average scales count to a rate per unit days. A zero span has no rate.
func average(count int, days, unit float64) float64 {
	if days <= 0 {
		return 0
	}

	return float64(count) / (days / unit)
}

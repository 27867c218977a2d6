package stats

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/src-d/enry/v2"

	"github.com/Sumatoshi-tech/revstats/pkg/revision"
)

// Keys used when a path cannot be classified.
const (
	VendoredKey = "Vendored"
	OtherKey    = "Other"
	RootKey     = "/"
)

// ErrInvalidPattern is returned for a malformed exclude glob.
var ErrInvalidPattern = errors.New("stats: invalid path pattern")

// PathKeyFunc derives the grouping key of a changed path.
type PathKeyFunc func(revision.ChangedPath) string

// PathFilter reports whether a changed path takes part in a statistic.
type PathFilter func(revision.ChangedPath) bool

// ByLanguage classifies a path by programming language from its file name.
func ByLanguage(cp revision.ChangedPath) string {
	if enry.IsVendor(strings.TrimPrefix(cp.Path, "/")) {
		return VendoredKey
	}

	lang := enry.GetLanguage(path.Base(cp.Path), nil)
	if lang == "" {
		return OtherKey
	}

	return lang
}

// ByAction groups changed paths by the kind of change.
func ByAction(cp revision.ChangedPath) string {
	return cp.Action.Label()
}

// ByTopDirectory groups changed paths by their first path segment.
func ByTopDirectory(cp revision.ChangedPath) string {
	p := strings.TrimPrefix(cp.Path, "/")

	head, _, found := strings.Cut(p, "/")
	if !found || head == "" {
		return RootKey
	}

	return head
}

// NewExcludeFilter builds a filter rejecting paths that match any of the
// doublestar patterns. Patterns are validated up front.
func NewExcludeFilter(patterns []string) (PathFilter, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, p)
		}
	}

	if len(patterns) == 0 {
		return nil, nil
	}

	return func(cp revision.ChangedPath) bool {
		p := strings.TrimPrefix(cp.Path, "/")

		for _, pattern := range patterns {
			if ok, _ := doublestar.Match(pattern, p); ok {
				return false
			}
		}

		return true
	}, nil
}

// ComputePathCount counts changed paths per key over the records at or
// after since. A nil filter accepts every path.
func ComputePathCount(records []revision.Record, key PathKeyFunc, since time.Time, filter PathFilter) []Row {
	totals := make(map[string]float64)

	for _, rec := range revision.Since(records, since) {
		for _, cp := range rec.ChangedPaths {
			if filter != nil && !filter(cp) {
				continue
			}

			totals[key(cp)]++
		}
	}

	return buildRows(totals)
}

// FilterPaths returns copies of records whose changed paths pass filter.
func FilterPaths(records []revision.Record, filter PathFilter) []revision.Record {
	if filter == nil {
		return records
	}

	out := make([]revision.Record, len(records))

	for i, rec := range records {
		kept := make([]revision.ChangedPath, 0, len(rec.ChangedPaths))

		for _, cp := range rec.ChangedPaths {
			if filter(cp) {
				kept = append(kept, cp)
			}
		}

		rec.ChangedPaths = kept
		out[i] = rec
	}

	return out
}

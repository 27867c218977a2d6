// Package revision defines the revision record model shared by ingestion,
// storage, statistics and reporting.
package revision

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrUnknownAction is returned when a changed-path action code is not one of A, M, D or R.
var ErrUnknownAction = errors.New("unknown path action")

// Action is the kind of change applied to a path in a revision.
type Action byte

// Path actions, encoded with the single-letter codes used by svn.
const (
	Added    Action = 'A'
	Modified Action = 'M'
	Deleted  Action = 'D'
	Replaced Action = 'R'
)

// ParseAction converts a single-letter action code into an Action.
func ParseAction(code string) (Action, error) {
	if len(code) != 1 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownAction, code)
	}

	action := Action(code[0])

	switch action {
	case Added, Modified, Deleted, Replaced:
		return action, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAction, code)
	}
}

// String returns the single-letter code.
func (a Action) String() string {
	return string(rune(a))
}

// Label returns a human-readable name for the action.
func (a Action) Label() string {
	switch a {
	case Added:
		return "added"
	case Modified:
		return "modified"
	case Deleted:
		return "deleted"
	case Replaced:
		return "replaced"
	default:
		return "unknown"
	}
}

// ChangedPath is a single path touched by a revision.
type ChangedPath struct {
	Action Action `json:"action" yaml:"action"`
	Path   string `json:"path"   yaml:"path"`
}

// Record is one commit. Records are immutable once parsed.
type Record struct {
	Timestamp    time.Time     `json:"timestamp"     yaml:"timestamp"`
	Author       string        `json:"author"        yaml:"author"`
	Message      string        `json:"message"       yaml:"message"`
	ChangedPaths []ChangedPath `json:"changed_paths" yaml:"changed_paths"`
	Number       int64         `json:"number"        yaml:"number"`
}

// Source answers the two queries the statistics and reports need.
// Both methods return records ordered by revision number ascending.
type Source interface {
	AllRecords(ctx context.Context, repoURL string) ([]Record, error)
	RecordsSince(ctx context.Context, repoURL string, cutoff time.Time) ([]Record, error)
}

// SortByNumber orders records by revision number ascending, in place.
func SortByNumber(records []Record) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].Number < records[j].Number
	})
}

// Since returns the records whose timestamp is at or after cutoff.
// A zero cutoff returns records unchanged.
func Since(records []Record, cutoff time.Time) []Record {
	if cutoff.IsZero() {
		return records
	}

	filtered := make([]Record, 0, len(records))

	for _, rec := range records {
		if !rec.Timestamp.Before(cutoff) {
			filtered = append(filtered, rec)
		}
	}

	return filtered
}

// MemorySource is a Source backed by an in-memory slice per repository.
type MemorySource struct {
	records map[string][]Record
}

// NewMemorySource creates an empty in-memory source.
func NewMemorySource() *MemorySource {
	return &MemorySource{records: make(map[string][]Record)}
}

// Put replaces the records held for repoURL.
func (m *MemorySource) Put(repoURL string, records []Record) {
	cp := make([]Record, len(records))
	copy(cp, records)
	SortByNumber(cp)

	m.records[repoURL] = cp
}

// AllRecords implements Source.
func (m *MemorySource) AllRecords(_ context.Context, repoURL string) ([]Record, error) {
	return m.records[repoURL], nil
}

// RecordsSince implements Source.
func (m *MemorySource) RecordsSince(_ context.Context, repoURL string, cutoff time.Time) ([]Record, error) {
	return Since(m.records[repoURL], cutoff), nil
}

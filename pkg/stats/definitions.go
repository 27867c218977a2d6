package stats

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Sumatoshi-tech/revstats/pkg/metrics"
	"github.com/Sumatoshi-tech/revstats/pkg/revision"
)

// Statistic names.
const (
	NameAuthorsByCommits      = "authors_by_commits"
	NameAuthorsByChangedPaths = "authors_by_changed_paths"
	NameAuthorsByMessageSize  = "authors_by_log_message_size"
	NamePathsByLanguage       = "paths_by_language"
	NamePathsByAction         = "paths_by_action"
	NamePathsByDirectory      = "paths_by_directory"
)

// ErrUnknownStatistic is returned by Select for an unregistered name.
var ErrUnknownStatistic = errors.New("stats: unknown statistic")

// Input is what every grouped statistic consumes.
type Input struct {
	Since   time.Time
	Filter  PathFilter
	Records []revision.Record
}

// Grouped is a named per-record statistic.
type Grouped struct {
	Key   KeyFunc
	Value ValueFunc
	// KeyColumn and ValueColumn head the rendered table.
	KeyColumn   string
	ValueColumn string
	metrics.MetricMeta
}

// Compute implements metrics.Metric.
func (g *Grouped) Compute(in Input) []Row {
	records := FilterPaths(in.Records, in.Filter)

	if g.Value == nil {
		return ComputeGroupedCount(records, g.Key, in.Since)
	}

	return ComputeGroupedSum(records, g.Key, g.Value, in.Since)
}

// PathGrouped is a named per-changed-path statistic.
type PathGrouped struct {
	Key         PathKeyFunc
	KeyColumn   string
	ValueColumn string
	metrics.MetricMeta
}

// Compute implements metrics.Metric.
func (p *PathGrouped) Compute(in Input) []Row {
	return ComputePathCount(in.Records, p.Key, in.Since, in.Filter)
}

// Tabular is implemented by every statistic that renders as a two-column table.
type Tabular interface {
	metrics.Metric[Input, []Row]
	Columns() (key, value string)
}

// Columns returns the table headings.
func (g *Grouped) Columns() (key, value string) { return g.KeyColumn, g.ValueColumn }

// Columns returns the table headings.
func (p *PathGrouped) Columns() (key, value string) { return p.KeyColumn, p.ValueColumn }

// AuthorsByCommits counts commits per author.
func AuthorsByCommits() *Grouped {
	return &Grouped{
		MetricMeta: metrics.MetricMeta{
			MetricName:        NameAuthorsByCommits,
			MetricDisplayName: "Authors by commits",
			MetricDescription: "Number of revisions committed by each author.",
			MetricType:        metrics.TypeAggregate,
		},
		Key:         ByAuthor,
		KeyColumn:   "Author",
		ValueColumn: "Commits",
	}
}

// AuthorsByChangedPaths sums changed paths per author.
func AuthorsByChangedPaths() *Grouped {
	return &Grouped{
		MetricMeta: metrics.MetricMeta{
			MetricName:        NameAuthorsByChangedPaths,
			MetricDisplayName: "Authors by changed paths",
			MetricDescription: "Total number of paths touched by each author's revisions.",
			MetricType:        metrics.TypeAggregate,
		},
		Key:         ByAuthor,
		Value:       ChangedPathCount,
		KeyColumn:   "Author",
		ValueColumn: "Changed paths",
	}
}

// AuthorsByMessageSize sums log message characters per author.
func AuthorsByMessageSize() *Grouped {
	return &Grouped{
		MetricMeta: metrics.MetricMeta{
			MetricName:        NameAuthorsByMessageSize,
			MetricDisplayName: "Authors by total log message size",
			MetricDescription: "Total characters written in commit messages by each author.",
			MetricType:        metrics.TypeAggregate,
		},
		Key:         ByAuthor,
		Value:       MessageLength,
		KeyColumn:   "Author",
		ValueColumn: "Characters",
	}
}

// PathsByLanguage counts changed paths per detected language.
func PathsByLanguage() *PathGrouped {
	return &PathGrouped{
		MetricMeta: metrics.MetricMeta{
			MetricName:        NamePathsByLanguage,
			MetricDisplayName: "Changed paths by language",
			MetricDescription: "Changed paths classified by programming language of the file name.",
			MetricType:        metrics.TypeAggregate,
		},
		Key:         ByLanguage,
		KeyColumn:   "Language",
		ValueColumn: "Changes",
	}
}

// PathsByAction counts changed paths per kind of change.
func PathsByAction() *PathGrouped {
	return &PathGrouped{
		MetricMeta: metrics.MetricMeta{
			MetricName:        NamePathsByAction,
			MetricDisplayName: "Changed paths by action",
			MetricDescription: "Changed paths split into added, modified, deleted and replaced.",
			MetricType:        metrics.TypeAggregate,
		},
		Key:         ByAction,
		KeyColumn:   "Action",
		ValueColumn: "Changes",
	}
}

// PathsByDirectory counts changed paths per top-level directory.
func PathsByDirectory() *PathGrouped {
	return &PathGrouped{
		MetricMeta: metrics.MetricMeta{
			MetricName:        NamePathsByDirectory,
			MetricDisplayName: "Changed paths by top-level directory",
			MetricDescription: "Changed paths grouped by their first path segment.",
			MetricType:        metrics.TypeAggregate,
		},
		Key:         ByTopDirectory,
		KeyColumn:   "Directory",
		ValueColumn: "Changes",
	}
}

// NewRegistry registers every built-in tabular statistic.
func NewRegistry() *metrics.Registry {
	r := metrics.NewRegistry()

	for _, m := range Builtin() {
		metrics.Register[Input, []Row](r, m)
	}

	return r
}

// Select resolves statistic names through the registry, keeping the given
// order. No names selects Builtin.
func Select(names []string) ([]Tabular, error) {
	if len(names) == 0 {
		return Builtin(), nil
	}

	registry := NewRegistry()
	out := make([]Tabular, 0, len(names))

	for _, name := range names {
		m, _ := registry.Get(name)

		tab, ok := m.(Tabular)
		if !ok {
			return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownStatistic, name, strings.Join(registry.Names(), ", "))
		}

		out = append(out, tab)
	}

	return out, nil
}

// Builtin lists the built-in tabular statistics in presentation order.
func Builtin() []Tabular {
	return []Tabular{
		AuthorsByCommits(),
		AuthorsByChangedPaths(),
		AuthorsByMessageSize(),
		PathsByLanguage(),
		PathsByAction(),
		PathsByDirectory(),
	}
}

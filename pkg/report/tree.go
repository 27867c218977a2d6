package report

import (
	"fmt"
	"strconv"

	"github.com/Sumatoshi-tech/revstats/pkg/graph"
	"github.com/Sumatoshi-tech/revstats/pkg/stats"
)

// Root group identity.
const (
	RootName  = "all_reports"
	RootTitle = "Repository Statistics"
)

const (
	defaultTopAuthors = 10
	graphDateLayout   = "2006-01-02"
)

// TreeConfig tunes the standard report tree.
type TreeConfig struct {
	Graph      graph.Options
	Windows    []stats.Window
	TopAuthors int
	// Charts adds the interactive monthly chart.
	Charts bool
}

// DefaultTree builds the standard set of reports.
func DefaultTree(cfg TreeConfig) (*Group, error) {
	if cfg.TopAuthors <= 0 {
		cfg.TopAuthors = defaultTopAuthors
	}

	if len(cfg.Windows) == 0 {
		cfg.Windows = stats.Windows()
	}

	root := NewGroup(RootName, RootTitle)

	byCommits := NewGroup(stats.NameAuthorsByCommits, "Authors by commits")
	for _, w := range cfg.Windows {
		name := stats.NameAuthorsByCommits + "_" + w.Slug()
		if err := byCommits.Add(NewTableReport(name, "Authors by commits, "+w.Title(), stats.AuthorsByCommits(), w)); err != nil {
			return nil, err
		}
	}

	authors := NewGroup("authors", "Authors")
	if err := addAll(authors,
		byCommits,
		NewTableReport(stats.NameAuthorsByChangedPaths, "Authors by changed paths",
			stats.AuthorsByChangedPaths(), stats.WindowAll),
		NewTableReport(stats.NameAuthorsByMessageSize, "Authors by total log message size",
			stats.AuthorsByMessageSize(), stats.WindowAll),
	); err != nil {
		return nil, err
	}

	activity := NewGroup("activity", "Activity")
	if err := addAll(activity,
		NewGraphReport("commits_graph", "Total commit count over time",
			stats.WindowAll, TotalCommitsSeries, timeAxis(cfg.Graph, "Commits")),
		NewGraphReport("author_commits_graph", "Commit count by author over time",
			stats.WindowAll, AuthorCommitsSeries(cfg.TopAuthors), timeAxis(cfg.Graph, "Commits")),
	); err != nil {
		return nil, err
	}

	if cfg.Charts {
		if err := activity.Add(NewChartReport("commits_per_month", "Commits per month",
			stats.WindowAll, cfg.TopAuthors)); err != nil {
			return nil, err
		}
	}

	paths := NewGroup("paths", "Changed paths")
	if err := addAll(paths,
		NewTableReport(stats.NamePathsByLanguage, "Changed paths by language", stats.PathsByLanguage(), stats.WindowAll),
		NewTableReport(stats.NamePathsByAction, "Changed paths by action", stats.PathsByAction(), stats.WindowAll),
		NewTableReport(stats.NamePathsByDirectory, "Changed paths by top-level directory",
			stats.PathsByDirectory(), stats.WindowAll).WithLimit(cfg.TopAuthors),
	); err != nil {
		return nil, err
	}

	if err := addAll(root, NewInfoReport("general", "General Statistics"), authors, activity, paths); err != nil {
		return nil, fmt.Errorf("building report tree: %w", err)
	}

	return root, nil
}

func addAll(g *Group, nodes ...Node) error {
	for _, n := range nodes {
		if err := g.Add(n); err != nil {
			return err
		}
	}

	return nil
}

func timeAxis(base graph.Options, yTitle string) graph.Options {
	base.XTitle = "Date"
	base.YTitle = yTitle
	base.XFormat = func(x float64) string {
		return graph.XTime(x).Format(graphDateLayout)
	}
	base.YFormat = func(y float64) string {
		return strconv.FormatFloat(y, 'f', 0, 64)
	}

	return base
}

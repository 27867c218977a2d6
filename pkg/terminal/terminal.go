// Package terminal prints statistics summaries for the command line as
// text tables, YAML or JSON.
package terminal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/revstats/pkg/revision"
	"github.com/Sumatoshi-tech/revstats/pkg/stats"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported formats.
var ErrUnknownFormat = errors.New("unknown output format")

// Format selects the summary encoding.
type Format string

// Output formats.
const (
	FormatText Format = "text"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat converts a format name. Empty selects text.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatText:
		return FormatText, nil
	case FormatYAML:
		return FormatYAML, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Leaderboard is one ranked statistic.
type Leaderboard struct {
	Name        string      `json:"name"         yaml:"name"`
	Title       string      `json:"title"        yaml:"title"`
	Description string      `json:"description"  yaml:"description"`
	KeyColumn   string      `json:"key_column"   yaml:"key_column"`
	ValueColumn string      `json:"value_column" yaml:"value_column"`
	Rows        []stats.Row `json:"rows"         yaml:"rows"`
}

// View is everything the summary command prints.
type View struct {
	GeneratedAt time.Time     `json:"generated_at" yaml:"generated_at"`
	Repository  string        `json:"repository"   yaml:"repository"`
	Window      stats.Window  `json:"window"       yaml:"window"`
	Summary     stats.Summary `json:"summary"      yaml:"summary"`
	Boards      []Leaderboard `json:"leaderboards" yaml:"leaderboards"`
}

// BuildView computes the selected statistics over records for one window,
// or every built-in statistic when selected is empty. Each leaderboard keeps
// at most top rows; top <= 0 keeps all.
func BuildView(
	repoURL string, records []revision.Record, window stats.Window, filter stats.PathFilter, now time.Time, top int,
	selected ...stats.Tabular,
) View {
	since := window.Since(now)
	inWindow := revision.Since(records, since)

	view := View{
		GeneratedAt: now,
		Repository:  repoURL,
		Window:      window,
		Summary:     stats.Summarize(inWindow),
	}

	in := stats.Input{Since: since, Filter: filter, Records: records}

	if len(selected) == 0 {
		selected = stats.Builtin()
	}

	for _, m := range selected {
		keyCol, valueCol := m.Columns()

		view.Boards = append(view.Boards, Leaderboard{
			Name:        m.Name(),
			Title:       m.DisplayName(),
			Description: m.Description(),
			KeyColumn:   keyCol,
			ValueColumn: valueCol,
			Rows:        stats.Top(m.Compute(in), top),
		})
	}

	return view
}

// Write encodes view in the given format.
func Write(w io.Writer, view View, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		if err := enc.Encode(view); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		if err := enc.Encode(view); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}

		return nil
	case FormatText:
		return WriteText(w, view)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteText prints view as headed tables. Colors follow color.NoColor.
func WriteText(w io.Writer, view View) error {
	heading := color.New(color.FgCyan, color.Bold)
	muted := color.New(color.FgHiBlack)

	var b strings.Builder

	heading.Fprintf(&b, "Statistics for %s (%s)\n", view.Repository, view.Window.Title())

	s := view.Summary
	if s.Count == 0 {
		muted.Fprintln(&b, "No revisions in this period.")
	} else {
		fmt.Fprintf(&b, "Revisions r%d..r%d: %s by %s authors, %s changed paths\n",
			s.SmallestNumber, s.BiggestNumber,
			humanize.Comma(int64(s.Count)), humanize.Comma(int64(s.Authors)), humanize.Comma(int64(s.ChangedPaths)))
		fmt.Fprintf(&b, "First commit %s (%s), last commit %s (%s)\n",
			s.FirstDate.Format(time.DateOnly), humanize.RelTime(s.FirstDate, view.GeneratedAt, "ago", "from now"),
			s.LastDate.Format(time.DateOnly), humanize.RelTime(s.LastDate, view.GeneratedAt, "ago", "from now"))
		fmt.Fprintf(&b, "Average commits: %.2f per day, %.2f per month, %.2f per year\n",
			s.PerDay, s.PerMonth, s.PerYear)
	}

	for _, board := range view.Boards {
		b.WriteByte('\n')
		heading.Fprintln(&b, board.Title)
		muted.Fprintln(&b, board.Description)

		if len(board.Rows) == 0 {
			muted.Fprintln(&b, "  (empty)")

			continue
		}

		b.WriteString(renderBoard(board))
		b.WriteByte('\n')
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	return nil
}

func renderBoard(board Leaderboard) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.DrawBorder = false

	tbl.AppendHeader(table.Row{"#", board.KeyColumn, board.ValueColumn, "%"})

	for i, row := range board.Rows {
		percent := ""
		if row.HasPercent {
			percent = fmt.Sprintf("%.2f%%", row.Percent)
		}

		tbl.AppendRow(table.Row{i + 1, row.Key, humanize.Commaf(row.Value), percent})
	}

	tbl.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})

	return tbl.Render()
}

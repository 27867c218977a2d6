package commands

import (
	"context"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/revstats/pkg/observability"
	"github.com/Sumatoshi-tech/revstats/pkg/stats"
	"github.com/Sumatoshi-tech/revstats/pkg/terminal"
)

type summaryOptions struct {
	url     string
	window  string
	format  string
	stats   []string
	top     int
	noColor bool
}

func newSummaryCommand(g *GlobalOptions) *cobra.Command {
	var opts summaryOptions

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print leaderboards to the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			window, err := stats.ParseWindow(opts.window)
			if err != nil {
				return err
			}

			format, err := terminal.ParseFormat(opts.format)
			if err != nil {
				return err
			}

			selected, err := stats.Select(opts.stats)
			if err != nil {
				return err
			}

			if opts.noColor {
				color.NoColor = true //nolint:reassign // fatih/color exposes this as the documented toggle.
			}

			overrides := map[string]any{}
			changed(cmd, overrides, "url", "repository.url", opts.url)
			changed(cmd, overrides, "top", "report.top_authors", opts.top)

			a, err := g.setup(cmd, setupOptions{
				mode:      observability.ModeCLI,
				overrides: overrides,
				needRepo:  true,
			})
			if err != nil {
				return err
			}
			defer a.close()

			return runSummary(cmd.Context(), a, g, window, format, selected)
		},
	}

	repositoryFlag(cmd, &opts.url)
	cmd.Flags().StringVar(&opts.window, "window", string(stats.WindowAll), "time window: all, last-30-days, last-7-days")
	cmd.Flags().StringVar(&opts.format, "format", string(terminal.FormatText), "output format: text, yaml, json")
	cmd.Flags().StringSliceVar(&opts.stats, "stat", nil, "statistics to print by name (default all)")
	cmd.Flags().IntVar(&opts.top, "top", 0, "rows per leaderboard (default report.top_authors)")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	return cmd
}

func runSummary(
	ctx context.Context, a *app, g *GlobalOptions, window stats.Window, format terminal.Format, selected []stats.Tabular,
) error {
	filter, err := stats.NewExcludeFilter(a.cfg.Report.Exclude)
	if err != nil {
		return err
	}

	records, err := a.store.AllRecords(ctx, a.cfg.Repository.URL)
	if err != nil {
		return err
	}

	view := terminal.BuildView(a.cfg.Repository.URL, records, window, filter, g.now(), a.cfg.Report.TopAuthors, selected...)

	return terminal.Write(a.out, view, format)
}

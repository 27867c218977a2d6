package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/revstats/pkg/config"
	"github.com/Sumatoshi-tech/revstats/pkg/graph"
	"github.com/Sumatoshi-tech/revstats/pkg/observability"
	"github.com/Sumatoshi-tech/revstats/pkg/plotpage"
	"github.com/Sumatoshi-tech/revstats/pkg/report"
	"github.com/Sumatoshi-tech/revstats/pkg/site"
	"github.com/Sumatoshi-tech/revstats/pkg/stats"
	"github.com/Sumatoshi-tech/revstats/pkg/version"
)

type reportOptions struct {
	url             string
	outputDir       string
	theme           string
	metricsTextfile string
	exclude         []string
	noLinks         bool
	multiPage       bool
}

func newReportCommand(g *GlobalOptions) *cobra.Command {
	var opts reportOptions

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate the HTML report",
		Long: `Render every report of the standard tree from the stored revisions and
write index.html plus one SVG per graph into the output directory.

Files are written only after every report rendered successfully.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			overrides := map[string]any{}
			changed(cmd, overrides, "url", "repository.url", opts.url)
			changed(cmd, overrides, "output", "report.output_dir", opts.outputDir)
			changed(cmd, overrides, "theme", "report.theme", opts.theme)
			changed(cmd, overrides, "metrics-textfile", "report.metrics_textfile", opts.metricsTextfile)
			changed(cmd, overrides, "exclude", "report.exclude", opts.exclude)
			changed(cmd, overrides, "no-links", "report.with_links", !opts.noLinks)
			changed(cmd, overrides, "multi-page", "report.multi_page", opts.multiPage)

			a, err := g.setup(cmd, setupOptions{
				mode:          observability.ModeReport,
				overrides:     overrides,
				needRepo:      true,
				exportMetrics: true,
			})
			if err != nil {
				return err
			}
			defer a.close()

			return runReport(cmd.Context(), a, g)
		},
	}

	repositoryFlag(cmd, &opts.url)
	cmd.Flags().StringVarP(&opts.outputDir, "output", "o", config.DefaultOutputDir, "output directory")
	cmd.Flags().StringVar(&opts.theme, "theme", config.DefaultTheme, "page theme: light or dark")
	cmd.Flags().StringVar(&opts.metricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file")
	cmd.Flags().StringArrayVar(&opts.exclude, "exclude", nil, "glob of changed paths to ignore (repeatable)")
	cmd.Flags().BoolVar(&opts.noLinks, "no-links", false, "omit report anchors and top links")
	cmd.Flags().BoolVar(&opts.multiPage, "multi-page", false, "write one page per report")

	return cmd
}

func runReport(ctx context.Context, a *app, g *GlobalOptions) error {
	rc := a.cfg.Report

	theme, err := plotpage.ParseTheme(rc.Theme)
	if err != nil {
		return err
	}

	windows, err := rc.ParsedWindows()
	if err != nil {
		return err
	}

	filter, err := stats.NewExcludeFilter(rc.Exclude)
	if err != nil {
		return err
	}

	tree, err := report.DefaultTree(report.TreeConfig{
		Graph: graph.Options{
			Width:  float64(rc.Graph.Width),
			Height: float64(rc.Graph.Height),
			Margin: float64(rc.Graph.Margin),
		},
		Windows:    windows,
		TopAuthors: rc.TopAuthors,
		Charts:     rc.Charts,
	})
	if err != nil {
		return fmt.Errorf("build report tree: %w", err)
	}

	asm := &site.Assembler{
		Clock:   g.now,
		Logger:  a.logger,
		Tracer:  a.providers.Tracer,
		Metrics: a.metrics,
		Version: version.Version,
		RunID:   a.runID,
		Options: report.Options{
			Now:           g.now(),
			Filter:        filter,
			RepositoryURL: a.cfg.Repository.URL,
			Theme:         theme,
			WithLinks:     rc.WithLinks,
		},
		MultiPage: rc.MultiPage,
	}

	doc, err := asm.Assemble(ctx, tree, a.store)
	if err != nil {
		return err
	}

	if err = site.WriteDocument(rc.OutputDir, doc); err != nil {
		return err
	}

	a.metrics.RecordFiles(ctx, len(doc.Files))
	a.logger.InfoContext(ctx, "report written", "dir", rc.OutputDir, "files", len(doc.Files))

	if rc.MetricsTextfile != "" {
		if err = a.providers.WriteMetrics(rc.MetricsTextfile); err != nil {
			return err
		}
	}

	a.printf("Wrote %d files to %s\n", len(doc.Files), rc.OutputDir)

	return nil
}

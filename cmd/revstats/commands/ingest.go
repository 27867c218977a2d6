package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Sumatoshi-tech/revstats/pkg/gitlib"
	"github.com/Sumatoshi-tech/revstats/pkg/observability"
	"github.com/Sumatoshi-tech/revstats/pkg/revision"
	"github.com/Sumatoshi-tech/revstats/pkg/svnlog"
)

// Ingest source labels.
const (
	sourceSVN  = "svn"
	sourceFile = "file"
	sourceGit  = "git"
)

type ingestOptions struct {
	url       string
	input     string
	svnBinary string
	gitPath   string
}

func newIngestCommand(g *GlobalOptions) *cobra.Command {
	var opts ingestOptions

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load revisions into the store",
		Long: `Load the revision log of a repository and replace the stored records
for its URL.

Without --input or --git the svn client is run as "svn log -v --xml URL".
--input reads a saved XML log ("-" for stdin); names ending in .lz4, .zst or
.gz are decompressed. --git reads the first-parent history of a local git
repository and numbers its commits from 1.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			overrides := map[string]any{}
			changed(cmd, overrides, "url", "repository.url", opts.url)
			changed(cmd, overrides, "svn-binary", "svn.binary", opts.svnBinary)

			a, err := g.setup(cmd, setupOptions{
				mode:      observability.ModeIngest,
				overrides: overrides,
				needRepo:  true,
			})
			if err != nil {
				return err
			}
			defer a.close()

			return runIngest(cmd.Context(), a, opts, cmd.InOrStdin())
		},
	}

	repositoryFlag(cmd, &opts.url)
	cmd.Flags().StringVar(&opts.input, "input", "", `svn XML log file, "-" for stdin`)
	cmd.Flags().StringVar(&opts.svnBinary, "svn-binary", "", "svn client executable")
	cmd.Flags().StringVar(&opts.gitPath, "git", "", "read history from a local git repository")
	cmd.MarkFlagsMutuallyExclusive("input", "git")

	return cmd
}

func runIngest(ctx context.Context, a *app, opts ingestOptions, stdin io.Reader) error {
	repoURL := a.cfg.Repository.URL

	ctx, span := a.providers.Tracer.Start(ctx, "ingest")
	defer span.End()

	records, source, err := readRecords(ctx, a, opts, stdin)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")

		return err
	}

	span.SetAttributes(
		attribute.String("ingest.source", source),
		attribute.Int("ingest.revisions", len(records)),
	)

	if err = a.store.ReplaceRecords(ctx, repoURL, records); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store failed")

		return err
	}

	a.metrics.RecordIngest(ctx, source, len(records))
	a.logger.InfoContext(ctx, "ingested revisions", "count", len(records), "source", source, "repository", repoURL)
	a.printf("Ingested %d revisions of %s\n", len(records), repoURL)

	return nil
}

func readRecords(ctx context.Context, a *app, opts ingestOptions, stdin io.Reader) ([]revision.Record, string, error) {
	switch {
	case opts.gitPath != "":
		records, err := gitlib.ReadHistory(ctx, opts.gitPath)
		if err != nil {
			return nil, sourceGit, fmt.Errorf("read git history: %w", err)
		}

		return records, sourceGit, nil
	case opts.input == svnlog.StdinName:
		records, err := svnlog.Parse(stdin)

		return records, sourceFile, err
	case opts.input != "":
		rc, err := svnlog.OpenInput(opts.input)
		if err != nil {
			return nil, sourceFile, err
		}
		defer rc.Close()

		records, err := svnlog.Parse(rc)

		return records, sourceFile, err
	default:
		a.logger.DebugContext(ctx, "running svn", "binary", a.cfg.SVN.Binary, "url", a.cfg.Repository.URL)

		records, err := svnlog.Fetch(ctx, a.cfg.SVN.Binary, a.cfg.Repository.URL)

		return records, sourceSVN, err
	}
}

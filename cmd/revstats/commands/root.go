package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/revstats/pkg/version"
)

// NewRootCommand builds the revstats command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&GlobalOptions{})
}

func newRootCommand(g *GlobalOptions) *cobra.Command {
	root := &cobra.Command{
		Use:   "revstats",
		Short: "Revision history statistics for Subversion and git repositories",
		Long: `revstats stores the revision log of a repository and turns it into
statistics: HTML reports with tables and graphs, or terminal leaderboards.

Commands:
  ingest    Load a svn XML log or a git history into the store
  report    Generate the HTML report
  summary   Print leaderboards to the terminal
  purge     Delete stored revisions of a repository`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	g.register(root)

	root.AddCommand(
		newIngestCommand(g),
		newReportCommand(g),
		newSummaryCommand(g),
		newPurgeCommand(g),
		newVersionCommand(),
	)

	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

// repositoryFlag binds --url to repository.url.
func repositoryFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVar(target, "url", "", "repository URL the revisions belong to")
}

func changed(cmd *cobra.Command, overrides map[string]any, flag, key string, value any) {
	if cmd.Flags().Changed(flag) {
		overrides[key] = value
	}
}

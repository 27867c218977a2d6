package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/revstats/pkg/observability"
)

func newPurgeCommand(g *GlobalOptions) *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete stored revisions of a repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			overrides := map[string]any{}
			changed(cmd, overrides, "url", "repository.url", url)

			a, err := g.setup(cmd, setupOptions{mode: observability.ModeCLI, overrides: overrides, needRepo: true})
			if err != nil {
				return err
			}
			defer a.close()

			n, err := a.store.Purge(cmd.Context(), a.cfg.Repository.URL)
			if err != nil {
				return err
			}

			a.logger.InfoContext(cmd.Context(), "purged revisions", "count", n, "repository", a.cfg.Repository.URL)
			a.printf("Deleted %d revisions of %s\n", n, a.cfg.Repository.URL)

			return nil
		},
	}

	repositoryFlag(cmd, &url)

	return cmd
}

package gitlib

import (
	"context"
	"fmt"

	"github.com/Sumatoshi-tech/revstats/pkg/revision"
)

// ReadHistory converts the first-parent history of HEAD into revision
// records. Git has no revision numbers, so commits are numbered 1..n from
// the oldest. The context is checked between commits.
func (r *Repository) ReadHistory(ctx context.Context) ([]revision.Record, error) {
	iter, err := r.Log()
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var (
		records []revision.Record
		number  int64
	)

	err = iter.ForEach(func(c *Commit) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("read history: %w", ctxErr)
		}

		paths, pathsErr := c.ChangedPaths()
		if pathsErr != nil {
			return fmt.Errorf("commit %s: %w", c.Hash(), pathsErr)
		}

		number++

		records = append(records, revision.Record{
			Number:       number,
			Author:       c.Author(),
			Timestamp:    c.When(),
			Message:      c.Message(),
			ChangedPaths: paths,
		})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}

// ReadHistory opens the repository at path and reads its history.
func ReadHistory(ctx context.Context, path string) ([]revision.Record, error) {
	repo, err := OpenRepository(path)
	if err != nil {
		return nil, err
	}
	defer repo.Free()

	return repo.ReadHistory(ctx)
}

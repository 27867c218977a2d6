package gitlib

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	git2go "github.com/libgit2/git2go/v34"

	"github.com/Sumatoshi-tech/revstats/pkg/revision"
)

// Commit wraps a libgit2 commit.
type Commit struct {
	commit *git2go.Commit
	repo   *Repository
}

// Hash returns the commit id in hex.
func (c *Commit) Hash() string {
	return c.commit.Id().String()
}

// Author returns the author name, falling back to the email.
func (c *Commit) Author() string {
	sig := c.commit.Author()
	if name := strings.TrimSpace(sig.Name); name != "" {
		return name
	}

	return sig.Email
}

// When returns the author time in UTC.
func (c *Commit) When() time.Time {
	return c.commit.Author().When.UTC()
}

// Message returns the commit message.
func (c *Commit) Message() string {
	return c.commit.Message()
}

// ChangedPaths diffs the commit against its first parent. The root commit
// is diffed against the empty tree.
func (c *Commit) ChangedPaths() ([]revision.ChangedPath, error) {
	tree, err := c.commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("get commit tree: %w", err)
	}
	defer tree.Free()

	var parentTree *git2go.Tree

	if c.commit.ParentCount() > 0 {
		parent := c.commit.Parent(0)
		if parent == nil {
			return nil, fmt.Errorf("commit %s: parent not found", c.Hash())
		}
		defer parent.Free()

		parentTree, err = parent.Tree()
		if err != nil {
			return nil, fmt.Errorf("get parent tree: %w", err)
		}
		defer parentTree.Free()

		if parentTree.Id().Equal(tree.Id()) {
			return nil, nil
		}
	}

	diff, err := c.repo.diffTrees(parentTree, tree)
	if err != nil {
		return nil, err
	}
	defer func() { _ = diff.Free() }()

	numDeltas, err := diff.NumDeltas()
	if err != nil {
		return nil, fmt.Errorf("get num deltas: %w", err)
	}

	paths := make([]revision.ChangedPath, 0, numDeltas)

	for i := range numDeltas {
		delta, deltaErr := diff.Delta(i)
		if deltaErr != nil {
			return nil, fmt.Errorf("get delta %d: %w", i, deltaErr)
		}

		cp, ok := changedPath(delta)
		if ok {
			paths = append(paths, cp)
		}
	}

	return paths, nil
}

func changedPath(delta git2go.DiffDelta) (revision.ChangedPath, bool) {
	switch delta.Status {
	case git2go.DeltaAdded, git2go.DeltaCopied:
		return revision.ChangedPath{Action: revision.Added, Path: "/" + delta.NewFile.Path}, true
	case git2go.DeltaDeleted:
		return revision.ChangedPath{Action: revision.Deleted, Path: "/" + delta.OldFile.Path}, true
	case git2go.DeltaModified:
		return revision.ChangedPath{Action: revision.Modified, Path: "/" + delta.NewFile.Path}, true
	case git2go.DeltaRenamed, git2go.DeltaTypeChange:
		return revision.ChangedPath{Action: revision.Replaced, Path: "/" + delta.NewFile.Path}, true
	case git2go.DeltaUnmodified, git2go.DeltaIgnored, git2go.DeltaUntracked,
		git2go.DeltaUnreadable, git2go.DeltaConflicted:
		return revision.ChangedPath{}, false
	}

	return revision.ChangedPath{}, false
}

// Free releases the commit resources.
func (c *Commit) Free() {
	if c.commit != nil {
		c.commit.Free()
		c.commit = nil
	}
}

// CommitIter iterates over commits.
type CommitIter struct {
	walk *git2go.RevWalk
	repo *Repository
}

// Next returns the next commit, or io.EOF at the end of history.
func (ci *CommitIter) Next() (*Commit, error) {
	oid := new(git2go.Oid)

	err := ci.walk.Next(oid)
	if git2go.IsErrorCode(err, git2go.ErrorCodeIterOver) {
		return nil, io.EOF
	}

	if err != nil {
		return nil, fmt.Errorf("revwalk next: %w", err)
	}

	commit, err := ci.repo.repo.LookupCommit(oid)
	if err != nil {
		return nil, fmt.Errorf("lookup commit %s: %w", oid, err)
	}

	return &Commit{commit: commit, repo: ci.repo}, nil
}

// ForEach calls the callback for each commit and frees it afterwards.
func (ci *CommitIter) ForEach(cb func(*Commit) error) error {
	for {
		commit, err := ci.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return err
		}

		cbErr := cb(commit)
		commit.Free()

		if cbErr != nil {
			return cbErr
		}
	}
}

// Close releases resources.
func (ci *CommitIter) Close() {
	if ci.walk != nil {
		ci.walk.Free()
		ci.walk = nil
	}
}

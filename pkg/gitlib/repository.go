// Package gitlib reads git history through libgit2 and turns it into
// revision records.
package gitlib

import (
	"fmt"

	git2go "github.com/libgit2/git2go/v34"
	"github.com/mitchellh/go-homedir"
)

// Repository wraps a libgit2 repository.
type Repository struct {
	repo *git2go.Repository
	path string
}

// OpenRepository opens a git repository at the given path.
func OpenRepository(path string) (*Repository, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expand repository path %s: %w", path, err)
	}

	repo, err := git2go.OpenRepository(expanded)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	return &Repository{repo: repo, path: expanded}, nil
}

// Path returns the repository path.
func (r *Repository) Path() string {
	return r.path
}

// Free releases the repository resources.
func (r *Repository) Free() {
	if r.repo != nil {
		r.repo.Free()
		r.repo = nil
	}
}

// Log returns an iterator over the first-parent history of HEAD, oldest
// commit first.
func (r *Repository) Log() (*CommitIter, error) {
	walk, err := r.repo.Walk()
	if err != nil {
		return nil, fmt.Errorf("create revwalk: %w", err)
	}

	headRef, err := r.repo.Head()
	if err != nil {
		walk.Free()

		return nil, fmt.Errorf("get HEAD: %w", err)
	}
	defer headRef.Free()

	err = walk.Push(headRef.Target())
	if err != nil {
		walk.Free()

		return nil, fmt.Errorf("push HEAD to revwalk: %w", err)
	}

	// Topological order never yields a commit before its parents.
	walk.Sorting(git2go.SortTopological | git2go.SortTime | git2go.SortReverse)
	walk.SimplifyFirstParent()

	return &CommitIter{walk: walk, repo: r}, nil
}

// diffTrees computes the diff between two trees; a nil old tree diffs
// against the empty tree.
func (r *Repository) diffTrees(oldTree, newTree *git2go.Tree) (*git2go.Diff, error) {
	opts, err := git2go.DefaultDiffOptions()
	if err != nil {
		return nil, fmt.Errorf("get diff options: %w", err)
	}

	diff, err := r.repo.DiffTreeToTree(oldTree, newTree, &opts)
	if err != nil {
		return nil, fmt.Errorf("diff trees: %w", err)
	}

	return diff, nil
}

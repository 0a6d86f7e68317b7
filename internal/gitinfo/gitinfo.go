// Package gitinfo resolves repository identity for generated pages. When the
// documented sources live inside a git work tree, pages carry the short
// commit hash in their footer; outside a repository everything degrades to
// empty values.
package gitinfo

import (
	"errors"

	git "github.com/go-git/go-git/v5"
)

// Info identifies the repository state the docs were generated from.
type Info struct {
	Commit string // full HEAD hash
	Short  string // first 8 characters, for display
	Branch string // branch name, empty when detached
}

// Lookup walks upward from dir to find an enclosing git repository and
// resolves its HEAD. A missing repository is not an error; it returns an
// empty Info so callers can omit the footer line.
func Lookup(dir string) (Info, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return Info{}, nil
		}
		return Info{}, err
	}

	head, err := repo.Head()
	if err != nil {
		// Fresh repository without commits; treat like no repository.
		return Info{}, nil
	}

	info := Info{Commit: head.Hash().String()}
	if len(info.Commit) >= 8 {
		info.Short = info.Commit[:8]
	}
	if head.Name().IsBranch() {
		info.Branch = head.Name().Short()
	}
	return info, nil
}

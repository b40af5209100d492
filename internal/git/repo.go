package git

import (
	"errors"
	"fmt"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// RepoMeta describes the repository a scan ran in.
type RepoMeta struct {
	Root   string
	Repo   string
	Commit string
	Branch string
}

func open(path string) (*gogit.Repository, error) {
	return gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{DetectDotGit: true})
}

// TopLevel returns the working tree root of the repository containing path.
func TopLevel(path string) (string, error) {
	validPath, err := validateRoot(path)
	if err != nil {
		return "", err
	}
	repo, err := open(validPath)
	if err != nil {
		return "", fmt.Errorf("not a git repository: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", err
	}
	return wt.Filesystem.Root(), nil
}

// RepoMetadata returns best-effort metadata for the repository containing
// root. Fields that cannot be determined are left empty; a repository with no
// commits yields an empty Commit and Branch.
func RepoMetadata(root string) (RepoMeta, error) {
	validRoot, err := validateRoot(root)
	if err != nil {
		return RepoMeta{}, err
	}
	repo, err := open(validRoot)
	if err != nil {
		return RepoMeta{}, fmt.Errorf("not a git repository: %w", err)
	}
	var meta RepoMeta
	if wt, err := repo.Worktree(); err == nil {
		meta.Root = wt.Filesystem.Root()
	}
	if remote, err := repo.Remote("origin"); err == nil {
		if urls := remote.Config().URLs; len(urls) > 0 {
			meta.Repo = shortRepoName(urls[0])
		}
	}
	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return meta, nil
		}
		return meta, err
	}
	meta.Commit = head.Hash().String()
	if head.Name().IsBranch() {
		meta.Branch = head.Name().Short()
	} else {
		meta.Branch = "HEAD"
	}
	return meta, nil
}

// shortRepoName keeps owner/name from a remote URL when possible.
func shortRepoName(url string) string {
	s := strings.TrimSuffix(strings.TrimSpace(url), ".git")
	if i := strings.Index(s, "github.com/"); i >= 0 {
		return s[i+len("github.com/"):]
	}
	if i := strings.LastIndex(s, ":"); i >= 0 && !strings.Contains(s[i:], "//") {
		return s[i+1:]
	}
	return s
}

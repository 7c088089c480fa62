package git

import (
	"fmt"
	"os"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
)

const failedToGetHeadError = "failed to get HEAD:"

// Repository provides the metadata stamped into report headers when the
// scanned path is a git work tree.
type Repository struct {
	repo *gogit.Repository
	path string
}

func OpenRepository(path string) (*Repository, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	repo, err := gogit.PlainOpen(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository at %s: %w", absPath, err)
	}

	return &Repository{
		repo: repo,
		path: absPath,
	}, nil
}

func IsGitRepository(path string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	gitDir := filepath.Join(absPath, ".git")
	if info, err := os.Stat(gitDir); err == nil {
		return info.IsDir()
	}

	_, err = gogit.PlainOpen(absPath)
	return err == nil
}

func (r *Repository) GetPath() string {
	return r.path
}

func (r *Repository) GetCurrentBranch() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf(failedToGetHeadError+" %w", err)
	}

	if head.Name().IsBranch() {
		return head.Name().Short(), nil
	}

	return "HEAD", nil
}

func (r *Repository) GetCurrentCommit() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf(failedToGetHeadError+" %w", err)
	}

	return head.Hash().String(), nil
}

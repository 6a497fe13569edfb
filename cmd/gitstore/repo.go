package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/odvcencio/gitstore/pkg/repository"
)

// openRepoHere opens the repository rooted at the current directory's
// ".git" subdirectory, falling back to the current directory itself for
// a bare layout.
func openRepoHere() (*repository.Repository, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getwd: %w", err)
	}

	gitDir := filepath.Join(wd, ".git")
	if st, statErr := os.Stat(gitDir); statErr == nil && st.IsDir() {
		return repository.Open(gitDir)
	}
	return repository.Open(wd)
}

package repository

import (
	"fmt"
	"os"
	"path/filepath"
)

// Init lays out a fresh repository on disk and opens it. A non-bare
// repository is created at "<path>/.git"; a bare repository is created
// directly at path. Fails if the target repository directory already
// exists.
func Init(path string, bare bool) (*Repository, error) {
	repoDir := path
	if !bare {
		repoDir = filepath.Join(path, ".git")
	}

	if _, err := os.Stat(repoDir); err == nil {
		return nil, fmt.Errorf("repository: init %s: already exists", repoDir)
	}

	if err := os.MkdirAll(filepath.Join(repoDir, "objects"), 0o755); err != nil {
		return nil, fmt.Errorf("repository: init: mkdir objects: %w", err)
	}
	if err := os.WriteFile(filepath.Join(repoDir, "HEAD"), []byte("ref: refs/heads/main\n"), 0o644); err != nil {
		return nil, fmt.Errorf("repository: init: write HEAD: %w", err)
	}
	if !bare {
		if _, err := os.Stat(filepath.Join(repoDir, "index")); err != nil {
			if err := os.WriteFile(filepath.Join(repoDir, "index"), nil, 0o644); err != nil {
				return nil, fmt.Errorf("repository: init: write index: %w", err)
			}
		}
	}

	return Open(repoDir)
}

package repository

import (
	"fmt"
	"os"
)

// Index is a minimal stand-in for the working-directory index: an
// external collaborator whose own format and mutation API section 1
// places deliberately out of scope. It exists here only so Repository
// can exercise the lazy-open contract in section 4.11.
type Index struct {
	path string
}

// Path returns the on-disk location the index was opened from.
func (idx *Index) Path() string { return idx.path }

func openIndex(path string) (*Index, error) {
	if path == "" {
		return nil, fmt.Errorf("repository: index: no index path configured")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("repository: index: %w", err)
	}
	return &Index{path: path}, nil
}

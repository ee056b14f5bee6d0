package api

import (
	"context"
	"fmt"
	"os"

	"priorelicit/domain/elicit"
	"priorelicit/ports"
)

// FileSource reads entities from a JSON document on disk
type FileSource struct {
	path     string
	dataPath string
}

var _ ports.DatasetSource = (*FileSource)(nil)

// NewFileSource creates a source for the JSON file at path
func NewFileSource(path, dataPath string) *FileSource {
	return &FileSource{path: path, dataPath: dataPath}
}

// LoadDataset implements ports.DatasetSource
func (f *FileSource) LoadDataset(ctx context.Context) (elicit.Dataset, []string, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	body, err := os.ReadFile(f.path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	return ParseDataset(body, f.dataPath)
}

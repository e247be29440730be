package source

import (
	"context"
	"fmt"
	"os"

	"github.com/case-dashboard/internal/domain"
)

// FileSource reads a local CSV export
type FileSource struct {
	path    string
	decoder *Decoder
}

// NewFileSource creates a file source
func NewFileSource(path string, decoder *Decoder) *FileSource {
	return &FileSource{path: path, decoder: decoder}
}

// Name implements domain.DataSource
func (s *FileSource) Name() string {
	return "file:" + s.path
}

// Load reads and decodes the whole file
func (s *FileSource) Load(ctx context.Context) (domain.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return domain.Dataset{}, wrapUnavailable(s.Name(), err)
	}

	f, err := os.Open(s.path)
	if err != nil {
		return domain.Dataset{}, wrapUnavailable(s.Name(), fmt.Errorf("failed to open case file: %w", err))
	}
	defer f.Close()

	ds, err := s.decoder.Decode(f)
	if err != nil {
		return domain.Dataset{}, wrapUnavailable(s.Name(), err)
	}
	return ds, nil
}

package local

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

type Option func(*Repository)

// Repository reads data files from a directory on disk.
type Repository struct {
	basePath string
	logger   *zap.Logger
}

func WithLogger(logger *zap.Logger) Option {
	return func(r *Repository) {
		r.logger = logger
	}
}

func New(basePath string, opts ...Option) *Repository {
	r := &Repository{
		basePath: basePath,
		logger:   zap.NewNop(),
	}

	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repository) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	fullPath := filepath.Join(
		r.basePath,
		name,
	)
	r.logger.Debug("opening file", zap.String("path", fullPath))

	return os.Open(fullPath)
}

package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

type Option func(*Repository)

func WithPrefix(prefix string) Option {
	return func(r *Repository) {
		r.prefix = prefix
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(r *Repository) {
		r.logger = logger
	}
}

// Repository stores artifacts as files under basePath. Writes go to a
// temporary file first and are renamed into place, so a key is only ever
// absent or fully written.
type Repository struct {
	basePath string
	prefix   string
	logger   *zap.Logger
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

func (r *Repository) keyPath(key string) string {
	return filepath.Join(r.basePath, r.prefix, key)
}

func (r *Repository) Write(ctx context.Context, key string, reader io.Reader) error {
	fullPath := r.keyPath(key)
	r.logger.Debug("writing file", zap.String("path", fullPath))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}

	// Temp file lives in the target directory so the rename stays on one
	// filesystem and is atomic.
	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".tmp-"+filepath.Base(fullPath)+"-")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, reader); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return err
	}

	return nil
}

func (r *Repository) Read(ctx context.Context, key string) ([]byte, error) {
	return os.ReadFile(r.keyPath(key))
}

func (r *Repository) List(ctx context.Context, prefix string) ([]string, error) {
	dir := filepath.Join(r.basePath, r.prefix)

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	var keys []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, prefix) {
			keys = append(keys, name)
		}
	}

	sort.Strings(keys)
	return keys, nil
}

func (r *Repository) Exists(ctx context.Context, key string) (bool, error) {
	info, err := os.Stat(r.keyPath(key))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.Size() > 0, nil
}

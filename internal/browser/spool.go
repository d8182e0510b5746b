package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Spool receives printed documents.
type Spool interface {
	Spool(ctx context.Context, name string, pdf []byte) error
}

// DirSpool writes printed documents into a directory. Each file is prefixed
// with a timestamp so repeated prints never overwrite each other.
type DirSpool struct {
	Dir string
	now func() time.Time
}

// NewDirSpool creates the spool directory if needed.
func NewDirSpool(dir string) (*DirSpool, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create spool dir: %w", err)
	}
	return &DirSpool{Dir: dir, now: time.Now}, nil
}

// Spool writes pdf to the spool directory.
func (s *DirSpool) Spool(_ context.Context, name string, pdf []byte) error {
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	path := filepath.Join(s.Dir, fmt.Sprintf("%s-%s", now().UTC().Format("20060102T150405.000"), filepath.Base(name)))
	return os.WriteFile(path, pdf, 0o644)
}

// SpoolFunc adapts a function to Spool.
type SpoolFunc func(ctx context.Context, name string, pdf []byte) error

// Spool calls f.
func (f SpoolFunc) Spool(ctx context.Context, name string, pdf []byte) error {
	return f(ctx, name, pdf)
}

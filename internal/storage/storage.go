package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// Writer persists a serialized aggregate somewhere
type Writer interface {
	Write(ctx context.Context, data []byte) error
	Name() string
}

type fileWriter struct {
	path string
}

// NewFileWriter returns a Writer that replaces the file at path on every write
func NewFileWriter(path string) Writer {
	return &fileWriter{path: path}
}

func (w *fileWriter) Name() string {
	return "file " + w.path
}

func (w *fileWriter) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(w.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", w.path, err)
	}

	log.Infof("💾 Wrote %d bytes to %s", len(data), w.path)
	return nil
}

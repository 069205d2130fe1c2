package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"ShowtimesFeed/internal/domain"
	"ShowtimesFeed/internal/ports"
)

// DefaultPath is where the feed lands when no output path is configured.
const DefaultPath = "data/events.json"

// JSONFileWriter replaces the feed file with each run's document.
type JSONFileWriter struct {
	path string
}

var _ ports.OutputWriter = (*JSONFileWriter)(nil)

// NewJSONFileWriter writes to path, or DefaultPath when empty.
func NewJSONFileWriter(path string) *JSONFileWriter {
	if path == "" {
		path = DefaultPath
	}
	return &JSONFileWriter{path: path}
}

// Path returns the destination file.
func (w *JSONFileWriter) Path() string {
	return w.path
}

// Write serializes doc to a temp file next to the target and renames it into
// place, so readers never observe a partial document. Every failure is a
// *domain.SerializationError.
func (w *JSONFileWriter) Write(ctx context.Context, doc domain.OutputDocument) error {
	if err := ctx.Err(); err != nil {
		return w.fail(err)
	}

	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return w.fail(fmt.Errorf("encode document: %w", err))
	}
	payload = append(payload, '\n')

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return w.fail(fmt.Errorf("create output dir: %w", err))
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(w.path)+".*.tmp")
	if err != nil {
		return w.fail(fmt.Errorf("create temp file: %w", err))
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return w.fail(fmt.Errorf("write temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		return w.fail(fmt.Errorf("close temp file: %w", err))
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return w.fail(fmt.Errorf("chmod temp file: %w", err))
	}
	if err := os.Rename(tmpName, w.path); err != nil {
		return w.fail(fmt.Errorf("replace output: %w", err))
	}
	return nil
}

func (w *JSONFileWriter) fail(err error) error {
	return &domain.SerializationError{Path: w.path, Cause: err}
}

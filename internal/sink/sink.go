// Package sink writes the finished hierarchy to its destination.
package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vjjda/suttaworks/internal/hierarchy"
)

// Sink receives the final hierarchy records.
type Sink interface {
	// Name is a short description of the destination, used in logs.
	Name() string

	// WriteHierarchy stores records in list order.
	WriteHierarchy(ctx context.Context, records []hierarchy.NodeRecord) error
}

// New returns a JSONWriter on stdout for "-" and a JSONFile otherwise.
func New(path string, stdout io.Writer) Sink {
	if path == "-" {
		return &JSONWriter{W: stdout}
	}
	return &JSONFile{Path: path}
}

// JSONFile writes the records as an indented JSON array. The file is
// replaced atomically so readers never see a partial write.
type JSONFile struct {
	Path string
}

func (f *JSONFile) Name() string {
	return f.Path
}

func (f *JSONFile) WriteHierarchy(ctx context.Context, records []hierarchy.NodeRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.Path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := encode(tmp, records); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write hierarchy: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write hierarchy: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to set output permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", f.Path, err)
	}
	return nil
}

// JSONWriter writes the records to an arbitrary writer.
type JSONWriter struct {
	W io.Writer
}

func (w *JSONWriter) Name() string {
	return "stdout"
}

func (w *JSONWriter) WriteHierarchy(ctx context.Context, records []hierarchy.NodeRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return encode(w.W, records)
}

func encode(w io.Writer, records []hierarchy.NodeRecord) error {
	if records == nil {
		records = []hierarchy.NodeRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(records)
}

// Package persist isolates all filesystem interaction for the timeline
// dataset. The on-disk file is only ever replaced by an atomic rename of
// a fully written temporary file, so a concurrent reader observes either
// the previous complete document or the new one, never a partial write.
package persist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jeanpaul/lifeline/internal/schema"
	"github.com/jeanpaul/lifeline/internal/timeline"
)

var (
	// ErrNotExist reports that no dataset file is present at the path.
	ErrNotExist = errors.New("persist: dataset file does not exist")
	// ErrCorrupt reports that a file is present but is not a valid
	// dataset document. Callers treat it the same as ErrNotExist
	// (fallback substitution) but tests can tell the cases apart.
	ErrCorrupt = errors.New("persist: dataset file is corrupt")
)

// Hooks for failure injection in tests.
var (
	createTemp = os.CreateTemp
	renameFile = os.Rename
)

// Gateway performs load and atomic save of the dataset document.
type Gateway struct {
	validator *schema.Validator
}

func NewGateway() *Gateway {
	return &Gateway{validator: schema.NewValidator()}
}

// Load reads and parses the dataset at path. It returns ErrNotExist when
// the file is missing and ErrCorrupt when it cannot be parsed or does not
// match the dataset schema. It never returns a partially decoded dataset.
func (g *Gateway) Load(path string) (timeline.Dataset, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return timeline.Dataset{}, ErrNotExist
	}
	if err != nil {
		return timeline.Dataset{}, fmt.Errorf("persist: read %s: %w", path, err)
	}
	if err := g.validator.Validate(schema.DatasetSchema, b); err != nil {
		return timeline.Dataset{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	var ds timeline.Dataset
	if err := json.Unmarshal(b, &ds); err != nil {
		return timeline.Dataset{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return ds, nil
}

// SaveAtomic serializes the dataset (pretty-printed, non-ASCII text kept
// verbatim) to a temporary file in the destination directory, fsyncs it,
// and renames it over path. On any failure the temporary file is removed
// and the destination is left untouched.
func (g *Gateway) SaveAtomic(path string, ds timeline.Dataset) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ds); err != nil {
		return fmt.Errorf("persist: encode dataset: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("persist: create %s: %w", dir, err)
	}

	tmp, err := createTemp(dir, ".people-*.json.tmp")
	if err != nil {
		return fmt.Errorf("persist: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		cleanup()
		return fmt.Errorf("persist: write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("persist: sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("persist: close temp file: %w", err)
	}
	if err := renameFile(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("persist: atomic rename %s: %w", path, err)
	}
	return nil
}

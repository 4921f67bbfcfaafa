// internal/adapter/storage/file_store.go

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"villrein/internal/domain/track"
)

const jsonExt = ".json"

// FileStore keeps raw documents and derived snapshots as flat JSON files
type FileStore struct {
	dataDir string
	outDir  string
}

// NewFileStore creates a new file store. Raw documents live in dataDir,
// derived snapshots in outDir.
func NewFileStore(dataDir, outDir string) *FileStore {
	return &FileStore{
		dataDir: dataDir,
		outDir:  outDir,
	}
}

// ListYears returns the distinct year prefixes of raw file names in
// directory order
func (s *FileStore) ListYears(ctx context.Context) ([]string, error) {
	names, err := s.rawNames(ctx)
	if err != nil {
		return nil, err
	}
	return yearsOf(names), nil
}

// LoadRaw decodes every raw file whose name contains year
func (s *FileStore) LoadRaw(ctx context.Context, year string) ([]track.RawDocument, error) {
	names, err := s.rawNames(ctx)
	if err != nil {
		return nil, err
	}

	var docs []track.RawDocument
	for _, name := range names {
		if !strings.Contains(name, year) {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.dataDir, name))
		if err != nil {
			return nil, fmt.Errorf("error reading %s: %w", name, err)
		}

		var doc track.RawDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("error decoding %s: %w", name, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// SaveRaw writes doc to <dataDir>/<name>.json
func (s *FileStore) SaveRaw(ctx context.Context, name string, doc track.RawDocument) error {
	return writeJSON(ctx, s.dataDir, name, doc)
}

// SaveSnapshot writes v to <outDir>/<name>.json
func (s *FileStore) SaveSnapshot(ctx context.Context, name string, v interface{}) error {
	return writeJSON(ctx, s.outDir, name, v)
}

func (s *FileStore) rawNames(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("data directory %s: %w", s.dataDir, track.ErrNotFound)
		}
		return nil, fmt.Errorf("error reading data directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.Contains(e.Name(), jsonExt) {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

func writeJSON(ctx context.Context, dir, name string, v interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("error marshaling %s: %w", name, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating %s: %w", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+jsonExt), data, 0o644); err != nil {
		return fmt.Errorf("error writing %s: %w", name, err)
	}
	return nil
}

// yearsOf extracts the distinct "<year>" prefixes of "<year>-<suffix>.json"
// names, keeping first-seen order
func yearsOf(names []string) []string {
	years := []string{}
	seen := make(map[string]bool)
	for _, name := range names {
		year, _, _ := strings.Cut(strings.Replace(name, jsonExt, "", 1), "-")
		if seen[year] {
			continue
		}
		seen[year] = true
		years = append(years, year)
	}
	return years
}

package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// FSStore implements Store using filesystem persistence. Results live in a
// directory structure: <baseDir>/runs/<id>/result.json
//
// Thread-safety: writes go through the temp-file + rename pattern, so no
// locks are needed; concurrent callers are safe.
type FSStore struct {
	baseDir string
}

// NewFSStore creates a filesystem-backed store rooted at baseDir, creating
// the directory if needed.
func NewFSStore(baseDir string) (*FSStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &FSStore{baseDir: baseDir}, nil
}

func (fs *FSStore) runDir(id string) string {
	return filepath.Join(fs.baseDir, "runs", id)
}

func (fs *FSStore) resultPath(id string) string {
	return filepath.Join(fs.runDir(id), "result.json")
}

// SaveResult atomically writes the result to disk.
func (fs *FSStore) SaveResult(result *RunResult) error {
	if result == nil {
		return fmt.Errorf("result cannot be nil")
	}
	if result.ID == "" {
		return fmt.Errorf("result ID cannot be empty")
	}

	dir := fs.runDir(result.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize result: %w", err)
	}

	// Temp file + rename keeps a crashed writer from leaving a torn file.
	tempPath := fs.resultPath(result.ID) + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp result file: %w", err)
	}

	finalPath := fs.resultPath(result.ID)
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename result file: %w", err)
	}

	slog.Debug("Result saved", "run_id", result.ID, "path", finalPath)
	return nil
}

// LoadResult reads a stored result back.
func (fs *FSStore) LoadResult(id string) (*RunResult, error) {
	if id == "" {
		return nil, fmt.Errorf("run ID cannot be empty")
	}

	path := fs.resultPath(id)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &NotFoundError{RunID: id}
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat result file: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read result file: %w", err)
	}

	var result RunResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to deserialize result: %w", err)
	}

	return &result, nil
}

// ListResults returns metadata for every stored result, skipping corrupted
// entries with a warning.
func (fs *FSStore) ListResults() ([]RunInfo, error) {
	runsDir := filepath.Join(fs.baseDir, "runs")

	if _, err := os.Stat(runsDir); os.IsNotExist(err) {
		return []RunInfo{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat runs directory: %w", err)
	}

	entries, err := os.ReadDir(runsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read runs directory: %w", err)
	}

	var infos []RunInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		id := entry.Name()
		if _, err := os.Stat(fs.resultPath(id)); os.IsNotExist(err) {
			continue
		}

		result, err := fs.LoadResult(id)
		if err != nil {
			slog.Warn("Failed to load result for listing", "run_id", id, "error", err)
			continue
		}
		infos = append(infos, result.ToInfo())
	}

	slog.Debug("Listed results", "count", len(infos))
	return infos, nil
}

// DeleteResult removes the run directory and everything in it.
func (fs *FSStore) DeleteResult(id string) error {
	if id == "" {
		return fmt.Errorf("run ID cannot be empty")
	}

	dir := fs.runDir(id)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return &NotFoundError{RunID: id}
	} else if err != nil {
		return fmt.Errorf("failed to stat run directory: %w", err)
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove run directory: %w", err)
	}

	slog.Debug("Result deleted", "run_id", id, "path", dir)
	return nil
}

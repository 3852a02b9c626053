package review

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Cursor records where an interrupted review session stopped. The file
// paths identify the session; NextIndex is the first record not yet
// decided.
type Cursor struct {
	ChangeFile     string `json:"change_file"`
	SuggestionFile string `json:"suggestion_file"`
	NextIndex      int    `json:"next_index"`
}

// CursorStore persists review progress between runs.
type CursorStore interface {
	// Load returns the stored cursor, or nil when none exists.
	Load() (*Cursor, error)
	Save(c *Cursor) error
	Clear() error
}

// FileStore keeps the cursor in a JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the stored cursor. A missing file means no progress and is
// not an error.
func (s *FileStore) Load() (*Cursor, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read review progress %s: %w", s.path, err)
	}

	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse review progress %s: %w", s.path, err)
	}
	return &c, nil
}

// Save writes the cursor, creating parent directories as needed.
func (s *FileStore) Save(c *Cursor) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encode review progress: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create progress directory: %w", err)
		}
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write review progress %s: %w", s.path, err)
	}
	return nil
}

// Clear removes the cursor file. A missing file is fine.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear review progress %s: %w", s.path, err)
	}
	return nil
}

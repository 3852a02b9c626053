// Package workspace manages the output directory where change files,
// suggestion files, and review progress live. Naming conventions: a
// change file is <stem>.txt, its paired suggestion file is
// <stem>_out.txt, and the review cursor is progress.json.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultChangeName is the change file used when no stem is given.
	DefaultChangeName = "changes.txt"

	suggestionSuffix = "_out"
	ledgerExt        = ".txt"
	cursorName       = "progress.json"
)

// Manager owns one workspace directory.
type Manager struct {
	root string
}

// NewManager creates a manager for the workspace at root.
func NewManager(root string) *Manager {
	return &Manager{root: root}
}

// Root returns the workspace directory.
func (m *Manager) Root() string { return m.root }

// EnsureRoot creates the workspace directory if needed.
func (m *Manager) EnsureRoot() error {
	if err := os.MkdirAll(m.root, 0755); err != nil {
		return fmt.Errorf("create workspace %s: %w", m.root, err)
	}
	return nil
}

// ChangePath returns the change file path for a stem.
func (m *Manager) ChangePath(stem string) string {
	return filepath.Join(m.root, stem+ledgerExt)
}

// SuggestionPath returns the suggestion file path for a stem.
func (m *Manager) SuggestionPath(stem string) string {
	return filepath.Join(m.root, stem+suggestionSuffix+ledgerExt)
}

// CursorPath returns where review progress is persisted.
func (m *Manager) CursorPath() string {
	return filepath.Join(m.root, cursorName)
}

// DefaultChangePath returns the path of the shared change file used
// when no document-specific stem applies.
func (m *Manager) DefaultChangePath() string {
	return filepath.Join(m.root, DefaultChangeName)
}

// List returns the ledger files in the workspace, sorted by name.
func (m *Manager) List() ([]string, error) {
	entries, err := os.ReadDir(m.root)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list workspace %s: %w", m.root, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ledgerExt) {
			continue
		}
		paths = append(paths, filepath.Join(m.root, entry.Name()))
	}
	return paths, nil
}

// Clear removes every entry in the workspace and returns how many were
// removed. Cleanup is best effort; entries that cannot be removed are
// skipped. The review cursor dies with the workspace.
func (m *Manager) Clear() (int, error) {
	entries, err := os.ReadDir(m.root)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("clear workspace %s: %w", m.root, err)
	}

	removed := 0
	for _, entry := range entries {
		path := filepath.Join(m.root, entry.Name())
		if entry.IsDir() {
			err = os.RemoveAll(path)
		} else {
			err = os.Remove(path)
		}
		if err == nil {
			removed++
		}
	}
	return removed, nil
}

// SuggestionFor derives the paired suggestion file path for a change
// file, keeping its directory and extension.
func SuggestionFor(changePath string) string {
	ext := filepath.Ext(changePath)
	if ext == "" {
		ext = ledgerExt
	}
	return filepath.Join(filepath.Dir(changePath), Stem(changePath)+suggestionSuffix+ext)
}

// Stem returns a path's base name without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// IsSuggestionName reports whether a file name follows the _out
// suggestion convention.
func IsSuggestionName(name string) bool {
	return strings.HasSuffix(Stem(name), suggestionSuffix)
}

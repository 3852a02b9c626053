package workspace_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redlinehq/redline/workspace"
)

func TestManagerPaths(t *testing.T) {
	m := workspace.NewManager("/work/output")

	assert.Equal(t, "/work/output", m.Root())
	assert.Equal(t, filepath.Join("/work/output", "changes.txt"), m.ChangePath("changes"))
	assert.Equal(t, filepath.Join("/work/output", "post_out.txt"), m.SuggestionPath("post"))
	assert.Equal(t, filepath.Join("/work/output", "progress.json"), m.CursorPath())
	assert.Equal(t, filepath.Join("/work/output", "changes.txt"), m.DefaultChangePath())
}

func TestSuggestionFor(t *testing.T) {
	cases := []struct {
		change string
		want   string
	}{
		{filepath.Join("out", "changes.txt"), filepath.Join("out", "changes_out.txt")},
		{"post.txt", "post_out.txt"},
		{"stemonly", "stemonly_out.txt"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, workspace.SuggestionFor(tc.change))
	}
}

func TestStem(t *testing.T) {
	assert.Equal(t, "changes", workspace.Stem(filepath.Join("a", "b", "changes.txt")))
	assert.Equal(t, "post", workspace.Stem("post.md"))
	assert.Equal(t, "raw", workspace.Stem("raw"))
}

func TestIsSuggestionName(t *testing.T) {
	assert.True(t, workspace.IsSuggestionName("changes_out.txt"))
	assert.True(t, workspace.IsSuggestionName("深度学习笔记_out.txt"))
	assert.False(t, workspace.IsSuggestionName("changes.txt"))
	assert.False(t, workspace.IsSuggestionName("output.txt"))
}

func TestEnsureRootAndList(t *testing.T) {
	root := filepath.Join(t.TempDir(), "output")
	m := workspace.NewManager(root)

	paths, err := m.List()
	require.NoError(t, err)
	assert.Empty(t, paths, "missing workspace lists as empty")

	require.NoError(t, m.EnsureRoot())
	require.NoError(t, m.EnsureRoot(), "ensure is idempotent")

	require.NoError(t, os.WriteFile(m.ChangePath("changes"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(m.SuggestionPath("changes"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.md"), []byte("x"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "nested.txt"), 0755))

	paths, err = m.List()
	require.NoError(t, err)
	assert.Equal(t, []string{
		m.ChangePath("changes"),
		m.SuggestionPath("changes"),
	}, paths, "only ledger files list, sorted by name")
}

func TestClearRemovesEverything(t *testing.T) {
	root := filepath.Join(t.TempDir(), "output")
	m := workspace.NewManager(root)
	require.NoError(t, m.EnsureRoot())

	require.NoError(t, os.WriteFile(m.ChangePath("changes"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(m.CursorPath(), []byte("{}"), 0644))
	nested := filepath.Join(root, "old")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "a.txt"), []byte("x"), 0644))

	removed, err := m.Clear()
	require.NoError(t, err)
	assert.Equal(t, 3, removed, "top-level entries count, not files inside them")

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)

	removed, err = m.Clear()
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestClearMissingRoot(t *testing.T) {
	m := workspace.NewManager(filepath.Join(t.TempDir(), "nowhere"))

	removed, err := m.Clear()
	require.NoError(t, err)
	assert.Zero(t, removed)
}

package review_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redlinehq/redline/review"
)

func TestFileStore_RoundTrip(t *testing.T) {
	store := review.NewFileStore(filepath.Join(t.TempDir(), "state", "progress.json"))

	saved := &review.Cursor{
		ChangeFile:     "/work/changes.txt",
		SuggestionFile: "/work/changes_out.txt",
		NextIndex:      7,
	}
	require.NoError(t, store.Save(saved))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
}

func TestFileStore_Load_Missing(t *testing.T) {
	store := review.NewFileStore(filepath.Join(t.TempDir(), "progress.json"))

	cursor, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, cursor)
}

func TestFileStore_Load_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0644))

	store := review.NewFileStore(path)
	_, err := store.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse review progress")
}

func TestFileStore_Clear_Idempotent(t *testing.T) {
	store := review.NewFileStore(filepath.Join(t.TempDir(), "progress.json"))

	require.NoError(t, store.Clear(), "clearing absent progress is fine")

	require.NoError(t, store.Save(&review.Cursor{NextIndex: 1}))
	require.NoError(t, store.Clear())

	cursor, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, cursor)

	require.NoError(t, store.Clear())
}

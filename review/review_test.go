package review_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redlinehq/redline/ledger"
	"github.com/redlinehq/redline/review"
)

// scriptedDecider replays a fixed list of decisions and records every
// item it was shown.
type scriptedDecider struct {
	decisions []review.Decision
	seen      []review.Item
	err       error
}

func (s *scriptedDecider) decide(_ context.Context, item review.Item) (review.Decision, error) {
	s.seen = append(s.seen, item)
	if s.err != nil {
		return review.Decision{}, s.err
	}
	if len(s.decisions) == 0 {
		return review.Skip(), nil
	}
	d := s.decisions[0]
	s.decisions = s.decisions[1:]
	return d, nil
}

func record(ordinal int, source, text, suggested string) ledger.ReviewRecord {
	tag := ledger.Tag(ordinal, source)
	return ledger.ReviewRecord{
		Tag:  tag,
		Text: text,
		Suggestion: ledger.SuggestionRecord{
			Tag:       tag,
			Original:  text,
			Category:  "错别字",
			Suggested: suggested,
			Raw:       suggested,
		},
	}
}

func writeDoc(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func readDoc(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func newSession(root string, records ...ledger.ReviewRecord) *review.Session {
	return &review.Session{
		ChangePath:     filepath.Join(root, "changes.txt"),
		SuggestionPath: filepath.Join(root, "changes_out.txt"),
		Records:        records,
	}
}

func newReconciler(root string, decider *scriptedDecider) (*review.Reconciler, *review.FileStore) {
	store := review.NewFileStore(filepath.Join(root, ".redline", "progress.json"))
	resolver := review.NewGlobResolver(root, nil)
	return review.NewReconciler(resolver, store, decider.decide), store
}

func TestReconciler_Run_AcceptReplacesFirstOccurrence(t *testing.T) {
	root := t.TempDir()
	doc := writeDoc(t, root, "post.md", "前言。我跑的很快。中间。我跑的很快。结尾。")

	decider := &scriptedDecider{decisions: []review.Decision{review.Accept()}}
	rec, store := newReconciler(root, decider)

	outcome, err := rec.Run(context.Background(), newSession(root,
		record(1, "post.md", "我跑的很快。", "我跑得很快。")))
	require.NoError(t, err)

	assert.True(t, outcome.Completed)
	assert.Equal(t, 1, outcome.Applied)
	assert.Empty(t, outcome.Failed)
	assert.Equal(t, "前言。我跑得很快。中间。我跑的很快。结尾。", readDoc(t, doc))

	cursor, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, cursor, "completed run should clear progress")
}

func TestReconciler_Run_EditAppliesReviewerText(t *testing.T) {
	root := t.TempDir()
	doc := writeDoc(t, root, "post.md", "我跑的很快。")

	decider := &scriptedDecider{decisions: []review.Decision{review.Edit("我跑得飞快。")}}
	rec, _ := newReconciler(root, decider)

	outcome, err := rec.Run(context.Background(), newSession(root,
		record(1, "post.md", "我跑的很快。", "我跑得很快。")))
	require.NoError(t, err)

	assert.Equal(t, 1, outcome.Applied)
	assert.Equal(t, "我跑得飞快。", readDoc(t, doc))
}

func TestReconciler_Run_SkipLeavesDocument(t *testing.T) {
	root := t.TempDir()
	doc := writeDoc(t, root, "post.md", "我跑的很快。")

	decider := &scriptedDecider{decisions: []review.Decision{review.Skip()}}
	rec, _ := newReconciler(root, decider)

	outcome, err := rec.Run(context.Background(), newSession(root,
		record(1, "post.md", "我跑的很快。", "我跑得很快。")))
	require.NoError(t, err)

	assert.True(t, outcome.Completed)
	assert.Equal(t, 1, outcome.Skipped)
	assert.Zero(t, outcome.Applied)
	assert.Equal(t, "我跑的很快。", readDoc(t, doc))
}

func TestReconciler_Run_QuitPersistsAndResumes(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "post.md", "第一句。第二句。第三句。")

	session := newSession(root,
		record(1, "post.md", "第一句。", "第1句。"),
		record(2, "post.md", "第二句。", "第2句。"),
		record(3, "post.md", "第三句。", "第3句。"))

	first := &scriptedDecider{decisions: []review.Decision{review.Accept(), review.Quit()}}
	rec, store := newReconciler(root, first)

	outcome, err := rec.Run(context.Background(), session)
	require.NoError(t, err)
	assert.False(t, outcome.Completed)
	assert.Equal(t, 1, outcome.NextIndex)
	assert.Equal(t, 1, outcome.Applied)

	cursor, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, cursor)
	assert.Equal(t, 1, cursor.NextIndex)

	second := &scriptedDecider{decisions: []review.Decision{review.Accept(), review.Accept()}}
	resolver := review.NewGlobResolver(root, nil)
	resumed := review.NewReconciler(resolver, store, second.decide)

	outcome, err = resumed.Run(context.Background(), session)
	require.NoError(t, err)
	assert.True(t, outcome.Completed)
	assert.Equal(t, 2, outcome.Applied)

	require.NotEmpty(t, second.seen)
	assert.Equal(t, 1, second.seen[0].Index, "resumed run should start at the quit record")

	assert.Equal(t, "第1句。第2句。第3句。", readDoc(t, filepath.Join(root, "post.md")))

	cursor, err = store.Load()
	require.NoError(t, err)
	assert.Nil(t, cursor)
}

func TestReconciler_Run_CancelledContextActsLikeQuit(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "post.md", "我跑的很快。")

	decider := &scriptedDecider{}
	rec, store := newReconciler(root, decider)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome, err := rec.Run(ctx, newSession(root,
		record(1, "post.md", "我跑的很快。", "我跑得很快。")))
	require.NoError(t, err)

	assert.False(t, outcome.Completed)
	assert.Equal(t, 0, outcome.NextIndex)
	assert.Empty(t, decider.seen, "no record should be offered after cancellation")

	cursor, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, cursor)
	assert.Equal(t, 0, cursor.NextIndex)
}

func TestReconciler_Run_FailedRecordsAdvance(t *testing.T) {
	root := t.TempDir()
	doc := writeDoc(t, root, "post.md", "我跑的很快。")

	malformed := record(1, "post.md", "第一句。", "第1句。")
	malformed.Tag = "not-a-label"

	session := newSession(root,
		malformed,
		record(2, "missing.md", "第二句。", "第2句。"),
		record(3, "post.md", "我跑的很快。", "我跑得很快。"))

	decider := &scriptedDecider{decisions: []review.Decision{review.Accept()}}
	rec, store := newReconciler(root, decider)

	outcome, err := rec.Run(context.Background(), session)
	require.NoError(t, err)

	assert.True(t, outcome.Completed)
	assert.Equal(t, 1, outcome.Applied)
	require.Len(t, outcome.Failed, 2)
	assert.Equal(t, review.FailurePathUnresolvable, outcome.Failed[0].Reason)
	assert.Equal(t, "not-a-label", outcome.Failed[0].Record.Tag)
	assert.Equal(t, review.FailurePathUnresolvable, outcome.Failed[1].Reason)

	require.Len(t, decider.seen, 1, "failed records are never offered for decision")
	assert.Equal(t, 2, decider.seen[0].Index)
	assert.Equal(t, "我跑得很快。", readDoc(t, doc))

	cursor, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, cursor)
}

func TestReconciler_Run_StaleSentenceFails(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "post.md", "这句话已经被改写了。")

	decider := &scriptedDecider{}
	rec, _ := newReconciler(root, decider)

	outcome, err := rec.Run(context.Background(), newSession(root,
		record(1, "post.md", "我跑的很快。", "我跑得很快。")))
	require.NoError(t, err)

	assert.True(t, outcome.Completed)
	require.Len(t, outcome.Failed, 1)
	assert.Equal(t, review.FailureOriginalNotLive, outcome.Failed[0].Reason)
	assert.Empty(t, decider.seen)
}

func TestReconciler_Run_ForeignCursorRestartsFromZero(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "post.md", "第一句。第二句。")

	decider := &scriptedDecider{}
	rec, store := newReconciler(root, decider)

	require.NoError(t, store.Save(&review.Cursor{
		ChangeFile:     "/elsewhere/changes.txt",
		SuggestionFile: "/elsewhere/changes_out.txt",
		NextIndex:      1,
	}))

	outcome, err := rec.Run(context.Background(), newSession(root,
		record(1, "post.md", "第一句。", "第1句。"),
		record(2, "post.md", "第二句。", "第2句。")))
	require.NoError(t, err)

	assert.True(t, outcome.Completed)
	require.Len(t, decider.seen, 2)
	assert.Equal(t, 0, decider.seen[0].Index)
}

func TestReconciler_Run_OutOfRangeCursorRestartsFromZero(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "post.md", "第一句。")

	session := newSession(root, record(1, "post.md", "第一句。", "第1句。"))

	decider := &scriptedDecider{}
	rec, store := newReconciler(root, decider)

	changeAbs, err := filepath.Abs(session.ChangePath)
	require.NoError(t, err)
	suggestionAbs, err := filepath.Abs(session.SuggestionPath)
	require.NoError(t, err)
	require.NoError(t, store.Save(&review.Cursor{
		ChangeFile:     changeAbs,
		SuggestionFile: suggestionAbs,
		NextIndex:      1,
	}))

	outcome, err := rec.Run(context.Background(), session)
	require.NoError(t, err)

	assert.True(t, outcome.Completed)
	require.Len(t, decider.seen, 1)
	assert.Equal(t, 0, decider.seen[0].Index)
}

func TestReconciler_Run_DeciderErrorKeepsCursor(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "post.md", "我跑的很快。")

	decider := &scriptedDecider{err: errors.New("terminal gone")}
	rec, store := newReconciler(root, decider)

	outcome, err := rec.Run(context.Background(), newSession(root,
		record(1, "post.md", "我跑的很快。", "我跑得很快。")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "review prompt")
	assert.False(t, outcome.Completed)

	cursor, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, cursor)
	assert.Equal(t, 0, cursor.NextIndex)
}

func TestReconciler_Run_WriteFailureIsRecordedNotFatal(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "post.md", "我跑的很快。")

	sabotage := func(_ context.Context, item review.Item) (review.Decision, error) {
		// Swap the document for a directory so the rewrite fails.
		require.NoError(t, os.Remove(item.Path))
		require.NoError(t, os.Mkdir(item.Path, 0755))
		return review.Accept(), nil
	}

	store := review.NewFileStore(filepath.Join(root, ".redline", "progress.json"))
	resolver := review.NewGlobResolver(root, nil)
	rec := review.NewReconciler(resolver, store, sabotage)

	outcome, err := rec.Run(context.Background(), newSession(root,
		record(1, "post.md", "我跑的很快。", "我跑得很快。")))
	require.NoError(t, err)

	assert.True(t, outcome.Completed)
	assert.Zero(t, outcome.Applied)
	require.Len(t, outcome.Failed, 1)
	assert.Equal(t, review.FailureWriteFailed, outcome.Failed[0].Reason)
}

func TestLoadSession_JoinsOnLabels(t *testing.T) {
	root := t.TempDir()

	changePath := filepath.Join(root, "changes.txt")
	require.NoError(t, ledger.WriteFile(changePath, []ledger.ChangeRecord{
		{Tag: ledger.Tag(1, "post.md"), Text: "第一句。"},
		{Tag: ledger.Tag(2, "post.md"), Text: "第二句。"},
		{Tag: ledger.Tag(3, "post.md"), Text: "第三句。"},
	}))

	suggestionPath := filepath.Join(root, "changes_out.txt")
	suggestions := ledger.Tag(3, "post.md") + ` {"original_text":"第三句。","error_type":"错别字","description":"测试","checked_text":"第3句。"}` + "\n" +
		ledger.Tag(1, "post.md") + ` {"original_text":"第一句。","error_type":"","description":"","checked_text":"第一句。"}` + "\n"
	require.NoError(t, os.WriteFile(suggestionPath, []byte(suggestions), 0644))

	session, err := review.LoadSession(changePath, suggestionPath)
	require.NoError(t, err)

	require.Len(t, session.Records, 2, "only labels present in both files join")
	assert.Equal(t, ledger.Tag(1, "post.md"), session.Records[0].Tag)
	assert.Equal(t, ledger.Tag(3, "post.md"), session.Records[1].Tag)
	assert.Equal(t, "第3句。", session.Records[1].Suggestion.Suggested)
}

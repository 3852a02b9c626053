// Package review drives the reconciliation of suggestions against live
// documents. A session walks the records joined from a change file and
// its suggestion file, asks a Decider what to do with each, and applies
// accepted replacements in place. Progress is persisted after every
// transition so an interrupted session resumes at the same record.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/redlinehq/redline/ledger"
)

// DecisionKind enumerates the reviewer's choices for one record.
type DecisionKind int

const (
	// DecisionSkip leaves the document untouched and moves on.
	DecisionSkip DecisionKind = iota
	// DecisionAccept applies the suggestion's proposal.
	DecisionAccept
	// DecisionEdit applies reviewer-supplied replacement text.
	DecisionEdit
	// DecisionQuit ends the run, keeping the cursor on this record.
	DecisionQuit
)

// Decision is what a Decider returns for one record.
type Decision struct {
	Kind DecisionKind
	Text string // replacement text for DecisionEdit
}

// Skip leaves the current record untouched.
func Skip() Decision { return Decision{Kind: DecisionSkip} }

// Accept applies the record's suggested proposal.
func Accept() Decision { return Decision{Kind: DecisionAccept} }

// Edit applies text in place of the record's original sentence.
func Edit(text string) Decision { return Decision{Kind: DecisionEdit, Text: text} }

// Quit ends the run so it can be resumed later at the same record.
func Quit() Decision { return Decision{Kind: DecisionQuit} }

// Item is one record presented to the reviewer.
type Item struct {
	Index  int // zero-based position in the session
	Total  int
	Path   string // resolved live document
	Record ledger.ReviewRecord
}

// Decider presents one record and returns the reviewer's decision.
type Decider func(ctx context.Context, item Item) (Decision, error)

// FailureReason classifies why a record could not be reconciled.
type FailureReason string

const (
	// FailurePathUnresolvable covers malformed labels, unknown source
	// documents, and unreadable files.
	FailurePathUnresolvable FailureReason = "path-unresolvable"
	// FailureOriginalNotLive means the document no longer contains the
	// extracted sentence.
	FailureOriginalNotLive FailureReason = "original-not-live"
	// FailureWriteFailed means the replacement could not be written.
	FailureWriteFailed FailureReason = "write-failed"
)

// FailedRecord retains a record that needs manual handling, keeping the
// label, sentence, and suggestion intact for reporting.
type FailedRecord struct {
	Record ledger.ReviewRecord
	Reason FailureReason
	Err    error
}

// Outcome summarizes one run of a session.
type Outcome struct {
	Completed bool // every record was decided or failed
	NextIndex int  // resume position when not completed
	Applied   int
	Skipped   int
	Failed    []FailedRecord
}

// Session is a change file joined with its suggestion file. Records
// holds only labels present in both, in change-file order.
type Session struct {
	ChangePath     string
	SuggestionPath string
	Records        []ledger.ReviewRecord
}

// LoadSession joins a change file with its suggestion file. An empty
// record set is not an error; it means nothing is ready for review.
func LoadSession(changePath, suggestionPath string) (*Session, error) {
	changes, err := ledger.LoadChanges(changePath)
	if err != nil {
		return nil, err
	}
	suggestions, err := ledger.LoadSuggestions(suggestionPath)
	if err != nil {
		return nil, err
	}
	return &Session{
		ChangePath:     changePath,
		SuggestionPath: suggestionPath,
		Records:        ledger.Join(changes, suggestions),
	}, nil
}

// Reconciler walks review records, mutating live documents according to
// reviewer decisions.
type Reconciler struct {
	resolver Resolver
	store    CursorStore
	decide   Decider
	logger   *slog.Logger
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithLogger sets the logger used for progress and failure reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconciler) { r.logger = logger }
}

// NewReconciler wires a resolver, cursor store, and decider together.
func NewReconciler(resolver Resolver, store CursorStore, decide Decider, opts ...Option) *Reconciler {
	r := &Reconciler{
		resolver: resolver,
		store:    store,
		decide:   decide,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run reconciles the session from wherever the stored cursor points. It
// returns with Completed=false and the cursor persisted when the
// reviewer quits or ctx is cancelled; running again resumes at the same
// record. Per-record failures are collected in the outcome and never
// stop the run. On completion the cursor is cleared.
func (r *Reconciler) Run(ctx context.Context, session *Session) (Outcome, error) {
	changeAbs, err := filepath.Abs(session.ChangePath)
	if err != nil {
		return Outcome{}, fmt.Errorf("resolve change path: %w", err)
	}
	suggestionAbs, err := filepath.Abs(session.SuggestionPath)
	if err != nil {
		return Outcome{}, fmt.Errorf("resolve suggestion path: %w", err)
	}

	total := len(session.Records)
	start := r.resume(changeAbs, suggestionAbs, total)
	cursor := Cursor{ChangeFile: changeAbs, SuggestionFile: suggestionAbs}

	persist := func(next int) error {
		cursor.NextIndex = next
		if err := r.store.Save(&cursor); err != nil {
			return fmt.Errorf("persist review progress: %w", err)
		}
		return nil
	}

	if err := persist(start); err != nil {
		return Outcome{}, err
	}

	outcome := Outcome{NextIndex: start}
	for i := start; i < total; i++ {
		outcome.NextIndex = i

		if ctx.Err() != nil {
			// Treated like quit so the session resumes here.
			r.logger.Info("review interrupted", "index", i, "total", total)
			return outcome, persist(i)
		}

		rec := session.Records[i]

		path, reason, cause := r.locate(rec)
		if reason != "" {
			outcome.Failed = append(outcome.Failed, FailedRecord{Record: rec, Reason: reason, Err: cause})
			r.logger.Warn("record needs manual handling",
				"tag", rec.Tag,
				"reason", string(reason),
				"error", cause)
			if err := persist(i + 1); err != nil {
				return outcome, err
			}
			continue
		}

		decision, derr := r.decide(ctx, Item{Index: i, Total: total, Path: path, Record: rec})
		if derr != nil {
			if perr := persist(i); perr != nil {
				return outcome, perr
			}
			return outcome, fmt.Errorf("review prompt: %w", derr)
		}

		switch decision.Kind {
		case DecisionQuit:
			r.logger.Info("review paused", "index", i, "total", total)
			return outcome, persist(i)

		case DecisionSkip:
			outcome.Skipped++

		case DecisionAccept, DecisionEdit:
			replacement := decision.Text
			if decision.Kind == DecisionAccept {
				replacement = rec.Suggestion.Proposal()
			}
			if err := replaceOnce(path, rec.Text, replacement); err != nil {
				outcome.Failed = append(outcome.Failed, FailedRecord{Record: rec, Reason: FailureWriteFailed, Err: err})
				r.logger.Warn("record needs manual handling",
					"tag", rec.Tag,
					"reason", string(FailureWriteFailed),
					"error", err)
			} else {
				outcome.Applied++
			}
		}

		if err := persist(i + 1); err != nil {
			return outcome, err
		}
	}

	outcome.Completed = true
	outcome.NextIndex = total
	if err := r.store.Clear(); err != nil {
		r.logger.Warn("could not clear review progress", "error", err)
	}
	return outcome, nil
}

// resume validates the stored cursor against this session. Anything
// stale, foreign, or out of range restarts from the beginning.
func (r *Reconciler) resume(changeAbs, suggestionAbs string, total int) int {
	stored, err := r.store.Load()
	if err != nil {
		r.logger.Warn("stored progress unreadable, starting over", "error", err)
		return 0
	}
	if stored == nil {
		return 0
	}
	if stored.ChangeFile != changeAbs || stored.SuggestionFile != suggestionAbs {
		r.logger.Info("stored progress belongs to another session, starting over")
		return 0
	}
	if stored.NextIndex < 0 || stored.NextIndex >= total {
		r.logger.Info("stored progress out of range, starting over",
			"index", stored.NextIndex,
			"total", total)
		return 0
	}
	if stored.NextIndex > 0 {
		r.logger.Info("resuming review", "index", stored.NextIndex, "total", total)
	}
	return stored.NextIndex
}

// locate resolves a record's source document and verifies the extracted
// sentence is still present in it. An empty reason means success.
func (r *Reconciler) locate(rec ledger.ReviewRecord) (path string, reason FailureReason, err error) {
	_, sourceID, err := ledger.ParseTag(rec.Tag)
	if err != nil {
		return "", FailurePathUnresolvable, err
	}

	path, err = r.resolver.Resolve(sourceID)
	if err != nil {
		return "", FailurePathUnresolvable, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", FailurePathUnresolvable, err
	}

	if !strings.Contains(string(data), rec.Text) {
		return "", FailureOriginalNotLive, fmt.Errorf("sentence no longer present in %s", path)
	}
	return path, "", nil
}

// replaceOnce swaps the first occurrence of old for repl and rewrites
// the whole document. The read happens here, not at verification time,
// so an edit that landed in between makes the record fail instead of
// being overwritten.
func replaceOnce(path, old, repl string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reread %s: %w", path, err)
	}
	content := string(data)
	if !strings.Contains(content, old) {
		return fmt.Errorf("sentence vanished from %s before the write", path)
	}
	updated := strings.Replace(content, old, repl, 1)
	if err := os.WriteFile(path, []byte(updated), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/redlinehq/redline/review"
	"github.com/redlinehq/redline/workspace"
)

func reviewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "review [change-file [suggestion-file]]",
		Short: "Apply, edit, or skip each suggestion against the live documents",
		Long: `Review joins a change file with its suggestion file and walks through
the records one at a time. For each one it shows the original sentence
and the proposed correction, then waits for a decision:

  a        apply the suggestion
  Enter    skip this record
  q        stop reviewing
  <text>   apply your own replacement instead

Accepted text replaces the first occurrence of the original sentence
in the live document. Progress is saved after every decision; quitting
or Ctrl-C leaves a session that the next review resumes. Records whose
document or sentence can no longer be found are reported at the end
for manual handling.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			changePath := a.ws.DefaultChangePath()
			if len(args) >= 1 {
				changePath = args[0]
			}
			suggestionPath := workspace.SuggestionFor(changePath)
			if len(args) == 2 {
				suggestionPath = args[1]
			}
			return runReview(a, changePath, suggestionPath)
		},
	}
}

func runReview(a *app, changePath, suggestionPath string) error {
	session, err := review.LoadSession(changePath, suggestionPath)
	if err != nil {
		return err
	}
	if len(session.Records) == 0 {
		fmt.Println("Nothing to review.")
		return nil
	}

	ctx, cancel := signalContext()
	defer cancel()

	stdin := bufio.NewScanner(os.Stdin)
	resolver := review.NewGlobResolver(a.root, chooseMatch(stdin))
	store := review.NewFileStore(a.ws.CursorPath())
	reconciler := review.NewReconciler(resolver, store, promptDecision(stdin))

	outcome, err := reconciler.Run(ctx, session)
	if err != nil {
		return err
	}

	fmt.Printf("\nApplied %d, skipped %d, failed %d of %d records\n",
		outcome.Applied, outcome.Skipped, len(outcome.Failed), len(session.Records))
	reportFailed(outcome.Failed)

	if !outcome.Completed {
		fmt.Printf("Progress saved. Run review again to continue at record %d.\n", outcome.NextIndex+1)
		return nil
	}

	removeConsumedPair(a, changePath, suggestionPath)
	fmt.Println("Review complete.")
	return nil
}

// promptDecision returns a Decider that shows each record on stdout
// and reads the decision from stdin. EOF on stdin ends the session
// like q, keeping the saved position.
func promptDecision(stdin *bufio.Scanner) review.Decider {
	return func(ctx context.Context, item review.Item) (review.Decision, error) {
		fmt.Printf("\n[%d/%d] %s\n", item.Index+1, item.Total, item.Path)
		fmt.Printf("  original:   %s\n", item.Record.Text)

		s := item.Record.Suggestion
		if s.Suggested != "" {
			if s.Category != "" {
				fmt.Printf("  finding:    %s\n", s.Category)
			}
			if s.Explanation != "" {
				fmt.Printf("  because:    %s\n", s.Explanation)
			}
			fmt.Printf("  suggestion: %s\n", s.Suggested)
		} else {
			fmt.Printf("  suggestion: %s\n", s.Raw)
		}

		fmt.Print("a=apply, Enter=skip, q=quit, or type a replacement > ")
		if !stdin.Scan() {
			if err := stdin.Err(); err != nil {
				return review.Decision{}, fmt.Errorf("read decision: %w", err)
			}
			return review.Quit(), nil
		}

		input := strings.TrimSpace(stdin.Text())
		switch strings.ToLower(input) {
		case "q":
			return review.Quit(), nil
		case "":
			return review.Skip(), nil
		case "a":
			return review.Accept(), nil
		}
		return review.Edit(input), nil
	}
}

// chooseMatch resolves an ambiguous document name by asking the
// reviewer to pick one. Declining marks the records unresolvable, so
// they land in the manual-handling report instead of a wrong file.
func chooseMatch(stdin *bufio.Scanner) review.Chooser {
	return func(sourceID string, matches []string) (string, error) {
		fmt.Printf("\n%q names %d documents:\n", sourceID, len(matches))
		for i, m := range matches {
			fmt.Printf("  %d) %s\n", i+1, m)
		}
		fmt.Print("Pick a number (Enter to leave unresolved) > ")

		if !stdin.Scan() {
			return "", fmt.Errorf("no document chosen")
		}
		n, err := strconv.Atoi(strings.TrimSpace(stdin.Text()))
		if err != nil || n < 1 || n > len(matches) {
			return "", fmt.Errorf("no document chosen")
		}
		return matches[n-1], nil
	}
}

func reportFailed(failed []review.FailedRecord) {
	if len(failed) == 0 {
		return
	}
	fmt.Printf("\n%d records need manual handling:\n", len(failed))
	for _, f := range failed {
		fmt.Printf("  %s %s\n", f.Record.Tag, f.Record.Text)
		fmt.Printf("    reason: %s", f.Reason)
		if f.Err != nil {
			fmt.Printf(" (%v)", f.Err)
		}
		fmt.Println()
	}
}

// removeConsumedPair deletes a finished change/suggestion pair, but
// only when both files live directly in the workspace. Files the user
// pointed at elsewhere are theirs to keep.
func removeConsumedPair(a *app, changePath, suggestionPath string) {
	wsRoot, err := filepath.Abs(a.ws.Root())
	if err != nil {
		return
	}
	pair := []string{changePath, suggestionPath}
	for _, path := range pair {
		abs, err := filepath.Abs(path)
		if err != nil || filepath.Dir(abs) != wsRoot {
			return
		}
	}
	for _, path := range pair {
		if err := os.Remove(path); err != nil {
			slog.Warn("could not remove reviewed file", "path", path, "error", err)
		}
	}
	fmt.Println("Reviewed change and suggestion files removed.")
}

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/redlinehq/redline/gitdiff"
)

func commitCmd(a *app) *cobra.Command {
	var message string
	var yes bool

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Stage and commit everything under the documents root",
		Long: `Commit shows the pending diff summary for the documents root, then
stages and commits all of it. If the root is not a git repository yet
it offers to initialize one. Commit after a review, then "redline
changes" will pick up only the edits that come after.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommit(a, message, yes)
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "Commit message (default: timestamped)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Answer yes to all prompts")
	return cmd
}

func runCommit(a *app, message string, yes bool) error {
	ctx, cancel := signalContext()
	defer cancel()

	stdin := bufio.NewScanner(os.Stdin)
	lister := gitdiff.NewLister(a.root)

	if !lister.IsRepo() {
		if !yes && !confirm(stdin, fmt.Sprintf("%s is not a git repository. Initialize one?", a.root)) {
			fmt.Println("Cancelled.")
			return nil
		}
		if err := lister.Init(ctx); err != nil {
			return err
		}
		fmt.Println("Repository initialized.")
	}

	hasChanges, err := lister.HasChanges(ctx)
	if err != nil {
		return err
	}
	if !hasChanges {
		fmt.Println("Working tree clean; nothing to commit.")
		return nil
	}

	stat, err := lister.DiffStat(ctx)
	if err != nil {
		return err
	}
	if stat != "" {
		fmt.Println(stat)
	}

	if !yes && !confirm(stdin, "Commit these changes?") {
		fmt.Println("Cancelled.")
		return nil
	}

	if err := lister.AddAll(ctx); err != nil {
		return err
	}
	used, err := lister.Commit(ctx, message)
	if err != nil {
		return err
	}
	fmt.Printf("Committed: %q\n", used)
	return nil
}

func confirm(stdin *bufio.Scanner, question string) bool {
	fmt.Printf("%s (y/n): ", question)
	if !stdin.Scan() {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(stdin.Text()), "y")
}

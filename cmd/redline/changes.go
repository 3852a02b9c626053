package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/redlinehq/redline/gitdiff"
	"github.com/redlinehq/redline/ledger"
)

func changesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "changes",
		Short: "Collect lines changed since the last commit into a change file",
		Long: `Changes lists every added line in the documents root, both the diff
against HEAD and the content of untracked files, and writes them as
the shared change file. Use it after editing to check only what is
new instead of re-checking whole documents.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChanges(a)
		},
	}
}

func runChanges(a *app) error {
	ctx, cancel := signalContext()
	defer cancel()

	lister := gitdiff.NewLister(a.root)
	if !lister.IsRepo() {
		return fmt.Errorf("documents root %s is not a git repository", a.root)
	}

	lines, err := lister.All(ctx)
	if err != nil {
		return err
	}

	var records []ledger.ChangeRecord
	for _, line := range lines {
		if strings.TrimSpace(line.Text) == "" {
			continue
		}
		records = append(records, ledger.ChangeRecord{
			Tag:  ledger.Tag(len(records)+1, line.File),
			Text: line.Text,
		})
	}
	if len(records) == 0 {
		fmt.Println("No changed lines found.")
		return nil
	}

	if err := a.ws.EnsureRoot(); err != nil {
		return err
	}
	out := a.ws.DefaultChangePath()
	if err := ledger.WriteFile(out, records); err != nil {
		return err
	}

	fmt.Printf("Collected %d changed lines\n", len(records))
	fmt.Printf("Change file: %s\n", out)
	return nil
}

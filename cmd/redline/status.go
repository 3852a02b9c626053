package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/redlinehq/redline/ledger"
	"github.com/redlinehq/redline/review"
	"github.com/redlinehq/redline/workspace"
)

func statusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show workspace contents and any saved review position",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(a)
		},
	}
}

func runStatus(a *app) error {
	fmt.Printf("Documents root: %s\n", a.root)
	fmt.Printf("Workspace:      %s\n", a.ws.Root())

	paths, err := a.ws.List()
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		fmt.Println("\nWorkspace is empty.")
	} else {
		fmt.Println("\nLedger files:")
		for _, path := range paths {
			name := filepath.Base(path)
			role := "changes"
			if workspace.IsSuggestionName(name) {
				role = "suggestions"
			}
			records, err := ledger.LoadChanges(path)
			if err != nil {
				fmt.Printf("  %-32s unreadable: %v\n", name, err)
				continue
			}
			fmt.Printf("  %-32s %4d %s\n", name, len(records), role)
		}
	}

	cursor, err := review.NewFileStore(a.ws.CursorPath()).Load()
	if err != nil {
		fmt.Printf("\nReview progress unreadable: %v\n", err)
		return nil
	}
	if cursor == nil {
		fmt.Println("\nNo review in progress.")
		return nil
	}
	fmt.Printf("\nReview in progress: %s, next record %d\n",
		filepath.Base(cursor.ChangeFile), cursor.NextIndex+1)
	return nil
}

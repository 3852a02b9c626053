package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/redlinehq/redline/ledger"
	"github.com/redlinehq/redline/suggest"
	"github.com/redlinehq/redline/workspace"
)

func suggestCmd(a *app) *cobra.Command {
	var keepClean bool

	cmd := &cobra.Command{
		Use:   "suggest [change-file]",
		Short: "Run the checker over a change file and write its suggestion file",
		Long: `Suggest sends every record of a change file to the configured model
and writes the returned corrections to the paired suggestion file as
they arrive. Clean records are dropped unless --keep-clean is set.

The run can be paused and resumed with p+Enter; Ctrl-C stops it at
the next record boundary. Suggestions already written are kept.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			changePath := a.ws.DefaultChangePath()
			if len(args) == 1 {
				changePath = args[0]
			}
			return runSuggest(a, changePath, keepClean)
		},
	}

	cmd.Flags().BoolVar(&keepClean, "keep-clean", false, "Also write records the checker found nothing wrong with")
	return cmd
}

func runSuggest(a *app, changePath string, keepClean bool) error {
	records, err := ledger.LoadChanges(changePath)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("Nothing to check.")
		return nil
	}

	outPath := workspace.SuggestionFor(changePath)
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create suggestion file %s: %w", outPath, err)
	}
	defer out.Close()

	ctx, cancel := signalContext()
	defer cancel()

	gate := suggest.NewGate()
	go watchPauseKeys(ctx, gate)

	engine := suggest.NewEngine(a.newSuggester(), suggest.Config{
		Delay:     a.cfg.Suggest.GetRequestDelay(),
		KeepClean: keepClean || a.cfg.Suggest.KeepClean,
	}, suggest.WithGate(gate))

	fmt.Printf("Checking %d records with %s (%s)\n", len(records), a.cfg.Model.Name, a.cfg.Model.Provider)
	fmt.Println("Press p+Enter to pause or resume, Ctrl-C to stop.")

	stats, err := engine.Run(ctx, records, out)
	fmt.Printf("\nProcessed %d of %d records: %d suggestions, %d clean, %d failed\n",
		stats.Processed, len(records), stats.Written, stats.Clean, stats.Failed)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Println("Stopped. Run suggest again for a fresh pass.")
			return nil
		}
		return err
	}

	fmt.Printf("Suggestion file: %s\n", outPath)
	return nil
}

// watchPauseKeys toggles the engine gate on p lines from stdin. It
// exits with the scanner on EOF; the run itself is stopped by Ctrl-C,
// not by input.
func watchPauseKeys(ctx context.Context, gate *suggest.Gate) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		if strings.EqualFold(strings.TrimSpace(scanner.Text()), "p") {
			if gate.Toggle() {
				fmt.Println("Paused. Press p+Enter to resume.")
			} else {
				fmt.Println("Resumed.")
			}
		}
	}
}

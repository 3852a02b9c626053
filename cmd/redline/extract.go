package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/redlinehq/redline/ledger"
	"github.com/redlinehq/redline/source/extract"
	"github.com/redlinehq/redline/source/htmlconv"
	"github.com/redlinehq/redline/source/segment"
	"github.com/redlinehq/redline/workspace"
)

func extractCmd(a *app) *cobra.Command {
	var stem string

	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Collect the prose sentences of a document into a change file",
		Long: `Extract parses a markdown or HTML document, splits its prose into
sentences, and writes them as a labeled change file in the workspace.
Headings, code blocks, and other non-prose structure are left out.
Each sentence keeps a label naming the source document, so review can
find the file again later no matter where it moved under the root.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(a, args[0], stem)
		},
	}

	cmd.Flags().StringVar(&stem, "stem", "", "Change file stem (default: document name)")
	return cmd
}

func runExtract(a *app, path, stem string) error {
	blocks, err := sourceBlocks(path)
	if err != nil {
		return err
	}

	sentences := segment.FromBlocks(blocks)
	if len(sentences) == 0 {
		fmt.Println("No prose sentences found.")
		return nil
	}

	sourceID := filepath.Base(path)
	records := make([]ledger.ChangeRecord, len(sentences))
	for i, text := range sentences {
		records[i] = ledger.ChangeRecord{Tag: ledger.Tag(i+1, sourceID), Text: text}
	}

	if err := a.ws.EnsureRoot(); err != nil {
		return err
	}
	if stem == "" {
		stem = workspace.Stem(path)
	}
	out := a.ws.ChangePath(stem)
	if err := ledger.WriteFile(out, records); err != nil {
		return err
	}

	fmt.Printf("Extracted %d sentences from %s\n", len(records), path)
	fmt.Printf("Change file: %s\n", out)
	return nil
}

// sourceBlocks reads a document's prose blocks. HTML pages are
// converted to markdown first, so the same extraction rules apply.
func sourceBlocks(path string) ([]extract.TextBlock, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".html" && ext != ".htm" {
		return extract.New().ExtractFile(path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document %s: %w", path, err)
	}
	result, err := htmlconv.NewConverter().Convert(content)
	if err != nil {
		return nil, fmt.Errorf("convert %s: %w", path, err)
	}
	return extract.New().Extract([]byte(result.Markdown)), nil
}

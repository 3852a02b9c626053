// Package main provides the redline command-line tool. Redline turns
// the prose of markdown and HTML documents into reviewable sentence
// ledgers, runs a language-model checker over them, and walks the
// reviewer through applying accepted corrections back into the live
// files.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	// Register LLM providers via init().
	_ "github.com/redlinehq/redline/llm/providers"
)

// Version is the current redline version.
const Version = "0.1.0"

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath   string
		docsRoot     string
		workspaceDir string
		logLevel     string
	)

	a := &app{}

	cmd := &cobra.Command{
		Use:   "redline",
		Short: "Sentence-level prose checking for markdown documents",
		Long: `Redline extracts prose sentences from documents, asks a language
model to proofread each one, and applies the corrections you accept
back into the live files.

The basic workflow is three commands:

  redline extract doc.md   collect sentences into a change file
  redline suggest          check every sentence, write suggestions
  redline review           accept, edit, or skip each suggestion

Review progress is saved after every decision, so an interrupted
session resumes exactly where it stopped. Use "redline changes" in
place of extract to check only the lines that changed since the last
git commit.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(configPath, docsRoot, workspaceDir, logLevel)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "Config file (default: layered lookup)")
	flags.StringVar(&docsRoot, "root", "", "Documents root (default: configured or git root)")
	flags.StringVar(&workspaceDir, "workspace", "", "Workspace directory (default: configured)")
	flags.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		extractCmd(a),
		changesCmd(a),
		suggestCmd(a),
		reviewCmd(a),
		statusCmd(a),
		cleanCmd(a),
		commitCmd(a),
		versionCmd(),
	)

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("redline version %s\n", Version)
		},
	}
}

// Package gitdiff lists line-level changes in a git working tree so
// they can be fed into the change ledger, and carries the small set of
// commit helpers the CLI needs. Tracked changes come from `git diff
// HEAD`; untracked files are read whole, with their bytes decoded as
// UTF-8, then GBK, then Latin-1.
package gitdiff

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// LineKind distinguishes how a line entered the working tree.
type LineKind string

const (
	// KindAdded is a line added or modified in a tracked file.
	KindAdded LineKind = "added"
	// KindUntracked is a line of a file git does not know yet.
	KindUntracked LineKind = "untracked"
)

// Line is one changed line, attributed to its file.
type Line struct {
	File string // repo-relative path
	Num  int    // 1-based line number in the new file, 0 when unknown
	Text string
	Kind LineKind
}

// Lister runs git against one repository root and turns its output
// into Lines.
type Lister struct {
	repoRoot string
	logger   *slog.Logger
}

// NewLister creates a lister for the repository at root.
func NewLister(root string) *Lister {
	return &Lister{
		repoRoot: root,
		logger:   slog.Default(),
	}
}

// runGit executes a git command in the repository root.
func (l *Lister) runGit(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = l.repoRoot

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = strings.TrimSpace(stdout.String())
		}
		return "", fmt.Errorf("git %s failed: %w (%s)", args[0], err, detail)
	}
	return stdout.String(), nil
}

// IsRepo reports whether the root is inside a git repository.
func (l *Lister) IsRepo() bool {
	cmd := exec.Command("git", "rev-parse", "--git-dir")
	cmd.Dir = l.repoRoot
	return cmd.Run() == nil
}

// Init creates a new repository at the root.
func (l *Lister) Init(ctx context.Context) error {
	_, err := l.runGit(ctx, "init")
	return err
}

// Changed lists the lines added or modified in tracked files relative
// to HEAD.
func (l *Lister) Changed(ctx context.Context) ([]Line, error) {
	out, err := l.runGit(ctx, "diff", "HEAD")
	if err != nil {
		return nil, err
	}
	return ParseDiff(out), nil
}

// Untracked lists every line of every untracked file. Unreadable files
// are skipped with a warning.
func (l *Lister) Untracked(ctx context.Context) ([]Line, error) {
	out, err := l.runGit(ctx, "ls-files", "--others", "--exclude-standard")
	if err != nil {
		return nil, err
	}

	var lines []Line
	for _, rel := range strings.Split(out, "\n") {
		rel = strings.TrimSpace(rel)
		if rel == "" {
			continue
		}

		full := filepath.Join(l.repoRoot, rel)
		info, err := os.Stat(full)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		data, err := os.ReadFile(full)
		if err != nil {
			l.logger.Warn("could not read untracked file", "path", rel, "error", err)
			continue
		}
		if len(data) == 0 {
			continue
		}

		content := strings.TrimSuffix(decodeText(data), "\n")
		for i, text := range strings.Split(content, "\n") {
			lines = append(lines, Line{
				File: rel,
				Num:  i + 1,
				Text: strings.TrimRight(text, "\r"),
				Kind: KindUntracked,
			})
		}
	}
	return lines, nil
}

// All lists tracked changes followed by untracked file contents. A
// repository without commits has no HEAD to diff against; the tracked
// half degrades to empty with a warning and untracked listing carries
// the full working tree.
func (l *Lister) All(ctx context.Context) ([]Line, error) {
	changed, err := l.Changed(ctx)
	if err != nil {
		l.logger.Warn("tracked diff unavailable", "error", err)
		changed = nil
	}

	untracked, err := l.Untracked(ctx)
	if err != nil {
		return nil, err
	}
	return append(changed, untracked...), nil
}

// HasChanges reports whether the working tree has anything to commit.
func (l *Lister) HasChanges(ctx context.Context) (bool, error) {
	out, err := l.runGit(ctx, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// DiffStat returns the per-file change summary of the working tree.
func (l *Lister) DiffStat(ctx context.Context) (string, error) {
	out, err := l.runGit(ctx, "diff", "--stat")
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n"), nil
}

// AddAll stages everything under the root.
func (l *Lister) AddAll(ctx context.Context) error {
	_, err := l.runGit(ctx, "add", ".")
	return err
}

// Commit commits the staged changes and returns the message used. A
// blank message falls back to a timestamped default.
func (l *Lister) Commit(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		message = DefaultCommitMessage(time.Now())
	}
	if _, err := l.runGit(ctx, "commit", "-m", message); err != nil {
		return "", err
	}
	return message, nil
}

// DefaultCommitMessage renders the fallback commit message for t.
func DefaultCommitMessage(t time.Time) string {
	return "Auto-commit on " + t.Format("2006-01-02 15:04:05")
}

// ParseDiff extracts the added lines from unified diff output. Line
// numbers refer to the new file and are seeded from hunk headers; a
// malformed header degrades the numbers of its hunk to 0 rather than
// dropping the lines.
func ParseDiff(diff string) []Line {
	var (
		lines   []Line
		file    string
		counter int
	)

	for _, raw := range strings.Split(diff, "\n") {
		switch {
		case strings.HasPrefix(raw, "diff --git"):
			file = ""
			counter = 0

		case strings.HasPrefix(raw, "+++"):
			path := strings.TrimSpace(raw[3:])
			if path == "/dev/null" {
				file = ""
				continue
			}
			file = strings.TrimPrefix(path, "b/")

		case strings.HasPrefix(raw, "@@"):
			counter = hunkStart(raw)

		case file != "" && strings.HasPrefix(raw, "+"):
			lines = append(lines, Line{
				File: file,
				Num:  counter,
				Text: raw[1:],
				Kind: KindAdded,
			})
			counter++

		case file != "" && raw != "" && !strings.HasPrefix(raw, "-") && !strings.HasPrefix(raw, `\`):
			// Context line: present in the new file too.
			if counter > 0 {
				counter++
			}
		}
	}
	return lines
}

// hunkStart pulls the new-file start line out of an @@ header.
func hunkStart(header string) int {
	parts := strings.Split(header, "@@")
	if len(parts) < 2 {
		return 0
	}
	for _, field := range strings.Fields(parts[1]) {
		if !strings.HasPrefix(field, "+") {
			continue
		}
		num := strings.TrimPrefix(field, "+")
		if i := strings.Index(num, ","); i >= 0 {
			num = num[:i]
		}
		start, err := strconv.Atoi(num)
		if err != nil {
			return 0
		}
		return start
	}
	return 0
}

// decodeText converts file bytes to a string, trying UTF-8, then GBK,
// then Latin-1. The GBK decoder substitutes U+FFFD for byte sequences
// it cannot map, which marks the attempt as failed.
func decodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}

	decoded, err := simplifiedchinese.GBK.NewDecoder().Bytes(data)
	if err == nil && !bytes.ContainsRune(decoded, utf8.RuneError) {
		return string(decoded)
	}

	decoded, _ = charmap.ISO8859_1.NewDecoder().Bytes(data)
	return string(decoded)
}

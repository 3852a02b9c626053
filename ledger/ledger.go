// Package ledger implements the label-tagged line format that carries
// extracted sentences and their correction suggestions between pipeline
// stages. Each line is a sentinel-delimited label followed by a single
// space and the record content. Labels are the only join key between a
// change file and its suggestion file; position never matters.
package ledger

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Sentinel pieces of the label format. The @@S prefix is chosen to be
// extremely unlikely in prose.
const (
	sentinelOpen  = "@@S"
	sentinelClose = "@@"
	fieldSep      = "|"
)

// tagPattern validates a complete label: @@S<digits>|<source>@@ with no
// surrounding garbage. Used when a record's source must be resolved; the
// permissive SplitLine is enough for joining.
var tagPattern = regexp.MustCompile(`^@@S(\d+)\|([^@]+)@@$`)

// ChangeRecord is one extracted unit awaiting suggestion and review.
// Tag is the rendered label and the join key; Text is the sentence as
// extracted, authoritative for verification and replacement.
type ChangeRecord struct {
	Tag  string
	Text string
}

// SuggestionRecord is the parsed content of one suggestion-file line.
// When the payload is not valid JSON the structured fields stay empty
// and Raw carries the verbatim text.
type SuggestionRecord struct {
	Tag         string
	Original    string
	Category    string
	Explanation string
	Suggested   string
	Raw         string
}

// Proposal returns the text a reviewer is offered: the structured
// suggestion when present, otherwise the raw payload.
func (s SuggestionRecord) Proposal() string {
	if s.Suggested != "" {
		return s.Suggested
	}
	return s.Raw
}

// ReviewRecord is the join of a change record with its suggestion.
type ReviewRecord struct {
	Tag        string
	Text       string
	Suggestion SuggestionRecord
}

// Payload is the wire schema of a structured suggestion, one compact
// JSON object per line. An empty ErrorType means the checker found
// nothing to correct.
type Payload struct {
	OriginalText string `json:"original_text"`
	ErrorType    string `json:"error_type"`
	Description  string `json:"description"`
	CheckedText  string `json:"checked_text"`
}

// Tag renders the label for an extraction ordinal and source identifier.
// Ordinals are 1-based and zero-padded to six digits so labels sort
// lexically in extraction order.
func Tag(ordinal int, sourceID string) string {
	return fmt.Sprintf("%s%06d%s%s%s", sentinelOpen, ordinal, fieldSep, sourceID, sentinelClose)
}

// ParseTag strictly decodes a label into its ordinal and source
// identifier. Content lines joined by tag equality never need this;
// it is used when the source document must be located.
func ParseTag(tag string) (int, string, error) {
	m := tagPattern.FindStringSubmatch(tag)
	if m == nil {
		return 0, "", fmt.Errorf("malformed label %q", tag)
	}
	ordinal, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, "", fmt.Errorf("malformed label ordinal %q: %w", m[1], err)
	}
	return ordinal, m[2], nil
}

// SplitLine separates a tagged line into its label and content. The
// label runs from a leading @@S to the first "@@ " occurrence; the
// space after the closing sentinel is a separator, not content. Lines
// that do not carry a label report ok=false and are skipped by loaders.
func SplitLine(line string) (tag, content string, ok bool) {
	if !strings.HasPrefix(line, sentinelOpen) {
		return "", "", false
	}
	end := strings.Index(line, sentinelClose+" ")
	if end == -1 {
		return "", "", false
	}
	return line[:end+len(sentinelClose)], line[end+len(sentinelClose)+1:], true
}

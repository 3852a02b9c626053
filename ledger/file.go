package ledger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Write serializes records one per line: label, single space, content.
func Write(w io.Writer, records []ChangeRecord) error {
	for _, rec := range records {
		if _, err := fmt.Fprintf(w, "%s %s\n", rec.Tag, rec.Text); err != nil {
			return fmt.Errorf("write change record: %w", err)
		}
	}
	return nil
}

// WriteFile writes records to path, replacing any existing file. An
// empty record set produces an empty file, not an error.
func WriteFile(path string, records []ChangeRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create change file: %w", err)
	}
	if err := Write(f, records); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close change file: %w", err)
	}
	return nil
}

// Read recovers change records from tagged lines. Blank lines and lines
// without a valid label are skipped, never fatal; record order follows
// line order.
func Read(r io.Reader) ([]ChangeRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read change records: %w", err)
	}

	var records []ChangeRecord
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		tag, content, ok := SplitLine(line)
		if !ok {
			continue
		}
		records = append(records, ChangeRecord{Tag: tag, Text: content})
	}
	return records, nil
}

// LoadChanges reads a change file from disk.
func LoadChanges(path string) ([]ChangeRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open change file: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// LoadSuggestions reads a suggestion file into a tag-keyed map. The
// content of each line is parsed as a Payload; anything that is not a
// JSON object degrades to a raw-text suggestion. Duplicate tags keep
// the last occurrence.
func LoadSuggestions(path string) (map[string]SuggestionRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open suggestion file: %w", err)
	}
	defer f.Close()

	lines, err := Read(f)
	if err != nil {
		return nil, err
	}

	suggestions := make(map[string]SuggestionRecord, len(lines))
	for _, line := range lines {
		suggestions[line.Tag] = parseSuggestion(line.Tag, line.Text)
	}
	return suggestions, nil
}

// parseSuggestion decodes one suggestion payload. Unparsable content is
// passed through raw with empty classification fields so the record is
// still reviewable.
func parseSuggestion(tag, content string) SuggestionRecord {
	rec := SuggestionRecord{Tag: tag, Raw: content}

	var p Payload
	if err := json.Unmarshal([]byte(content), &p); err != nil {
		return rec
	}
	rec.Original = p.OriginalText
	rec.Category = p.ErrorType
	rec.Explanation = p.Description
	rec.Suggested = p.CheckedText
	return rec
}

// Join pairs change records with their suggestions by exact tag
// equality. Output order follows the change records; changes without a
// suggestion are filtered out, and suggestions without a change record
// are dropped. An empty result means nothing to review.
func Join(changes []ChangeRecord, suggestions map[string]SuggestionRecord) []ReviewRecord {
	var joined []ReviewRecord
	for _, ch := range changes {
		sugg, ok := suggestions[ch.Tag]
		if !ok {
			continue
		}
		joined = append(joined, ReviewRecord{
			Tag:        ch.Tag,
			Text:       ch.Text,
			Suggestion: sugg,
		})
	}
	return joined
}

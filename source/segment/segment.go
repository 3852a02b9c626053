// Package segment splits extracted prose blocks into reviewable
// sentences. Splitting is per physical line: a sentence never crosses a
// line break. Terminal punctuation clusters mark boundaries, but a
// cluster inside an inline style span never cuts the span apart; the
// whole styled run stays one sentence.
package segment

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/redlinehq/redline/source/extract"
)

// styleMarkers are the inline style families, longest first so that a
// run like *** is never consumed as * or **.
var styleMarkers = []string{"***", "**", "~~", "*", "_"}

// formulaPattern removes display-math spans, which may cross lines and
// are not prose.
var formulaPattern = regexp.MustCompile(`(?s)\$\$.+?\$\$`)

// clusterPattern matches one terminal punctuation cluster: sentence
// marks optionally fused with closing brackets or quotes on either
// side. Alternation order matters: a fused form wins over bare marks.
var clusterPattern = regexp.MustCompile(
	`[。！？.!?]+[）”’」』"')\]}]+|[）”’」』"')\]}]+[。！？.!?]+|[。！？.!?]+`)

// whitespaceRun collapses internal whitespace, including Unicode
// spaces, to one ASCII space.
var whitespaceRun = regexp.MustCompile(`[\s\p{Z}]+`)

// styleSpan is a half-open byte range [start, end) covering a styled
// run, markers included.
type styleSpan struct {
	start, end int
}

// FromBlocks segments every block and flattens the result in block
// order. Output never contains empty strings.
func FromBlocks(blocks []extract.TextBlock) []string {
	var sentences []string
	for _, b := range blocks {
		sentences = append(sentences, Sentences(b.Content)...)
	}
	return sentences
}

// Sentences splits one block's content into trimmed sentences. This
// stage cannot fail: text without terminal punctuation degrades to one
// whole-line sentence.
func Sentences(text string) []string {
	text = formulaPattern.ReplaceAllString(text, "")

	var sentences []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		spans := findStyleSpans(line)

		pos := 0
		for pos < len(line) {
			end := boundary(line, pos, spans)
			sentence := strings.TrimSpace(line[pos:end])
			if sentence != "" {
				sentences = append(sentences, whitespaceRun.ReplaceAllString(sentence, " "))
			}
			if end == pos {
				// Guard against a stalled scan.
				_, size := utf8.DecodeRuneInString(line[pos:])
				pos += size
			} else {
				pos = end
			}
		}
	}
	return sentences
}

// findStyleSpans locates every styled run in line. Per marker family
// the nearest opening marker pairs with the nearest closing one, left
// to right, non-overlapping; an opener without a closer is skipped.
// Families are scanned longest marker first and the result is stably
// sorted by start, so a *** span shadows the ** and * spans inside it.
func findStyleSpans(line string) []styleSpan {
	var spans []styleSpan
	for _, marker := range styleMarkers {
		pos := 0
		for pos < len(line) {
			open := strings.Index(line[pos:], marker)
			if open == -1 {
				break
			}
			open += pos

			closing := strings.Index(line[open+len(marker):], marker)
			if closing == -1 {
				pos = open + 1
				continue
			}
			closing += open + len(marker)

			spans = append(spans, styleSpan{start: open, end: closing + len(marker)})
			pos = closing + len(marker)
		}
	}
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	return spans
}

// insideStyle reports whether pos falls strictly inside a span, and if
// so where that span ends. The first containing span in start order
// wins.
func insideStyle(pos int, spans []styleSpan) (bool, int) {
	for _, s := range spans {
		if s.start < pos && pos < s.end {
			return true, s.end
		}
	}
	return false, pos
}

// boundary returns the end of the sentence starting at start: the end
// of the next punctuation cluster, pushed out to the end of any style
// span the cluster sits inside, or the line end when no cluster exists.
func boundary(line string, start int, spans []styleSpan) int {
	loc := clusterPattern.FindStringIndex(line[start:])
	if loc == nil {
		return len(line)
	}

	clusterEnd := start + loc[1]
	if inside, styleEnd := insideStyle(clusterEnd-1, spans); inside {
		return styleEnd
	}
	return clusterEnd
}

package extract

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark/ast"
)

// renderInline reconstructs the markdown text of an inline container so
// that styling survives extraction: code spans keep their backticks,
// emphasis keeps its delimiters, links keep their [text](url) shape.
// Reconstruction never fails; at worst a node contributes nothing.
func renderInline(src []byte, container ast.Node) string {
	var sb strings.Builder
	for c := container.FirstChild(); c != nil; c = c.NextSibling() {
		renderInlineNode(&sb, src, c)
	}
	return sb.String()
}

func renderInlineNode(sb *strings.Builder, src []byte, n ast.Node) {
	switch n := n.(type) {
	case *ast.Text:
		sb.Write(n.Segment.Value(src))
		if n.SoftLineBreak() || n.HardLineBreak() {
			sb.WriteByte('\n')
		}

	case *ast.String:
		sb.Write(n.Value)

	case *ast.CodeSpan:
		sb.WriteByte('`')
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				// Line endings inside a code span read as spaces.
				sb.Write(bytes.ReplaceAll(t.Segment.Value(src), []byte("\n"), []byte(" ")))
			}
		}
		sb.WriteByte('`')

	case *ast.Emphasis:
		delim := emphasisDelim(src, n)
		sb.WriteString(delim)
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			renderInlineNode(sb, src, c)
		}
		sb.WriteString(delim)

	case *ast.Link:
		// A link wrapping an image carries no reviewable text; the
		// whole span is dropped, markers included.
		if hasImage(n) {
			return
		}
		sb.WriteByte('[')
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			renderInlineNode(sb, src, c)
		}
		sb.WriteString("](")
		sb.Write(n.Destination)
		sb.WriteByte(')')

	case *ast.AutoLink:
		url := n.URL(src)
		if n.AutoLinkType == ast.AutoLinkEmail && !bytes.HasPrefix(url, []byte("mailto:")) {
			url = append([]byte("mailto:"), url...)
		}
		sb.WriteByte('[')
		sb.Write(n.Label(src))
		sb.WriteString("](")
		sb.Write(url)
		sb.WriteByte(')')

	case *ast.Image:
		// Images contribute no prose.

	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			sb.Write(seg.Value(src))
		}

	default:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			renderInlineNode(sb, src, c)
		}
	}
}

// emphasisDelim recovers the delimiter run that opened an emphasis node
// from the source bytes, so *x*, _x_, **x** and ***x*** all survive
// verbatim. Falls back to asterisks when the source offset cannot be
// pinned down.
func emphasisDelim(src []byte, n *ast.Emphasis) string {
	start := firstTextStart(n)
	if start >= n.Level {
		run := src[start-n.Level : start]
		if isDelimRun(run) {
			return string(run)
		}
		// Link or image markup sits between the delimiter and the first
		// literal text; the nearest marker character behind it is the
		// delimiter.
		for i := start - 1; i >= 0 && i >= start-8; i-- {
			if src[i] == '*' || src[i] == '_' {
				return strings.Repeat(string(src[i]), n.Level)
			}
		}
	}
	return strings.Repeat("*", n.Level)
}

// firstTextStart locates the source offset of the first literal text
// under n, or -1 when there is none.
func firstTextStart(n ast.Node) int {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			return t.Segment.Start
		}
		if start := firstTextStart(c); start >= 0 {
			return start
		}
	}
	return -1
}

// isDelimRun reports whether run is a uniform emphasis delimiter.
func isDelimRun(run []byte) bool {
	if len(run) == 0 {
		return false
	}
	for _, b := range run {
		if b != run[0] || (b != '*' && b != '_') {
			return false
		}
	}
	return true
}

// hasImage reports whether any descendant of n is an image.
func hasImage(n ast.Node) bool {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if c.Kind() == ast.KindImage || hasImage(c) {
			return true
		}
	}
	return false
}

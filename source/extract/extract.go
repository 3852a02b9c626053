// Package extract parses markdown documents into an ordered sequence of
// prose blocks. Headings, code, and anything nested inside a table are
// structural, not prose, and never produce blocks; inline markup inside
// prose (emphasis, code spans, links) is reconstructed verbatim so later
// stages can keep styled runs intact.
package extract

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// BlockKind classifies the structural context a prose block came from.
type BlockKind string

const (
	BlockParagraph  BlockKind = "paragraph"
	BlockListItem   BlockKind = "list-item"
	BlockBlockquote BlockKind = "blockquote"
)

// TextBlock is one extracted prose unit in document order.
type TextBlock struct {
	Content string
	Kind    BlockKind
}

// escapePlaceholder guards backslash-escaped punctuation through the
// parse. A private-use rune is planted in front of each escape before
// parsing and stripped after reconstruction; text segments keep the
// escape bytes themselves, so the pair comes back byte for byte.
const escapePlaceholder = "\uE000"

// escapedPunct matches a backslash followed by ASCII punctuation.
var escapedPunct = regexp.MustCompile("\\\\([!-/:-@\\[-`{-~])")

// Extractor parses markdown into TextBlocks. The zero value is not
// usable; construct with New.
type Extractor struct {
	md goldmark.Markdown
}

// New returns an Extractor with table support enabled. Tables are
// parsed only so their contents can be recognized and excluded.
func New() *Extractor {
	return &Extractor{
		md: goldmark.New(goldmark.WithExtensions(extension.Table)),
	}
}

// ExtractFile reads and extracts a document from disk. A missing or
// unreadable input is fatal and reported with its path.
func (e *Extractor) ExtractFile(path string) ([]TextBlock, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document %s: %w", path, err)
	}
	return e.Extract(data), nil
}

// Extract parses source and returns its prose blocks in document order.
// Extraction never fails: unrecognized structure simply contributes no
// blocks.
func (e *Extractor) Extract(source []byte) []TextBlock {
	body := stripFrontMatter(source)
	body = escapedPunct.ReplaceAll(body, []byte(escapePlaceholder+"\\$1"))

	doc := e.md.Parser().Parse(text.NewReader(body))

	w := &walker{src: body}
	_ = ast.Walk(doc, w.visit)
	return w.blocks
}

// stripFrontMatter removes one leading metadata block fenced by triple
// dashes. The fence must be the first non-whitespace content and a
// closing fence must exist; otherwise the whole document is prose.
func stripFrontMatter(source []byte) []byte {
	parts := bytes.SplitN(source, []byte("---"), 3)
	if len(parts) == 3 && len(bytes.TrimSpace(parts[0])) == 0 {
		return parts[2]
	}
	return source
}

// tableKinds are every node kind a table introduces. Prose nested
// anywhere under one of these is excluded.
var tableKinds = []ast.NodeKind{
	extast.KindTable,
	extast.KindTableHeader,
	extast.KindTableRow,
	extast.KindTableCell,
}

// walker accumulates prose blocks while maintaining an explicit stack
// of the block kinds currently open around the visit position.
type walker struct {
	src    []byte
	stack  []ast.NodeKind
	blocks []TextBlock
}

func (w *walker) visit(n ast.Node, entering bool) (ast.WalkStatus, error) {
	if n.Type() != ast.TypeBlock && n.Type() != ast.TypeDocument {
		return ast.WalkContinue, nil
	}

	if !entering {
		w.stack = w.stack[:len(w.stack)-1]
		return ast.WalkContinue, nil
	}
	w.stack = append(w.stack, n.Kind())

	// Inline content lives under paragraphs, tight-list text blocks,
	// and headings. Emit here and skip descent; the stack decides
	// whether this position counts as prose.
	switch n.Kind() {
	case ast.KindParagraph, ast.KindTextBlock, ast.KindHeading:
		if w.inProse() {
			content := renderInline(w.src, n)
			content = strings.ReplaceAll(content, escapePlaceholder, "")
			if strings.TrimSpace(content) != "" {
				w.blocks = append(w.blocks, TextBlock{Content: content, Kind: w.blockKind()})
			}
		}
		return ast.WalkSkipChildren, nil
	}
	return ast.WalkContinue, nil
}

// inProse reports whether the current stack position is reviewable
// prose: inside a paragraph, list item, or blockquote, and not inside a
// heading or any part of a table, however deep.
func (w *walker) inProse() bool {
	return w.contains(ast.KindParagraph, ast.KindTextBlock, ast.KindListItem, ast.KindBlockquote) &&
		!w.contains(ast.KindHeading) &&
		!w.contains(tableKinds...)
}

func (w *walker) contains(kinds ...ast.NodeKind) bool {
	for _, have := range w.stack {
		for _, want := range kinds {
			if have == want {
				return true
			}
		}
	}
	return false
}

// blockKind reports the nearest enclosing structural context.
func (w *walker) blockKind() BlockKind {
	for i := len(w.stack) - 1; i >= 0; i-- {
		switch w.stack[i] {
		case ast.KindListItem:
			return BlockListItem
		case ast.KindBlockquote:
			return BlockBlockquote
		}
	}
	return BlockParagraph
}

// Package htmlconv turns HTML pages into markdown fit for prose
// extraction. The main article is isolated with readability; pages it
// cannot score fall back to whole-page conversion with script and
// style blocks stripped.
package htmlconv

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

var (
	scriptRe         = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRe          = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	excessiveLinesRe = regexp.MustCompile(`\n{4,}`)
)

// articleURL anchors relative links in documents read from disk.
var articleURL = &url.URL{Scheme: "file", Path: "/document.html"}

// Result is a converted document.
type Result struct {
	Title    string
	Markdown string
}

// Converter converts HTML documents to markdown.
type Converter struct {
	converter *md.Converter
}

// NewConverter creates a converter with GitHub-flavored markdown rules.
func NewConverter() *Converter {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	return &Converter{converter: converter}
}

// Convert transforms an HTML document into markdown, recovering a title
// from the <title> tag, the extracted article, or the first heading,
// in that order.
func (c *Converter) Convert(content []byte) (*Result, error) {
	title := htmlTitle(content)

	body, articleTitle := extractArticle(content)
	if title == "" {
		title = articleTitle
	}

	markdown, err := c.converter.ConvertString(body)
	if err != nil {
		return nil, fmt.Errorf("convert html: %w", err)
	}
	markdown = tidyMarkdown(markdown)

	if title == "" {
		title = markdownTitle(markdown)
	}

	return &Result{Title: title, Markdown: markdown}, nil
}

// extractArticle isolates the main article HTML.
func extractArticle(content []byte) (body, title string) {
	article, err := readability.FromReader(bytes.NewReader(content), articleURL)
	if err != nil || strings.TrimSpace(article.Content) == "" {
		return stripNoise(string(content)), ""
	}
	return article.Content, strings.TrimSpace(article.Title)
}

// stripNoise removes script and style blocks for whole-page conversion.
func stripNoise(content string) string {
	content = scriptRe.ReplaceAllString(content, "")
	content = styleRe.ReplaceAllString(content, "")
	return content
}

// htmlTitle extracts the <title> text from an HTML document.
func htmlTitle(content []byte) string {
	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return ""
	}

	var title string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
			title = strings.TrimSpace(n.FirstChild.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if title != "" {
				return
			}
			walk(c)
		}
	}
	walk(doc)

	return title
}

// tidyMarkdown trims trailing whitespace and collapses runs of blank
// lines left behind by the conversion.
func tidyMarkdown(content string) string {
	content = excessiveLinesRe.ReplaceAllString(content, "\n\n\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// markdownTitle returns the first H1 heading text in markdown.
func markdownTitle(content string) string {
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

package htmlconv

import (
	"strings"
	"testing"
)

func TestHTMLTitle(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected string
	}{
		{
			name:     "simple title",
			html:     "<html><head><title>博客标题</title></head><body></body></html>",
			expected: "博客标题",
		},
		{
			name:     "title with whitespace",
			html:     "<html><head><title>  Spaced Title  </title></head></html>",
			expected: "Spaced Title",
		},
		{
			name:     "no title",
			html:     "<html><head></head><body>Content</body></html>",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := htmlTitle([]byte(tt.html))
			if got != tt.expected {
				t.Errorf("htmlTitle() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestMarkdownTitle(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		expected string
	}{
		{
			name:     "H1 at start",
			markdown: "# 第一章\n\n正文内容",
			expected: "第一章",
		},
		{
			name:     "H1 after prose",
			markdown: "引言\n\n# 标题在这里\n\n更多内容",
			expected: "标题在这里",
		},
		{
			name:     "no H1",
			markdown: "## 小节\n\n内容",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := markdownTitle(tt.markdown)
			if got != tt.expected {
				t.Errorf("markdownTitle() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestTidyMarkdown(t *testing.T) {
	got := tidyMarkdown("第一行   \n\n\n\n\n\n第二行\t\n")

	if strings.Contains(got, "\n\n\n\n") {
		t.Error("tidyMarkdown should collapse runs of blank lines")
	}
	for _, line := range strings.Split(got, "\n") {
		if strings.HasSuffix(line, " ") || strings.HasSuffix(line, "\t") {
			t.Errorf("tidyMarkdown should strip trailing whitespace: %q", line)
		}
	}
	if !strings.HasPrefix(got, "第一行") || !strings.HasSuffix(got, "第二行") {
		t.Errorf("tidyMarkdown changed content: %q", got)
	}
}

func TestStripNoise(t *testing.T) {
	html := `<body><script>var x = 1;</script><p>正文。</p><style>p { color: red; }</style></body>`

	got := stripNoise(html)
	if strings.Contains(got, "var x") {
		t.Error("script content should be removed")
	}
	if strings.Contains(got, "color: red") {
		t.Error("style content should be removed")
	}
	if !strings.Contains(got, "正文。") {
		t.Error("prose should survive")
	}
}

func TestConvert(t *testing.T) {
	converter := NewConverter()

	html := []byte(`<!DOCTYPE html>
<html>
<head><title>测试文章</title><script>var tracking = true;</script></head>
<body>
<nav>导航栏</nav>
<article>
<h1>正文标题</h1>
<p>这是第一段，介绍文章的主题。这一段有足够的文字让正文识别器工作。</p>
<p>这是第二段，包含<strong>加粗</strong>的文字，继续展开上面的讨论。</p>
<ul>
<li>列表项一。</li>
<li>列表项二。</li>
</ul>
</article>
<footer>页脚信息</footer>
</body>
</html>`)

	result, err := converter.Convert(html)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	if result.Title != "测试文章" {
		t.Errorf("Title = %q, want %q", result.Title, "测试文章")
	}

	for _, want := range []string{"这是第一段", "这是第二段", "列表项一。", "列表项二。"} {
		if !strings.Contains(result.Markdown, want) {
			t.Errorf("Markdown should contain %q\ngot:\n%s", want, result.Markdown)
		}
	}

	if strings.Contains(result.Markdown, "var tracking") {
		t.Error("script content must not leak into markdown")
	}
}

func TestConvertFallsBackToWholePage(t *testing.T) {
	converter := NewConverter()

	// Too little text for article scoring; the whole-page path carries it.
	html := []byte(`<html><head></head><body><p>只有一句。</p></body></html>`)

	result, err := converter.Convert(html)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if !strings.Contains(result.Markdown, "只有一句。") {
		t.Errorf("Markdown should contain the sentence, got %q", result.Markdown)
	}
}

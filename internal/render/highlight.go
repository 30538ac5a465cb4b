package render

import (
	"bytes"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/debemdeboas/the-press/internal/config"
	"github.com/debemdeboas/the-press/internal/theme"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const languageClassPrefix = "language-"

// HighlightCode returns code formatted by chroma as HTML. On any failure the escaped code
// is returned instead.
func HighlightCode(code, language, highlightTheme string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return html.EscapeString(code)
	}

	var buf strings.Builder
	style := styles.Get(highlightTheme)
	formatter := theme.GetFormatter()
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return html.EscapeString(code)
	}

	return config.RegexCallout.ReplaceAllString(buf.String(), `<span class="callout">$1</span>`)
}

// codeLanguage returns the language of a <code class="language-x"> element.
func codeLanguage(n *html.Node) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, class := range strings.Fields(attr.Val) {
			if lang, ok := strings.CutPrefix(class, languageClassPrefix); ok && lang != "" {
				return lang, true
			}
		}
	}
	return "", false
}

// highlightCodeBlocks replaces every <pre><code class="language-x"> in the tree with a
// highlighted <div class="highlight"> block.
func highlightCodeBlocks(root *html.Node, highlightTheme string) error {
	var blocks []*html.Node
	walk(root, func(n *html.Node) {
		if n.Type != html.ElementNode || n.DataAtom != atom.Pre {
			return
		}
		code := n.FirstChild
		if code == nil || code.NextSibling != nil || code.DataAtom != atom.Code {
			return
		}
		if _, ok := codeLanguage(code); ok {
			blocks = append(blocks, n)
		}
	})

	for _, pre := range blocks {
		lang, _ := codeLanguage(pre.FirstChild)
		highlighted := `<div class="highlight">` + HighlightCode(textContent(pre.FirstChild), lang, highlightTheme) + `</div>`

		nodes, err := html.ParseFragment(strings.NewReader(highlighted), pre.Parent)
		if err != nil {
			return err
		}
		for _, node := range nodes {
			pre.Parent.InsertBefore(node, pre)
		}
		pre.Parent.RemoveChild(pre)
	}
	return nil
}

// HighlightCodeBlocks highlights the fenced code blocks of an HTML fragment.
func HighlightCodeBlocks(content, highlightTheme string) (string, error) {
	nodes, err := parseFragment(content)
	if err != nil {
		return "", err
	}
	root := wrap(nodes)
	if err := highlightCodeBlocks(root, highlightTheme); err != nil {
		return "", err
	}
	return renderChildren(root)
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func textContent(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	})
	return b.String()
}

func bodyContext() *html.Node {
	return &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
}

func parseFragment(content string) ([]*html.Node, error) {
	return html.ParseFragment(strings.NewReader(content), bodyContext())
}

// wrap attaches the fragment nodes to a detached body element.
func wrap(nodes []*html.Node) *html.Node {
	root := bodyContext()
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root
}

func renderChildren(root *html.Node) (string, error) {
	var buf bytes.Buffer
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

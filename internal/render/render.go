// Package render turns stored post content into the HTML served to readers and converts
// markdown archives into editor HTML.
package render

import (
	"bytes"
	"sync"

	"github.com/debemdeboas/the-press/internal/cache"
	"github.com/debemdeboas/the-press/internal/config"
	"github.com/debemdeboas/the-press/internal/model"
	"github.com/debemdeboas/the-press/internal/util"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	md_html "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/rs/zerolog"

	"github.com/mmarkdown/mmark/v2/lang"
	"github.com/mmarkdown/mmark/v2/mast"
	"github.com/mmarkdown/mmark/v2/mparser"
	"github.com/mmarkdown/mmark/v2/render/mhtml"
)

var renderLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	renderLogger = l
}

type Rendered struct {
	HTML string    `json:"html"`
	TOC  []Heading `json:"toc"`
}

// Rendered posts keyed by content hash and syntax theme.
var renderedCache = cache.NewCache[string, Rendered]()

func ClearRenderedCache() {
	renderedCache.DeleteFunc(func(string, Rendered) bool { return true })
}

// RenderContent adds heading ids and highlights code blocks in one pass over content.
func RenderContent(content, highlightTheme string) (Rendered, error) {
	nodes, err := parseFragment(content)
	if err != nil {
		return Rendered{}, err
	}
	root := wrap(nodes)

	toc := tableOfContents(root)
	if err := highlightCodeBlocks(root, highlightTheme); err != nil {
		return Rendered{}, err
	}

	out, err := renderChildren(root)
	if err != nil {
		return Rendered{}, err
	}
	return Rendered{HTML: out, TOC: toc}, nil
}

// Mutex to protect the check-render-set operation in RenderPost
var renderCacheMutex sync.Mutex

func RenderPost(post model.Post, highlightTheme string) (Rendered, error) {
	contentHash := post.ContentHash
	if contentHash == "" {
		contentHash = util.ContentHashString(post.Content)
	}
	key := contentHash + ":" + highlightTheme

	if cached, found := renderedCache.Get(key); found {
		renderLogger.Debug().Str("contentHash", contentHash).Str("highlightTheme", highlightTheme).Msg("Cache hit for rendered post")
		return cached, nil
	}

	renderLogger.Debug().Str("contentHash", contentHash).Str("highlightTheme", highlightTheme).Msg("Cache miss for rendered post")
	renderCacheMutex.Lock()
	defer renderCacheMutex.Unlock()

	if cached, found := renderedCache.Get(key); found {
		return cached, nil
	}

	rendered, err := RenderContent(post.Content, highlightTheme)
	if err != nil {
		return Rendered{}, err
	}
	renderedCache.Set(key, rendered)
	return rendered, nil
}

// WarmCache renders a post in the background.
func WarmCache(post model.Post, highlightTheme string) {
	go func() {
		if _, err := RenderPost(post, highlightTheme); err != nil {
			renderLogger.Error().Err(err).Str("post_id", string(post.ID)).Msg("Error warming render cache")
		}
	}()
}

// RenderMarkdown converts markdown into editor HTML. Fenced code keeps its
// language-x class so it is highlighted when served.
func RenderMarkdown(md []byte) ([]byte, *mast.TitleData) {
	switch config.MarkdownRenderer {
	case "mmark":
		return RenderMarkdownMmark(md)
	default:
		return RenderMarkdownClassic(md), nil
	}
}

func RenderMarkdownClassic(md []byte) []byte {
	opts := md_html.RendererOptions{
		Flags: md_html.CommonFlags | md_html.HrefTargetBlank | md_html.FootnoteReturnLinks,
	}

	doc := parser.NewWithExtensions(
		parser.Tables | parser.FencedCode | parser.Autolink | parser.Strikethrough | parser.SpaceHeadings |
			parser.HeadingIDs | parser.BackslashLineBreak | parser.SuperSubscript | parser.DefinitionLists |
			parser.AutoHeadingIDs | parser.Footnotes | parser.OrderedListStart | parser.Attributes,
	).Parse(md)

	return bytes.TrimSpace(markdown.Render(doc, md_html.NewRenderer(opts)))
}

func RenderMarkdownMmark(md []byte) ([]byte, *mast.TitleData) {
	md = markdown.NormalizeNewlines(md)

	p := parser.NewWithExtensions(mparser.Extensions | parser.NoIntraEmphasis)

	init := mparser.NewInitial("")
	var info *mast.TitleData

	p.Opts = parser.Options{
		ParserHook: func(data []byte) (ast.Node, []byte, int) {
			node, data, consumed := mparser.Hook(data)
			if t, ok := node.(*mast.Title); ok {
				info = t.TitleData
			}
			return node, data, consumed
		},
		ReadIncludeFn: init.ReadInclude,
		Flags:         parser.FlagsNone,
	}

	doc := markdown.Parse(md, p)
	mparser.AddIndex(doc)

	// info.Language may be unset when the document has no title block
	if info == nil {
		info = &mast.TitleData{
			Title:    "Untitled",
			Language: "en",
		}
	}

	mhtmlOpts := mhtml.RendererOptions{
		Language: lang.New(info.Language),
	}

	opts := md_html.RendererOptions{
		RenderNodeHook: mhtmlOpts.RenderHook,
		Flags:          md_html.CommonFlags | md_html.FootnoteNoHRTag | md_html.FootnoteReturnLinks,
	}

	return bytes.TrimSpace(markdown.Render(doc, md_html.NewRenderer(opts))), info
}

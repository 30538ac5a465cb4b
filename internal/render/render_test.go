package render

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/debemdeboas/the-press/internal/model"
	"github.com/debemdeboas/the-press/internal/util"
)

func TestTableOfContents(t *testing.T) {
	content := `<h1>Intro  Section</h1><p>text</p><h2 id="custom">Details <em>here</em></h2>` +
		`<h4>Too deep</h4><h3>Intro Section</h3><h2>   </h2>`

	out, toc, err := TableOfContents(content)
	if err != nil {
		t.Fatalf("TableOfContents failed: %v", err)
	}

	expected := []Heading{
		{ID: "intro-section", Text: "Intro  Section", Level: 1},
		{ID: "custom", Text: "Details here", Level: 2},
		{ID: "intro-section-2", Text: "Intro Section", Level: 3},
	}
	if len(toc) != len(expected) {
		t.Fatalf("Expected %d headings, got %+v", len(expected), toc)
	}
	for i := range expected {
		if toc[i] != expected[i] {
			t.Errorf("Heading %d: expected %+v, got %+v", i, expected[i], toc[i])
		}
	}

	for _, want := range []string{`<h1 id="intro-section">`, `<h2 id="custom">`, `<h3 id="intro-section-2">`, `<h4>Too deep</h4>`} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %s, got %s", want, out)
		}
	}
}

func TestHeadingID(t *testing.T) {
	testCases := map[string]string{
		"Hello World":       "hello-world",
		"  Tabs\tand\nlines": "tabs-and-lines",
		"Keep, Punctuation!": "keep,-punctuation!",
		"":                   "",
	}
	for in, want := range testCases {
		if got := HeadingID(in); got != want {
			t.Errorf("HeadingID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHighlightCodeBlocks(t *testing.T) {
	content := `<p>before</p><pre><code class="language-go">func main() { fmt.Println("&lt;hi&gt;") }</code></pre>` +
		`<pre><code>plain</code></pre>`

	out, err := HighlightCodeBlocks(content, "monokai")
	if err != nil {
		t.Fatalf("HighlightCodeBlocks failed: %v", err)
	}

	if !strings.Contains(out, `<div class="highlight">`) {
		t.Errorf("Expected highlighted block, got %s", out)
	}
	if !strings.Contains(out, `class="chroma"`) {
		t.Errorf("Expected chroma markup, got %s", out)
	}
	if strings.Contains(out, "<hi>") {
		t.Error("Code must stay escaped after highlighting")
	}
	if !strings.Contains(out, `<pre><code>plain</code></pre>`) {
		t.Errorf("Blocks without a language must be left alone, got %s", out)
	}
	if !strings.HasPrefix(out, "<p>before</p>") {
		t.Errorf("Surrounding content must be preserved, got %s", out)
	}
}

func TestHighlightCodeCallouts(t *testing.T) {
	out := HighlightCode("x := 1 // <<1>>", "go", "github")
	if !strings.Contains(out, `<span class="callout">1</span>`) {
		t.Errorf("Expected callout span, got %s", out)
	}
}

func TestRenderPostCached(t *testing.T) {
	ClearRenderedCache()

	post := model.Post{
		ID:      "p1",
		Content: `<h2>Setup</h2><pre><code class="language-bash">echo hi</code></pre>`,
	}
	post.ContentHash = util.ContentHashString(post.Content)

	first, err := RenderPost(post, "github")
	if err != nil {
		t.Fatalf("RenderPost failed: %v", err)
	}
	if len(first.TOC) != 1 || first.TOC[0].ID != "setup" {
		t.Errorf("Unexpected TOC %+v", first.TOC)
	}
	if !strings.Contains(first.HTML, `id="setup"`) || !strings.Contains(first.HTML, "highlight") {
		t.Errorf("Expected heading ids and highlighting, got %s", first.HTML)
	}

	if _, ok := renderedCache.Get(post.ContentHash + ":github"); !ok {
		t.Error("Expected rendered post to be cached")
	}

	// A different theme is a different cache entry.
	other, _ := RenderPost(post, "monokai")
	if _, ok := renderedCache.Get(post.ContentHash + ":monokai"); !ok {
		t.Error("Expected second theme to be cached separately")
	}
	if other.HTML == "" {
		t.Error("Expected HTML for second theme")
	}

	// A stale hash still returns the cached render.
	post.Content = "<p>changed</p>"
	again, _ := RenderPost(post, "github")
	if again.HTML != first.HTML {
		t.Error("Expected render to be keyed by content hash")
	}
}

func TestRenderPostConcurrency(t *testing.T) {
	ClearRenderedCache()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			post := model.Post{Content: fmt.Sprintf("<h1>Post %d</h1>", i%4)}
			r, err := RenderPost(post, "github")
			if err != nil {
				t.Errorf("RenderPost failed: %v", err)
				return
			}
			if want := fmt.Sprintf("post-%d", i%4); len(r.TOC) != 1 || r.TOC[0].ID != want {
				t.Errorf("Expected heading %s, got %+v", want, r.TOC)
			}
		}(i)
	}
	wg.Wait()

	if n := renderedCache.Len(); n != 4 {
		t.Errorf("Expected 4 cache entries, got %d", n)
	}
}

func TestRenderMarkdown(t *testing.T) {
	md := []byte("# Title\n\nSome *text*.\n\n```go\nfmt.Println(1)\n```\n")

	t.Run("Classic", func(t *testing.T) {
		out := string(RenderMarkdownClassic(md))
		if !strings.Contains(out, "<em>text</em>") {
			t.Errorf("Expected emphasis, got %s", out)
		}
		if !strings.Contains(out, `class="language-go"`) {
			t.Errorf("Expected fenced code to keep its language, got %s", out)
		}
	})

	t.Run("Mmark", func(t *testing.T) {
		out, info := RenderMarkdown(md)
		if info == nil {
			t.Fatal("Expected title data")
		}
		if !strings.Contains(string(out), "fmt.Println(1)") || !strings.Contains(string(out), "<code") {
			t.Errorf("Expected fenced code block, got %s", out)
		}
	})
}

func BenchmarkRenderPost(b *testing.B) {
	post := model.Post{Content: strings.Repeat(`<h2>Part</h2><pre><code class="language-go">var x = 1</code></pre>`, 20)}

	b.Run("Cached", func(b *testing.B) {
		RenderPost(post, "github")
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			RenderPost(post, "github")
		}
	})

	b.Run("Uncached", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			RenderContent(post.Content, "github")
		}
	})
}

package editor

import (
	"fmt"
	"html"
	"strings"
	"sync"
)

// Widget is the embedded rich text editor seen as an opaque capability. Implementations
// serialize their document as HTML.
type Widget interface {
	HTML() string
	SetContent(html string)
	Exec(cmd Command) error
}

// BufferWidget is a headless Widget over an HTML string. Formatting commands wrap the current
// selection, insertions happen at the cursor.
type BufferWidget struct {
	mu sync.Mutex

	html     string
	selStart int
	selEnd   int

	setCalls int
}

func NewBufferWidget(initial string) *BufferWidget {
	w := &BufferWidget{}
	w.SetContent(initial)
	w.setCalls = 0
	return w
}

func (w *BufferWidget) HTML() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.html
}

// SetContent replaces the document and moves the cursor to its end.
func (w *BufferWidget) SetContent(content string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.html = content
	w.selStart, w.selEnd = len(content), len(content)
	w.setCalls++
}

// Input mirrors text typed into a client side editor. Unlike SetContent it is not a
// wholesale replacement and is not counted as one.
func (w *BufferWidget) Input(content string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.html = content
	w.selStart, w.selEnd = len(content), len(content)
}

// SetContentCalls reports how many times the document was replaced wholesale.
func (w *BufferWidget) SetContentCalls() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.setCalls
}

// Select sets the selection as byte offsets into the HTML. Offsets are clamped.
func (w *BufferWidget) Select(start, end int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	clamp := func(i int) int { return max(0, min(i, len(w.html))) }
	start, end = clamp(start), clamp(end)
	if start > end {
		start, end = end, start
	}
	w.selStart, w.selEnd = start, end
}

func (w *BufferWidget) Selection() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selStart, w.selEnd
}

func (w *BufferWidget) Exec(cmd Command) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	switch cmd.Name {
	case CmdToggleBold:
		w.toggle("<strong>", "</strong>")
	case CmdToggleItalic:
		w.toggle("<em>", "</em>")
	case CmdToggleHeading:
		w.toggle(fmt.Sprintf("<h%d>", cmd.Level), fmt.Sprintf("</h%d>", cmd.Level))
	case CmdToggleList:
		tag := "ul"
		if cmd.Kind == ListOrdered {
			tag = "ol"
		}
		w.toggle("<"+tag+"><li>", "</li></"+tag+">")
	case CmdSetAlignment:
		w.toggle(`<p style="text-align: `+cmd.Dir+`">`, "</p>")
	case CmdInsertLink:
		href := html.EscapeString(cmd.URL)
		if w.selStart == w.selEnd {
			w.insert(`<a href="` + href + `">` + href + `</a>`)
		} else {
			w.wrap(`<a href="`+href+`">`, "</a>")
		}
	case CmdInsertImage:
		w.insert(`<img src="` + html.EscapeString(cmd.URL) + `" alt="">`)
	}
	return nil
}

// toggle removes open/close when they directly surround the selection, and adds them
// otherwise.
func (w *BufferWidget) toggle(open, close string) {
	before, sel, after := w.html[:w.selStart], w.html[w.selStart:w.selEnd], w.html[w.selEnd:]
	if strings.HasSuffix(before, open) && strings.HasPrefix(after, close) {
		w.html = before[:len(before)-len(open)] + sel + after[len(close):]
		w.selStart -= len(open)
		w.selEnd -= len(open)
		return
	}
	w.wrap(open, close)
}

func (w *BufferWidget) wrap(open, close string) {
	w.html = w.html[:w.selStart] + open + w.html[w.selStart:w.selEnd] + close + w.html[w.selEnd:]
	w.selStart += len(open)
	w.selEnd += len(open)
}

func (w *BufferWidget) insert(fragment string) {
	w.html = w.html[:w.selEnd] + fragment + w.html[w.selEnd:]
	w.selEnd += len(fragment)
	w.selStart = w.selEnd
}

// Package editor holds the server side state of an editing session: the draft post, the
// adapter around the rich text widget and the in-flight guard for save and upload.
package editor

import (
	"sync"

	"github.com/rs/zerolog"
)

var editorLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	editorLogger = l
}

type State int

const (
	StateUninitialized State = iota
	StateReady
)

func (s State) String() string {
	if s == StateReady {
		return "ready"
	}
	return "uninitialized"
}

// Adapter owns the widget and translates its change events into draft updates. Until a
// widget is attached commands are no-ops and content pushes are held back.
type Adapter struct {
	mu sync.Mutex

	widget   Widget
	state    State
	pending  *string
	onChange func(html string)
}

func NewAdapter(onChange func(html string)) *Adapter {
	return &Adapter{onChange: onChange}
}

func (a *Adapter) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Ready is the widget-ready event. Content pushed before it is applied now.
func (a *Adapter) Ready(w Widget) {
	a.mu.Lock()
	a.widget = w
	a.state = StateReady
	pending := a.pending
	a.pending = nil
	a.mu.Unlock()

	if pending != nil {
		a.SetContent(*pending)
	}
}

// SetContent pushes external state into the widget. The push is skipped when the widget
// already serializes to html, which keeps the cursor where it is and breaks change loops.
// It reports whether the widget was actually written.
func (a *Adapter) SetContent(html string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != StateReady {
		a.pending = &html
		return false
	}
	if a.widget.HTML() == html {
		return false
	}

	a.widget.SetContent(html)
	editorLogger.Debug().Int("bytes", len(html)).Msg("Widget content replaced")
	return true
}

// inputWidget is a widget that mirrors typing done elsewhere.
type inputWidget interface {
	Input(html string)
}

// HandleInput reports user input made in a remote editor: a mirroring widget takes the
// new document, then the change event fires.
func (a *Adapter) HandleInput(html string) {
	a.mu.Lock()
	w, ok := a.widget.(inputWidget)
	ready := a.state == StateReady
	a.mu.Unlock()

	if ok && ready {
		w.Input(html)
	}
	a.HandleChange(html)
}

// HandleChange is the widget's content-changed event.
func (a *Adapter) HandleChange(html string) {
	if a.onChange != nil {
		a.onChange(html)
	}
}

// Exec runs a command against the widget and reports whether it ran. The resulting document
// is emitted as a change event.
func (a *Adapter) Exec(cmd Command) (bool, error) {
	if err := cmd.Validate(); err != nil {
		return false, err
	}

	a.mu.Lock()
	if a.state != StateReady {
		a.mu.Unlock()
		editorLogger.Debug().Str("command", string(cmd.Name)).Msg("Widget not ready, command ignored")
		return false, nil
	}
	w := a.widget
	a.mu.Unlock()

	if err := w.Exec(cmd); err != nil {
		return false, err
	}
	a.HandleChange(w.HTML())
	return true, nil
}

// HTML returns the widget's serialized document, or the held back content before ready.
func (a *Adapter) HTML() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != StateReady {
		if a.pending != nil {
			return *a.pending
		}
		return ""
	}
	return a.widget.HTML()
}

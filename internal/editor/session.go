package editor

import (
	"context"
	"errors"
	"html"
	"sync"
	"time"

	"github.com/debemdeboas/the-press/internal/model"
)

var (
	ErrBusy          = errors.New("editor: request already in progress")
	ErrClosed        = errors.New("editor: session closed")
	ErrDraftNotFound = errors.New("editor: draft not found")
)

type DraftID string

// Op names the session actions guarded by the busy flag.
type Op string

const (
	OpSave   Op = "save"
	OpUpload Op = "upload"
)

// ImageTarget is where an uploaded image URL is written.
type ImageTarget string

const (
	TargetContent  ImageTarget = "content"
	TargetFeatured ImageTarget = "featured"
)

// Session is one editor instance working on one draft. It owns its Post exclusively; the
// post is only ever replaced as a whole value.
type Session struct {
	ID    DraftID
	Owner model.UserID

	mu       sync.Mutex
	post     model.Post
	adapter  *Adapter
	busy     map[Op]bool
	closed   bool
	autoSlug bool
	lastSeen time.Time
}

// NewSession starts a session on post. The widget may be nil and attached later with Ready.
func NewSession(id DraftID, owner model.UserID, post model.Post, widget Widget) *Session {
	s := &Session{
		ID:       id,
		Owner:    owner,
		post:     post,
		busy:     make(map[Op]bool),
		lastSeen: time.Now(),
	}
	// Invoked with s.mu held.
	s.adapter = NewAdapter(func(html string) {
		s.post = s.post.WithContent(html)
	})
	s.adapter.SetContent(post.Content)
	if widget != nil {
		s.adapter.Ready(widget)
	}
	return s
}

func (s *Session) touch() {
	s.lastSeen = time.Now()
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Post returns a snapshot of the draft.
func (s *Session) Post() model.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.post
}

func (s *Session) WidgetState() State {
	return s.adapter.State()
}

// Busy reports which operations are currently in flight.
func (s *Session) Busy() []Op {
	s.mu.Lock()
	defer s.mu.Unlock()
	ops := make([]Op, 0, len(s.busy))
	for _, op := range []Op{OpSave, OpUpload} {
		if s.busy[op] {
			ops = append(ops, op)
		}
	}
	return ops
}

// Ready attaches the widget to the session.
func (s *Session) Ready(w Widget) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adapter.Ready(w)
}

// Update replaces one field of the draft. Content goes through the adapter so the widget is
// only written when it differs.
func (s *Session) Update(f model.Field, value string) (model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.Post{}, ErrClosed
	}
	s.touch()

	s.post = s.post.With(f, value)
	if f == model.FieldContent {
		s.adapter.SetContent(value)
	}
	return s.post, nil
}

// Blur handles a field losing focus. The first blur of the title derives the slug when it is
// still empty; later blurs do nothing.
func (s *Session) Blur(f model.Field) (model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.Post{}, ErrClosed
	}
	s.touch()

	if f == model.FieldTitle && !s.autoSlug {
		s.autoSlug = true
		if s.post.Slug == "" {
			s.post = s.post.WithSlug(model.Slugify(s.post.Title))
		}
	}
	return s.post, nil
}

// RegenerateSlug overwrites the slug with one derived from the current title.
func (s *Session) RegenerateSlug() (model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.Post{}, ErrClosed
	}
	s.touch()

	s.post = s.post.WithSlug(model.Slugify(s.post.Title))
	return s.post, nil
}

// ContentChanged is the widget's change event as reported by the client.
func (s *Session) ContentChanged(html string) (model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.Post{}, ErrClosed
	}
	s.touch()

	s.adapter.HandleInput(html)
	return s.post, nil
}

// Exec runs a widget command. applied is false when the widget is not ready yet.
func (s *Session) Exec(cmd Command) (post model.Post, applied bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.Post{}, false, ErrClosed
	}
	s.touch()

	applied, err = s.adapter.Exec(cmd)
	return s.post, applied, err
}

// PlaceImage writes an uploaded image URL into one of its two sinks.
func (s *Session) PlaceImage(url string, target ImageTarget) (model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.Post{}, ErrClosed
	}

	switch target {
	case TargetFeatured:
		s.post = s.post.WithFeaturedImage(url)
	default:
		if applied, err := s.adapter.Exec(Command{Name: CmdInsertImage, URL: url}); err != nil {
			return model.Post{}, err
		} else if !applied {
			// No widget yet: append so the image is not lost.
			s.post = s.post.WithContent(s.post.Content + `<img src="` + html.EscapeString(url) + `" alt="">`)
			s.adapter.SetContent(s.post.Content)
		}
	}
	return s.post, nil
}

func (s *Session) begin(op Op) (model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.Post{}, ErrClosed
	}
	if s.busy[op] {
		return model.Post{}, ErrBusy
	}
	s.busy[op] = true
	s.touch()
	return s.post, nil
}

func (s *Session) end(op Op) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.busy, op)
}

// Save runs fn on a snapshot of the draft with the save guard held. On success the
// persisted post replaces the draft; on failure the draft is left as it was. A session
// closed while fn runs discards the result.
func (s *Session) Save(ctx context.Context, fn func(context.Context, model.Post) (model.Post, error)) (model.Post, error) {
	snapshot, err := s.begin(OpSave)
	if err != nil {
		return model.Post{}, err
	}
	defer s.end(OpSave)

	saved, err := fn(ctx, snapshot)
	if err != nil {
		return model.Post{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		editorLogger.Debug().Str("draft_id", string(s.ID)).Msg("Session closed during save, result discarded")
		return saved, ErrClosed
	}
	// Edits made while the request was in flight are kept; only server assigned fields are taken.
	s.post.ID = saved.ID
	s.post.Slug = saved.Slug
	s.post.Status = saved.Status
	s.post.AuthorID = saved.AuthorID
	s.post.CreatedAt = saved.CreatedAt
	s.post.UpdatedAt = saved.UpdatedAt
	s.post.PublishedAt = saved.PublishedAt
	return saved, nil
}

// Upload runs fn with the upload guard held and places the returned URL into target.
func (s *Session) Upload(ctx context.Context, target ImageTarget, fn func(context.Context) (string, error)) (string, model.Post, error) {
	if _, err := s.begin(OpUpload); err != nil {
		return "", model.Post{}, err
	}
	defer s.end(OpUpload)

	url, err := fn(ctx)
	if err != nil {
		return "", model.Post{}, err
	}

	post, err := s.PlaceImage(url, target)
	if errors.Is(err, ErrClosed) {
		editorLogger.Debug().Str("draft_id", string(s.ID)).Msg("Session closed during upload, result discarded")
	}
	return url, post, err
}

// Close ends the session. In-flight saves and uploads finish but their results are dropped.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/debemdeboas/the-press/internal/auth"
	"github.com/debemdeboas/the-press/internal/config"
	"github.com/debemdeboas/the-press/internal/editor"
	"github.com/debemdeboas/the-press/internal/model"
	"github.com/debemdeboas/the-press/internal/upload"
)

type draftResponse struct {
	ID     editor.DraftID `json:"id"`
	Post   model.Post     `json:"post"`
	Widget string         `json:"widget"`
	Busy   []editor.Op    `json:"busy"`
}

func newDraftResponse(s *editor.Session) draftResponse {
	return draftResponse{
		ID:     s.ID,
		Post:   s.Post(),
		Widget: s.WidgetState().String(),
		Busy:   s.Busy(),
	}
}

type commandResponse struct {
	Post    model.Post `json:"post"`
	Applied bool       `json:"applied"`
}

type imageResponse struct {
	URL  string     `json:"url"`
	Post model.Post `json:"post"`
}

// fieldRequest is a delta from the editor form. Value replaces the field; Blur reports
// the field that lost focus.
type fieldRequest struct {
	Field string  `json:"field"`
	Value *string `json:"value"`
	Blur  string  `json:"blur"`
}

type contentRequest struct {
	HTML string `json:"html"`
}

// session returns the caller's editing session named in the path.
func (h *Handler) session(r *http.Request, owner model.UserID) (*editor.Session, error) {
	s, err := h.drafts.Get(editor.DraftID(r.PathValue("id")))
	if err != nil {
		return nil, err
	}
	if s.Owner != owner {
		return nil, editor.ErrDraftNotFound
	}
	return s, nil
}

// serveDrafts opens an editing session on a new post, or on ?post=<id> when given.
func (h *Handler) serveDrafts(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.EnforceUser(h.auth, w, r)
	if err != nil {
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	post := model.Post{Status: model.StatusDraft}
	if id := r.URL.Query().Get("post"); id != "" {
		post, err = h.publisher.Get(r.Context(), model.PostID(id), userID)
		if err != nil {
			writeError(w, r, err)
			return
		}
	}

	s, err := h.drafts.Create(userID, post)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newDraftResponse(s))
}

func (h *Handler) serveDraft(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.EnforceUser(h.auth, w, r)
	if err != nil {
		return
	}
	s, err := h.session(r, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, newDraftResponse(s))

	case http.MethodPatch:
		var req fieldRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		post := s.Post()
		if req.Value != nil {
			f, err := model.ParseField(req.Field)
			if err != nil {
				writeError(w, r, requestError(err.Error()))
				return
			}
			if post, err = s.Update(f, *req.Value); err != nil {
				writeError(w, r, err)
				return
			}
		}
		if req.Blur != "" {
			f, err := model.ParseField(req.Blur)
			if err != nil {
				writeError(w, r, requestError(err.Error()))
				return
			}
			if post, err = s.Blur(f); err != nil {
				writeError(w, r, err)
				return
			}
		}
		writeJSON(w, http.StatusOK, postResponse{Post: post})

	case http.MethodDelete:
		if err := h.drafts.Delete(s.ID); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w)
	}
}

// serveDraftContent receives the widget's change event.
func (h *Handler) serveDraftContent(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.EnforceUser(h.auth, w, r)
	if err != nil {
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	s, err := h.session(r, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req contentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	post, err := s.ContentChanged(req.HTML)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, postResponse{Post: post})
}

func (h *Handler) serveDraftCommand(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.EnforceUser(h.auth, w, r)
	if err != nil {
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	s, err := h.session(r, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var cmd editor.Command
	if err := decodeJSON(r, &cmd); err != nil {
		writeError(w, r, err)
		return
	}
	if err := cmd.Validate(); err != nil {
		writeError(w, r, requestError(err.Error()))
		return
	}

	post, applied, err := s.Exec(cmd)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, commandResponse{Post: post, Applied: applied})
}

// serveDraftSlug regenerates the slug from the current title.
func (h *Handler) serveDraftSlug(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.EnforceUser(h.auth, w, r)
	if err != nil {
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	s, err := h.session(r, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	post, err := s.RegenerateSlug()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, postResponse{Post: post})
}

// serveDraftImage uploads the multipart "file" field and places its URL into the
// content (default) or the featured image.
func (h *Handler) serveDraftImage(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.EnforceUser(h.auth, w, r)
	if err != nil {
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	s, err := h.session(r, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	target := editor.ImageTarget(r.URL.Query().Get("target"))
	switch target {
	case "":
		target = editor.TargetContent
	case editor.TargetContent, editor.TargetFeatured:
	default:
		writeError(w, r, requestError("Unknown image target"))
		return
	}

	maxBytes := h.cfg.Uploads.MaxBytes
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1<<20)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, upload.ErrTooLarge)
			return
		}
		writeError(w, r, requestError(config.ErrUploadFileRequired))
		return
	}
	defer file.Close()

	url, post, err := s.Upload(r.Context(), target, func(ctx context.Context) (string, error) {
		return h.uploader.Upload(ctx, string(userID), upload.File{
			Name:        header.Filename,
			ContentType: header.Header.Get(config.HCType),
			Size:        header.Size,
			Body:        file,
		})
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, imageResponse{URL: url, Post: post})
}

// serveDraftSave persists the draft with ?status=draft|published. A second save while
// one is running is rejected with 409.
func (h *Handler) serveDraftSave(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.EnforceUser(h.auth, w, r)
	if err != nil {
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	s, err := h.session(r, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	target, err := model.ParseStatus(r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, r, requestError(err.Error()))
		return
	}

	saved, err := s.Save(r.Context(), func(ctx context.Context, doc model.Post) (model.Post, error) {
		return h.savePost(ctx, doc, target, userID)
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, postResponse{Post: saved, Redirect: config.AdminPostsUrlPath})
}

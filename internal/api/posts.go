package api

import (
	"context"
	"net/http"

	"github.com/debemdeboas/the-press/internal/auth"
	"github.com/debemdeboas/the-press/internal/model"
)

type postResponse struct {
	Post     model.Post `json:"post"`
	Redirect string     `json:"redirect,omitempty"`
}

type postsResponse struct {
	Posts []model.Post `json:"posts"`
}

// servePosts saves a post (POST) or returns the caller's posts (GET). ?id= narrows the
// listing to a single post.
func (h *Handler) servePosts(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.EnforceUser(h.auth, w, r)
	if err != nil {
		return
	}

	switch r.Method {
	case http.MethodGet:
		if id := r.URL.Query().Get("id"); id != "" {
			post, err := h.publisher.Get(r.Context(), model.PostID(id), userID)
			if err != nil {
				writeError(w, r, err)
				return
			}
			writeJSON(w, http.StatusOK, postResponse{Post: post})
			return
		}

		posts, err := h.publisher.List(r.Context(), userID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if posts == nil {
			posts = []model.Post{}
		}
		writeJSON(w, http.StatusOK, postsResponse{Posts: posts})

	case http.MethodPost:
		var doc model.Post
		if err := decodeJSON(r, &doc); err != nil {
			writeError(w, r, err)
			return
		}
		target, err := model.ParseStatus(string(doc.Status))
		if err != nil {
			writeError(w, r, requestError(err.Error()))
			return
		}

		saved, err := h.savePost(r.Context(), doc, target, userID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, postResponse{Post: saved})

	default:
		methodNotAllowed(w)
	}
}

func (h *Handler) servePost(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.EnforceUser(h.auth, w, r)
	if err != nil {
		return
	}
	id := model.PostID(r.PathValue("id"))

	switch r.Method {
	case http.MethodGet:
		post, err := h.publisher.Get(r.Context(), id, userID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, postResponse{Post: post})

	case http.MethodDelete:
		confirmed := r.URL.Query().Get("confirm") == "true"

		var slug string
		if confirmed {
			if post, err := h.publisher.Get(r.Context(), id, userID); err == nil {
				slug = post.Slug
			}
		}

		if err := h.publisher.Delete(r.Context(), id, userID, confirmed); err != nil {
			writeError(w, r, err)
			return
		}
		h.forgetViews(r.Context(), slug)
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w)
	}
}

func (h *Handler) serveTogglePost(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.EnforceUser(h.auth, w, r)
	if err != nil {
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	post, err := h.publisher.ToggleStatus(r.Context(), model.PostID(r.PathValue("id")), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !post.Published() {
		h.forgetViews(r.Context(), post.Slug)
	}
	writeJSON(w, http.StatusOK, postResponse{Post: post})
}

// savePost saves through the publisher and retires the view count of a slug that stopped
// being public, either because the post went back to draft or because its slug changed.
func (h *Handler) savePost(ctx context.Context, doc model.Post, target model.Status, userID model.UserID) (model.Post, error) {
	var before model.Post
	if doc.ID != "" {
		before, _ = h.publisher.Get(ctx, doc.ID, userID)
	}

	saved, err := h.publisher.Save(ctx, doc, target, userID)
	if err != nil {
		return saved, err
	}
	if before.Published() && (!saved.Published() || before.Slug != saved.Slug) {
		h.forgetViews(ctx, before.Slug)
	}
	return saved, nil
}

// forgetViews drops the counter of a slug that is no longer public when counts live outside
// the posts table.
func (h *Handler) forgetViews(ctx context.Context, slug string) {
	f, ok := h.views.(Forgetter)
	if !ok || slug == "" {
		return
	}
	if err := f.Forget(ctx, slug); err != nil {
		apiLogger.Warn().Err(err).Str("slug", slug).Msg("Failed to forget view count")
	}
}

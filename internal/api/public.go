package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/debemdeboas/the-press/internal/auth"
	"github.com/debemdeboas/the-press/internal/config"
	"github.com/debemdeboas/the-press/internal/model"
	"github.com/debemdeboas/the-press/internal/render"
	"github.com/debemdeboas/the-press/internal/storage"
	"github.com/debemdeboas/the-press/internal/theme"
	"github.com/debemdeboas/the-press/internal/views"
)

type articleResponse struct {
	Post  model.Post       `json:"post"`
	HTML  string           `json:"html"`
	TOC   []render.Heading `json:"toc"`
	Views int64            `json:"views"`
}

type viewsResponse struct {
	Slug  string `json:"slug"`
	Views int64  `json:"views"`
}

type popularResponse struct {
	Posts []views.Entry `json:"posts"`
}

type mediaResponse struct {
	Media []storage.Object `json:"media"`
}

type userSummary struct {
	ID    model.UserID `json:"id"`
	Email string       `json:"email"`
}

type usersResponse struct {
	Users []userSummary `json:"users"`
}

type settingsResponse struct {
	Site struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		BaseURL     string `json:"base_url"`
	} `json:"site"`
	Uploads struct {
		MaxBytes          int64  `json:"max_bytes"`
		AllowedMIMEPrefix string `json:"allowed_mime_prefix"`
		PublicBaseURL     string `json:"public_base_url"`
	} `json:"uploads"`
	Auth struct {
		Type string `json:"type"`
	} `json:"auth"`
	Publishing struct {
		RefreshPublishedAt bool `json:"refresh_published_at"`
	} `json:"publishing"`
	SyntaxTheme string `json:"syntax_theme"`
}

// serveBlogs lists published articles, newest first.
func (h *Handler) serveBlogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	posts, err := h.posts.ListPublished(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if posts == nil {
		posts = []model.Post{}
	}
	writeJSON(w, http.StatusOK, postsResponse{Posts: posts})
}

// serveBlog returns one published article with its rendered body and table of contents.
func (h *Handler) serveBlog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	post, err := h.posts.GetPublishedBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	rendered, err := render.RenderPost(post, theme.GetSyntaxThemeFromRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	count, err := h.views.Get(r.Context(), post.Slug)
	if err != nil && !errors.Is(err, views.ErrUnknownSlug) {
		apiLogger.Warn().Err(err).Str("slug", post.Slug).Msg("Failed to read view count")
		count = post.Views
	}

	if rendered.TOC == nil {
		rendered.TOC = []render.Heading{}
	}
	writeJSON(w, http.StatusOK, articleResponse{
		Post:  post,
		HTML:  rendered.HTML,
		TOC:   rendered.TOC,
		Views: count,
	})
}

func (h *Handler) serveIncrementViews(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req struct {
		Slug string `json:"slug"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Slug == "" {
		writeError(w, r, requestError(config.ErrSlugRequired))
		return
	}

	// Only published articles are counted, whatever the counter backend.
	if _, err := h.posts.GetPublishedBySlug(r.Context(), req.Slug); err != nil {
		writeError(w, r, err)
		return
	}

	count, err := h.views.Increment(r.Context(), req.Slug)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewsResponse{Slug: req.Slug, Views: count})
}

// servePopular returns the most read articles. ?limit= defaults to the configured limit and
// may not exceed views.popular_max.
func (h *Handler) servePopular(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	limit := h.cfg.Views.PopularLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > h.cfg.Views.PopularMax {
			writeError(w, r, requestError(fmt.Sprintf("limit must be between 1 and %d", h.cfg.Views.PopularMax)))
			return
		}
		limit = n
	}

	entries, err := h.views.Popular(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []views.Entry{}
	}
	writeJSON(w, http.StatusOK, popularResponse{Posts: entries})
}

// serveMedia lists uploaded images.
func (h *Handler) serveMedia(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.EnforceUser(h.auth, w, r); err != nil {
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	objects, err := h.store.List(r.Context(), h.cfg.Uploads.Prefix)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if objects == nil {
		objects = []storage.Object{}
	}
	writeJSON(w, http.StatusOK, mediaResponse{Media: objects})
}

// serveUsers lists every known user (GET) or looks up {userIds} (POST). Unknown ids are
// left out of the answer.
func (h *Handler) serveUsers(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.EnforceUser(h.auth, w, r); err != nil {
		return
	}

	var users []model.User
	var err error

	switch r.Method {
	case http.MethodGet:
		users, err = h.users.List(r.Context())

	case http.MethodPost:
		var req struct {
			UserIDs json.RawMessage `json:"userIds"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		var ids []model.UserID
		if len(req.UserIDs) == 0 || req.UserIDs[0] != '[' || json.Unmarshal(req.UserIDs, &ids) != nil {
			writeError(w, r, requestError(config.ErrUserIDsMustBeArray))
			return
		}
		users, err = h.users.GetMany(r.Context(), ids)

	default:
		methodNotAllowed(w)
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	summaries := make([]userSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, userSummary{ID: u.ID, Email: u.Email})
	}
	writeJSON(w, http.StatusOK, usersResponse{Users: summaries})
}

// serveSettings exposes the settings the admin area needs. Secrets are never included.
func (h *Handler) serveSettings(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.EnforceUser(h.auth, w, r); err != nil {
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	var res settingsResponse
	res.Site.Name = h.cfg.Site.Name
	res.Site.Description = h.cfg.Site.Description
	res.Site.BaseURL = h.cfg.Site.BaseURL
	res.Uploads.MaxBytes = h.cfg.Uploads.MaxBytes
	res.Uploads.AllowedMIMEPrefix = h.cfg.Uploads.AllowedMIME
	res.Uploads.PublicBaseURL = h.cfg.Storage.PublicBaseURL
	res.Auth.Type = h.cfg.Auth.Type
	res.Publishing.RefreshPublishedAt = h.cfg.Publishing.RefreshPublishedAt
	res.SyntaxTheme = theme.GetDefaultSyntaxTheme()
	writeJSON(w, http.StatusOK, res)
}

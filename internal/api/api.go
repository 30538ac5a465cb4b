// Package api exposes the author and public JSON endpoints.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/debemdeboas/the-press/internal/auth"
	"github.com/debemdeboas/the-press/internal/config"
	"github.com/debemdeboas/the-press/internal/editor"
	"github.com/debemdeboas/the-press/internal/model"
	"github.com/debemdeboas/the-press/internal/publish"
	"github.com/debemdeboas/the-press/internal/repository"
	"github.com/debemdeboas/the-press/internal/routes"
	"github.com/debemdeboas/the-press/internal/storage"
	"github.com/debemdeboas/the-press/internal/upload"
	"github.com/debemdeboas/the-press/internal/views"
	"github.com/rs/zerolog"
)

var apiLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	apiLogger = l
}

// Forgetter is implemented by view counters that keep counts outside the posts table.
type Forgetter interface {
	Forget(ctx context.Context, slug string) error
}

type Handler struct {
	publisher *publish.Controller
	posts     repository.PostRepository
	users     repository.UserRepository
	drafts    editor.Repository
	uploader  *upload.Uploader
	store     storage.Store
	views     views.Counter
	auth      auth.AuthProvider
	cfg       *config.Config
}

type Deps struct {
	Publisher *publish.Controller
	Posts     repository.PostRepository
	Users     repository.UserRepository
	Drafts    editor.Repository
	Uploader  *upload.Uploader
	Store     storage.Store
	Views     views.Counter
	Auth      auth.AuthProvider
	Config    *config.Config
}

func New(d Deps) *Handler {
	cfg := d.Config
	if cfg == nil {
		cfg = config.Default()
	}
	return &Handler{
		publisher: d.Publisher,
		posts:     d.Posts,
		users:     d.Users,
		drafts:    d.Drafts,
		uploader:  d.Uploader,
		store:     d.Store,
		views:     d.Views,
		auth:      d.Auth,
		cfg:       cfg,
	}
}

// Register mounts every API route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc(routes.APIPosts, h.servePosts)
	mux.HandleFunc(routes.APIPost, h.servePost)
	mux.HandleFunc(routes.APIPostToggle, h.serveTogglePost)

	mux.HandleFunc(routes.APIDrafts, h.serveDrafts)
	mux.HandleFunc(routes.APIDraft, h.serveDraft)
	mux.HandleFunc(routes.APIDraftBody, h.serveDraftContent)
	mux.HandleFunc(routes.APIDraftCmds, h.serveDraftCommand)
	mux.HandleFunc(routes.APIDraftSlug, h.serveDraftSlug)
	mux.HandleFunc(routes.APIDraftImages, h.serveDraftImage)
	mux.HandleFunc(routes.APIDraftSave, h.serveDraftSave)

	mux.HandleFunc(routes.APIMedia, h.serveMedia)
	mux.HandleFunc(routes.APIUsers, h.serveUsers)
	mux.HandleFunc(routes.APISettings, h.serveSettings)

	mux.HandleFunc(routes.APIBlogs, h.serveBlogs)
	mux.HandleFunc(routes.APIBlog, h.serveBlog)
	mux.HandleFunc(routes.APIBlogsPopular, h.servePopular)
	mux.HandleFunc(routes.APIIncrementViews, h.serveIncrementViews)
}

type errorResponse struct {
	Error   string   `json:"error"`
	Missing []string `json:"missing,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(config.HCType, config.CTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		apiLogger.Error().Err(err).Msg("Error encoding response")
	}
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: config.HTTPErrMethodNotAllowed})
}

// writeError maps err to a status code and writes the error envelope. Unexpected errors
// are logged and reported with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	l := zerolog.Ctx(r.Context())

	var missing *model.MissingFieldsError
	var invalid requestError
	switch {
	case errors.As(err, &missing):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Missing: missing.Labels()})
	case errors.Is(err, publish.ErrSlugExists):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Slug already exists"})
	case errors.Is(err, publish.ErrConfirmationRequired):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: config.ErrConfirmDelete})
	case errors.Is(err, upload.ErrNotImage), errors.Is(err, upload.ErrTooLarge):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, upload.ErrDuplicateName):
		writeJSON(w, http.StatusConflict, errorResponse{Error: config.ErrUploadDuplicateName})
	case errors.Is(err, editor.ErrBusy):
		writeJSON(w, http.StatusConflict, errorResponse{Error: config.ErrRequestInProgress})
	case errors.Is(err, editor.ErrDraftNotFound), errors.Is(err, editor.ErrClosed):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: config.ErrDraftNotFound})
	case errors.Is(err, publish.ErrNotFound), errors.Is(err, repository.ErrNotFound), errors.Is(err, views.ErrUnknownSlug):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: config.ErrPostNotFound})
	case errors.Is(err, auth.ErrNotAuthenticated), errors.Is(err, publish.ErrNoAuthor), errors.Is(err, upload.ErrNotAuthenticated):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: config.ErrNotAuthenticated})
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: invalid.Error()})
	default:
		l.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: config.ErrInternalServerError})
		return
	}
	l.Info().Err(err).Str("path", r.URL.Path).Msg("Request rejected")
}

// requestError is a malformed request; its text is shown to the caller.
type requestError string

func (e requestError) Error() string {
	return string(e)
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return requestError(config.ErrInvalidRequestBody)
	}
	return nil
}

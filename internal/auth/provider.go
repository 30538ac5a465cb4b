// Package auth identifies the author behind a request. Two providers exist: a single
// admin holding an Ed25519 key, and Clerk hosted sessions.
package auth

import (
	"errors"
	"net/http"

	"github.com/debemdeboas/the-press/internal/model"
	"github.com/rs/zerolog"
)

var ErrNotAuthenticated = errors.New("auth: not authenticated")

var authLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	authLogger = l
}

type AuthProvider interface {
	// WithHeaderAuthorization returns middleware that resolves the session of a request
	// and stores the user id in its context. Requests without a session pass through.
	WithHeaderAuthorization() func(http.Handler) http.Handler

	GetUserIdFromSession(r *http.Request) (model.UserID, error)

	HandleWebhookUser(w http.ResponseWriter, r *http.Request)
}

package auth

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/debemdeboas/the-press/internal/config"
	"github.com/debemdeboas/the-press/internal/model"
	"github.com/rs/zerolog"
)

// LoginURL returns the login page address that sends the user back to redirect.
func LoginURL(redirect string) string {
	return config.LoginUrlPath + "?redirect=" + url.QueryEscape(SafeRedirect(redirect))
}

// SafeRedirect only allows local absolute paths.
func SafeRedirect(target string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return "/"
	}
	return target
}

// EnforceUser returns the request's user. Without one it answers 401, pointing htmx
// callers at the login page, and returns ErrNotAuthenticated.
func EnforceUser(provider AuthProvider, w http.ResponseWriter, r *http.Request) (model.UserID, error) {
	l := zerolog.Ctx(r.Context())

	userID, err := provider.GetUserIdFromSession(r)
	if err != nil || userID == "" {
		l.Warn().Err(err).Str("path", r.URL.Path).Msg("Unauthorized access attempt")

		w.Header().Set(config.HHxRedirect, LoginURL(r.URL.RequestURI()))
		w.Header().Set(config.HCType, config.CTypeJSON)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"` + config.ErrNotAuthenticated + `"}`))
		return "", ErrNotAuthenticated
	}
	return userID, nil
}

// RequireLogin guards browser routes. Anonymous visitors are redirected to the login
// page; htmx requests get an Hx-Redirect header instead.
func RequireLogin(provider AuthProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, err := provider.GetUserIdFromSession(r); err == nil && userID != "" {
				next.ServeHTTP(w, r)
				return
			}

			login := LoginURL(r.URL.RequestURI())
			if r.Header.Get(config.HHxRequest) != "" {
				w.Header().Set(config.HHxRedirect, login)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			http.Redirect(w, r, login, http.StatusSeeOther)
		})
	}
}

package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/clerk/clerk-sdk-go/v2"
	clerkhttp "github.com/clerk/clerk-sdk-go/v2/http"
	"github.com/debemdeboas/the-press/internal/config"
	"github.com/debemdeboas/the-press/internal/model"
	"github.com/debemdeboas/the-press/internal/repository"
	"github.com/rs/zerolog"
)

type ClerkAuthProvider struct { // implements AuthProvider
	users repository.UserRepository

	cookieExtractor clerkhttp.AuthorizationOption
}

func NewClerkAuthProvider(clerkKey string, users repository.UserRepository) *ClerkAuthProvider {
	clerk.SetKey(clerkKey)

	return &ClerkAuthProvider{
		users: users,
		cookieExtractor: clerkhttp.AuthorizationJWTExtractor(func(r *http.Request) string {
			cookie, err := r.Cookie(config.CookieClerk)
			if err != nil || cookie == nil {
				return ""
			}
			return cookie.Value
		}),
	}
}

func (c *ClerkAuthProvider) WithHeaderAuthorization() func(http.Handler) http.Handler {
	verify := clerkhttp.WithHeaderAuthorization(c.cookieExtractor)
	return func(next http.Handler) http.Handler {
		return verify(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims, ok := clerk.SessionClaimsFromContext(r.Context()); ok && claims.Subject != "" {
				r = r.WithContext(ContextWithUserId(r.Context(), model.UserID(claims.Subject)))
			}
			next.ServeHTTP(w, r)
		}))
	}
}

func (c *ClerkAuthProvider) GetUserIdFromSession(r *http.Request) (model.UserID, error) {
	userID, ok := UserIdFromContext(r.Context())
	if !ok {
		return "", ErrNotAuthenticated
	}
	return userID, nil
}

type clerkEmail struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

type clerkExternalAccount struct {
	Provider string  `json:"provider"`
	Username *string `json:"username"`
}

type clerkUserEvent struct {
	Type string `json:"type"`
	Data struct {
		ID                    string                 `json:"id"`
		Username              *string                `json:"username"`
		PrimaryEmailAddressID *string                `json:"primary_email_address_id"`
		EmailAddresses        []clerkEmail           `json:"email_addresses"`
		ExternalAccounts      []clerkExternalAccount `json:"external_accounts"`
	} `json:"data"`
}

// user maps the webhook payload to a row of the users table. The username comes from
// the account itself, or else from its first linked external account.
func (e clerkUserEvent) user() model.User {
	u := model.User{ID: model.UserID(e.Data.ID)}

	if e.Data.Username != nil {
		u.Username = *e.Data.Username
	}
	for _, acc := range e.Data.ExternalAccounts {
		if u.Username != "" {
			break
		}
		if acc.Username != nil {
			u.Username = *acc.Username
		}
	}

	for _, email := range e.Data.EmailAddresses {
		if e.Data.PrimaryEmailAddressID != nil && email.ID == *e.Data.PrimaryEmailAddressID {
			u.Email = email.EmailAddress
			break
		}
		if u.Email == "" {
			u.Email = email.EmailAddress
		}
	}
	u.Email = strings.ToLower(u.Email)
	return u
}

// HandleWebhookUser keeps the users table in sync with Clerk user events.
func (c *ClerkAuthProvider) HandleWebhookUser(w http.ResponseWriter, r *http.Request) {
	l := zerolog.Ctx(r.Context())

	var event clerkUserEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		l.Error().Err(err).Msg("Error decoding event payload")
		http.Error(w, config.ErrInvalidRequestBody, http.StatusBadRequest)
		return
	}
	if event.Data.ID == "" {
		http.Error(w, config.ErrInvalidRequestBody, http.StatusBadRequest)
		return
	}

	log := l.With().Str("event", event.Type).Str("user_id", event.Data.ID).Logger()

	switch event.Type {
	case "user.created", "user.updated":
		if err := c.users.Upsert(r.Context(), event.user()); err != nil {
			log.Error().Err(err).Msg("Error saving user")
			http.Error(w, config.ErrInternalServerError, http.StatusInternalServerError)
			return
		}
		log.Info().Msg("User saved")

		if event.Type == "user.created" {
			w.WriteHeader(http.StatusCreated)
		} else {
			w.WriteHeader(http.StatusNoContent)
		}

	case "user.deleted":
		if err := c.users.Delete(r.Context(), model.UserID(event.Data.ID)); err != nil {
			log.Error().Err(err).Msg("Error deleting user")
			http.Error(w, config.ErrInternalServerError, http.StatusInternalServerError)
			return
		}
		log.Info().Msg("User deleted")
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Invalid event type", http.StatusBadRequest)
	}
}

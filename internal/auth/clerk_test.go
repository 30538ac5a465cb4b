package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/debemdeboas/the-press/internal/db"
	"github.com/debemdeboas/the-press/internal/model"
	"github.com/debemdeboas/the-press/internal/repository"
	"github.com/rs/zerolog"
)

func setupUsers(t *testing.T) *repository.DBUserRepository {
	t.Helper()
	quiet := zerolog.New(os.Stdout).Level(zerolog.ErrorLevel)
	db.SetLogger(quiet)
	repository.SetLogger(quiet)

	testDB := db.NewSQLite(":memory:")
	if err := testDB.InitDb(); err != nil {
		t.Fatalf("Failed to setup test database: %v", err)
	}
	t.Cleanup(func() { testDB.Close() })
	return repository.NewDBUserRepository(testDB)
}

func TestClerkWebhookUser(t *testing.T) {
	users := setupUsers(t)
	provider := NewClerkAuthProvider("sk_test_dummy", users)
	ctx := context.Background()

	send := func(body string) int {
		recorder := httptest.NewRecorder()
		provider.HandleWebhookUser(recorder, httptest.NewRequest(http.MethodPost, "/webhooks/user", strings.NewReader(body)))
		return recorder.Code
	}

	created := `{"type":"user.created","data":{"id":"user_1","username":null,
		"primary_email_address_id":"idn_2",
		"email_addresses":[{"id":"idn_1","email_address":"old@example.com"},{"id":"idn_2","email_address":"Main@Example.com"}],
		"external_accounts":[{"provider":"oauth_x","username":"writer"}]}}`
	if code := send(created); code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", code)
	}

	list, _ := users.GetMany(ctx, []model.UserID{"user_1"})
	if len(list) != 1 || list[0].Username != "writer" || list[0].Email != "main@example.com" {
		t.Fatalf("Unexpected stored user %+v", list)
	}

	updated := `{"type":"user.updated","data":{"id":"user_1","username":"renamed","email_addresses":[]}}`
	if code := send(updated); code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", code)
	}
	list, _ = users.GetMany(ctx, []model.UserID{"user_1"})
	if len(list) != 1 || list[0].Username != "renamed" {
		t.Errorf("Expected user to be updated, got %+v", list)
	}

	if code := send(`{"type":"user.deleted","data":{"id":"user_1"}}`); code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", code)
	}
	list, _ = users.GetMany(ctx, []model.UserID{"user_1"})
	if len(list) != 0 {
		t.Errorf("Expected user to be deleted, got %+v", list)
	}

	t.Run("Bad payloads", func(t *testing.T) {
		for _, body := range []string{"not json", `{"type":"user.created","data":{}}`, `{"type":"session.created","data":{"id":"x"}}`} {
			if code := send(body); code != http.StatusBadRequest {
				t.Errorf("Expected 400 for %s, got %d", body, code)
			}
		}
	})
}

func TestClerkGetUserIdFromSession(t *testing.T) {
	provider := NewClerkAuthProvider("sk_test_dummy", setupUsers(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := provider.GetUserIdFromSession(req); err != ErrNotAuthenticated {
		t.Errorf("Expected ErrNotAuthenticated, got %v", err)
	}

	req = req.WithContext(ContextWithUserId(req.Context(), "user_9"))
	if id, err := provider.GetUserIdFromSession(req); err != nil || id != "user_9" {
		t.Errorf("Expected user_9, got %s (%v)", id, err)
	}
}

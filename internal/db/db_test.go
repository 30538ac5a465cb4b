package db

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

const failedToInitDB = "Failed to initialize database: %v"

const select1 = `SELECT 1`

const testEmail = "test@example.com"

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	SetLogger(zerolog.New(os.Stdout).Level(zerolog.ErrorLevel))

	db := NewSQLite(":memory:")
	if err := db.InitDb(); err != nil {
		t.Fatalf(failedToInitDB, err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSetLogger(t *testing.T) {
	logger := zerolog.New(os.Stdout).Level(zerolog.InfoLevel)
	SetLogger(logger)

	// This test mainly ensures the function doesn't panic
}

func TestNew(t *testing.T) {
	testCases := []struct {
		driver  string
		dialect Dialect
		wantErr bool
	}{
		{driver: "sqlite", dialect: DialectSQLite},
		{driver: "postgres", dialect: DialectPostgres},
		{driver: "mysql", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.driver, func(t *testing.T) {
			db, err := New(tc.driver, "dsn")
			if tc.wantErr {
				if err == nil {
					t.Error("Expected error for unsupported driver")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if db.Dialect() != tc.dialect {
				t.Errorf("Expected dialect %s, got %s", tc.dialect, db.Dialect())
			}
			if db.Get() != nil {
				t.Error("Expected connection to be nil before InitDb")
			}
		})
	}
}

func TestSQLiteSchema(t *testing.T) {
	db := newTestSQLite(t)
	ctx := context.Background()

	t.Run("Tables exist", func(t *testing.T) {
		for _, table := range []string{"users", "posts"} {
			var name string
			err := db.QueryRow(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
			if err != nil {
				t.Errorf("Expected table %s to exist: %v", table, err)
			}
		}
	})

	t.Run("Posts columns", func(t *testing.T) {
		rows, err := db.Query(ctx, "PRAGMA table_info(posts)")
		if err != nil {
			t.Fatalf("Failed to get posts table info: %v", err)
		}
		defer rows.Close()

		columns := make(map[string]bool)
		for rows.Next() {
			var cid int
			var name, dataType string
			var notNull, pk int
			var defaultValue sql.NullString
			if err := rows.Scan(&cid, &name, &dataType, &notNull, &defaultValue, &pk); err != nil {
				t.Fatalf("Failed to scan column info: %v", err)
			}
			columns[name] = true
		}

		expected := []string{"id", "title", "slug", "summary", "content", "content_hash", "featured_image",
			"seo_title", "seo_description", "status", "author_id", "views", "created_at", "updated_at", "published_at"}
		for _, col := range expected {
			if !columns[col] {
				t.Errorf("Expected posts table to have column %s", col)
			}
		}
	})

	t.Run("Foreign keys are enabled", func(t *testing.T) {
		var enabled int
		if err := db.QueryRow(ctx, "PRAGMA foreign_keys").Scan(&enabled); err != nil {
			t.Fatalf("Failed to check foreign keys: %v", err)
		}
		if enabled != 1 {
			t.Error("Expected foreign keys to be enabled")
		}
	})

	t.Run("InitDb is idempotent", func(t *testing.T) {
		if _, err := db.Get().Exec(sqliteSchema); err != nil {
			t.Errorf("Re-applying schema failed: %v", err)
		}
	})
}

func TestSQLiteConstraints(t *testing.T) {
	db := newTestSQLite(t)
	ctx := context.Background()
	now := time.Now().UTC()

	insert := `INSERT INTO posts (id, slug, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`

	if _, err := db.Exec(ctx, insert, "p1", "hello", "draft", now, now); err != nil {
		t.Fatalf("Failed to insert post: %v", err)
	}

	t.Run("Duplicate slug is a unique violation", func(t *testing.T) {
		_, err := db.Exec(ctx, insert, "p2", "hello", "draft", now, now)
		if err == nil {
			t.Fatal("Expected duplicate slug to fail")
		}
		if !IsUniqueViolation(err) {
			t.Errorf("Expected unique violation, got %v", err)
		}
	})

	t.Run("NULL slugs do not collide", func(t *testing.T) {
		for _, id := range []string{"n1", "n2"} {
			if _, err := db.Exec(ctx, insert, id, nil, "draft", now, now); err != nil {
				t.Errorf("Expected NULL slug insert to succeed: %v", err)
			}
		}
	})

	t.Run("Unknown status is rejected", func(t *testing.T) {
		_, err := db.Exec(ctx, insert, "p3", "other", "archived", now, now)
		if err == nil {
			t.Fatal("Expected CHECK constraint to reject status")
		}
		if IsUniqueViolation(err) {
			t.Error("CHECK failure must not be reported as a unique violation")
		}
	})

	t.Run("Timestamps round trip", func(t *testing.T) {
		var created time.Time
		var published sql.NullTime
		err := db.QueryRow(ctx, "SELECT created_at, published_at FROM posts WHERE id = ?", "p1").Scan(&created, &published)
		if err != nil {
			t.Fatalf("Failed to read timestamps: %v", err)
		}
		if !created.Equal(now) {
			t.Errorf("Expected created_at %v, got %v", now, created)
		}
		if published.Valid {
			t.Error("Expected published_at to be NULL")
		}
	})

	t.Run("Users", func(t *testing.T) {
		res, err := db.Exec(ctx, "INSERT INTO users (id, username, email) VALUES (?, ?, ?)", "u1", "user", testEmail)
		if err != nil {
			t.Fatalf("Failed to insert user: %v", err)
		}
		if n, _ := res.RowsAffected(); n != 1 {
			t.Errorf("Expected 1 row affected, got %d", n)
		}
	})
}

func TestIsUniqueViolation(t *testing.T) {
	if IsUniqueViolation(nil) {
		t.Error("nil is not a unique violation")
	}
	if IsUniqueViolation(errors.New("boom")) {
		t.Error("Plain errors are not unique violations")
	}
	if !IsUniqueViolation(&pgconn.PgError{Code: "23505"}) {
		t.Error("Expected Postgres 23505 to be a unique violation")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23514"}) {
		t.Error("Postgres check violations are not unique violations")
	}
}

func TestRebind(t *testing.T) {
	testCases := []struct {
		name     string
		dialect  Dialect
		query    string
		expected string
	}{
		{"SQLite untouched", DialectSQLite, "SELECT * FROM posts WHERE id = ?", "SELECT * FROM posts WHERE id = ?"},
		{"Postgres numbered", DialectPostgres, "UPDATE posts SET title = ?, slug = ? WHERE id = ?", "UPDATE posts SET title = $1, slug = $2 WHERE id = $3"},
		{"Literal kept", DialectPostgres, "SELECT '?' , id FROM posts WHERE id = ?", "SELECT '?' , id FROM posts WHERE id = $1"},
		{"No placeholders", DialectPostgres, select1, select1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Rebind(tc.dialect, tc.query); got != tc.expected {
				t.Errorf("Rebind() = %q, want %q", got, tc.expected)
			}
		})
	}
}

func TestUninitialized(t *testing.T) {
	db := NewSQLite(":memory:")
	defer db.Close()

	if _, err := db.Query(context.Background(), select1); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized from Query, got %v", err)
	}
	if _, err := db.Exec(context.Background(), select1); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized from Exec, got %v", err)
	}
}

func TestSQLiteInvalidSQL(t *testing.T) {
	db := newTestSQLite(t)

	if _, err := db.Query(context.Background(), "INVALID SQL SYNTAX"); err == nil {
		t.Error("Expected error for invalid SQL")
	}
	if _, err := db.Exec(context.Background(), "INVALID SQL SYNTAX"); err == nil {
		t.Error("Expected error for invalid SQL")
	}
}

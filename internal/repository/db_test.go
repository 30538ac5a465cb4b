package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/debemdeboas/the-press/internal/db"
	"github.com/debemdeboas/the-press/internal/model"
	"github.com/debemdeboas/the-press/internal/util/compression"
	"github.com/rs/zerolog"
)

func setupTestDb(t *testing.T) db.Db {
	t.Helper()
	quiet := zerolog.New(os.Stdout).Level(zerolog.ErrorLevel)
	db.SetLogger(quiet)
	SetLogger(quiet)

	testDB := db.NewSQLite(":memory:")
	if err := testDB.InitDb(); err != nil {
		t.Fatalf("Failed to setup test database: %v", err)
	}
	t.Cleanup(func() { testDB.Close() })
	return testDB
}

func newTestPost(repo *DBPostRepository, author, title string) model.Post {
	p := repo.NewPost()
	p.Title = title
	p.Slug = model.Slugify(title)
	p.Content = "<p>" + title + "</p>"
	p.AuthorID = model.UserID(author)
	return p
}

func TestInsertAndGet(t *testing.T) {
	repo := NewDBPostRepository(setupTestDb(t), compression.ZstdCompressor{})
	ctx := context.Background()

	post := newTestPost(repo, "author", "Hello World")
	post.Summary = "Summary"
	post.FeaturedImage = "https://cdn/img.png"
	post.SEOTitle = "SEO"
	post.SEODescription = "Desc"

	if err := repo.Insert(ctx, post); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := repo.Get(ctx, post.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if got.Title != post.Title || got.Slug != "hello-world" || got.Content != post.Content {
		t.Errorf("Post round trip mismatch: %+v", got)
	}
	if got.Summary != "Summary" || got.FeaturedImage != post.FeaturedImage || got.SEOTitle != "SEO" || got.SEODescription != "Desc" {
		t.Errorf("Optional fields lost: %+v", got)
	}
	if got.Status != model.StatusDraft {
		t.Errorf("Expected draft, got %s", got.Status)
	}
	if got.PublishedAt != nil {
		t.Errorf("Expected published_at to be nil, got %v", got.PublishedAt)
	}
	if got.AuthorID != "author" {
		t.Errorf("Expected author 'author', got %q", got.AuthorID)
	}
	if !got.CreatedAt.Equal(post.CreatedAt) {
		t.Errorf("Expected created_at %v, got %v", post.CreatedAt, got.CreatedAt)
	}
	if got.ContentHash == "" {
		t.Error("Expected content hash to be stored")
	}

	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestContentIsCompressedAtRest(t *testing.T) {
	database := setupTestDb(t)
	repo := NewDBPostRepository(database, compression.ZstdCompressor{})
	ctx := context.Background()

	post := newTestPost(repo, "author", "Compressed")
	if err := repo.Insert(ctx, post); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	var raw []byte
	if err := database.QueryRow(ctx, `SELECT content FROM posts WHERE id = ?`, post.ID).Scan(&raw); err != nil {
		t.Fatalf("Failed to read raw content: %v", err)
	}
	if string(raw) == post.Content {
		t.Error("Expected content to be stored compressed")
	}
}

func TestEmptySlugsAreNull(t *testing.T) {
	repo := NewDBPostRepository(setupTestDb(t), nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		p := repo.NewPost()
		p.AuthorID = "author"
		if err := repo.Insert(ctx, p); err != nil {
			t.Fatalf("Expected slugless draft %d to insert, got %v", i, err)
		}
	}

	exists, err := repo.SlugExists(ctx, "", "")
	if err != nil {
		t.Fatalf("SlugExists failed: %v", err)
	}
	if exists {
		t.Error("Empty slugs must not count as taken")
	}
}

func TestSlugUniqueness(t *testing.T) {
	repo := NewDBPostRepository(setupTestDb(t), nil)
	ctx := context.Background()

	first := newTestPost(repo, "author", "My Post")
	if err := repo.Insert(ctx, first); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	t.Run("SlugExists sees other posts", func(t *testing.T) {
		exists, err := repo.SlugExists(ctx, "my-post", "")
		if err != nil || !exists {
			t.Errorf("Expected slug to exist, got %v (%v)", exists, err)
		}
	})

	t.Run("SlugExists excludes the post itself", func(t *testing.T) {
		exists, err := repo.SlugExists(ctx, "my-post", first.ID)
		if err != nil || exists {
			t.Errorf("Expected own slug to be ignored, got %v (%v)", exists, err)
		}
	})

	t.Run("Index rejects duplicates on insert", func(t *testing.T) {
		dup := newTestPost(repo, "author", "My Post")
		if err := repo.Insert(ctx, dup); !errors.Is(err, ErrSlugTaken) {
			t.Errorf("Expected ErrSlugTaken, got %v", err)
		}
	})

	t.Run("Index rejects duplicates on update", func(t *testing.T) {
		other := newTestPost(repo, "author", "Other")
		if err := repo.Insert(ctx, other); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
		other.Slug = "my-post"
		if err := repo.Update(ctx, other); !errors.Is(err, ErrSlugTaken) {
			t.Errorf("Expected ErrSlugTaken, got %v", err)
		}
	})
}

func TestUpdate(t *testing.T) {
	repo := NewDBPostRepository(setupTestDb(t), nil)
	ctx := context.Background()

	post := newTestPost(repo, "author", "Original")
	if err := repo.Insert(ctx, post); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	reloaded := make(chan model.PostID, 1)
	repo.SetReloadNotifier(func(id model.PostID) { reloaded <- id })

	t.Run("Metadata change does not notify", func(t *testing.T) {
		updated := post.WithTitle("Renamed")
		if err := repo.Update(ctx, updated); err != nil {
			t.Fatalf("Update failed: %v", err)
		}

		select {
		case id := <-reloaded:
			t.Errorf("Unexpected reload notification for %s", id)
		case <-time.After(50 * time.Millisecond):
		}

		got, _ := repo.Get(ctx, post.ID)
		if got.Title != "Renamed" {
			t.Errorf("Expected title to be updated, got %q", got.Title)
		}
	})

	t.Run("Content change notifies", func(t *testing.T) {
		updated := post.WithContent("<p>Changed</p>")
		if err := repo.Update(ctx, updated); err != nil {
			t.Fatalf("Update failed: %v", err)
		}

		select {
		case id := <-reloaded:
			if id != post.ID {
				t.Errorf("Expected reload for %s, got %s", post.ID, id)
			}
		case <-time.After(time.Second):
			t.Error("Expected reload notification")
		}
	})

	t.Run("Status change notifies", func(t *testing.T) {
		current, _ := repo.Get(ctx, post.ID)
		if err := repo.Update(ctx, current.WithStatus(model.StatusPublished)); err != nil {
			t.Fatalf("Update failed: %v", err)
		}

		select {
		case <-reloaded:
		case <-time.After(time.Second):
			t.Error("Expected reload notification on status change")
		}
	})

	t.Run("Author and creation time are immutable", func(t *testing.T) {
		updated := post
		updated.AuthorID = "someone-else"
		updated.CreatedAt = time.Now().Add(-48 * time.Hour)
		if err := repo.Update(ctx, updated); err != nil {
			t.Fatalf("Update failed: %v", err)
		}

		got, _ := repo.Get(ctx, post.ID)
		if got.AuthorID != "author" {
			t.Errorf("Expected author to be unchanged, got %q", got.AuthorID)
		}
		if !got.CreatedAt.Equal(post.CreatedAt) {
			t.Errorf("Expected created_at to be unchanged, got %v", got.CreatedAt)
		}
	})

	t.Run("Unknown post", func(t *testing.T) {
		missing := repo.NewPost()
		if err := repo.Update(ctx, missing); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})
}

func TestListOrderingAndFilters(t *testing.T) {
	repo := NewDBPostRepository(setupTestDb(t), nil)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	titles := []string{"First", "Second", "Third"}
	for i, title := range titles {
		p := newTestPost(repo, "author", title)
		p.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		if i != 1 {
			p.Status = model.StatusPublished
			at := p.CreatedAt
			p.PublishedAt = &at
		}
		if err := repo.Insert(ctx, p); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}
	if err := repo.Insert(ctx, newTestPost(repo, "someone-else", "Foreign")); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	t.Run("ListByAuthor newest first", func(t *testing.T) {
		posts, err := repo.ListByAuthor(ctx, "author")
		if err != nil {
			t.Fatalf("ListByAuthor failed: %v", err)
		}
		if len(posts) != 3 {
			t.Fatalf("Expected 3 posts, got %d", len(posts))
		}
		want := []string{"Third", "Second", "First"}
		for i, p := range posts {
			if p.Title != want[i] {
				t.Errorf("Position %d: expected %s, got %s", i, want[i], p.Title)
			}
		}
	})

	t.Run("ListPublished only published", func(t *testing.T) {
		posts, err := repo.ListPublished(ctx)
		if err != nil {
			t.Fatalf("ListPublished failed: %v", err)
		}
		if len(posts) != 2 || posts[0].Title != "Third" || posts[1].Title != "First" {
			t.Errorf("Unexpected published list: %+v", posts)
		}
	})

	t.Run("GetPublishedBySlug", func(t *testing.T) {
		p, err := repo.GetPublishedBySlug(ctx, "third")
		if err != nil {
			t.Fatalf("GetPublishedBySlug failed: %v", err)
		}
		if p.PublishedAt == nil {
			t.Error("Expected published_at to be set")
		}

		if _, err := repo.GetPublishedBySlug(ctx, "second"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected drafts to be hidden, got %v", err)
		}
	})
}

func TestPublishedCacheInvalidation(t *testing.T) {
	repo := NewDBPostRepository(setupTestDb(t), nil)
	ctx := context.Background()

	p := newTestPost(repo, "author", "Cached")
	p.Status = model.StatusPublished
	now := time.Now().UTC()
	p.PublishedAt = &now
	if err := repo.Insert(ctx, p); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if _, err := repo.GetPublishedBySlug(ctx, "cached"); err != nil {
		t.Fatalf("GetPublishedBySlug failed: %v", err)
	}
	if repo.publishedCache.Len() != 1 {
		t.Fatalf("Expected post to be cached, cache has %d entries", repo.publishedCache.Len())
	}

	unpublished := p.WithStatus(model.StatusDraft)
	unpublished.PublishedAt = nil
	if err := repo.Update(ctx, unpublished); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if _, err := repo.GetPublishedBySlug(ctx, "cached"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected stale cache entry to be dropped, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo := NewDBPostRepository(setupTestDb(t), nil)
	ctx := context.Background()

	p := newTestPost(repo, "author", "Doomed")
	if err := repo.Insert(ctx, p); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if err := repo.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.Get(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected post to be gone, got %v", err)
	}
	if err := repo.Delete(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestHashComparison(t *testing.T) {
	repo := NewDBPostRepository(setupTestDb(t), nil)
	ctx := context.Background()

	p1 := newTestPost(repo, "author", "One")
	p1.Content = "Content 1"
	p2 := newTestPost(repo, "author", "Two")
	p2.Content = "Content 2"
	p3 := newTestPost(repo, "author", "Three")
	p3.Content = "Content 1"

	for _, p := range []model.Post{p1, p2, p3} {
		if err := repo.Insert(ctx, p); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	g1, _ := repo.Get(ctx, p1.ID)
	g2, _ := repo.Get(ctx, p2.ID)
	g3, _ := repo.Get(ctx, p3.ID)

	if g1.ContentHash == g2.ContentHash {
		t.Error("Different content should produce different hashes")
	}
	if g1.ContentHash != g3.ContentHash {
		t.Error("Same content should produce same hashes")
	}
}

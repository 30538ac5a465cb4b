package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/debemdeboas/the-press/internal/cache"
	"github.com/debemdeboas/the-press/internal/db"
	"github.com/debemdeboas/the-press/internal/model"
	"github.com/debemdeboas/the-press/internal/util"
	"github.com/debemdeboas/the-press/internal/util/compression"
	"github.com/google/uuid"
)

const postColumns = `id, title, slug, summary, content, content_hash, featured_image, seo_title, seo_description,
	status, author_id, views, created_at, updated_at, published_at`

type DBPostRepository struct { // implements PostRepository
	// Published posts keyed by slug, filled on read and dropped on every write.
	publishedCache *cache.Cache[string, model.Post]

	reloadNotifier func(model.PostID)

	db         db.Db
	compressor compression.Compressor
	now        func() time.Time
}

func NewDBPostRepository(database db.Db, compressor compression.Compressor) *DBPostRepository {
	if compressor == nil {
		compressor = compression.ZstdCompressor{}
	}
	return &DBPostRepository{
		publishedCache: cache.NewCache[string, model.Post](),

		db:         database,
		compressor: compressor,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (r *DBPostRepository) SetReloadNotifier(notifier func(model.PostID)) {
	r.reloadNotifier = notifier
}

func (r *DBPostRepository) NewPost() model.Post {
	now := r.now()

	return model.Post{
		ID:     model.PostID(uuid.New().String()),
		Status: model.StatusDraft,

		CreatedAt: now,
		UpdatedAt: now,
	}
}

// encode compresses the body and returns it with the hash of the compressed bytes.
func (r *DBPostRepository) encode(content string) ([]byte, string, error) {
	compressed, err := r.compressor.Compress([]byte(content))
	if err != nil {
		return nil, "", fmt.Errorf("error compressing content: %w", err)
	}
	return compressed, util.ContentHash(compressed), nil
}

func nullableSlug(slug string) any {
	if slug == "" {
		return nil
	}
	return slug
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func (r *DBPostRepository) Insert(ctx context.Context, post model.Post) error {
	compressed, hash, err := r.encode(post.Content)
	if err != nil {
		return err
	}

	res, err := r.db.Exec(ctx,
		`INSERT INTO posts (id, title, slug, summary, content, content_hash, featured_image, seo_title, seo_description,
			status, author_id, views, created_at, updated_at, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		post.ID, post.Title, nullableSlug(post.Slug), post.Summary, compressed, hash, post.FeaturedImage,
		post.SEOTitle, post.SEODescription, post.Status, post.AuthorID, post.Views,
		post.CreatedAt.UTC(), post.UpdatedAt.UTC(), nullableTime(post.PublishedAt),
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrSlugTaken
		}
		return fmt.Errorf("error saving post: %w", err)
	}

	r.invalidate(post.ID)
	repoLogger.Debug().Interface("result", res).Str("post_id", string(post.ID)).Msg("Post saved")
	return nil
}

// Update writes every editable column of post. author_id and created_at are never changed.
func (r *DBPostRepository) Update(ctx context.Context, post model.Post) error {
	var previousHash string
	var previousStatus model.Status
	err := r.db.QueryRow(ctx, `SELECT content_hash, status FROM posts WHERE id = ?`, post.ID).Scan(&previousHash, &previousStatus)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	} else if err != nil {
		return fmt.Errorf("error reading post: %w", err)
	}

	compressed, hash, err := r.encode(post.Content)
	if err != nil {
		return err
	}

	res, err := r.db.Exec(ctx,
		`UPDATE posts SET title = ?, slug = ?, summary = ?, content = ?, content_hash = ?, featured_image = ?,
			seo_title = ?, seo_description = ?, status = ?, updated_at = ?, published_at = ?
		WHERE id = ?`,
		post.Title, nullableSlug(post.Slug), post.Summary, compressed, hash, post.FeaturedImage,
		post.SEOTitle, post.SEODescription, post.Status, post.UpdatedAt.UTC(), nullableTime(post.PublishedAt),
		post.ID,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrSlugTaken
		}
		return fmt.Errorf("error saving post: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}

	r.invalidate(post.ID)

	if hash != previousHash || post.Status != previousStatus {
		repoLogger.Info().
			Str("post_id", string(post.ID)).
			Str("title", post.Title).
			Str("status", string(post.Status)).
			Msg("Post changed, reloading")
		if r.reloadNotifier != nil {
			go r.reloadNotifier(post.ID)
		}
	}
	return nil
}

func (r *DBPostRepository) Delete(ctx context.Context, id model.PostID) error {
	res, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error deleting post: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}

	r.invalidate(id)
	repoLogger.Info().Str("post_id", string(id)).Msg("Post deleted")
	return nil
}

func (r *DBPostRepository) invalidate(id model.PostID) {
	r.publishedCache.DeleteFunc(func(_ string, p model.Post) bool {
		return p.ID == id
	})
}

func (r *DBPostRepository) Get(ctx context.Context, id model.PostID) (model.Post, error) {
	posts, err := r.query(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
	if err != nil {
		return model.Post{}, err
	}
	if len(posts) == 0 {
		return model.Post{}, ErrNotFound
	}
	return posts[0], nil
}

func (r *DBPostRepository) GetPublishedBySlug(ctx context.Context, slug string) (model.Post, error) {
	if post, ok := r.publishedCache.Get(slug); ok {
		return post, nil
	}

	posts, err := r.query(ctx, `SELECT `+postColumns+` FROM posts WHERE slug = ? AND status = ?`, slug, model.StatusPublished)
	if err != nil {
		return model.Post{}, err
	}
	if len(posts) == 0 {
		return model.Post{}, ErrNotFound
	}

	r.publishedCache.Set(slug, posts[0])
	return posts[0], nil
}

func (r *DBPostRepository) SlugExists(ctx context.Context, slug string, exclude model.PostID) (bool, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM posts WHERE slug = ? AND id <> ?`, slug, exclude).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("error checking slug: %w", err)
	}
	return n > 0, nil
}

func (r *DBPostRepository) ListByAuthor(ctx context.Context, author model.UserID) ([]model.Post, error) {
	return r.query(ctx, `SELECT `+postColumns+` FROM posts WHERE author_id = ?`, author)
}

func (r *DBPostRepository) ListPublished(ctx context.Context) ([]model.Post, error) {
	return r.query(ctx, `SELECT `+postColumns+` FROM posts WHERE status = ?`, model.StatusPublished)
}

// query scans, decompresses and sorts the matching posts, newest first.
func (r *DBPostRepository) query(ctx context.Context, query string, args ...any) ([]model.Post, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying posts: %w", err)
	}
	defer rows.Close()

	posts := make([]model.Post, 0)
	for rows.Next() {
		var post model.Post
		var compressed []byte
		var slug, author sql.NullString
		var publishedAt sql.NullTime

		err := rows.Scan(&post.ID, &post.Title, &slug, &post.Summary, &compressed, &post.ContentHash,
			&post.FeaturedImage, &post.SEOTitle, &post.SEODescription, &post.Status, &author, &post.Views,
			&post.CreatedAt, &post.UpdatedAt, &publishedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning post: %w", err)
		}

		post.Slug = slug.String
		post.AuthorID = model.UserID(author.String)
		if publishedAt.Valid {
			t := publishedAt.Time.UTC()
			post.PublishedAt = &t
		}
		post.CreatedAt = post.CreatedAt.UTC()
		post.UpdatedAt = post.UpdatedAt.UTC()

		if len(compressed) > 0 {
			content, err := r.compressor.Decompress(compressed)
			if err != nil {
				return nil, fmt.Errorf("error decompressing content: %w", err)
			}
			post.Content = string(content)
		}

		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}

	slices.SortStableFunc(posts, func(a, b model.Post) int {
		return -a.CreatedAt.Compare(b.CreatedAt)
	})

	return posts, nil
}

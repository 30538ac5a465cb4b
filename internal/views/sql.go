package views

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/debemdeboas/the-press/internal/db"
	"github.com/debemdeboas/the-press/internal/model"
)

// SQLCounter keeps counts in the views column of the posts table.
type SQLCounter struct { // implements Counter
	db db.Db
}

func NewSQLCounter(database db.Db) *SQLCounter {
	return &SQLCounter{db: database}
}

func (c *SQLCounter) Increment(ctx context.Context, slug string) (int64, error) {
	res, err := c.db.Exec(ctx, `UPDATE posts SET views = views + 1 WHERE slug = ? AND status = ?`, slug, model.StatusPublished)
	if err != nil {
		return 0, fmt.Errorf("error incrementing views: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return 0, ErrUnknownSlug
	}
	return c.Get(ctx, slug)
}

func (c *SQLCounter) Get(ctx context.Context, slug string) (int64, error) {
	var views int64
	err := c.db.QueryRow(ctx, `SELECT views FROM posts WHERE slug = ? AND status = ?`, slug, model.StatusPublished).Scan(&views)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrUnknownSlug
	} else if err != nil {
		return 0, fmt.Errorf("error reading views: %w", err)
	}
	return views, nil
}

func (c *SQLCounter) Popular(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := c.db.Query(ctx,
		`SELECT slug, views FROM posts WHERE status = ? AND slug IS NOT NULL ORDER BY views DESC, published_at DESC LIMIT ?`,
		model.StatusPublished, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying popular posts: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, min(limit, 64))
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Slug, &e.Views); err != nil {
			return nil, fmt.Errorf("error scanning popular posts: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

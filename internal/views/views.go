// Package views counts article reads and ranks the most read articles.
package views

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

var ErrUnknownSlug = errors.New("views: no published post with this slug")

var viewsLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	viewsLogger = l
}

type Entry struct {
	Slug  string `json:"slug"`
	Views int64  `json:"views"`
}

type Counter interface {
	// Increment adds one read to the article and returns the new total.
	Increment(ctx context.Context, slug string) (int64, error)
	Get(ctx context.Context, slug string) (int64, error)
	// Popular returns at most limit articles, most read first.
	Popular(ctx context.Context, limit int) ([]Entry, error)
}

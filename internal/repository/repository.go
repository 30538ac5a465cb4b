// Package repository persists posts and users in the relational store.
package repository

import (
	"context"
	"errors"

	"github.com/debemdeboas/the-press/internal/model"
	"github.com/rs/zerolog"
)

var (
	ErrNotFound  = errors.New("repository: post not found")
	ErrSlugTaken = errors.New("repository: slug already exists")
)

var repoLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	repoLogger = l
}

type PostRepository interface {
	// NewPost returns an unsaved post with a fresh id and creation timestamps.
	NewPost() model.Post

	Insert(ctx context.Context, post model.Post) error
	Update(ctx context.Context, post model.Post) error
	Delete(ctx context.Context, id model.PostID) error

	Get(ctx context.Context, id model.PostID) (model.Post, error)
	GetPublishedBySlug(ctx context.Context, slug string) (model.Post, error)

	// SlugExists reports whether another post than exclude already uses slug.
	SlugExists(ctx context.Context, slug string, exclude model.PostID) (bool, error)

	// ListByAuthor returns the author's posts, newest first.
	ListByAuthor(ctx context.Context, author model.UserID) ([]model.Post, error)
	// ListPublished returns every published post, newest first.
	ListPublished(ctx context.Context) ([]model.Post, error)

	// SetReloadNotifier sets a function that will be called when a post's content changes.
	SetReloadNotifier(notifier func(model.PostID))
}

type UserRepository interface {
	Upsert(ctx context.Context, user model.User) error
	Delete(ctx context.Context, id model.UserID) error
	List(ctx context.Context) ([]model.User, error)
	GetMany(ctx context.Context, ids []model.UserID) ([]model.User, error)
}

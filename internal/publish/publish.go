// Package publish implements saving, listing, toggling and deleting posts on behalf of an
// authenticated author.
package publish

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/debemdeboas/the-press/internal/model"
	"github.com/debemdeboas/the-press/internal/repository"
	"github.com/rs/zerolog"
)

var (
	ErrSlugExists           = errors.New("publish: slug already exists")
	ErrNotFound             = errors.New("publish: post not found")
	ErrConfirmationRequired = errors.New("publish: deletion must be confirmed")
	ErrNoAuthor             = errors.New("publish: author required")
)

var publishLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	publishLogger = l
}

type Controller struct {
	posts repository.PostRepository

	// When set, every save of a published post moves published_at forward.
	refreshPublishedAt bool

	now func() time.Time
}

func NewController(posts repository.PostRepository, refreshPublishedAt bool) *Controller {
	return &Controller{
		posts:              posts,
		refreshPublishedAt: refreshPublishedAt,
		now:                func() time.Time { return time.Now().UTC() },
	}
}

// Save validates doc for target and persists it with a single insert or update. The
// returned post is the persisted row. On error nothing has been written.
func (c *Controller) Save(ctx context.Context, doc model.Post, target model.Status, author model.UserID) (model.Post, error) {
	if author == "" {
		return model.Post{}, ErrNoAuthor
	}
	target, err := model.ParseStatus(string(target))
	if err != nil {
		return model.Post{}, err
	}

	doc = doc.EnsureSlug()
	if target == model.StatusPublished {
		if err := doc.ValidateForPublish(); err != nil {
			return model.Post{}, err
		}
	}

	var existing *model.Post
	if !doc.IsNew() {
		p, err := c.owned(ctx, doc.ID, author)
		if err != nil {
			return model.Post{}, err
		}
		existing = &p
	}

	if doc.Slug != "" {
		taken, err := c.posts.SlugExists(ctx, doc.Slug, doc.ID)
		if err != nil {
			return model.Post{}, err
		}
		if taken {
			return model.Post{}, ErrSlugExists
		}
	}

	now := c.now()
	row := doc
	row.Status = target
	row.UpdatedAt = now

	if existing == nil {
		fresh := c.posts.NewPost()
		row.ID = fresh.ID
		row.CreatedAt = now
		row.AuthorID = author
		row.Views = 0
	} else {
		row.CreatedAt = existing.CreatedAt
		row.AuthorID = existing.AuthorID
		row.Views = existing.Views
	}
	row.PublishedAt = c.stampPublished(existing, target, now)

	if existing == nil {
		err = c.posts.Insert(ctx, row)
	} else {
		err = c.posts.Update(ctx, row)
	}
	if errors.Is(err, repository.ErrSlugTaken) {
		return model.Post{}, ErrSlugExists
	} else if err != nil {
		return model.Post{}, err
	}

	publishLogger.Info().
		Str("post_id", string(row.ID)).
		Str("status", string(row.Status)).
		Bool("created", existing == nil).
		Msg("Post saved")
	return row, nil
}

// stampPublished returns the published_at value for a post moving to target.
func (c *Controller) stampPublished(existing *model.Post, target model.Status, now time.Time) *time.Time {
	if target != model.StatusPublished {
		return nil
	}
	if existing != nil && existing.Status == model.StatusPublished && existing.PublishedAt != nil && !c.refreshPublishedAt {
		return existing.PublishedAt
	}
	return &now
}

func (c *Controller) owned(ctx context.Context, id model.PostID, owner model.UserID) (model.Post, error) {
	post, err := c.posts.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Post{}, ErrNotFound
	} else if err != nil {
		return model.Post{}, err
	}
	if post.AuthorID != owner {
		return model.Post{}, ErrNotFound
	}
	return post, nil
}

// List returns the owner's posts, newest first.
func (c *Controller) List(ctx context.Context, owner model.UserID) ([]model.Post, error) {
	if owner == "" {
		return nil, ErrNoAuthor
	}
	return c.posts.ListByAuthor(ctx, owner)
}

func (c *Controller) Get(ctx context.Context, id model.PostID, owner model.UserID) (model.Post, error) {
	return c.owned(ctx, id, owner)
}

// ToggleStatus flips the post between draft and published. Only status, updated_at and
// published_at change. A post missing required fields cannot be published.
func (c *Controller) ToggleStatus(ctx context.Context, id model.PostID, owner model.UserID) (model.Post, error) {
	post, err := c.owned(ctx, id, owner)
	if err != nil {
		return model.Post{}, err
	}

	target := model.StatusPublished
	if post.Published() {
		target = model.StatusDraft
	}
	if target == model.StatusPublished {
		if err := post.ValidateForPublish(); err != nil {
			return model.Post{}, err
		}
	}

	now := c.now()
	updated := post.WithStatus(target)
	updated.UpdatedAt = now
	updated.PublishedAt = c.stampPublished(&post, target, now)

	if err := c.posts.Update(ctx, updated); err != nil {
		return model.Post{}, fmt.Errorf("error toggling post status: %w", err)
	}

	publishLogger.Info().
		Str("post_id", string(id)).
		Str("status", string(target)).
		Msg("Post status toggled")
	return updated, nil
}

// Delete removes the post. confirmed must be true; there is no undo.
func (c *Controller) Delete(ctx context.Context, id model.PostID, owner model.UserID, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	if _, err := c.owned(ctx, id, owner); err != nil {
		return err
	}
	if err := c.posts.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	publishLogger.Info().Str("post_id", string(id)).Msg("Post deleted")
	return nil
}

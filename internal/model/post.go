// Package model defines core data structures and types for the publishing workflow.
package model

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"time"
)

type PostID string

type UserID string

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusDraft, StatusPublished:
		return Status(s), nil
	case "":
		return StatusDraft, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Post is one article as edited in the admin area and persisted in the posts table.
// A zero ID means the post has not been saved yet.
type Post struct {
	ID PostID `json:"id,omitempty"`

	Title          string `json:"title"`
	Slug           string `json:"slug"`
	Summary        string `json:"summary"`
	Content        string `json:"content"`
	FeaturedImage  string `json:"featured_image"`
	SEOTitle       string `json:"seo_title"`
	SEODescription string `json:"seo_description"`

	Status Status `json:"status"`

	AuthorID UserID `json:"author_id,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PublishedAt *time.Time `json:"published_at"`

	// Used for cache busting of rendered articles.
	ContentHash string `json:"-"`

	Views int64 `json:"views"`
}

func (p Post) IsNew() bool {
	return p.ID == ""
}

// Published mirrors Status for callers that expect the boolean row shape.
func (p Post) Published() bool {
	return p.Status == StatusPublished
}

func (p Post) MarshalJSON() ([]byte, error) {
	type plain Post
	return json.Marshal(struct {
		plain
		Published bool `json:"published"`
	}{
		plain:     plain(p),
		Published: p.Published(),
	})
}

// UnmarshalJSON also accepts the camelCase aliases of the text fields. A canonical key wins
// over its alias.
func (p *Post) UnmarshalJSON(data []byte) error {
	type plain Post
	if err := json.Unmarshal(data, (*plain)(p)); err != nil {
		return err
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	for _, alias := range slices.Sorted(maps.Keys(fieldAliases)) {
		f := fieldAliases[alias]
		raw, ok := keys[alias]
		if !ok {
			continue
		}
		if _, ok := keys[string(f)]; ok {
			continue
		}
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("field %s: %w", alias, err)
		}
		*p = p.With(f, v)
	}
	return nil
}

type User struct {
	ID        UserID    `json:"id"`
	Username  string    `json:"username,omitempty"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

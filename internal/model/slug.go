package model

import (
	"regexp"
	"strings"
)

var slugSeparators = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases title, collapses every run of characters outside [a-z0-9] into a
// single hyphen and trims hyphens from both ends.
func Slugify(title string) string {
	s := slugSeparators.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(s, "-")
}

// EnsureSlug derives the slug from the title when it is empty.
func (p Post) EnsureSlug() Post {
	if p.Slug == "" {
		p.Slug = Slugify(p.Title)
	}
	return p
}

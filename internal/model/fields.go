package model

import "fmt"

// Field names one editable attribute of a Post.
type Field string

const (
	FieldTitle          Field = "title"
	FieldSlug           Field = "slug"
	FieldSummary        Field = "summary"
	FieldContent        Field = "content"
	FieldFeaturedImage  Field = "featured_image"
	FieldSEOTitle       Field = "seo_title"
	FieldSEODescription Field = "seo_description"
)

var fieldLabels = map[Field]string{
	FieldTitle:          "Title",
	FieldSlug:           "Slug",
	FieldSummary:        "Excerpt",
	FieldContent:        "Content",
	FieldFeaturedImage:  "Featured Image",
	FieldSEOTitle:       "SEO Title",
	FieldSEODescription: "SEO Description",
}

// fieldAliases accepts the camelCase names used by editor clients.
var fieldAliases = map[string]Field{
	"excerpt":        FieldSummary,
	"featuredImage":  FieldFeaturedImage,
	"image_url":      FieldFeaturedImage,
	"seoTitle":       FieldSEOTitle,
	"seoDescription": FieldSEODescription,
}

func (f Field) Label() string {
	if l, ok := fieldLabels[f]; ok {
		return l
	}
	return string(f)
}

func ParseField(name string) (Field, error) {
	if _, ok := fieldLabels[Field(name)]; ok {
		return Field(name), nil
	}
	if f, ok := fieldAliases[name]; ok {
		return f, nil
	}
	return "", fmt.Errorf("unknown field %q", name)
}

// Get returns the current value of a text field.
func (p Post) Get(f Field) string {
	switch f {
	case FieldTitle:
		return p.Title
	case FieldSlug:
		return p.Slug
	case FieldSummary:
		return p.Summary
	case FieldContent:
		return p.Content
	case FieldFeaturedImage:
		return p.FeaturedImage
	case FieldSEOTitle:
		return p.SEOTitle
	case FieldSEODescription:
		return p.SEODescription
	}
	return ""
}

// With returns a copy of p with the given field replaced. Unknown fields leave p unchanged.
func (p Post) With(f Field, value string) Post {
	switch f {
	case FieldTitle:
		p.Title = value
	case FieldSlug:
		p.Slug = value
	case FieldSummary:
		p.Summary = value
	case FieldContent:
		p.Content = value
	case FieldFeaturedImage:
		p.FeaturedImage = value
	case FieldSEOTitle:
		p.SEOTitle = value
	case FieldSEODescription:
		p.SEODescription = value
	}
	return p
}

func (p Post) WithTitle(v string) Post          { return p.With(FieldTitle, v) }
func (p Post) WithSlug(v string) Post           { return p.With(FieldSlug, v) }
func (p Post) WithSummary(v string) Post        { return p.With(FieldSummary, v) }
func (p Post) WithContent(v string) Post        { return p.With(FieldContent, v) }
func (p Post) WithFeaturedImage(v string) Post  { return p.With(FieldFeaturedImage, v) }
func (p Post) WithSEOTitle(v string) Post       { return p.With(FieldSEOTitle, v) }
func (p Post) WithSEODescription(v string) Post { return p.With(FieldSEODescription, v) }

func (p Post) WithStatus(s Status) Post {
	p.Status = s
	return p
}

package model

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// PublishRequired lists, in display order, the fields a published post must carry.
var PublishRequired = []Field{
	FieldTitle,
	FieldContent,
	FieldSummary,
	FieldFeaturedImage,
	FieldSlug,
	FieldSEOTitle,
	FieldSEODescription,
}

// MissingFieldsError reports every required field that was empty.
type MissingFieldsError struct {
	Fields []Field
}

func (e *MissingFieldsError) Labels() []string {
	labels := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		labels[i] = f.Label()
	}
	return labels
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Labels(), ", ")
}

// ValidateForPublish checks the required-field rule of the published state. It returns a
// *MissingFieldsError naming all empty fields, or nil.
func (p Post) ValidateForPublish() error {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Required),
		validation.Field(&p.Content, validation.Required),
		validation.Field(&p.Summary, validation.Required),
		validation.Field(&p.FeaturedImage, validation.Required),
		validation.Field(&p.Slug, validation.Required),
		validation.Field(&p.SEOTitle, validation.Required),
		validation.Field(&p.SEODescription, validation.Required),
	)
	if err == nil {
		return nil
	}

	var errs validation.Errors
	if !errors.As(err, &errs) {
		return err
	}

	missing := &MissingFieldsError{}
	for _, f := range PublishRequired {
		if _, ok := errs[string(f)]; ok {
			missing.Fields = append(missing.Fields, f)
		}
	}
	return missing
}

package editor

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

type CommandName string

const (
	CmdToggleBold    CommandName = "toggle-bold"
	CmdToggleItalic  CommandName = "toggle-italic"
	CmdToggleHeading CommandName = "toggle-heading"
	CmdToggleList    CommandName = "toggle-list"
	CmdSetAlignment  CommandName = "set-alignment"
	CmdInsertLink    CommandName = "insert-link"
	CmdInsertImage   CommandName = "insert-image"
)

const (
	ListBullet  = "bullet"
	ListOrdered = "ordered"
)

// Command is one formatting or insertion request sent to the widget. Only the argument
// matching Name is read.
type Command struct {
	Name  CommandName `json:"name"`
	Level int         `json:"level,omitempty"`
	Kind  string      `json:"kind,omitempty"`
	Dir   string      `json:"dir,omitempty"`
	URL   string      `json:"url,omitempty"`
}

func (c Command) Validate() error {
	switch c.Name {
	case CmdToggleBold, CmdToggleItalic:
		return nil
	case CmdToggleHeading:
		return validation.ValidateStruct(&c,
			validation.Field(&c.Level, validation.Required, validation.Min(1), validation.Max(6)),
		)
	case CmdToggleList:
		return validation.ValidateStruct(&c,
			validation.Field(&c.Kind, validation.Required, validation.In(ListBullet, ListOrdered)),
		)
	case CmdSetAlignment:
		return validation.ValidateStruct(&c,
			validation.Field(&c.Dir, validation.Required, validation.In("left", "center", "right", "justify")),
		)
	case CmdInsertLink, CmdInsertImage:
		return validation.ValidateStruct(&c,
			validation.Field(&c.URL, validation.Required, validation.By(isLinkTarget)),
		)
	default:
		return fmt.Errorf("unknown command %q", c.Name)
	}
}

// isLinkTarget accepts absolute URLs and site relative paths such as /uploads/a.png.
func isLinkTarget(value any) error {
	s, _ := value.(string)
	if len(s) > 0 && s[0] == '/' && (len(s) == 1 || s[1] != '/') {
		return nil
	}
	return is.URL.Validate(s)
}

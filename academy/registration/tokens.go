package registration

import (
	"fmt"
	"strings"
)

// Namespace prefixes every callback token produced by this package.
const Namespace = "reg"

// Action is the verb of a callback token.
type Action string

const (
	ActionStart   Action = "start"
	ActionCancel  Action = "cancel"
	ActionConfirm Action = "confirm"
	ActionEdit    Action = "edit"
	ActionCourse  Action = "course"
	ActionLevel   Action = "level"
	ActionSection Action = "section"
	ActionBack    Action = "back"
)

// Back targets and edit targets carried in Selection.Value.
const (
	BackCourses = "courses"
	BackLevels  = "levels"
	BackReview  = "review"

	FieldCourse  = "course"
	FieldLevel   = "level"
	FieldSection = "section"
	FieldName    = "name"
	FieldAge     = "age"
	FieldPhone   = "phone"
)

// Selection is a parsed callback token "reg:<action>[:<value>]".
type Selection struct {
	Action Action
	Value  string
}

// Token encodes s back to its wire form.
func (s Selection) Token() string {
	if s.Value == "" {
		return Namespace + ":" + string(s.Action)
	}
	return Namespace + ":" + string(s.Action) + ":" + s.Value
}

func tok(a Action, value string) string {
	return Selection{Action: a, Value: value}.Token()
}

// ParseToken decodes a callback token. Tokens outside the namespace, with an
// unknown action or with a value where none belongs fail with ErrUnknownSelection.
func ParseToken(data string) (Selection, error) {
	parts := strings.SplitN(data, ":", 3)
	if len(parts) < 2 || parts[0] != Namespace || parts[1] == "" {
		return Selection{}, fmt.Errorf("parse token %q: %w", data, ErrUnknownSelection)
	}
	sel := Selection{Action: Action(parts[1])}
	if len(parts) == 3 {
		sel.Value = parts[2]
	}
	switch sel.Action {
	case ActionStart, ActionCancel, ActionConfirm:
		if sel.Value != "" {
			return Selection{}, fmt.Errorf("parse token %q: %w", data, ErrUnknownSelection)
		}
	case ActionEdit:
	case ActionCourse, ActionLevel, ActionSection, ActionBack:
		if sel.Value == "" {
			return Selection{}, fmt.Errorf("parse token %q: %w", data, ErrUnknownSelection)
		}
	default:
		return Selection{}, fmt.Errorf("parse token %q: %w", data, ErrUnknownSelection)
	}
	return sel, nil
}

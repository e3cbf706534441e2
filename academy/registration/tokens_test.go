package registration

import (
	"errors"
	"testing"
)

func TestParseToken(t *testing.T) {
	good := map[string]Selection{
		"reg:start":          {Action: ActionStart},
		"reg:cancel":         {Action: ActionCancel},
		"reg:confirm":        {Action: ActionConfirm},
		"reg:edit":           {Action: ActionEdit},
		"reg:edit:phone":     {Action: ActionEdit, Value: FieldPhone},
		"reg:course:english": {Action: ActionCourse, Value: "english"},
		"reg:back:levels":    {Action: ActionBack, Value: BackLevels},
	}
	for in, want := range good {
		got, err := ParseToken(in)
		if err != nil || got != want {
			t.Errorf("ParseToken(%q) = %+v, %v", in, got, err)
		}
		if got.Token() != in {
			t.Errorf("Token() = %q, want %q", got.Token(), in)
		}
	}

	for _, in := range []string{"", "reg", "reg:", "menu:start", "reg:fly", "reg:start:now", "reg:course", "reg:back:"} {
		if _, err := ParseToken(in); !errors.Is(err, ErrUnknownSelection) {
			t.Errorf("ParseToken(%q) err = %v", in, err)
		}
	}
}

func TestMenusUseOwnNamespace(t *testing.T) {
	menus := []*Keyboard{StartMenu(), CourseMenu(false), CourseMenu(true), LevelMenu(), SectionMenu("english"), SectionMenu("math"), ReviewMenu(), EditMenu("german")}
	for _, kb := range menus {
		for _, row := range kb.Rows {
			for _, b := range row {
				if _, err := ParseToken(b.Token); err != nil {
					t.Fatalf("button %q carries bad token %q", b.Label, b.Token)
				}
			}
		}
	}
	if kb := ContactMenu(); kb.Kind != KeyboardContact || kb.Rows[0][0].Token != "" {
		t.Fatalf("contact menu = %+v", kb)
	}
}

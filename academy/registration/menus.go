package registration

import "github.com/m3rciful/iteachbot/core/telegram/keyboard"

// KeyboardKind tells the transport how to render a Keyboard.
type KeyboardKind int

const (
	KeyboardInline KeyboardKind = iota + 1
	// KeyboardContact is a one-time reply keyboard whose single button shares the user's phone.
	KeyboardContact
	// KeyboardRemove hides any reply keyboard left on the client.
	KeyboardRemove
)

// Button is a labelled action. Token is empty for the contact request button.
type Button struct {
	Label string
	Token string
}

// Keyboard is a transport-independent menu description.
type Keyboard struct {
	Kind KeyboardKind
	Rows [][]Button
}

const (
	labelStart      = "🚀 Ro'yxatdan o'tish"
	labelCancel     = "❌ Bekor qilish"
	labelBackCourse = "⬅️ Ortga (Kurslar)"
	labelBack       = "⬅️ Ortga"
	labelConfirm    = "✅ Tasdiqlash"
	labelEdit       = "✏️ O'zgartirish"
	labelBackReview = "⬅️ Ortga (Ko'rib chiqish)"
	labelContact    = "📱 Raqamni ulashish"
)

func cancelRow() []Button {
	return []Button{{Label: labelCancel, Token: tok(ActionCancel, "")}}
}

func optionRows(opts []Option, action Action, perRow int) [][]Button {
	buttons := make([]Button, len(opts))
	for i, o := range opts {
		buttons[i] = Button{Label: o.Label, Token: tok(action, o.Key)}
	}
	return keyboard.Chunk(buttons, perRow)
}

// StartMenu offers the single "register" button.
func StartMenu() *Keyboard {
	return &Keyboard{Kind: KeyboardInline, Rows: [][]Button{{{Label: labelStart, Token: tok(ActionStart, "")}}}}
}

// CourseMenu lists every course, two per row, then cancel. toReview adds a
// back-to-review row for drafts that are already complete.
func CourseMenu(toReview bool) *Keyboard {
	rows := optionRows(courses, ActionCourse, 2)
	if toReview {
		rows = append(rows, []Button{{Label: labelBackReview, Token: tok(ActionBack, BackReview)}})
	}
	return &Keyboard{Kind: KeyboardInline, Rows: append(rows, cancelRow())}
}

// LevelMenu lists A1..C2 two per row with a back-to-courses row.
func LevelMenu() *Keyboard {
	rows := optionRows(levels, ActionLevel, 2)
	rows = append(rows, []Button{{Label: labelBackCourse, Token: tok(ActionBack, BackCourses)}})
	return &Keyboard{Kind: KeyboardInline, Rows: append(rows, cancelRow())}
}

// SectionMenu lists the sections of course. Back leads to the level menu when
// the course has levels, otherwise to the course menu.
func SectionMenu(course string) *Keyboard {
	rows := optionRows(SectionsFor(course), ActionSection, 2)
	rows = append(rows, []Button{{Label: labelBack, Token: tok(ActionBack, sectionBackTarget(course))}})
	return &Keyboard{Kind: KeyboardInline, Rows: append(rows, cancelRow())}
}

func sectionBackTarget(course string) string {
	if RequiresLevel(course) {
		return BackLevels
	}
	return BackCourses
}

// ReviewMenu offers confirm and edit side by side, then cancel.
func ReviewMenu() *Keyboard {
	return &Keyboard{Kind: KeyboardInline, Rows: [][]Button{
		{{Label: labelConfirm, Token: tok(ActionConfirm, "")}, {Label: labelEdit, Token: tok(ActionEdit, "")}},
		cancelRow(),
	}}
}

// EditMenu lists editable fields; the level button appears only for courses with levels.
func EditMenu(course string) *Keyboard {
	rows := [][]Button{{
		{Label: "📚 Kurs", Token: tok(ActionEdit, FieldCourse)},
		{Label: "🗂 Bo'lim", Token: tok(ActionEdit, FieldSection)},
	}}
	if RequiresLevel(course) {
		rows = append(rows, []Button{{Label: "📊 Daraja", Token: tok(ActionEdit, FieldLevel)}})
	}
	rows = append(rows,
		[]Button{{Label: "👤 Ism familiya", Token: tok(ActionEdit, FieldName)}, {Label: "🎂 Yosh", Token: tok(ActionEdit, FieldAge)}},
		[]Button{{Label: "📱 Telefon", Token: tok(ActionEdit, FieldPhone)}},
		[]Button{{Label: labelBackReview, Token: tok(ActionBack, BackReview)}},
		cancelRow(),
	)
	return &Keyboard{Kind: KeyboardInline, Rows: rows}
}

// ContactMenu asks the client to share its own phone number.
func ContactMenu() *Keyboard {
	return &Keyboard{Kind: KeyboardContact, Rows: [][]Button{{{Label: labelContact}}}}
}

// RemoveMenu clears a reply keyboard.
func RemoveMenu() *Keyboard {
	return &Keyboard{Kind: KeyboardRemove}
}

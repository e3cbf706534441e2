// Package registration implements the enrollment conversation: the course
// catalog, input validation, menus, message texts and the step machine that
// walks a user from course choice to a stored registration.
package registration

// Option is one selectable catalog entry.
type Option struct {
	Key   string
	Label string
}

var courses = []Option{
	{"english", "🇬🇧 Ingliz tili"},
	{"german", "🇩🇪 Nemis tili"},
	{"math", "🧮 Matematika"},
	{"uzbek", "🇺🇿 Ona tili"},
	{"history", "📜 Tarix"},
	{"biology", "🧬 Biologiya"},
	{"chemistry", "⚗️ Kimyo"},
}

var coursesWithLevel = map[string]struct{}{
	"english": {},
	"german":  {},
}

var levels = []Option{
	{"A1", "A1 • Boshlang'ich"},
	{"A2", "A2 • Elementar"},
	{"B1", "B1 • O'rta"},
	{"B2", "B2 • Yuqori o'rta"},
	{"C1", "C1 • Ilg'or"},
	{"C2", "C2 • Mukammal"},
}

var (
	sectionsEnglish = []Option{
		{"kids", "👶 Bolalar"},
		{"general", "📘 Umumiy"},
		{"cefr", "🧭 CEFR"},
		{"ielts", "🎓 IELTS"},
	}
	sectionsGerman = []Option{
		{"kids", "👶 Bolalar"},
		{"general", "📘 Umumiy"},
		{"certificate", "🏅 Sertifikat"},
	}
	sectionsDefault = []Option{
		{"kids", "👶 Bolalar"},
		{"general", "📘 Umumiy"},
		{"certificate", "🏅 Sertifikat"},
	}
)

// Courses returns the course catalog in display order.
func Courses() []Option { return append([]Option(nil), courses...) }

// Levels returns the proficiency scale A1..C2.
func Levels() []Option { return append([]Option(nil), levels...) }

// RequiresLevel reports whether course needs a proficiency level before its section.
func RequiresLevel(course string) bool {
	_, ok := coursesWithLevel[course]
	return ok
}

// SectionsFor returns the sections offered for course.
func SectionsFor(course string) []Option {
	var src []Option
	switch course {
	case "english":
		src = sectionsEnglish
	case "german":
		src = sectionsGerman
	default:
		src = sectionsDefault
	}
	return append([]Option(nil), src...)
}

// CourseLabel returns the display label of a course key.
func CourseLabel(key string) (string, bool) { return lookup(courses, key) }

// LevelLabel returns the display label of a level key.
func LevelLabel(key string) (string, bool) { return lookup(levels, key) }

// SectionLabel returns the display label of a section key, valid only within course.
func SectionLabel(course, key string) (string, bool) {
	if _, ok := CourseLabel(course); !ok {
		return "", false
	}
	return lookup(SectionsFor(course), key)
}

func lookup(opts []Option, key string) (string, bool) {
	for _, o := range opts {
		if o.Key == key {
			return o.Label, true
		}
	}
	return "", false
}

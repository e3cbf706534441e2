package registration

import (
	"strings"
	"testing"
	"time"
)

func TestCatalog(t *testing.T) {
	if len(Courses()) != 7 || len(Levels()) != 6 {
		t.Fatalf("catalog sizes = %d courses, %d levels", len(Courses()), len(Levels()))
	}
	for _, c := range Courses() {
		want := c.Key == "english" || c.Key == "german"
		if RequiresLevel(c.Key) != want {
			t.Errorf("RequiresLevel(%q) = %v", c.Key, !want)
		}
		if len(SectionsFor(c.Key)) == 0 {
			t.Errorf("no sections for %q", c.Key)
		}
	}
	if _, ok := SectionLabel("english", "ielts"); !ok {
		t.Error("ielts missing for english")
	}
	if _, ok := SectionLabel("german", "ielts"); ok {
		t.Error("ielts offered for german")
	}
	if _, ok := SectionLabel("physics", "kids"); ok {
		t.Error("section resolved for unknown course")
	}

	// Callers must not be able to mutate the catalog.
	cs := Courses()
	cs[0].Label = "x"
	if l, _ := CourseLabel(cs[0].Key); l == "x" {
		t.Fatal("Courses returned shared storage")
	}
}

func TestNextStepOrder(t *testing.T) {
	d := Draft{}
	order := []string{}
	fill := []func(){
		func() { d.CourseKey = "german" },
		func() { d.LevelKey = "A1" },
		func() { d.SectionKey = "kids" },
		func() { d.FullName = "Ali Valiyev" },
		func() { d.Age = 10 },
		func() { d.Phone = "+998901234567" },
	}
	for _, f := range fill {
		order = append(order, string(d.nextStep()))
		f()
	}
	order = append(order, string(d.nextStep()))
	want := "choosing_course choosing_level choosing_section entering_name entering_age entering_phone reviewing"
	if got := strings.Join(order, " "); got != want {
		t.Fatalf("order = %s", got)
	}
}

func TestBuildAdminTextWithoutUsername(t *testing.T) {
	r := Registration{
		UserID:    7,
		FullName:  "Ali Valiyev",
		Age:       12,
		Phone:     "+998901234567",
		Course:    "🧮 Matematika",
		Section:   "👶 Bolalar",
		CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	text := BuildAdminText(r, AdminNote{})
	for _, want := range []string{"@Yo'q", "Daraja:* -", "2025-01-02 03:04:05 (UTC)"} {
		if !strings.Contains(text, want) {
			t.Fatalf("admin text missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "ID:* ") && strings.Contains(text, "🔖") {
		t.Fatal("public id line rendered without an id")
	}
}

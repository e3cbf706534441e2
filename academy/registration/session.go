package registration

import (
	"time"

	"github.com/m3rciful/iteachbot/core/telegram/state"
)

// Conversation steps. The zero value of state.State is state.StateIdle.
const (
	StepChoosingCourse  state.State = "choosing_course"
	StepChoosingLevel   state.State = "choosing_level"
	StepChoosingSection state.State = "choosing_section"
	StepEnteringName    state.State = "entering_name"
	StepEnteringAge     state.State = "entering_age"
	StepEnteringPhone   state.State = "entering_phone"
	StepReviewing       state.State = "reviewing"
	StepEditing         state.State = "editing"
)

// Draft accumulates answers while the conversation is in progress.
// Every field is validated before it is written.
type Draft struct {
	CourseKey  string
	LevelKey   string
	SectionKey string
	FullName   string
	Age        int
	Phone      string
}

// Identity is what Telegram tells us about the user.
type Identity struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

// Registration is a confirmed enrollment ready to be stored.
type Registration struct {
	PublicID   string
	UserID     int64
	Username   string
	FirstName  string
	LastName   string
	FullName   string
	Age        int
	Phone      string
	CourseKey  string
	Course     string
	LevelKey   string
	Level      string
	SectionKey string
	Section    string
	CreatedAt  time.Time
}

// nextStep returns the first step whose answer is still missing, or review.
func (d Draft) nextStep() state.State {
	switch {
	case d.CourseKey == "":
		return StepChoosingCourse
	case RequiresLevel(d.CourseKey) && d.LevelKey == "":
		return StepChoosingLevel
	case d.SectionKey == "":
		return StepChoosingSection
	case d.FullName == "":
		return StepEnteringName
	case d.Age == 0:
		return StepEnteringAge
	case d.Phone == "":
		return StepEnteringPhone
	default:
		return StepReviewing
	}
}

// submission re-checks the whole draft and resolves catalog labels.
func (d Draft) submission(who Identity, publicID string, at time.Time) (Registration, error) {
	course, ok := CourseLabel(d.CourseKey)
	if !ok {
		return Registration{}, ErrSessionCorrupted
	}
	var level string
	if RequiresLevel(d.CourseKey) {
		if level, ok = LevelLabel(d.LevelKey); !ok {
			return Registration{}, ErrSessionCorrupted
		}
	} else if d.LevelKey != "" {
		return Registration{}, ErrSessionCorrupted
	}
	section, ok := SectionLabel(d.CourseKey, d.SectionKey)
	if !ok {
		return Registration{}, ErrSessionCorrupted
	}
	if !IsValidFullName(d.FullName) || d.Age < MinAge || d.Age > MaxAge || d.Phone == "" {
		return Registration{}, ErrSessionCorrupted
	}
	return Registration{
		PublicID:   publicID,
		UserID:     who.ID,
		Username:   who.Username,
		FirstName:  who.FirstName,
		LastName:   who.LastName,
		FullName:   d.FullName,
		Age:        d.Age,
		Phone:      d.Phone,
		CourseKey:  d.CourseKey,
		Course:     course,
		LevelKey:   d.LevelKey,
		Level:      level,
		SectionKey: d.SectionKey,
		Section:    section,
		CreatedAt:  at,
	}, nil
}

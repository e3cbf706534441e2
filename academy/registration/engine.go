package registration

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m3rciful/iteachbot/core/logger"
	"github.com/m3rciful/iteachbot/core/telegram/state"
)

const component = "registration"

// EventKind classifies an inbound user action.
type EventKind int

const (
	EventStart EventKind = iota + 1
	EventCancel
	EventSelection
	EventText
	EventContact
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventCancel:
		return "cancel"
	case EventSelection:
		return "selection"
	case EventText:
		return "text"
	case EventContact:
		return "contact"
	}
	return "unknown"
}

// Event is one user action already stripped of transport details.
type Event struct {
	Kind EventKind
	User Identity
	// Token is the raw callback data of a selection.
	Token string
	// Text is the message text or the shared contact phone.
	Text string
	// ContactUserID is the owner of a shared contact; zero when Telegram omitted it.
	ContactUserID int64
}

// Reply is one outgoing message.
type Reply struct {
	Text     string
	Keyboard *Keyboard
}

// Responder delivers replies to the user who triggered the event.
type Responder interface {
	Reply(ctx context.Context, r Reply) error
}

// Store persists confirmed registrations.
type Store interface {
	Save(ctx context.Context, r Registration) (int64, error)
	CountByUser(ctx context.Context, userID int64) (int, error)
}

// Notifier delivers the administrator message.
type Notifier interface {
	NotifyAdmin(ctx context.Context, text string) error
}

// Options configures an Engine. Sessions and Store are required.
type Options struct {
	Sessions     *state.Manager[Draft]
	Store        Store
	Notifier     Notifier
	Location     *time.Location
	Now          func() time.Time
	NewID        func() string
	StoreTimeout time.Duration
}

// Engine drives the registration conversation. Events of one user are
// processed strictly one at a time; different users never block each other.
type Engine struct {
	sessions     *state.Manager[Draft]
	store        Store
	loc          *time.Location
	now          func() time.Time
	newID        func() string
	storeTimeout time.Duration

	notifyMu sync.RWMutex
	notifier Notifier
}

// NewEngine validates opts and fills defaults.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Sessions == nil {
		return nil, errors.New("registration: sessions manager is required")
	}
	if opts.Store == nil {
		return nil, errors.New("registration: store is required")
	}
	e := &Engine{
		sessions:     opts.Sessions,
		store:        opts.Store,
		notifier:     opts.Notifier,
		loc:          opts.Location,
		now:          opts.Now,
		newID:        opts.NewID,
		storeTimeout: opts.StoreTimeout,
	}
	if e.loc == nil {
		e.loc = time.UTC
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.newID == nil {
		e.newID = uuid.NewString
	}
	if e.storeTimeout <= 0 {
		e.storeTimeout = 10 * time.Second
	}
	return e, nil
}

// SetNotifier swaps the administrator notifier; nil disables notifications.
func (e *Engine) SetNotifier(n Notifier) {
	e.notifyMu.Lock()
	e.notifier = n
	e.notifyMu.Unlock()
}

func (e *Engine) currentNotifier() Notifier {
	e.notifyMu.RLock()
	defer e.notifyMu.RUnlock()
	return e.notifier
}

// InProgress reports whether userID is inside the flow.
func (e *Engine) InProgress(userID int64) bool {
	return e.sessions.InProgress(userID)
}

// Handle processes ev and sends every resulting reply through out. Validation
// problems are answered in the chat and never returned; the error reports a
// delivery failure only.
func (e *Engine) Handle(ctx context.Context, ev Event, out Responder) error {
	unlock := e.sessions.Lock(ev.User.ID)
	defer unlock()

	sess := e.sessions.Get(ev.User.ID)
	t := &turn{
		engine: e,
		ctx:    ctx,
		ev:     ev,
		out:    out,
		from:   sess.State,
		step:   sess.State,
		draft:  sess.Data,
	}
	if t.step == "" {
		t.step = state.StateIdle
		t.from = state.StateIdle
	}

	t.dispatch()

	e.sessions.Put(ev.User.ID, state.Session[Draft]{State: t.step, Data: t.draft})

	logger.Info(ctx, component, "step.transition",
		slog.String("kind", ev.Kind.String()),
		slog.String("from_step", string(t.from)),
		slog.String("to_step", string(t.step)),
		slog.String("outcome", t.outcome),
	)
	return t.sendErr
}

// turn holds the working copy of one user's session while an event is applied.
type turn struct {
	engine *Engine
	ctx    context.Context
	ev     Event
	out    Responder

	from    state.State
	step    state.State
	draft   Draft
	outcome string
	sendErr error
}

func (t *turn) reply(text string, kb *Keyboard) {
	if err := t.out.Reply(t.ctx, Reply{Text: text, Keyboard: kb}); err != nil && t.sendErr == nil {
		t.sendErr = err
	}
}

func (t *turn) dispatch() {
	switch t.ev.Kind {
	case EventStart:
		t.begin(true)
	case EventCancel:
		t.cancel()
	case EventSelection:
		t.selection()
	case EventText:
		t.text()
	case EventContact:
		t.contact()
	default:
		t.outcome = "ignored"
	}
}

// begin resets the draft and opens the course menu.
func (t *turn) begin(welcome bool) {
	t.draft = Draft{}
	t.step = StepChoosingCourse
	t.outcome = "started"
	if welcome {
		t.reply(textWelcome, RemoveMenu())
	}
	t.prompt()
}

func (t *turn) cancel() {
	if t.step == state.StateIdle {
		t.outcome = "noop"
		t.reply(textNothing, nil)
		return
	}
	var kb *Keyboard
	if t.step == StepEnteringPhone {
		kb = RemoveMenu()
	}
	t.draft = Draft{}
	t.step = state.StateIdle
	t.outcome = "cancelled"
	t.reply(textCancelled, kb)
}

func (t *turn) idleHint() {
	t.outcome = "idle"
	t.reply(textIdleHint, StartMenu())
}

// prompt shows the question of the current step.
func (t *turn) prompt() {
	text, kb := t.question()
	t.reply(text, kb)
}

// reject repeats the current question prefixed with a warning.
func (t *turn) reject(warning string) {
	t.outcome = "invalid"
	text, kb := t.question()
	t.reply(warning+"\n\n"+text, kb)
}

func (t *turn) reprompt() {
	t.outcome = "reprompt"
	t.prompt()
}

func (t *turn) question() (string, *Keyboard) {
	switch t.step {
	case StepChoosingCourse:
		return textCourses, CourseMenu(t.draft.nextStep() == StepReviewing)
	case StepChoosingLevel:
		return textLevels, LevelMenu()
	case StepChoosingSection:
		return textSections, SectionMenu(t.draft.CourseKey)
	case StepEnteringName:
		return textName, nil
	case StepEnteringAge:
		return textAge, nil
	case StepEnteringPhone:
		return textPhone, ContactMenu()
	case StepReviewing:
		return BuildReviewText(t.draft), ReviewMenu()
	case StepEditing:
		return textEdit, EditMenu(t.draft.CourseKey)
	}
	return textIdleHint, StartMenu()
}

// advance moves to the first unanswered step, or review when nothing is missing.
func (t *turn) advance() {
	t.step = t.draft.nextStep()
	t.outcome = "advanced"
	t.prompt()
}

func (t *turn) selection() {
	sel, err := ParseToken(t.ev.Token)
	if err != nil {
		if t.step == state.StateIdle {
			t.idleHint()
			return
		}
		t.reject(textBadSelection)
		return
	}

	if sel.Action == ActionCancel {
		t.cancel()
		return
	}
	if t.step == state.StateIdle {
		if sel.Action == ActionStart {
			t.begin(false)
			return
		}
		t.idleHint()
		return
	}

	switch {
	case t.step == StepChoosingCourse && sel.Action == ActionCourse:
		if _, ok := CourseLabel(sel.Value); !ok {
			t.reject(textBadSelection)
			return
		}
		if sel.Value != t.draft.CourseKey {
			t.draft.CourseKey = sel.Value
			t.draft.LevelKey = ""
			t.draft.SectionKey = ""
		}
		t.advance()

	case t.step == StepChoosingCourse && sel.Action == ActionBack && sel.Value == BackReview:
		if t.draft.nextStep() != StepReviewing {
			t.reprompt()
			return
		}
		t.back(StepReviewing)

	case t.step == StepChoosingLevel && sel.Action == ActionLevel:
		if _, ok := LevelLabel(sel.Value); !ok || !RequiresLevel(t.draft.CourseKey) {
			t.reject(textBadSelection)
			return
		}
		t.draft.LevelKey = sel.Value
		t.advance()

	case t.step == StepChoosingLevel && sel.Action == ActionBack && sel.Value == BackCourses:
		t.draft.LevelKey = ""
		t.draft.SectionKey = ""
		t.back(StepChoosingCourse)

	case t.step == StepChoosingSection && sel.Action == ActionSection:
		if _, ok := SectionLabel(t.draft.CourseKey, sel.Value); !ok {
			t.reject(textBadSelection)
			return
		}
		t.draft.SectionKey = sel.Value
		t.advance()

	case t.step == StepChoosingSection && sel.Action == ActionBack && sel.Value == sectionBackTarget(t.draft.CourseKey):
		t.draft.SectionKey = ""
		if sel.Value == BackLevels {
			t.back(StepChoosingLevel)
			return
		}
		t.back(StepChoosingCourse)

	case t.step == StepReviewing && sel.Action == ActionConfirm:
		t.confirm()

	case t.step == StepReviewing && sel.Action == ActionEdit && sel.Value == "":
		t.back(StepEditing)

	case t.step == StepEditing && sel.Action == ActionEdit && sel.Value != "":
		t.editField(sel.Value)

	case t.step == StepEditing && sel.Action == ActionBack && sel.Value == BackReview:
		t.back(StepReviewing)

	default:
		// Stale buttons and double taps land here.
		t.reprompt()
	}
}

func (t *turn) back(to state.State) {
	t.step = to
	t.outcome = "back"
	t.prompt()
}

func (t *turn) editField(field string) {
	var to state.State
	switch field {
	case FieldCourse:
		to = StepChoosingCourse
	case FieldLevel:
		if !RequiresLevel(t.draft.CourseKey) {
			t.reject(textBadSelection)
			return
		}
		to = StepChoosingLevel
	case FieldSection:
		to = StepChoosingSection
	case FieldName:
		to = StepEnteringName
	case FieldAge:
		to = StepEnteringAge
	case FieldPhone:
		to = StepEnteringPhone
	default:
		t.reject(textBadSelection)
		return
	}
	t.step = to
	t.outcome = "edit"
	t.prompt()
}

func (t *turn) text() {
	input := t.ev.Text
	switch t.step {
	case state.StateIdle:
		t.idleHint()
	case StepEnteringName:
		name, err := NormalizeFullName(input)
		if err != nil {
			t.reject(textBadName)
			return
		}
		t.draft.FullName = name
		t.advance()
	case StepEnteringAge:
		age, err := ParseAge(input)
		if err != nil {
			t.reject(textBadAge)
			return
		}
		t.draft.Age = age
		t.advance()
	case StepEnteringPhone:
		phone, err := NormalizePhone(input)
		if err != nil {
			t.reject(textBadPhone)
			return
		}
		t.acceptPhone(phone)
	default:
		t.reprompt()
	}
}

func (t *turn) contact() {
	switch t.step {
	case state.StateIdle:
		t.idleHint()
		return
	case StepEnteringPhone:
	default:
		t.reprompt()
		return
	}
	if t.ev.ContactUserID != 0 && t.ev.ContactUserID != t.ev.User.ID {
		t.reject(textForeignPhone)
		return
	}
	phone, err := normalizeContactPhone(t.ev.Text)
	if err != nil {
		t.reject(textBadPhone)
		return
	}
	t.acceptPhone(phone)
}

func (t *turn) acceptPhone(phone string) {
	t.draft.Phone = phone
	t.reply(textPhoneOK, RemoveMenu())
	t.advance()
}

// confirm stores the registration, acknowledges it and then tells the administrator.
func (t *turn) confirm() {
	e := t.engine
	at := e.now()
	reg, err := t.draft.submission(t.ev.User, e.newID(), at)
	if err != nil {
		logger.Warn(t.ctx, component, "confirm.rejected", slog.String("err", err.Error()))
		t.draft = Draft{}
		t.step = state.StateIdle
		t.outcome = "corrupted"
		t.reply(textCorrupted, nil)
		return
	}

	storeCtx, cancel := context.WithTimeout(t.ctx, e.storeTimeout)
	defer cancel()

	previous, err := e.store.CountByUser(storeCtx, reg.UserID)
	if err != nil {
		logger.Warn(t.ctx, component, "history.lookup_failed", slog.String("err", err.Error()))
		previous = 0
	}

	start := time.Now()
	id, err := e.store.Save(storeCtx, reg)
	if err != nil {
		logger.Error(t.ctx, component, "persist.failed",
			slog.String("status", logger.Status(err)),
			slog.Duration("took", logger.Took(start)),
			slog.String("err", err.Error()),
		)
		t.outcome = "persist_failed"
		t.reply(textServerErr, ReviewMenu())
		return
	}
	logger.Info(t.ctx, component, "persist.ok",
		slog.Int64("registration_id", id),
		slog.String("public_id", reg.PublicID),
		slog.String("course", reg.CourseKey),
		slog.Duration("took", logger.Took(start)),
	)

	t.draft = Draft{}
	t.step = state.StateIdle
	t.outcome = "confirmed"
	t.reply(textSuccess, nil)

	notifier := e.currentNotifier()
	if notifier == nil {
		return
	}
	text := BuildAdminText(reg, AdminNote{Previous: previous, Location: e.loc})
	if err := notifier.NotifyAdmin(t.ctx, text); err != nil {
		logger.Warn(t.ctx, component, "notify.failed",
			slog.Int64("registration_id", id),
			slog.String("err", err.Error()),
		)
	}
}

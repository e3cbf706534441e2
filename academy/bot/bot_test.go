package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/m3rciful/iteachbot/academy/registration"
	"github.com/m3rciful/iteachbot/academy/store"
	tg "github.com/m3rciful/iteachbot/core/telegram"
	"github.com/m3rciful/iteachbot/core/telegram/state"

	tele "gopkg.in/telebot.v4"
)

type memStore struct {
	mu    sync.Mutex
	saved []registration.Registration
}

func (s *memStore) Save(_ context.Context, r registration.Registration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, r)
	return int64(len(s.saved)), nil
}

func (s *memStore) CountByUser(context.Context, int64) (int, error) { return 0, nil }

func (s *memStore) Stats(context.Context, time.Time) (store.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return store.Stats{Total: len(s.saved), Recent: len(s.saved)}, nil
}

type recorder struct {
	replies []registration.Reply
}

func (r *recorder) Reply(_ context.Context, rep registration.Reply) error {
	r.replies = append(r.replies, rep)
	return nil
}

func newHandlers(t *testing.T) (*Handlers, *recorder, *memStore) {
	t.Helper()
	st := &memStore{}
	engine, err := registration.NewEngine(registration.Options{
		Sessions: state.NewManager[registration.Draft](),
		Store:    st,
	})
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	rec := &recorder{}
	h := New(engine, st)
	h.respond = func(tele.Context) registration.Responder { return rec }
	return h, rec, st
}

func newTestBot(t *testing.T) *tele.Bot {
	t.Helper()
	b, err := tele.NewBot(tele.Settings{Token: "1:test", Offline: true})
	if err != nil {
		t.Fatalf("bot: %v", err)
	}
	return b
}

var user = &tele.User{ID: 77, Username: "student", FirstName: "Ali"}

func message(b *tele.Bot, text string) tele.Context {
	return b.NewContext(tele.Update{ID: 1, Message: &tele.Message{
		Text:   text,
		Sender: user,
		Chat:   &tele.Chat{ID: user.ID, Type: tele.ChatPrivate},
	}})
}

func callback(b *tele.Bot, data string) tele.Context {
	return b.NewContext(tele.Update{ID: 2, Callback: &tele.Callback{
		ID:     "cb",
		Data:   data,
		Sender: user,
		Message: &tele.Message{
			ID:   10,
			Chat: &tele.Chat{ID: user.ID, Type: tele.ChatPrivate},
		},
	}})
}

func contact(b *tele.Bot, phone string, owner int64) tele.Context {
	return b.NewContext(tele.Update{ID: 3, Message: &tele.Message{
		Sender:  user,
		Chat:    &tele.Chat{ID: user.ID, Type: tele.ChatPrivate},
		Contact: &tele.Contact{PhoneNumber: phone, UserID: owner},
	}})
}

func TestRegisterWiresCommandsAndNamespace(t *testing.T) {
	h, _, _ := newHandlers(t)
	reg := tg.NewRegistry()
	if err := h.Register(reg); err != nil {
		t.Fatalf("register: %v", err)
	}
	for _, name := range []string{"start", "cancel", "help"} {
		if _, _, ok := reg.LookupCommand("/" + name); !ok {
			t.Fatalf("command %q missing", name)
		}
	}
	if _, cmd, ok := reg.LookupCommand("/stats"); !ok || !cmd.AdminOnly {
		t.Fatal("/stats should be registered admin-only")
	}
	if _, ok := reg.GetCallback(registration.Namespace); !ok {
		t.Fatal("reg callback namespace missing")
	}
	if reg.CallbackNotFound() == nil {
		t.Fatal("callback fallback missing")
	}
}

func TestFullConversationThroughHandlers(t *testing.T) {
	h, rec, st := newHandlers(t)
	b := newTestBot(t)

	steps := []func() error{
		func() error { return h.Start(message(b, "/start")) },
		func() error { return h.Callback(callback(b, "reg:course:chemistry")) },
		func() error { return h.Callback(callback(b, "reg:section:kids")) },
		func() error { return h.ManagerHandler(message(b, "Ali Valiyev")) },
		func() error { return h.ManagerHandler(message(b, "11")) },
		func() error { return h.ManagerHandler(contact(b, "998901234567", user.ID)) },
		func() error { return h.Callback(callback(b, "reg:confirm")) },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if len(st.saved) != 1 {
		t.Fatalf("saved = %d", len(st.saved))
	}
	r := st.saved[0]
	if r.UserID != 77 || r.Username != "student" || r.CourseKey != "chemistry" || r.Phone != "+998901234567" {
		t.Fatalf("saved = %+v", r)
	}
	if !strings.Contains(rec.replies[len(rec.replies)-1].Text, "Tabriklaymiz") {
		t.Fatalf("last reply = %q", rec.replies[len(rec.replies)-1].Text)
	}
	if h.InProgress(user.ID) {
		t.Fatal("session still active after confirm")
	}
}

func TestIdleTextGetsHint(t *testing.T) {
	h, rec, _ := newHandlers(t)
	b := newTestBot(t)
	if err := h.ManagerHandler(message(b, "salom")); err != nil {
		t.Fatal(err)
	}
	if len(rec.replies) != 1 || rec.replies[0].Keyboard == nil || rec.replies[0].Keyboard.Kind != registration.KeyboardInline {
		t.Fatalf("replies = %+v", rec.replies)
	}
}

func TestStatsCommand(t *testing.T) {
	h, rec, st := newHandlers(t)
	st.saved = append(st.saved, registration.Registration{})
	if err := h.Stats(message(newTestBot(t), "/stats")); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(rec.replies[0].Text, "Jami: *1*") {
		t.Fatalf("stats text = %q", rec.replies[0].Text)
	}
}

func TestFormatStatsByCourse(t *testing.T) {
	text := formatStats(store.Stats{Total: 3, Recent: 1, ByCourse: []store.CourseCount{{CourseKey: "math", Course: "🧮 Matematika", Count: 3}}})
	if !strings.Contains(text, "🧮 Matematika: 3") || !strings.Contains(text, "So'nggi 24 soat: *1*") {
		t.Fatalf("text = %q", text)
	}
}

func TestToMarkup(t *testing.T) {
	if toMarkup(nil) != nil {
		t.Fatal("nil keyboard should give nil markup")
	}
	inline := toMarkup(registration.ReviewMenu())
	if len(inline.InlineKeyboard) != 2 || inline.InlineKeyboard[0][0].Data != "reg:confirm" {
		t.Fatalf("inline = %+v", inline.InlineKeyboard)
	}
	c := toMarkup(registration.ContactMenu())
	if len(c.ReplyKeyboard) != 1 || !c.ReplyKeyboard[0][0].Contact || !c.OneTimeKeyboard {
		t.Fatalf("contact = %+v", c)
	}
	if !toMarkup(registration.RemoveMenu()).RemoveKeyboard {
		t.Fatal("remove keyboard not set")
	}
}

type fakeAPI struct {
	errs  []error
	calls int
	to    tele.Recipient
	opts  []interface{}
}

func (f *fakeAPI) Send(to tele.Recipient, _ interface{}, opts ...interface{}) (*tele.Message, error) {
	f.calls++
	f.to, f.opts = to, opts
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return nil, err
	}
	return &tele.Message{}, nil
}

func TestAdminNotifier(t *testing.T) {
	ctx := context.Background()

	if err := NewAdminNotifier(&fakeAPI{}, 0).NotifyAdmin(ctx, "x"); !errors.Is(err, ErrNoAdmin) {
		t.Fatalf("err = %v", err)
	}

	api := &fakeAPI{}
	if err := NewAdminNotifier(api, 555).NotifyAdmin(ctx, "hi"); err != nil {
		t.Fatal(err)
	}
	if api.to.Recipient() != "555" {
		t.Fatalf("recipient = %q", api.to.Recipient())
	}
	if opts, ok := api.opts[0].(*tele.SendOptions); !ok || opts.ParseMode != tele.ModeMarkdown {
		t.Fatalf("opts = %+v", api.opts)
	}

	api = &fakeAPI{errs: []error{errors.New("chat not found")}}
	if err := NewAdminNotifier(api, 555).NotifyAdmin(ctx, "hi"); err == nil || api.calls != 1 {
		t.Fatalf("err = %v, calls = %d", err, api.calls)
	}
}

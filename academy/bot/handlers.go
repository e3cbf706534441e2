// Package bot adapts the registration engine to telebot: commands, the
// "reg" callback namespace and free-form text and contact messages.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/iteachbot/academy/registration"
	"github.com/m3rciful/iteachbot/academy/store"
	"github.com/m3rciful/iteachbot/core/logger"
	tg "github.com/m3rciful/iteachbot/core/telegram"
	"github.com/m3rciful/iteachbot/core/telegram/commands"
	tghelpers "github.com/m3rciful/iteachbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// StatsSource feeds the /stats command.
type StatsSource interface {
	Stats(ctx context.Context, since time.Time) (store.Stats, error)
}

// Handlers binds one engine to Telegram updates.
type Handlers struct {
	engine  *registration.Engine
	stats   StatsSource
	now     func() time.Time
	respond func(c tele.Context) registration.Responder
}

// New returns handlers for engine. stats may be nil, which disables /stats.
func New(engine *registration.Engine, stats StatsSource) *Handlers {
	return &Handlers{
		engine:  engine,
		stats:   stats,
		now:     time.Now,
		respond: newResponder,
	}
}

// Register installs commands, the callback namespace and the fallbacks.
func (h *Handlers) Register(reg *tg.Registry) error {
	cmds := map[string]commands.Command{
		"/start":  {Handler: h.Start, Description: "Ro'yxatdan o'tishni boshlash"},
		"/cancel": {Handler: h.Cancel, Description: "Jarayonni bekor qilish"},
		"/help":   {Handler: h.Help, Description: "Yordam"},
	}
	if h.stats != nil {
		cmds["/stats"] = commands.Command{Handler: h.Stats, Description: "Statistika", AdminOnly: true}
	}
	for name, cmd := range cmds {
		if err := reg.RegisterCommand(name, cmd); err != nil {
			return err
		}
	}
	if err := reg.RegisterCallback(registration.Namespace, h.Callback); err != nil {
		return err
	}
	reg.SetCallbackNotFound(h.Callback)
	return nil
}

// InProgress reports whether the user is inside the registration flow.
func (h *Handlers) InProgress(userID int64) bool {
	return h.engine.InProgress(userID)
}

// ManagerHandler feeds text and contact messages to the engine. Users outside
// the flow get a hint on how to start.
func (h *Handlers) ManagerHandler(c tele.Context) error {
	if m := c.Message(); m != nil && m.Contact != nil {
		return h.handle(c, registration.Event{
			Kind:          registration.EventContact,
			Text:          m.Contact.PhoneNumber,
			ContactUserID: m.Contact.UserID,
		})
	}
	return h.handle(c, registration.Event{Kind: registration.EventText, Text: c.Text()})
}

func (h *Handlers) Start(c tele.Context) error {
	return h.handle(c, registration.Event{Kind: registration.EventStart})
}

func (h *Handlers) Cancel(c tele.Context) error {
	return h.handle(c, registration.Event{Kind: registration.EventCancel})
}

func (h *Handlers) Callback(c tele.Context) error {
	cb := c.Callback()
	if cb == nil {
		return nil
	}
	return h.handle(c, registration.Event{Kind: registration.EventSelection, Token: strings.TrimSpace(cb.Data)})
}

func (h *Handlers) Help(c tele.Context) error {
	return h.respond(c).Reply(tghelpers.BuildContext(c), registration.Reply{
		Text:     registration.HelpText(),
		Keyboard: registration.StartMenu(),
	})
}

// Stats reports totals for the administrator.
func (h *Handlers) Stats(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	now := h.now()
	st, err := h.stats.Stats(ctx, now.Add(-24*time.Hour))
	if err != nil {
		logger.Error(ctx, "store", "stats.failed", slog.String("err", err.Error()))
		return h.respond(c).Reply(ctx, registration.Reply{Text: "Statistikani olishda xatolik yuz berdi."})
	}
	return h.respond(c).Reply(ctx, registration.Reply{Text: formatStats(st)})
}

func formatStats(st store.Stats) string {
	var b strings.Builder
	b.WriteString("📊 *Statistika*\n\n")
	fmt.Fprintf(&b, "Jami: *%d*\nSo'nggi 24 soat: *%d*", st.Total, st.Recent)
	if len(st.ByCourse) > 0 {
		b.WriteString("\n")
		for _, cc := range st.ByCourse {
			fmt.Fprintf(&b, "\n%s: %d", cc.Course, cc.Count)
		}
	}
	return b.String()
}

func (h *Handlers) handle(c tele.Context, ev registration.Event) error {
	u := c.Sender()
	if u == nil {
		return nil
	}
	ev.User = registration.Identity{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
	return h.engine.Handle(tghelpers.BuildContext(c), ev, h.respond(c))
}

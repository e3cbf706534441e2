package bot

import (
	"context"

	"github.com/m3rciful/iteachbot/academy/registration"
	tghelpers "github.com/m3rciful/iteachbot/core/telegram/helpers"
	"github.com/m3rciful/iteachbot/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// teleResponder answers in the chat of the current update. The first inline
// reply to a callback replaces the message that carried the pressed button.
type teleResponder struct {
	c      tele.Context
	edited bool
}

func newResponder(c tele.Context) registration.Responder {
	return &teleResponder{c: c}
}

func (r *teleResponder) Reply(_ context.Context, rep registration.Reply) error {
	markup := toMarkup(rep.Keyboard)
	if !r.edited && r.c.Callback() != nil && (rep.Keyboard == nil || rep.Keyboard.Kind == registration.KeyboardInline) {
		r.edited = true
		return tghelpers.EditOrSendMD(r.c, rep.Text, markup)
	}
	return tghelpers.SendMD(r.c, rep.Text, markup)
}

func toMarkup(kb *registration.Keyboard) *tele.ReplyMarkup {
	if kb == nil {
		return nil
	}
	switch kb.Kind {
	case registration.KeyboardRemove:
		return keyboard.RemoveKeyboard()
	case registration.KeyboardContact:
		label := ""
		if len(kb.Rows) > 0 && len(kb.Rows[0]) > 0 {
			label = kb.Rows[0][0].Label
		}
		return keyboard.ContactRequest(label)
	default:
		rows := make([][]keyboard.InlineBtn, 0, len(kb.Rows))
		for _, row := range kb.Rows {
			btns := make([]keyboard.InlineBtn, 0, len(row))
			for _, b := range row {
				btns = append(btns, keyboard.InlineBtn{Text: b.Label, Data: b.Token})
			}
			rows = append(rows, btns)
		}
		return keyboard.InlineRows(rows...)
	}
}

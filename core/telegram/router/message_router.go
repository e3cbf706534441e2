package router

import (
	"time"

	tg "github.com/m3rciful/iteachbot/core/telegram"
	tghelpers "github.com/m3rciful/iteachbot/core/telegram/helpers"
	"github.com/m3rciful/iteachbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// FSM is a conversation that claims free-form messages from users inside a flow.
type FSM interface {
	InProgress(userID int64) bool
	ManagerHandler(c tele.Context) error
}

// TextOptions controls fallback behaviour for messages nobody claims.
type TextOptions struct {
	UnknownText    tele.HandlerFunc
	UnknownContact tele.HandlerFunc
}

// TextRoutes builds handlers for text and shared-contact messages.
// A user inside a flow always goes to the FSM; otherwise text is matched
// against command aliases and then the fallbacks.
func TextRoutes(fsm FSM, reg *tg.Registry, opts TextOptions) []tg.Route {
	text := func(c tele.Context) error {
		start := time.Now()

		if fsm != nil && fsm.InProgress(tghelpers.SenderID(c)) {
			return handleWithSummary(c, "fsm.text", start, func() error {
				return fsm.ManagerHandler(c)
			})
		}

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(c.Text()); ok && cmd.Handler != nil && !cmd.AdminOnly {
				return handleWithSummary(c, "command."+normalizeHandlerName(key), start, func() error {
					return cmd.Handler(c)
				})
			}
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback", start, func() error {
					return fb(c)
				})
			}
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, func() error {
				return opts.UnknownText(c)
			})
		}
		logHandlerSummary(c, "unknown_text", start, "skip", nil)
		return nil
	}

	contact := func(c tele.Context) error {
		start := time.Now()
		if fsm != nil && fsm.InProgress(tghelpers.SenderID(c)) {
			return handleWithSummary(c, "fsm.contact", start, func() error {
				return fsm.ManagerHandler(c)
			})
		}
		if opts.UnknownContact != nil {
			return handleWithSummary(c, "unexpected_contact", start, func() error {
				return opts.UnknownContact(c)
			})
		}
		logHandlerSummary(c, "unexpected_contact", start, "skip", nil)
		return nil
	}

	wrap := func(h tele.HandlerFunc) tele.HandlerFunc {
		return middleware.RecoverMiddleware(middleware.LoggerMiddleware(h))
	}
	return []tg.Route{
		{Endpoint: tele.OnText, Handler: wrap(text)},
		{Endpoint: tele.OnContact, Handler: wrap(contact)},
	}
}

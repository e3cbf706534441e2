package router

import (
	"log/slog"
	"time"

	tg "github.com/m3rciful/iteachbot/core/telegram"
	"github.com/m3rciful/iteachbot/core/telegram/callbacks"
	"github.com/m3rciful/iteachbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CallbackOptions tunes callback dispatch.
type CallbackOptions struct {
	// NotFound handles callbacks whose namespace has no handler. The
	// registry fallback is used when nil.
	NotFound tele.HandlerFunc
	// Answer acknowledges the callback query so the client stops its
	// spinner. Defaults to an empty answer.
	Answer func(tele.Context) error
}

func (o CallbackOptions) answer(c tele.Context) {
	if o.Answer != nil {
		_ = o.Answer(c)
		return
	}
	_ = c.Respond()
}

// resolve picks the handler for key. found is false when the fallback
// (possibly nil) was chosen.
func (o CallbackOptions) resolve(reg *tg.Registry, key string) (h tele.HandlerFunc, found bool) {
	if h, ok := reg.GetCallback(key); ok && h != nil {
		return h, true
	}
	if o.NotFound != nil {
		return o.NotFound, false
	}
	return reg.CallbackNotFound(), false
}

// CallbackRoute dispatches inline-button presses by their namespace key.
// Every press is answered before the handler runs; a failed answer is ignored.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	dispatch := func(c tele.Context) error {
		if c.Callback() == nil {
			return nil
		}
		start := time.Now()
		key := callbacks.Key(c)
		opts.answer(c)

		h, found := opts.resolve(reg, key)
		attrs := []slog.Attr{slog.String("cb_key", key)}
		if !found {
			attrs = append(attrs, slog.String("cause", "not_found"))
		}
		return handleWithSummary(c, "callback."+normalizeHandlerName(key), start, func() error {
			if h == nil {
				return nil
			}
			return h(c)
		}, attrs...)
	}
	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(dispatch)),
	}
}

package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/iteachbot/core/logger"
	tghelpers "github.com/m3rciful/iteachbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// RateLimitOptions configures behaviour of the rate limit middleware.
type RateLimitOptions struct {
	Interval  time.Duration
	Exclude   map[string]struct{}
	OnLimited tele.HandlerFunc
	// Now is the clock; time.Now when nil.
	Now func() time.Time
}

// UpdateKind classifies an update as callback, message, inline_query or other.
func UpdateKind(upd tele.Update) string {
	switch {
	case upd.Callback != nil:
		return "callback"
	case upd.Message != nil:
		return "message"
	case upd.Query != nil:
		return "inline_query"
	}
	return "other"
}

// RateLimitMiddleware drops updates arriving from the same user faster than Interval.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	var (
		mu       sync.Mutex
		lastSeen = make(map[int64]time.Time)
	)
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			userID := tghelpers.SenderID(c)
			if userID == 0 || opts.Interval <= 0 {
				return next(c)
			}
			if _, skip := opts.Exclude[UpdateKind(c.Update())]; skip {
				return next(c)
			}

			t := now()
			mu.Lock()
			last, seen := lastSeen[userID]
			limited := seen && t.Sub(last) < opts.Interval
			if !limited {
				lastSeen[userID] = t
				// Forget users idle for a long time.
				if len(lastSeen) > 10000 {
					for id, ts := range lastSeen {
						if t.Sub(ts) > time.Hour {
							delete(lastSeen, id)
						}
					}
				}
			}
			mu.Unlock()

			if limited {
				logger.Warn(tghelpers.BuildContext(c), "tg", "tg.rate_limit",
					slog.String("status", "rate_limited"),
				)
				if opts.OnLimited != nil {
					_ = opts.OnLimited(c)
				}
				return nil
			}
			return next(c)
		}
	}
}

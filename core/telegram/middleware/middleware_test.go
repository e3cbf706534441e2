package middleware

import (
	"errors"
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"
)

func newTestBot(t *testing.T) *tele.Bot {
	t.Helper()
	bot, err := tele.NewBot(tele.Settings{Token: "1:test", Offline: true})
	if err != nil {
		t.Fatalf("bot: %v", err)
	}
	return bot
}

func messageFrom(bot *tele.Bot, updateID int, userID int64) tele.Context {
	return bot.NewContext(tele.Update{
		ID: updateID,
		Message: &tele.Message{
			Text:   "hello",
			Sender: &tele.User{ID: userID},
			Chat:   &tele.Chat{ID: userID, Type: tele.ChatPrivate},
		},
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	bot := newTestBot(t)
	now := time.Unix(1000, 0)
	limited := 0
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval:  time.Second,
		Now:       func() time.Time { return now },
		OnLimited: func(tele.Context) error { limited++; return nil },
	})
	calls := 0
	h := mw(func(tele.Context) error { calls++; return nil })

	_ = h(messageFrom(bot, 1, 5))
	_ = h(messageFrom(bot, 2, 5))
	_ = h(messageFrom(bot, 3, 6))
	now = now.Add(2 * time.Second)
	_ = h(messageFrom(bot, 4, 5))

	if calls != 3 || limited != 1 {
		t.Fatalf("calls = %d, limited = %d", calls, limited)
	}
}

func TestRateLimitExcludesKinds(t *testing.T) {
	bot := newTestBot(t)
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval: time.Hour,
		Exclude:  map[string]struct{}{"message": {}},
	})
	calls := 0
	h := mw(func(tele.Context) error { calls++; return nil })
	for i := 1; i <= 3; i++ {
		_ = h(messageFrom(bot, i, 5))
	}
	if calls != 3 {
		t.Fatalf("excluded kind was limited: %d calls", calls)
	}
}

func TestAdminOnly(t *testing.T) {
	bot := newTestBot(t)
	rejected := 0
	h := AdminOnly(AdminOptions{
		AdminID:  42,
		OnReject: func(tele.Context) error { rejected++; return nil },
	})(func(tele.Context) error { return errors.New("reached") })

	if err := h(messageFrom(bot, 1, 7)); err != nil || rejected != 1 {
		t.Fatalf("non-admin: err=%v rejected=%d", err, rejected)
	}
	if err := h(messageFrom(bot, 2, 42)); err == nil {
		t.Fatal("admin did not reach the handler")
	}
}

func TestRecoverMiddleware(t *testing.T) {
	bot := newTestBot(t)
	h := RecoverMiddleware(func(tele.Context) error { panic("boom") })
	if err := h(messageFrom(bot, 1, 1)); err == nil {
		t.Fatal("panic should surface as an error")
	}
}

func TestLoggerMiddlewareSetsRID(t *testing.T) {
	bot := newTestBot(t)
	c := messageFrom(bot, 36, 72)
	h := LoggerMiddleware(func(c tele.Context) error {
		if rid, _ := c.Get("rid").(string); rid != "36:72:72" {
			t.Fatalf("rid = %q", rid)
		}
		return nil
	})
	if err := h(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
}

func TestMessageMetricsCounters(t *testing.T) {
	bot := newTestBot(t)
	c := messageFrom(bot, 1, 1)
	h := MessageMetricsMiddleware(func(c tele.Context) error { return nil })
	_ = h(c)
	if msgs, kb := GetCounters(c); msgs != 0 || kb {
		t.Fatalf("counters = %d, %v", msgs, kb)
	}
	if !hasKeyboard([]interface{}{&tele.SendOptions{ReplyMarkup: &tele.ReplyMarkup{}}}) {
		t.Fatal("keyboard not detected")
	}
}

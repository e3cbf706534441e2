package sender

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"
)

func TestDispatcherKeepsPerKeyOrder(t *testing.T) {
	d := NewDispatcher(Options{Workers: 4, QueueSize: 128})

	var (
		mu  sync.Mutex
		got = map[int64][]int{}
	)
	for i := 0; i < 50; i++ {
		for _, chat := range []int64{11, 12, 13} {
			i, chat := i, chat
			err := d.Enqueue(context.Background(), chat, "send.text", "sendMessage", func() error {
				mu.Lock()
				got[chat] = append(got[chat], i)
				mu.Unlock()
				return nil
			})
			if err != nil {
				t.Fatalf("enqueue: %v", err)
			}
		}
	}
	d.Close()

	for chat, seq := range got {
		if len(seq) != 50 {
			t.Fatalf("chat %d got %d jobs", chat, len(seq))
		}
		for i, v := range seq {
			if v != i {
				t.Fatalf("chat %d out of order: %v", chat, seq)
			}
		}
	}
}

func TestDispatcherRetriesTransientErrors(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, MaxRetries: 2, RetryBackoff: time.Millisecond})
	calls := 0
	done := make(chan struct{})
	err := d.Enqueue(context.Background(), 1, "send.text", "sendMessage", func() error {
		calls++
		if calls < 3 {
			return context.DeadlineExceeded
		}
		close(done)
		return nil
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not succeed after retries")
	}
	d.Close()
	if d.ErrorCount() != 0 {
		t.Fatalf("error count = %d", d.ErrorCount())
	}
}

func TestDispatcherCountsPermanentFailure(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, MaxRetries: 3, RetryBackoff: time.Millisecond})
	calls := 0
	_ = d.Enqueue(context.Background(), 1, "send.text", "sendMessage", func() error {
		calls++
		return errors.New("telegram: chat not found (400)")
	})
	d.Close()
	if calls != 1 {
		t.Fatalf("permanent error retried: %d calls", calls)
	}
	if d.ErrorCount() != 1 {
		t.Fatalf("error count = %d", d.ErrorCount())
	}
}

func TestDispatcherRejectsAfterClose(t *testing.T) {
	d := NewDispatcher(Options{})
	d.Close()
	d.Close()
	err := d.Enqueue(context.Background(), 1, "a", "b", func() error { return nil })
	if !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("err = %v, want ErrQueueClosed", err)
	}
}

func TestClassifyError(t *testing.T) {
	cases := map[string]error{
		"timeout":  context.DeadlineExceeded,
		"flood":    &tele.Error{Code: 429, Description: "Too Many Requests"},
		"http_4xx": errors.New("telegram: message is not modified (400)"),
		"http_5xx": errors.New("telegram: bad gateway (502)"),
		"unknown":  errors.New("boom"),
	}
	for want, err := range cases {
		if got := classifyError(err); got != want {
			t.Fatalf("classifyError(%v) = %q, want %q", err, got, want)
		}
	}
}

func TestSanitizeErrorMessage(t *testing.T) {
	err := errors.New(`Post "https://api.telegram.org/bot123456:AA-bb_cc/sendMessage": EOF`)
	if got := sanitizeErrorMessage(err); got != `Post "https://api.telegram.org/bot<redacted>/sendMessage": EOF` {
		t.Fatalf("sanitize = %q", got)
	}
}

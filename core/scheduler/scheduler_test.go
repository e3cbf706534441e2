package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestScheduleRunsJob(t *testing.T) {
	s := New(time.UTC)
	ran := make(chan struct{}, 1)
	if _, err := s.Schedule("tick", "@every 1s", func(context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return errors.New("logged, not fatal")
	}); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("Len = %d", s.Len())
	}
	s.Start()
	defer s.Stop(context.Background())

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
}

func TestScheduleRejectsBadSpec(t *testing.T) {
	s := New(nil)
	if _, err := s.Schedule("bad", "every ten minutes", func(context.Context) error { return nil }); err == nil {
		t.Fatal("expected spec error")
	}
}

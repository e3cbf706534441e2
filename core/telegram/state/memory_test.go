package state

import (
	"sync"
	"testing"
	"time"
)

type draft struct {
	Name string
	Age  int
}

const stateTyping State = "typing"

func TestManagerPutGetClear(t *testing.T) {
	m := NewManager[draft]()
	if got := m.Get(1); got.State != StateIdle || got.Data != (draft{}) {
		t.Fatalf("empty session = %+v", got)
	}

	m.Put(1, Session[draft]{State: stateTyping, Data: draft{Name: "Ann"}})
	if !m.InProgress(1) || m.Len() != 1 {
		t.Fatalf("session not stored")
	}
	got := m.Get(1)
	got.Data.Name = "changed"
	if m.Get(1).Data.Name != "Ann" {
		t.Fatal("Get must return a copy")
	}

	m.Put(1, Session[draft]{State: StateIdle})
	if m.InProgress(1) || m.Len() != 0 {
		t.Fatal("idle put should clear the session")
	}

	m.Put(2, Session[draft]{State: stateTyping})
	m.Clear(2)
	if m.InProgress(2) {
		t.Fatal("clear did not remove the session")
	}
}

func TestManagerSweep(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager[draft](WithClock(func() time.Time { return now }))

	m.Put(1, Session[draft]{State: stateTyping})
	now = now.Add(20 * time.Minute)
	m.Put(2, Session[draft]{State: stateTyping})
	now = now.Add(20 * time.Minute)

	if n := m.Sweep(0); n != 0 {
		t.Fatalf("zero ttl swept %d", n)
	}

	unlock := m.Lock(1)
	if n := m.Sweep(30 * time.Minute); n != 0 {
		t.Fatalf("locked user swept: %d", n)
	}
	unlock()

	if n := m.Sweep(30 * time.Minute); n != 1 {
		t.Fatalf("swept %d, want 1", n)
	}
	if m.InProgress(1) || !m.InProgress(2) {
		t.Fatal("wrong session removed")
	}
}

func TestManagerLockSerialisesPerUser(t *testing.T) {
	m := NewManager[draft]()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		active  int
		overlap bool
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := m.Lock(7)
			defer unlock()
			mu.Lock()
			active++
			if active > 1 {
				overlap = true
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()
	if overlap {
		t.Fatal("two holders of the same user lock ran concurrently")
	}
	m.locksMu.Lock()
	defer m.locksMu.Unlock()
	if len(m.locks) != 0 {
		t.Fatalf("lock entries leaked: %d", len(m.locks))
	}
}

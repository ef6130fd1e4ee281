package core

import (
	"errors"
	"testing"
	"time"
)

func TestManager_CreateAndGet(t *testing.T) {
	m := NewManager(0, time.Minute, nil)
	defer m.Close()

	s := m.Create()
	if s.ID() == "" {
		t.Fatal("Create() returned session with empty ID")
	}

	got, err := m.Get(s.ID())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != s {
		t.Error("Get() returned a different session")
	}

	if m.Count() != 1 {
		t.Errorf("Count() = %d, want 1", m.Count())
	}
}

func TestManager_GetUnknown(t *testing.T) {
	m := NewManager(0, time.Minute, nil)
	defer m.Close()

	if _, err := m.Get("nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get(unknown) error = %v, want ErrSessionNotFound", err)
	}
}

func TestManager_ReapRetiresIdleSessions(t *testing.T) {
	m := NewManager(0, 50*time.Millisecond, nil)
	defer m.Close()

	stale := m.Create()
	time.Sleep(80 * time.Millisecond)
	fresh := m.Create()

	m.reap(time.Now())

	if _, err := m.Get(stale.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("stale session survived reap: err = %v", err)
	}
	if _, err := m.Get(fresh.ID()); err != nil {
		t.Errorf("fresh session reaped: err = %v", err)
	}
	if stale.Post(Clear{}) {
		t.Error("reaped session still accepts intents")
	}
}

func TestManager_Close(t *testing.T) {
	m := NewManager(0, time.Minute, nil)
	s := m.Create()

	m.Close()

	if m.Count() != 0 {
		t.Errorf("Count() after Close = %d, want 0", m.Count())
	}
	if s.Post(Clear{}) {
		t.Error("session still accepts intents after manager Close")
	}
}

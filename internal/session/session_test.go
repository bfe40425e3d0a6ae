package session

import (
	"sync"
	"testing"
	"time"
)

type countingLocker struct {
	mu    sync.Mutex
	locks int
}

func (l *countingLocker) Lock() {
	l.mu.Lock()
	l.locks++
	l.mu.Unlock()
}

func (l *countingLocker) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.locks
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("Condition not met before deadline")
}

func TestSessionLocksWhenIdle(t *testing.T) {
	l := &countingLocker{}
	s := New(l, 20*time.Millisecond)
	defer s.Stop()

	waitFor(t, s.Expired)
	if l.count() != 1 {
		t.Errorf("Expected one lock, got %d", l.count())
	}
	if s.Touch() {
		t.Error("Touch should report an expired session")
	}
}

func TestSessionTouchPostponesLock(t *testing.T) {
	l := &countingLocker{}
	s := New(l, 100*time.Millisecond)
	defer s.Stop()

	for i := 0; i < 5; i++ {
		time.Sleep(40 * time.Millisecond)
		if !s.Touch() {
			t.Fatal("Session expired despite activity")
		}
	}
	if l.count() != 0 {
		t.Errorf("Vault locked during activity: %d locks", l.count())
	}
}

func TestSessionReset(t *testing.T) {
	l := &countingLocker{}
	s := New(l, 20*time.Millisecond)
	defer s.Stop()

	waitFor(t, s.Expired)
	s.Reset()
	if s.Expired() {
		t.Fatal("Reset should clear the expired state")
	}
	waitFor(t, s.Expired)
	if l.count() != 2 {
		t.Errorf("Expected two locks, got %d", l.count())
	}
}

func TestSessionStop(t *testing.T) {
	l := &countingLocker{}
	s := New(l, 20*time.Millisecond)
	s.Stop()

	time.Sleep(60 * time.Millisecond)
	if l.count() != 0 {
		t.Error("Stopped session must not lock")
	}
	if s.Touch() {
		t.Error("Touch on stopped session should return false")
	}
}

func TestSessionDisabled(t *testing.T) {
	l := &countingLocker{}
	s := New(l, 0)
	defer s.Stop()

	time.Sleep(20 * time.Millisecond)
	if !s.Touch() || s.Expired() || l.count() != 0 {
		t.Error("Zero timeout should disable auto-lock")
	}
}

func TestSessionTouchAfterTimerFired(t *testing.T) {
	l := &countingLocker{}
	s := New(l, 10*time.Millisecond)
	defer s.Stop()

	// Hold mu so the fired timer blocks in expire
	s.mu.Lock()
	time.Sleep(50 * time.Millisecond)
	alive := s.touchLocked()
	s.mu.Unlock()

	if alive {
		t.Fatal("Touch reported a live session after the timer fired")
	}
	if !s.Expired() {
		t.Error("Session not marked expired")
	}

	// The pending expire must not lock a second time
	time.Sleep(30 * time.Millisecond)
	if l.count() != 1 {
		t.Errorf("Expected one lock, got %d", l.count())
	}
}

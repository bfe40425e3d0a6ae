package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type memBackend struct {
	mu   sync.Mutex
	text string
}

func (m *memBackend) WriteAll(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	return nil
}

func (m *memBackend) ReadAll() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text, nil
}

func (m *memBackend) get() string {
	s, _ := m.ReadAll()
	return s
}

func TestClipboardClearsAfterDelay(t *testing.T) {
	b := &memBackend{}
	c := NewClipboard(b, 20*time.Millisecond)

	if err := c.Copy("s3cret"); err != nil {
		t.Fatalf("Copy failed: %v", err)
	}
	if b.get() != "s3cret" {
		t.Fatal("Secret not copied")
	}

	if err := c.Wait(context.Background()); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if b.get() != "" {
		t.Errorf("Clipboard not cleared: %q", b.get())
	}
}

func TestClipboardKeepsForeignContent(t *testing.T) {
	b := &memBackend{}
	c := NewClipboard(b, 20*time.Millisecond)

	if err := c.Copy("s3cret"); err != nil {
		t.Fatal(err)
	}
	b.WriteAll("something the user copied")

	if err := c.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	if b.get() != "something the user copied" {
		t.Errorf("Foreign clipboard content was cleared: %q", b.get())
	}
}

func TestClipboardWaitCancelled(t *testing.T) {
	b := &memBackend{}
	c := NewClipboard(b, time.Hour)

	if err := c.Copy("s3cret"); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := c.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline error, got %v", err)
	}
	if b.get() != "" {
		t.Error("Cancelled wait should clear immediately")
	}
}

func TestClipboardSecondCopyReplacesFirst(t *testing.T) {
	b := &memBackend{}
	c := NewClipboard(b, 30*time.Millisecond)

	if err := c.Copy("first"); err != nil {
		t.Fatal(err)
	}
	if err := c.Copy("second"); err != nil {
		t.Fatal(err)
	}
	if b.get() != "second" {
		t.Fatalf("Unexpected clipboard: %q", b.get())
	}
	if err := c.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	if b.get() != "" {
		t.Errorf("Second copy not cleared: %q", b.get())
	}
}

func TestClipboardZeroDelayNeverClears(t *testing.T) {
	b := &memBackend{}
	c := NewClipboard(b, 0)

	if err := c.Copy("kept"); err != nil {
		t.Fatal(err)
	}
	if err := c.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	c.Clear()
	if b.get() != "kept" {
		t.Errorf("Zero delay should not clear, got %q", b.get())
	}
}

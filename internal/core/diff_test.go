package core

import (
	"strings"
	"testing"
)

func TestDiffEntriesIdentical(t *testing.T) {
	entries := []Entry{{Site: "a.com", Username: "u", Password: "p"}}
	if d := DiffEntries(entries, entries); d != "" {
		t.Errorf("Expected empty diff, got %q", d)
	}
}

func TestDiffEntriesChanges(t *testing.T) {
	before := []Entry{
		{Site: "a.com", Username: "alice", Password: "secret-a"},
		{Site: "b.com", Username: "bob", Password: "secret-b"},
	}
	after := []Entry{
		{Site: "a.com", Username: "alice", Password: "secret-a"},
		{Site: "c.com", Username: "carol", Password: "secret-c"},
	}

	d := DiffEntries(before, after)
	if !strings.Contains(d, "- b.com\tbob\n") {
		t.Errorf("Expected removal of b.com, got:\n%s", d)
	}
	if !strings.Contains(d, "+ c.com\tcarol\n") {
		t.Errorf("Expected addition of c.com, got:\n%s", d)
	}
	if !strings.Contains(d, "  a.com\talice\n") {
		t.Errorf("Expected unchanged a.com, got:\n%s", d)
	}
	if strings.Contains(d, "secret") {
		t.Error("Diff must never include passwords")
	}
}

func TestChangedPasswords(t *testing.T) {
	before := []Entry{
		{Site: "a.com", Password: "1"},
		{Site: "b.com", Password: "2"},
	}
	after := []Entry{
		{Site: "A.com", Password: "changed"},
		{Site: "b.com", Password: "2"},
		{Site: "new.com", Password: "3"},
	}

	changed := ChangedPasswords(before, after)
	if len(changed) != 1 || changed[0] != "A.com" {
		t.Errorf("Expected [A.com], got %v", changed)
	}
}

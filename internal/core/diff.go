package core

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// listing renders entries one per line. Passwords are never included.
func listing(entries []Entry) string {
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%s\t%s\n", e.Site, e.Username)
	}
	return b.String()
}

// DiffEntries returns a unified-style line diff between two entry lists,
// showing only sites and usernames. It returns "" when the listings match.
func DiffEntries(before, after []Entry) string {
	oldStr, newStr := listing(before), listing(after)
	if oldStr == newStr {
		return ""
	}

	dmp := diffmatchpatch.New()

	// Line-mode diff for better output
	a, b, lineArray := dmp.DiffLinesToChars(oldStr, newStr)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var out strings.Builder
	for _, d := range diffs {
		var prefix string
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		default:
			prefix = "  "
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out.WriteString(prefix)
			out.WriteString(line)
		}
	}
	return out.String()
}

// ChangedPasswords returns the sites present in both lists whose password
// differs, matched by the first case-insensitive site hit.
func ChangedPasswords(before, after []Entry) []string {
	var changed []string
	for _, n := range after {
		i := entryList(before).indexOf(n.Site)
		if i >= 0 && before[i].Password != n.Password && !containsFold(changed, n.Site) {
			changed = append(changed, n.Site)
		}
	}
	return changed
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

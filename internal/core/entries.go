package core

import "strings"

// Entry is one stored credential. Site is the lookup key and is compared
// case-insensitively.
//
// Go strings are immutable, so Lock can drop but not overwrite the password
// text held here.
type Entry struct {
	Site     string `json:"Site"`
	Username string `json:"Username"`
	Password string `json:"Password"`
}

// Matches reports whether the entry belongs to site.
func (e Entry) Matches(site string) bool {
	return strings.EqualFold(e.Site, site)
}

type entryList []Entry

// indexOf returns the position of the first entry matching site, or -1.
func (l entryList) indexOf(site string) int {
	for i := range l {
		if l[i].Matches(site) {
			return i
		}
	}
	return -1
}

func (l entryList) replace(site string, e Entry) bool {
	i := l.indexOf(site)
	if i < 0 {
		return false
	}
	l[i] = e
	return true
}

func (l *entryList) remove(site string) bool {
	i := l.indexOf(site)
	if i < 0 {
		return false
	}
	s := *l
	copy(s[i:], s[i+1:])
	s[len(s)-1] = Entry{}
	*l = s[:len(s)-1]
	return true
}

// clear drops the references held by every element so the backing array
// no longer pins the strings.
func (l entryList) clear() {
	for i := range l {
		l[i] = Entry{}
	}
}

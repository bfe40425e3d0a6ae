package cmd

import (
	"fmt"

	"github.com/illarion/passvault/internal/config"
)

// Show prints an entry including its password. With passwordOnly set only
// the password is printed, for use in scripts.
func Show(cfg config.Config, site string, passwordOnly bool) {
	ws := NewWorkspace(cfg)
	v, err := ws.Unlock()
	if err != nil {
		HandleError(err)
	}
	defer v.Lock()

	e, ok, err := v.Find(site)
	if err != nil {
		fail(err, v)
	}
	if !ok {
		fail(fmt.Errorf("%w: %s", ErrEntryNotFound, site), v)
	}

	if passwordOnly {
		fmt.Println(e.Password)
		return
	}
	fmt.Printf("Site:     %s\n", e.Site)
	fmt.Printf("Username: %s\n", e.Username)
	fmt.Printf("Password: %s\n", e.Password)
}

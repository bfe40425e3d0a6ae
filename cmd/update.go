package cmd

import (
	"fmt"
	"os"

	"github.com/illarion/passvault/internal/config"
	"github.com/illarion/passvault/internal/core"
)

// UpdateOptions lists the fields to change; empty strings keep the
// current value.
type UpdateOptions struct {
	Site           string
	Username       string
	ChangePassword bool
}

// Update replaces the first entry matching site
func Update(cfg config.Config, site string, opts UpdateOptions) {
	if opts.Site == "" && opts.Username == "" && !opts.ChangePassword {
		fmt.Fprintln(os.Stderr, "Error: nothing to update")
		fmt.Fprintln(os.Stderr, "Use --site, --user or --password")
		os.Exit(1)
	}

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

	if opts.Site != "" {
		e.Site = opts.Site
	}
	if opts.Username != "" {
		e.Username = opts.Username
	}
	if opts.ChangePassword {
		secret, err := readEntryPassword(e.Site)
		if err != nil {
			fail(err, v)
		}
		if core.IsWeakPassword(secret, e.Site, e.Username) {
			fmt.Fprintf(os.Stderr, "Warning: password for %s is weak\n", e.Site)
		}
		e.Password = secret
	}

	if _, err := v.Update(site, e); err != nil {
		fail(err, v)
	}
	if err := ws.Save(v, "update "+site); err != nil {
		fail(err, v)
	}

	fmt.Printf("✓ Updated %s\n", e.Site)
}

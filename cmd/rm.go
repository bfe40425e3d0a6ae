package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/illarion/passvault/internal/config"
)

// Remove deletes the first entry matching each site
func Remove(cfg config.Config, sites []string) {
	if len(sites) == 0 {
		fmt.Fprintf(os.Stderr, "Error: rm requires at least one site\n")
		fmt.Fprintf(os.Stderr, "Usage: passvault rm <site> [site...]\n")
		os.Exit(1)
	}

	ws := NewWorkspace(cfg)
	v, err := ws.Unlock()
	if err != nil {
		HandleError(err)
	}
	defer v.Lock()

	var removed []string
	for _, site := range sites {
		ok, err := v.Delete(site)
		if err != nil {
			fail(err, v)
		}
		if !ok {
			fmt.Fprintf(os.Stderr, "No entry for %s\n", site)
			continue
		}
		removed = append(removed, site)
	}

	if len(removed) == 0 {
		os.Exit(1)
	}

	if err := ws.Save(v, "rm "+strings.Join(removed, " ")); err != nil {
		fail(err, v)
	}

	for _, site := range removed {
		fmt.Printf("✓ Removed %s\n", site)
	}
}
